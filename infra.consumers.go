package main

import (
	"context"
	"time"

	"github.com/boltdb/bolt"
	"go.uber.org/zap"
)

// popRetryDelay is the pause after a failed queue pop.
var popRetryDelay = time.Second

type Consumer interface {
	Consume(ctx context.Context, qids ...string) error
}

// MirrorWriter applies already encoded records on a mirror collection.
type MirrorWriter interface {
	PutRaw(ctx context.Context, id string, data []byte) error
	DeleteRaw(ctx context.Context, id string) error
}

type boltDBConsumer struct {
	logger  *zap.Logger
	queue   Queuer
	writers map[string]MirrorWriter
}

// NewBoltDBMirror provides the mirror writers of each collection backed by the bolt database.
func NewBoltDBMirror(logger *zap.Logger, client *bolt.DB) map[string]MirrorWriter {
	return map[string]MirrorWriter{
		CategoriesCollection: newBoltStorage[Category](logger, client, CategoriesCollection),
		BooksCollection:      newBoltStorage[Book](logger, client, BooksCollection),
		AddressesCollection:  newBoltStorage[Address](logger, client, AddressesCollection),
	}
}

func NewBoltDBConsumer(logger *zap.Logger, q Queuer, writers map[string]MirrorWriter) Consumer {
	return &boltDBConsumer{logger, q, writers}
}

// Consume pops change events and applies them to the mirror until the context is done.
func (bc *boltDBConsumer) Consume(ctx context.Context, qids ...string) error {
	var event ChangeEvent
	var err error
	var qid string
	for {
		qid, event, err = bc.queue.Pop(ctx, qids...)
		if err != nil && ctx.Err() != nil {
			bc.logger.Info("consumer: queue pop call: context is done: exit", zap.String("reason", ctx.Err().Error()))
			return nil
		}

		if err != nil {
			bc.logger.Error("consumer: error on queue pop call", zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(popRetryDelay):
			}
			continue
		}

		writer, ok := bc.writers[event.Collection]
		if !ok {
			bc.logger.Warn("consumer: received event on unknown collection", zap.String("qid", qid), zap.String("collection", event.Collection))
			continue
		}

		switch qid {
		case CreateQueue, UpdateQueue:
			if err = writer.PutRaw(ctx, event.ID, event.Record); err != nil {
				bc.logger.Error("consumer: failed to store", zap.String("qid", qid), zap.String("collection", event.Collection), zap.String("id", event.ID), zap.Error(err))
			}
		case DeleteQueue:
			if err = writer.DeleteRaw(ctx, event.ID); err != nil {
				bc.logger.Error("consumer: failed to delete", zap.String("collection", event.Collection), zap.String("id", event.ID), zap.Error(err))
			}
		default:
			bc.logger.Warn("consumer: received event on unknow queue id", zap.String("qid", qid), zap.String("id", event.ID))
		}
	}
}
