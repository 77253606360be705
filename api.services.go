package main

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// serviceCore holds what every catalog service needs.
type serviceCore struct {
	logger *zap.Logger
	config *Config
	clock  Clocker
	ids    UIDHandler
	queue  Queuer
}

func newServiceCore(logger *zap.Logger, config *Config, clock Clocker, ids UIDHandler, queue Queuer) serviceCore {
	if queue == nil {
		queue = NewNoopQueue()
	}
	return serviceCore{logger: logger, config: config, clock: clock, ids: ids, queue: queue}
}

// now returns the current time truncated to the precision every backend can store.
func (sc *serviceCore) now() time.Time {
	return sc.clock.Now().UTC().Truncate(time.Millisecond)
}

// recordKey parses id once and returns the canonical form used as storage key.
func (sc *serviceCore) recordKey(id string) (string, error) {
	oid, err := sc.ids.ParseRecordID(id)
	if err != nil {
		return "", ErrInvalidID
	}
	return oid.Hex(), nil
}

// sameRecordID reports whether id designates oid, whatever its letter case.
func (sc *serviceCore) sameRecordID(id string, oid primitive.ObjectID) bool {
	parsed, err := sc.ids.ParseRecordID(id)
	return err == nil && parsed == oid
}

// mirror pushes the change event of a successful write. A failed push
// is logged only: the primary write already succeeded.
func (sc *serviceCore) mirror(ctx context.Context, qid, collection, id string, record interface{}) {
	event, err := NewChangeEvent(collection, id, record)
	if err == nil {
		err = sc.queue.Push(ctx, qid, event)
	}
	if err != nil {
		sc.logger.Error("service: failed to push to queue",
			zap.String("qid", qid),
			zap.String("collection", collection),
			zap.String("id", id),
			zap.Error(err),
		)
	}
}
