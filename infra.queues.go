package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Predefinied Queue IDs.
const (
	CreateQueue = "mirror:creation"
	UpdateQueue = "mirror:updating"
	DeleteQueue = "mirror:deletion"
)

// Ensure queues implement Queuer.
var (
	_ Queuer = (*redisQueue)(nil)
	_ Queuer = (*noopQueue)(nil)
)

// ChangeEvent describes a successful write on one catalog collection.
// Record is empty for deletions.
type ChangeEvent struct {
	Collection string          `json:"collection"`
	ID         string          `json:"id"`
	Record     json.RawMessage `json:"record,omitempty"`
}

// NewChangeEvent encodes the record and builds its change event.
func NewChangeEvent(collection, id string, record interface{}) (ChangeEvent, error) {
	event := ChangeEvent{Collection: collection, ID: id}
	if record == nil {
		return event, nil
	}
	data, err := json.Marshal(record)
	if err != nil {
		return event, err
	}
	event.Record = data
	return event, nil
}

// Queuer describes a queue.
type Queuer interface {
	Push(ctx context.Context, qid string, event ChangeEvent) error
	Pop(ctx context.Context, qids ...string) (string, ChangeEvent, error)
}

// redisQueue represents a queue which implements the Queuer interface.
type redisQueue struct {
	client *redis.Client
}

func NewRedisQueue(client *redis.Client) Queuer {
	return &redisQueue{client: client}
}

// Push enqueues an event onto the queue identified by qid.
func (q *redisQueue) Push(ctx context.Context, qid string, event ChangeEvent) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return q.client.RPush(ctx, qid, eventBytes).Err()
}

// Pop returns the first dequeued event from the list of queue ids.
func (q *redisQueue) Pop(ctx context.Context, qids ...string) (string, ChangeEvent, error) {
	var event ChangeEvent
	var qid string
	infos, err := q.client.BLPop(ctx, 0*time.Second, qids...).Result()
	if err != nil {
		return qid, event, err
	}

	if err = json.Unmarshal([]byte(infos[1]), &event); err != nil {
		return qid, event, err
	}
	qid = infos[0]
	return qid, event, nil
}

// noopQueue is used when the mirror is disabled.
type noopQueue struct{}

func NewNoopQueue() Queuer {
	return noopQueue{}
}

func (noopQueue) Push(context.Context, string, ChangeEvent) error {
	return nil
}

// Pop blocks until the context is done.
func (noopQueue) Pop(ctx context.Context, _ ...string) (string, ChangeEvent, error) {
	<-ctx.Done()
	return "", ChangeEvent{}, ctx.Err()
}
