package main

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// This file contains mocks definitions needed to perform unit tests.

// MockStorage is a function-based fake of RecordStorage.
type MockStorage[T any] struct {
	AddFunc    func(ctx context.Context, id string, record T) error
	GetOneFunc func(ctx context.Context, id string) (T, error)
	GetAllFunc func(ctx context.Context) ([]T, error)
	UpdateFunc func(ctx context.Context, id string, record T) (T, error)
	DeleteFunc func(ctx context.Context, id string) error
}

// Add mocks the behavior of record creation by the repository.
func (m *MockStorage[T]) Add(ctx context.Context, id string, record T) error {
	return m.AddFunc(ctx, id, record)
}

// GetOne mocks the behavior of retrieving a record by the repository.
func (m *MockStorage[T]) GetOne(ctx context.Context, id string) (T, error) {
	return m.GetOneFunc(ctx, id)
}

// GetAll mocks the behavior of retrieving all records by the repository.
func (m *MockStorage[T]) GetAll(ctx context.Context) ([]T, error) {
	return m.GetAllFunc(ctx)
}

// Update mocks the behavior of updating a record by the repository.
func (m *MockStorage[T]) Update(ctx context.Context, id string, record T) (T, error) {
	return m.UpdateFunc(ctx, id, record)
}

// Delete mocks the behavior of deleting a record by the repository.
func (m *MockStorage[T]) Delete(ctx context.Context, id string) error {
	return m.DeleteFunc(ctx, id)
}

type MockBookStorage struct {
	MockStorage[Book]
	GetAllByCategoryFunc func(ctx context.Context, categoryID string) ([]Book, error)
}

// GetAllByCategory mocks the behavior of filtering books by category.
func (m *MockBookStorage) GetAllByCategory(ctx context.Context, categoryID string) ([]Book, error) {
	return m.GetAllByCategoryFunc(ctx, categoryID)
}

// memoryStorage is an in-memory RecordStorage keeping insertion order.
type memoryStorage[T any] struct {
	mu      sync.RWMutex
	ids     []string
	records map[string]T
}

func newMemoryStorage[T any]() *memoryStorage[T] {
	return &memoryStorage[T]{records: make(map[string]T)}
}

func (ms *memoryStorage[T]) Add(_ context.Context, id string, record T) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if _, ok := ms.records[id]; !ok {
		ms.ids = append(ms.ids, id)
	}
	ms.records[id] = record
	return nil
}

func (ms *memoryStorage[T]) GetOne(_ context.Context, id string) (T, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	record, ok := ms.records[id]
	if !ok {
		return record, ErrNotFound
	}
	return record, nil
}

func (ms *memoryStorage[T]) GetAll(_ context.Context) ([]T, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	records := make([]T, 0, len(ms.ids))
	for _, id := range ms.ids {
		records = append(records, ms.records[id])
	}
	return records, nil
}

func (ms *memoryStorage[T]) Update(_ context.Context, id string, record T) (T, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if _, ok := ms.records[id]; !ok {
		var zero T
		return zero, ErrNotFound
	}
	ms.records[id] = record
	return record, nil
}

func (ms *memoryStorage[T]) Delete(_ context.Context, id string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if _, ok := ms.records[id]; !ok {
		return ErrNotFound
	}
	delete(ms.records, id)
	for i, v := range ms.ids {
		if v == id {
			ms.ids = append(ms.ids[:i], ms.ids[i+1:]...)
			break
		}
	}
	return nil
}

type memoryBookStorage struct {
	*memoryStorage[Book]
}

func (mbs *memoryBookStorage) GetAllByCategory(ctx context.Context, categoryID string) ([]Book, error) {
	books, err := mbs.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return filterBooksByCategory(books, categoryID), nil
}

// NewMemoryStorages provides in-memory collections for unit tests.
func NewMemoryStorages() *Storages {
	return &Storages{
		Categories: newMemoryStorage[Category](),
		Books:      &memoryBookStorage{newMemoryStorage[Book]()},
		Addresses:  newMemoryStorage[Address](),
	}
}

// MockClocker implements a fake Clocker.
type MockClocker struct {
	MockNow time.Time
}

// NewMockClocker returns a mocked instance with fixed time.
func NewMockClocker() *MockClocker {
	return &MockClocker{time.Date(2023, 0o7, 0o2, 0o0, 0o0, 0o0, 0o00000000, time.UTC)}
}

// Now returns an already defined time to be used as mock. This
// equals to `Sun, 02 Jul 2023 00:00:00 UTC` in time.RFC1123 format.
func (mck *MockClocker) Now() time.Time {
	return mck.MockNow
}

// MockUIDHandler implements a fake UIDHandler.
type MockUIDHandler struct {
	MockedUID      string
	MockedRecordID primitive.ObjectID
	Valid          bool
}

// NewMockUIDHandler returns a mocked instance with predictable ids.
func NewMockUIDHandler(id string, valid bool) *MockUIDHandler {
	oid, _ := primitive.ObjectIDFromHex("64a0c1f2e4b0a1b2c3d4e5f6")
	return &MockUIDHandler{MockedUID: id, MockedRecordID: oid, Valid: valid}
}

// Generate constructs a predictable id to be used as mock.
func (muid *MockUIDHandler) Generate(prefix string) string {
	return prefix + ":" + muid.MockedUID
}

// NewRecordID returns the predefined record id.
func (muid *MockUIDHandler) NewRecordID() primitive.ObjectID {
	return muid.MockedRecordID
}

// ParseRecordID fails when the mock is configured as invalid.
func (muid *MockUIDHandler) ParseRecordID(id string) (primitive.ObjectID, error) {
	if !muid.Valid {
		return primitive.NilObjectID, ErrInvalidID
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return muid.MockedRecordID, nil
	}
	return oid, nil
}

// MockQueuer is a function-based fake of Queuer.
type MockQueuer struct {
	PushFunc func(ctx context.Context, qid string, event ChangeEvent) error
	PopFunc  func(ctx context.Context, qids ...string) (string, ChangeEvent, error)
}

func (mq *MockQueuer) Push(ctx context.Context, qid string, event ChangeEvent) error {
	return mq.PushFunc(ctx, qid, event)
}

func (mq *MockQueuer) Pop(ctx context.Context, qids ...string) (string, ChangeEvent, error) {
	return mq.PopFunc(ctx, qids...)
}

// recordingQueue keeps every pushed event for later assertions.
type recordingQueue struct {
	mu     sync.Mutex
	events map[string][]ChangeEvent
}

func newRecordingQueue() *recordingQueue {
	return &recordingQueue{events: make(map[string][]ChangeEvent)}
}

func (rq *recordingQueue) Push(_ context.Context, qid string, event ChangeEvent) error {
	rq.mu.Lock()
	defer rq.mu.Unlock()
	rq.events[qid] = append(rq.events[qid], event)
	return nil
}

func (rq *recordingQueue) Pop(ctx context.Context, _ ...string) (string, ChangeEvent, error) {
	<-ctx.Done()
	return "", ChangeEvent{}, ctx.Err()
}

func (rq *recordingQueue) Events(qid string) []ChangeEvent {
	rq.mu.Lock()
	defer rq.mu.Unlock()
	return append([]ChangeEvent(nil), rq.events[qid]...)
}
