package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/boltdb/bolt"
	"go.uber.org/zap"
)

// boltStorage keeps a collection into its own bucket.
type boltStorage[T any] struct {
	logger *zap.Logger
	client *bolt.DB
	bucket []byte
}

type boltBookStorage struct {
	*boltStorage[Book]
}

// GetBoltDBClient opens the database file, sets up the buckets then provides a ready to use client.
func GetBoltDBClient(filePath string, timeout time.Duration, buckets ...string) (*bolt.DB, error) {
	db, err := bolt.Open(filePath, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open the database, %v", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range buckets {
			if _, errB := tx.CreateBucketIfNotExists([]byte(name)); errB != nil {
				return fmt.Errorf("failed to create %s bucket: %v", name, errB)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set up buckets: %v", err)
	}
	return db, nil
}

// NewBoltStorages provides the bolt-based collections of the catalog.
func NewBoltStorages(logger *zap.Logger, client *bolt.DB) *Storages {
	return &Storages{
		Categories: newBoltStorage[Category](logger, client, CategoriesCollection),
		Books:      &boltBookStorage{newBoltStorage[Book](logger, client, BooksCollection)},
		Addresses:  newBoltStorage[Address](logger, client, AddressesCollection),
	}
}

func newBoltStorage[T any](logger *zap.Logger, client *bolt.DB, bucket string) *boltStorage[T] {
	return &boltStorage[T]{
		logger: logger,
		client: client,
		bucket: []byte(bucket),
	}
}

// Add inserts a new record into boltdb store.
func (bs *boltStorage[T]) Add(ctx context.Context, id string, record T) error {
	recordBytes, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return bs.PutRaw(ctx, id, recordBytes)
}

// GetOne retrieves a record based on its ID from boltdb store.
func (bs *boltStorage[T]) GetOne(_ context.Context, id string) (T, error) {
	var record T
	// initialize a readable transaction.
	tx, err := bs.client.Begin(false)
	if err != nil {
		return record, err
	}
	defer tx.Rollback()

	result := tx.Bucket(bs.bucket).Get([]byte(id))
	if result == nil {
		return record, ErrNotFound
	}
	err = json.Unmarshal(result, &record)
	return record, err
}

// Delete removes a record based on its ID from boltdb store.
func (bs *boltStorage[T]) Delete(_ context.Context, id string) error {
	return bs.client.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bs.bucket)
		if b.Get([]byte(id)) == nil {
			return ErrNotFound
		}
		return b.Delete([]byte(id))
	})
}

// Update replaces an existing record. It fails if the record does not exist.
func (bs *boltStorage[T]) Update(_ context.Context, id string, record T) (T, error) {
	recordBytes, err := json.Marshal(record)
	if err != nil {
		return record, err
	}
	err = bs.client.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bs.bucket)
		if b.Get([]byte(id)) == nil {
			return ErrNotFound
		}
		return b.Put([]byte(id), recordBytes)
	})
	return record, err
}

// GetAll retrieves a list of all records stored in the bucket.
func (bs *boltStorage[T]) GetAll(_ context.Context) ([]T, error) {
	tx, err := bs.client.Begin(false)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Create a cursor on the collection bucket.
	c := tx.Bucket(bs.bucket).Cursor()

	records := []T{}
	for k, v := c.First(); k != nil; k, v = c.Next() {
		var record T
		if err = json.Unmarshal(v, &record); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// PutRaw stores an already encoded record. It inserts or overwrites.
func (bs *boltStorage[T]) PutRaw(_ context.Context, id string, data []byte) error {
	return bs.client.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bs.bucket).Put([]byte(id), data)
	})
}

// DeleteRaw removes a record if present. Missing records are ignored.
func (bs *boltStorage[T]) DeleteRaw(_ context.Context, id string) error {
	return bs.client.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bs.bucket).Delete([]byte(id))
	})
}

// GetAllByCategory scans the books bucket and keeps books referencing the category.
func (bbs *boltBookStorage) GetAllByCategory(ctx context.Context, categoryID string) ([]Book, error) {
	books, err := bbs.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return filterBooksByCategory(books, categoryID), nil
}
