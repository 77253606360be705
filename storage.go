package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Collections names shared by all storage backends.
const (
	CategoriesCollection = "categories"
	BooksCollection      = "books"
	AddressesCollection  = "addresses"
)

// Supported storage backends.
const (
	MongoDBBackend = "mongodb"
	RedisBackend   = "redis"
	BoltDBBackend  = "boltdb"
)

// RecordStorage defines the operations every entity collection supports.
// Implementations return ErrNotFound when no record matches the id.
type RecordStorage[T any] interface {
	Add(ctx context.Context, id string, record T) error
	GetOne(ctx context.Context, id string) (T, error)
	GetAll(ctx context.Context) ([]T, error)
	Update(ctx context.Context, id string, record T) (T, error)
	Delete(ctx context.Context, id string) error
}

// Storages groups the three collections of one backend and
// the function releasing the backend connection.
type Storages struct {
	Categories CategoryStorage
	Books      BookStorage
	Addresses  AddressStorage
	closer     func(context.Context) error
}

// Close releases the underlying backend connection.
func (s *Storages) Close(ctx context.Context) error {
	if s.closer == nil {
		return nil
	}
	return s.closer(ctx)
}

// NewStorages connects to the configured backend and provides its collections.
func NewStorages(logger *zap.Logger, config *Config) (*Storages, error) {
	switch config.Storage.Backend {
	case MongoDBBackend:
		client, err := GetMongoClient(config)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongodb server: %w", err)
		}
		s := NewMongoStorages(logger, client.Database(config.MongoDB.Database))
		s.closer = client.Disconnect
		return s, nil

	case RedisBackend:
		client, err := GetRedisClient(config)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis server: %w", err)
		}
		s := NewRedisStorages(logger, client)
		s.closer = func(context.Context) error { return client.Close() }
		return s, nil

	case BoltDBBackend:
		db, err := GetBoltDBClient(config.BoltDB.FilePath, config.BoltDB.Timeout, CategoriesCollection, BooksCollection, AddressesCollection)
		if err != nil {
			return nil, fmt.Errorf("failed to open boltdb file: %w", err)
		}
		s := NewBoltStorages(logger, db)
		s.closer = func(context.Context) error { return db.Close() }
		return s, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", config.Storage.Backend)
}
