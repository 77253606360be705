package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// redisStorage keeps a whole collection into a single hash
// where each field is a record id and the value its json.
type redisStorage[T any] struct {
	logger *zap.Logger
	client *redis.Client
	key    string
}

type redisBookStorage struct {
	*redisStorage[Book]
}

// GetRedisClient provides a ready to use redis client.
func GetRedisClient(config *Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", config.Redis.Host, config.Redis.Port),
		DialTimeout:  config.Redis.DialTimeout,
		ReadTimeout:  config.Redis.ReadTimeout,
		WriteTimeout: config.Redis.WriteTimeout,
		PoolSize:     config.Redis.PoolSize,
		PoolTimeout:  config.Redis.PoolTimeout,
		Password:     config.Redis.Password,
		Username:     config.Redis.Username,
		DB:           config.Redis.DatabaseIndex,
	})

	// test connection.
	if pong, err := client.Ping(context.Background()).Result(); pong != "PONG" || err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("test connection failed: %v", err)
	}
	return client, nil
}

// NewRedisStorages provides the redis-based collections of the catalog.
func NewRedisStorages(logger *zap.Logger, client *redis.Client) *Storages {
	return &Storages{
		Categories: newRedisStorage[Category](logger, client, CategoriesCollection),
		Books:      &redisBookStorage{newRedisStorage[Book](logger, client, BooksCollection)},
		Addresses:  newRedisStorage[Address](logger, client, AddressesCollection),
	}
}

func newRedisStorage[T any](logger *zap.Logger, client *redis.Client, key string) *redisStorage[T] {
	return &redisStorage[T]{
		logger: logger,
		client: client,
		key:    key,
	}
}

// Add inserts a new record.
func (rs *redisStorage[T]) Add(ctx context.Context, id string, record T) error {
	recordBytes, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return rs.client.HSet(ctx, rs.key, id, recordBytes).Err()
}

// GetOne retrieves a record based on its ID.
func (rs *redisStorage[T]) GetOne(ctx context.Context, id string) (T, error) {
	var record T
	recordJSONString, err := rs.client.HGet(ctx, rs.key, id).Result()
	if err == redis.Nil {
		return record, ErrNotFound
	}
	if err != nil {
		return record, err
	}
	err = json.Unmarshal([]byte(recordJSONString), &record)
	return record, err
}

// Delete removes a record based on its ID.
func (rs *redisStorage[T]) Delete(ctx context.Context, id string) error {
	n, err := rs.client.HDel(ctx, rs.key, id).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Update replaces an existing record. The existence check and the write
// are two commands so concurrent updates are last-write-wins.
func (rs *redisStorage[T]) Update(ctx context.Context, id string, record T) (T, error) {
	exists, err := rs.client.HExists(ctx, rs.key, id).Result()
	if err != nil {
		return record, err
	}
	if !exists {
		return record, ErrNotFound
	}
	recordBytes, err := json.Marshal(record)
	if err != nil {
		return record, err
	}
	err = rs.client.HSet(ctx, rs.key, id, recordBytes).Err()
	return record, err
}

// GetAll retrieves a list of all records of the collection.
func (rs *redisStorage[T]) GetAll(ctx context.Context) ([]T, error) {
	values, err := rs.client.HVals(ctx, rs.key).Result()
	if err != nil {
		return nil, err
	}
	records := []T{}
	for _, recordJSONString := range values {
		var record T
		if err = json.Unmarshal([]byte(recordJSONString), &record); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// GetAllByCategory scans the books hash and keeps books referencing the category.
func (rbs *redisBookStorage) GetAllByCategory(ctx context.Context, categoryID string) ([]Book, error) {
	books, err := rbs.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return filterBooksByCategory(books, categoryID), nil
}

// filterBooksByCategory keeps in place the books whose category matches.
func filterBooksByCategory(books []Book, categoryID string) []Book {
	filtered := books[:0]
	for _, book := range books {
		if book.Category.Hex() == categoryID {
			filtered = append(filtered, book)
		}
	}
	return filtered
}
