package main

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

type mongoStorage[T any] struct {
	logger     *zap.Logger
	collection *mongo.Collection
}

type mongoBookStorage struct {
	*mongoStorage[Book]
}

// GetMongoClient provides a ready to use mongodb client.
func GetMongoClient(config *Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), config.MongoDB.ConnectTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(config.MongoDB.URI).
		SetConnectTimeout(config.MongoDB.ConnectTimeout).
		SetServerSelectionTimeout(config.MongoDB.ConnectTimeout)
	if config.MongoDB.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(config.MongoDB.MaxPoolSize)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}

	// test connection.
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("test connection failed: %v", err)
	}
	return client, nil
}

// NewMongoStorages provides the mongodb-based collections of the catalog.
func NewMongoStorages(logger *zap.Logger, db *mongo.Database) *Storages {
	return &Storages{
		Categories: newMongoStorage[Category](logger, db.Collection(CategoriesCollection)),
		Books:      &mongoBookStorage{newMongoStorage[Book](logger, db.Collection(BooksCollection))},
		Addresses:  newMongoStorage[Address](logger, db.Collection(AddressesCollection)),
	}
}

func newMongoStorage[T any](logger *zap.Logger, collection *mongo.Collection) *mongoStorage[T] {
	return &mongoStorage[T]{
		logger:     logger,
		collection: collection,
	}
}

// objectIDFilter builds the primary key filter of a document.
func objectIDFilter(id string) (bson.M, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	return bson.M{"_id": oid}, nil
}

// Add inserts a new document. The record carries its own `_id`.
func (ms *mongoStorage[T]) Add(ctx context.Context, _ string, record T) error {
	_, err := ms.collection.InsertOne(ctx, record)
	return err
}

// GetOne retrieves a document based on its ID.
func (ms *mongoStorage[T]) GetOne(ctx context.Context, id string) (T, error) {
	var record T
	filter, err := objectIDFilter(id)
	if err != nil {
		return record, err
	}
	err = ms.collection.FindOne(ctx, filter).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return record, ErrNotFound
	}
	return record, err
}

// GetAll retrieves all documents of the collection in natural order.
func (ms *mongoStorage[T]) GetAll(ctx context.Context) ([]T, error) {
	return ms.find(ctx, bson.D{})
}

func (ms *mongoStorage[T]) find(ctx context.Context, filter interface{}) ([]T, error) {
	cursor, err := ms.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	records := []T{}
	if err = cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Update replaces an existing document. It fails if the document does not exist.
func (ms *mongoStorage[T]) Update(ctx context.Context, id string, record T) (T, error) {
	filter, err := objectIDFilter(id)
	if err != nil {
		return record, err
	}
	res, err := ms.collection.ReplaceOne(ctx, filter, record)
	if err != nil {
		return record, err
	}
	if res.MatchedCount == 0 {
		return record, ErrNotFound
	}
	return record, nil
}

// Delete removes a document based on its ID.
func (ms *mongoStorage[T]) Delete(ctx context.Context, id string) error {
	filter, err := objectIDFilter(id)
	if err != nil {
		return err
	}
	res, err := ms.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// GetAllByCategory retrieves the books referencing the given category. A malformed
// category id cannot be referenced by any stored book so it yields no result.
func (mbs *mongoBookStorage) GetAllByCategory(ctx context.Context, categoryID string) ([]Book, error) {
	oid, err := primitive.ObjectIDFromHex(categoryID)
	if err != nil {
		return []Book{}, nil
	}
	return mbs.find(ctx, bson.M{"category": oid})
}
