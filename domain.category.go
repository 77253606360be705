package main

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category represents a category entity. Books reference it by ID.
type Category struct {
	ID          primitive.ObjectID `json:"id" bson:"_id"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// CategoryInput is the payload accepted to create a category.
type CategoryInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// CategoryRef is the projection of a category attached to a resolved book.
type CategoryRef struct {
	ID   primitive.ObjectID `json:"id"`
	Name string             `json:"name"`
}

// Ref returns the {id, name} projection of the category.
func (c Category) Ref() *CategoryRef {
	return &CategoryRef{ID: c.ID, Name: c.Name}
}

// CategoryStorage defines possible operations on category entity.
type CategoryStorage interface {
	RecordStorage[Category]
}
