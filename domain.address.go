package main

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Address represents a shipping address entity.
type Address struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	Address   string             `json:"address" bson:"address"`
	City      string             `json:"city" bson:"city"`
	State     string             `json:"state" bson:"state"`
	ZipCode   string             `json:"zipCode" bson:"zipCode"`
	IsDefault bool               `json:"isDefault" bson:"isDefault"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// AddressInput is the payload accepted to create or replace an address.
// IsDefault is optional and falls back to false on creation.
type AddressInput struct {
	Address   string `json:"address" validate:"required"`
	City      string `json:"city" validate:"required"`
	State     string `json:"state" validate:"required"`
	ZipCode   string `json:"zipCode" validate:"required"`
	IsDefault *bool  `json:"isDefault"`
}

// AddressStorage defines possible operations on address entity.
type AddressStorage interface {
	RecordStorage[Address]
}
