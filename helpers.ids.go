package main

import (
	"github.com/gofrs/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var _ UIDHandler = (*IDsHandler)(nil) // ensure IDsHandler implements UIDHandler.

// UIDHandler is an interface for getting and checking unique ids.
type UIDHandler interface {
	// Generate returns a prefixed random uuid. Used for request ids.
	Generate(prefix string) string
	// NewRecordID returns a fresh identifier for a catalog record.
	NewRecordID() primitive.ObjectID
	// ParseRecordID converts id into a record identifier or fails with ErrInvalidID.
	ParseRecordID(id string) (primitive.ObjectID, error)
}

// IDsHandler implements the UIDHandler interface.
type IDsHandler struct{}

// NewIDsHandler returns a ready to use IDsHandler.
func NewIDsHandler() *IDsHandler {
	return &IDsHandler{}
}

// Generate provides a random unique identifier.
func (idh *IDsHandler) Generate(prefix string) string {
	id, _ := uuid.NewV4()
	return prefix + ":" + id.String()
}

func (idh *IDsHandler) NewRecordID() primitive.ObjectID {
	return primitive.NewObjectID()
}

// ParseRecordID accepts 24 hex characters in any letter case. Callers
// should key storages with the returned id Hex() form.
func (idh *IDsHandler) ParseRecordID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}
