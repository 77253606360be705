package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestValidateInput ensures every rule is reported with its json field name.
func TestValidateInput(t *testing.T) {
	cid := primitive.NewObjectID().Hex()
	testCases := []struct {
		name    string
		input   interface{}
		message string
	}{
		{"rating too high", BookInput{Title: "t", Price: floatPtr(1), Rating: floatPtr(11), Category: cid}, "rating must be less than or equal to 10"},
		{"rating too low", BookInput{Title: "t", Price: floatPtr(1), Rating: floatPtr(0), Category: cid}, "rating must be greater than or equal to 1"},
		{"negative price", BookInput{Title: "t", Price: floatPtr(-1), Rating: floatPtr(5), Category: cid}, "price must be greater than or equal to 0"},
		{"missing category", BookInput{Title: "t", Price: floatPtr(1), Rating: floatPtr(5)}, "category is required"},
		{"malformed category", BookInput{Title: "t", Price: floatPtr(1), Rating: floatPtr(5), Category: "123"}, "category must be a valid identifier"},
		{"empty patch title", BookPatch{Title: strPtr("")}, "title must not be empty"},
		{"missing city", AddressInput{Address: "a", State: "s", ZipCode: "z"}, "city is required"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateInput(tc.input)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			require.Len(t, verr.Fields, 1)
			assert.Equal(t, tc.message, verr.Fields[0].Message)
		})
	}

	t.Run("zero price is valid", func(t *testing.T) {
		assert.NoError(t, ValidateInput(BookInput{Title: "t", Price: floatPtr(0), Rating: floatPtr(1), Category: cid}))
	})

	t.Run("empty patch is valid", func(t *testing.T) {
		assert.NoError(t, ValidateInput(BookPatch{}))
	})

	t.Run("uppercase category is valid", func(t *testing.T) {
		upper := strings.ToUpper(cid)
		assert.NoError(t, ValidateInput(BookInput{Title: "t", Price: floatPtr(1), Rating: floatPtr(5), Category: upper}))
		assert.NoError(t, ValidateInput(BookPatch{Category: &upper}))
	})
}

// TestBookPatchApply ensures only provided fields are merged.
func TestBookPatchApply(t *testing.T) {
	cid := primitive.NewObjectID()
	book := Book{Title: "Dune", Price: 10, Rating: 8, Category: cid, ImgURL: "a.png"}

	var patch BookPatch
	require.NoError(t, json.Unmarshal([]byte(`{"rating":9,"title":null}`), &patch))
	patch.Apply(&book)
	assert.Equal(t, Book{Title: "Dune", Price: 10, Rating: 9, Category: cid, ImgURL: "a.png"}, book)

	other := primitive.NewObjectID()
	BookPatch{Category: strPtr(other.Hex()), ImgURL: strPtr("")}.Apply(&book)
	assert.Equal(t, other, book.Category)
	assert.Empty(t, book.ImgURL)
}

// TestBookResolve ensures the view carries the category projection.
func TestBookResolve(t *testing.T) {
	category := Category{ID: primitive.NewObjectID(), Name: "Fiction", Description: "Novels"}
	book := Book{ID: primitive.NewObjectID(), Title: "Dune", Category: category.ID}

	view := book.Resolve(category.Ref())
	data, err := json.Marshal(view)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"category":{"id":"`+category.ID.Hex()+`","name":"Fiction"}`)

	data, err = json.Marshal(book.Resolve(nil))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"category":null`)
}

// TestErrors ensures errors wrap and read as expected.
func TestErrors(t *testing.T) {
	wrapped := fmt.Errorf("book %s: %w", "x", ErrNotFound)
	assert.True(t, errors.Is(wrapped, ErrNotFound))

	cause := errors.New("connection refused")
	err := internalError("book.list", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "book.list: connection refused", err.Error())

	verr := &ValidationError{Fields: []FieldError{
		{Field: "price", Rule: "gte", Message: "price must be greater than or equal to 0"},
		{Field: "rating", Rule: "lte", Message: "rating must be less than or equal to 10"},
	}}
	assert.Equal(t, "validation failed: price must be greater than or equal to 0; rating must be less than or equal to 10", verr.Error())
}
