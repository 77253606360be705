package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type testServices struct {
	storages   *Storages
	queue      *recordingQueue
	categories CategoryServiceProvider
	books      BookServiceProvider
	addresses  AddressServiceProvider
}

func newTestServices(config *Config) *testServices {
	s := NewMemoryStorages()
	q := newRecordingQueue()
	ids := NewIDsHandler()
	ck := NewMockClocker()
	return &testServices{
		storages:   s,
		queue:      q,
		categories: NewCategoryService(zap.NewNop(), config, ck, ids, s.Categories, q),
		books:      NewBookService(zap.NewNop(), config, ck, ids, s.Books, s.Categories, q),
		addresses:  NewAddressService(zap.NewNop(), config, ck, ids, s.Addresses, q),
	}
}

func floatPtr(f float64) *float64 { return &f }
func strPtr(s string) *string     { return &s }
func boolPtr(b bool) *bool        { return &b }

func validBookInput(categoryID string) BookInput {
	return BookInput{
		Title:    "Dune",
		Price:    floatPtr(9.99),
		Rating:   floatPtr(9),
		Category: categoryID,
		ImgURL:   "https://img.example/dune.png",
	}
}

func TestCategoryService(t *testing.T) {
	ts := newTestServices(nil)
	ctx := context.Background()

	t.Run("should pass: create then get", func(t *testing.T) {
		created, err := ts.categories.Create(ctx, CategoryInput{Name: "Fiction", Description: "Novels"})
		require.NoError(t, err)
		assert.False(t, created.ID.IsZero())
		assert.Equal(t, NewMockClocker().Now(), created.CreatedAt)
		assert.Equal(t, created.CreatedAt, created.UpdatedAt)

		got, err := ts.categories.GetOne(ctx, created.ID.Hex())
		require.NoError(t, err)
		assert.Equal(t, created, got)
		assert.Len(t, ts.queue.Events(CreateQueue), 1)
	})

	t.Run("should fail: missing name", func(t *testing.T) {
		_, err := ts.categories.Create(ctx, CategoryInput{Description: "no name"})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "name", verr.Fields[0].Field)
		assert.Equal(t, "name is required", verr.Fields[0].Message)
	})

	t.Run("should fail: never created id", func(t *testing.T) {
		_, err := ts.categories.GetOne(ctx, primitive.NewObjectID().Hex())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("should fail: malformed id", func(t *testing.T) {
		_, err := ts.categories.GetOne(ctx, "not-an-id")
		assert.ErrorIs(t, err, ErrInvalidID)
	})

	t.Run("should pass: list", func(t *testing.T) {
		categories, err := ts.categories.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, categories, 1)
	})
}

func TestBookServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("should pass: create then get returns the same book", func(t *testing.T) {
		ts := newTestServices(nil)
		category, err := ts.categories.Create(ctx, CategoryInput{Name: "Fiction"})
		require.NoError(t, err)

		book, err := ts.books.Create(ctx, validBookInput(category.ID.Hex()))
		require.NoError(t, err)
		assert.Equal(t, category.ID, book.Category)

		view, err := ts.books.GetOne(ctx, book.ID.Hex())
		require.NoError(t, err)
		assert.Equal(t, book.Resolve(category.Ref()), view)
	})

	t.Run("should fail: invalid fields", func(t *testing.T) {
		ts := newTestServices(nil)
		cid := primitive.NewObjectID().Hex()
		testCases := []struct {
			name  string
			input BookInput
			field string
			rule  string
		}{
			{"rating below range", BookInput{Title: "t", Price: floatPtr(1), Rating: floatPtr(0), Category: cid}, "rating", "gte"},
			{"rating above range", BookInput{Title: "t", Price: floatPtr(1), Rating: floatPtr(11), Category: cid}, "rating", "lte"},
			{"negative price", BookInput{Title: "t", Price: floatPtr(-1), Rating: floatPtr(5), Category: cid}, "price", "gte"},
			{"missing price", BookInput{Title: "t", Rating: floatPtr(5), Category: cid}, "price", "required"},
			{"missing title", BookInput{Price: floatPtr(1), Rating: floatPtr(5), Category: cid}, "title", "required"},
			{"malformed category", BookInput{Title: "t", Price: floatPtr(1), Rating: floatPtr(5), Category: "xyz"}, "category", "objectid"},
		}
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := ts.books.Create(ctx, tc.input)
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				require.Len(t, verr.Fields, 1)
				assert.Equal(t, tc.field, verr.Fields[0].Field)
				assert.Equal(t, tc.rule, verr.Fields[0].Rule)
			})
		}
		books, err := ts.storages.Books.GetAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, books)
	})

	t.Run("should pass: rating bounds are inclusive", func(t *testing.T) {
		ts := newTestServices(nil)
		cid := primitive.NewObjectID().Hex()
		for _, rating := range []float64{1, 10} {
			input := validBookInput(cid)
			input.Rating = floatPtr(rating)
			_, err := ts.books.Create(ctx, input)
			assert.NoError(t, err)
		}
	})

	t.Run("should pass: unknown category accepted by default", func(t *testing.T) {
		ts := newTestServices(nil)
		book, err := ts.books.Create(ctx, validBookInput(primitive.NewObjectID().Hex()))
		require.NoError(t, err)
		view, err := ts.books.GetOne(ctx, book.ID.Hex())
		require.NoError(t, err)
		assert.Nil(t, view.Category)
	})

	t.Run("should fail: unknown category in strict mode", func(t *testing.T) {
		config := &Config{}
		config.Catalog.StrictCategoryReference = true
		ts := newTestServices(config)
		_, err := ts.books.Create(ctx, validBookInput(primitive.NewObjectID().Hex()))
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "category", verr.Fields[0].Field)
	})

	t.Run("should fail: storage error", func(t *testing.T) {
		storage := &MockBookStorage{}
		storage.AddFunc = func(context.Context, string, Book) error { return errors.New("disk full") }
		bs := NewBookService(zap.NewNop(), nil, NewMockClocker(), NewIDsHandler(), storage, newMemoryStorage[Category](), nil)
		_, err := bs.Create(ctx, validBookInput(primitive.NewObjectID().Hex()))
		var ierr *InternalError
		require.ErrorAs(t, err, &ierr)
		assert.Equal(t, "book.create", ierr.Op)
	})
}

// TestDuneFictionScenario walks through category creation, book creation and
// both resolved listings.
func TestDuneFictionScenario(t *testing.T) {
	ts := newTestServices(nil)
	ctx := context.Background()

	fiction, err := ts.categories.Create(ctx, CategoryInput{Name: "Fiction"})
	require.NoError(t, err)
	_, err = ts.categories.Create(ctx, CategoryInput{Name: "Science"})
	require.NoError(t, err)

	dune, err := ts.books.Create(ctx, validBookInput(fiction.ID.Hex()))
	require.NoError(t, err)

	books, err := ts.books.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, dune.ID, books[0].ID)
	require.NotNil(t, books[0].Category)
	assert.Equal(t, CategoryRef{ID: fiction.ID, Name: "Fiction"}, *books[0].Category)

	byCategory, err := ts.books.GetAllByCategory(ctx, fiction.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, books, byCategory)
}

func TestBookServiceQueries(t *testing.T) {
	ts := newTestServices(nil)
	ctx := context.Background()

	t.Run("by category: unused id gives empty result", func(t *testing.T) {
		books, err := ts.books.GetAllByCategory(ctx, "000000000000000000000000")
		require.NoError(t, err)
		assert.NotNil(t, books)
		assert.Empty(t, books)
	})

	t.Run("by category: malformed id gives empty result", func(t *testing.T) {
		books, err := ts.books.GetAllByCategory(ctx, "fiction")
		require.NoError(t, err)
		assert.Empty(t, books)
	})

	t.Run("get: malformed id", func(t *testing.T) {
		_, err := ts.books.GetOne(ctx, "b:1")
		assert.ErrorIs(t, err, ErrInvalidID)
	})

	t.Run("get: missing book", func(t *testing.T) {
		_, err := ts.books.GetOne(ctx, primitive.NewObjectID().Hex())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list: empty", func(t *testing.T) {
		books, err := ts.books.GetAll(ctx)
		require.NoError(t, err)
		assert.NotNil(t, books)
		assert.Empty(t, books)
	})

	t.Run("list: dangling reference resolves to nil", func(t *testing.T) {
		_, err := ts.books.Create(ctx, validBookInput(primitive.NewObjectID().Hex()))
		require.NoError(t, err)
		books, err := ts.books.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Nil(t, books[0].Category)
	})
}

func TestBookServiceUpdate(t *testing.T) {
	ts := newTestServices(nil)
	ctx := context.Background()
	fiction, err := ts.categories.Create(ctx, CategoryInput{Name: "Fiction"})
	require.NoError(t, err)
	book, err := ts.books.Create(ctx, validBookInput(fiction.ID.Hex()))
	require.NoError(t, err)

	t.Run("should pass: only provided fields change", func(t *testing.T) {
		updated, err := ts.books.Update(ctx, book.ID.Hex(), BookPatch{Price: floatPtr(12.5)})
		require.NoError(t, err)
		assert.Equal(t, 12.5, updated.Price)
		assert.Equal(t, book.Title, updated.Title)
		assert.Equal(t, book.Rating, updated.Rating)
		assert.Equal(t, book.Category, updated.Category)
		assert.Equal(t, book.ImgURL, updated.ImgURL)
		assert.Equal(t, book.CreatedAt, updated.CreatedAt)
		assert.Len(t, ts.queue.Events(UpdateQueue), 1)
	})

	t.Run("should pass: category moves", func(t *testing.T) {
		science, err := ts.categories.Create(ctx, CategoryInput{Name: "Science"})
		require.NoError(t, err)
		updated, err := ts.books.Update(ctx, book.ID.Hex(), BookPatch{Category: strPtr(science.ID.Hex())})
		require.NoError(t, err)
		assert.Equal(t, science.ID, updated.Category)
		view, err := ts.books.GetOne(ctx, book.ID.Hex())
		require.NoError(t, err)
		assert.Equal(t, "Science", view.Category.Name)
	})

	t.Run("should fail: invalid rating", func(t *testing.T) {
		_, err := ts.books.Update(ctx, book.ID.Hex(), BookPatch{Rating: floatPtr(11)})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "rating", verr.Fields[0].Field)
	})

	t.Run("should fail: empty title", func(t *testing.T) {
		_, err := ts.books.Update(ctx, book.ID.Hex(), BookPatch{Title: strPtr("")})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "title", verr.Fields[0].Field)
	})

	t.Run("should fail: missing book", func(t *testing.T) {
		_, err := ts.books.Update(ctx, primitive.NewObjectID().Hex(), BookPatch{Price: floatPtr(1)})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("should fail: malformed id", func(t *testing.T) {
		_, err := ts.books.Update(ctx, "oops", BookPatch{Price: floatPtr(1)})
		assert.ErrorIs(t, err, ErrInvalidID)
	})
}

func TestAddressService(t *testing.T) {
	ts := newTestServices(nil)
	ctx := context.Background()
	input := AddressInput{Address: "1 Main St", City: "Springfield", State: "IL", ZipCode: "62701"}

	created, err := ts.addresses.Create(ctx, input)
	require.NoError(t, err)
	assert.False(t, created.IsDefault)

	t.Run("should fail: missing fields", func(t *testing.T) {
		_, err := ts.addresses.Create(ctx, AddressInput{City: "Springfield"})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Len(t, verr.Fields, 3)
	})

	t.Run("should pass: update replaces fields", func(t *testing.T) {
		replaced := AddressInput{Address: "2 Elm St", City: "Shelbyville", State: "IL", ZipCode: "62565", IsDefault: boolPtr(true)}
		updated, err := ts.addresses.Update(ctx, created.ID.Hex(), replaced)
		require.NoError(t, err)
		assert.Equal(t, "2 Elm St", updated.Address)
		assert.Equal(t, "Shelbyville", updated.City)
		assert.True(t, updated.IsDefault)
		assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	})

	t.Run("should fail: update missing address", func(t *testing.T) {
		_, err := ts.addresses.Update(ctx, primitive.NewObjectID().Hex(), input)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("should pass: delete returns record then not found", func(t *testing.T) {
		deleted, err := ts.addresses.Delete(ctx, created.ID.Hex())
		require.NoError(t, err)
		assert.Equal(t, created.ID, deleted.ID)

		_, err = ts.addresses.GetOne(ctx, created.ID.Hex())
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = ts.addresses.Delete(ctx, created.ID.Hex())
		assert.ErrorIs(t, err, ErrNotFound)

		events := ts.queue.Events(DeleteQueue)
		require.Len(t, events, 1)
		assert.Equal(t, AddressesCollection, events[0].Collection)
		assert.Empty(t, events[0].Record)
	})

	t.Run("should fail: delete malformed id", func(t *testing.T) {
		_, err := ts.addresses.Delete(ctx, "x")
		assert.ErrorIs(t, err, ErrInvalidID)
	})
}

// TestMirrorPushFailure ensures a failing queue never fails the write.
func TestMirrorPushFailure(t *testing.T) {
	q := &MockQueuer{
		PushFunc: func(context.Context, string, ChangeEvent) error { return errors.New("queue down") },
	}
	cs := NewCategoryService(zap.NewNop(), nil, NewMockClocker(), NewIDsHandler(), newMemoryStorage[Category](), q)
	_, err := cs.Create(context.Background(), CategoryInput{Name: "Fiction"})
	assert.NoError(t, err)
}
