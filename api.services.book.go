package main

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type BookServiceProvider interface {
	Create(ctx context.Context, input BookInput) (Book, error)
	GetOne(ctx context.Context, id string) (BookView, error)
	GetAll(ctx context.Context) ([]BookView, error)
	GetAllByCategory(ctx context.Context, categoryID string) ([]BookView, error)
	Update(ctx context.Context, id string, patch BookPatch) (Book, error)
}

type BookService struct {
	serviceCore
	storage    BookStorage
	categories CategoryStorage
	strictRef  bool
}

func NewBookService(logger *zap.Logger, config *Config, clock Clocker, ids UIDHandler, storage BookStorage, categories CategoryStorage, queue Queuer) BookServiceProvider {
	bs := &BookService{
		serviceCore: newServiceCore(logger, config, clock, ids, queue),
		storage:     storage,
		categories:  categories,
	}
	if config != nil {
		bs.strictRef = config.Catalog.StrictCategoryReference
	}
	return bs
}

// Create validates the input then stores a new book under a fresh id.
// The category reference is only checked for existence in strict mode.
func (bs *BookService) Create(ctx context.Context, input BookInput) (Book, error) {
	if err := ValidateInput(input); err != nil {
		return Book{}, err
	}
	categoryID, err := bs.ids.ParseRecordID(input.Category)
	if err != nil {
		return Book{}, NewValidationError("category", "objectid", "category must be a valid identifier")
	}
	if err = bs.checkCategory(ctx, categoryID.Hex()); err != nil {
		return Book{}, err
	}


	now := bs.now()
	book := Book{
		ID:        bs.ids.NewRecordID(),
		Title:     input.Title,
		Price:     *input.Price,
		Rating:    *input.Rating,
		Category:  categoryID,
		ImgURL:    input.ImgURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := bs.storage.Add(ctx, book.ID.Hex(), book); err != nil {
		return Book{}, internalError("book.create", err)
	}
	bs.mirror(ctx, CreateQueue, BooksCollection, book.ID.Hex(), book)
	return book, nil
}

// GetOne returns the book with its category resolved.
func (bs *BookService) GetOne(ctx context.Context, id string) (BookView, error) {
	book, err := bs.getBook(ctx, id)
	if err != nil {
		return BookView{}, err
	}
	ref, err := bs.resolveOne(ctx, book.Category.Hex())
	if err != nil {
		return BookView{}, err
	}
	return book.Resolve(ref), nil
}

// GetAll returns every book with its category resolved.
func (bs *BookService) GetAll(ctx context.Context) ([]BookView, error) {
	books, err := bs.storage.GetAll(ctx)
	if err != nil {
		return nil, internalError("book.list", err)
	}
	return bs.resolveAll(ctx, books)
}

// GetAllByCategory returns the books referencing the category. The result
// is empty, not an error, when the category has no books or does not exist.
func (bs *BookService) GetAllByCategory(ctx context.Context, categoryID string) ([]BookView, error) {
	categoryID, err := bs.recordKey(categoryID)
	if err != nil {
		return []BookView{}, nil
	}
	books, err := bs.storage.GetAllByCategory(ctx, categoryID)
	if err != nil {
		return nil, internalError("book.list_by_category", err)
	}
	views := make([]BookView, 0, len(books))
	if len(books) == 0 {
		return views, nil
	}
	ref, err := bs.resolveOne(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	for _, book := range books {
		views = append(views, book.Resolve(ref))
	}
	return views, nil
}

// Update merges the patch into the stored book, validates and saves it.
func (bs *BookService) Update(ctx context.Context, id string, patch BookPatch) (Book, error) {
	id, err := bs.recordKey(id)
	if err != nil {
		return Book{}, err
	}
	if err = ValidateInput(patch); err != nil {
		return Book{}, err
	}
	book, err := bs.getBook(ctx, id)
	if err != nil {
		return Book{}, err
	}
	if patch.Category != nil && !bs.sameRecordID(*patch.Category, book.Category) {
		categoryID, _ := bs.ids.ParseRecordID(*patch.Category)
		if err = bs.checkCategory(ctx, categoryID.Hex()); err != nil {
			return Book{}, err
		}
	}

	patch.Apply(&book)
	book.UpdatedAt = bs.now()
	book, err = bs.storage.Update(ctx, id, book)
	if errors.Is(err, ErrNotFound) {
		return Book{}, fmt.Errorf("book %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Book{}, internalError("book.update", err)
	}
	bs.mirror(ctx, UpdateQueue, BooksCollection, id, book)
	return book, nil
}

func (bs *BookService) getBook(ctx context.Context, id string) (Book, error) {
	id, err := bs.recordKey(id)
	if err != nil {
		return Book{}, err
	}
	book, err := bs.storage.GetOne(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Book{}, fmt.Errorf("book %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Book{}, internalError("book.get", err)
	}
	return book, nil
}

// checkCategory verifies the referenced category exists when strict mode is on.
func (bs *BookService) checkCategory(ctx context.Context, categoryID string) error {
	if !bs.strictRef {
		return nil
	}
	_, err := bs.categories.GetOne(ctx, categoryID)
	if errors.Is(err, ErrNotFound) {
		return NewValidationError("category", "exists", "category does not exist")
	}
	if err != nil {
		return internalError("book.check_category", err)
	}
	return nil
}

// resolveOne returns the projection of a category or nil if it is dangling.
func (bs *BookService) resolveOne(ctx context.Context, categoryID string) (*CategoryRef, error) {
	category, err := bs.categories.GetOne(ctx, categoryID)
	if errors.Is(err, ErrNotFound) {
		bs.logger.Debug("service: dangling category reference", zap.String("category.id", categoryID))
		return nil, nil
	}
	if err != nil {
		return nil, internalError("book.resolve_category", err)
	}
	return category.Ref(), nil
}

// resolveAll loads the categories once and attaches each book's projection.
func (bs *BookService) resolveAll(ctx context.Context, books []Book) ([]BookView, error) {
	views := make([]BookView, 0, len(books))
	if len(books) == 0 {
		return views, nil
	}
	categories, err := bs.categories.GetAll(ctx)
	if err != nil {
		return nil, internalError("book.resolve_categories", err)
	}
	refs := make(map[primitive.ObjectID]*CategoryRef, len(categories))
	for _, c := range categories {
		refs[c.ID] = c.Ref()
	}
	for _, book := range books {
		views = append(views, book.Resolve(refs[book.Category]))
	}
	return views, nil
}
