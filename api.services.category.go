package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

type CategoryServiceProvider interface {
	Create(ctx context.Context, input CategoryInput) (Category, error)
	GetOne(ctx context.Context, id string) (Category, error)
	GetAll(ctx context.Context) ([]Category, error)
}

type CategoryService struct {
	serviceCore
	storage CategoryStorage
}

func NewCategoryService(logger *zap.Logger, config *Config, clock Clocker, ids UIDHandler, storage CategoryStorage, queue Queuer) CategoryServiceProvider {
	return &CategoryService{
		serviceCore: newServiceCore(logger, config, clock, ids, queue),
		storage:     storage,
	}
}

// Create validates the input then stores a new category under a fresh id.
func (cs *CategoryService) Create(ctx context.Context, input CategoryInput) (Category, error) {
	if err := ValidateInput(input); err != nil {
		return Category{}, err
	}
	now := cs.now()
	category := Category{
		ID:          cs.ids.NewRecordID(),
		Name:        input.Name,
		Description: input.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := cs.storage.Add(ctx, category.ID.Hex(), category); err != nil {
		return Category{}, internalError("category.create", err)
	}
	cs.mirror(ctx, CreateQueue, CategoriesCollection, category.ID.Hex(), category)
	return category, nil
}

func (cs *CategoryService) GetOne(ctx context.Context, id string) (Category, error) {
	id, err := cs.recordKey(id)
	if err != nil {
		return Category{}, err
	}
	category, err := cs.storage.GetOne(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Category{}, fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Category{}, internalError("category.get", err)
	}
	return category, nil
}

func (cs *CategoryService) GetAll(ctx context.Context) ([]Category, error) {
	categories, err := cs.storage.GetAll(ctx)
	if err != nil {
		return nil, internalError("category.list", err)
	}
	return categories, nil
}
