package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

type AddressServiceProvider interface {
	Create(ctx context.Context, input AddressInput) (Address, error)
	GetOne(ctx context.Context, id string) (Address, error)
	GetAll(ctx context.Context) ([]Address, error)
	Update(ctx context.Context, id string, input AddressInput) (Address, error)
	Delete(ctx context.Context, id string) (Address, error)
}

type AddressService struct {
	serviceCore
	storage AddressStorage
}

func NewAddressService(logger *zap.Logger, config *Config, clock Clocker, ids UIDHandler, storage AddressStorage, queue Queuer) AddressServiceProvider {
	return &AddressService{
		serviceCore: newServiceCore(logger, config, clock, ids, queue),
		storage:     storage,
	}
}

func (as *AddressService) Create(ctx context.Context, input AddressInput) (Address, error) {
	if err := ValidateInput(input); err != nil {
		return Address{}, err
	}
	now := as.now()
	address := Address{
		ID:        as.ids.NewRecordID(),
		Address:   input.Address,
		City:      input.City,
		State:     input.State,
		ZipCode:   input.ZipCode,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if input.IsDefault != nil {
		address.IsDefault = *input.IsDefault
	}
	if err := as.storage.Add(ctx, address.ID.Hex(), address); err != nil {
		return Address{}, internalError("address.create", err)
	}
	as.mirror(ctx, CreateQueue, AddressesCollection, address.ID.Hex(), address)
	return address, nil
}

func (as *AddressService) GetOne(ctx context.Context, id string) (Address, error) {
	id, err := as.recordKey(id)
	if err != nil {
		return Address{}, err
	}
	address, err := as.storage.GetOne(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Address{}, fmt.Errorf("address %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Address{}, internalError("address.get", err)
	}
	return address, nil
}

func (as *AddressService) GetAll(ctx context.Context) ([]Address, error) {
	addresses, err := as.storage.GetAll(ctx)
	if err != nil {
		return nil, internalError("address.list", err)
	}
	return addresses, nil
}

// Update replaces the four editable fields of the address. IsDefault
// is only changed when provided.
func (as *AddressService) Update(ctx context.Context, id string, input AddressInput) (Address, error) {
	id, err := as.recordKey(id)
	if err != nil {
		return Address{}, err
	}
	if err = ValidateInput(input); err != nil {
		return Address{}, err
	}
	address, err := as.GetOne(ctx, id)
	if err != nil {
		return Address{}, err
	}
	address.Address = input.Address
	address.City = input.City
	address.State = input.State
	address.ZipCode = input.ZipCode
	if input.IsDefault != nil {
		address.IsDefault = *input.IsDefault
	}
	address.UpdatedAt = as.now()

	address, err = as.storage.Update(ctx, id, address)
	if errors.Is(err, ErrNotFound) {
		return Address{}, fmt.Errorf("address %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Address{}, internalError("address.update", err)
	}
	as.mirror(ctx, UpdateQueue, AddressesCollection, id, address)
	return address, nil
}

// Delete removes the address and returns the removed record.
func (as *AddressService) Delete(ctx context.Context, id string) (Address, error) {
	id, err := as.recordKey(id)
	if err != nil {
		return Address{}, err
	}
	address, err := as.GetOne(ctx, id)
	if err != nil {
		return Address{}, err
	}
	err = as.storage.Delete(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Address{}, fmt.Errorf("address %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Address{}, internalError("address.delete", err)
	}
	as.mirror(ctx, DeleteQueue, AddressesCollection, id, nil)
	return address, nil
}
