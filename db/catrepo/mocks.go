package catrepo

import (
	"context"

	"github.com/summitair/inventory-service/core"
	"github.com/summitair/inventory-service/core/catalog"
	"github.com/summitair/inventory-service/test"
)

type MockRepo struct {
	GetItemFunc             func(ctx context.Context, id string, options ...core.QueryOptions) (catalog.Item, error)
	GetItemByPartNumberFunc func(ctx context.Context, partNumber string, options ...core.QueryOptions) (catalog.Item, error)
	GetAllItemsFunc         func(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]catalog.Item, error)
	SaveItemFunc            func(ctx context.Context, item *catalog.Item, options ...core.UpdateOptions) error
	RetireItemFunc          func(ctx context.Context, id string, options ...core.UpdateOptions) error
	DeleteItemFunc          func(ctx context.Context, id string, options ...core.UpdateOptions) error
	HasMovementsFunc        func(ctx context.Context, id string, options ...core.QueryOptions) (bool, error)

	*test.CallWatcher
}

func NewMockRepo() *MockRepo {
	return &MockRepo{
		GetItemFunc: func(ctx context.Context, id string, options ...core.QueryOptions) (catalog.Item, error) {
			return catalog.Item{}, core.ErrNotFound
		},
		GetItemByPartNumberFunc: func(ctx context.Context, partNumber string, options ...core.QueryOptions) (catalog.Item, error) {
			return catalog.Item{}, core.ErrNotFound
		},
		GetAllItemsFunc: func(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]catalog.Item, error) {
			return []catalog.Item{}, nil
		},
		SaveItemFunc: func(ctx context.Context, item *catalog.Item, options ...core.UpdateOptions) error {
			return nil
		},
		RetireItemFunc: func(ctx context.Context, id string, options ...core.UpdateOptions) error {
			return nil
		},
		DeleteItemFunc: func(ctx context.Context, id string, options ...core.UpdateOptions) error {
			return nil
		},
		HasMovementsFunc: func(ctx context.Context, id string, options ...core.QueryOptions) (bool, error) {
			return false, nil
		},
		CallWatcher: test.NewCallWatcher(),
	}
}

func (r *MockRepo) GetItem(ctx context.Context, id string, options ...core.QueryOptions) (catalog.Item, error) {
	r.AddCall(ctx, id, options)
	return r.GetItemFunc(ctx, id, options...)
}

func (r *MockRepo) GetItemByPartNumber(ctx context.Context, partNumber string, options ...core.QueryOptions) (catalog.Item, error) {
	r.AddCall(ctx, partNumber, options)
	return r.GetItemByPartNumberFunc(ctx, partNumber, options...)
}

func (r *MockRepo) GetAllItems(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]catalog.Item, error) {
	r.AddCall(ctx, limit, offset, options)
	return r.GetAllItemsFunc(ctx, limit, offset, options...)
}

func (r *MockRepo) SaveItem(ctx context.Context, item *catalog.Item, options ...core.UpdateOptions) error {
	r.AddCall(ctx, item, options)
	return r.SaveItemFunc(ctx, item, options...)
}

func (r *MockRepo) RetireItem(ctx context.Context, id string, options ...core.UpdateOptions) error {
	r.AddCall(ctx, id, options)
	return r.RetireItemFunc(ctx, id, options...)
}

func (r *MockRepo) DeleteItem(ctx context.Context, id string, options ...core.UpdateOptions) error {
	r.AddCall(ctx, id, options)
	return r.DeleteItemFunc(ctx, id, options...)
}

func (r *MockRepo) HasMovements(ctx context.Context, id string, options ...core.QueryOptions) (bool, error) {
	r.AddCall(ctx, id, options)
	return r.HasMovementsFunc(ctx, id, options...)
}
