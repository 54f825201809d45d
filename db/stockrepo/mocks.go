package stockrepo

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/summitair/inventory-service/core"
	"github.com/summitair/inventory-service/core/catalog"
	"github.com/summitair/inventory-service/core/stock"
	"github.com/summitair/inventory-service/test"
)

type MockRepo struct {
	SaveMovementFunc func(ctx context.Context, movement *stock.Movement, options ...core.UpdateOptions) error
	GetMovementsFunc func(ctx context.Context, itemID string, limit, offset int, options ...core.QueryOptions) ([]stock.Movement, error)
	GetOnHandFunc    func(ctx context.Context, itemID string, options ...core.QueryOptions) (decimal.Decimal, error)

	SaveReservationFunc         func(ctx context.Context, reservation *stock.Reservation, options ...core.UpdateOptions) error
	UpdateReservationStatusFunc func(ctx context.Context, id string, status stock.Status, options ...core.UpdateOptions) error
	GetReservationFunc          func(ctx context.Context, id string, options ...core.QueryOptions) (stock.Reservation, error)
	GetReservationsFunc         func(ctx context.Context, resOptions stock.GetReservationsOptions, limit, offset int, options ...core.QueryOptions) ([]stock.Reservation, error)
	GetCommittedFunc            func(ctx context.Context, itemID string, options ...core.QueryOptions) (decimal.Decimal, error)

	GetItemFunc             func(ctx context.Context, id string, options ...core.QueryOptions) (catalog.Item, error)
	GetLowStockSummariesFunc func(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]stock.ItemSummary, error)

	BeginTransactionFunc func(ctx context.Context) (core.Transaction, error)

	*test.CallWatcher
}

func NewMockRepo() *MockRepo {
	return &MockRepo{
		SaveMovementFunc: func(ctx context.Context, movement *stock.Movement, options ...core.UpdateOptions) error {
			return nil
		},
		GetMovementsFunc: func(ctx context.Context, itemID string, limit, offset int, options ...core.QueryOptions) ([]stock.Movement, error) {
			return []stock.Movement{}, nil
		},
		GetOnHandFunc: func(ctx context.Context, itemID string, options ...core.QueryOptions) (decimal.Decimal, error) {
			return decimal.Zero, nil
		},
		SaveReservationFunc: func(ctx context.Context, reservation *stock.Reservation, options ...core.UpdateOptions) error {
			return nil
		},
		UpdateReservationStatusFunc: func(ctx context.Context, id string, status stock.Status, options ...core.UpdateOptions) error {
			return nil
		},
		GetReservationFunc: func(ctx context.Context, id string, options ...core.QueryOptions) (stock.Reservation, error) {
			return stock.Reservation{}, nil
		},
		GetReservationsFunc: func(ctx context.Context, resOptions stock.GetReservationsOptions, limit, offset int, options ...core.QueryOptions) ([]stock.Reservation, error) {
			return []stock.Reservation{}, nil
		},
		GetCommittedFunc: func(ctx context.Context, itemID string, options ...core.QueryOptions) (decimal.Decimal, error) {
			return decimal.Zero, nil
		},
		GetItemFunc: func(ctx context.Context, id string, options ...core.QueryOptions) (catalog.Item, error) {
			return catalog.Item{}, nil
		},
		GetLowStockSummariesFunc: func(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]stock.ItemSummary, error) {
			return []stock.ItemSummary{}, nil
		},
		BeginTransactionFunc: func(ctx context.Context) (core.Transaction, error) {
			return nil, nil
		},
		CallWatcher: test.NewCallWatcher(),
	}
}

func (r *MockRepo) SaveMovement(ctx context.Context, movement *stock.Movement, options ...core.UpdateOptions) error {
	r.AddCall(ctx, movement, options)
	return r.SaveMovementFunc(ctx, movement, options...)
}

func (r *MockRepo) GetMovements(ctx context.Context, itemID string, limit, offset int, options ...core.QueryOptions) ([]stock.Movement, error) {
	r.AddCall(ctx, itemID, limit, offset, options)
	return r.GetMovementsFunc(ctx, itemID, limit, offset, options...)
}

func (r *MockRepo) GetOnHand(ctx context.Context, itemID string, options ...core.QueryOptions) (decimal.Decimal, error) {
	r.AddCall(ctx, itemID, options)
	return r.GetOnHandFunc(ctx, itemID, options...)
}

func (r *MockRepo) SaveReservation(ctx context.Context, reservation *stock.Reservation, options ...core.UpdateOptions) error {
	r.AddCall(ctx, reservation, options)
	return r.SaveReservationFunc(ctx, reservation, options...)
}

func (r *MockRepo) UpdateReservationStatus(ctx context.Context, id string, status stock.Status, options ...core.UpdateOptions) error {
	r.AddCall(ctx, id, status, options)
	return r.UpdateReservationStatusFunc(ctx, id, status, options...)
}

func (r *MockRepo) GetReservation(ctx context.Context, id string, options ...core.QueryOptions) (stock.Reservation, error) {
	r.AddCall(ctx, id, options)
	return r.GetReservationFunc(ctx, id, options...)
}

func (r *MockRepo) GetReservations(ctx context.Context, resOptions stock.GetReservationsOptions, limit, offset int, options ...core.QueryOptions) ([]stock.Reservation, error) {
	r.AddCall(ctx, resOptions, limit, offset, options)
	return r.GetReservationsFunc(ctx, resOptions, limit, offset, options...)
}

func (r *MockRepo) GetCommitted(ctx context.Context, itemID string, options ...core.QueryOptions) (decimal.Decimal, error) {
	r.AddCall(ctx, itemID, options)
	return r.GetCommittedFunc(ctx, itemID, options...)
}

func (r *MockRepo) GetItem(ctx context.Context, id string, options ...core.QueryOptions) (catalog.Item, error) {
	r.AddCall(ctx, id, options)
	return r.GetItemFunc(ctx, id, options...)
}

func (r *MockRepo) GetLowStockSummaries(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]stock.ItemSummary, error) {
	r.AddCall(ctx, limit, offset, options)
	return r.GetLowStockSummariesFunc(ctx, limit, offset, options...)
}

func (r *MockRepo) BeginTransaction(ctx context.Context) (core.Transaction, error) {
	r.AddCall(ctx)
	return r.BeginTransactionFunc(ctx)
}
