package queue

import (
	"context"

	"github.com/summitair/inventory-service/core/stock"
	"github.com/summitair/inventory-service/test"
)

type MockQueue struct {
	PublishMovementFunc    func(ctx context.Context, movement stock.Movement) error
	PublishReservationFunc func(ctx context.Context, reservation stock.Reservation) error
	*test.CallWatcher
}

func NewMockQueue() *MockQueue {
	return &MockQueue{
		PublishMovementFunc:    func(ctx context.Context, movement stock.Movement) error { return nil },
		PublishReservationFunc: func(ctx context.Context, reservation stock.Reservation) error { return nil },
		CallWatcher:            test.NewCallWatcher(),
	}
}

func (q *MockQueue) PublishMovement(ctx context.Context, movement stock.Movement) error {
	q.AddCall(ctx, movement)
	return q.PublishMovementFunc(ctx, movement)
}

func (q *MockQueue) PublishReservation(ctx context.Context, reservation stock.Reservation) error {
	q.AddCall(ctx, reservation)
	return q.PublishReservationFunc(ctx, reservation)
}
