package stock

import "context"

type MockStockService struct {
	ReceiveStockFunc func(ctx context.Context, req MovementRequest) (Movement, error)
	IssueStockFunc   func(ctx context.Context, req MovementRequest) (Movement, error)

	ReserveFunc func(ctx context.Context, req ReservationRequest) (Reservation, error)
	ConfirmFunc func(ctx context.Context, id string) (Reservation, error)
	CancelFunc  func(ctx context.Context, id string) (Reservation, error)
	FulfillFunc func(ctx context.Context, id, actor string) (Reservation, Movement, error)

	GetSnapshotFunc     func(ctx context.Context, itemID string) (ItemSnapshot, error)
	GetLowStockFunc     func(ctx context.Context, limit, offset int) ([]ItemSnapshot, error)
	GetMovementsFunc    func(ctx context.Context, itemID string, limit, offset int) ([]Movement, error)
	GetReservationFunc  func(ctx context.Context, id string) (Reservation, error)
	GetReservationsFunc func(ctx context.Context, options GetReservationsOptions, limit, offset int) ([]Reservation, error)

	SubscribeSnapshotsFunc      func(ch chan<- ItemSnapshot) (id SnapshotSubID)
	UnsubscribeSnapshotsFunc    func(id SnapshotSubID)
	SubscribeReservationsFunc   func(ch chan<- Reservation) (id ReservationSubID)
	UnsubscribeReservationsFunc func(id ReservationSubID)
}

func NewMockStockService() MockStockService {
	return MockStockService{
		ReceiveStockFunc: func(ctx context.Context, req MovementRequest) (Movement, error) { return Movement{}, nil },
		IssueStockFunc:   func(ctx context.Context, req MovementRequest) (Movement, error) { return Movement{}, nil },
		ReserveFunc: func(ctx context.Context, req ReservationRequest) (Reservation, error) {
			return Reservation{}, nil
		},
		ConfirmFunc: func(ctx context.Context, id string) (Reservation, error) { return Reservation{}, nil },
		CancelFunc:  func(ctx context.Context, id string) (Reservation, error) { return Reservation{}, nil },
		FulfillFunc: func(ctx context.Context, id, actor string) (Reservation, Movement, error) {
			return Reservation{}, Movement{}, nil
		},
		GetSnapshotFunc: func(ctx context.Context, itemID string) (ItemSnapshot, error) { return ItemSnapshot{}, nil },
		GetLowStockFunc: func(ctx context.Context, limit, offset int) ([]ItemSnapshot, error) {
			return []ItemSnapshot{}, nil
		},
		GetMovementsFunc: func(ctx context.Context, itemID string, limit, offset int) ([]Movement, error) {
			return []Movement{}, nil
		},
		GetReservationFunc: func(ctx context.Context, id string) (Reservation, error) { return Reservation{}, nil },
		GetReservationsFunc: func(ctx context.Context, options GetReservationsOptions, limit, offset int) ([]Reservation, error) {
			return []Reservation{}, nil
		},
		SubscribeSnapshotsFunc:      func(ch chan<- ItemSnapshot) (id SnapshotSubID) { return "" },
		UnsubscribeSnapshotsFunc:    func(id SnapshotSubID) {},
		SubscribeReservationsFunc:   func(ch chan<- Reservation) (id ReservationSubID) { return "" },
		UnsubscribeReservationsFunc: func(id ReservationSubID) {},
	}
}

func (m *MockStockService) ReceiveStock(ctx context.Context, req MovementRequest) (Movement, error) {
	return m.ReceiveStockFunc(ctx, req)
}

func (m *MockStockService) IssueStock(ctx context.Context, req MovementRequest) (Movement, error) {
	return m.IssueStockFunc(ctx, req)
}

func (m *MockStockService) Reserve(ctx context.Context, req ReservationRequest) (Reservation, error) {
	return m.ReserveFunc(ctx, req)
}

func (m *MockStockService) Confirm(ctx context.Context, id string) (Reservation, error) {
	return m.ConfirmFunc(ctx, id)
}

func (m *MockStockService) Cancel(ctx context.Context, id string) (Reservation, error) {
	return m.CancelFunc(ctx, id)
}

func (m *MockStockService) Fulfill(ctx context.Context, id, actor string) (Reservation, Movement, error) {
	return m.FulfillFunc(ctx, id, actor)
}

func (m *MockStockService) GetSnapshot(ctx context.Context, itemID string) (ItemSnapshot, error) {
	return m.GetSnapshotFunc(ctx, itemID)
}

func (m *MockStockService) GetLowStock(ctx context.Context, limit, offset int) ([]ItemSnapshot, error) {
	return m.GetLowStockFunc(ctx, limit, offset)
}

func (m *MockStockService) GetMovements(ctx context.Context, itemID string, limit, offset int) ([]Movement, error) {
	return m.GetMovementsFunc(ctx, itemID, limit, offset)
}

func (m *MockStockService) GetReservation(ctx context.Context, id string) (Reservation, error) {
	return m.GetReservationFunc(ctx, id)
}

func (m *MockStockService) GetReservations(ctx context.Context, options GetReservationsOptions, limit, offset int) ([]Reservation, error) {
	return m.GetReservationsFunc(ctx, options, limit, offset)
}

func (m *MockStockService) SubscribeSnapshots(ch chan<- ItemSnapshot) (id SnapshotSubID) {
	return m.SubscribeSnapshotsFunc(ch)
}

func (m *MockStockService) UnsubscribeSnapshots(id SnapshotSubID) {
	m.UnsubscribeSnapshotsFunc(id)
}

func (m *MockStockService) SubscribeReservations(ch chan<- Reservation) (id ReservationSubID) {
	return m.SubscribeReservationsFunc(ch)
}

func (m *MockStockService) UnsubscribeReservations(id ReservationSubID) {
	m.UnsubscribeReservationsFunc(id)
}
