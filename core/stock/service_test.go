package stock_test

import (
	"context"
	"os"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/summitair/inventory-service/core"
	"github.com/summitair/inventory-service/core/catalog"
	"github.com/summitair/inventory-service/core/stock"
	"github.com/summitair/inventory-service/db"
	"github.com/summitair/inventory-service/db/stockrepo"
	"github.com/summitair/inventory-service/queue"
	"github.com/summitair/inventory-service/test"
)

func TestMain(m *testing.M) {
	test.ConfigLogging()
	os.Exit(m.Run())
}

func testItem() catalog.Item {
	return catalog.Item{
		ID:         "item1",
		Name:       "Blower Motor",
		PartNumber: "BM-1001",
		Unit:       catalog.UnitCount,
		MinLevel:   decimal.NewFromInt(5),
	}
}

func qty(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestReceiveStock(t *testing.T) {
	tests := []struct {
		name string

		req stock.MovementRequest

		getItemFunc      func(ctx context.Context, id string, options ...core.QueryOptions) (catalog.Item, error)
		saveMovementFunc func(ctx context.Context, movement *stock.Movement, options ...core.UpdateOptions) error

		wantRepoCallCnt map[string]int
		wantTxCallCnt   map[string]int
		wantErr         error
	}{
		{
			name: "movement is saved",
			req:  stock.MovementRequest{ItemID: "item1", Quantity: qty("10"), Actor: "receiving"},

			wantRepoCallCnt: map[string]int{"SaveMovement": 1},
			wantTxCallCnt:   map[string]int{"Commit": 1, "Rollback": 0},
		},
		{
			name: "unknown item is rejected",
			req:  stock.MovementRequest{ItemID: "nosuchitem", Quantity: qty("10"), Actor: "receiving"},

			getItemFunc: func(ctx context.Context, id string, options ...core.QueryOptions) (catalog.Item, error) {
				return catalog.Item{}, core.ErrNotFound
			},

			wantRepoCallCnt: map[string]int{"SaveMovement": 0},
			wantTxCallCnt:   map[string]int{"Commit": 0, "Rollback": 1},
			wantErr:         core.ErrUnknownItem,
		},
		{
			name: "retired item is rejected",
			req:  stock.MovementRequest{ItemID: "item1", Quantity: qty("10"), Actor: "receiving"},

			getItemFunc: func(ctx context.Context, id string, options ...core.QueryOptions) (catalog.Item, error) {
				item := testItem()
				item.Retired = true
				return item, nil
			},

			wantRepoCallCnt: map[string]int{"SaveMovement": 0},
			wantTxCallCnt:   map[string]int{"Commit": 0, "Rollback": 1},
			wantErr:         core.ErrUnknownItem,
		},
		{
			name: "fractional quantity of a counted part is rejected",
			req:  stock.MovementRequest{ItemID: "item1", Quantity: qty("2.5"), Actor: "receiving"},

			wantRepoCallCnt: map[string]int{"SaveMovement": 0},
			wantTxCallCnt:   map[string]int{"Commit": 0, "Rollback": 1},
			wantErr:         core.ErrInvalidQuantity,
		},
		{
			name: "zero quantity is rejected",
			req:  stock.MovementRequest{ItemID: "item1", Quantity: decimal.Zero, Actor: "receiving"},

			wantRepoCallCnt: map[string]int{"SaveMovement": 0},
			wantTxCallCnt:   map[string]int{"Commit": 0, "Rollback": 1},
			wantErr:         core.ErrInvalidQuantity,
		},
		{
			name: "save failure rolls back",
			req:  stock.MovementRequest{ItemID: "item1", Quantity: qty("10"), Actor: "receiving"},

			saveMovementFunc: func(ctx context.Context, movement *stock.Movement, options ...core.UpdateOptions) error {
				return errors.New("some unexpected error")
			},

			wantRepoCallCnt: map[string]int{"SaveMovement": 1},
			wantTxCallCnt:   map[string]int{"Commit": 0, "Rollback": 1},
			wantErr:         errAny,
		},
	}

	for _, tc := range tests {
		mockRepo := stockrepo.NewMockRepo()
		if tc.getItemFunc != nil {
			mockRepo.GetItemFunc = tc.getItemFunc
		} else {
			mockRepo.GetItemFunc = func(ctx context.Context, id string, options ...core.QueryOptions) (catalog.Item, error) {
				return testItem(), nil
			}
		}
		if tc.saveMovementFunc != nil {
			mockRepo.SaveMovementFunc = tc.saveMovementFunc
		}

		mockTx := db.NewMockTransaction()
		mockRepo.BeginTransactionFunc = func(ctx context.Context) (core.Transaction, error) {
			return mockTx, nil
		}

		service := stock.NewService(mockRepo, queue.NewMockQueue())

		t.Run(tc.name, func(t *testing.T) {
			_, err := service.ReceiveStock(context.Background(), tc.req)
			checkErr(tc.wantErr, err, t)

			for f, c := range tc.wantRepoCallCnt {
				mockRepo.VerifyCount(f, c, t)
			}
			for f, c := range tc.wantTxCallCnt {
				mockTx.VerifyCount(f, c, t)
			}
		})
	}
}

func TestIssueStock(t *testing.T) {
	tests := []struct {
		name string

		req       stock.MovementRequest
		onHand    string
		committed string

		wantRepoCallCnt map[string]int
		wantTxCallCnt   map[string]int
		wantErr         error
	}{
		{
			name:      "issue within availability succeeds",
			req:       stock.MovementRequest{ItemID: "item1", Quantity: qty("3"), Actor: "tech"},
			onHand:    "10",
			committed: "4",

			wantRepoCallCnt: map[string]int{"SaveMovement": 1},
			wantTxCallCnt:   map[string]int{"Commit": 1, "Rollback": 0},
		},
		{
			name:      "issue beyond on hand is rejected",
			req:       stock.MovementRequest{ItemID: "item1", Quantity: qty("11"), Actor: "tech"},
			onHand:    "10",
			committed: "0",

			wantRepoCallCnt: map[string]int{"SaveMovement": 0},
			wantTxCallCnt:   map[string]int{"Commit": 0, "Rollback": 1},
			wantErr:         core.ErrInsufficientStock,
		},
		{
			name:      "issue may not strand active reservations",
			req:       stock.MovementRequest{ItemID: "item1", Quantity: qty("7"), Actor: "tech"},
			onHand:    "10",
			committed: "4",

			wantRepoCallCnt: map[string]int{"SaveMovement": 0},
			wantTxCallCnt:   map[string]int{"Commit": 0, "Rollback": 1},
			wantErr:         core.ErrInsufficientAvailability,
		},
		{
			name:      "issue of exactly the available quantity succeeds",
			req:       stock.MovementRequest{ItemID: "item1", Quantity: qty("6"), Actor: "tech"},
			onHand:    "10",
			committed: "4",

			wantRepoCallCnt: map[string]int{"SaveMovement": 1},
			wantTxCallCnt:   map[string]int{"Commit": 1, "Rollback": 0},
		},
	}

	for _, tc := range tests {
		mockRepo := stockrepo.NewMockRepo()
		mockRepo.GetItemFunc = func(ctx context.Context, id string, options ...core.QueryOptions) (catalog.Item, error) {
			return testItem(), nil
		}

		onHand := qty(tc.onHand)
		committed := qty(tc.committed)
		mockRepo.GetOnHandFunc = func(ctx context.Context, itemID string, options ...core.QueryOptions) (decimal.Decimal, error) {
			return onHand, nil
		}
		mockRepo.GetCommittedFunc = func(ctx context.Context, itemID string, options ...core.QueryOptions) (decimal.Decimal, error) {
			return committed, nil
		}

		mockTx := db.NewMockTransaction()
		mockRepo.BeginTransactionFunc = func(ctx context.Context) (core.Transaction, error) {
			return mockTx, nil
		}

		service := stock.NewService(mockRepo, queue.NewMockQueue())

		t.Run(tc.name, func(t *testing.T) {
			_, err := service.IssueStock(context.Background(), tc.req)
			checkErr(tc.wantErr, err, t)

			for f, c := range tc.wantRepoCallCnt {
				mockRepo.VerifyCount(f, c, t)
			}
			for f, c := range tc.wantTxCallCnt {
				mockTx.VerifyCount(f, c, t)
			}
		})
	}
}

func TestReserve(t *testing.T) {
	tests := []struct {
		name string

		req       stock.ReservationRequest
		onHand    string
		committed string

		saveReservationFunc func(ctx context.Context, reservation *stock.Reservation, options ...core.UpdateOptions) error

		wantRepoCallCnt map[string]int
		wantTxCallCnt   map[string]int
		wantErr         error
	}{
		{
			name:      "reservation within availability is created pending",
			req:       stock.ReservationRequest{ItemID: "item1", Quantity: qty("4"), ContextRef: "SO-100"},
			onHand:    "10",
			committed: "0",

			wantRepoCallCnt: map[string]int{"SaveReservation": 1},
			wantTxCallCnt:   map[string]int{"Commit": 1, "Rollback": 0},
		},
		{
			name:      "reservation beyond availability is rejected",
			req:       stock.ReservationRequest{ItemID: "item1", Quantity: qty("7"), ContextRef: "SO-100"},
			onHand:    "10",
			committed: "4",

			wantRepoCallCnt: map[string]int{"SaveReservation": 0},
			wantTxCallCnt:   map[string]int{"Commit": 0, "Rollback": 1},
			wantErr:         core.ErrInsufficientAvailability,
		},
		{
			name:      "save failure rolls back",
			req:       stock.ReservationRequest{ItemID: "item1", Quantity: qty("4"), ContextRef: "SO-100"},
			onHand:    "10",
			committed: "0",

			saveReservationFunc: func(ctx context.Context, reservation *stock.Reservation, options ...core.UpdateOptions) error {
				return errors.New("some unexpected error")
			},

			wantRepoCallCnt: map[string]int{"SaveReservation": 1},
			wantTxCallCnt:   map[string]int{"Commit": 0, "Rollback": 1},
			wantErr:         errAny,
		},
	}

	for _, tc := range tests {
		mockRepo := stockrepo.NewMockRepo()
		mockRepo.GetItemFunc = func(ctx context.Context, id string, options ...core.QueryOptions) (catalog.Item, error) {
			return testItem(), nil
		}

		onHand := qty(tc.onHand)
		committed := qty(tc.committed)
		mockRepo.GetOnHandFunc = func(ctx context.Context, itemID string, options ...core.QueryOptions) (decimal.Decimal, error) {
			return onHand, nil
		}
		mockRepo.GetCommittedFunc = func(ctx context.Context, itemID string, options ...core.QueryOptions) (decimal.Decimal, error) {
			return committed, nil
		}
		if tc.saveReservationFunc != nil {
			mockRepo.SaveReservationFunc = tc.saveReservationFunc
		}

		mockTx := db.NewMockTransaction()
		mockRepo.BeginTransactionFunc = func(ctx context.Context) (core.Transaction, error) {
			return mockTx, nil
		}

		service := stock.NewService(mockRepo, queue.NewMockQueue())

		t.Run(tc.name, func(t *testing.T) {
			rsv, err := service.Reserve(context.Background(), tc.req)
			checkErr(tc.wantErr, err, t)

			if err == nil && rsv.Status != stock.Pending {
				t.Errorf("unexpected status got=%v want=%v", rsv.Status, stock.Pending)
			}

			for f, c := range tc.wantRepoCallCnt {
				mockRepo.VerifyCount(f, c, t)
			}
			for f, c := range tc.wantTxCallCnt {
				mockTx.VerifyCount(f, c, t)
			}
		})
	}
}

func TestTransitions(t *testing.T) {
	tests := []struct {
		name string

		from    stock.Status
		confirm bool

		wantStatus stock.Status
		wantErr    error
	}{
		{name: "pending confirms", from: stock.Pending, confirm: true, wantStatus: stock.Confirmed},
		{name: "pending cancels", from: stock.Pending, wantStatus: stock.Cancelled},
		{name: "confirmed cancels", from: stock.Confirmed, wantStatus: stock.Cancelled},
		{name: "confirmed does not re-confirm", from: stock.Confirmed, confirm: true, wantErr: core.ErrInvalidTransition},
		{name: "fulfilled does not confirm", from: stock.Fulfilled, confirm: true, wantErr: core.ErrInvalidTransition},
		{name: "fulfilled does not cancel", from: stock.Fulfilled, wantErr: core.ErrInvalidTransition},
		{name: "cancelled does not cancel again", from: stock.Cancelled, wantErr: core.ErrInvalidTransition},
	}

	for _, tc := range tests {
		mockRepo := stockrepo.NewMockRepo()
		from := tc.from
		mockRepo.GetReservationFunc = func(ctx context.Context, id string, options ...core.QueryOptions) (stock.Reservation, error) {
			return stock.Reservation{ID: id, ItemID: "item1", Quantity: qty("4"), Status: from}, nil
		}

		mockTx := db.NewMockTransaction()
		mockRepo.BeginTransactionFunc = func(ctx context.Context) (core.Transaction, error) {
			return mockTx, nil
		}

		service := stock.NewService(mockRepo, queue.NewMockQueue())

		t.Run(tc.name, func(t *testing.T) {
			var rsv stock.Reservation
			var err error
			if tc.confirm {
				rsv, err = service.Confirm(context.Background(), "res1")
			} else {
				rsv, err = service.Cancel(context.Background(), "res1")
			}

			checkErr(tc.wantErr, err, t)

			if tc.wantErr == nil {
				if rsv.Status != tc.wantStatus {
					t.Errorf("unexpected status got=%v want=%v", rsv.Status, tc.wantStatus)
				}
				mockRepo.VerifyCount("UpdateReservationStatus", 1, t)
				mockTx.VerifyCount("Commit", 1, t)
			} else {
				mockRepo.VerifyCount("UpdateReservationStatus", 0, t)
				mockTx.VerifyCount("Rollback", 1, t)
			}
		})
	}
}

func TestTransitionUnknownReservation(t *testing.T) {
	mockRepo := stockrepo.NewMockRepo()
	mockRepo.GetReservationFunc = func(ctx context.Context, id string, options ...core.QueryOptions) (stock.Reservation, error) {
		return stock.Reservation{}, core.ErrNotFound
	}
	mockRepo.BeginTransactionFunc = func(ctx context.Context) (core.Transaction, error) {
		return db.NewMockTransaction(), nil
	}

	service := stock.NewService(mockRepo, queue.NewMockQueue())

	_, err := service.Confirm(context.Background(), "nosuchres")
	if !errors.Is(err, core.ErrUnknownReservation) {
		t.Errorf("unexpected error got=%v want=%v", err, core.ErrUnknownReservation)
	}
}

func TestFulfill(t *testing.T) {
	tests := []struct {
		name string

		status stock.Status
		onHand string

		updateReservationStatusFunc func(ctx context.Context, id string, status stock.Status, options ...core.UpdateOptions) error

		wantRepoCallCnt map[string]int
		wantTxCallCnt   map[string]int
		wantErr         error
	}{
		{
			name:   "pending reservation fulfills",
			status: stock.Pending,
			onHand: "10",

			wantRepoCallCnt: map[string]int{"SaveMovement": 1, "UpdateReservationStatus": 1},
			wantTxCallCnt:   map[string]int{"Commit": 1, "Rollback": 0},
		},
		{
			name:   "confirmed reservation fulfills",
			status: stock.Confirmed,
			onHand: "10",

			wantRepoCallCnt: map[string]int{"SaveMovement": 1, "UpdateReservationStatus": 1},
			wantTxCallCnt:   map[string]int{"Commit": 1, "Rollback": 0},
		},
		{
			name:   "fulfilled reservation does not fulfill again",
			status: stock.Fulfilled,
			onHand: "10",

			wantRepoCallCnt: map[string]int{"SaveMovement": 0, "UpdateReservationStatus": 0},
			wantTxCallCnt:   map[string]int{"Commit": 0, "Rollback": 1},
			wantErr:         core.ErrInvalidTransition,
		},
		{
			name:   "fulfillment beyond on hand is rejected",
			status: stock.Confirmed,
			onHand: "3",

			wantRepoCallCnt: map[string]int{"SaveMovement": 0, "UpdateReservationStatus": 0},
			wantTxCallCnt:   map[string]int{"Commit": 0, "Rollback": 1},
			wantErr:         core.ErrInsufficientStock,
		},
		{
			name:   "status update failure rolls back the whole fulfillment",
			status: stock.Confirmed,
			onHand: "10",

			updateReservationStatusFunc: func(ctx context.Context, id string, status stock.Status, options ...core.UpdateOptions) error {
				return errors.New("some unexpected error")
			},

			wantRepoCallCnt: map[string]int{"SaveMovement": 1, "UpdateReservationStatus": 1},
			wantTxCallCnt:   map[string]int{"Commit": 0, "Rollback": 1},
			wantErr:         errAny,
		},
	}

	for _, tc := range tests {
		mockRepo := stockrepo.NewMockRepo()
		status := tc.status
		mockRepo.GetReservationFunc = func(ctx context.Context, id string, options ...core.QueryOptions) (stock.Reservation, error) {
			return stock.Reservation{ID: id, ItemID: "item1", Quantity: qty("4"), ContextRef: "SO-100", Status: status}, nil
		}
		mockRepo.GetItemFunc = func(ctx context.Context, id string, options ...core.QueryOptions) (catalog.Item, error) {
			return testItem(), nil
		}
		onHand := qty(tc.onHand)
		mockRepo.GetOnHandFunc = func(ctx context.Context, itemID string, options ...core.QueryOptions) (decimal.Decimal, error) {
			return onHand, nil
		}
		mockRepo.GetCommittedFunc = func(ctx context.Context, itemID string, options ...core.QueryOptions) (decimal.Decimal, error) {
			return qty("4"), nil
		}
		if tc.updateReservationStatusFunc != nil {
			mockRepo.UpdateReservationStatusFunc = tc.updateReservationStatusFunc
		}

		mockTx := db.NewMockTransaction()
		mockRepo.BeginTransactionFunc = func(ctx context.Context) (core.Transaction, error) {
			return mockTx, nil
		}

		service := stock.NewService(mockRepo, queue.NewMockQueue())

		t.Run(tc.name, func(t *testing.T) {
			rsv, mv, err := service.Fulfill(context.Background(), "res1", "tech")
			checkErr(tc.wantErr, err, t)

			if err == nil {
				if rsv.Status != stock.Fulfilled {
					t.Errorf("unexpected status got=%v want=%v", rsv.Status, stock.Fulfilled)
				}
				if mv.Direction != stock.Out {
					t.Errorf("unexpected direction got=%v want=%v", mv.Direction, stock.Out)
				}
				if !mv.Quantity.Equal(qty("4")) {
					t.Errorf("unexpected quantity got=%v want=4", mv.Quantity)
				}
			}

			for f, c := range tc.wantRepoCallCnt {
				mockRepo.VerifyCount(f, c, t)
			}
			for f, c := range tc.wantTxCallCnt {
				mockTx.VerifyCount(f, c, t)
			}
		})
	}
}

func TestGetSnapshot(t *testing.T) {
	mockRepo := stockrepo.NewMockRepo()
	mockRepo.GetItemFunc = func(ctx context.Context, id string, options ...core.QueryOptions) (catalog.Item, error) {
		return testItem(), nil
	}
	mockRepo.GetOnHandFunc = func(ctx context.Context, itemID string, options ...core.QueryOptions) (decimal.Decimal, error) {
		return qty("10"), nil
	}
	mockRepo.GetCommittedFunc = func(ctx context.Context, itemID string, options ...core.QueryOptions) (decimal.Decimal, error) {
		return qty("4"), nil
	}
	mockRepo.BeginTransactionFunc = func(ctx context.Context) (core.Transaction, error) {
		return db.NewMockTransaction(), nil
	}

	service := stock.NewService(mockRepo, queue.NewMockQueue())

	snap, err := service.GetSnapshot(context.Background(), "item1")
	if err != nil {
		t.Fatal(err)
	}

	if !snap.OnHand.Equal(qty("10")) {
		t.Errorf("unexpected onHand got=%v want=10", snap.OnHand)
	}
	if !snap.Committed.Equal(qty("4")) {
		t.Errorf("unexpected committed got=%v want=4", snap.Committed)
	}
	if !snap.Available.Equal(qty("6")) {
		t.Errorf("unexpected available got=%v want=6", snap.Available)
	}
	if snap.Status != stock.StatusOk {
		t.Errorf("unexpected status got=%v want=%v", snap.Status, stock.StatusOk)
	}
}

func TestGetLowStock(t *testing.T) {
	item := func(id, onHand, committed, minLevel string) stock.ItemSummary {
		return stock.ItemSummary{
			Item:      catalog.Item{ID: id, Unit: catalog.UnitCount, MinLevel: qty(minLevel)},
			OnHand:    qty(onHand),
			Committed: qty(committed),
		}
	}

	gotLimit, gotOffset := 0, 0
	mockRepo := stockrepo.NewMockRepo()
	mockRepo.GetLowStockSummariesFunc = func(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]stock.ItemSummary, error) {
		gotLimit, gotOffset = limit, offset
		return []stock.ItemSummary{
			item("critical", "0", "0", "5"),
			item("low", "4", "1", "5"),
		}, nil
	}

	service := stock.NewService(mockRepo, queue.NewMockQueue())

	low, err := service.GetLowStock(context.Background(), 2, 4)
	if err != nil {
		t.Fatal(err)
	}

	if gotLimit != 2 || gotOffset != 4 {
		t.Errorf("pagination not forwarded got=[%d %d] want=[2 4]", gotLimit, gotOffset)
	}
	if len(low) != 2 {
		t.Fatalf("unexpected item count got=%d want=2", len(low))
	}
	if low[0].ID != "critical" || low[0].Status != stock.StatusCritical {
		t.Errorf("unexpected first item got=%v", low[0].ID)
	}
	if low[1].ID != "low" || low[1].Status != stock.StatusLow {
		t.Errorf("unexpected second item got=%v", low[1].ID)
	}
}

func TestSubscribeSnapshots(t *testing.T) {
	mockRepo := stockrepo.NewMockRepo()
	mockRepo.GetItemFunc = func(ctx context.Context, id string, options ...core.QueryOptions) (catalog.Item, error) {
		return testItem(), nil
	}
	mockRepo.BeginTransactionFunc = func(ctx context.Context) (core.Transaction, error) {
		return db.NewMockTransaction(), nil
	}

	service := stock.NewService(mockRepo, queue.NewMockQueue())

	ch := make(chan stock.ItemSnapshot, 1)
	id := service.SubscribeSnapshots(ch)

	_, err := service.ReceiveStock(context.Background(), stock.MovementRequest{ItemID: "item1", Quantity: qty("10"), Actor: "receiving"})
	if err != nil {
		t.Fatal(err)
	}

	snap := <-ch
	if snap.ID != "item1" {
		t.Errorf("unexpected item got=%v want=item1", snap.ID)
	}
	if !snap.OnHand.Equal(qty("10")) {
		t.Errorf("unexpected onHand got=%v want=10", snap.OnHand)
	}

	service.UnsubscribeSnapshots(id)
	if _, open := <-ch; open {
		t.Error("expected channel to be closed after unsubscribe")
	}
}

// errAny asserts only that some error occurred.
var errAny = errors.New("any error")

func checkErr(want, got error, t *testing.T) {
	t.Helper()
	switch {
	case want == nil && got != nil:
		t.Errorf("did not want error, got=%v", got)
	case want == errAny && got == nil:
		t.Error("expected error, got none")
	case want != nil && want != errAny && !errors.Is(got, want):
		t.Errorf("unexpected error got=%v want=%v", got, want)
	}
}
