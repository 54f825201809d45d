package stock

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/summitair/inventory-service/core"
	"github.com/summitair/inventory-service/core/catalog"
)

func rollback(ctx context.Context, tx core.Transaction, err error) {
	if tx == nil {
		return
	}
	e := tx.Rollback(ctx)
	if e != nil {
		log.Warn().Err(err).Msg("failed to rollback")
	}
}

type Transactional interface {
	BeginTransaction(ctx context.Context) (core.Transaction, error)
}

type Repository interface {
	LedgerRepository
	ReservationRepository
	ItemRepository
}

// LedgerRepository stores the append-only movement log. There is no update
// or delete: the ledger is the authoritative history of physical stock.
type LedgerRepository interface {
	Transactional
	SaveMovement(ctx context.Context, movement *Movement, options ...core.UpdateOptions) error
	GetMovements(ctx context.Context, itemID string, limit, offset int, options ...core.QueryOptions) ([]Movement, error)

	// GetOnHand folds the ledger for one item: sum(in) - sum(out).
	GetOnHand(ctx context.Context, itemID string, options ...core.QueryOptions) (decimal.Decimal, error)
}

type ReservationRepository interface {
	Transactional
	SaveReservation(ctx context.Context, reservation *Reservation, options ...core.UpdateOptions) error
	UpdateReservationStatus(ctx context.Context, id string, status Status, options ...core.UpdateOptions) error
	GetReservation(ctx context.Context, id string, options ...core.QueryOptions) (Reservation, error)
	GetReservations(ctx context.Context, resOptions GetReservationsOptions, limit, offset int, options ...core.QueryOptions) ([]Reservation, error)

	// GetCommitted sums quantities over reservations in pending or confirmed.
	GetCommitted(ctx context.Context, itemID string, options ...core.QueryOptions) (decimal.Decimal, error)
}

// ItemRepository reads catalog rows on behalf of stock operations. Locking
// the item row is the per-item serialization point for every
// quantity-affecting mutation.
type ItemRepository interface {
	Transactional
	GetItem(ctx context.Context, id string, options ...core.QueryOptions) (catalog.Item, error)

	// GetLowStockSummaries returns only items whose stock status is low or
	// critical, ordered by ascending available quantity. Pagination applies
	// to the filtered result, not the candidate set.
	GetLowStockSummaries(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]ItemSummary, error)
}

type GetReservationsOptions struct {
	ItemID     string
	ContextRef string
	Status     Status
}

type Queue interface {
	PublishMovement(ctx context.Context, movement Movement) error
	PublishReservation(ctx context.Context, reservation Reservation) error
}
