package core

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
)

var ErrNotFound = errors.New("core: record not found")

// Business rule rejections. These are returned to the caller as-is and are
// never retried by the core.
var (
	// ErrInsufficientStock is returned when an outbound movement would drive
	// an item's on-hand quantity below zero.
	ErrInsufficientStock = errors.New("core: insufficient stock on hand")

	// ErrInsufficientAvailability is returned when a reservation request, or
	// a direct issue that would eat into quantity committed to active
	// reservations, exceeds the item's available (on-hand minus committed)
	// quantity. Available is a hard floor: a direct issue is never allowed
	// to break a confirmed reservation.
	ErrInsufficientAvailability = errors.New("core: insufficient availability")

	// ErrInvalidTransition is returned when a reservation status change is
	// requested from a state that does not permit it.
	ErrInvalidTransition = errors.New("core: invalid reservation transition")

	// ErrUnknownItem is returned when an operation references a nonexistent
	// or retired catalog item.
	ErrUnknownItem = errors.New("core: unknown or retired item")

	// ErrUnknownReservation is returned when an operation references a
	// nonexistent reservation.
	ErrUnknownReservation = errors.New("core: unknown reservation")

	// ErrInvalidQuantity is returned when a quantity is not positive or does
	// not conform to the precision of the item's unit of measure.
	ErrInvalidQuantity = errors.New("core: invalid quantity")
)

type Transaction interface {
	Conn
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type Conn interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

type UpdateOptions struct {
	Tx Transaction
}

type QueryOptions struct {
	ForUpdate bool
	Tx        Transaction
}
