// Package stock tracks physical inventory for catalog items: an append-only
// movement ledger, a reservation lifecycle, and the derived quantities the
// two produce together. On-hand, committed, and available quantities are
// always computed from the ledger and the reservation set, never stored, so
// there is a single source of truth.
package stock

import (
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/summitair/inventory-service/core/catalog"
)

type Direction string

const (
	In  Direction = "in"
	Out Direction = "out"
)

func ParseDirection(v string) (Direction, error) {
	switch v {
	case string(In):
		return In, nil
	case string(Out):
		return Out, nil
	default:
		return "", errors.New("invalid movement direction")
	}
}

// Movement is an entity. A single recorded stock-in or stock-out event.
// Movements are immutable once created; corrections are new movements.
type Movement struct {
	ID        string          `json:"id"`
	Seq       uint64          `json:"-"`
	ItemID    string          `json:"itemId"`
	Direction Direction       `json:"direction"`
	Quantity  decimal.Decimal `json:"quantity"`
	Actor     string          `json:"actor"`
	Ref       string          `json:"ref,omitempty"`
	Notes     string          `json:"notes,omitempty"`
	Created   time.Time       `json:"created"`
}

type Status string

const (
	Pending   Status = "pending"
	Confirmed Status = "confirmed"
	Fulfilled Status = "fulfilled"
	Cancelled Status = "cancelled"
	AnyStatus Status = ""
)

func ParseStatus(v string) (Status, error) {
	switch v {
	case string(Pending):
		return Pending, nil
	case string(Confirmed):
		return Confirmed, nil
	case string(Fulfilled):
		return Fulfilled, nil
	case string(Cancelled):
		return Cancelled, nil
	case string(AnyStatus):
		return AnyStatus, nil
	default:
		return AnyStatus, errors.New("invalid reservation status")
	}
}

// Terminal reports whether no further transition is defined out of s.
func (s Status) Terminal() bool {
	return s == Fulfilled || s == Cancelled
}

// Active reports whether a reservation in this status counts against the
// item's committed quantity.
func (s Status) Active() bool {
	return s == Pending || s == Confirmed
}

// CanTransition reports whether the state machine permits moving from s to.
//
//	pending   -> confirmed | cancelled | fulfilled
//	confirmed -> cancelled | fulfilled
func (s Status) CanTransition(to Status) bool {
	switch to {
	case Confirmed:
		return s == Pending
	case Cancelled, Fulfilled:
		return s.Active()
	default:
		return false
	}
}

// Reservation is an entity. A commitment of a quantity of an item to a
// future use, without yet removing it from physical stock. The quantity is
// fixed at creation; amending is modeled as cancel plus re-reserve so the
// availability check is always evaluated from scratch.
type Reservation struct {
	ID          string          `json:"id"`
	ItemID      string          `json:"itemId"`
	Quantity    decimal.Decimal `json:"quantity"`
	ContextRef  string          `json:"contextRef,omitempty"`
	PlannedDate time.Time       `json:"plannedDate"`
	Status      Status          `json:"status"`
	Notes       string          `json:"notes,omitempty"`
	Created     time.Time       `json:"created"`
}

// MovementRequest is a value object. A request to receive or issue stock.
type MovementRequest struct {
	ItemID   string          `json:"itemId"`
	Quantity decimal.Decimal `json:"quantity"`
	Actor    string          `json:"actor"`
	Ref      string          `json:"ref,omitempty"`
	Notes    string          `json:"notes,omitempty"`
}

// ReservationRequest is a value object. A request to reserve stock.
type ReservationRequest struct {
	ItemID      string          `json:"itemId"`
	Quantity    decimal.Decimal `json:"quantity"`
	ContextRef  string          `json:"contextRef,omitempty"`
	PlannedDate time.Time       `json:"plannedDate"`
	Notes       string          `json:"notes,omitempty"`
}

type StockStatus string

const (
	StatusOk       StockStatus = "ok"
	StatusLow      StockStatus = "low"
	StatusCritical StockStatus = "critical"
)

// StockStatusFor classifies on-hand quantity against the item's minimum
// level. Zero on hand is critical regardless of the minimum.
func StockStatusFor(onHand, minLevel decimal.Decimal) StockStatus {
	switch {
	case onHand.IsZero():
		return StatusCritical
	case onHand.LessThan(minLevel):
		return StatusLow
	default:
		return StatusOk
	}
}

// ItemSnapshot is the composite read model for one item: catalog metadata
// plus the derived quantities at a single point in time.
type ItemSnapshot struct {
	catalog.Item
	OnHand    decimal.Decimal `json:"onHand"`
	Committed decimal.Decimal `json:"committed"`
	Available decimal.Decimal `json:"available"`
	Status    StockStatus     `json:"status"`
}

// ItemSummary is the raw aggregate a repository returns for snapshot
// assembly: catalog metadata with the two stored-side sums.
type ItemSummary struct {
	catalog.Item
	OnHand    decimal.Decimal
	Committed decimal.Decimal
}

func newSnapshot(item catalog.Item, onHand, committed decimal.Decimal) ItemSnapshot {
	return ItemSnapshot{
		Item:      item,
		OnHand:    onHand,
		Committed: committed,
		Available: onHand.Sub(committed),
		Status:    StockStatusFor(onHand, item.MinLevel),
	}
}
