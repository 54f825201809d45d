// Package catalog holds master data for stock-keeping items. Catalog entries
// are read-mostly: stock activity never mutates them, only catalog
// maintenance does.
package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unit is a symbolic unit of measure. The unit determines how many decimal
// places a quantity of the item may carry.
type Unit string

const (
	UnitCount    Unit = "count"
	UnitKilogram Unit = "kg"
	UnitMeter    Unit = "m"
	UnitLiter    Unit = "l"
)

func ParseUnit(v string) (Unit, error) {
	switch v {
	case string(UnitCount):
		return UnitCount, nil
	case string(UnitKilogram):
		return UnitKilogram, nil
	case string(UnitMeter):
		return UnitMeter, nil
	case string(UnitLiter):
		return UnitLiter, nil
	default:
		return "", errInvalidUnit
	}
}

// Precision is the number of decimal places a quantity of this unit may
// carry. Counted parts are whole numbers; measured units allow tenths.
func (u Unit) Precision() int32 {
	if u == UnitCount {
		return 0
	}
	return 1
}

// ValidQuantity reports whether q conforms to the unit's precision.
// Quantities that carry more precision are rejected, never rounded.
func (u Unit) ValidQuantity(q decimal.Decimal) bool {
	return q.Equal(q.Truncate(u.Precision()))
}

// Item is an entity. A catalog entry for a stock-keeping part.
type Item struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	PartNumber string          `json:"partNumber"`
	Unit       Unit            `json:"unit"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	MinLevel   decimal.Decimal `json:"minLevel"`
	Retired    bool            `json:"retired"`
	Created    time.Time       `json:"created"`
}

// CreateItemRequest is a value object. A request to add an item to the catalog.
type CreateItemRequest struct {
	Name       string          `json:"name"`
	PartNumber string          `json:"partNumber"`
	Unit       Unit            `json:"unit"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	MinLevel   decimal.Decimal `json:"minLevel"`
}

// UpdateItemRequest is a value object. Zero-valued fields are left unchanged.
type UpdateItemRequest struct {
	Name      string           `json:"name"`
	UnitPrice *decimal.Decimal `json:"unitPrice"`
	MinLevel  *decimal.Decimal `json:"minLevel"`
}
