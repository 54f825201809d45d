package catalog

import (
	"context"

	"github.com/summitair/inventory-service/core"
)

type Repository interface {
	GetItem(ctx context.Context, id string, options ...core.QueryOptions) (Item, error)
	GetItemByPartNumber(ctx context.Context, partNumber string, options ...core.QueryOptions) (Item, error)
	GetAllItems(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]Item, error)

	SaveItem(ctx context.Context, item *Item, options ...core.UpdateOptions) error
	RetireItem(ctx context.Context, id string, options ...core.UpdateOptions) error
	DeleteItem(ctx context.Context, id string, options ...core.UpdateOptions) error

	// HasMovements reports whether any ledger history exists for the item.
	// Items with history are retired rather than removed to preserve audit.
	HasMovements(ctx context.Context, id string, options ...core.QueryOptions) (bool, error)
}
