package catrepo

import (
	"context"

	lru "github.com/hashicorp/golang-lru"
	"github.com/jackc/pgx/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/summitair/inventory-service/core"
	"github.com/summitair/inventory-service/core/catalog"
	"github.com/summitair/inventory-service/db"
)

type dbRepo struct {
	conn core.Conn
	c    *lru.Cache
}

func NewPostgresRepo(conn core.Conn) catalog.Repository {
	l, err := lru.New(256)
	if err != nil {
		log.Warn().Err(err).Msg("unable to configure cache")
	}
	return &dbRepo{
		conn: conn,
		c:    l,
	}
}

func (r *dbRepo) SaveItem(ctx context.Context, item *catalog.Item, txs ...core.UpdateOptions) error {
	m := db.StartMetric("SaveItem")
	tx := db.GetUpdateOptions(r.conn, txs...)

	ct, err := tx.Exec(ctx, `
		UPDATE items
		   SET name = $2, unit_price = $3, min_level = $4
		 WHERE id = $1;`,
		item.ID, item.Name, item.UnitPrice, item.MinLevel)
	if err != nil {
		m.Complete(err)
		return errors.WithStack(err)
	}
	if ct.RowsAffected() == 0 {
		_, err := tx.Exec(ctx, `
		INSERT INTO items (id, name, part_number, unit, unit_price, min_level, retired, created)
		     VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`,
			item.ID, item.Name, item.PartNumber, string(item.Unit), item.UnitPrice,
			item.MinLevel, item.Retired, item.Created)
		if err != nil {
			m.Complete(err)
			return errors.WithStack(err)
		}
	}
	r.cache(*item)
	m.Complete(nil)
	return nil
}

func (r *dbRepo) GetItem(ctx context.Context, id string, txs ...core.QueryOptions) (catalog.Item, error) {
	m := db.StartMetric("GetItem")
	tx, forUpdate := db.GetQueryOptions(r.conn, txs...)

	// Locked reads bypass the cache so they always hit the row.
	if forUpdate == "" {
		if item, ok := r.getcache(id); ok {
			m.Complete(nil)
			return item, nil
		}
	}

	item := catalog.Item{}
	var unit string
	err := tx.QueryRow(ctx, `
		SELECT id, name, part_number, unit, unit_price, min_level, retired, created
		  FROM items
		 WHERE id = $1 `+forUpdate, id).
		Scan(&item.ID, &item.Name, &item.PartNumber, &unit, &item.UnitPrice, &item.MinLevel, &item.Retired, &item.Created)
	if err != nil {
		m.Complete(err)
		if err == pgx.ErrNoRows {
			return catalog.Item{}, errors.WithStack(core.ErrNotFound)
		}
		return catalog.Item{}, errors.WithStack(err)
	}
	item.Unit, err = catalog.ParseUnit(unit)
	if err != nil {
		m.Complete(err)
		return catalog.Item{}, errors.WithStack(err)
	}

	r.cache(item)
	m.Complete(nil)
	return item, nil
}

func (r *dbRepo) GetItemByPartNumber(ctx context.Context, partNumber string, txs ...core.QueryOptions) (catalog.Item, error) {
	m := db.StartMetric("GetItemByPartNumber")
	tx, forUpdate := db.GetQueryOptions(r.conn, txs...)

	item := catalog.Item{}
	var unit string
	err := tx.QueryRow(ctx, `
		SELECT id, name, part_number, unit, unit_price, min_level, retired, created
		  FROM items
		 WHERE part_number = $1 `+forUpdate, partNumber).
		Scan(&item.ID, &item.Name, &item.PartNumber, &unit, &item.UnitPrice, &item.MinLevel, &item.Retired, &item.Created)
	if err != nil {
		m.Complete(err)
		if err == pgx.ErrNoRows {
			return catalog.Item{}, errors.WithStack(core.ErrNotFound)
		}
		return catalog.Item{}, errors.WithStack(err)
	}
	item.Unit, err = catalog.ParseUnit(unit)
	if err != nil {
		m.Complete(err)
		return catalog.Item{}, errors.WithStack(err)
	}

	r.cache(item)
	m.Complete(nil)
	return item, nil
}

func (r *dbRepo) GetAllItems(ctx context.Context, limit, offset int, txs ...core.QueryOptions) ([]catalog.Item, error) {
	m := db.StartMetric("GetAllItems")
	tx, _ := db.GetQueryOptions(r.conn, txs...)

	rows, err := tx.Query(ctx, `
		SELECT id, name, part_number, unit, unit_price, min_level, retired, created
		  FROM items
		 ORDER BY part_number
		 LIMIT $1 OFFSET $2;`, limit, offset)
	if err != nil {
		m.Complete(err)
		return nil, errors.WithStack(err)
	}
	defer rows.Close()

	items := make([]catalog.Item, 0)
	for rows.Next() {
		item := catalog.Item{}
		var unit string
		err = rows.Scan(&item.ID, &item.Name, &item.PartNumber, &unit, &item.UnitPrice, &item.MinLevel, &item.Retired, &item.Created)
		if err != nil {
			m.Complete(err)
			return nil, errors.WithStack(err)
		}
		item.Unit, err = catalog.ParseUnit(unit)
		if err != nil {
			m.Complete(err)
			return nil, errors.WithStack(err)
		}
		items = append(items, item)
	}

	m.Complete(nil)
	return items, nil
}

func (r *dbRepo) RetireItem(ctx context.Context, id string, txs ...core.UpdateOptions) error {
	m := db.StartMetric("RetireItem")
	tx := db.GetUpdateOptions(r.conn, txs...)

	ct, err := tx.Exec(ctx, `
		UPDATE items
		   SET retired = TRUE
		 WHERE id = $1;`, id)
	if err != nil {
		m.Complete(err)
		return errors.WithStack(err)
	}
	if ct.RowsAffected() == 0 {
		m.Complete(core.ErrNotFound)
		return errors.WithStack(core.ErrNotFound)
	}
	r.uncache(id)
	m.Complete(nil)
	return nil
}

func (r *dbRepo) DeleteItem(ctx context.Context, id string, txs ...core.UpdateOptions) error {
	m := db.StartMetric("DeleteItem")
	tx := db.GetUpdateOptions(r.conn, txs...)

	_, err := tx.Exec(ctx, `DELETE FROM items WHERE id = $1;`, id)
	if err != nil {
		m.Complete(err)
		return errors.WithStack(err)
	}
	r.uncache(id)
	m.Complete(nil)
	return nil
}

func (r *dbRepo) HasMovements(ctx context.Context, id string, txs ...core.QueryOptions) (bool, error) {
	m := db.StartMetric("HasMovements")
	tx, _ := db.GetQueryOptions(r.conn, txs...)

	var exists bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM stock_movements WHERE item_id = $1);`, id).
		Scan(&exists)
	if err != nil {
		m.Complete(err)
		return false, errors.WithStack(err)
	}

	m.Complete(nil)
	return exists, nil
}

func (r *dbRepo) cache(item catalog.Item) {
	if r.c == nil {
		return
	}
	r.c.Add(item.ID, item)
}

func (r *dbRepo) uncache(id string) {
	if r.c == nil {
		return
	}
	r.c.Remove(id)
}

func (r *dbRepo) getcache(id string) (catalog.Item, bool) {
	if r.c == nil {
		return catalog.Item{}, false
	}
	v, ok := r.c.Get(id)
	if !ok {
		return catalog.Item{}, false
	}
	item, ok := v.(catalog.Item)
	return item, ok
}
