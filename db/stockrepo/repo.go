package stockrepo

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/summitair/inventory-service/core"
	"github.com/summitair/inventory-service/core/catalog"
	"github.com/summitair/inventory-service/core/stock"
	"github.com/summitair/inventory-service/db"
)

type dbRepo struct {
	conn core.Conn
}

func NewPostgresRepo(conn core.Conn) stock.Repository {
	return &dbRepo{
		conn: conn,
	}
}

func (d *dbRepo) BeginTransaction(ctx context.Context) (core.Transaction, error) {
	return d.conn.Begin(ctx)
}

func (d *dbRepo) SaveMovement(ctx context.Context, movement *stock.Movement, options ...core.UpdateOptions) error {
	m := db.StartMetric("SaveMovement")
	tx := db.GetUpdateOptions(d.conn, options...)

	err := tx.QueryRow(ctx, `
		INSERT INTO stock_movements (id, item_id, direction, quantity, actor, ref, notes, created)
		     VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		  RETURNING seq;`,
		movement.ID, movement.ItemID, string(movement.Direction), movement.Quantity,
		movement.Actor, movement.Ref, movement.Notes, movement.Created).
		Scan(&movement.Seq)
	if err != nil {
		m.Complete(err)
		return errors.WithStack(err)
	}
	m.Complete(nil)
	return nil
}

func (d *dbRepo) GetMovements(ctx context.Context, itemID string, limit, offset int, options ...core.QueryOptions) ([]stock.Movement, error) {
	m := db.StartMetric("GetMovements")
	tx, forUpdate := db.GetQueryOptions(d.conn, options...)

	movements := make([]stock.Movement, 0)
	rows, err := tx.Query(ctx, `
		SELECT id, seq, item_id, direction, quantity, actor, ref, notes, created
		  FROM stock_movements
		 WHERE item_id = $1
		 ORDER BY seq
		 LIMIT $2 OFFSET $3 `+forUpdate,
		itemID, limit, offset)
	if err != nil {
		m.Complete(err)
		return nil, errors.WithStack(err)
	}
	defer rows.Close()

	for rows.Next() {
		mv := stock.Movement{}
		var direction string
		err = rows.Scan(&mv.ID, &mv.Seq, &mv.ItemID, &direction, &mv.Quantity, &mv.Actor, &mv.Ref, &mv.Notes, &mv.Created)
		if err != nil {
			m.Complete(err)
			return nil, errors.WithStack(err)
		}
		mv.Direction, err = stock.ParseDirection(direction)
		if err != nil {
			m.Complete(err)
			return nil, errors.WithStack(err)
		}
		movements = append(movements, mv)
	}

	m.Complete(nil)
	return movements, nil
}

func (d *dbRepo) GetOnHand(ctx context.Context, itemID string, options ...core.QueryOptions) (decimal.Decimal, error) {
	m := db.StartMetric("GetOnHand")
	tx, _ := db.GetQueryOptions(d.conn, options...)

	var onHand decimal.Decimal
	err := tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(CASE WHEN direction = 'in' THEN quantity ELSE -quantity END), 0)
		  FROM stock_movements
		 WHERE item_id = $1;`, itemID).
		Scan(&onHand)
	if err != nil {
		m.Complete(err)
		return decimal.Zero, errors.WithStack(err)
	}

	m.Complete(nil)
	return onHand, nil
}

func (d *dbRepo) SaveReservation(ctx context.Context, reservation *stock.Reservation, options ...core.UpdateOptions) error {
	m := db.StartMetric("SaveReservation")
	tx := db.GetUpdateOptions(d.conn, options...)

	_, err := tx.Exec(ctx, `
		INSERT INTO reservations (id, item_id, quantity, context_ref, planned_date, status, notes, created)
		     VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`,
		reservation.ID, reservation.ItemID, reservation.Quantity, reservation.ContextRef,
		reservation.PlannedDate, string(reservation.Status), reservation.Notes, reservation.Created)
	if err != nil {
		m.Complete(err)
		return errors.WithStack(err)
	}
	m.Complete(nil)
	return nil
}

func (d *dbRepo) UpdateReservationStatus(ctx context.Context, id string, status stock.Status, options ...core.UpdateOptions) error {
	m := db.StartMetric("UpdateReservationStatus")
	tx := db.GetUpdateOptions(d.conn, options...)

	ct, err := tx.Exec(ctx, `
		UPDATE reservations
		   SET status = $2
		 WHERE id = $1;`,
		id, string(status))
	if err != nil {
		m.Complete(err)
		return errors.WithStack(err)
	}
	if ct.RowsAffected() == 0 {
		m.Complete(core.ErrNotFound)
		return errors.WithStack(core.ErrNotFound)
	}
	m.Complete(nil)
	return nil
}

func (d *dbRepo) GetReservation(ctx context.Context, id string, options ...core.QueryOptions) (stock.Reservation, error) {
	m := db.StartMetric("GetReservation")
	tx, forUpdate := db.GetQueryOptions(d.conn, options...)

	reservation := stock.Reservation{}
	var status string
	err := tx.QueryRow(ctx, `
		SELECT id, item_id, quantity, context_ref, planned_date, status, notes, created
		  FROM reservations
		 WHERE id = $1 `+forUpdate, id).
		Scan(&reservation.ID, &reservation.ItemID, &reservation.Quantity, &reservation.ContextRef,
			&reservation.PlannedDate, &status, &reservation.Notes, &reservation.Created)
	if err != nil {
		m.Complete(err)
		if err == pgx.ErrNoRows {
			return reservation, errors.WithStack(core.ErrNotFound)
		}
		return reservation, errors.WithStack(err)
	}
	reservation.Status, err = stock.ParseStatus(status)
	if err != nil {
		m.Complete(err)
		return reservation, errors.WithStack(err)
	}

	m.Complete(nil)
	return reservation, nil
}

func (d *dbRepo) GetReservations(ctx context.Context, resOptions stock.GetReservationsOptions, limit, offset int, options ...core.QueryOptions) ([]stock.Reservation, error) {
	m := db.StartMetric("GetReservations")
	tx, forUpdate := db.GetQueryOptions(d.conn, options...)

	query := `
		SELECT id, item_id, quantity, context_ref, planned_date, status, notes, created
		  FROM reservations
		 WHERE ($1 = '' OR item_id = $1)
		   AND ($2 = '' OR context_ref = $2)
		   AND ($3 = '' OR status = $3)
		 ORDER BY created
		 LIMIT $4 OFFSET $5 ` + forUpdate

	rows, err := tx.Query(ctx, query,
		resOptions.ItemID, resOptions.ContextRef, string(resOptions.Status), limit, offset)
	if err != nil {
		m.Complete(err)
		return nil, errors.WithStack(err)
	}
	defer rows.Close()

	reservations := make([]stock.Reservation, 0)
	for rows.Next() {
		r := stock.Reservation{}
		var status string
		err = rows.Scan(&r.ID, &r.ItemID, &r.Quantity, &r.ContextRef, &r.PlannedDate, &status, &r.Notes, &r.Created)
		if err != nil {
			m.Complete(err)
			return nil, errors.WithStack(err)
		}
		r.Status, err = stock.ParseStatus(status)
		if err != nil {
			m.Complete(err)
			return nil, errors.WithStack(err)
		}
		reservations = append(reservations, r)
	}

	m.Complete(nil)
	return reservations, nil
}

func (d *dbRepo) GetCommitted(ctx context.Context, itemID string, options ...core.QueryOptions) (decimal.Decimal, error) {
	m := db.StartMetric("GetCommitted")
	tx, _ := db.GetQueryOptions(d.conn, options...)

	var committed decimal.Decimal
	err := tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity), 0)
		  FROM reservations
		 WHERE item_id = $1
		   AND status IN ('pending', 'confirmed');`, itemID).
		Scan(&committed)
	if err != nil {
		m.Complete(err)
		return decimal.Zero, errors.WithStack(err)
	}

	m.Complete(nil)
	return committed, nil
}

func (d *dbRepo) GetItem(ctx context.Context, id string, options ...core.QueryOptions) (catalog.Item, error) {
	m := db.StartMetric("GetItem")
	tx, forUpdate := db.GetQueryOptions(d.conn, options...)

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
			return item, errors.WithStack(core.ErrNotFound)
		}
		return item, errors.WithStack(err)
	}
	item.Unit, err = catalog.ParseUnit(unit)
	if err != nil {
		m.Complete(err)
		return item, errors.WithStack(err)
	}

	m.Complete(nil)
	return item, nil
}

func (d *dbRepo) GetLowStockSummaries(ctx context.Context, limit, offset int, options ...core.QueryOptions) ([]stock.ItemSummary, error) {
	m := db.StartMetric("GetLowStockSummaries")
	tx, _ := db.GetQueryOptions(d.conn, options...)

	rows, err := tx.Query(ctx, `
		SELECT id, name, part_number, unit, unit_price, min_level, retired, created, on_hand, committed
		  FROM (SELECT i.id, i.name, i.part_number, i.unit, i.unit_price, i.min_level, i.retired, i.created,
		               COALESCE(m.on_hand, 0) AS on_hand, COALESCE(r.committed, 0) AS committed
		          FROM items i
		          LEFT JOIN (SELECT item_id, SUM(CASE WHEN direction = 'in' THEN quantity ELSE -quantity END) AS on_hand
		                       FROM stock_movements GROUP BY item_id) m ON m.item_id = i.id
		          LEFT JOIN (SELECT item_id, SUM(quantity) AS committed
		                       FROM reservations WHERE status IN ('pending', 'confirmed') GROUP BY item_id) r ON r.item_id = i.id) s
		 WHERE s.on_hand <= 0 OR s.on_hand < s.min_level
		 ORDER BY s.on_hand - s.committed, s.part_number
		 LIMIT $1 OFFSET $2;`, limit, offset)
	if err != nil {
		m.Complete(err)
		return nil, errors.WithStack(err)
	}
	defer rows.Close()

	summaries := make([]stock.ItemSummary, 0)
	for rows.Next() {
		s := stock.ItemSummary{}
		var unit string
		err = rows.Scan(&s.ID, &s.Name, &s.PartNumber, &unit, &s.UnitPrice, &s.MinLevel, &s.Retired, &s.Created,
			&s.OnHand, &s.Committed)
		if err != nil {
			m.Complete(err)
			return nil, errors.WithStack(err)
		}
		s.Unit, err = catalog.ParseUnit(unit)
		if err != nil {
			m.Complete(err)
			return nil, errors.WithStack(err)
		}
		summaries = append(summaries, s)
	}

	m.Complete(nil)
	return summaries, nil
}
