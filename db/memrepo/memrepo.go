// Package memrepo is an in-memory implementation of the catalog and stock
// repositories, selected by the db.inMemory configuration. It honors the
// same contract as the postgres repositories: quantity-affecting work runs
// in a transaction, rows "locked" with ForUpdate serialize per item, and a
// transaction's writes apply all-or-nothing on commit.
package memrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/summitair/inventory-service/core"
	"github.com/summitair/inventory-service/core/catalog"
	"github.com/summitair/inventory-service/core/stock"
)

type Store struct {
	mu           sync.Mutex
	itemLocks    map[string]*sync.Mutex
	items        map[string]catalog.Item
	movements    map[string][]stock.Movement
	reservations map[string]stock.Reservation
	seq          uint64
}

func NewStore() *Store {
	return &Store{
		itemLocks:    make(map[string]*sync.Mutex),
		items:        make(map[string]catalog.Item),
		movements:    make(map[string][]stock.Movement),
		reservations: make(map[string]stock.Reservation),
	}
}

func (s *Store) Stock() stock.Repository {
	return &stockRepo{store: s}
}

func (s *Store) Catalog() catalog.Repository {
	return &catalogRepo{store: s}
}

func (s *Store) itemLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.itemLocks[id]
	if !ok {
		m = &sync.Mutex{}
		s.itemLocks[id] = m
	}
	return m
}

// memTx buffers writes until commit and holds the per-item locks acquired by
// ForUpdate reads. Commit applies the buffer atomically; rollback discards it.
type memTx struct {
	store  *Store
	held   map[string]*sync.Mutex
	staged []func(*Store)
	done   bool
}

func (s *Store) begin() *memTx {
	return &memTx{store: s, held: make(map[string]*sync.Mutex)}
}

func (t *memTx) lockItem(id string) {
	if _, ok := t.held[id]; ok {
		return
	}
	m := t.store.itemLock(id)
	m.Lock()
	t.held[id] = m
}

func (t *memTx) release() {
	for _, m := range t.held {
		m.Unlock()
	}
	t.held = make(map[string]*sync.Mutex)
}

func (t *memTx) Commit(_ context.Context) error {
	if t.done {
		return errors.New("memrepo: transaction already closed")
	}
	t.store.mu.Lock()
	for _, apply := range t.staged {
		apply(t.store)
	}
	t.store.mu.Unlock()
	t.done = true
	t.release()
	return nil
}

func (t *memTx) Rollback(_ context.Context) error {
	if t.done {
		return nil
	}
	t.staged = nil
	t.done = true
	t.release()
	return nil
}

// The memory store never issues SQL; these exist to satisfy core.Conn.
func (t *memTx) Query(_ context.Context, _ string, _ ...interface{}) (pgx.Rows, error) {
	return nil, errors.New("memrepo: sql not supported")
}

func (t *memTx) QueryRow(_ context.Context, _ string, _ ...interface{}) pgx.Row {
	return nil
}

func (t *memTx) Exec(_ context.Context, _ string, _ ...interface{}) (pgconn.CommandTag, error) {
	return nil, errors.New("memrepo: sql not supported")
}

func (t *memTx) Begin(_ context.Context) (pgx.Tx, error) {
	return nil, errors.New("memrepo: sql not supported")
}

func queryTx(options ...core.QueryOptions) (*memTx, bool) {
	if len(options) == 0 || options[0].Tx == nil {
		return nil, false
	}
	t, ok := options[0].Tx.(*memTx)
	return t, ok && options[0].ForUpdate
}

func updateTx(options ...core.UpdateOptions) *memTx {
	if len(options) == 0 || options[0].Tx == nil {
		return nil
	}
	t, _ := options[0].Tx.(*memTx)
	return t
}

type stockRepo struct {
	store *Store
}

func (r *stockRepo) BeginTransaction(_ context.Context) (core.Transaction, error) {
	return r.store.begin(), nil
}

func (r *stockRepo) GetItem(_ context.Context, id string, options ...core.QueryOptions) (catalog.Item, error) {
	if t, forUpdate := queryTx(options...); forUpdate && t != nil {
		// ForUpdate on the item row is the per-item serialization point.
		r.store.mu.Lock()
		_, exists := r.store.items[id]
		r.store.mu.Unlock()
		if !exists {
			return catalog.Item{}, errors.WithStack(core.ErrNotFound)
		}
		t.lockItem(id)
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	item, ok := r.store.items[id]
	if !ok {
		return catalog.Item{}, errors.WithStack(core.ErrNotFound)
	}
	return item, nil
}

func (r *stockRepo) SaveMovement(_ context.Context, movement *stock.Movement, options ...core.UpdateOptions) error {
	r.store.mu.Lock()
	r.store.seq++
	movement.Seq = r.store.seq
	r.store.mu.Unlock()

	mv := *movement
	apply := func(s *Store) {
		s.movements[mv.ItemID] = append(s.movements[mv.ItemID], mv)
	}

	if t := updateTx(options...); t != nil {
		t.staged = append(t.staged, apply)
		return nil
	}
	r.store.mu.Lock()
	apply(r.store)
	r.store.mu.Unlock()
	return nil
}

func (r *stockRepo) GetMovements(_ context.Context, itemID string, limit, offset int, _ ...core.QueryOptions) ([]stock.Movement, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	all := r.store.movements[itemID]
	lo, hi := pageBounds(len(all), limit, offset)
	out := make([]stock.Movement, hi-lo)
	copy(out, all[lo:hi])
	return out, nil
}

func (r *stockRepo) GetOnHand(_ context.Context, itemID string, _ ...core.QueryOptions) (decimal.Decimal, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	onHand := decimal.Zero
	for _, mv := range r.store.movements[itemID] {
		if mv.Direction == stock.In {
			onHand = onHand.Add(mv.Quantity)
		} else {
			onHand = onHand.Sub(mv.Quantity)
		}
	}
	return onHand, nil
}

func (r *stockRepo) SaveReservation(_ context.Context, reservation *stock.Reservation, options ...core.UpdateOptions) error {
	res := *reservation
	apply := func(s *Store) {
		s.reservations[res.ID] = res
	}

	if t := updateTx(options...); t != nil {
		t.staged = append(t.staged, apply)
		return nil
	}
	r.store.mu.Lock()
	apply(r.store)
	r.store.mu.Unlock()
	return nil
}

func (r *stockRepo) UpdateReservationStatus(_ context.Context, id string, status stock.Status, options ...core.UpdateOptions) error {
	r.store.mu.Lock()
	_, ok := r.store.reservations[id]
	r.store.mu.Unlock()
	if !ok {
		return errors.WithStack(core.ErrNotFound)
	}

	apply := func(s *Store) {
		res := s.reservations[id]
		res.Status = status
		s.reservations[id] = res
	}

	if t := updateTx(options...); t != nil {
		t.staged = append(t.staged, apply)
		return nil
	}
	r.store.mu.Lock()
	apply(r.store)
	r.store.mu.Unlock()
	return nil
}

func (r *stockRepo) GetReservation(_ context.Context, id string, options ...core.QueryOptions) (stock.Reservation, error) {
	if t, forUpdate := queryTx(options...); forUpdate && t != nil {
		r.store.mu.Lock()
		res, ok := r.store.reservations[id]
		r.store.mu.Unlock()
		if !ok {
			return stock.Reservation{}, errors.WithStack(core.ErrNotFound)
		}
		// Locking the reservation's item serializes all reservation
		// transitions with the item's other quantity mutations.
		t.lockItem(res.ItemID)
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	res, ok := r.store.reservations[id]
	if !ok {
		return stock.Reservation{}, errors.WithStack(core.ErrNotFound)
	}
	return res, nil
}

func (r *stockRepo) GetReservations(_ context.Context, resOptions stock.GetReservationsOptions, limit, offset int, _ ...core.QueryOptions) ([]stock.Reservation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	matches := make([]stock.Reservation, 0)
	for _, res := range r.store.reservations {
		if resOptions.ItemID != "" && res.ItemID != resOptions.ItemID {
			continue
		}
		if resOptions.ContextRef != "" && res.ContextRef != resOptions.ContextRef {
			continue
		}
		if resOptions.Status != stock.AnyStatus && res.Status != resOptions.Status {
			continue
		}
		matches = append(matches, res)
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Created.Before(matches[j].Created)
	})

	lo, hi := pageBounds(len(matches), limit, offset)
	return matches[lo:hi], nil
}

func (r *stockRepo) GetCommitted(_ context.Context, itemID string, _ ...core.QueryOptions) (decimal.Decimal, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	committed := decimal.Zero
	for _, res := range r.store.reservations {
		if res.ItemID == itemID && res.Status.Active() {
			committed = committed.Add(res.Quantity)
		}
	}
	return committed, nil
}

func (r *stockRepo) GetLowStockSummaries(ctx context.Context, limit, offset int, _ ...core.QueryOptions) ([]stock.ItemSummary, error) {
	r.store.mu.Lock()
	items := make([]catalog.Item, 0, len(r.store.items))
	for _, item := range r.store.items {
		items = append(items, item)
	}
	r.store.mu.Unlock()

	// Filter to low/critical across the whole catalog before paginating so
	// pages never skip low-stock items.
	low := make([]stock.ItemSummary, 0)
	for _, item := range items {
		onHand, err := r.GetOnHand(ctx, item.ID)
		if err != nil {
			return nil, err
		}
		if stock.StockStatusFor(onHand, item.MinLevel) == stock.StatusOk {
			continue
		}
		committed, err := r.GetCommitted(ctx, item.ID)
		if err != nil {
			return nil, err
		}
		low = append(low, stock.ItemSummary{Item: item, OnHand: onHand, Committed: committed})
	}

	sort.Slice(low, func(i, j int) bool {
		ai := low[i].OnHand.Sub(low[i].Committed)
		aj := low[j].OnHand.Sub(low[j].Committed)
		if ai.Equal(aj) {
			return low[i].PartNumber < low[j].PartNumber
		}
		return ai.LessThan(aj)
	})

	lo, hi := pageBounds(len(low), limit, offset)
	return low[lo:hi], nil
}

type catalogRepo struct {
	store *Store
}

func (r *catalogRepo) GetItem(_ context.Context, id string, _ ...core.QueryOptions) (catalog.Item, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	item, ok := r.store.items[id]
	if !ok {
		return catalog.Item{}, errors.WithStack(core.ErrNotFound)
	}
	return item, nil
}

func (r *catalogRepo) GetItemByPartNumber(_ context.Context, partNumber string, _ ...core.QueryOptions) (catalog.Item, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, item := range r.store.items {
		if item.PartNumber == partNumber {
			return item, nil
		}
	}
	return catalog.Item{}, errors.WithStack(core.ErrNotFound)
}

func (r *catalogRepo) GetAllItems(_ context.Context, limit, offset int, _ ...core.QueryOptions) ([]catalog.Item, error) {
	r.store.mu.Lock()
	items := make([]catalog.Item, 0, len(r.store.items))
	for _, item := range r.store.items {
		items = append(items, item)
	}
	r.store.mu.Unlock()

	sort.Slice(items, func(i, j int) bool {
		return items[i].PartNumber < items[j].PartNumber
	})

	lo, hi := pageBounds(len(items), limit, offset)
	return items[lo:hi], nil
}

func (r *catalogRepo) SaveItem(_ context.Context, item *catalog.Item, _ ...core.UpdateOptions) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.items[item.ID] = *item
	return nil
}

func (r *catalogRepo) RetireItem(_ context.Context, id string, _ ...core.UpdateOptions) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	item, ok := r.store.items[id]
	if !ok {
		return errors.WithStack(core.ErrNotFound)
	}
	item.Retired = true
	r.store.items[id] = item
	return nil
}

func (r *catalogRepo) DeleteItem(_ context.Context, id string, _ ...core.UpdateOptions) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.items, id)
	return nil
}

func (r *catalogRepo) HasMovements(_ context.Context, id string, _ ...core.QueryOptions) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return len(r.store.movements[id]) > 0, nil
}

func pageBounds(n, limit, offset int) (int, int) {
	if offset >= n {
		return 0, 0
	}
	end := n
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return offset, end
}
