package stock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/summitair/inventory-service/core"
	"github.com/summitair/inventory-service/core/catalog"
)

func NewService(repo Repository, q Queue) *service {
	return &service{
		repo:            repo,
		queue:           q,
		snapshotSubs:    make(map[SnapshotSubID]chan<- ItemSnapshot),
		reservationSubs: make(map[ReservationSubID]chan<- Reservation),
	}
}

type Service interface {
	ReceiveStock(ctx context.Context, req MovementRequest) (Movement, error)
	IssueStock(ctx context.Context, req MovementRequest) (Movement, error)

	Reserve(ctx context.Context, req ReservationRequest) (Reservation, error)
	Confirm(ctx context.Context, id string) (Reservation, error)
	Cancel(ctx context.Context, id string) (Reservation, error)
	Fulfill(ctx context.Context, id, actor string) (Reservation, Movement, error)

	GetSnapshot(ctx context.Context, itemID string) (ItemSnapshot, error)
	GetLowStock(ctx context.Context, limit, offset int) ([]ItemSnapshot, error)
	GetMovements(ctx context.Context, itemID string, limit, offset int) ([]Movement, error)
	GetReservation(ctx context.Context, id string) (Reservation, error)
	GetReservations(ctx context.Context, options GetReservationsOptions, limit, offset int) ([]Reservation, error)

	SubscribeSnapshots(ch chan<- ItemSnapshot) (id SnapshotSubID)
	UnsubscribeSnapshots(id SnapshotSubID)

	SubscribeReservations(ch chan<- Reservation) (id ReservationSubID)
	UnsubscribeReservations(id ReservationSubID)
}

type SnapshotSubID string
type ReservationSubID string

type service struct {
	repo  Repository
	queue Queue

	subMu           sync.Mutex
	snapshotSubs    map[SnapshotSubID]chan<- ItemSnapshot
	reservationSubs map[ReservationSubID]chan<- Reservation
}

// ReceiveStock appends an inbound movement to the ledger.
func (s *service) ReceiveStock(ctx context.Context, req MovementRequest) (Movement, error) {
	const funcName = "ReceiveStock"

	log.Info().
		Str("func", funcName).
		Str("itemId", req.ItemID).
		Str("actor", req.Actor).
		Str("quantity", req.Quantity.String()).
		Msg("receiving stock")

	return s.recordMovement(ctx, req, In)
}

// IssueStock appends an outbound movement to the ledger. The issue fails
// with core.ErrInsufficientStock if it would drive on-hand negative, and
// with core.ErrInsufficientAvailability if it would eat into quantity
// committed to active reservations.
func (s *service) IssueStock(ctx context.Context, req MovementRequest) (Movement, error) {
	const funcName = "IssueStock"

	log.Info().
		Str("func", funcName).
		Str("itemId", req.ItemID).
		Str("actor", req.Actor).
		Str("quantity", req.Quantity.String()).
		Msg("issuing stock")

	return s.recordMovement(ctx, req, Out)
}

func (s *service) recordMovement(ctx context.Context, req MovementRequest, direction Direction) (Movement, error) {
	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return Movement{}, errors.WithStack(err)
	}

	defer func() {
		if err != nil {
			rollback(ctx, tx, err)
		}
	}()

	item, err := s.lockItem(ctx, tx, req.ItemID)
	if err != nil {
		return Movement{}, err
	}

	if err = validQuantity(item, req.Quantity); err != nil {
		return Movement{}, err
	}

	onHand, err := s.repo.GetOnHand(ctx, req.ItemID, core.QueryOptions{Tx: tx})
	if err != nil {
		return Movement{}, errors.WithStack(err)
	}
	committed, err := s.repo.GetCommitted(ctx, req.ItemID, core.QueryOptions{Tx: tx})
	if err != nil {
		return Movement{}, errors.WithStack(err)
	}

	if direction == Out {
		if req.Quantity.GreaterThan(onHand) {
			err = errors.WithStack(core.ErrInsufficientStock)
			return Movement{}, err
		}
		// Committed quantity is a hard floor: a direct issue may never
		// strand an active reservation.
		if req.Quantity.GreaterThan(onHand.Sub(committed)) {
			err = errors.WithStack(core.ErrInsufficientAvailability)
			return Movement{}, err
		}
		onHand = onHand.Sub(req.Quantity)
	} else {
		onHand = onHand.Add(req.Quantity)
	}

	movement := Movement{
		ID:        uuid.NewString(),
		ItemID:    req.ItemID,
		Direction: direction,
		Quantity:  req.Quantity,
		Actor:     req.Actor,
		Ref:       req.Ref,
		Notes:     req.Notes,
		Created:   time.Now(),
	}

	if err = s.repo.SaveMovement(ctx, &movement, core.UpdateOptions{Tx: tx}); err != nil {
		return Movement{}, errors.WithMessage(err, "failed to save movement")
	}

	if err = tx.Commit(ctx); err != nil {
		return Movement{}, errors.WithMessage(err, "failed to commit movement")
	}

	if err = s.publishMovement(ctx, movement); err != nil {
		return Movement{}, err
	}
	if err = s.publishSnapshot(ctx, newSnapshot(item, onHand, committed)); err != nil {
		return Movement{}, err
	}

	return movement, nil
}

// Reserve creates a pending reservation. The requested quantity must not
// exceed the item's available quantity computed before this reservation is
// added; otherwise nothing is created.
func (s *service) Reserve(ctx context.Context, req ReservationRequest) (Reservation, error) {
	const funcName = "Reserve"

	log.Info().
		Str("func", funcName).
		Str("itemId", req.ItemID).
		Str("contextRef", req.ContextRef).
		Str("quantity", req.Quantity.String()).
		Msg("reserving stock")

	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return Reservation{}, errors.WithStack(err)
	}

	defer func() {
		if err != nil {
			rollback(ctx, tx, err)
		}
	}()

	item, err := s.lockItem(ctx, tx, req.ItemID)
	if err != nil {
		return Reservation{}, err
	}

	if err = validQuantity(item, req.Quantity); err != nil {
		return Reservation{}, err
	}

	onHand, err := s.repo.GetOnHand(ctx, req.ItemID, core.QueryOptions{Tx: tx})
	if err != nil {
		return Reservation{}, errors.WithStack(err)
	}
	committed, err := s.repo.GetCommitted(ctx, req.ItemID, core.QueryOptions{Tx: tx})
	if err != nil {
		return Reservation{}, errors.WithStack(err)
	}

	if req.Quantity.GreaterThan(onHand.Sub(committed)) {
		err = errors.WithStack(core.ErrInsufficientAvailability)
		return Reservation{}, err
	}

	reservation := Reservation{
		ID:          uuid.NewString(),
		ItemID:      req.ItemID,
		Quantity:    req.Quantity,
		ContextRef:  req.ContextRef,
		PlannedDate: req.PlannedDate,
		Status:      Pending,
		Notes:       req.Notes,
		Created:     time.Now(),
	}

	if err = s.repo.SaveReservation(ctx, &reservation, core.UpdateOptions{Tx: tx}); err != nil {
		return Reservation{}, errors.WithMessage(err, "failed to save reservation")
	}

	if err = tx.Commit(ctx); err != nil {
		return Reservation{}, errors.WithMessage(err, "failed to commit reservation")
	}

	if err = s.publishReservation(ctx, reservation); err != nil {
		return Reservation{}, err
	}
	if err = s.publishSnapshot(ctx, newSnapshot(item, onHand, committed.Add(req.Quantity))); err != nil {
		return Reservation{}, err
	}

	return reservation, nil
}

// Confirm moves a pending reservation to confirmed. Committed quantity is
// unchanged; pending and confirmed both count.
func (s *service) Confirm(ctx context.Context, id string) (Reservation, error) {
	const funcName = "Confirm"

	log.Info().
		Str("func", funcName).
		Str("id", id).
		Msg("confirming reservation")

	return s.transition(ctx, id, Confirmed)
}

// Cancel releases a pending or confirmed reservation. The committed quantity
// is released immediately; subsequent availability reads reflect it.
func (s *service) Cancel(ctx context.Context, id string) (Reservation, error) {
	const funcName = "Cancel"

	log.Info().
		Str("func", funcName).
		Str("id", id).
		Msg("cancelling reservation")

	return s.transition(ctx, id, Cancelled)
}

func (s *service) transition(ctx context.Context, id string, to Status) (Reservation, error) {
	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return Reservation{}, errors.WithStack(err)
	}

	defer func() {
		if err != nil {
			rollback(ctx, tx, err)
		}
	}()

	reservation, err := s.lockReservation(ctx, tx, id)
	if err != nil {
		return Reservation{}, err
	}

	if !reservation.Status.CanTransition(to) {
		err = errors.WithStack(core.ErrInvalidTransition)
		return Reservation{}, err
	}

	if err = s.repo.UpdateReservationStatus(ctx, id, to, core.UpdateOptions{Tx: tx}); err != nil {
		return Reservation{}, errors.WithMessage(err, "failed to update reservation")
	}

	if err = tx.Commit(ctx); err != nil {
		return Reservation{}, errors.WithMessage(err, "failed to commit reservation update")
	}

	reservation.Status = to
	if err = s.publishReservation(ctx, reservation); err != nil {
		return Reservation{}, err
	}

	return reservation, nil
}

// Fulfill consumes a pending or confirmed reservation: it appends the
// matching outbound movement and flips the reservation to fulfilled in one
// transaction. If the ledger write fails the reservation is left unchanged.
// On hand and committed drop together, so availability is unchanged by a
// fulfillment.
func (s *service) Fulfill(ctx context.Context, id, actor string) (Reservation, Movement, error) {
	const funcName = "Fulfill"

	log.Info().
		Str("func", funcName).
		Str("id", id).
		Str("actor", actor).
		Msg("fulfilling reservation")

	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return Reservation{}, Movement{}, errors.WithStack(err)
	}

	defer func() {
		if err != nil {
			rollback(ctx, tx, err)
		}
	}()

	reservation, err := s.lockReservation(ctx, tx, id)
	if err != nil {
		return Reservation{}, Movement{}, err
	}

	if !reservation.Status.CanTransition(Fulfilled) {
		err = errors.WithStack(core.ErrInvalidTransition)
		return Reservation{}, Movement{}, err
	}

	item, err := s.lockItem(ctx, tx, reservation.ItemID)
	if err != nil {
		return Reservation{}, Movement{}, err
	}

	onHand, err := s.repo.GetOnHand(ctx, reservation.ItemID, core.QueryOptions{Tx: tx})
	if err != nil {
		return Reservation{}, Movement{}, errors.WithStack(err)
	}
	if reservation.Quantity.GreaterThan(onHand) {
		err = errors.WithStack(core.ErrInsufficientStock)
		return Reservation{}, Movement{}, err
	}
	committed, err := s.repo.GetCommitted(ctx, reservation.ItemID, core.QueryOptions{Tx: tx})
	if err != nil {
		return Reservation{}, Movement{}, errors.WithStack(err)
	}

	movement := Movement{
		ID:        uuid.NewString(),
		ItemID:    reservation.ItemID,
		Direction: Out,
		Quantity:  reservation.Quantity,
		Actor:     actor,
		Ref:       reservation.ContextRef,
		Created:   time.Now(),
	}

	if err = s.repo.SaveMovement(ctx, &movement, core.UpdateOptions{Tx: tx}); err != nil {
		return Reservation{}, Movement{}, errors.WithMessage(err, "failed to save fulfillment movement")
	}

	if err = s.repo.UpdateReservationStatus(ctx, id, Fulfilled, core.UpdateOptions{Tx: tx}); err != nil {
		return Reservation{}, Movement{}, errors.WithMessage(err, "failed to update reservation")
	}

	if err = tx.Commit(ctx); err != nil {
		return Reservation{}, Movement{}, errors.WithMessage(err, "failed to commit fulfillment")
	}

	reservation.Status = Fulfilled

	if err = s.publishMovement(ctx, movement); err != nil {
		return Reservation{}, Movement{}, err
	}
	if err = s.publishReservation(ctx, reservation); err != nil {
		return Reservation{}, Movement{}, err
	}
	snapshot := newSnapshot(item, onHand.Sub(reservation.Quantity), committed.Sub(reservation.Quantity))
	if err = s.publishSnapshot(ctx, snapshot); err != nil {
		return Reservation{}, Movement{}, err
	}

	return reservation, movement, nil
}

// GetSnapshot reads the item's derived quantities at a single point in time.
// The read locks the item row the same way mutations do, so it can never
// observe a half-applied fulfillment.
func (s *service) GetSnapshot(ctx context.Context, itemID string) (ItemSnapshot, error) {
	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return ItemSnapshot{}, errors.WithStack(err)
	}

	defer func() {
		if err != nil {
			rollback(ctx, tx, err)
		}
	}()

	item, err := s.repo.GetItem(ctx, itemID, core.QueryOptions{Tx: tx, ForUpdate: true})
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			err = errors.WithStack(core.ErrUnknownItem)
		}
		return ItemSnapshot{}, err
	}

	onHand, err := s.repo.GetOnHand(ctx, itemID, core.QueryOptions{Tx: tx})
	if err != nil {
		return ItemSnapshot{}, errors.WithStack(err)
	}
	committed, err := s.repo.GetCommitted(ctx, itemID, core.QueryOptions{Tx: tx})
	if err != nil {
		return ItemSnapshot{}, errors.WithStack(err)
	}

	if err = tx.Commit(ctx); err != nil {
		return ItemSnapshot{}, errors.WithStack(err)
	}

	return newSnapshot(item, onHand, committed), nil
}

// GetLowStock returns items whose status is low or critical, ordered by
// ascending available quantity. The repository filters and orders before
// paginating, so a page never skips low-stock items.
func (s *service) GetLowStock(ctx context.Context, limit, offset int) ([]ItemSnapshot, error) {
	summaries, err := s.repo.GetLowStockSummaries(ctx, limit, offset)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	low := make([]ItemSnapshot, 0, len(summaries))
	for _, summary := range summaries {
		low = append(low, newSnapshot(summary.Item, summary.OnHand, summary.Committed))
	}
	return low, nil
}

func (s *service) GetMovements(ctx context.Context, itemID string, limit, offset int) ([]Movement, error) {
	const funcName = "GetMovements"

	log.Debug().
		Str("func", funcName).
		Str("itemId", itemID).
		Msg("getting movements")

	movements, err := s.repo.GetMovements(ctx, itemID, limit, offset)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return movements, nil
}

func (s *service) GetReservation(ctx context.Context, id string) (Reservation, error) {
	reservation, err := s.repo.GetReservation(ctx, id)
	if err != nil {
		return reservation, errors.WithStack(err)
	}
	return reservation, nil
}

func (s *service) GetReservations(ctx context.Context, options GetReservationsOptions, limit, offset int) ([]Reservation, error) {
	const funcName = "GetReservations"

	log.Debug().
		Str("func", funcName).
		Str("itemId", options.ItemID).
		Str("status", string(options.Status)).
		Msg("getting reservations")

	reservations, err := s.repo.GetReservations(ctx, options, limit, offset)
	if err != nil {
		return reservations, errors.WithStack(err)
	}
	return reservations, nil
}

func (s *service) SubscribeSnapshots(ch chan<- ItemSnapshot) (id SnapshotSubID) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id = SnapshotSubID(uuid.NewString())
	s.snapshotSubs[id] = ch
	log.Debug().Interface("clientId", id).Msg("subscribing to snapshots")
	return id
}

func (s *service) UnsubscribeSnapshots(id SnapshotSubID) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	log.Debug().Interface("clientId", id).Msg("unsubscribing from snapshots")
	close(s.snapshotSubs[id])
	delete(s.snapshotSubs, id)
}

func (s *service) SubscribeReservations(ch chan<- Reservation) (id ReservationSubID) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id = ReservationSubID(uuid.NewString())
	s.reservationSubs[id] = ch
	log.Debug().Interface("clientId", id).Msg("subscribing to reservations")
	return id
}

func (s *service) UnsubscribeReservations(id ReservationSubID) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	log.Debug().Interface("clientId", id).Msg("unsubscribing from reservations")
	close(s.reservationSubs[id])
	delete(s.reservationSubs, id)
}

// lockItem acquires the per-item serialization point: a row lock on the
// catalog entry. Retired items reject mutations but their history stays
// readable through the query paths.
func (s *service) lockItem(ctx context.Context, tx core.Transaction, itemID string) (catalog.Item, error) {
	item, err := s.repo.GetItem(ctx, itemID, core.QueryOptions{Tx: tx, ForUpdate: true})
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return catalog.Item{}, errors.WithStack(core.ErrUnknownItem)
		}
		return catalog.Item{}, errors.WithStack(err)
	}
	if item.Retired {
		return catalog.Item{}, errors.WithStack(core.ErrUnknownItem)
	}
	return item, nil
}

func (s *service) lockReservation(ctx context.Context, tx core.Transaction, id string) (Reservation, error) {
	reservation, err := s.repo.GetReservation(ctx, id, core.QueryOptions{Tx: tx, ForUpdate: true})
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return Reservation{}, errors.WithStack(core.ErrUnknownReservation)
		}
		return Reservation{}, errors.WithStack(err)
	}
	return reservation, nil
}

func validQuantity(item catalog.Item, quantity decimal.Decimal) error {
	if !quantity.IsPositive() || !item.Unit.ValidQuantity(quantity) {
		return errors.WithStack(core.ErrInvalidQuantity)
	}
	return nil
}

func (s *service) publishMovement(ctx context.Context, movement Movement) error {
	err := s.queue.PublishMovement(ctx, movement)
	if err != nil {
		return errors.WithMessage(err, "failed to publish movement to queue")
	}
	return nil
}

func (s *service) publishReservation(ctx context.Context, r Reservation) error {
	err := s.queue.PublishReservation(ctx, r)
	if err != nil {
		return errors.WithMessage(err, "failed to publish reservation to queue")
	}
	go s.notifyReservationSubscribers(r)
	return nil
}

func (s *service) publishSnapshot(_ context.Context, snapshot ItemSnapshot) error {
	go s.notifySnapshotSubscribers(snapshot)
	return nil
}

func (s *service) notifySnapshotSubscribers(snapshot ItemSnapshot) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for id, ch := range s.snapshotSubs {
		log.Debug().Interface("clientId", id).Interface("snapshot", snapshot).Msg("notifying subscriber of snapshot update")
		ch <- snapshot
	}
}

func (s *service) notifyReservationSubscribers(r Reservation) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for id, ch := range s.reservationSubs {
		log.Debug().Interface("clientId", id).Interface("reservation", r).Msg("notifying subscriber of reservation update")
		ch <- r
	}
}
