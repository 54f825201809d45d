package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/summitair/inventory-service/core/stock"
)

type StockService interface {
	ReceiveStock(ctx context.Context, req stock.MovementRequest) (stock.Movement, error)
	IssueStock(ctx context.Context, req stock.MovementRequest) (stock.Movement, error)

	Reserve(ctx context.Context, req stock.ReservationRequest) (stock.Reservation, error)
	Confirm(ctx context.Context, id string) (stock.Reservation, error)
	Cancel(ctx context.Context, id string) (stock.Reservation, error)
	Fulfill(ctx context.Context, id, actor string) (stock.Reservation, stock.Movement, error)

	GetSnapshot(ctx context.Context, itemID string) (stock.ItemSnapshot, error)
	GetLowStock(ctx context.Context, limit, offset int) ([]stock.ItemSnapshot, error)
	GetMovements(ctx context.Context, itemID string, limit, offset int) ([]stock.Movement, error)
	GetReservation(ctx context.Context, id string) (stock.Reservation, error)
	GetReservations(ctx context.Context, options stock.GetReservationsOptions, limit, offset int) ([]stock.Reservation, error)

	SubscribeSnapshots(ch chan<- stock.ItemSnapshot) (id stock.SnapshotSubID)
	UnsubscribeSnapshots(id stock.SnapshotSubID)

	SubscribeReservations(ch chan<- stock.Reservation) (id stock.ReservationSubID)
	UnsubscribeReservations(id stock.ReservationSubID)
}

type StockApi struct {
	service StockService
}

func NewStockApi(service StockService) *StockApi {
	return &StockApi{service: service}
}

func (a *StockApi) ConfigureRouter(r chi.Router) {
	r.HandleFunc("/subscribe", a.Subscribe)
	r.With(Paginate).Get("/low", a.LowStock)

	r.Route("/{itemId}", func(r chi.Router) {
		r.Get("/", a.GetSnapshot)
		r.Put("/receipt", a.Receive)
		r.Put("/issue", a.Issue)
		r.With(Paginate).Get("/movements", a.Movements)
	})
}

// Subscribe streams snapshot updates to the client over a websocket
// connection. Clients only see updates that occur in their connected
// instance.
func (a *StockApi) Subscribe(w http.ResponseWriter, r *http.Request) {
	log.Info().Msg("client requesting stock subscription")

	conn, _, _, err := ws.UpgradeHTTP(r, w)
	if err != nil {
		log.Err(err).Msg("failed to establish stock subscription connection")
		Render(w, r, ErrInternalServer)
		return
	}
	go func() {
		defer conn.Close()

		ch := make(chan stock.ItemSnapshot, 1)

		id := a.service.SubscribeSnapshots(ch)
		defer func() {
			a.service.UnsubscribeSnapshots(id)
		}()

		for snap := range ch {
			resp := &SnapshotResponse{ItemSnapshot: snap}
			body, err := json.Marshal(resp)
			if err != nil {
				log.Err(err).Interface("clientId", id).Msg("failed to marshal snapshot response")
				continue
			}

			log.Debug().Interface("clientId", id).Interface("snapshotResponse", resp).Msg("sending stock update to client")
			err = wsutil.WriteServerText(conn, body)
			if err != nil {
				log.Err(err).Interface("clientId", id).Msg("failed to write server message, disconnecting client")
				return
			}
		}
	}()
}

func (a *StockApi) LowStock(w http.ResponseWriter, r *http.Request) {
	limit, offset := getPagination(r)

	snaps, err := a.service.GetLowStock(r.Context(), limit, offset)
	if err != nil {
		log.Err(err).Send()
		Render(w, r, ErrInternalServer)
		return
	}

	RenderList(w, r, NewSnapshotListResponse(snaps))
}

func (a *StockApi) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemId")
	if itemID == "" {
		Render(w, r, ErrInvalidRequest(errors.New("itemId is required")))
		return
	}

	snap, err := a.service.GetSnapshot(r.Context(), itemID)
	if err != nil {
		RenderErr(w, r, err)
		return
	}

	Render(w, r, &SnapshotResponse{ItemSnapshot: snap})
}

func (a *StockApi) Receive(w http.ResponseWriter, r *http.Request) {
	a.record(w, r, a.service.ReceiveStock)
}

// Issue records an outbound movement. Conflicts come back with distinct app
// codes: insufficient_stock when on-hand would go negative,
// insufficient_availability when the issue would break active reservations.
func (a *StockApi) Issue(w http.ResponseWriter, r *http.Request) {
	a.record(w, r, a.service.IssueStock)
}

func (a *StockApi) record(w http.ResponseWriter, r *http.Request,
	op func(context.Context, stock.MovementRequest) (stock.Movement, error)) {

	itemID := chi.URLParam(r, "itemId")
	if itemID == "" {
		Render(w, r, ErrInvalidRequest(errors.New("itemId is required")))
		return
	}

	data := &MovementRequestDto{}
	if err := render.Bind(r, data); err != nil {
		Render(w, r, ErrInvalidRequest(err))
		return
	}
	data.ItemID = itemID

	mv, err := op(r.Context(), data.MovementRequest)
	if err != nil {
		RenderErr(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	Render(w, r, &MovementResponse{Movement: mv})
}

func (a *StockApi) Movements(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemId")
	if itemID == "" {
		Render(w, r, ErrInvalidRequest(errors.New("itemId is required")))
		return
	}

	limit, offset := getPagination(r)

	movements, err := a.service.GetMovements(r.Context(), itemID, limit, offset)
	if err != nil {
		RenderErr(w, r, err)
		return
	}

	RenderList(w, r, NewMovementListResponse(movements))
}
