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

type ReservationApi struct {
	service StockService
}

func NewReservationApi(service StockService) *ReservationApi {
	return &ReservationApi{service: service}
}

func (a *ReservationApi) ConfigureRouter(r chi.Router) {
	r.HandleFunc("/subscribe", a.Subscribe)

	r.With(Paginate).Get("/", a.List)
	r.Put("/", a.Create)

	r.Route("/{reservationId}", func(r chi.Router) {
		r.Get("/", a.Get)
		r.Put("/confirm", a.Confirm)
		r.Put("/fulfill", a.Fulfill)
		r.Delete("/", a.Cancel)
	})
}

// Subscribe streams reservation status changes to the client over a
// websocket connection.
func (a *ReservationApi) Subscribe(w http.ResponseWriter, r *http.Request) {
	log.Info().Msg("client requesting reservation subscription")

	conn, _, _, err := ws.UpgradeHTTP(r, w)
	if err != nil {
		log.Err(err).Msg("failed to establish reservation subscription connection")
		Render(w, r, ErrInternalServer)
		return
	}
	go func() {
		defer conn.Close()

		ch := make(chan stock.Reservation, 1)

		id := a.service.SubscribeReservations(ch)
		defer func() {
			a.service.UnsubscribeReservations(id)
		}()

		for rsv := range ch {
			resp := &ReservationResponse{Reservation: rsv}
			body, err := json.Marshal(resp)
			if err != nil {
				log.Err(err).Interface("clientId", id).Msg("failed to marshal reservation response")
				continue
			}

			log.Debug().Interface("clientId", id).Interface("reservationResponse", resp).Msg("sending reservation update to client")
			err = wsutil.WriteServerText(conn, body)
			if err != nil {
				log.Err(err).Interface("clientId", id).Msg("failed to write server message, disconnecting client")
				return
			}
		}
	}()
}

func (a *ReservationApi) List(w http.ResponseWriter, r *http.Request) {
	status, err := stock.ParseStatus(r.URL.Query().Get("status"))
	if err != nil {
		Render(w, r, ErrInvalidRequest(err))
		return
	}

	options := stock.GetReservationsOptions{
		ItemID:     r.URL.Query().Get("itemId"),
		ContextRef: r.URL.Query().Get("contextRef"),
		Status:     status,
	}

	limit, offset := getPagination(r)

	reservations, err := a.service.GetReservations(r.Context(), options, limit, offset)
	if err != nil {
		RenderErr(w, r, err)
		return
	}

	RenderList(w, r, NewReservationListResponse(reservations))
}

func (a *ReservationApi) Create(w http.ResponseWriter, r *http.Request) {
	data := &ReservationRequestDto{}
	if err := render.Bind(r, data); err != nil {
		Render(w, r, ErrInvalidRequest(err))
		return
	}

	rsv, err := a.service.Reserve(r.Context(), data.ReservationRequest)
	if err != nil {
		RenderErr(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	Render(w, r, &ReservationResponse{Reservation: rsv})
}

func (a *ReservationApi) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "reservationId")
	if id == "" {
		Render(w, r, ErrInvalidRequest(errors.New("reservationId is required")))
		return
	}

	rsv, err := a.service.GetReservation(r.Context(), id)
	if err != nil {
		RenderErr(w, r, err)
		return
	}

	Render(w, r, &ReservationResponse{Reservation: rsv})
}

func (a *ReservationApi) Confirm(w http.ResponseWriter, r *http.Request) {
	a.transition(w, r, a.service.Confirm)
}

func (a *ReservationApi) Cancel(w http.ResponseWriter, r *http.Request) {
	a.transition(w, r, a.service.Cancel)
}

func (a *ReservationApi) transition(w http.ResponseWriter, r *http.Request,
	op func(context.Context, string) (stock.Reservation, error)) {

	id := chi.URLParam(r, "reservationId")
	if id == "" {
		Render(w, r, ErrInvalidRequest(errors.New("reservationId is required")))
		return
	}

	rsv, err := op(r.Context(), id)
	if err != nil {
		RenderErr(w, r, err)
		return
	}

	Render(w, r, &ReservationResponse{Reservation: rsv})
}

func (a *ReservationApi) Fulfill(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "reservationId")
	if id == "" {
		Render(w, r, ErrInvalidRequest(errors.New("reservationId is required")))
		return
	}

	data := &FulfillRequestDto{}
	if err := render.Bind(r, data); err != nil {
		Render(w, r, ErrInvalidRequest(err))
		return
	}

	rsv, mv, err := a.service.Fulfill(r.Context(), id, data.Actor)
	if err != nil {
		RenderErr(w, r, err)
		return
	}

	Render(w, r, &FulfillResponse{Reservation: rsv, Movement: mv})
}
