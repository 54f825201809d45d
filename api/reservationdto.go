package api

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/pkg/errors"
	"github.com/summitair/inventory-service/core/stock"
)

type ReservationResponse struct {
	stock.Reservation
}

func (rd *ReservationResponse) Render(_ http.ResponseWriter, _ *http.Request) error {
	return nil
}

func NewReservationListResponse(reservations []stock.Reservation) []render.Renderer {
	list := make([]render.Renderer, 0)
	for _, rsv := range reservations {
		list = append(list, &ReservationResponse{Reservation: rsv})
	}
	return list
}

type ReservationRequestDto struct {
	stock.ReservationRequest
}

func (d *ReservationRequestDto) Bind(_ *http.Request) error {
	if d.ItemID == "" {
		return errors.New("itemId is required")
	}
	if !d.Quantity.IsPositive() {
		return errors.New("quantity must be greater than zero")
	}
	if d.PlannedDate.IsZero() {
		return errors.New("plannedDate is required")
	}

	return nil
}

type FulfillRequestDto struct {
	Actor string `json:"actor"`
}

func (d *FulfillRequestDto) Bind(_ *http.Request) error {
	if d.Actor == "" {
		return errors.New("actor is required")
	}

	return nil
}

// FulfillResponse returns both sides of a fulfillment: the reservation in
// its final state and the ledger movement the fulfillment produced.
type FulfillResponse struct {
	Reservation stock.Reservation `json:"reservation"`
	Movement    stock.Movement    `json:"movement"`
}

func (rd *FulfillResponse) Render(_ http.ResponseWriter, _ *http.Request) error {
	return nil
}
