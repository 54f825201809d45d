package api

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/pkg/errors"
	"github.com/summitair/inventory-service/core/stock"
)

// ConflictApi exposes the double-booking check: item ids a caller selected
// directly are cross-referenced against the active reservations held under
// the same context reference.
type ConflictApi struct {
	service StockService
}

func NewConflictApi(service StockService) *ConflictApi {
	return &ConflictApi{service: service}
}

func (a *ConflictApi) ConfigureRouter(r chi.Router) {
	r.Post("/", a.Check)
}

func (a *ConflictApi) Check(w http.ResponseWriter, r *http.Request) {
	data := &ConflictRequestDto{}
	if err := render.Bind(r, data); err != nil {
		Render(w, r, ErrInvalidRequest(err))
		return
	}

	options := stock.GetReservationsOptions{ContextRef: data.ContextRef}
	reservations, err := a.service.GetReservations(r.Context(), options, maxConflictReservations, 0)
	if err != nil {
		RenderErr(w, r, err)
		return
	}

	overlap := stock.FindOverlap(data.ItemIDs, reservations)
	Render(w, r, &ConflictResponse{ContextRef: data.ContextRef, Overlap: overlap})
}

// A context reference groups the reservations of one service order, which
// in practice holds a handful of line items.
const maxConflictReservations = 1000

type ConflictRequestDto struct {
	ItemIDs    []string `json:"itemIds"`
	ContextRef string   `json:"contextRef"`
}

func (d *ConflictRequestDto) Bind(_ *http.Request) error {
	if len(d.ItemIDs) == 0 {
		return errors.New("itemIds is required")
	}
	if d.ContextRef == "" {
		return errors.New("contextRef is required")
	}

	return nil
}

type ConflictResponse struct {
	ContextRef string   `json:"contextRef"`
	Overlap    []string `json:"overlap"`
}

func (rd *ConflictResponse) Render(_ http.ResponseWriter, _ *http.Request) error {
	return nil
}
