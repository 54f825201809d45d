package api

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/pkg/errors"
	"github.com/summitair/inventory-service/core/stock"
)

type SnapshotResponse struct {
	stock.ItemSnapshot
}

func (rd *SnapshotResponse) Render(_ http.ResponseWriter, _ *http.Request) error {
	return nil
}

func NewSnapshotListResponse(snaps []stock.ItemSnapshot) []render.Renderer {
	list := make([]render.Renderer, 0)
	for _, snap := range snaps {
		list = append(list, &SnapshotResponse{ItemSnapshot: snap})
	}
	return list
}

type MovementResponse struct {
	stock.Movement
}

func (rd *MovementResponse) Render(_ http.ResponseWriter, _ *http.Request) error {
	return nil
}

func NewMovementListResponse(movements []stock.Movement) []render.Renderer {
	list := make([]render.Renderer, 0)
	for _, mv := range movements {
		list = append(list, &MovementResponse{Movement: mv})
	}
	return list
}

type MovementRequestDto struct {
	stock.MovementRequest
}

func (d *MovementRequestDto) Bind(_ *http.Request) error {
	if d.Actor == "" {
		return errors.New("actor is required")
	}
	if !d.Quantity.IsPositive() {
		return errors.New("quantity must be greater than zero")
	}

	return nil
}
