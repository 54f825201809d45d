package api

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/pkg/errors"
	"github.com/summitair/inventory-service/core/catalog"
)

type ItemResponse struct {
	catalog.Item
}

func NewItemResponse(item catalog.Item) *ItemResponse {
	return &ItemResponse{Item: item}
}

func (rd *ItemResponse) Render(_ http.ResponseWriter, _ *http.Request) error {
	return nil
}

func NewItemListResponse(items []catalog.Item) []render.Renderer {
	list := make([]render.Renderer, 0)
	for _, item := range items {
		list = append(list, NewItemResponse(item))
	}
	return list
}

type CreateItemRequestDto struct {
	catalog.CreateItemRequest
}

func (d *CreateItemRequestDto) Bind(_ *http.Request) error {
	if d.Name == "" || d.PartNumber == "" {
		return errors.New("missing required field(s)")
	}
	if _, err := catalog.ParseUnit(string(d.Unit)); err != nil {
		return err
	}
	if d.UnitPrice.IsNegative() {
		return errors.New("unitPrice must not be negative")
	}
	if d.MinLevel.IsNegative() {
		return errors.New("minLevel must not be negative")
	}

	return nil
}

type UpdateItemRequestDto struct {
	catalog.UpdateItemRequest
}

func (d *UpdateItemRequestDto) Bind(_ *http.Request) error {
	if d.Name == "" && d.UnitPrice == nil && d.MinLevel == nil {
		return errors.New("nothing to update")
	}
	if d.UnitPrice != nil && d.UnitPrice.IsNegative() {
		return errors.New("unitPrice must not be negative")
	}
	if d.MinLevel != nil && d.MinLevel.IsNegative() {
		return errors.New("minLevel must not be negative")
	}

	return nil
}
