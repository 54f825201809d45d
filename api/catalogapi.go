package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/summitair/inventory-service/core"
	"github.com/summitair/inventory-service/core/catalog"
)

type CatalogService interface {
	Create(ctx context.Context, req catalog.CreateItemRequest) (catalog.Item, error)
	Update(ctx context.Context, id string, req catalog.UpdateItemRequest) (catalog.Item, error)
	Retire(ctx context.Context, id string) error

	Get(ctx context.Context, id string) (catalog.Item, error)
	GetByPartNumber(ctx context.Context, partNumber string) (catalog.Item, error)
	GetAll(ctx context.Context, limit, offset int) ([]catalog.Item, error)
}

type CatalogApi struct {
	service CatalogService
}

func NewCatalogApi(service CatalogService) *CatalogApi {
	return &CatalogApi{service: service}
}

const (
	CtxKeyItem CtxKey = "item"
)

func (a *CatalogApi) ConfigureRouter(r chi.Router) {
	r.With(Paginate).Get("/", a.List)
	r.Put("/", a.Create)

	r.Route("/{itemId}", func(r chi.Router) {
		r.Use(a.ItemCtx)
		r.Get("/", a.Get)
		r.Post("/", a.Update)
		r.Delete("/", a.Retire)
	})
}

func (a *CatalogApi) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := getPagination(r)

	items, err := a.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		log.Err(err).Send()
		Render(w, r, ErrInternalServer)
		return
	}

	RenderList(w, r, NewItemListResponse(items))
}

func (a *CatalogApi) Create(w http.ResponseWriter, r *http.Request) {
	data := &CreateItemRequestDto{}
	if err := render.Bind(r, data); err != nil {
		Render(w, r, ErrInvalidRequest(err))
		return
	}

	item, err := a.service.Create(r.Context(), data.CreateItemRequest)
	if err != nil {
		log.Err(err).Send()
		Render(w, r, ErrInvalidRequest(err))
		return
	}

	render.Status(r, http.StatusCreated)
	Render(w, r, NewItemResponse(item))
}

// ItemCtx loads the requested item into the request context. The url
// parameter is tried as an item id first, then as a part number, since
// warehouse callers usually address parts by part number.
func (a *CatalogApi) ItemCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "itemId")
		if id == "" {
			Render(w, r, ErrInvalidRequest(errors.New("itemId is required")))
			return
		}

		item, err := a.service.Get(r.Context(), id)
		if errors.Is(err, core.ErrNotFound) {
			item, err = a.service.GetByPartNumber(r.Context(), id)
		}
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				Render(w, r, ErrNotFound)
			} else {
				log.Error().Err(err).Str("itemId", id).Msg("error acquiring item")
				Render(w, r, ErrInternalServer)
			}
			return
		}

		ctx := context.WithValue(r.Context(), CtxKeyItem, item)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *CatalogApi) Get(w http.ResponseWriter, r *http.Request) {
	item := r.Context().Value(CtxKeyItem).(catalog.Item)
	Render(w, r, NewItemResponse(item))
}

func (a *CatalogApi) Update(w http.ResponseWriter, r *http.Request) {
	item := r.Context().Value(CtxKeyItem).(catalog.Item)

	data := &UpdateItemRequestDto{}
	if err := render.Bind(r, data); err != nil {
		Render(w, r, ErrInvalidRequest(err))
		return
	}

	updated, err := a.service.Update(r.Context(), item.ID, data.UpdateItemRequest)
	if err != nil {
		log.Err(err).Send()
		Render(w, r, ErrInvalidRequest(err))
		return
	}

	Render(w, r, NewItemResponse(updated))
}

func (a *CatalogApi) Retire(w http.ResponseWriter, r *http.Request) {
	item := r.Context().Value(CtxKeyItem).(catalog.Item)

	if err := a.service.Retire(r.Context(), item.ID); err != nil {
		log.Err(err).Send()
		Render(w, r, ErrInternalServer)
		return
	}

	render.Status(r, http.StatusNoContent)
	render.NoContent(w, r)
}
