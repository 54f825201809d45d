package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/summitair/inventory-service/core"
)

var errInvalidUnit = errors.New("catalog: invalid unit of measure")

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

type Service interface {
	Create(ctx context.Context, req CreateItemRequest) (Item, error)
	Update(ctx context.Context, id string, req UpdateItemRequest) (Item, error)
	Retire(ctx context.Context, id string) error

	Get(ctx context.Context, id string) (Item, error)
	GetByPartNumber(ctx context.Context, partNumber string) (Item, error)
	GetAll(ctx context.Context, limit, offset int) ([]Item, error)
}

type service struct {
	repo Repository
}

func (s *service) Create(ctx context.Context, req CreateItemRequest) (Item, error) {
	const funcName = "Create"

	if req.Name == "" || req.PartNumber == "" {
		return Item{}, errors.New("name and part number are required")
	}
	if _, err := ParseUnit(string(req.Unit)); err != nil {
		return Item{}, err
	}
	if req.UnitPrice.IsNegative() {
		return Item{}, errors.New("unit price must not be negative")
	}
	if req.MinLevel.IsNegative() || !req.Unit.ValidQuantity(req.MinLevel) {
		return Item{}, errors.New("minimum level must be non-negative and match the unit precision")
	}

	existing, err := s.repo.GetItemByPartNumber(ctx, req.PartNumber)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return Item{}, errors.WithStack(err)
	}
	if existing.ID != "" {
		log.Debug().
			Str("func", funcName).
			Str("partNumber", req.PartNumber).
			Msg("item already exists")
		return existing, nil
	}

	item := Item{
		ID:         uuid.NewString(),
		Name:       req.Name,
		PartNumber: req.PartNumber,
		Unit:       req.Unit,
		UnitPrice:  req.UnitPrice,
		MinLevel:   req.MinLevel,
		Created:    time.Now(),
	}

	log.Info().
		Str("func", funcName).
		Str("id", item.ID).
		Str("partNumber", item.PartNumber).
		Msg("creating catalog item")

	if err := s.repo.SaveItem(ctx, &item); err != nil {
		return Item{}, errors.WithStack(err)
	}

	return item, nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateItemRequest) (Item, error) {
	item, err := s.repo.GetItem(ctx, id)
	if err != nil {
		return Item{}, errors.WithStack(err)
	}
	if item.Retired {
		return Item{}, errors.WithStack(core.ErrUnknownItem)
	}

	if req.Name != "" {
		item.Name = req.Name
	}
	if req.UnitPrice != nil {
		if req.UnitPrice.IsNegative() {
			return Item{}, errors.New("unit price must not be negative")
		}
		item.UnitPrice = *req.UnitPrice
	}
	if req.MinLevel != nil {
		if req.MinLevel.IsNegative() || !item.Unit.ValidQuantity(*req.MinLevel) {
			return Item{}, errors.New("minimum level must be non-negative and match the unit precision")
		}
		item.MinLevel = *req.MinLevel
	}

	if err := s.repo.SaveItem(ctx, &item); err != nil {
		return Item{}, errors.WithStack(err)
	}
	return item, nil
}

// Retire removes an item from active use. Items with ledger history are soft
// deleted so their movement audit trail stays intact; items that never saw
// stock activity are removed outright.
func (s *service) Retire(ctx context.Context, id string) error {
	const funcName = "Retire"

	item, err := s.repo.GetItem(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	hasHistory, err := s.repo.HasMovements(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	log.Info().
		Str("func", funcName).
		Str("id", id).
		Str("partNumber", item.PartNumber).
		Bool("hasHistory", hasHistory).
		Msg("retiring catalog item")

	if hasHistory {
		return errors.WithStack(s.repo.RetireItem(ctx, id))
	}
	return errors.WithStack(s.repo.DeleteItem(ctx, id))
}

func (s *service) Get(ctx context.Context, id string) (Item, error) {
	return s.repo.GetItem(ctx, id)
}

func (s *service) GetByPartNumber(ctx context.Context, partNumber string) (Item, error) {
	return s.repo.GetItemByPartNumber(ctx, partNumber)
}

func (s *service) GetAll(ctx context.Context, limit, offset int) ([]Item, error) {
	return s.repo.GetAllItems(ctx, limit, offset)
}
