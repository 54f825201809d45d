package catalog

import "context"

type MockCatalogService struct {
	CreateFunc          func(ctx context.Context, req CreateItemRequest) (Item, error)
	UpdateFunc          func(ctx context.Context, id string, req UpdateItemRequest) (Item, error)
	RetireFunc          func(ctx context.Context, id string) error
	GetFunc             func(ctx context.Context, id string) (Item, error)
	GetByPartNumberFunc func(ctx context.Context, partNumber string) (Item, error)
	GetAllFunc          func(ctx context.Context, limit, offset int) ([]Item, error)
}

func NewMockCatalogService() MockCatalogService {
	return MockCatalogService{
		CreateFunc: func(ctx context.Context, req CreateItemRequest) (Item, error) { return Item{}, nil },
		UpdateFunc: func(ctx context.Context, id string, req UpdateItemRequest) (Item, error) {
			return Item{}, nil
		},
		RetireFunc:          func(ctx context.Context, id string) error { return nil },
		GetFunc:             func(ctx context.Context, id string) (Item, error) { return Item{}, nil },
		GetByPartNumberFunc: func(ctx context.Context, partNumber string) (Item, error) { return Item{}, nil },
		GetAllFunc:          func(ctx context.Context, limit, offset int) ([]Item, error) { return []Item{}, nil },
	}
}

func (m *MockCatalogService) Create(ctx context.Context, req CreateItemRequest) (Item, error) {
	return m.CreateFunc(ctx, req)
}

func (m *MockCatalogService) Update(ctx context.Context, id string, req UpdateItemRequest) (Item, error) {
	return m.UpdateFunc(ctx, id, req)
}

func (m *MockCatalogService) Retire(ctx context.Context, id string) error {
	return m.RetireFunc(ctx, id)
}

func (m *MockCatalogService) Get(ctx context.Context, id string) (Item, error) {
	return m.GetFunc(ctx, id)
}

func (m *MockCatalogService) GetByPartNumber(ctx context.Context, partNumber string) (Item, error) {
	return m.GetByPartNumberFunc(ctx, partNumber)
}

func (m *MockCatalogService) GetAll(ctx context.Context, limit, offset int) ([]Item, error) {
	return m.GetAllFunc(ctx, limit, offset)
}
