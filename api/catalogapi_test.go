package api_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-chi/chi"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/summitair/inventory-service/api"
	"github.com/summitair/inventory-service/core"
	"github.com/summitair/inventory-service/core/catalog"
)

func setupCatalogTestServer() (*httptest.Server, *catalog.MockCatalogService) {
	mockSvc := catalog.NewMockCatalogService()
	catApi := api.NewCatalogApi(&mockSvc)
	r := chi.NewRouter()
	catApi.ConfigureRouter(r)
	ts := httptest.NewServer(r)

	return ts, &mockSvc
}

func testCatalogItems() []catalog.Item {
	return []catalog.Item{
		{ID: "item1", Name: "Blower Motor", PartNumber: "BM-1001", Unit: catalog.UnitCount, UnitPrice: decimal.RequireFromString("129.99"), MinLevel: decimal.NewFromInt(5)},
		{ID: "item2", Name: "Copper Pipe", PartNumber: "CP-3420", Unit: catalog.UnitMeter, UnitPrice: decimal.RequireFromString("8.50"), MinLevel: decimal.RequireFromString("10.0")},
	}
}

func TestCatalogList(t *testing.T) {
	ts, mockSvc := setupCatalogTestServer()
	defer ts.Close()

	tests := []struct {
		limit      int
		wantLimit  int
		offset     int
		wantOffset int

		items      []catalog.Item
		serviceErr error

		wantStatusCode int
	}{
		{limit: -1, wantLimit: 50, offset: -1, wantOffset: 0, items: testCatalogItems(), wantStatusCode: http.StatusOK},
		{limit: 5, wantLimit: 5, offset: 7, wantOffset: 7, items: testCatalogItems(), wantStatusCode: http.StatusOK},
		{limit: -1, wantLimit: 50, offset: -1, wantOffset: 0, items: []catalog.Item{}, wantStatusCode: http.StatusOK},
		{limit: -1, wantLimit: 50, offset: -1, wantOffset: 0, serviceErr: errors.New("something bad happened"), wantStatusCode: http.StatusInternalServerError},
	}

	for _, tc := range tests {
		gotLimit := -1
		gotOffset := -1
		mockSvc.GetAllFunc = func(ctx context.Context, limit, offset int) ([]catalog.Item, error) {
			gotLimit = limit
			gotOffset = offset
			return tc.items, tc.serviceErr
		}

		url := ts.URL
		if tc.limit > -1 {
			url += fmt.Sprintf("?limit=%d&offset=%d", tc.limit, tc.offset)
		}

		res, err := http.Get(url)
		if err != nil {
			t.Fatal(err)
		}

		if res.StatusCode != tc.wantStatusCode {
			t.Errorf("status code got=[%d] want=[%d]", res.StatusCode, tc.wantStatusCode)
		}

		if tc.serviceErr == nil {
			got := []catalog.Item{}
			unmarshal(res, &got, t)
			if len(got) != len(tc.items) {
				t.Errorf("item count got=%d want=%d", len(got), len(tc.items))
			}
		}

		if gotLimit != tc.wantLimit {
			t.Errorf("limit got=[%d] want=[%d]", gotLimit, tc.wantLimit)
		}
		if gotOffset != tc.wantOffset {
			t.Errorf("offset got=[%d] want=[%d]", gotOffset, tc.wantOffset)
		}
	}
}

func TestCatalogCreate(t *testing.T) {
	ts, mockSvc := setupCatalogTestServer()
	defer ts.Close()

	tests := []struct {
		request    catalog.CreateItemRequest
		serviceErr error

		wantStatusCode int
	}{
		{
			request:        catalog.CreateItemRequest{Name: "Blower Motor", PartNumber: "BM-1001", Unit: catalog.UnitCount},
			wantStatusCode: http.StatusCreated,
		},
		{
			request:        catalog.CreateItemRequest{PartNumber: "BM-1001", Unit: catalog.UnitCount},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			request:        catalog.CreateItemRequest{Name: "Blower Motor", PartNumber: "BM-1001", Unit: "bushel"},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			request:        catalog.CreateItemRequest{Name: "Blower Motor", PartNumber: "BM-1001", Unit: catalog.UnitCount},
			serviceErr:     errors.New("name and part number are required"),
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		mockSvc.CreateFunc = func(ctx context.Context, req catalog.CreateItemRequest) (catalog.Item, error) {
			return catalog.Item{ID: "item1", Name: req.Name, PartNumber: req.PartNumber, Unit: req.Unit}, tc.serviceErr
		}

		res := put(ts.URL, tc.request, t)

		if res.StatusCode != tc.wantStatusCode {
			t.Errorf("status code got=[%d] want=[%d]", res.StatusCode, tc.wantStatusCode)
		}
	}
}

func TestCatalogGet(t *testing.T) {
	ts, mockSvc := setupCatalogTestServer()
	defer ts.Close()

	item := testCatalogItems()[0]

	notFoundByID := func(ctx context.Context, id string) (catalog.Item, error) {
		return catalog.Item{}, core.ErrNotFound
	}

	tests := []struct {
		getFunc  func(ctx context.Context, id string) (catalog.Item, error)
		partFunc func(ctx context.Context, partNumber string) (catalog.Item, error)

		wantItem       *catalog.Item
		wantStatusCode int
	}{
		{
			getFunc: func(ctx context.Context, id string) (catalog.Item, error) {
				return item, nil
			},
			wantItem:       &item,
			wantStatusCode: http.StatusOK,
		},
		{
			// An id miss falls back to a part number lookup.
			getFunc: notFoundByID,
			partFunc: func(ctx context.Context, partNumber string) (catalog.Item, error) {
				return item, nil
			},
			wantItem:       &item,
			wantStatusCode: http.StatusOK,
		},
		{
			getFunc: notFoundByID,
			partFunc: func(ctx context.Context, partNumber string) (catalog.Item, error) {
				return catalog.Item{}, core.ErrNotFound
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			getFunc: func(ctx context.Context, id string) (catalog.Item, error) {
				return catalog.Item{}, errors.New("some unexpected error")
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		mockSvc.GetFunc = tc.getFunc
		if tc.partFunc != nil {
			mockSvc.GetByPartNumberFunc = tc.partFunc
		}

		res, err := http.Get(ts.URL + "/item1")
		if err != nil {
			t.Fatal(err)
		}

		if res.StatusCode != tc.wantStatusCode {
			t.Errorf("status code got=[%d] want=[%d]", res.StatusCode, tc.wantStatusCode)
		}

		if tc.wantItem != nil {
			got := catalog.Item{}
			unmarshal(res, &got, t)
			if got.ID != tc.wantItem.ID || got.PartNumber != tc.wantItem.PartNumber {
				t.Errorf("item\n got=%+v\nwant=%+v", got, *tc.wantItem)
			}
		}
	}
}

func TestCatalogRetire(t *testing.T) {
	ts, mockSvc := setupCatalogTestServer()
	defer ts.Close()

	retireCalled := false
	mockSvc.GetFunc = func(ctx context.Context, id string) (catalog.Item, error) {
		return testCatalogItems()[0], nil
	}
	mockSvc.RetireFunc = func(ctx context.Context, id string) error {
		retireCalled = true
		return nil
	}

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/item1", nil)
	if err != nil {
		t.Fatal(err)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}

	if res.StatusCode != http.StatusNoContent {
		t.Errorf("status code got=[%d] want=[%d]", res.StatusCode, http.StatusNoContent)
	}
	if !retireCalled {
		t.Error("retire never called")
	}
}

func TestCatalogUpdate(t *testing.T) {
	ts, mockSvc := setupCatalogTestServer()
	defer ts.Close()

	mockSvc.GetFunc = func(ctx context.Context, id string) (catalog.Item, error) {
		return testCatalogItems()[0], nil
	}

	newPrice := decimal.RequireFromString("149.99")
	var gotReq catalog.UpdateItemRequest
	mockSvc.UpdateFunc = func(ctx context.Context, id string, req catalog.UpdateItemRequest) (catalog.Item, error) {
		gotReq = req
		item := testCatalogItems()[0]
		item.UnitPrice = *req.UnitPrice
		return item, nil
	}

	res := post(ts.URL+"/item1", catalog.UpdateItemRequest{UnitPrice: &newPrice}, t)

	if res.StatusCode != http.StatusOK {
		t.Errorf("status code got=[%d] want=[%d]", res.StatusCode, http.StatusOK)
	}
	if gotReq.UnitPrice == nil || !gotReq.UnitPrice.Equal(newPrice) {
		t.Errorf("unexpected price got=%v want=%v", gotReq.UnitPrice, newPrice)
	}

	got := catalog.Item{}
	unmarshal(res, &got, t)
	if !reflect.DeepEqual(got.ID, "item1") {
		t.Errorf("unexpected item got=%+v", got)
	}

	// An empty update body is rejected before the service is reached.
	res = post(ts.URL+"/item1", catalog.UpdateItemRequest{}, t)
	if res.StatusCode != http.StatusBadRequest {
		t.Errorf("status code got=[%d] want=[%d]", res.StatusCode, http.StatusBadRequest)
	}
}
