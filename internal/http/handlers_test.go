package http

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mimasafoods/storefront/internal/cart"
	"github.com/mimasafoods/storefront/internal/cartconfig"
	"github.com/mimasafoods/storefront/internal/catalog"
	"github.com/mimasafoods/storefront/internal/order"
	"github.com/mimasafoods/storefront/internal/pricing"
)

type fakeCatalog struct {
	listFunc    func(ctx context.Context) ([]catalog.Product, error)
	listAllFunc func(ctx context.Context) ([]catalog.Product, error)
	getFunc     func(ctx context.Context, productID string) (*catalog.Product, error)
}

func (f *fakeCatalog) ListActive(ctx context.Context) ([]catalog.Product, error) {
	if f.listFunc != nil {
		return f.listFunc(ctx)
	}
	return nil, nil
}

func (f *fakeCatalog) ListAll(ctx context.Context) ([]catalog.Product, error) {
	if f.listAllFunc != nil {
		return f.listAllFunc(ctx)
	}
	return nil, nil
}

func (f *fakeCatalog) GetByID(ctx context.Context, productID string) (*catalog.Product, error) {
	if f.getFunc != nil {
		return f.getFunc(ctx, productID)
	}
	return nil, nil
}

type fakeCartRepo struct {
	addFunc    func(ctx context.Context, sessionID, productID string, quantity int) (*cart.Item, error)
	updateFunc func(ctx context.Context, itemID string, quantity int) error
	removeFunc func(ctx context.Context, itemID string) error
	listFunc   func(ctx context.Context, sessionID string) ([]cart.Item, error)
}

func (f *fakeCartRepo) AddItem(ctx context.Context, sessionID, productID string, quantity int) (*cart.Item, error) {
	if f.addFunc != nil {
		return f.addFunc(ctx, sessionID, productID, quantity)
	}
	return &cart.Item{ID: "item-1", SessionID: sessionID, ProductID: productID, Quantity: quantity}, nil
}

func (f *fakeCartRepo) UpdateQuantity(ctx context.Context, itemID string, quantity int) error {
	if f.updateFunc != nil {
		return f.updateFunc(ctx, itemID, quantity)
	}
	return nil
}

func (f *fakeCartRepo) RemoveItem(ctx context.Context, itemID string) error {
	if f.removeFunc != nil {
		return f.removeFunc(ctx, itemID)
	}
	return nil
}

func (f *fakeCartRepo) ListBySession(ctx context.Context, sessionID string) ([]cart.Item, error) {
	if f.listFunc != nil {
		return f.listFunc(ctx, sessionID)
	}
	return nil, nil
}

func (f *fakeCartRepo) ClearSession(ctx context.Context, sessionID string) error {
	return nil
}

type fakeOrderRepo struct {
	getByIDFunc      func(ctx context.Context, orderID string) (*order.Order, error)
	getByNumberFunc  func(ctx context.Context, orderNumber string) (*order.Order, error)
	listFunc         func(ctx context.Context, limit int) ([]order.Order, error)
	updateStatusFunc func(ctx context.Context, orderID string, status order.Status) (*order.Order, error)
}

func (f *fakeOrderRepo) CreateWithItems(ctx context.Context, o *order.Order, sessionID string) error {
	return nil
}

func (f *fakeOrderRepo) FindByPaymentID(ctx context.Context, paymentID string) (*order.Order, error) {
	return nil, nil
}

func (f *fakeOrderRepo) GetByID(ctx context.Context, orderID string) (*order.Order, error) {
	if f.getByIDFunc != nil {
		return f.getByIDFunc(ctx, orderID)
	}
	return nil, nil
}

func (f *fakeOrderRepo) GetByNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	if f.getByNumberFunc != nil {
		return f.getByNumberFunc(ctx, orderNumber)
	}
	return nil, nil
}

func (f *fakeOrderRepo) List(ctx context.Context, limit int) ([]order.Order, error) {
	if f.listFunc != nil {
		return f.listFunc(ctx, limit)
	}
	return nil, nil
}

func (f *fakeOrderRepo) UpdateStatus(ctx context.Context, orderID string, status order.Status) (*order.Order, error) {
	if f.updateStatusFunc != nil {
		return f.updateStatusFunc(ctx, orderID, status)
	}
	return nil, nil
}

func TestListProducts(t *testing.T) {
	repo := &fakeCatalog{
		listFunc: func(ctx context.Context) ([]catalog.Product, error) {
			return []catalog.Product{
				{ID: "p-1", Name: "Butter Chicken Gravy", Price: decimal.RequireFromString("249.00"), IsActive: true},
			}, nil
		},
	}
	handler := NewProductHandler(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	rr := httptest.NewRecorder()
	handler.ListProducts(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Butter Chicken Gravy")
}

func TestGetProductNotFound(t *testing.T) {
	handler := NewProductHandler(&fakeCatalog{})

	req := httptest.NewRequest(http.MethodGet, "/api/products/missing", nil)
	req.SetPathValue("productId", "missing")
	rr := httptest.NewRecorder()
	handler.GetProduct(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetProductHidesInactive(t *testing.T) {
	repo := &fakeCatalog{
		getFunc: func(ctx context.Context, productID string) (*catalog.Product, error) {
			return &catalog.Product{ID: productID, IsActive: false}, nil
		},
	}
	handler := NewProductHandler(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/products/p-1", nil)
	req.SetPathValue("productId", "p-1")
	rr := httptest.NewRecorder()
	handler.GetProduct(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

type staticConfigRepo struct{}

func (staticConfigRepo) Get(ctx context.Context, name string) (*cartconfig.Entry, error) {
	return nil, nil
}
func (staticConfigRepo) List(ctx context.Context) ([]cartconfig.Entry, error) {
	return []cartconfig.Entry{
		{Name: cartconfig.NameShipping, Value: "50"},
		{Name: cartconfig.NameFreeShipping, Value: "500"},
	}, nil
}
func (staticConfigRepo) Upsert(ctx context.Context, name, value string) error { return nil }

func testDiscardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newTestProvider() *cartconfig.Provider {
	return cartconfig.NewProvider(staticConfigRepo{}, time.Minute, testDiscardLogger())
}

func newTestResolver() *pricing.Resolver {
	return pricing.NewResolver(newTestProvider())
}

func TestGetCartRequiresSession(t *testing.T) {
	handler := NewCartHandler(&fakeCartRepo{}, newTestResolver())

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	rr := httptest.NewRecorder()
	handler.GetCart(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetCartReturnsItemsAndTotals(t *testing.T) {
	repo := &fakeCartRepo{
		listFunc: func(ctx context.Context, sessionID string) ([]cart.Item, error) {
			return []cart.Item{{
				ID:        "item-1",
				SessionID: sessionID,
				ProductID: "p-1",
				Quantity:  2,
				Product: &catalog.Product{
					ID: "p-1", Name: "Butter Chicken Gravy",
					Price: decimal.RequireFromString("249.00"), IsActive: true,
				},
			}}, nil
		},
	}
	handler := NewCartHandler(repo, newTestResolver())

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set("X-Session-ID", "sess-1")
	rr := httptest.NewRecorder()
	handler.GetCart(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `"subtotal":"498"`)
	assert.Contains(t, body, `"shippingCharge":"50"`)
	assert.Contains(t, body, `"total":"548"`)
}

func TestAddItemValidatesBody(t *testing.T) {
	handler := NewCartHandler(&fakeCartRepo{}, newTestResolver())

	cases := []struct {
		name string
		body string
	}{
		{"bad json", "{"},
		{"missing product", `{"quantity":1}`},
		{"zero quantity", `{"productId":"p-1","quantity":0}`},
		{"negative quantity", `{"productId":"p-1","quantity":-2}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(tc.body))
			req.Header.Set("X-Session-ID", "sess-1")
			rr := httptest.NewRecorder()
			handler.AddItem(rr, req)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestAddItemCreated(t *testing.T) {
	handler := NewCartHandler(&fakeCartRepo{}, newTestResolver())

	req := httptest.NewRequest(http.MethodPost, "/api/cart/items",
		strings.NewReader(`{"productId":"p-1","quantity":2}`))
	req.Header.Set("X-Session-ID", "sess-1")
	rr := httptest.NewRecorder()
	handler.AddItem(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), "item-1")
}

func TestUpdateItemNotFound(t *testing.T) {
	repo := &fakeCartRepo{
		updateFunc: func(ctx context.Context, itemID string, quantity int) error {
			return cart.ErrItemNotFound
		},
	}
	handler := NewCartHandler(repo, newTestResolver())

	req := httptest.NewRequest(http.MethodPatch, "/api/cart/items/missing",
		strings.NewReader(`{"quantity":3}`))
	req.SetPathValue("itemId", "missing")
	rr := httptest.NewRecorder()
	handler.UpdateItem(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetOrderByNumber(t *testing.T) {
	repo := &fakeOrderRepo{
		getByNumberFunc: func(ctx context.Context, orderNumber string) (*order.Order, error) {
			return &order.Order{
				OrderNumber: orderNumber,
				Status:      order.StatusPaid,
				TotalAmount: decimal.RequireFromString("349.00"),
				CreatedAt:   time.Unix(0, 0),
			}, nil
		},
	}
	handler := NewOrderHandler(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/orders/ORD-20260829-0001", nil)
	req.SetPathValue("orderNumber", "ORD-20260829-0001")
	rr := httptest.NewRecorder()
	handler.GetOrder(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ORD-20260829-0001")
}

func TestGetOrderNotFound(t *testing.T) {
	handler := NewOrderHandler(&fakeOrderRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/orders/ORD-x", nil)
	req.SetPathValue("orderNumber", "ORD-x")
	rr := httptest.NewRecorder()
	handler.GetOrder(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
