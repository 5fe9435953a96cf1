package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garmenttrack/go-order-tracker/internal/catalog"
	"github.com/garmenttrack/go-order-tracker/internal/orders"
)

// memStore is a minimal in-memory OrderStore for wiring real handlers to a
// real service in tests.
type memStore struct {
	byID  map[string]*orders.Order
	stock map[string]int
}

func newMemStore() *memStore {
	return &memStore{byID: map[string]*orders.Order{}, stock: map[string]int{}}
}

func (m *memStore) Create(_ context.Context, o *orders.Order) error {
	if m.stock[o.ProductID] < o.Quantity {
		return &orders.ConflictError{Reason: orders.ReasonInsufficientStock, Requested: o.Quantity, Available: m.stock[o.ProductID]}
	}
	m.stock[o.ProductID] -= o.Quantity
	cp := *o
	m.byID[o.ID] = &cp
	return nil
}

func (m *memStore) GetByID(_ context.Context, id string) (*orders.Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, orders.NotFound("order")
	}
	cp := *o
	return &cp, nil
}

func (m *memStore) ListByUser(_ context.Context, userID string) ([]orders.Order, error) {
	var out []orders.Order
	for _, o := range m.byID {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *memStore) ListByEmail(_ context.Context, email string) ([]orders.Order, error) {
	var out []orders.Order
	for _, o := range m.byID {
		if o.BuyerEmail == email {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *memStore) ListPending(_ context.Context) ([]orders.Order, error) {
	var out []orders.Order
	for _, o := range m.byID {
		if o.Status == orders.StatusPending {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *memStore) ListInProgress(_ context.Context) ([]orders.Order, error) {
	var out []orders.Order
	for _, o := range m.byID {
		switch o.Status {
		case orders.StatusApproved, orders.StatusProcessing, orders.StatusShipped:
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *memStore) List(_ context.Context, f orders.ListFilter) ([]orders.Order, int, error) {
	var out []orders.Order
	for _, o := range m.byID {
		if f.Status != "" && f.Status != "all" && o.Status != f.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, len(out), nil
}

func (m *memStore) UpdateStatus(_ context.Context, id string, from, to orders.Status, entry orders.TrackingEntry) error {
	o, ok := m.byID[id]
	if !ok {
		return orders.NotFound("order")
	}
	if o.Status != from {
		return &orders.ConflictError{Reason: orders.ReasonInvalidTransition}
	}
	o.Status = to
	o.Tracking = append(o.Tracking, entry)
	return nil
}

func (m *memStore) AppendTracking(_ context.Context, id string, entry orders.TrackingEntry) error {
	o, ok := m.byID[id]
	if !ok {
		return orders.NotFound("order")
	}
	o.Tracking = append(o.Tracking, entry)
	return nil
}

func (m *memStore) Cancel(_ context.Context, id string, entry orders.TrackingEntry, now time.Time) (*orders.Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, orders.NotFound("order")
	}
	if o.Status != orders.StatusPending {
		return nil, &orders.ConflictError{Reason: orders.ReasonNotCancellable}
	}
	o.Status = orders.StatusCancelled
	o.CancelledAt = &now
	o.Tracking = append(o.Tracking, entry)
	m.stock[o.ProductID] += o.Quantity
	cp := *o
	return &cp, nil
}

type memProducts struct {
	byID map[string]*catalog.Product
}

func (m *memProducts) GetByID(_ context.Context, id string) (*catalog.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

const testProductID = "5f2b8d9e-0000-4000-8000-000000000001"

func newTestRouter(t *testing.T) (*memStore, http.Handler) {
	t.Helper()
	store := newMemStore()
	products := &memProducts{byID: map[string]*catalog.Product{
		testProductID: {
			ID:              testProductID,
			Name:            "Premium Cotton Shirt",
			Category:        "Shirt",
			PriceCents:      120000,
			AvailableQty:    10,
			MinimumOrderQty: 5,
		},
	}}
	store.stock[testProductID] = 10

	svc := orders.NewService(store, products, nil, "test")
	router := NewRouter(zap.NewNop())
	h := &OrdersHandler{Service: svc, Log: zap.NewNop()}
	h.Register(router)
	return store, router
}

func createBody() []byte {
	b, _ := json.Marshal(map[string]any{
		"user_id":     "user-1",
		"product_id":  testProductID,
		"quantity":    5,
		"total_cents": 600000,
		"buyer_email": "buyer@example.com",
		"buyer_name":  "Buyer One",
	})
	return b
}

func doJSON(t *testing.T, router http.Handler, method, path string, body []byte) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec, out
}

func TestCreateOrder_Created(t *testing.T) {
	store, router := newTestRouter(t)

	rec, out := doJSON(t, router, http.MethodPost, "/orders", createBody())
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "Order placed successfully", out["message"])

	data := out["data"].(map[string]any)
	assert.Equal(t, "pending", data["status"])
	assert.Equal(t, 5, store.stock[testProductID])
}

func TestCreateOrder_MissingFields(t *testing.T) {
	_, router := newTestRouter(t)

	rec, out := doJSON(t, router, http.MethodPost, "/orders", []byte(`{"user_id":"u"}`))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, out["success"])
	msg := out["message"].(string)
	for _, f := range []string{"product_id", "quantity", "total_cents", "buyer_email", "buyer_name"} {
		assert.Contains(t, msg, f)
	}
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	_, router := newTestRouter(t)

	b, _ := json.Marshal(map[string]any{
		"user_id":     "user-1",
		"product_id":  "11111111-1111-4111-8111-111111111111",
		"quantity":    5,
		"total_cents": 600000,
		"buyer_email": "b@e.com",
		"buyer_name":  "B",
	})
	rec, out := doJSON(t, router, http.MethodPost, "/orders", b)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, out["success"])
}

func TestCreateOrder_MalformedProductID(t *testing.T) {
	_, router := newTestRouter(t)

	b, _ := json.Marshal(map[string]any{
		"user_id":     "user-1",
		"product_id":  "not-a-uuid",
		"quantity":    5,
		"total_cents": 600000,
		"buyer_email": "b@e.com",
		"buyer_name":  "B",
	})
	rec, out := doJSON(t, router, http.MethodPost, "/orders", b)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, out["success"])
	assert.Contains(t, out["message"].(string), "product_id")
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	_, router := newTestRouter(t)

	b, _ := json.Marshal(map[string]any{
		"user_id":     "user-1",
		"product_id":  testProductID,
		"quantity":    12,
		"total_cents": 600000,
		"buyer_email": "b@e.com",
		"buyer_name":  "B",
	})
	rec, out := doJSON(t, router, http.MethodPost, "/orders", b)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, out["message"], "insufficient stock")
}

func TestGetOrder_MalformedID(t *testing.T) {
	_, router := newTestRouter(t)

	rec, out := doJSON(t, router, http.MethodGet, "/orders/not-a-uuid", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, out["success"])
}

func TestGetOrder_NotFound(t *testing.T) {
	_, router := newTestRouter(t)

	rec, _ := doJSON(t, router, http.MethodGet, "/orders/11111111-1111-4111-8111-111111111111", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetOrder_Found(t *testing.T) {
	_, router := newTestRouter(t)
	_, created := doJSON(t, router, http.MethodPost, "/orders", createBody())
	id := created["data"].(map[string]any)["id"].(string)

	rec, out := doJSON(t, router, http.MethodGet, "/orders/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, out["data"].(map[string]any)["id"])
}

func TestUpdateStatus_InvalidLabel(t *testing.T) {
	_, router := newTestRouter(t)
	_, created := doJSON(t, router, http.MethodPost, "/orders", createBody())
	id := created["data"].(map[string]any)["id"].(string)

	rec, _ := doJSON(t, router, http.MethodPut, "/orders/"+id+"/status", []byte(`{"status":"refunded"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateStatus_StrictOrdering(t *testing.T) {
	store, router := newTestRouter(t)
	_, created := doJSON(t, router, http.MethodPost, "/orders", createBody())
	id := created["data"].(map[string]any)["id"].(string)

	// skipping straight to delivered is refused
	rec, _ := doJSON(t, router, http.MethodPut, "/orders/"+id+"/status", []byte(`{"status":"delivered"}`))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, out := doJSON(t, router, http.MethodPut, "/orders/"+id+"/status", []byte(`{"status":"approved","notes":"ok"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Order status updated successfully", out["message"])
	assert.Equal(t, orders.StatusApproved, store.byID[id].Status)
}

func TestCancel_PendingOnlyAndOnce(t *testing.T) {
	store, router := newTestRouter(t)
	_, created := doJSON(t, router, http.MethodPost, "/orders", createBody())
	id := created["data"].(map[string]any)["id"].(string)
	assert.Equal(t, 5, store.stock[testProductID])

	rec, out := doJSON(t, router, http.MethodPatch, "/orders/"+id+"/cancel", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Order cancelled successfully", out["message"])
	assert.Equal(t, 10, store.stock[testProductID])

	rec, out = doJSON(t, router, http.MethodPatch, "/orders/"+id+"/cancel", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, 10, store.stock[testProductID])
}

func TestAppendTracking(t *testing.T) {
	store, router := newTestRouter(t)
	_, created := doJSON(t, router, http.MethodPost, "/orders", createBody())
	id := created["data"].(map[string]any)["id"].(string)

	rec, out := doJSON(t, router, http.MethodPost, "/orders/"+id+"/tracking",
		[]byte(`{"status":"left warehouse","notes":"loaded"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Tracking updated successfully", out["message"])
	assert.Equal(t, orders.StatusPending, store.byID[id].Status)
	assert.Len(t, store.byID[id].Tracking, 2)
}

func TestListByUser_Envelope(t *testing.T) {
	_, router := newTestRouter(t)
	_, _ = doJSON(t, router, http.MethodPost, "/orders", createBody())

	rec, out := doJSON(t, router, http.MethodGet, "/orders/user/user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), out["count"])

	// unknown user without email fallback: empty array, not null
	rec, out = doJSON(t, router, http.MethodGet, "/orders/user/nobody", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), out["count"])
	assert.NotNil(t, out["data"])

	// fallback by email
	rec, out = doJSON(t, router, http.MethodGet, "/orders/user/nobody?email=buyer%40example.com", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), out["count"])
}

func TestListAll_Pagination(t *testing.T) {
	_, router := newTestRouter(t)
	_, _ = doJSON(t, router, http.MethodPost, "/orders", createBody())
	_, _ = doJSON(t, router, http.MethodPost, "/orders", createBody())

	rec, out := doJSON(t, router, http.MethodGet, "/orders?page=1&limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), out["total"])
	assert.Equal(t, float64(2), out["totalPages"])
	assert.Equal(t, float64(1), out["currentPage"])
}

func TestListPendingAndInProgress(t *testing.T) {
	_, router := newTestRouter(t)
	_, created := doJSON(t, router, http.MethodPost, "/orders", createBody())
	id := created["data"].(map[string]any)["id"].(string)

	rec, out := doJSON(t, router, http.MethodGet, "/orders/pending/all", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), out["count"])

	_, _ = doJSON(t, router, http.MethodPut, "/orders/"+id+"/status", []byte(`{"status":"approved"}`))

	rec, out = doJSON(t, router, http.MethodGet, "/orders/approved/all", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), out["count"])

	rec, out = doJSON(t, router, http.MethodGet, "/orders/pending/all", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), out["count"])
}

func TestErrorDetailSuppressedInProduction(t *testing.T) {
	rec := httptest.NewRecorder()
	respondErr(rec, zap.NewNop(), true, fmt.Errorf("pg: connection refused"))
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "internal server error", out["message"])
	_, exposed := out["error"]
	assert.False(t, exposed)

	rec = httptest.NewRecorder()
	respondErr(rec, zap.NewNop(), false, fmt.Errorf("pg: connection refused"))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Contains(t, out["error"], "connection refused")
}
