package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/garmenttrack/go-order-tracker/internal/orders"
	"github.com/garmenttrack/go-order-tracker/internal/redisx"
)

type OrdersHandler struct {
	Service    *orders.Service
	Cache      *redis.Client // optional
	Log        *zap.Logger
	Production bool
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.listAll)
		r.Get("/pending/all", h.listPending)
		r.Get("/approved/all", h.listInProgress)
		r.Get("/user/{userId}", h.listByUser)
		r.Get("/email/{email}", h.listByEmail)
		r.Get("/{orderId}", h.get)
		r.Put("/{orderId}/status", h.updateStatus)
		r.Patch("/{orderId}/cancel", h.cancel)
		r.Post("/{orderId}/tracking", h.appendTracking)
	})
}

func (h *OrdersHandler) err(w http.ResponseWriter, err error) {
	respondErr(w, h.Log, h.Production, err)
}

// orderID validates the path parameter before any storage round trip.
func orderID(r *http.Request) (string, error) {
	id := chi.URLParam(r, "orderId")
	if _, err := uuid.Parse(id); err != nil {
		return "", orders.Invalid("invalid order id", "order_id")
	}
	return id, nil
}

func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	var in orders.CreateOrderInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.err(w, orders.Invalid("invalid json body"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Service.Create(ctx, &in)
	if err != nil {
		h.err(w, err)
		return
	}

	h.cacheSet(ctx, o)
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Order placed successfully",
		"data":    o,
	})
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		h.err(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if o, ok := h.cacheGet(ctx, id); ok {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": o})
		return
	}

	o, err := h.Service.Get(ctx, id)
	if err != nil {
		h.err(w, err)
		return
	}
	h.cacheSet(ctx, o)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": o})
}

func (h *OrdersHandler) listByUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	out, err := h.Service.ListByUser(ctx, chi.URLParam(r, "userId"), r.URL.Query().Get("email"))
	if err != nil {
		h.err(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "count": len(out), "data": orderList(out)})
}

func (h *OrdersHandler) listByEmail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	out, err := h.Service.ListByEmail(ctx, chi.URLParam(r, "email"))
	if err != nil {
		h.err(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "count": len(out), "data": orderList(out)})
}

func (h *OrdersHandler) listAll(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := orders.ListFilter{
		Status: orders.Status(q.Get("status")),
		Search: q.Get("search"),
		Page:   atoiDefault(q.Get("page"), 1),
		Limit:  atoiDefault(q.Get("limit"), 10),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	out, total, err := h.Service.List(ctx, f)
	if err != nil {
		h.err(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"count":       len(out),
		"total":       total,
		"totalPages":  f.Pages(total),
		"currentPage": f.Page,
		"data":        orderList(out),
	})
}

func (h *OrdersHandler) listPending(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	out, err := h.Service.ListPending(ctx)
	if err != nil {
		h.err(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "count": len(out), "data": orderList(out)})
}

func (h *OrdersHandler) listInProgress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	out, err := h.Service.ListInProgress(ctx)
	if err != nil {
		h.err(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "count": len(out), "data": orderList(out)})
}

type statusUpdateReq struct {
	Status   orders.Status `json:"status"`
	Notes    string        `json:"notes"`
	Location string        `json:"location"`
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		h.err(w, err)
		return
	}
	var req statusUpdateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.err(w, orders.Invalid("invalid json body"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Service.UpdateStatus(ctx, id, req.Status, req.Notes, req.Location); err != nil {
		h.err(w, err)
		return
	}
	h.cacheDrop(ctx, id)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Order status updated successfully"})
}

func (h *OrdersHandler) cancel(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		h.err(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Service.Cancel(ctx, id); err != nil {
		h.err(w, err)
		return
	}
	h.cacheDrop(ctx, id)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Order cancelled successfully"})
}

func (h *OrdersHandler) appendTracking(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		h.err(w, err)
		return
	}
	var req statusUpdateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.err(w, orders.Invalid("invalid json body"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Service.AppendTracking(ctx, id, req.Status, req.Notes, req.Location); err != nil {
		h.err(w, err)
		return
	}
	h.cacheDrop(ctx, id)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Tracking updated successfully"})
}

// orderList keeps empty results as [] rather than null on the wire.
func orderList(out []orders.Order) []orders.Order {
	if out == nil {
		return []orders.Order{}
	}
	return out
}

func atoiDefault(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil || i < 1 {
		return def
	}
	return i
}

// Cache helpers: best effort, the store stays the source of truth.

func (h *OrdersHandler) cacheGet(ctx context.Context, id string) (*orders.Order, bool) {
	if h.Cache == nil {
		return nil, false
	}
	s, err := h.Cache.Get(ctx, fmt.Sprintf(redisx.KeyOrder, id)).Result()
	if err != nil || s == "" {
		return nil, false
	}
	var o orders.Order
	if err := json.Unmarshal([]byte(s), &o); err != nil {
		return nil, false
	}
	return &o, true
}

func (h *OrdersHandler) cacheSet(ctx context.Context, o *orders.Order) {
	if h.Cache == nil {
		return
	}
	b, err := json.Marshal(o)
	if err != nil {
		return
	}
	_ = h.Cache.Set(ctx, fmt.Sprintf(redisx.KeyOrder, o.ID), b, redisx.TTLOrderCache).Err()
}

func (h *OrdersHandler) cacheDrop(ctx context.Context, id string) {
	if h.Cache == nil {
		return
	}
	_ = h.Cache.Del(ctx, fmt.Sprintf(redisx.KeyOrder, id)).Err()
}
