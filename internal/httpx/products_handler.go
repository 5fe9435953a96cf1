package httpx

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/garmenttrack/go-order-tracker/internal/catalog"
	"github.com/garmenttrack/go-order-tracker/internal/orders"
)

// ProductsHandler exposes the read-only catalog surface. Catalog mutation
// stays outside this service; stock moves only through the order lifecycle.
type ProductsHandler struct {
	Repo       *catalog.Repo
	Log        *zap.Logger
	Production bool
}

func (h *ProductsHandler) Register(r *chi.Mux) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/homepage", h.homepage)
		r.Get("/{id}", h.get)
	})
}

func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := atoiDefault(q.Get("page"), 1)
	limit := atoiDefault(q.Get("limit"), 10)

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	out, total, err := h.Repo.List(ctx, page, limit)
	if err != nil {
		respondErr(w, h.Log, h.Production, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    out,
		"pagination": map[string]any{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": (total + limit - 1) / limit,
		},
	})
}

func (h *ProductsHandler) homepage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	out, err := h.Repo.Homepage(ctx)
	if err != nil {
		respondErr(w, h.Log, h.Production, err)
		return
	}
	if out == nil {
		out = []catalog.Product{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": out})
}

func (h *ProductsHandler) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		respondErr(w, h.Log, h.Production, orders.Invalid("invalid product id format", "id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Repo.GetByID(ctx, id)
	if errors.Is(err, catalog.ErrProductNotFound) {
		respondErr(w, h.Log, h.Production, orders.NotFound("product"))
		return
	}
	if err != nil {
		respondErr(w, h.Log, h.Production, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": p})
}
