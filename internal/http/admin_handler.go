package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mimasafoods/storefront/internal/cartconfig"
	"github.com/mimasafoods/storefront/internal/catalog"
	"github.com/mimasafoods/storefront/internal/order"
)

type AdminHandler struct {
	orders   order.Repository
	products catalog.Repository
	config   cartconfig.Repository
	provider *cartconfig.Provider
}

func NewAdminHandler(orders order.Repository, products catalog.Repository, config cartconfig.Repository, provider *cartconfig.Provider) *AdminHandler {
	return &AdminHandler{orders: orders, products: products, config: config, provider: provider}
}

// ListProducts includes inactive products so the admin can see what the
// storefront is hiding.
func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	products, err := h.products.ListAll(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load products")
		return
	}
	if products == nil {
		products = []catalog.Product{}
	}

	writeJSON(w, http.StatusOK, products)
}

func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	orders, err := h.orders.List(ctx, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load orders")
		return
	}
	if orders == nil {
		orders = []order.Order{}
	}

	writeJSON(w, http.StatusOK, orders)
}

type updateStatusRequest struct {
	Status order.Status `json:"status"`
}

func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("orderId")
	if orderID == "" {
		writeError(w, http.StatusBadRequest, "missing orderId")
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if !req.Status.Valid() {
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	current, err := h.orders.GetByID(ctx, orderID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load order")
		return
	}
	if current == nil {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	if !current.Status.CanTransitionTo(req.Status) {
		writeError(w, http.StatusConflict,
			"cannot move order from "+string(current.Status)+" to "+string(req.Status))
		return
	}

	updated, err := h.orders.UpdateStatus(ctx, orderID, req.Status)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update status")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *AdminHandler) ListConfig(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	entries, err := h.config.List(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load config")
		return
	}
	if entries == nil {
		entries = []cartconfig.Entry{}
	}

	writeJSON(w, http.StatusOK, entries)
}

type putConfigRequest struct {
	Value string `json:"value"`
}

func (h *AdminHandler) PutConfig(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name != cartconfig.NameShipping && name != cartconfig.NameFreeShipping {
		writeError(w, http.StatusNotFound, "unknown config name")
		return
	}

	var req putConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if d, err := decimal.NewFromString(req.Value); err != nil || d.IsNegative() {
		writeError(w, http.StatusBadRequest, "value must be a non-negative amount")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.config.Upsert(ctx, name, req.Value); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save config")
		return
	}

	// New values take effect immediately rather than after the cache TTL.
	h.provider.Invalidate()

	w.WriteHeader(http.StatusNoContent)
}
