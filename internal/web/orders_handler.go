package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shaxzod67/Sunnat/internal/domain"
	"github.com/shaxzod67/Sunnat/internal/orders"
)

// OrderStore is the admin registry surface: list and delete only, no
// reconciliation.
type OrderStore interface {
	ListOrders(ctx context.Context) ([]domain.Order, error)
	DeleteOrder(ctx context.Context, id string) error
}

type OrdersHandler struct {
	store OrderStore
}

func NewOrdersHandler(store OrderStore) *OrdersHandler {
	return &OrdersHandler{store: store}
}

func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListOrders(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list orders")
		return
	}
	if list == nil {
		list = []domain.Order{}
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *OrdersHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "id is required")
		return
	}

	if err := h.store.DeleteOrder(r.Context(), id); err != nil {
		if errors.Is(err, orders.ErrOrderNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "order not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to delete order")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
