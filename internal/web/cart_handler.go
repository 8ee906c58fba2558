package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shaxzod67/Sunnat/internal/cart"
	"github.com/shaxzod67/Sunnat/internal/pricing"
)

// CartSession is what the cart endpoints need from the shopping session.
type CartSession interface {
	AddItem(productID string, quantity int) error
	SetQuantity(productID string, quantity int) error
	RemoveItem(productID string)
	ClearCart()
	View() pricing.View
	FeedErr() error
}

type CartHandler struct {
	session CartSession
}

func NewCartHandler(session CartSession) *CartHandler {
	return &CartHandler{session: session}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartViewDTO struct {
	Lines   []pricing.PricedLine `json:"lines"`
	Total   string               `json:"total"`
	Pending bool                 `json:"pending"`
}

func cartViewDTO(view pricing.View) CartViewDTO {
	lines := view.Lines
	if lines == nil {
		lines = []pricing.PricedLine{}
	}
	return CartViewDTO{
		Lines:   lines,
		Total:   view.Total.StringFixed(2),
		Pending: view.HasPending(),
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	if err := h.session.FeedErr(); err != nil {
		respondError(w, http.StatusServiceUnavailable, "catalog_unavailable", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, cartViewDTO(h.session.View()))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 1 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	if err := h.session.AddItem(req.ProductID, req.Quantity); err != nil {
		handleCartError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, cartViewDTO(h.session.View()))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	if err := h.session.SetQuantity(productID, req.Quantity); err != nil {
		handleCartError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cartViewDTO(h.session.View()))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	h.session.RemoveItem(productID)
	respondJSON(w, http.StatusOK, cartViewDTO(h.session.View()))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.session.ClearCart()
	respondJSON(w, http.StatusOK, cartViewDTO(h.session.View()))
}

func handleCartError(w http.ResponseWriter, err error) {
	if errors.Is(err, cart.ErrInvalidQuantity) {
		respondError(w, http.StatusBadRequest, "invalid_quantity", err.Error())
		return
	}
	respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}
