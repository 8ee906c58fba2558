package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/shaxzod67/Sunnat/internal/catalog"
	"github.com/shaxzod67/Sunnat/internal/domain"
)

// CatalogStore is what the product endpoints need from the catalog
// repository. The listing endpoint reads through it; the admin editor writes.
type CatalogStore interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	InsertProduct(ctx context.Context, p domain.Product) (string, error)
	UpdateProduct(ctx context.Context, p domain.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

type ProductHandler struct {
	store CatalogStore
}

func NewProductHandler(store CatalogStore) *ProductHandler {
	return &ProductHandler{store: store}
}

type ProductRequestDTO struct {
	Category    string  `json:"category"`
	Description string  `json:"description"`
	ImageURL    string  `json:"img"`
	Price       float64 `json:"price"`
}

func (req ProductRequestDTO) validate() (string, bool) {
	if req.Category == "" {
		return "category is required", false
	}
	if req.Description == "" {
		return "description is required", false
	}
	if req.ImageURL == "" {
		return "img is required", false
	}
	if req.Price < 0 {
		return "price must not be negative", false
	}
	return "", true
}

func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.ListProducts(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list products")
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if msg, ok := req.validate(); !ok {
		respondError(w, http.StatusBadRequest, "invalid_product", msg)
		return
	}

	id, err := h.store.InsertProduct(r.Context(), domain.Product{
		Category:    req.Category,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Price:       decimal.NewFromFloat(req.Price),
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to create product")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "id is required")
		return
	}

	var req ProductRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if msg, ok := req.validate(); !ok {
		respondError(w, http.StatusBadRequest, "invalid_product", msg)
		return
	}

	err := h.store.UpdateProduct(r.Context(), domain.Product{
		ID:          id,
		Category:    req.Category,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Price:       decimal.NewFromFloat(req.Price),
	})
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "product not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to update product")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "id is required")
		return
	}

	if err := h.store.DeleteProduct(r.Context(), id); err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "product not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to delete product")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
