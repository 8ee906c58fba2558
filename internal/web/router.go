package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter assembles the storefront's HTTP surface: the shopper-facing
// catalog/cart/checkout routes and the admin product and order routes.
func NewRouter(
	products *ProductHandler,
	cartHandler *CartHandler,
	checkoutHandler *CheckoutHandler,
	ordersHandler *OrdersHandler,
	requestTimeout time.Duration,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", products.ListProducts)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
		})

		r.Post("/checkout", checkoutHandler.Submit)
		r.Get("/checkout/state", checkoutHandler.State)

		r.Route("/admin", func(r chi.Router) {
			r.Route("/products", func(r chi.Router) {
				r.Post("/", products.CreateProduct)
				r.Put("/{id}", products.UpdateProduct)
				r.Delete("/{id}", products.DeleteProduct)
			})
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", ordersHandler.ListOrders)
				r.Delete("/{id}", ordersHandler.DeleteOrder)
			})
		})
	})

	return r
}
