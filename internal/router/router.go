package router

import (
	"net/http"

	"ordersvc/internal/handler"
	"ordersvc/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	orderHandler *handler.OrderHandler,
	statusHandler *handler.StatusHandler,
	lineItemHandler *handler.LineItemHandler,
	jwtSecret string,
	logger zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)

	// Health check endpoint (no authentication required)
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	r.Route("/api/orders", func(r chi.Router) {
		r.Use(middleware.Auth(jwtSecret, logger))

		r.Post("/", orderHandler.Create)
		r.Get("/", orderHandler.List)

		// Fixed segments are registered before the {id} routes so "stats"
		// never parses as an order id.
		r.Get("/stats", statusHandler.Stats)
		r.Get("/status-stats", statusHandler.StatusStats)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", orderHandler.GetByID)
			r.Put("/", orderHandler.Update)
			r.Delete("/", orderHandler.Delete)

			r.Put("/status", statusHandler.Transition)
			r.Post("/cancel", statusHandler.Cancel)
			r.Get("/status-history", statusHandler.History)

			r.Get("/products", lineItemHandler.List)
			r.Post("/products", lineItemHandler.Add)
			r.Put("/products/{productID}", lineItemHandler.Update)
			r.Delete("/products/{productID}", lineItemHandler.Remove)
		})
	})

	return r
}
