package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func baseRouter(timeout time.Duration) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(timeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", health)
	return r
}

// NewStorefrontRouter wires the session API.
func NewStorefrontRouter(h *SessionHandler, timeout time.Duration) http.Handler {
	r := baseRouter(timeout)
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/session", func(r chi.Router) {
			r.Post("/", h.Start)
			r.Get("/", h.Get)
			r.Post("/events", h.Event)
		})
	})
	return r
}

// NewCatalogRouter wires the catalog backend API.
func NewCatalogRouter(h *CatalogHandler, timeout time.Duration) http.Handler {
	r := baseRouter(timeout)
	r.Get("/products", h.Products)
	r.Get("/categories", h.Categories)
	return r
}
