package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the full route table with the global middleware stack.
func NewRouter(h *RegistrationHandler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(Logger(logger))          // structured access log
	r.Use(CORS)                    // permissive CORS for demo

	r.Get("/health", HealthCheck)

	r.Get("/", h.Index)
	r.Post("/register", h.Register)
	r.Get("/success/{id}", h.Success)
	r.Get("/participants", h.Participants)
	r.Get("/edit/{id}", h.EditForm)
	r.Post("/edit/{id}", h.EditSubmit)
	// Deletion is POST-only: a retrievable delete link can be triggered by
	// crawlers and prefetchers.
	r.Post("/delete/{id}", h.Delete)
	r.Get("/certificate/{id}", h.Certificate)

	return r
}
