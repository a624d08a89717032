/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/invoices/*    Invoice drafting and lifecycle
  /api/work/*        Recurring work definitions and period resolution
  /api/sequences/*   Identifier sequences
  /api/health        Liveness probe

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Invoice routes
		r.Route("/invoices", func(r chi.Router) {
			r.Post("/preview", h.PreviewTotals)
			r.Get("/", h.ListInvoices)
			r.Post("/", h.CreateInvoice)
			r.Get("/{id}", h.GetInvoice)
			r.Put("/{id}/lines", h.UpdateInvoiceLines)
			r.Post("/{id}/issue", h.IssueInvoice)
			r.Post("/{id}/paid", h.MarkInvoicePaid)
			r.Post("/{id}/void", h.VoidInvoice)
		})

		// Work definition routes
		r.Route("/work", func(r chi.Router) {
			r.Get("/", h.ListWork)
			r.Post("/", h.CreateWork)
			r.Get("/{id}", h.GetWork)
			r.Get("/{id}/period", h.ResolveWorkPeriod)
			r.Get("/{id}/occurrences", h.ListWorkOccurrences)
			r.Post("/{id}/invoice", h.DraftWorkInvoice)
		})

		// Sequence routes
		r.Route("/sequences", func(r chi.Router) {
			r.Get("/", h.ListSequences)
			r.Put("/{key}", h.PutSequence)
			r.Post("/{key}/next", h.IssueFromSequence)
		})

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
	})

	return r
}
