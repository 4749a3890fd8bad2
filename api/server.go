/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/cards/*     Cards, benefits, minimum spends
  /api/resets/*    Reset-pass queue and decisions
  /api/records     Import/export of the serialized set

SECURITY NOTE:
  No authentication middleware. The engine is a personal single-user tool;
  bind to localhost or front it with a reverse proxy.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
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

	r.Route("/api", func(r chi.Router) {
		r.Route("/cards", func(r chi.Router) {
			r.Get("/", h.ListCards)
			r.Post("/", h.CreateCard)
			r.Post("/reorder", h.ReorderCards)
			r.Get("/{id}", h.GetCard)
			r.Put("/{id}", h.UpdateCard)
			r.Delete("/{id}", h.DeleteCard)

			r.Route("/{id}/benefits", func(r chi.Router) {
				r.Post("/", h.CreateBenefit)
				r.Put("/{bid}", h.UpdateBenefit)
				r.Delete("/{bid}", h.DeleteBenefit)
				r.Put("/{bid}/usage", h.SetBenefitUsage)
				r.Post("/{bid}/earn", h.EarnCarryover)
				r.Put("/{bid}/instances/usage", h.SetInstanceUsage)

				r.Route("/{bid}/justifications", func(r chi.Router) {
					r.Post("/", h.AddJustification)
					r.Post("/{jid}/confirm", h.ConfirmJustification)
					r.Delete("/{jid}", h.RemoveJustification)
				})

				r.Route("/{bid}/instances/{idx}/justifications", func(r chi.Router) {
					r.Post("/", h.AddInstanceJustification)
					r.Post("/{jid}/confirm", h.ConfirmInstanceJustification)
					r.Delete("/{jid}", h.RemoveInstanceJustification)
				})
			})

			r.Route("/{id}/minimum-spends", func(r chi.Router) {
				r.Post("/", h.CreateMinimumSpend)
				r.Put("/{mid}/progress", h.SetMinimumSpendProgress)
				r.Delete("/{mid}", h.DeleteMinimumSpend)
			})
		})

		r.Route("/resets", func(r chi.Router) {
			r.Get("/pending", h.ListPendingResets)
			r.Post("/accept", h.AcceptResets)
			r.Post("/decline", h.DeclineResets)
			r.Post("/run", h.RunResetPass)
		})

		r.Get("/records", h.ExportRecords)
		r.Put("/records", h.ImportRecords)
	})

	return r
}
