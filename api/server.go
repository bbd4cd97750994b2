/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the portal frontend

ROUTE GROUPS:
  /api/members/*        Member calendar, balance, requests
  /api/holidays/*       Holiday reference data
  /api/blocked-dates/*  Administrative date vetoes
  /api/admin/*          Grants, audit, demo seed
  /healthz              Liveness probe

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
		// Member routes
		r.Route("/members", func(r chi.Router) {
			r.Get("/", h.ListMembers)
			r.Post("/", h.CreateMember)
			r.Get("/{id}", h.GetMember)
			r.Get("/{id}/balance", h.GetBalance)
			r.Get("/{id}/calendar", h.GetMonthView)
			r.Get("/{id}/journal", h.GetJournal)
			r.Get("/{id}/requests", h.GetHistory)
			r.Post("/{id}/requests", h.SubmitRequest)
			r.Delete("/{id}/requests/{date}", h.CancelRequest)
		})

		// Holiday routes
		r.Route("/holidays", func(r chi.Router) {
			r.Get("/", h.ListHolidays)
			r.Post("/", h.CreateHoliday)
			r.Delete("/{date}", h.DeleteHoliday)
		})

		// Blocked date routes
		r.Route("/blocked-dates", func(r chi.Router) {
			r.Get("/", h.ListBlockedDates)
			r.Post("/", h.CreateBlockedDate)
			r.Delete("/{date}", h.DeleteBlockedDate)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/grants", h.CreateGrant)
			r.Post("/audit", h.RunAudit)
			r.Post("/seed", h.LoadSeed)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
