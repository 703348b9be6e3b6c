/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions. This
  is the wiring layer that connects URLs to handlers; all state access goes
  through the Handler's Ledger.

MIDDLEWARE STACK:
  1. RequestID:     Unique ID per request for tracing
  2. RequestLogger: Structured request logging (zerolog)
  3. Recoverer:     Panic recovery (500 instead of crash)
  4. CORS:          Cross-origin requests for the dashboard frontend

ROUTE GROUPS:
  /api/agents/*       Agent directory, payments, deletion cascade
  /api/admins/*       Admin directory
  /api/leads/*        Lead CRUD, status, cost, assignment
  /api/lead-orders/*  Lead requests and fulfillment
  /api/reports/*      Derived reporting (dashboard, agents, statuses)
  /api/settings/*     Default lead cost
  /api/import/*       Sheet preview and commit

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

// NewRouter creates a router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger(h.Log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/agents", func(r chi.Router) {
			r.Get("/", h.ListAgents)
			r.Post("/", h.CreateAgent)
			r.Delete("/{id}", h.DeleteAgent)
			r.Post("/{id}/payments", h.MarkAgentPaid)
		})

		r.Route("/admins", func(r chi.Router) {
			r.Get("/", h.ListAdmins)
			r.Post("/", h.CreateAdmin)
		})

		r.Route("/leads", func(r chi.Router) {
			r.Get("/", h.ListLeads)
			r.Post("/", h.CreateLead)
			r.Post("/bulk-assign", h.BulkAssignLeads)
			r.Delete("/{id}", h.DeleteLead)
			r.Put("/{id}/phone", h.UpdateLeadPhone)
			r.Put("/{id}/status", h.UpdateLeadStatus)
			r.Put("/{id}/converted-amount", h.UpdateLeadConvertedAmount)
			r.Put("/{id}/cost", h.UpdateLeadCost)
			r.Post("/{id}/assign", h.AssignLead)
		})

		r.Route("/lead-orders", func(r chi.Router) {
			r.Get("/", h.ListLeadOrders)
			r.Post("/", h.CreateLeadOrder)
			r.Post("/decrement", h.DecrementLeadOrders)
			r.Post("/{id}/decrement", h.DecrementLeadOrder)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/dashboard", h.DashboardReport)
			r.Get("/agents", h.AgentsReport)
			r.Get("/statuses", h.StatusReport)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/default-lead-cost", h.GetDefaultLeadCost)
			r.Put("/default-lead-cost", h.SetDefaultLeadCost)
		})

		r.Route("/import", func(r chi.Router) {
			r.Post("/preview", h.ImportPreview)
			r.Post("/commit", h.ImportCommit)
		})
	})

	return r
}
