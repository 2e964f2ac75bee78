/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the dashboard frontend

ROUTE GROUPS:
  /api/movements/*           Movement workflows (create, complete, cancel, correct)
  /api/transactions          Raw ledger access
  /api/balances/*            Derived balance positions
  /api/rentals/aging         Aging and rental accrual report
  /api/stock/*               Stock snapshot and depletion forecasts
  /api/kpis                  Dashboard aggregates
  /api/audit/discrepancies   Ledger vs snapshot consistency
  /api/partners/*            Partner configuration
  /api/demo/seed             Demo dataset (dev only)

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
		// Movement workflows
		r.Route("/movements", func(r chi.Router) {
			r.Post("/", h.CreateMovement)
			r.Post("/{id}/complete", h.CompleteMovement)
			r.Post("/{id}/cancel", h.CancelMovement)
			r.Post("/{id}/correct", h.CorrectMovement)
		})

		// Raw ledger
		r.Get("/transactions", h.ListTransactions)

		// Derived read models
		r.Get("/balances/{entity}", h.GetBalances)
		r.Get("/rentals/aging", h.GetAgingSummary)

		// Stock
		r.Route("/stock", func(r chi.Router) {
			r.Get("/", h.GetStock)
			r.Get("/predictions", h.GetPredictions)
		})

		// Aggregates and audit
		r.Get("/kpis", h.GetKPIs)
		r.Get("/audit/discrepancies", h.GetDiscrepancies)

		// Partner configuration
		r.Route("/partners", func(r chi.Router) {
			r.Get("/", h.ListPartners)
			r.Post("/", h.CreatePartner)
		})

		// Demo data
		r.Post("/demo/seed", h.SeedDemo)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Pallet Engine</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Pallet Engine API</h1>
<ul>
<li><a href="/api/transactions">/api/transactions</a> - Movement log</li>
<li><a href="/api/rentals/aging">/api/rentals/aging</a> - Aging and rental report</li>
<li><a href="/api/stock">/api/stock</a> - Stock snapshot</li>
<li><a href="/api/stock/predictions">/api/stock/predictions</a> - Depletion forecasts</li>
<li><a href="/api/kpis">/api/kpis</a> - Dashboard aggregates</li>
<li><a href="/api/audit/discrepancies">/api/audit/discrepancies</a> - Consistency audit</li>
<li><a href="/api/partners">/api/partners</a> - Partner configuration</li>
</ul>
</body>
</html>`))
	})

	return r
}
