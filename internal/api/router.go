package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	mw "github.com/kiranshivaraju/chainwatch/internal/api/middleware"
	"github.com/kiranshivaraju/chainwatch/internal/api/response"
	"github.com/kiranshivaraju/chainwatch/internal/metrics"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth      *mw.Auth
	RateLimit *mw.RateLimit

	HealthHandler http.HandlerFunc

	AgentTrigger http.HandlerFunc
	AgentStatus  http.HandlerFunc

	ListTenants  http.HandlerFunc
	CreateTenant http.HandlerFunc
	GetTenant    http.HandlerFunc
	UpdateTenant http.HandlerFunc
	DeleteTenant http.HandlerFunc
	LatestScore  http.HandlerFunc
	ScoreHistory http.HandlerFunc

	ListSuppliers   http.HandlerFunc
	CreateSupplier  http.HandlerFunc
	ImportSuppliers http.HandlerFunc
	GetSupplier     http.HandlerFunc
	UpdateSupplier  http.HandlerFunc
	DeleteSupplier  http.HandlerFunc

	ListRisks        http.HandlerFunc
	GetRisk          http.HandlerFunc
	UpdateRiskStatus http.HandlerFunc

	ListOpportunities       http.HandlerFunc
	GetOpportunity          http.HandlerFunc
	UpdateOpportunityStatus http.HandlerFunc

	ListPlans        http.HandlerFunc
	GetPlan          http.HandlerFunc
	UpdatePlanStatus http.HandlerFunc

	CreateKeyHandler http.HandlerFunc
	ListKeysHandler  http.HandlerFunc
	RevokeKeyHandler http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Public endpoints
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))
	r.Handle("/metrics", metrics.Handler())

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(deps.RateLimit.Limit)

		r.Post("/api/v1/agent/trigger", orNotImplemented(deps.AgentTrigger))
		r.Get("/api/v1/agent/status", orNotImplemented(deps.AgentStatus))

		r.Get("/api/v1/tenants", orNotImplemented(deps.ListTenants))
		r.Post("/api/v1/tenants", orNotImplemented(deps.CreateTenant))
		r.Get("/api/v1/tenants/{tenantID}", orNotImplemented(deps.GetTenant))
		r.Put("/api/v1/tenants/{tenantID}", orNotImplemented(deps.UpdateTenant))
		r.Delete("/api/v1/tenants/{tenantID}", orNotImplemented(deps.DeleteTenant))
		r.Get("/api/v1/tenants/{tenantID}/score", orNotImplemented(deps.LatestScore))
		r.Get("/api/v1/tenants/{tenantID}/scores", orNotImplemented(deps.ScoreHistory))

		r.Get("/api/v1/suppliers", orNotImplemented(deps.ListSuppliers))
		r.Post("/api/v1/suppliers", orNotImplemented(deps.CreateSupplier))
		r.Post("/api/v1/suppliers/import", orNotImplemented(deps.ImportSuppliers))
		r.Get("/api/v1/suppliers/{supplierID}", orNotImplemented(deps.GetSupplier))
		r.Put("/api/v1/suppliers/{supplierID}", orNotImplemented(deps.UpdateSupplier))
		r.Delete("/api/v1/suppliers/{supplierID}", orNotImplemented(deps.DeleteSupplier))

		r.Get("/api/v1/risks", orNotImplemented(deps.ListRisks))
		r.Get("/api/v1/risks/{riskID}", orNotImplemented(deps.GetRisk))
		r.Patch("/api/v1/risks/{riskID}/status", orNotImplemented(deps.UpdateRiskStatus))

		r.Get("/api/v1/opportunities", orNotImplemented(deps.ListOpportunities))
		r.Get("/api/v1/opportunities/{opportunityID}", orNotImplemented(deps.GetOpportunity))
		r.Patch("/api/v1/opportunities/{opportunityID}/status", orNotImplemented(deps.UpdateOpportunityStatus))

		r.Get("/api/v1/plans", orNotImplemented(deps.ListPlans))
		r.Get("/api/v1/plans/{planID}", orNotImplemented(deps.GetPlan))
		r.Patch("/api/v1/plans/{planID}/status", orNotImplemented(deps.UpdatePlanStatus))

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireScope("admin"))

			r.Post("/api/v1/admin/keys", orNotImplemented(deps.CreateKeyHandler))
			r.Get("/api/v1/admin/keys", orNotImplemented(deps.ListKeysHandler))
			r.Delete("/api/v1/admin/keys/{keyID}", orNotImplemented(deps.RevokeKeyHandler))
		})
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
