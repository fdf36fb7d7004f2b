package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/chainwatch/internal/api/response"
	"github.com/kiranshivaraju/chainwatch/pkg/models"
)

// TenantStore is the slice of the store the tenant handlers need.
type TenantStore interface {
	CreateTenant(ctx context.Context, t *models.Tenant) error
	GetTenant(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	ListTenants(ctx context.Context) ([]*models.Tenant, error)
	UpdateTenant(ctx context.Context, t *models.Tenant) error
	DeleteTenant(ctx context.Context, id uuid.UUID) error
}

// ScoreStore reads risk score history.
type ScoreStore interface {
	GetLatestRiskScore(ctx context.Context, tenantID uuid.UUID) (*models.RiskScore, error)
	ListRiskScores(ctx context.Context, tenantID uuid.UUID, limit int) ([]*models.RiskScore, error)
}

type tenantRequest struct {
	Name     string  `json:"name"`
	Location *string `json:"location"`
	City     *string `json:"city"`
	Country  *string `json:"country"`
	Region   *string `json:"region"`
}

func NewListTenantsHandler(st TenantStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenants, err := st.ListTenants(r.Context())
		if err != nil {
			storeError(w, err, "")
			return
		}
		response.JSON(w, tenants)
	}
}

func NewCreateTenantHandler(st TenantStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tenantRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Name == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "name is required", nil)
			return
		}

		now := time.Now().UTC()
		tenant := &models.Tenant{
			ID:        uuid.New(),
			Name:      req.Name,
			Location:  req.Location,
			City:      req.City,
			Country:   req.Country,
			Region:    req.Region,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := st.CreateTenant(r.Context(), tenant); err != nil {
			storeError(w, err, "")
			return
		}
		response.Created(w, tenant)
	}
}

func NewGetTenantHandler(st TenantStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlUUID(r, "tenantID")
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid tenant ID", nil)
			return
		}
		tenant, err := st.GetTenant(r.Context(), id)
		if err != nil {
			storeError(w, err, "Tenant not found")
			return
		}
		response.JSON(w, tenant)
	}
}

func NewUpdateTenantHandler(st TenantStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlUUID(r, "tenantID")
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid tenant ID", nil)
			return
		}
		tenant, err := st.GetTenant(r.Context(), id)
		if err != nil {
			storeError(w, err, "Tenant not found")
			return
		}

		var req tenantRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Name != "" {
			tenant.Name = req.Name
		}
		if req.Location != nil {
			tenant.Location = req.Location
		}
		if req.City != nil {
			tenant.City = req.City
		}
		if req.Country != nil {
			tenant.Country = req.Country
		}
		if req.Region != nil {
			tenant.Region = req.Region
		}
		tenant.UpdatedAt = time.Now().UTC()

		if err := st.UpdateTenant(r.Context(), tenant); err != nil {
			storeError(w, err, "Tenant not found")
			return
		}
		response.JSON(w, tenant)
	}
}

func NewDeleteTenantHandler(st TenantStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlUUID(r, "tenantID")
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid tenant ID", nil)
			return
		}
		if err := st.DeleteTenant(r.Context(), id); err != nil {
			storeError(w, err, "Tenant not found")
			return
		}
		response.NoContent(w)
	}
}

// NewLatestScoreHandler serves GET /api/v1/tenants/{tenantID}/score: the
// most recent risk score rollup, or 404 when no cycle has scored yet.
func NewLatestScoreHandler(st ScoreStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlUUID(r, "tenantID")
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid tenant ID", nil)
			return
		}
		sc, err := st.GetLatestRiskScore(r.Context(), id)
		if err != nil {
			storeError(w, err, "No risk score recorded for tenant")
			return
		}
		response.JSON(w, sc)
	}
}

// NewScoreHistoryHandler serves GET /api/v1/tenants/{tenantID}/scores,
// newest first.
func NewScoreHistoryHandler(st ScoreStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlUUID(r, "tenantID")
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid tenant ID", nil)
			return
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit <= 0 || limit > maxPageLimit {
			limit = defaultPageLimit
		}
		scores, err := st.ListRiskScores(r.Context(), id, limit)
		if err != nil {
			storeError(w, err, "")
			return
		}
		response.JSON(w, scores)
	}
}
