package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	mw "github.com/kiranshivaraju/chainwatch/internal/api/middleware"
	"github.com/kiranshivaraju/chainwatch/internal/api/response"
	"github.com/kiranshivaraju/chainwatch/internal/store"
	"github.com/kiranshivaraju/chainwatch/pkg/models"
)

// RiskStore is the slice of the store the risk handlers need.
type RiskStore interface {
	GetRisk(ctx context.Context, id uuid.UUID) (*models.Risk, error)
	ListRisks(ctx context.Context, filter store.RiskFilter) ([]*models.Risk, int, error)
	UpdateRiskStatus(ctx context.Context, id uuid.UUID, status string) error
	ListPlansForRisk(ctx context.Context, riskID uuid.UUID) ([]*models.MitigationPlan, error)
}

func validRiskStatus(s string) bool {
	switch s {
	case models.RiskStatusDetected, models.RiskStatusAnalyzing, models.RiskStatusMitigating,
		models.RiskStatusResolved, models.RiskStatusFalsePositive:
		return true
	}
	return false
}

// NewListRisksHandler serves GET /api/v1/risks with status, severity,
// source_type, since, page and limit query filters.
func NewListRisksHandler(st RiskStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := mw.GetTenantID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing tenant", nil)
			return
		}

		q := r.URL.Query()
		page, limit := pageQuery(r)
		filter := store.RiskFilter{
			TenantID:   &tenantID,
			Status:     q.Get("status"),
			Severity:   q.Get("severity"),
			SourceType: q.Get("source_type"),
			Page:       page,
			Limit:      limit,
		}
		if since := q.Get("since"); since != "" {
			ts, err := time.Parse(time.RFC3339, since)
			if err != nil {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					"since must be a valid RFC3339 timestamp", nil)
				return
			}
			filter.Since = ts
		}
		if filter.Severity != "" && !models.ValidSeverity(filter.Severity) {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Unknown severity", nil)
			return
		}

		risks, total, err := st.ListRisks(r.Context(), filter)
		if err != nil {
			storeError(w, err, "")
			return
		}
		response.Collection(w, risks, pagination(page, limit, total))
	}
}

// NewGetRiskHandler serves GET /api/v1/risks/{riskID} with the risk's
// mitigation plans attached.
func NewGetRiskHandler(st RiskStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlUUID(r, "riskID")
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid risk ID", nil)
			return
		}
		risk, err := st.GetRisk(r.Context(), id)
		if err != nil {
			storeError(w, err, "Risk not found")
			return
		}
		plans, err := st.ListPlansForRisk(r.Context(), id)
		if err != nil {
			storeError(w, err, "")
			return
		}
		risk.Plans = plans
		response.JSON(w, risk)
	}
}

// NewUpdateRiskStatusHandler serves PATCH /api/v1/risks/{riskID}/status.
func NewUpdateRiskStatusHandler(st RiskStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlUUID(r, "riskID")
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid risk ID", nil)
			return
		}
		var req struct {
			Status string `json:"status"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		if !validRiskStatus(req.Status) {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Unknown risk status", nil)
			return
		}
		if err := st.UpdateRiskStatus(r.Context(), id, req.Status); err != nil {
			storeError(w, err, "Risk not found")
			return
		}
		response.JSON(w, map[string]string{"id": id.String(), "status": req.Status})
	}
}
