package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/chainwatch/internal/api/response"
	"github.com/kiranshivaraju/chainwatch/internal/store"
	"github.com/kiranshivaraju/chainwatch/pkg/models"
)

// PlanStore is the slice of the store the plan handlers need.
type PlanStore interface {
	GetPlan(ctx context.Context, id uuid.UUID) (*models.MitigationPlan, error)
	ListPlans(ctx context.Context, filter store.PlanFilter) ([]*models.MitigationPlan, int, error)
	UpdatePlanStatus(ctx context.Context, id uuid.UUID, status string) error
}

func validPlanStatus(s string) bool {
	switch s {
	case models.PlanStatusDraft, models.PlanStatusApproved, models.PlanStatusInProgress,
		models.PlanStatusCompleted, models.PlanStatusCancelled:
		return true
	}
	return false
}

// NewListPlansHandler serves GET /api/v1/plans with status, risk_id,
// opportunity_id, page and limit query filters.
func NewListPlansHandler(st PlanStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page, limit := pageQuery(r)
		filter := store.PlanFilter{
			Status: q.Get("status"),
			Page:   page,
			Limit:  limit,
		}
		if raw := q.Get("risk_id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid risk_id", nil)
				return
			}
			filter.RiskID = &id
		}
		if raw := q.Get("opportunity_id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid opportunity_id", nil)
				return
			}
			filter.OpportunityID = &id
		}

		plans, total, err := st.ListPlans(r.Context(), filter)
		if err != nil {
			storeError(w, err, "")
			return
		}
		response.Collection(w, plans, pagination(page, limit, total))
	}
}

func NewGetPlanHandler(st PlanStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlUUID(r, "planID")
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid plan ID", nil)
			return
		}
		p, err := st.GetPlan(r.Context(), id)
		if err != nil {
			storeError(w, err, "Plan not found")
			return
		}
		response.JSON(w, p)
	}
}

func NewUpdatePlanStatusHandler(st PlanStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlUUID(r, "planID")
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid plan ID", nil)
			return
		}
		var req struct {
			Status string `json:"status"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		if !validPlanStatus(req.Status) {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Unknown plan status", nil)
			return
		}
		if err := st.UpdatePlanStatus(r.Context(), id, req.Status); err != nil {
			storeError(w, err, "Plan not found")
			return
		}
		response.JSON(w, map[string]string{"id": id.String(), "status": req.Status})
	}
}
