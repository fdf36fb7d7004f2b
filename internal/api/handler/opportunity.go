package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	mw "github.com/kiranshivaraju/chainwatch/internal/api/middleware"
	"github.com/kiranshivaraju/chainwatch/internal/api/response"
	"github.com/kiranshivaraju/chainwatch/internal/store"
	"github.com/kiranshivaraju/chainwatch/pkg/models"
)

// OpportunityStore is the slice of the store the opportunity handlers need.
type OpportunityStore interface {
	GetOpportunity(ctx context.Context, id uuid.UUID) (*models.Opportunity, error)
	ListOpportunities(ctx context.Context, filter store.OpportunityFilter) ([]*models.Opportunity, int, error)
	UpdateOpportunityStatus(ctx context.Context, id uuid.UUID, status string) error
	ListPlansForOpportunity(ctx context.Context, oppID uuid.UUID) ([]*models.MitigationPlan, error)
}

func validOpportunityStatus(s string) bool {
	switch s {
	case models.OpportunityStatusIdentified, models.OpportunityStatusEvaluating,
		models.OpportunityStatusImplementing, models.OpportunityStatusRealized,
		models.OpportunityStatusExpired:
		return true
	}
	return false
}

func NewListOpportunitiesHandler(st OpportunityStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := mw.GetTenantID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing tenant", nil)
			return
		}

		q := r.URL.Query()
		page, limit := pageQuery(r)
		filter := store.OpportunityFilter{
			TenantID: &tenantID,
			Status:   q.Get("status"),
			Type:     q.Get("type"),
			Page:     page,
			Limit:    limit,
		}

		opps, total, err := st.ListOpportunities(r.Context(), filter)
		if err != nil {
			storeError(w, err, "")
			return
		}
		response.Collection(w, opps, pagination(page, limit, total))
	}
}

func NewGetOpportunityHandler(st OpportunityStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlUUID(r, "opportunityID")
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid opportunity ID", nil)
			return
		}
		opp, err := st.GetOpportunity(r.Context(), id)
		if err != nil {
			storeError(w, err, "Opportunity not found")
			return
		}
		plans, err := st.ListPlansForOpportunity(r.Context(), id)
		if err != nil {
			storeError(w, err, "")
			return
		}
		opp.Plans = plans
		response.JSON(w, opp)
	}
}

func NewUpdateOpportunityStatusHandler(st OpportunityStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlUUID(r, "opportunityID")
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid opportunity ID", nil)
			return
		}
		var req struct {
			Status string `json:"status"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		if !validOpportunityStatus(req.Status) {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Unknown opportunity status", nil)
			return
		}
		if err := st.UpdateOpportunityStatus(r.Context(), id, req.Status); err != nil {
			storeError(w, err, "Opportunity not found")
			return
		}
		response.JSON(w, map[string]string{"id": id.String(), "status": req.Status})
	}
}
