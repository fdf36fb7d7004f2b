package models

import (
	"time"

	"github.com/google/uuid"
)

// Opportunity types.
const (
	OpportunityCostSaving          = "cost_saving"
	OpportunityTimeSaving          = "time_saving"
	OpportunityQualityImprovement  = "quality_improvement"
	OpportunityMarketExpansion     = "market_expansion"
	OpportunitySupplierDiversified = "supplier_diversification"
)

// Opportunity lifecycle statuses. Every opportunity is created in "identified".
const (
	OpportunityStatusIdentified   = "identified"
	OpportunityStatusEvaluating   = "evaluating"
	OpportunityStatusImplementing = "implementing"
	OpportunityStatusRealized     = "realized"
	OpportunityStatusExpired      = "expired"
)

// Opportunity mirrors Risk for positive signals (cost savings, diversification).
type Opportunity struct {
	ID               uuid.UUID      `db:"id"                json:"id"`
	TenantID         *uuid.UUID     `db:"tenant_id"         json:"tenant_id,omitempty"`
	Title            string         `db:"title"             json:"title"`
	Description      string         `db:"description"       json:"description"`
	Type             string         `db:"type"              json:"type"`
	Status           string         `db:"status"            json:"status"`
	SourceType       string         `db:"source_type"       json:"source_type"`
	SourceData       map[string]any `db:"source_data"       json:"source_data,omitempty"`
	AffectedRegion   *string        `db:"affected_region"   json:"affected_region,omitempty"`
	PotentialBenefit *string        `db:"potential_benefit" json:"potential_benefit,omitempty"`
	EstimatedValue   *float64       `db:"estimated_value"   json:"estimated_value,omitempty"`
	CreatedAt        time.Time      `db:"created_at"        json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"        json:"updated_at"`

	Plans []*MitigationPlan `db:"-" json:"mitigation_plans,omitempty"`
}
