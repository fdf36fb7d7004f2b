package models

import (
	"time"

	"github.com/google/uuid"
)

// RiskSeverity levels in ascending order of weight.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Risk lifecycle statuses. Every risk is created in "detected"; later
// transitions are driven by the API, not by the agent.
const (
	RiskStatusDetected      = "detected"
	RiskStatusAnalyzing     = "analyzing"
	RiskStatusMitigating    = "mitigating"
	RiskStatusResolved      = "resolved"
	RiskStatusFalsePositive = "false_positive"
)

// Risk is a detected supply chain threat for a tenant.
type Risk struct {
	ID               uuid.UUID      `db:"id"                json:"id"`
	TenantID         *uuid.UUID     `db:"tenant_id"         json:"tenant_id,omitempty"`
	Title            string         `db:"title"             json:"title"`
	Description      string         `db:"description"       json:"description"`
	Severity         string         `db:"severity"          json:"severity"`
	Status           string         `db:"status"            json:"status"`
	SourceType       string         `db:"source_type"       json:"source_type"`
	SourceData       map[string]any `db:"source_data"       json:"source_data,omitempty"`
	AffectedRegion   *string        `db:"affected_region"   json:"affected_region,omitempty"`
	AffectedSupplier *string        `db:"affected_supplier" json:"affected_supplier,omitempty"`
	EstimatedImpact  *string        `db:"estimated_impact"  json:"estimated_impact,omitempty"`
	EstimatedCost    *float64       `db:"estimated_cost"    json:"estimated_cost,omitempty"`
	CreatedAt        time.Time      `db:"created_at"        json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"        json:"updated_at"`

	Plans []*MitigationPlan `db:"-" json:"mitigation_plans,omitempty"`
}

// ValidSeverity reports whether s is one of the four known severity levels.
func ValidSeverity(s string) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}
