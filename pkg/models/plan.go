package models

import (
	"time"

	"github.com/google/uuid"
)

// Mitigation plan statuses. Auto-generated plans start in "draft".
const (
	PlanStatusDraft      = "draft"
	PlanStatusApproved   = "approved"
	PlanStatusInProgress = "in_progress"
	PlanStatusCompleted  = "completed"
	PlanStatusCancelled  = "cancelled"
)

// MitigationPlan is an actionable response to a risk or an opportunity.
// RiskID and OpportunityID are mutually exclusive in practice, though the
// store does not enforce that as a hard constraint.
type MitigationPlan struct {
	ID            uuid.UUID      `db:"id"             json:"id"`
	Title         string         `db:"title"          json:"title"`
	Description   string         `db:"description"    json:"description"`
	Actions       []string       `db:"actions"        json:"actions"`
	Status        string         `db:"status"         json:"status"`
	RiskID        *uuid.UUID     `db:"risk_id"        json:"risk_id,omitempty"`
	OpportunityID *uuid.UUID     `db:"opportunity_id" json:"opportunity_id,omitempty"`
	Metadata      map[string]any `db:"metadata"       json:"metadata,omitempty"`
	AssignedTo    *string        `db:"assigned_to"    json:"assigned_to,omitempty"`
	DueDate       *time.Time     `db:"due_date"       json:"due_date,omitempty"`
	CreatedAt     time.Time      `db:"created_at"     json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"     json:"updated_at"`
}
