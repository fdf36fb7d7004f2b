package models

import (
	"time"

	"github.com/google/uuid"
)

// RiskScore is an append-only point-in-time rollup of a tenant's detected
// risks. The current score is the most recent row by CreatedAt.
type RiskScore struct {
	ID             uuid.UUID          `db:"id"              json:"id"`
	TenantID       uuid.UUID          `db:"tenant_id"       json:"tenant_id"`
	OverallScore   float64            `db:"overall_score"   json:"overall_score"`
	Breakdown      map[string]float64 `db:"breakdown"       json:"breakdown"`
	SeverityCounts map[string]int     `db:"severity_counts" json:"severity_counts"`
	RiskIDs        []uuid.UUID        `db:"risk_ids"        json:"risk_ids"`
	CreatedAt      time.Time          `db:"created_at"      json:"created_at"`
}
