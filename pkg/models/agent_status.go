package models

import (
	"time"

	"github.com/google/uuid"
)

// Agent run phases. "error" is reachable from any phase; the agent returns
// to "idle" on the next successful cycle.
const (
	AgentIdle       = "idle"
	AgentMonitoring = "monitoring"
	AgentAnalyzing  = "analyzing"
	AgentProcessing = "processing"
	AgentError      = "error"
)

// AgentStatus is the singleton run-status record, created lazily on first
// startup and mutated in place throughout a cycle.
type AgentStatus struct {
	ID                      uuid.UUID  `db:"id"                       json:"id"`
	Status                  string     `db:"status"                   json:"status"`
	CurrentTask             *string    `db:"current_task"             json:"current_task,omitempty"`
	ErrorMessage            *string    `db:"error_message"            json:"error_message,omitempty"`
	RisksDetected           int        `db:"risks_detected"           json:"risks_detected"`
	OpportunitiesIdentified int        `db:"opportunities_identified" json:"opportunities_identified"`
	PlansGenerated          int        `db:"plans_generated"          json:"plans_generated"`
	LastProcessedAt         *time.Time `db:"last_processed_at"        json:"last_processed_at,omitempty"`
	CreatedAt               time.Time  `db:"created_at"               json:"created_at"`
	UpdatedAt               time.Time  `db:"updated_at"               json:"updated_at"`
}
