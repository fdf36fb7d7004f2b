package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/chainwatch/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	CreateTenant(ctx context.Context, tenant *models.Tenant) error
	GetTenant(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	GetDefaultTenant(ctx context.Context) (*models.Tenant, error)
	ListTenants(ctx context.Context) ([]*models.Tenant, error)
	UpdateTenant(ctx context.Context, tenant *models.Tenant) error
	DeleteTenant(ctx context.Context, id uuid.UUID) error

	CreateSupplier(ctx context.Context, supplier *models.Supplier) error
	GetSupplier(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*models.Supplier, error)
	ListSuppliers(ctx context.Context, tenantID uuid.UUID) ([]*models.Supplier, error)
	UpdateSupplier(ctx context.Context, supplier *models.Supplier) error
	DeleteSupplier(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error
	UpdateSupplierScore(ctx context.Context, id uuid.UUID, score *float64, level *string) error

	GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	ListAPIKeys(ctx context.Context, tenantID uuid.UUID) ([]*models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error

	CreateRisk(ctx context.Context, risk *models.Risk) error
	GetRisk(ctx context.Context, id uuid.UUID) (*models.Risk, error)
	ListRisks(ctx context.Context, filter RiskFilter) ([]*models.Risk, int, error)
	ListDetectedRisks(ctx context.Context, tenantID uuid.UUID) ([]*models.Risk, error)
	UpdateRiskStatus(ctx context.Context, id uuid.UUID, status string) error

	CreateOpportunity(ctx context.Context, opp *models.Opportunity) error
	GetOpportunity(ctx context.Context, id uuid.UUID) (*models.Opportunity, error)
	ListOpportunities(ctx context.Context, filter OpportunityFilter) ([]*models.Opportunity, int, error)
	ListIdentifiedOpportunities(ctx context.Context, tenantID uuid.UUID) ([]*models.Opportunity, error)
	UpdateOpportunityStatus(ctx context.Context, id uuid.UUID, status string) error

	CreatePlan(ctx context.Context, plan *models.MitigationPlan) error
	GetPlan(ctx context.Context, id uuid.UUID) (*models.MitigationPlan, error)
	ListPlans(ctx context.Context, filter PlanFilter) ([]*models.MitigationPlan, int, error)
	ListPlansForRisk(ctx context.Context, riskID uuid.UUID) ([]*models.MitigationPlan, error)
	ListPlansForOpportunity(ctx context.Context, opportunityID uuid.UUID) ([]*models.MitigationPlan, error)
	UpdatePlanStatus(ctx context.Context, id uuid.UUID, status string) error

	CreateRiskScore(ctx context.Context, score *models.RiskScore) error
	GetLatestRiskScore(ctx context.Context, tenantID uuid.UUID) (*models.RiskScore, error)
	ListRiskScores(ctx context.Context, tenantID uuid.UUID, limit int) ([]*models.RiskScore, error)

	GetAgentStatus(ctx context.Context) (*models.AgentStatus, error)
	UpdateAgentStatus(ctx context.Context, status string, opts ...AgentStatusOption) error
}

type RiskFilter struct {
	TenantID   *uuid.UUID
	Status     string
	Severity   string
	SourceType string
	Since      time.Time
	Page       int
	Limit      int
}

type OpportunityFilter struct {
	TenantID *uuid.UUID
	Status   string
	Type     string
	Page     int
	Limit    int
}

type PlanFilter struct {
	Status        string
	RiskID        *uuid.UUID
	OpportunityID *uuid.UUID
	Page          int
	Limit         int
}

// AgentCounters are the per-lifetime totals carried on the status record.
type AgentCounters struct {
	Risks         int
	Opportunities int
	Plans         int
}

type agentStatusParams struct {
	CurrentTask     *string
	ErrorMessage    *string
	Counters        *AgentCounters
	LastProcessedAt *time.Time
}

type AgentStatusOption func(*agentStatusParams)

// WithCurrentTask sets the human-readable task breadcrumb. Updates without
// this option clear the previous task.
func WithCurrentTask(task string) AgentStatusOption {
	return func(p *agentStatusParams) {
		p.CurrentTask = &task
	}
}

// WithAgentError records the failure message. Updates without this option
// clear any previous error.
func WithAgentError(msg string) AgentStatusOption {
	return func(p *agentStatusParams) {
		p.ErrorMessage = &msg
	}
}

func WithCounters(c AgentCounters) AgentStatusOption {
	return func(p *agentStatusParams) {
		p.Counters = &c
	}
}

func WithLastProcessedAt(t time.Time) AgentStatusOption {
	return func(p *agentStatusParams) {
		p.LastProcessedAt = &t
	}
}
