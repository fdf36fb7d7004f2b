package agent

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/chainwatch/internal/store"
	"github.com/kiranshivaraju/chainwatch/pkg/models"
)

// memStore is an in-memory store.Store for coordinator tests. Agent status
// option semantics are exercised by the store integration tests; here only
// the status string and error calls are tracked.
type memStore struct {
	mu sync.Mutex

	tenants   []*models.Tenant
	suppliers map[uuid.UUID][]*models.Supplier
	risks     []*models.Risk
	opps      []*models.Opportunity
	plans     []*models.MitigationPlan
	scores    []*models.RiskScore

	status        string
	statusHistory []string

	failListSuppliers error
	failCreateRisk    error
}

func newMemStore() *memStore {
	return &memStore{
		suppliers: make(map[uuid.UUID][]*models.Supplier),
		status:    models.AgentIdle,
	}
}

func (m *memStore) Ping(_ context.Context) error { return nil }

// --- tenants ---

func (m *memStore) CreateTenant(_ context.Context, t *models.Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tenants = append(m.tenants, t)
	return nil
}

func (m *memStore) GetTenant(_ context.Context, id uuid.UUID) (*models.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tenants {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) GetDefaultTenant(_ context.Context) (*models.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tenants {
		if t.Name == "default" {
			return t, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) ListTenants(_ context.Context) ([]*models.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.Tenant{}, m.tenants...), nil
}

func (m *memStore) UpdateTenant(_ context.Context, _ *models.Tenant) error { return nil }
func (m *memStore) DeleteTenant(_ context.Context, _ uuid.UUID) error      { return nil }

// --- suppliers ---

func (m *memStore) CreateSupplier(_ context.Context, sp *models.Supplier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.suppliers[sp.TenantID] = append(m.suppliers[sp.TenantID], sp)
	return nil
}

func (m *memStore) GetSupplier(_ context.Context, id uuid.UUID, tenantID uuid.UUID) (*models.Supplier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sp := range m.suppliers[tenantID] {
		if sp.ID == id {
			return sp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) ListSuppliers(_ context.Context, tenantID uuid.UUID) ([]*models.Supplier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failListSuppliers != nil {
		return nil, m.failListSuppliers
	}
	return append([]*models.Supplier{}, m.suppliers[tenantID]...), nil
}

func (m *memStore) UpdateSupplier(_ context.Context, _ *models.Supplier) error        { return nil }
func (m *memStore) DeleteSupplier(_ context.Context, _ uuid.UUID, _ uuid.UUID) error { return nil }

func (m *memStore) UpdateSupplierScore(_ context.Context, id uuid.UUID, score *float64, level *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sps := range m.suppliers {
		for _, sp := range sps {
			if sp.ID == id {
				sp.LatestRiskScore = score
				sp.LatestRiskLevel = level
				return nil
			}
		}
	}
	return store.ErrNotFound
}

// --- api keys ---

func (m *memStore) GetAPIKeyByPrefix(_ context.Context, _ string) ([]*models.APIKey, error) {
	return nil, nil
}
func (m *memStore) UpdateAPIKeyLastUsed(_ context.Context, _ uuid.UUID) error { return nil }
func (m *memStore) CreateAPIKey(_ context.Context, _ *models.APIKey) error    { return nil }
func (m *memStore) ListAPIKeys(_ context.Context, _ uuid.UUID) ([]*models.APIKey, error) {
	return nil, nil
}
func (m *memStore) RevokeAPIKey(_ context.Context, _ uuid.UUID, _ uuid.UUID) error { return nil }

// --- risks ---

func (m *memStore) CreateRisk(_ context.Context, r *models.Risk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreateRisk != nil {
		return m.failCreateRisk
	}
	m.risks = append(m.risks, r)
	return nil
}

func (m *memStore) GetRisk(_ context.Context, id uuid.UUID) (*models.Risk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.risks {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) ListRisks(_ context.Context, filter store.RiskFilter) ([]*models.Risk, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Risk
	for _, r := range m.risks {
		if filter.TenantID != nil && (r.TenantID == nil || *r.TenantID != *filter.TenantID) {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.SourceType != "" && r.SourceType != filter.SourceType {
			continue
		}
		out = append(out, r)
	}
	return out, len(out), nil
}

func (m *memStore) ListDetectedRisks(_ context.Context, tenantID uuid.UUID) ([]*models.Risk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Risk
	for _, r := range m.risks {
		if r.Status != models.RiskStatusDetected {
			continue
		}
		if r.TenantID == nil || *r.TenantID != tenantID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *memStore) UpdateRiskStatus(_ context.Context, id uuid.UUID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.risks {
		if r.ID == id {
			r.Status = status
			return nil
		}
	}
	return store.ErrNotFound
}

// --- opportunities ---

func (m *memStore) CreateOpportunity(_ context.Context, o *models.Opportunity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opps = append(m.opps, o)
	return nil
}

func (m *memStore) GetOpportunity(_ context.Context, id uuid.UUID) (*models.Opportunity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.opps {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) ListOpportunities(_ context.Context, filter store.OpportunityFilter) ([]*models.Opportunity, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Opportunity
	for _, o := range m.opps {
		if filter.TenantID != nil && (o.TenantID == nil || *o.TenantID != *filter.TenantID) {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		out = append(out, o)
	}
	return out, len(out), nil
}

func (m *memStore) ListIdentifiedOpportunities(_ context.Context, tenantID uuid.UUID) ([]*models.Opportunity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Opportunity
	for _, o := range m.opps {
		if o.Status != models.OpportunityStatusIdentified {
			continue
		}
		if o.TenantID == nil || *o.TenantID != tenantID {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (m *memStore) UpdateOpportunityStatus(_ context.Context, id uuid.UUID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.opps {
		if o.ID == id {
			o.Status = status
			return nil
		}
	}
	return store.ErrNotFound
}

// --- plans ---

func (m *memStore) CreatePlan(_ context.Context, p *models.MitigationPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans = append(m.plans, p)
	return nil
}

func (m *memStore) GetPlan(_ context.Context, id uuid.UUID) (*models.MitigationPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.plans {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) ListPlans(_ context.Context, filter store.PlanFilter) ([]*models.MitigationPlan, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.MitigationPlan
	for _, p := range m.plans {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		out = append(out, p)
	}
	return out, len(out), nil
}

func (m *memStore) ListPlansForRisk(_ context.Context, riskID uuid.UUID) ([]*models.MitigationPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.MitigationPlan
	for _, p := range m.plans {
		if p.RiskID != nil && *p.RiskID == riskID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) ListPlansForOpportunity(_ context.Context, oppID uuid.UUID) ([]*models.MitigationPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.MitigationPlan
	for _, p := range m.plans {
		if p.OpportunityID != nil && *p.OpportunityID == oppID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) UpdatePlanStatus(_ context.Context, id uuid.UUID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.plans {
		if p.ID == id {
			p.Status = status
			return nil
		}
	}
	return store.ErrNotFound
}

// --- risk scores ---

func (m *memStore) CreateRiskScore(_ context.Context, sc *models.RiskScore) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores = append(m.scores, sc)
	return nil
}

func (m *memStore) GetLatestRiskScore(_ context.Context, tenantID uuid.UUID) (*models.RiskScore, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.scores) - 1; i >= 0; i-- {
		if m.scores[i].TenantID == tenantID {
			return m.scores[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) ListRiskScores(_ context.Context, tenantID uuid.UUID, _ int) ([]*models.RiskScore, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.RiskScore
	for _, sc := range m.scores {
		if sc.TenantID == tenantID {
			out = append(out, sc)
		}
	}
	return out, nil
}

// --- agent status ---

func (m *memStore) GetAgentStatus(_ context.Context) (*models.AgentStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &models.AgentStatus{ID: uuid.Nil, Status: m.status}, nil
}

func (m *memStore) UpdateAgentStatus(_ context.Context, status string, _ ...store.AgentStatusOption) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = status
	m.statusHistory = append(m.statusHistory, status)
	return nil
}

var _ store.Store = (*memStore)(nil)

// helpers shared by agent tests

func (m *memStore) currentStatus() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *memStore) risksBySource(sourceType string) []*models.Risk {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Risk
	for _, r := range m.risks {
		if r.SourceType == sourceType {
			out = append(out, r)
		}
	}
	return out
}

func (m *memStore) planTitles() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, p := range m.plans {
		out = append(out, p.Title)
	}
	return out
}

func (m *memStore) sawStatus(status string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.statusHistory {
		if strings.EqualFold(s, status) {
			return true
		}
	}
	return false
}

func strPtr(s string) *string { return &s }

func seedTenant(m *memStore, name string, city, country string) *models.Tenant {
	now := time.Now().UTC()
	t := &models.Tenant{ID: uuid.New(), Name: name, CreatedAt: now, UpdatedAt: now}
	if city != "" {
		t.City = strPtr(city)
	}
	if country != "" {
		t.Country = strPtr(country)
	}
	m.tenants = append(m.tenants, t)
	return t
}
