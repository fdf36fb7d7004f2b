package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kiranshivaraju/chainwatch/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// rowScanner covers both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// --- Tenants ---

const tenantColumns = `id, name, location, city, country, region, created_at, updated_at`

func scanTenant(row rowScanner) (*models.Tenant, error) {
	var t models.Tenant
	err := row.Scan(&t.ID, &t.Name, &t.Location, &t.City, &t.Country, &t.Region, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *PostgresStore) CreateTenant(ctx context.Context, tenant *models.Tenant) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO tenants (id, name, location, city, country, region, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		tenant.ID, tenant.Name, tenant.Location, tenant.City, tenant.Country, tenant.Region,
		tenant.CreatedAt, tenant.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create tenant: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetTenant(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	t, err := scanTenant(s.pool.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	return t, nil
}

func (s *PostgresStore) GetDefaultTenant(ctx context.Context) (*models.Tenant, error) {
	t, err := scanTenant(s.pool.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE name = 'default' LIMIT 1`))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get default tenant: %w", err)
	}
	return t, nil
}

func (s *PostgresStore) ListTenants(ctx context.Context) ([]*models.Tenant, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+tenantColumns+` FROM tenants ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []*models.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

func (s *PostgresStore) UpdateTenant(ctx context.Context, tenant *models.Tenant) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE tenants SET name = $2, location = $3, city = $4, country = $5, region = $6, updated_at = NOW()
		 WHERE id = $1`,
		tenant.ID, tenant.Name, tenant.Location, tenant.City, tenant.Country, tenant.Region)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("update tenant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteTenant(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tenants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tenant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Suppliers ---

const supplierColumns = `id, tenant_id, name, location, city, country, region, commodities,
	 latest_risk_score, latest_risk_level, created_at, updated_at`

func scanSupplier(row rowScanner) (*models.Supplier, error) {
	var sp models.Supplier
	err := row.Scan(&sp.ID, &sp.TenantID, &sp.Name, &sp.Location, &sp.City, &sp.Country, &sp.Region,
		&sp.Commodities, &sp.LatestRiskScore, &sp.LatestRiskLevel, &sp.CreatedAt, &sp.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &sp, nil
}

func (s *PostgresStore) CreateSupplier(ctx context.Context, supplier *models.Supplier) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO suppliers (id, tenant_id, name, location, city, country, region, commodities, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		supplier.ID, supplier.TenantID, supplier.Name, supplier.Location, supplier.City,
		supplier.Country, supplier.Region, supplier.Commodities, supplier.CreatedAt, supplier.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create supplier: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetSupplier(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*models.Supplier, error) {
	sp, err := scanSupplier(s.pool.QueryRow(ctx,
		`SELECT `+supplierColumns+` FROM suppliers WHERE id = $1 AND tenant_id = $2`, id, tenantID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	return sp, nil
}

func (s *PostgresStore) ListSuppliers(ctx context.Context, tenantID uuid.UUID) ([]*models.Supplier, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+supplierColumns+` FROM suppliers WHERE tenant_id = $1 ORDER BY name ASC`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	defer rows.Close()

	var suppliers []*models.Supplier
	for rows.Next() {
		sp, err := scanSupplier(rows)
		if err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		suppliers = append(suppliers, sp)
	}
	return suppliers, rows.Err()
}

func (s *PostgresStore) UpdateSupplier(ctx context.Context, supplier *models.Supplier) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE suppliers SET name = $3, location = $4, city = $5, country = $6, region = $7, commodities = $8, updated_at = NOW()
		 WHERE id = $1 AND tenant_id = $2`,
		supplier.ID, supplier.TenantID, supplier.Name, supplier.Location, supplier.City,
		supplier.Country, supplier.Region, supplier.Commodities)
	if err != nil {
		return fmt.Errorf("update supplier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteSupplier(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM suppliers WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return fmt.Errorf("delete supplier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateSupplierScore writes the latest per-supplier rollup. Passing nils
// clears a stale score.
func (s *PostgresStore) UpdateSupplierScore(ctx context.Context, id uuid.UUID, score *float64, level *string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE suppliers SET latest_risk_score = $2, latest_risk_level = $3, updated_at = NOW() WHERE id = $1`,
		id, score, level)
	if err != nil {
		return fmt.Errorf("update supplier score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- API Keys ---

func (s *PostgresStore) GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, tenant_id, name, key_hash, key_prefix, scopes, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE key_prefix = $1 AND deleted_at IS NULL`, prefix)
	if err != nil {
		return nil, fmt.Errorf("get api key by prefix: %w", err)
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.TenantID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Scopes,
			&k.LastUsedAt, &k.DeletedAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

func (s *PostgresStore) UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET last_used_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update api key last used: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO api_keys (id, tenant_id, name, key_hash, key_prefix, scopes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		key.ID, key.TenantID, key.Name, key.KeyHash, key.KeyPrefix, key.Scopes, key.CreatedAt, key.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create api key: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAPIKeys(ctx context.Context, tenantID uuid.UUID) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, tenant_id, name, key_hash, key_prefix, scopes, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE tenant_id = $1 AND deleted_at IS NULL ORDER BY created_at DESC`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.TenantID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Scopes,
			&k.LastUsedAt, &k.DeletedAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

func (s *PostgresStore) RevokeAPIKey(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET deleted_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL`, id, tenantID)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Risks ---

const riskColumns = `id, tenant_id, title, description, severity, status, source_type, source_data,
	 affected_region, affected_supplier, estimated_impact, estimated_cost, created_at, updated_at`

func scanRisk(row rowScanner) (*models.Risk, error) {
	var r models.Risk
	err := row.Scan(&r.ID, &r.TenantID, &r.Title, &r.Description, &r.Severity, &r.Status,
		&r.SourceType, &r.SourceData, &r.AffectedRegion, &r.AffectedSupplier,
		&r.EstimatedImpact, &r.EstimatedCost, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *PostgresStore) CreateRisk(ctx context.Context, risk *models.Risk) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO risks (id, tenant_id, title, description, severity, status, source_type, source_data,
		   affected_region, affected_supplier, estimated_impact, estimated_cost, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		risk.ID, risk.TenantID, risk.Title, risk.Description, risk.Severity, risk.Status,
		risk.SourceType, risk.SourceData, risk.AffectedRegion, risk.AffectedSupplier,
		risk.EstimatedImpact, risk.EstimatedCost, risk.CreatedAt, risk.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create risk: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetRisk(ctx context.Context, id uuid.UUID) (*models.Risk, error) {
	r, err := scanRisk(s.pool.QueryRow(ctx,
		`SELECT `+riskColumns+` FROM risks WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get risk: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) ListRisks(ctx context.Context, filter RiskFilter) ([]*models.Risk, int, error) {
	conditions := []string{"TRUE"}
	args := []any{}
	argIdx := 1

	if filter.TenantID != nil {
		conditions = append(conditions, fmt.Sprintf("tenant_id = $%d", argIdx))
		args = append(args, *filter.TenantID)
		argIdx++
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, filter.Status)
		argIdx++
	}
	if filter.Severity != "" {
		conditions = append(conditions, fmt.Sprintf("severity = $%d", argIdx))
		args = append(args, filter.Severity)
		argIdx++
	}
	if filter.SourceType != "" {
		conditions = append(conditions, fmt.Sprintf("source_type = $%d", argIdx))
		args = append(args, filter.SourceType)
		argIdx++
	}
	if !filter.Since.IsZero() {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argIdx))
		args = append(args, filter.Since)
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM risks WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count risks: %w", err)
	}

	limit, offset := normalizePagination(filter.Page, filter.Limit)
	dataQuery := fmt.Sprintf(
		`SELECT %s FROM risks WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		riskColumns, where, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list risks: %w", err)
	}
	defer rows.Close()

	var risks []*models.Risk
	for rows.Next() {
		r, err := scanRisk(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan risk: %w", err)
		}
		risks = append(risks, r)
	}
	return risks, total, rows.Err()
}

// ListDetectedRisks returns every open risk for a tenant, oldest first. The
// agent scores and plans against the full set, so this is unpaginated.
func (s *PostgresStore) ListDetectedRisks(ctx context.Context, tenantID uuid.UUID) ([]*models.Risk, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+riskColumns+` FROM risks WHERE tenant_id = $1 AND status = 'detected' ORDER BY created_at ASC`,
		tenantID)
	if err != nil {
		return nil, fmt.Errorf("list detected risks: %w", err)
	}
	defer rows.Close()

	var risks []*models.Risk
	for rows.Next() {
		r, err := scanRisk(rows)
		if err != nil {
			return nil, fmt.Errorf("scan risk: %w", err)
		}
		risks = append(risks, r)
	}
	return risks, rows.Err()
}

func (s *PostgresStore) UpdateRiskStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE risks SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update risk status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Opportunities ---

const opportunityColumns = `id, tenant_id, title, description, type, status, source_type, source_data,
	 affected_region, potential_benefit, estimated_value, created_at, updated_at`

func scanOpportunity(row rowScanner) (*models.Opportunity, error) {
	var o models.Opportunity
	err := row.Scan(&o.ID, &o.TenantID, &o.Title, &o.Description, &o.Type, &o.Status,
		&o.SourceType, &o.SourceData, &o.AffectedRegion, &o.PotentialBenefit,
		&o.EstimatedValue, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *PostgresStore) CreateOpportunity(ctx context.Context, opp *models.Opportunity) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO opportunities (id, tenant_id, title, description, type, status, source_type, source_data,
		   affected_region, potential_benefit, estimated_value, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		opp.ID, opp.TenantID, opp.Title, opp.Description, opp.Type, opp.Status,
		opp.SourceType, opp.SourceData, opp.AffectedRegion, opp.PotentialBenefit,
		opp.EstimatedValue, opp.CreatedAt, opp.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create opportunity: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetOpportunity(ctx context.Context, id uuid.UUID) (*models.Opportunity, error) {
	o, err := scanOpportunity(s.pool.QueryRow(ctx,
		`SELECT `+opportunityColumns+` FROM opportunities WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get opportunity: %w", err)
	}
	return o, nil
}

func (s *PostgresStore) ListOpportunities(ctx context.Context, filter OpportunityFilter) ([]*models.Opportunity, int, error) {
	conditions := []string{"TRUE"}
	args := []any{}
	argIdx := 1

	if filter.TenantID != nil {
		conditions = append(conditions, fmt.Sprintf("tenant_id = $%d", argIdx))
		args = append(args, *filter.TenantID)
		argIdx++
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, filter.Status)
		argIdx++
	}
	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argIdx))
		args = append(args, filter.Type)
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM opportunities WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count opportunities: %w", err)
	}

	limit, offset := normalizePagination(filter.Page, filter.Limit)
	dataQuery := fmt.Sprintf(
		`SELECT %s FROM opportunities WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		opportunityColumns, where, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list opportunities: %w", err)
	}
	defer rows.Close()

	var opps []*models.Opportunity
	for rows.Next() {
		o, err := scanOpportunity(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan opportunity: %w", err)
		}
		opps = append(opps, o)
	}
	return opps, total, rows.Err()
}

// ListIdentifiedOpportunities returns every unplanned-eligible opportunity
// for a tenant, oldest first.
func (s *PostgresStore) ListIdentifiedOpportunities(ctx context.Context, tenantID uuid.UUID) ([]*models.Opportunity, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+opportunityColumns+` FROM opportunities WHERE tenant_id = $1 AND status = 'identified' ORDER BY created_at ASC`,
		tenantID)
	if err != nil {
		return nil, fmt.Errorf("list identified opportunities: %w", err)
	}
	defer rows.Close()

	var opps []*models.Opportunity
	for rows.Next() {
		o, err := scanOpportunity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan opportunity: %w", err)
		}
		opps = append(opps, o)
	}
	return opps, rows.Err()
}

func (s *PostgresStore) UpdateOpportunityStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE opportunities SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update opportunity status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Mitigation Plans ---

const planColumns = `id, title, description, actions, status, risk_id, opportunity_id, metadata,
	 assigned_to, due_date, created_at, updated_at`

func scanPlan(row rowScanner) (*models.MitigationPlan, error) {
	var p models.MitigationPlan
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Actions, &p.Status, &p.RiskID,
		&p.OpportunityID, &p.Metadata, &p.AssignedTo, &p.DueDate, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) CreatePlan(ctx context.Context, plan *models.MitigationPlan) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO mitigation_plans (id, title, description, actions, status, risk_id, opportunity_id,
		   metadata, assigned_to, due_date, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		plan.ID, plan.Title, plan.Description, plan.Actions, plan.Status, plan.RiskID,
		plan.OpportunityID, plan.Metadata, plan.AssignedTo, plan.DueDate, plan.CreatedAt, plan.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create plan: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetPlan(ctx context.Context, id uuid.UUID) (*models.MitigationPlan, error) {
	p, err := scanPlan(s.pool.QueryRow(ctx,
		`SELECT `+planColumns+` FROM mitigation_plans WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get plan: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) ListPlans(ctx context.Context, filter PlanFilter) ([]*models.MitigationPlan, int, error) {
	conditions := []string{"TRUE"}
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, filter.Status)
		argIdx++
	}
	if filter.RiskID != nil {
		conditions = append(conditions, fmt.Sprintf("risk_id = $%d", argIdx))
		args = append(args, *filter.RiskID)
		argIdx++
	}
	if filter.OpportunityID != nil {
		conditions = append(conditions, fmt.Sprintf("opportunity_id = $%d", argIdx))
		args = append(args, *filter.OpportunityID)
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM mitigation_plans WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count plans: %w", err)
	}

	limit, offset := normalizePagination(filter.Page, filter.Limit)
	dataQuery := fmt.Sprintf(
		`SELECT %s FROM mitigation_plans WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		planColumns, where, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var plans []*models.MitigationPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan plan: %w", err)
		}
		plans = append(plans, p)
	}
	return plans, total, rows.Err()
}

func (s *PostgresStore) ListPlansForRisk(ctx context.Context, riskID uuid.UUID) ([]*models.MitigationPlan, error) {
	return s.listPlansBy(ctx, "risk_id", riskID)
}

func (s *PostgresStore) ListPlansForOpportunity(ctx context.Context, opportunityID uuid.UUID) ([]*models.MitigationPlan, error) {
	return s.listPlansBy(ctx, "opportunity_id", opportunityID)
}

func (s *PostgresStore) listPlansBy(ctx context.Context, column string, id uuid.UUID) ([]*models.MitigationPlan, error) {
	rows, err := s.pool.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM mitigation_plans WHERE %s = $1 ORDER BY created_at ASC`, planColumns, column), id)
	if err != nil {
		return nil, fmt.Errorf("list plans by %s: %w", column, err)
	}
	defer rows.Close()

	var plans []*models.MitigationPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

func (s *PostgresStore) UpdatePlanStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE mitigation_plans SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update plan status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Risk Scores ---

func (s *PostgresStore) CreateRiskScore(ctx context.Context, score *models.RiskScore) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO risk_scores (id, tenant_id, overall_score, breakdown, severity_counts, risk_ids, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		score.ID, score.TenantID, score.OverallScore, score.Breakdown, score.SeverityCounts,
		score.RiskIDs, score.CreatedAt)
	if err != nil {
		return fmt.Errorf("create risk score: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetLatestRiskScore(ctx context.Context, tenantID uuid.UUID) (*models.RiskScore, error) {
	var sc models.RiskScore
	err := s.pool.QueryRow(ctx,
		`SELECT id, tenant_id, overall_score, breakdown, severity_counts, risk_ids, created_at
		 FROM risk_scores WHERE tenant_id = $1 ORDER BY created_at DESC LIMIT 1`, tenantID,
	).Scan(&sc.ID, &sc.TenantID, &sc.OverallScore, &sc.Breakdown, &sc.SeverityCounts, &sc.RiskIDs, &sc.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get latest risk score: %w", err)
	}
	return &sc, nil
}

func (s *PostgresStore) ListRiskScores(ctx context.Context, tenantID uuid.UUID, limit int) ([]*models.RiskScore, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, tenant_id, overall_score, breakdown, severity_counts, risk_ids, created_at
		 FROM risk_scores WHERE tenant_id = $1 ORDER BY created_at DESC LIMIT $2`, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("list risk scores: %w", err)
	}
	defer rows.Close()

	var scores []*models.RiskScore
	for rows.Next() {
		var sc models.RiskScore
		if err := rows.Scan(&sc.ID, &sc.TenantID, &sc.OverallScore, &sc.Breakdown,
			&sc.SeverityCounts, &sc.RiskIDs, &sc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan risk score: %w", err)
		}
		scores = append(scores, &sc)
	}
	return scores, rows.Err()
}

// --- Agent Status ---

const agentStatusColumns = `id, status, current_task, error_message, risks_detected,
	 opportunities_identified, plans_generated, last_processed_at, created_at, updated_at`

// GetAgentStatus returns the singleton status record, creating it in the
// idle phase on first access.
func (s *PostgresStore) GetAgentStatus(ctx context.Context) (*models.AgentStatus, error) {
	st, err := s.scanAgentStatusRow(s.pool.QueryRow(ctx,
		`SELECT `+agentStatusColumns+` FROM agent_status ORDER BY created_at ASC LIMIT 1`))
	if err == nil {
		return st, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get agent status: %w", err)
	}

	now := time.Now().UTC()
	st, err = s.scanAgentStatusRow(s.pool.QueryRow(ctx,
		`INSERT INTO agent_status (id, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $3) RETURNING `+agentStatusColumns,
		uuid.New(), models.AgentIdle, now))
	if err != nil {
		return nil, fmt.Errorf("create agent status: %w", err)
	}
	return st, nil
}

func (s *PostgresStore) scanAgentStatusRow(row rowScanner) (*models.AgentStatus, error) {
	var st models.AgentStatus
	err := row.Scan(&st.ID, &st.Status, &st.CurrentTask, &st.ErrorMessage, &st.RisksDetected,
		&st.OpportunitiesIdentified, &st.PlansGenerated, &st.LastProcessedAt, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// UpdateAgentStatus transitions the singleton record. The current task and
// error message are replaced on every call: omitting the option clears the
// previous value.
func (s *PostgresStore) UpdateAgentStatus(ctx context.Context, status string, opts ...AgentStatusOption) error {
	params := &agentStatusParams{}
	for _, opt := range opts {
		opt(params)
	}

	st, err := s.GetAgentStatus(ctx)
	if err != nil {
		return err
	}

	query := `UPDATE agent_status SET status = $2, current_task = $3, error_message = $4, updated_at = NOW()`
	args := []any{st.ID, status, params.CurrentTask, params.ErrorMessage}
	argIdx := 5

	if params.Counters != nil {
		query += fmt.Sprintf(", risks_detected = $%d, opportunities_identified = $%d, plans_generated = $%d",
			argIdx, argIdx+1, argIdx+2)
		args = append(args, params.Counters.Risks, params.Counters.Opportunities, params.Counters.Plans)
		argIdx += 3
	}
	if params.LastProcessedAt != nil {
		query += fmt.Sprintf(", last_processed_at = $%d", argIdx)
		args = append(args, *params.LastProcessedAt)
		argIdx++
	}

	query += " WHERE id = $1"

	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("update agent status: %w", err)
	}
	return nil
}

// --- helpers ---

func normalizePagination(page, limit int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if page <= 0 {
		page = 1
	}
	return limit, (page - 1) * limit
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
