// Package agent drives the monitoring cycle: fetch signals, analyze them,
// score the tenant's open risks, and generate plans. One cycle runs at a
// time; overlapping triggers are rejected, never queued.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/chainwatch/internal/analysis"
	"github.com/kiranshivaraju/chainwatch/internal/metrics"
	"github.com/kiranshivaraju/chainwatch/internal/plan"
	"github.com/kiranshivaraju/chainwatch/internal/score"
	"github.com/kiranshivaraju/chainwatch/internal/source"
	"github.com/kiranshivaraju/chainwatch/internal/store"
	"github.com/kiranshivaraju/chainwatch/pkg/models"
)

// ErrRunInProgress is returned when a trigger arrives while a cycle is active.
var ErrRunInProgress = errors.New("agent cycle already running")

// SourceFetcher is the slice of the source registry the coordinator needs.
type SourceFetcher interface {
	FetchByTypes(ctx context.Context, types []models.SourceType, params source.Params) map[models.SourceType][]models.SignalRecord
}

// Coordinator owns the agent cycle across all tenants.
type Coordinator struct {
	store   store.Store
	sources SourceFetcher
	engine  *analysis.Engine
	planner *plan.Generator

	running atomic.Bool
	now     func() time.Time
}

func NewCoordinator(st store.Store, sources SourceFetcher, engine *analysis.Engine, planner *plan.Generator) *Coordinator {
	return &Coordinator{
		store:   st,
		sources: sources,
		engine:  engine,
		planner: planner,
		now:     time.Now,
	}
}

// Running reports whether a cycle is currently active.
func (c *Coordinator) Running() bool {
	return c.running.Load()
}

// Trigger starts a cycle in the background and returns immediately. The
// cycle is detached from the caller's cancellation so an HTTP trigger
// outlives its request.
func (c *Coordinator) Trigger(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrRunInProgress
	}
	cycleCtx := context.WithoutCancel(ctx)
	go func() {
		defer c.running.Store(false)
		defer func() {
			if r := recover(); r != nil {
				slog.Error("agent cycle panicked", "panic", r, "stack", string(debug.Stack()))
				c.fail(cycleCtx, fmt.Errorf("cycle panic: %v", r))
			}
		}()
		if err := c.runCycle(cycleCtx); err != nil {
			slog.Error("agent cycle failed", "error", err)
		}
	}()
	return nil
}

// RunCycle executes one full cycle synchronously.
func (c *Coordinator) RunCycle(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrRunInProgress
	}
	defer c.running.Store(false)
	return c.runCycle(ctx)
}

func (c *Coordinator) runCycle(ctx context.Context) error {
	start := c.now()
	slog.Info("agent cycle started")

	tenants, err := c.store.ListTenants(ctx)
	if err != nil {
		return c.fail(ctx, fmt.Errorf("list tenants: %w", err))
	}

	for _, tenant := range tenants {
		if err := c.runTenant(ctx, tenant); err != nil {
			return c.fail(ctx, fmt.Errorf("tenant %s: %w", tenant.Name, err))
		}
	}

	if err := c.finish(ctx); err != nil {
		return c.fail(ctx, err)
	}

	elapsed := c.now().Sub(start)
	metrics.CyclesTotal.WithLabelValues("success").Inc()
	metrics.CycleDuration.Observe(elapsed.Seconds())
	slog.Info("agent cycle completed", "tenants", len(tenants), "duration", elapsed)
	return nil
}

// fail records the error state and passes err through.
func (c *Coordinator) fail(ctx context.Context, err error) error {
	metrics.CyclesTotal.WithLabelValues("error").Inc()
	if uerr := c.store.UpdateAgentStatus(ctx, models.AgentError, store.WithAgentError(err.Error())); uerr != nil {
		slog.Error("failed to record agent error state", "error", uerr)
	}
	return err
}

// finish recomputes lifetime counters and returns the agent to idle.
func (c *Coordinator) finish(ctx context.Context) error {
	_, risks, err := c.store.ListRisks(ctx, store.RiskFilter{Limit: 1})
	if err != nil {
		return fmt.Errorf("count risks: %w", err)
	}
	_, opps, err := c.store.ListOpportunities(ctx, store.OpportunityFilter{Limit: 1})
	if err != nil {
		return fmt.Errorf("count opportunities: %w", err)
	}
	_, plans, err := c.store.ListPlans(ctx, store.PlanFilter{Limit: 1})
	if err != nil {
		return fmt.Errorf("count plans: %w", err)
	}

	return c.store.UpdateAgentStatus(ctx, models.AgentIdle,
		store.WithCounters(store.AgentCounters{Risks: risks, Opportunities: opps, Plans: plans}),
		store.WithLastProcessedAt(c.now().UTC()))
}

func (c *Coordinator) runTenant(ctx context.Context, tenant *models.Tenant) error {
	c.setStatus(ctx, models.AgentMonitoring, fmt.Sprintf("Monitoring sources for %s", tenant.Name))

	suppliers, err := c.store.ListSuppliers(ctx, tenant.ID)
	if err != nil {
		return fmt.Errorf("list suppliers: %w", err)
	}
	scope := BuildScope(tenant, suppliers)
	params := deriveParams(scope)

	scoped := c.sources.FetchByTypes(ctx,
		[]models.SourceType{models.SourceWeather, models.SourceNews, models.SourceMarket}, params)

	c.setStatus(ctx, models.AgentAnalyzing, fmt.Sprintf("Analyzing signals for %s", tenant.Name))
	if err := c.analyzeScoped(ctx, tenant.ID, scope, scoped); err != nil {
		return err
	}
	if err := c.analyzeGlobalNews(ctx, tenant.ID); err != nil {
		return err
	}
	if err := c.analyzeRoutes(ctx, tenant.ID, params); err != nil {
		return err
	}

	c.setStatus(ctx, models.AgentProcessing, fmt.Sprintf("Scoring and planning for %s", tenant.Name))
	detected, err := c.store.ListDetectedRisks(ctx, tenant.ID)
	if err != nil {
		return fmt.Errorf("list detected risks: %w", err)
	}
	if err := c.persistScore(ctx, tenant.ID, detected); err != nil {
		return err
	}
	if err := c.scoreSuppliers(ctx, suppliers, detected); err != nil {
		return err
	}
	if err := c.generatePlans(ctx, tenant.ID, detected); err != nil {
		return err
	}
	return nil
}

// analyzeScoped runs full risk+opportunity analysis on tenant-scoped
// weather and news records.
func (c *Coordinator) analyzeScoped(ctx context.Context, tenantID uuid.UUID, scope *models.TenantScope, records map[models.SourceType][]models.SignalRecord) error {
	for sourceType, recs := range records {
		for _, rec := range recs {
			result := c.engine.AnalyzeItem(ctx, sourceType, rec, scope)
			for _, cand := range result.Risks {
				if err := c.persistRisk(ctx, tenantID, string(sourceType), rec, cand); err != nil {
					return err
				}
			}
			for _, cand := range result.Opportunities {
				if err := c.persistOpportunity(ctx, tenantID, string(sourceType), rec, cand); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// analyzeGlobalNews sweeps macro news with fixed keywords. The resulting
// risks are tagged with the triggering tenant so multi-tenant deployments
// see them in each tenant's feed.
func (c *Coordinator) analyzeGlobalNews(ctx context.Context, tenantID uuid.UUID) error {
	records := c.sources.FetchByTypes(ctx,
		[]models.SourceType{models.SourceNews},
		source.Params{Keywords: globalNewsKeywords})

	for _, rec := range records[models.SourceNews] {
		risks := c.engine.AnalyzeRisksOnly(ctx, models.SourceGlobalNews, rec, analysis.ContextGlobalRisk)
		for _, cand := range risks {
			if err := c.persistRisk(ctx, tenantID, string(models.SourceGlobalNews), rec, cand); err != nil {
				return err
			}
		}
	}
	return nil
}

// analyzeRoutes checks traffic and shipping along the tenant's supplier
// routes for disruption risks.
func (c *Coordinator) analyzeRoutes(ctx context.Context, tenantID uuid.UUID, params source.Params) error {
	records := c.sources.FetchByTypes(ctx,
		[]models.SourceType{models.SourceTraffic, models.SourceShipping}, params)

	for sourceType, recs := range records {
		for _, rec := range recs {
			risks := c.engine.AnalyzeRisksOnly(ctx, sourceType, rec, analysis.ContextShippingRoutes)
			for _, cand := range risks {
				if err := c.persistRisk(ctx, tenantID, string(sourceType), rec, cand); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (c *Coordinator) persistRisk(ctx context.Context, tenantID uuid.UUID, sourceType string, rec models.SignalRecord, cand analysis.RiskCandidate) error {
	now := c.now().UTC()
	risk := &models.Risk{
		ID:          uuid.New(),
		TenantID:    &tenantID,
		Title:       cand.Title,
		Description: cand.Description,
		Severity:    cand.Severity,
		Status:      models.RiskStatusDetected,
		SourceType:  sourceType,
		SourceData:  rec.Payload,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if cand.AffectedRegion != "" {
		risk.AffectedRegion = &cand.AffectedRegion
	}
	if cand.AffectedSupplier != "" {
		risk.AffectedSupplier = &cand.AffectedSupplier
	}
	if cand.EstimatedImpact != "" {
		risk.EstimatedImpact = &cand.EstimatedImpact
	}
	if cand.EstimatedCost > 0 {
		cost := cand.EstimatedCost
		risk.EstimatedCost = &cost
	}

	if err := c.store.CreateRisk(ctx, risk); err != nil {
		return fmt.Errorf("persist risk: %w", err)
	}
	metrics.RisksDetected.Inc()
	slog.Info("risk detected", "title", risk.Title, "severity", risk.Severity, "source", sourceType)
	return nil
}

func (c *Coordinator) persistOpportunity(ctx context.Context, tenantID uuid.UUID, sourceType string, rec models.SignalRecord, cand analysis.OpportunityCandidate) error {
	now := c.now().UTC()
	opp := &models.Opportunity{
		ID:          uuid.New(),
		TenantID:    &tenantID,
		Title:       cand.Title,
		Description: cand.Description,
		Type:        cand.Type,
		Status:      models.OpportunityStatusIdentified,
		SourceType:  sourceType,
		SourceData:  rec.Payload,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if cand.AffectedRegion != "" {
		opp.AffectedRegion = &cand.AffectedRegion
	}
	if cand.PotentialBenefit != "" {
		opp.PotentialBenefit = &cand.PotentialBenefit
	}
	if cand.EstimatedValue > 0 {
		value := cand.EstimatedValue
		opp.EstimatedValue = &value
	}

	if err := c.store.CreateOpportunity(ctx, opp); err != nil {
		return fmt.Errorf("persist opportunity: %w", err)
	}
	metrics.OpportunitiesIdentified.Inc()
	slog.Info("opportunity identified", "title", opp.Title, "type", opp.Type)
	return nil
}

// persistScore appends a point-in-time rollup of the tenant's open risks.
func (c *Coordinator) persistScore(ctx context.Context, tenantID uuid.UUID, detected []*models.Risk) error {
	summary := score.Compute(detected)
	ids := make([]uuid.UUID, len(detected))
	for i, r := range detected {
		ids[i] = r.ID
	}

	rec := &models.RiskScore{
		ID:             uuid.New(),
		TenantID:       tenantID,
		OverallScore:   summary.Overall,
		Breakdown:      summary.Breakdown,
		SeverityCounts: summary.SeverityCounts,
		RiskIDs:        ids,
		CreatedAt:      c.now().UTC(),
	}
	if err := c.store.CreateRiskScore(ctx, rec); err != nil {
		return err
	}
	slog.Info("risk score computed", "score", summary.Overall, "risks", len(detected))
	return nil
}

// scoreSuppliers rolls detected risks up onto the supplier rows they name.
// Suppliers with no open risks have any stale score cleared.
func (c *Coordinator) scoreSuppliers(ctx context.Context, suppliers []*models.Supplier, detected []*models.Risk) error {
	bySupplier := groupBySupplier(detected)
	for _, sp := range suppliers {
		risks := bySupplier[sp.Name]
		if len(risks) == 0 {
			if sp.LatestRiskScore == nil && sp.LatestRiskLevel == nil {
				continue
			}
			if err := c.store.UpdateSupplierScore(ctx, sp.ID, nil, nil); err != nil {
				return fmt.Errorf("clear supplier score: %w", err)
			}
			continue
		}
		summary := score.Compute(risks)
		level := score.Level(summary.Overall)
		if err := c.store.UpdateSupplierScore(ctx, sp.ID, &summary.Overall, &level); err != nil {
			return fmt.Errorf("update supplier score: %w", err)
		}
	}
	return nil
}

// generatePlans covers every open risk and identified opportunity that has
// no plan yet. Risks naming the same supplier share one combined plan.
func (c *Coordinator) generatePlans(ctx context.Context, tenantID uuid.UUID, detected []*models.Risk) error {
	bySupplier := groupBySupplier(detected)

	for supplier, risks := range bySupplier {
		covered, err := c.anyHasPlan(ctx, risks)
		if err != nil {
			return err
		}
		if covered {
			continue
		}
		p := c.planner.CombinedForSupplier(ctx, supplier, risks)
		if err := c.persistPlan(ctx, p); err != nil {
			return err
		}
	}

	for _, risk := range detected {
		if supplierOf(risk) != "" {
			continue
		}
		plans, err := c.store.ListPlansForRisk(ctx, risk.ID)
		if err != nil {
			return fmt.Errorf("list plans for risk: %w", err)
		}
		if len(plans) > 0 {
			continue
		}
		p := c.planner.ForRisk(ctx, risk)
		if err := c.persistPlan(ctx, p); err != nil {
			return err
		}
	}

	opps, err := c.store.ListIdentifiedOpportunities(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("list identified opportunities: %w", err)
	}
	for _, opp := range opps {
		plans, err := c.store.ListPlansForOpportunity(ctx, opp.ID)
		if err != nil {
			return fmt.Errorf("list plans for opportunity: %w", err)
		}
		if len(plans) > 0 {
			continue
		}
		p := c.planner.ForOpportunity(ctx, opp)
		if err := c.persistPlan(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (c *Coordinator) persistPlan(ctx context.Context, p *models.MitigationPlan) error {
	now := c.now().UTC()
	p.ID = uuid.New()
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := c.store.CreatePlan(ctx, p); err != nil {
		return fmt.Errorf("persist plan: %w", err)
	}
	metrics.PlansGenerated.Inc()
	slog.Info("plan generated", "title", p.Title)
	return nil
}

// anyHasPlan reports whether any risk in the group is already covered.
func (c *Coordinator) anyHasPlan(ctx context.Context, risks []*models.Risk) (bool, error) {
	for _, r := range risks {
		plans, err := c.store.ListPlansForRisk(ctx, r.ID)
		if err != nil {
			return false, fmt.Errorf("list plans for risk: %w", err)
		}
		if len(plans) > 0 {
			return true, nil
		}
	}
	return false, nil
}

// setStatus writes a breadcrumb; failures are logged, not fatal, so a status
// hiccup never aborts a healthy cycle.
func (c *Coordinator) setStatus(ctx context.Context, status, task string) {
	if err := c.store.UpdateAgentStatus(ctx, status, store.WithCurrentTask(task)); err != nil {
		slog.Warn("failed to update agent status", "status", status, "error", err)
	}
}

func groupBySupplier(risks []*models.Risk) map[string][]*models.Risk {
	groups := make(map[string][]*models.Risk)
	for _, r := range risks {
		name := supplierOf(r)
		if name == "" {
			continue
		}
		groups[name] = append(groups[name], r)
	}
	return groups
}

func supplierOf(r *models.Risk) string {
	if r.AffectedSupplier == nil {
		return ""
	}
	return strings.TrimSpace(*r.AffectedSupplier)
}
