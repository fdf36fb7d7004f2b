// Package plan turns risks and opportunities into actionable draft plans.
// Plan text comes from the configured LLM backend when one is available;
// otherwise fixed templates keep generation deterministic.
package plan

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/kiranshivaraju/chainwatch/internal/llm"
	"github.com/kiranshivaraju/chainwatch/internal/metrics"
	"github.com/kiranshivaraju/chainwatch/pkg/models"
)

const (
	riskPlanDueDays        = 7
	opportunityPlanDueDays = 14

	supplyChainTeam       = "Supply Chain Team"
	strategicPlanningTeam = "Strategic Planning Team"
)

// Generator builds draft mitigation and action plans. The zero value is not
// usable; construct with NewGenerator.
type Generator struct {
	client llm.Client
	now    func() time.Time
}

// NewGenerator creates a plan generator. A nil client selects the template
// fallback for every plan.
func NewGenerator(client llm.Client) *Generator {
	return &Generator{client: client, now: time.Now}
}

// ForRisk builds a draft mitigation plan for a single risk. It never fails.
func (g *Generator) ForRisk(ctx context.Context, risk *models.Risk) *models.MitigationPlan {
	p := g.generate(ctx, "plan_risk", buildRiskPlanPrompt(risk), func() planContent {
		return templateRiskPlan(risk)
	})
	p.RiskID = &risk.ID
	p.Metadata = map[string]any{
		"riskSeverity":  risk.Severity,
		"autoGenerated": true,
	}
	p.AssignedTo = ptr(supplyChainTeam)
	p.DueDate = g.due(riskPlanDueDays)
	return p
}

// ForOpportunity builds a draft action plan for a single opportunity.
func (g *Generator) ForOpportunity(ctx context.Context, opp *models.Opportunity) *models.MitigationPlan {
	p := g.generate(ctx, "plan_opportunity", buildOpportunityPlanPrompt(opp), func() planContent {
		return templateOpportunityPlan(opp)
	})
	p.OpportunityID = &opp.ID
	p.Metadata = map[string]any{
		"opportunityType": opp.Type,
		"autoGenerated":   true,
	}
	p.AssignedTo = ptr(strategicPlanningTeam)
	p.DueDate = g.due(opportunityPlanDueDays)
	return p
}

// CombinedForSupplier builds one unified plan covering every open risk that
// names the same supplier. The plan attaches to the first risk in the group.
func (g *Generator) CombinedForSupplier(ctx context.Context, supplier string, risks []*models.Risk) *models.MitigationPlan {
	sorted := sortBySeverity(risks)
	p := g.generate(ctx, "plan_combined", buildCombinedPlanPrompt(supplier, sorted), func() planContent {
		return templateCombinedPlan(supplier, sorted)
	})
	p.RiskID = &sorted[0].ID

	ids := make([]string, len(sorted))
	for i, r := range sorted {
		ids[i] = r.ID.String()
	}
	p.Metadata = map[string]any{
		"combinedForSupplier": supplier,
		"riskIds":             ids,
		"riskCount":           len(sorted),
	}
	p.AssignedTo = ptr(supplyChainTeam)
	p.DueDate = g.due(riskPlanDueDays)
	return p
}

type planContent struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Actions     []string `json:"actions"`
}

func (g *Generator) generate(ctx context.Context, stage, prompt string, fallback func() planContent) *models.MitigationPlan {
	content := g.invoke(ctx, stage, prompt, fallback)
	return &models.MitigationPlan{
		Title:       content.Title,
		Description: content.Description,
		Actions:     content.Actions,
		Status:      models.PlanStatusDraft,
	}
}

func (g *Generator) invoke(ctx context.Context, stage, prompt string, fallback func() planContent) planContent {
	if g.client == nil {
		return fallback()
	}
	text, err := g.client.Invoke(ctx, prompt)
	if err != nil {
		slog.Warn("llm plan generation failed, using template", "stage", stage, "error", err)
		metrics.LLMFallbacks.WithLabelValues(stage).Inc()
		return fallback()
	}
	content, ok := parsePlanResponse(text)
	if !ok {
		slog.Warn("llm plan generation unparseable, using template", "stage", stage)
		metrics.LLMFallbacks.WithLabelValues(stage).Inc()
		return fallback()
	}
	return content
}

// parsePlanResponse accepts a JSON object with a title, a description and a
// non-empty actions array.
func parsePlanResponse(text string) (planContent, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return planContent{}, false
	}
	var content planContent
	if err := json.Unmarshal([]byte(text[start:end+1]), &content); err != nil {
		return planContent{}, false
	}
	if content.Title == "" || len(content.Actions) == 0 {
		return planContent{}, false
	}
	return content, true
}

// sortBySeverity orders risks most severe first without mutating the input.
func sortBySeverity(risks []*models.Risk) []*models.Risk {
	rank := map[string]int{
		models.SeverityCritical: 0,
		models.SeverityHigh:     1,
		models.SeverityMedium:   2,
		models.SeverityLow:      3,
	}
	sorted := make([]*models.Risk, len(risks))
	copy(sorted, risks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return severityRank(rank, sorted[i]) < severityRank(rank, sorted[j])
	})
	return sorted
}

func severityRank(rank map[string]int, r *models.Risk) int {
	if v, ok := rank[r.Severity]; ok {
		return v
	}
	return 2
}

func (g *Generator) due(days int) *time.Time {
	t := g.now().Add(time.Duration(days) * 24 * time.Hour)
	return &t
}

func ptr(s string) *string { return &s }
