// Package analysis converts raw signal records into risk and opportunity
// candidates. It prefers a configured LLM backend and guarantees a
// deterministic rule-based substitute whenever the backend is absent, fails,
// or returns unparseable output. The fallback is the system's correctness
// baseline: identical input always yields identical output.
package analysis

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/kiranshivaraju/chainwatch/internal/llm"
	"github.com/kiranshivaraju/chainwatch/internal/metrics"
	"github.com/kiranshivaraju/chainwatch/pkg/models"
)

// Context selects the narrow risks-only analysis mode.
type Context string

const (
	ContextGlobalRisk     Context = "global_risk"
	ContextShippingRoutes Context = "shipping_routes"
)

// RiskCandidate is an unpersisted risk produced by analysis.
type RiskCandidate struct {
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	Severity         string  `json:"severity"`
	AffectedRegion   string  `json:"affectedRegion,omitempty"`
	AffectedSupplier string  `json:"affectedSupplier,omitempty"`
	EstimatedImpact  string  `json:"estimatedImpact,omitempty"`
	EstimatedCost    float64 `json:"estimatedCost,omitempty"`
}

// OpportunityCandidate is an unpersisted opportunity produced by analysis.
type OpportunityCandidate struct {
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	Type             string  `json:"type"`
	AffectedRegion   string  `json:"affectedRegion,omitempty"`
	PotentialBenefit string  `json:"potentialBenefit,omitempty"`
	EstimatedValue   float64 `json:"estimatedValue,omitempty"`
}

// Result is the output of a full per-item analysis.
type Result struct {
	Risks         []RiskCandidate
	Opportunities []OpportunityCandidate
}

// Engine runs per-item analysis with the primary/fallback strategy.
type Engine struct {
	client llm.Client
}

// NewEngine creates an analysis engine. A nil client means the deterministic
// rule engine handles everything.
func NewEngine(client llm.Client) *Engine {
	return &Engine{client: client}
}

// AnalyzeItem converts one signal record into risk and opportunity
// candidates, optionally restricted to a tenant scope. It never fails:
// any backend problem degrades to the rule engine.
func (e *Engine) AnalyzeItem(ctx context.Context, sourceType models.SourceType, rec models.SignalRecord, scope *models.TenantScope) Result {
	if e.client == nil {
		return ruleAnalyzeItem(sourceType, rec.Payload)
	}

	prompt := buildItemPrompt(sourceType, rec.Payload, scope)
	text, err := e.client.Invoke(ctx, prompt)
	if err != nil {
		slog.Warn("llm analysis failed, using rule engine", "source", sourceType, "error", err)
		metrics.LLMFallbacks.WithLabelValues("analyze_item").Inc()
		return ruleAnalyzeItem(sourceType, rec.Payload)
	}

	parsed, ok := parseItemResponse(text)
	if !ok {
		slog.Warn("llm analysis unparseable, using rule engine", "source", sourceType)
		metrics.LLMFallbacks.WithLabelValues("analyze_item").Inc()
		return ruleAnalyzeItem(sourceType, rec.Payload)
	}
	return parsed
}

// AnalyzeRisksOnly runs the narrow risk-extraction mode used for global-news
// and shipping-route contexts, where opportunity extraction is meaningless.
func (e *Engine) AnalyzeRisksOnly(ctx context.Context, sourceType models.SourceType, rec models.SignalRecord, analysisCtx Context) []RiskCandidate {
	if e.client == nil {
		return ruleAnalyzeRisksOnly(rec.Payload, analysisCtx)
	}

	var prompt string
	if analysisCtx == ContextGlobalRisk {
		prompt = buildGlobalRiskPrompt(rec.Payload)
	} else {
		prompt = buildShippingPrompt(rec.Payload)
	}

	text, err := e.client.Invoke(ctx, prompt)
	if err != nil {
		slog.Warn("llm risk analysis failed, using rule engine", "source", sourceType, "context", analysisCtx, "error", err)
		metrics.LLMFallbacks.WithLabelValues("analyze_risks_only").Inc()
		return ruleAnalyzeRisksOnly(rec.Payload, analysisCtx)
	}

	risks, ok := parseRisksResponse(text)
	if !ok {
		slog.Warn("llm risk analysis unparseable, using rule engine", "source", sourceType, "context", analysisCtx)
		metrics.LLMFallbacks.WithLabelValues("analyze_risks_only").Inc()
		return ruleAnalyzeRisksOnly(rec.Payload, analysisCtx)
	}
	return risks
}

// parseItemResponse accepts only a JSON object carrying both a risks and an
// opportunities array; anything else sends the caller to the rule engine.
func parseItemResponse(text string) (Result, bool) {
	raw, ok := extractJSON(text)
	if !ok {
		return Result{}, false
	}
	var parsed struct {
		Risks         *[]RiskCandidate        `json:"risks"`
		Opportunities *[]OpportunityCandidate `json:"opportunities"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Result{}, false
	}
	if parsed.Risks == nil || parsed.Opportunities == nil {
		return Result{}, false
	}
	result := Result{Risks: *parsed.Risks, Opportunities: *parsed.Opportunities}
	for i := range result.Risks {
		result.Risks[i].Severity = normalizeSeverity(result.Risks[i].Severity)
	}
	return result, true
}

func parseRisksResponse(text string) ([]RiskCandidate, bool) {
	raw, ok := extractJSON(text)
	if !ok {
		return nil, false
	}
	var parsed struct {
		Risks *[]RiskCandidate `json:"risks"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, false
	}
	if parsed.Risks == nil {
		return nil, false
	}
	risks := *parsed.Risks
	for i := range risks {
		risks[i].Severity = normalizeSeverity(risks[i].Severity)
	}
	return risks, true
}

// extractJSON returns the first-brace-to-last-brace span of text.
func extractJSON(text string) ([]byte, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	return []byte(text[start : end+1]), true
}

// normalizeSeverity coerces unknown severities to medium, matching how
// persisted risks default.
func normalizeSeverity(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if models.ValidSeverity(s) {
		return s
	}
	return models.SeverityMedium
}
