package analysis

import (
	"fmt"
	"strings"

	"github.com/kiranshivaraju/chainwatch/pkg/models"
)

// Deterministic rule engine. These rules are the correctness baseline when
// no LLM backend is configured; identical input must always produce
// identical output.

const (
	weatherRiskCost    = 50000
	newsRiskCost       = 30000
	trafficRiskCost    = 10000
	globalNewsRiskCost = 50000
	shippingRiskCost   = 25000

	marketOpportunityMultiplier = 1000
	marketDropThresholdPct      = -5
	trafficDelayThresholdMin    = 60
	shippingHighSeverityDays    = 7
)

func ruleAnalyzeItem(sourceType models.SourceType, payload map[string]any) Result {
	var result Result
	switch sourceType {
	case models.SourceWeather:
		cond := str(payload, "condition")
		if cond == "Storm" || cond == "Rain" {
			city := strOr(payload, "city", "Unknown")
			country := str(payload, "country")
			result.Risks = append(result.Risks, RiskCandidate{
				Title:           fmt.Sprintf("Weather Alert: %s in %s", cond, city),
				Description:     fmt.Sprintf("Severe weather in %s, %s. May impact shipping and logistics.", city, country),
				Severity:        models.SeverityHigh,
				AffectedRegion:  fmt.Sprintf("%s, %s", city, country),
				EstimatedImpact: "Potential delays in shipping",
				EstimatedCost:   weatherRiskCost,
			})
		}
	case models.SourceNews:
		title := str(payload, "title")
		lower := strings.ToLower(title)
		if containsAny(lower, "disruption", "closure", "delay") {
			result.Risks = append(result.Risks, RiskCandidate{
				Title:           fmt.Sprintf("News Alert: %s", title),
				Description:     strOr(payload, "description", "Supply chain disruption detected"),
				Severity:        models.SeverityMedium,
				EstimatedImpact: "Potential supply chain impact",
				EstimatedCost:   newsRiskCost,
			})
		}
	case models.SourceTraffic:
		delay := num(payload, "estimatedDelay")
		if delay > trafficDelayThresholdMin || str(payload, "congestionLevel") == "severe" {
			origin := str(payload, "origin")
			dest := str(payload, "destination")
			result.Risks = append(result.Risks, RiskCandidate{
				Title:           fmt.Sprintf("Traffic Delay: %s to %s", origin, dest),
				Description:     fmt.Sprintf("Severe congestion. Estimated delay: %.0f minutes.", delay),
				Severity:        models.SeverityMedium,
				AffectedRegion:  fmt.Sprintf("%s - %s", origin, dest),
				EstimatedImpact: fmt.Sprintf("Transportation delay of %.0f minutes", delay),
				EstimatedCost:   trafficRiskCost,
			})
		}
	case models.SourceMarket:
		if num(payload, "priceChangePercent") < marketDropThresholdPct {
			commodity := str(payload, "commodity")
			change := num(payload, "priceChange")
			if change < 0 {
				change = -change
			}
			result.Opportunities = append(result.Opportunities, OpportunityCandidate{
				Title:            fmt.Sprintf("Price Drop Opportunity: %s", commodity),
				Description:      fmt.Sprintf("Significant price drop for %s. Consider strategic purchasing.", commodity),
				Type:             models.OpportunityCostSaving,
				PotentialBenefit: fmt.Sprintf("Potential cost savings on %s procurement", commodity),
				EstimatedValue:   change * marketOpportunityMultiplier,
			})
		}
	}
	return result
}

func ruleAnalyzeRisksOnly(payload map[string]any, analysisCtx Context) []RiskCandidate {
	switch analysisCtx {
	case ContextGlobalRisk:
		title := str(payload, "title")
		text := title
		if text == "" {
			text = str(payload, "description")
		}
		lower := strings.ToLower(text)
		if lower == "" || !containsAny(lower, "disruption", "crisis", "shortage") {
			return nil
		}
		label := title
		if label == "" {
			label = lower
		}
		return []RiskCandidate{{
			Title:           fmt.Sprintf("Global risk: %s", truncate(label, 60)),
			Description:     strOr(payload, "description", lower),
			Severity:        models.SeverityMedium,
			AffectedRegion:  "Global",
			EstimatedImpact: "Potential global supply chain impact",
			EstimatedCost:   globalNewsRiskCost,
		}}
	case ContextShippingRoutes:
		status := str(payload, "status")
		if status == "" {
			status = str(payload, "routeStatus")
		}
		delayDays := num(payload, "delayDays")
		if status != "disrupted" && status != "delayed" && delayDays <= 0 {
			return nil
		}
		origin := str(payload, "origin")
		dest := str(payload, "destination")
		severity := models.SeverityMedium
		if delayDays > shippingHighSeverityDays {
			severity = models.SeverityHigh
		}
		delayLabel := "?"
		if delayDays > 0 {
			delayLabel = fmt.Sprintf("%.0f", delayDays)
		}
		return []RiskCandidate{{
			Title: fmt.Sprintf("Shipping disruption: %s → %s", origin, dest),
			Description: fmt.Sprintf("Route disruption (%s). %s. Delay: %s days.",
				status, strOr(payload, "disruptionReason", "Unknown"), delayLabel),
			Severity:        severity,
			AffectedRegion:  fmt.Sprintf("%s - %s", origin, dest),
			EstimatedImpact: "Delivery delays and inventory risk",
			EstimatedCost:   shippingRiskCost,
		}}
	}
	return nil
}

// --- payload access helpers ---

func str(payload map[string]any, key string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}

func strOr(payload map[string]any, key, fallback string) string {
	if v := str(payload, key); v != "" {
		return v
	}
	return fallback
}

// num reads a numeric payload field; JSON decoding produces float64 but
// hand-built test payloads may use int.
func num(payload map[string]any, key string) float64 {
	switch v := payload[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
