package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kiranshivaraju/chainwatch/pkg/models"
)

// buildItemPrompt serializes the record payload and, when a scope is given,
// adds instruction context restricting output relevance to the tenant's
// suppliers, locations, and commodities.
func buildItemPrompt(sourceType models.SourceType, payload map[string]any, scope *models.TenantScope) string {
	scopeCtx := ""
	if scope != nil {
		locations := append(append(append([]string{}, scope.Cities...), scope.Regions...), scope.Countries...)
		scopeCtx = fmt.Sprintf(`
You are analyzing data for OEM: %q.
Relevant suppliers: %s.
Relevant locations: %s.
Relevant commodities: %s.
Only report risks and opportunities relevant to this OEM's supply chain.
`,
			scope.TenantName,
			joinOrNone(scope.SupplierNames),
			joinOrNone(locations),
			joinOrNone(scope.Commodities),
		)
	}

	return fmt.Sprintf(`You are a supply chain risk intelligence agent. Analyze the following %s data and identify:
1. Potential risks (severity: low, medium, high, critical)
2. Potential opportunities for optimization or cost savings
%s
Data:
%s

Return ONLY a valid JSON object:
{
  "risks": [
    { "title": "...", "description": "...", "severity": "low|medium|high|critical", "affectedRegion": "...", "affectedSupplier": "...", "estimatedImpact": "...", "estimatedCost": 0 }
  ],
  "opportunities": [
    { "title": "...", "description": "...", "type": "cost_saving|time_saving|quality_improvement|market_expansion|supplier_diversification", "affectedRegion": "...", "potentialBenefit": "...", "estimatedValue": 0 }
  ]
}
If none found, return empty arrays. Be specific and actionable.`,
		sourceType, scopeCtx, marshalPayload(payload))
}

func buildGlobalRiskPrompt(payload map[string]any) string {
	return fmt.Sprintf(`You are a global supply chain risk analyst. Assess the following for GLOBAL supply chain risk (geopolitical, trade, raw materials, pandemics, climate, logistics).

Data:
%s

Return ONLY a valid JSON object:
{ "risks": [ { "title": "...", "description": "...", "severity": "low|medium|high|critical", "affectedRegion": "...", "affectedSupplier": null, "estimatedImpact": "...", "estimatedCost": 0 } ] }
If no material risks, return { "risks": [] }. Be concise.`, marshalPayload(payload))
}

func buildShippingPrompt(payload map[string]any) string {
	return fmt.Sprintf(`You are a shipping and logistics risk analyst. Analyze the following route/transport data for supply chain disruption risks.

Data:
%s

Return ONLY a valid JSON object:
{ "risks": [ { "title": "...", "description": "...", "severity": "low|medium|high|critical", "affectedRegion": "...", "affectedSupplier": null, "estimatedImpact": "...", "estimatedCost": 0 } ] }
If no risks, return { "risks": [] }. Be specific to shipping and logistics.`, marshalPayload(payload))
}

func marshalPayload(payload map[string]any) string {
	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(raw)
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}
