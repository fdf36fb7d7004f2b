package plan

import (
	"fmt"
	"strings"

	"github.com/kiranshivaraju/chainwatch/pkg/models"
)

const planResponseShape = `Return ONLY a valid JSON object:
{ "title": "...", "description": "...", "actions": ["...", "..."] }
Provide 4-6 concrete, actionable steps.`

func buildRiskPlanPrompt(risk *models.Risk) string {
	return fmt.Sprintf(`You are a supply chain operations expert. Create a mitigation plan for this risk:

Title: %s
Description: %s
Severity: %s
Affected region: %s
Estimated impact: %s

%s`,
		risk.Title, risk.Description, risk.Severity,
		strOrNone(risk.AffectedRegion), strOrNone(risk.EstimatedImpact),
		planResponseShape)
}

// buildCombinedPlanPrompt lists the supplier's risks most severe first so the
// backend prioritizes accordingly.
func buildCombinedPlanPrompt(supplier string, risks []*models.Risk) string {
	var b strings.Builder
	for i, r := range risks {
		fmt.Fprintf(&b, "%d. [%s] %s: %s\n", i+1, r.Severity, r.Title, r.Description)
	}
	return fmt.Sprintf(`You are a supply chain operations expert. Supplier %q is affected by %d concurrent risk(s):

%s
Create ONE unified contingency plan that addresses all of them together.

%s`,
		supplier, len(risks), b.String(), planResponseShape)
}

func buildOpportunityPlanPrompt(opp *models.Opportunity) string {
	return fmt.Sprintf(`You are a supply chain strategy expert. Create an action plan to capture this opportunity:

Title: %s
Description: %s
Type: %s
Potential benefit: %s

%s`,
		opp.Title, opp.Description, opp.Type,
		strOrNone(opp.PotentialBenefit), planResponseShape)
}

func strOrNone(s *string) string {
	if s == nil || *s == "" {
		return "None"
	}
	return *s
}
