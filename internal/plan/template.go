package plan

import (
	"fmt"

	"github.com/kiranshivaraju/chainwatch/pkg/models"
)

// Fixed plan templates used whenever no LLM backend produces a usable plan.

func templateRiskPlan(risk *models.Risk) planContent {
	return planContent{
		Title:       fmt.Sprintf("Mitigation Plan: %s", risk.Title),
		Description: fmt.Sprintf("Comprehensive mitigation strategy for %s severity risk", risk.Severity),
		Actions: []string{
			"Assess immediate impact on operations",
			"Contact affected suppliers for status update",
			"Identify alternative suppliers or routes",
			"Implement contingency logistics plan",
			"Monitor situation and update stakeholders",
		},
	}
}

func templateCombinedPlan(supplier string, risks []*models.Risk) planContent {
	return planContent{
		Title:       fmt.Sprintf("Combined Mitigation Plan: %s", supplier),
		Description: fmt.Sprintf("Unified contingency plan for %s addressing %d risk(s).", supplier, len(risks)),
		Actions: []string{
			"Contact supplier for status and expected recovery",
			"Assess impact on production schedule and customer orders",
			"Identify and qualify backup suppliers or routes",
			"Update inventory and safety stock targets",
			"Document and communicate plan to stakeholders",
		},
	}
}

func templateOpportunityPlan(opp *models.Opportunity) planContent {
	return planContent{
		Title:       fmt.Sprintf("Action Plan: %s", opp.Title),
		Description: "Strategic plan to capitalize on identified opportunity",
		Actions: []string{
			"Evaluate opportunity feasibility",
			"Calculate potential ROI",
			"Develop implementation timeline",
			"Secure necessary approvals",
			"Execute opportunity capture plan",
		},
	}
}
