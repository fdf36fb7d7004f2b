package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiranshivaraju/chainwatch/pkg/models"
)

func TestRuleAnalyzeItemWeatherStorm(t *testing.T) {
	payload := map[string]any{
		"city":      "Chennai",
		"country":   "IN",
		"condition": "Storm",
	}

	result := ruleAnalyzeItem(models.SourceWeather, payload)
	require.Len(t, result.Risks, 1)
	assert.Empty(t, result.Opportunities)

	risk := result.Risks[0]
	assert.Equal(t, "Weather Alert: Storm in Chennai", risk.Title)
	assert.Equal(t, models.SeverityHigh, risk.Severity)
	assert.Equal(t, "Chennai, IN", risk.AffectedRegion)
	assert.Equal(t, "Potential delays in shipping", risk.EstimatedImpact)
	assert.Equal(t, float64(50000), risk.EstimatedCost)
}

func TestRuleAnalyzeItemWeatherClear(t *testing.T) {
	payload := map[string]any{"city": "Chennai", "country": "IN", "condition": "Clear"}
	result := ruleAnalyzeItem(models.SourceWeather, payload)
	assert.Empty(t, result.Risks)
	assert.Empty(t, result.Opportunities)
}

func TestRuleAnalyzeItemNewsKeywords(t *testing.T) {
	for _, title := range []string{
		"Major port closure announced",
		"Shipping delay hits electronics",
		"Factory disruption in Taiwan",
	} {
		result := ruleAnalyzeItem(models.SourceNews, map[string]any{"title": title})
		require.Len(t, result.Risks, 1, "title %q", title)
		assert.Equal(t, "News Alert: "+title, result.Risks[0].Title)
		assert.Equal(t, models.SeverityMedium, result.Risks[0].Severity)
		assert.Equal(t, float64(30000), result.Risks[0].EstimatedCost)
	}

	result := ruleAnalyzeItem(models.SourceNews, map[string]any{"title": "Quarterly earnings beat estimates"})
	assert.Empty(t, result.Risks)
}

func TestRuleAnalyzeItemNewsDescriptionFallback(t *testing.T) {
	result := ruleAnalyzeItem(models.SourceNews, map[string]any{"title": "Port closure"})
	require.Len(t, result.Risks, 1)
	assert.Equal(t, "Supply chain disruption detected", result.Risks[0].Description)
}

func TestRuleAnalyzeItemTraffic(t *testing.T) {
	result := ruleAnalyzeItem(models.SourceTraffic, map[string]any{
		"origin":          "Pune",
		"destination":     "Mumbai",
		"congestionLevel": "heavy",
		"estimatedDelay":  float64(95),
	})
	require.Len(t, result.Risks, 1)
	risk := result.Risks[0]
	assert.Equal(t, "Traffic Delay: Pune to Mumbai", risk.Title)
	assert.Equal(t, "Pune - Mumbai", risk.AffectedRegion)
	assert.Equal(t, "Transportation delay of 95 minutes", risk.EstimatedImpact)
	assert.Equal(t, float64(10000), risk.EstimatedCost)

	// severe congestion triggers even below the delay threshold
	result = ruleAnalyzeItem(models.SourceTraffic, map[string]any{
		"origin": "A", "destination": "B",
		"congestionLevel": "severe", "estimatedDelay": float64(20),
	})
	assert.Len(t, result.Risks, 1)

	result = ruleAnalyzeItem(models.SourceTraffic, map[string]any{
		"origin": "A", "destination": "B",
		"congestionLevel": "low", "estimatedDelay": float64(20),
	})
	assert.Empty(t, result.Risks)
}

func TestRuleAnalyzeItemMarketDrop(t *testing.T) {
	result := ruleAnalyzeItem(models.SourceMarket, map[string]any{
		"commodity":          "copper",
		"priceChange":        float64(-8),
		"priceChangePercent": float64(-6.2),
	})
	require.Len(t, result.Opportunities, 1)
	assert.Empty(t, result.Risks)

	opp := result.Opportunities[0]
	assert.Equal(t, "Price Drop Opportunity: copper", opp.Title)
	assert.Equal(t, models.OpportunityCostSaving, opp.Type)
	assert.Equal(t, "Potential cost savings on copper procurement", opp.PotentialBenefit)
	assert.Equal(t, float64(8000), opp.EstimatedValue)
}

func TestRuleAnalyzeItemMarketSmallDrop(t *testing.T) {
	result := ruleAnalyzeItem(models.SourceMarket, map[string]any{
		"commodity":          "steel",
		"priceChange":        float64(-2),
		"priceChangePercent": float64(-3),
	})
	assert.Empty(t, result.Opportunities)
}

func TestRuleAnalyzeRisksOnlyGlobal(t *testing.T) {
	risks := ruleAnalyzeRisksOnly(map[string]any{
		"title":       "Raw materials shortage threatens automakers worldwide",
		"description": "Analysts warn of a prolonged component shortage.",
	}, ContextGlobalRisk)
	require.Len(t, risks, 1)

	risk := risks[0]
	assert.Equal(t, "Global risk: Raw materials shortage threatens automakers worldwide", risk.Title)
	assert.Equal(t, models.SeverityMedium, risk.Severity)
	assert.Equal(t, "Global", risk.AffectedRegion)
	assert.Equal(t, float64(50000), risk.EstimatedCost)

	risks = ruleAnalyzeRisksOnly(map[string]any{"title": "Markets rally on strong earnings"}, ContextGlobalRisk)
	assert.Empty(t, risks)
}

func TestRuleAnalyzeRisksOnlyGlobalTruncatesTitle(t *testing.T) {
	long := "Logistics crisis deepens as carriers cancel sailings across every major trade lane"
	risks := ruleAnalyzeRisksOnly(map[string]any{"title": long}, ContextGlobalRisk)
	require.Len(t, risks, 1)
	assert.Equal(t, "Global risk: "+long[:60], risks[0].Title)
}

func TestRuleAnalyzeRisksOnlyShipping(t *testing.T) {
	risks := ruleAnalyzeRisksOnly(map[string]any{
		"origin":           "Shanghai",
		"destination":      "Los Angeles",
		"status":           "disrupted",
		"delayDays":        float64(9),
		"disruptionReason": "port_congestion",
	}, ContextShippingRoutes)
	require.Len(t, risks, 1)

	risk := risks[0]
	assert.Equal(t, "Shipping disruption: Shanghai → Los Angeles", risk.Title)
	assert.Equal(t, "Route disruption (disrupted). port_congestion. Delay: 9 days.", risk.Description)
	assert.Equal(t, models.SeverityHigh, risk.Severity)
	assert.Equal(t, "Shanghai - Los Angeles", risk.AffectedRegion)
	assert.Equal(t, float64(25000), risk.EstimatedCost)
}

func TestRuleAnalyzeRisksOnlyShippingMediumAndDefaults(t *testing.T) {
	risks := ruleAnalyzeRisksOnly(map[string]any{
		"origin":      "Rotterdam",
		"destination": "Singapore",
		"routeStatus": "delayed",
	}, ContextShippingRoutes)
	require.Len(t, risks, 1)
	assert.Equal(t, models.SeverityMedium, risks[0].Severity)
	assert.Equal(t, "Route disruption (delayed). Unknown. Delay: ? days.", risks[0].Description)

	risks = ruleAnalyzeRisksOnly(map[string]any{
		"origin": "Rotterdam", "destination": "Singapore", "status": "normal",
	}, ContextShippingRoutes)
	assert.Empty(t, risks)
}

func TestRuleAnalyzeRisksOnlyDeterministic(t *testing.T) {
	payload := map[string]any{
		"origin": "Shanghai", "destination": "Tokyo",
		"status": "disrupted", "delayDays": float64(3),
		"disruptionReason": "weather",
	}
	first := ruleAnalyzeRisksOnly(payload, ContextShippingRoutes)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ruleAnalyzeRisksOnly(payload, ContextShippingRoutes))
	}
}
