// Package score aggregates detected risks into a 0-100 tenant risk score.
package score

import (
	"math"

	"github.com/kiranshivaraju/chainwatch/pkg/models"
)

// severityWeights maps each severity to its contribution. Unknown severities
// are counted under their own key but weighted as medium.
var severityWeights = map[string]float64{
	models.SeverityCritical: 4,
	models.SeverityHigh:     3,
	models.SeverityMedium:   2,
	models.SeverityLow:      1,
}

const unknownSeverityWeight = 2

// Level bands for a 0-100 score.
const (
	LevelLow      = "LOW"
	LevelMedium   = "MEDIUM"
	LevelHigh     = "HIGH"
	LevelCritical = "CRITICAL"
)

// Summary is the computed aggregate before persistence.
type Summary struct {
	Overall        float64
	Breakdown      map[string]float64
	SeverityCounts map[string]int
}

// Compute aggregates risks into an overall score, a per-source breakdown and
// severity counts. An empty input yields a zero score with empty, non-nil
// maps. The overall score is the severity-weighted mean scaled to 0-100: a
// single medium risk scores 50, an all-critical set scores 100.
func Compute(risks []*models.Risk) Summary {
	summary := Summary{
		Breakdown:      make(map[string]float64),
		SeverityCounts: make(map[string]int),
	}
	if len(risks) == 0 {
		return summary
	}

	var weightedSum float64
	for _, r := range risks {
		weight, ok := severityWeights[r.Severity]
		if !ok {
			weight = unknownSeverityWeight
		}
		weightedSum += weight
		summary.SeverityCounts[r.Severity]++
		summary.Breakdown[r.SourceType] += weight
	}

	overall := weightedSum / float64(len(risks)) * 25
	summary.Overall = math.Round(math.Min(100, overall))
	return summary
}

// Level maps a 0-100 score to its band.
func Level(overall float64) string {
	switch {
	case overall <= 25:
		return LevelLow
	case overall <= 50:
		return LevelMedium
	case overall <= 75:
		return LevelHigh
	default:
		return LevelCritical
	}
}
