// Package metrics exposes Prometheus instrumentation for the agent pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chainwatch_agent_cycles_total",
		Help: "Completed agent cycles by result.",
	}, []string{"result"})

	CycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "chainwatch_agent_cycle_duration_seconds",
		Help:    "Wall-clock duration of a full agent cycle.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	RisksDetected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chainwatch_risks_detected_total",
		Help: "Risks persisted by the agent.",
	})

	OpportunitiesIdentified = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chainwatch_opportunities_identified_total",
		Help: "Opportunities persisted by the agent.",
	})

	PlansGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chainwatch_plans_generated_total",
		Help: "Mitigation plans persisted by the agent.",
	})

	LLMFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chainwatch_llm_fallbacks_total",
		Help: "Times the deterministic fallback replaced the LLM backend.",
	}, []string{"stage"})
)

// Handler serves the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
