package source

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/kiranshivaraju/chainwatch/pkg/models"
)

var disruptionReasons = []string{
	"port_congestion", "weather", "labor_strike", "canal_delay", "vessel_shortage",
}

// ShippingConnector synthesizes sea-route status records.
type ShippingConnector struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

func NewShippingConnector(rng *rand.Rand) *ShippingConnector {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &ShippingConnector{rng: rng, now: time.Now}
}

func (c *ShippingConnector) Initialize(_ context.Context) error { return nil }

func (c *ShippingConnector) Type() models.SourceType { return models.SourceShipping }

func (c *ShippingConnector) Available(_ context.Context) bool { return true }

func (c *ShippingConnector) Fetch(_ context.Context, params Params) ([]models.SignalRecord, error) {
	routes := params.Routes
	if len(routes) == 0 {
		routes = []Route{
			{Origin: "Shanghai", Destination: "Los Angeles"},
			{Origin: "Rotterdam", Destination: "Singapore"},
			{Origin: "Singapore", Destination: "Tokyo"},
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	records := make([]models.SignalRecord, 0, len(routes))
	for _, route := range routes {
		disrupted := c.rng.Float64() > 0.5
		status := "normal"
		reason := ""
		delayDays := 0
		if disrupted {
			status = "disrupted"
			reason = disruptionReasons[c.rng.Intn(len(disruptionReasons))]
			delayDays = 1 + c.rng.Intn(14)
		}
		payload := map[string]any{
			"origin":             route.Origin,
			"destination":        route.Destination,
			"route":              fmt.Sprintf("%s - %s", route.Origin, route.Destination),
			"status":             status,
			"delayDays":          float64(delayDays),
			"vesselAvailability": availability(disrupted),
			"portConditions":     portConditions(disrupted),
		}
		if disrupted {
			payload["disruptionReason"] = reason
			payload["estimatedRecoveryDays"] = float64(delayDays + c.rng.Intn(8))
		}
		records = append(records, models.SignalRecord{
			SourceType: models.SourceShipping,
			CapturedAt: c.now().UTC(),
			Payload:    payload,
		})
	}
	return records, nil
}

func availability(disrupted bool) string {
	if disrupted {
		return "low"
	}
	return "normal"
}

func portConditions(disrupted bool) string {
	if disrupted {
		return "congested"
	}
	return "normal"
}

var _ Connector = (*ShippingConnector)(nil)
