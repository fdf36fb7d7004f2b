package source

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/kiranshivaraju/chainwatch/pkg/models"
)

var congestionLevels = []string{"low", "moderate", "heavy", "severe"}

// TrafficConnector synthesizes road congestion records for a route list.
type TrafficConnector struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

func NewTrafficConnector(rng *rand.Rand) *TrafficConnector {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &TrafficConnector{rng: rng, now: time.Now}
}

func (c *TrafficConnector) Initialize(_ context.Context) error { return nil }

func (c *TrafficConnector) Type() models.SourceType { return models.SourceTraffic }

func (c *TrafficConnector) Available(_ context.Context) bool { return true }

func (c *TrafficConnector) Fetch(_ context.Context, params Params) ([]models.SignalRecord, error) {
	routes := params.Routes
	if len(routes) == 0 {
		routes = []Route{{Origin: "New York", Destination: "Los Angeles"}}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	records := make([]models.SignalRecord, 0, len(routes))
	for _, route := range routes {
		level := congestionLevels[c.rng.Intn(len(congestionLevels))]
		delay := c.rng.Intn(30)
		if level == "heavy" || level == "severe" {
			delay = 45 + c.rng.Intn(120)
		}
		records = append(records, models.SignalRecord{
			SourceType: models.SourceTraffic,
			CapturedAt: c.now().UTC(),
			Payload: map[string]any{
				"origin":          route.Origin,
				"destination":     route.Destination,
				"congestionLevel": level,
				"estimatedDelay":  float64(delay),
			},
		})
	}
	return records, nil
}

var _ Connector = (*TrafficConnector)(nil)
