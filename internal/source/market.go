package source

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/kiranshivaraju/chainwatch/pkg/models"
)

var basePrices = map[string]float64{
	"steel":          700,
	"copper":         9500,
	"oil":            85,
	"grain":          250,
	"semiconductors": 120,
}

// MarketConnector synthesizes commodity price movement records.
type MarketConnector struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

func NewMarketConnector(rng *rand.Rand) *MarketConnector {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &MarketConnector{rng: rng, now: time.Now}
}

func (c *MarketConnector) Initialize(_ context.Context) error { return nil }

func (c *MarketConnector) Type() models.SourceType { return models.SourceMarket }

func (c *MarketConnector) Available(_ context.Context) bool { return true }

func (c *MarketConnector) Fetch(_ context.Context, params Params) ([]models.SignalRecord, error) {
	commodities := params.Commodities
	if len(commodities) == 0 {
		commodities = []string{"steel", "copper", "oil"}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	records := make([]models.SignalRecord, 0, len(commodities))
	for _, commodity := range commodities {
		base, ok := basePrices[commodity]
		if !ok {
			base = 100 + float64(c.rng.Intn(900))
		}
		// Percent change in [-10, +10).
		pct := c.rng.Float64()*20 - 10
		change := math.Round(base*pct) / 100
		records = append(records, models.SignalRecord{
			SourceType: models.SourceMarket,
			CapturedAt: c.now().UTC(),
			Payload: map[string]any{
				"commodity":          commodity,
				"price":              math.Round((base+change)*100) / 100,
				"priceChange":        change,
				"priceChangePercent": math.Round(pct*100) / 100,
				"currency":           "USD",
			},
		})
	}
	return records, nil
}

var _ Connector = (*MarketConnector)(nil)
