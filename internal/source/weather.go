package source

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/kiranshivaraju/chainwatch/pkg/models"
)

var weatherConditions = []string{"Clear", "Clouds", "Rain", "Storm", "Fog", "Snow"}

// WeatherConnector synthesizes current-conditions records for a city list.
type WeatherConnector struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewWeatherConnector creates a weather connector. A nil rng gets a
// time-seeded source; tests pass a fixed seed for reproducible data.
func NewWeatherConnector(rng *rand.Rand) *WeatherConnector {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &WeatherConnector{rng: rng, now: time.Now}
}

func (c *WeatherConnector) Initialize(_ context.Context) error { return nil }

func (c *WeatherConnector) Type() models.SourceType { return models.SourceWeather }

func (c *WeatherConnector) Available(_ context.Context) bool { return true }

func (c *WeatherConnector) Fetch(_ context.Context, params Params) ([]models.SignalRecord, error) {
	cities := params.Cities
	if len(cities) == 0 {
		cities = []string{"New York", "London", "Tokyo"}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	records := make([]models.SignalRecord, 0, len(cities))
	for _, city := range cities {
		cond := weatherConditions[c.rng.Intn(len(weatherConditions))]
		records = append(records, models.SignalRecord{
			SourceType: models.SourceWeather,
			CapturedAt: c.now().UTC(),
			Payload: map[string]any{
				"city":        city,
				"country":     "",
				"condition":   cond,
				"temperature": float64(c.rng.Intn(45) - 5),
				"humidity":    float64(c.rng.Intn(60) + 30),
				"windSpeed":   float64(c.rng.Intn(80)),
			},
		})
	}
	return records, nil
}

var _ Connector = (*WeatherConnector)(nil)
