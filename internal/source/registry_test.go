package source

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiranshivaraju/chainwatch/pkg/models"
)

// stubConnector is a configurable in-memory connector for registry tests.
type stubConnector struct {
	typ       models.SourceType
	available bool
	records   []models.SignalRecord
	fetchErr  error
	initErr   error

	mu         sync.Mutex
	fetchCalls int
}

func (s *stubConnector) Initialize(_ context.Context) error { return s.initErr }
func (s *stubConnector) Type() models.SourceType            { return s.typ }
func (s *stubConnector) Available(_ context.Context) bool   { return s.available }

func (s *stubConnector) Fetch(_ context.Context, _ Params) ([]models.SignalRecord, error) {
	s.mu.Lock()
	s.fetchCalls++
	s.mu.Unlock()
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return s.records, nil
}

func record(t models.SourceType) models.SignalRecord {
	return models.SignalRecord{
		SourceType: t,
		CapturedAt: time.Now().UTC(),
		Payload:    map[string]any{"k": "v"},
	}
}

func TestFetchByTypes_IsolatesFailingSource(t *testing.T) {
	healthy := &stubConnector{
		typ:       models.SourceWeather,
		available: true,
		records:   []models.SignalRecord{record(models.SourceWeather), record(models.SourceWeather)},
	}
	failing := &stubConnector{
		typ:       models.SourceNews,
		available: true,
		fetchErr:  errors.New("news api exploded"),
	}

	r := NewRegistry(context.Background(), healthy, failing)
	results := r.FetchByTypes(context.Background(), []models.SourceType{models.SourceWeather, models.SourceNews}, Params{})

	require.Len(t, results, 2)
	assert.Len(t, results[models.SourceWeather], 2)
	assert.Empty(t, results[models.SourceNews])
}

func TestFetchByTypes_UnknownTypeYieldsEmptyList(t *testing.T) {
	r := NewRegistry(context.Background())
	results := r.FetchByTypes(context.Background(), []models.SourceType{models.SourceMarket}, Params{})

	require.Contains(t, results, models.SourceMarket)
	assert.NotNil(t, results[models.SourceMarket])
	assert.Empty(t, results[models.SourceMarket])
}

func TestFetchByTypes_UnavailableSourceSkipped(t *testing.T) {
	down := &stubConnector{
		typ:       models.SourceShipping,
		available: false,
		records:   []models.SignalRecord{record(models.SourceShipping)},
	}

	r := NewRegistry(context.Background(), down)
	results := r.FetchByTypes(context.Background(), []models.SourceType{models.SourceShipping}, Params{})

	assert.Empty(t, results[models.SourceShipping])
	assert.Zero(t, down.fetchCalls)
}

func TestFetchByTypes_InitErrorDoesNotUnregister(t *testing.T) {
	flaky := &stubConnector{
		typ:       models.SourceTraffic,
		available: true,
		initErr:   errors.New("warmup failed"),
		records:   []models.SignalRecord{record(models.SourceTraffic)},
	}

	r := NewRegistry(context.Background(), flaky)
	results := r.FetchByTypes(context.Background(), []models.SourceType{models.SourceTraffic}, Params{})

	assert.Len(t, results[models.SourceTraffic], 1)
}

func TestFetchByTypes_ConcurrentRequestsPreserveEveryType(t *testing.T) {
	types := []models.SourceType{
		models.SourceWeather, models.SourceNews, models.SourceTraffic,
		models.SourceMarket, models.SourceShipping,
	}
	connectors := make([]Connector, 0, len(types))
	for _, typ := range types {
		connectors = append(connectors, &stubConnector{
			typ:       typ,
			available: true,
			records:   []models.SignalRecord{record(typ)},
		})
	}

	r := NewRegistry(context.Background(), connectors...)
	results := r.FetchByTypes(context.Background(), types, Params{})

	require.Len(t, results, len(types))
	for _, typ := range types {
		assert.Len(t, results[typ], 1, "type %s", typ)
	}
}

func TestBuiltinConnectors_ProduceRecordsForParams(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	params := Params{
		Cities:      []string{"Chennai", "Pune"},
		Commodities: []string{"steel", "copper"},
		Routes:      []Route{{Origin: "Chennai", Destination: "Pune"}},
		Keywords:    []string{"steel"},
	}

	tests := []struct {
		conn Connector
		want int
	}{
		{NewWeatherConnector(rng), 2},
		{NewNewsConnector(rng), 1},
		{NewTrafficConnector(rng), 1},
		{NewMarketConnector(rng), 2},
		{NewShippingConnector(rng), 1},
	}
	for _, tc := range tests {
		records, err := tc.conn.Fetch(context.Background(), params)
		require.NoError(t, err, "connector %s", tc.conn.Type())
		assert.Len(t, records, tc.want, "connector %s", tc.conn.Type())
		for _, rec := range records {
			assert.Equal(t, tc.conn.Type(), rec.SourceType)
			assert.False(t, rec.CapturedAt.IsZero())
			assert.NotEmpty(t, rec.Payload)
		}
	}
}

func TestShippingConnector_DisruptedPayloadShape(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	conn := NewShippingConnector(rng)

	// Enough routes that at least one disrupted and one normal record appear.
	routes := make([]Route, 20)
	for i := range routes {
		routes[i] = Route{Origin: "A", Destination: "B"}
	}
	records, err := conn.Fetch(context.Background(), Params{Routes: routes})
	require.NoError(t, err)

	var sawDisrupted, sawNormal bool
	for _, rec := range records {
		switch rec.Payload["status"] {
		case "disrupted":
			sawDisrupted = true
			assert.Contains(t, rec.Payload, "disruptionReason")
			assert.Greater(t, rec.Payload["delayDays"].(float64), 0.0)
		case "normal":
			sawNormal = true
			assert.Equal(t, 0.0, rec.Payload["delayDays"])
		}
	}
	assert.True(t, sawDisrupted)
	assert.True(t, sawNormal)
}
