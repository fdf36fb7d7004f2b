package source

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kiranshivaraju/chainwatch/internal/cache"
	"github.com/kiranshivaraju/chainwatch/pkg/models"
)

// Registry holds all connectors keyed by source type and dispatches fetch
// requests to a requested subset of types. One failing source never aborts
// collection for the others; every failure is downgraded to an empty list
// for that type only. There are no retries at this layer; sources are
// best-effort and a future cycle will try again.
type Registry struct {
	connectors map[models.SourceType]Connector

	// Optional Redis-backed response cache. Nil disables caching; cache
	// errors are non-fatal and fall through to a live fetch.
	cache    cache.Cache
	cacheTTL time.Duration
}

// NewRegistry builds a registry over the given connectors, initializing each.
// A connector whose Initialize fails is still registered; its availability
// check decides at fetch time.
func NewRegistry(ctx context.Context, connectors ...Connector) *Registry {
	r := &Registry{connectors: make(map[models.SourceType]Connector, len(connectors))}
	for _, c := range connectors {
		if err := c.Initialize(ctx); err != nil {
			slog.Warn("connector initialization failed", "source", c.Type(), "error", err)
		}
		r.connectors[c.Type()] = c
	}
	return r
}

// WithCache enables short-TTL response caching of fetch results.
func (r *Registry) WithCache(c cache.Cache, ttl time.Duration) *Registry {
	r.cache = c
	r.cacheTTL = ttl
	return r
}

// Types returns the registered source types.
func (r *Registry) Types() []models.SourceType {
	types := make([]models.SourceType, 0, len(r.connectors))
	for t := range r.connectors {
		types = append(types, t)
	}
	return types
}

// FetchByTypes fetches signal records for each requested type concurrently.
// The returned map always contains an entry for every requested type; an
// unknown, unavailable, or failing source yields an empty slice.
func (r *Registry) FetchByTypes(ctx context.Context, types []models.SourceType, params Params) map[models.SourceType][]models.SignalRecord {
	results := make(map[models.SourceType][]models.SignalRecord, len(types))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, t := range types {
		wg.Add(1)
		go func(t models.SourceType) {
			defer wg.Done()
			records := r.fetchOne(ctx, t, params)
			mu.Lock()
			results[t] = records
			mu.Unlock()
		}(t)
	}
	wg.Wait()

	return results
}

// fetchOne resolves a single source type, absorbing every failure mode.
func (r *Registry) fetchOne(ctx context.Context, t models.SourceType, params Params) []models.SignalRecord {
	conn, ok := r.connectors[t]
	if !ok {
		slog.Info("no connector registered", "source", t)
		return []models.SignalRecord{}
	}

	if cached, ok := r.cachedRecords(ctx, t, params); ok {
		slog.Info("source fetch served from cache", "source", t, "records", len(cached))
		return cached
	}

	if !conn.Available(ctx) {
		slog.Warn("source unavailable, skipping", "source", t)
		return []models.SignalRecord{}
	}

	records, err := conn.Fetch(ctx, params)
	if err != nil {
		slog.Warn("source fetch failed, continuing without it", "source", t, "error", err)
		return []models.SignalRecord{}
	}
	if records == nil {
		records = []models.SignalRecord{}
	}

	slog.Info("source fetch ok", "source", t, "records", len(records))
	r.storeRecords(ctx, t, params, records)
	return records
}

func (r *Registry) cachedRecords(ctx context.Context, t models.SourceType, params Params) ([]models.SignalRecord, bool) {
	if r.cache == nil {
		return nil, false
	}
	raw, found, err := r.cache.Get(ctx, cache.SourceFetchKey(string(t), paramsHash(params)))
	if err != nil || !found {
		return nil, false
	}
	var records []models.SignalRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, false
	}
	return records, true
}

func (r *Registry) storeRecords(ctx context.Context, t models.SourceType, params Params, records []models.SignalRecord) {
	if r.cache == nil || len(records) == 0 {
		return
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, cache.SourceFetchKey(string(t), paramsHash(params)), raw, r.cacheTTL); err != nil {
		slog.Warn("source cache write failed", "source", t, "error", err)
	}
}

// paramsHash produces a stable key component for a Params value.
func paramsHash(params Params) string {
	raw, _ := json.Marshal(params)
	return fmt.Sprintf("%x", sha256.Sum256(raw))[:16]
}
