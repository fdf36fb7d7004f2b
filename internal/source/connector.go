// Package source defines the signal connector contract and the registry that
// dispatches fetch requests across connectors with per-source failure
// isolation.
package source

import (
	"context"

	"github.com/kiranshivaraju/chainwatch/pkg/models"
)

// Route is an origin/destination pair used by traffic and shipping connectors.
type Route struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

// Params carries the per-cycle fetch parameters derived from a tenant scope.
// Connectors read only the fields they care about.
type Params struct {
	Cities      []string `json:"cities,omitempty"`
	Commodities []string `json:"commodities,omitempty"`
	Routes      []Route  `json:"routes,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
}

// Connector produces timestamped signal records for one external domain.
// Implementations are best-effort: the registry downgrades any failure to an
// empty result set, so connectors should not retry internally.
type Connector interface {
	// Initialize prepares the connector. Called once at registration.
	Initialize(ctx context.Context) error
	// Type returns the source type tag this connector serves.
	Type() models.SourceType
	// Available reports whether the connector can currently serve fetches.
	Available(ctx context.Context) bool
	// Fetch returns zero or more signal records for the given parameters.
	Fetch(ctx context.Context, params Params) ([]models.SignalRecord, error)
}
