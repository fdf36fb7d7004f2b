// Package models contains shared data models used across the Chainwatch codebase.
package models

import "time"

// SourceType identifies an external signal domain.
type SourceType string

const (
	SourceWeather  SourceType = "weather"
	SourceNews     SourceType = "news"
	SourceTraffic  SourceType = "traffic"
	SourceMarket   SourceType = "market"
	SourceShipping SourceType = "shipping"

	// SourceGlobalNews tags risks produced from the tenant-independent
	// macro news sweep; the underlying connector is still "news".
	SourceGlobalNews SourceType = "global_news"
)

// SignalRecord is one unit of raw data produced by a source connector.
// It is immutable once produced and only persisted as an embedded snapshot
// on a Risk or Opportunity.
type SignalRecord struct {
	SourceType SourceType     `json:"source_type"`
	CapturedAt time.Time      `json:"captured_at"`
	Payload    map[string]any `json:"payload"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}
