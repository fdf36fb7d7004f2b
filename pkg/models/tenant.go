package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant represents an OEM whose supply chain is monitored. Risks,
// opportunities, plans, and scores are scoped to a tenant.
type Tenant struct {
	ID        uuid.UUID `db:"id"         json:"id"`
	Name      string    `db:"name"       json:"name"`
	Location  *string   `db:"location"   json:"location,omitempty"`
	City      *string   `db:"city"       json:"city,omitempty"`
	Country   *string   `db:"country"    json:"country,omitempty"`
	Region    *string   `db:"region"     json:"region,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Supplier is a tenant's upstream vendor. Commodities is a comma or
// semicolon separated list as entered; scope building parses it.
type Supplier struct {
	ID              uuid.UUID `db:"id"                json:"id"`
	TenantID        uuid.UUID `db:"tenant_id"         json:"tenant_id"`
	Name            string    `db:"name"              json:"name"`
	Location        *string   `db:"location"          json:"location,omitempty"`
	City            *string   `db:"city"              json:"city,omitempty"`
	Country         *string   `db:"country"           json:"country,omitempty"`
	Region          *string   `db:"region"            json:"region,omitempty"`
	Commodities     *string   `db:"commodities"       json:"commodities,omitempty"`
	LatestRiskScore *float64  `db:"latest_risk_score" json:"latest_risk_score,omitempty"`
	LatestRiskLevel *string   `db:"latest_risk_level" json:"latest_risk_level,omitempty"`
	CreatedAt       time.Time `db:"created_at"        json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"        json:"updated_at"`
}

// TenantScope is the derived analysis scope for one tenant: everything the
// agent needs to parameterize source fetches and restrict LLM output
// relevance. It is recomputed each run, never persisted. All list fields
// are deduplicated.
type TenantScope struct {
	TenantID      uuid.UUID `json:"tenant_id"`
	TenantName    string    `json:"tenant_name"`
	SupplierNames []string  `json:"supplier_names"`
	Locations     []string  `json:"locations"`
	Cities        []string  `json:"cities"`
	Countries     []string  `json:"countries"`
	Regions       []string  `json:"regions"`
	Commodities   []string  `json:"commodities"`
}
