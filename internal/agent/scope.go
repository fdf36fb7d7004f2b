package agent

import (
	"strings"

	"github.com/kiranshivaraju/chainwatch/internal/source"
	"github.com/kiranshivaraju/chainwatch/pkg/models"
)

const maxScopeCities = 10

var defaultCities = []string{"New York", "London", "Tokyo", "Mumbai", "Shanghai"}
var defaultCommodities = []string{"steel", "copper", "oil", "grain", "semiconductors"}
var defaultRoute = source.Route{Origin: "New York", Destination: "Los Angeles"}

var baseKeywords = []string{"supply chain", "manufacturing", "logistics"}

// globalNewsKeywords parameterize the tenant-independent global risk sweep.
var globalNewsKeywords = []string{
	"global supply chain",
	"geopolitical risk",
	"trade disruption",
	"raw materials shortage",
	"logistics crisis",
	"shipping capacity",
}

// BuildScope derives the analysis scope for one tenant from its own profile
// and its registered suppliers. The tenant's own locality comes first in
// every list; all lists are deduplicated preserving insertion order.
func BuildScope(tenant *models.Tenant, suppliers []*models.Supplier) *models.TenantScope {
	scope := &models.TenantScope{
		TenantID:   tenant.ID,
		TenantName: tenant.Name,
	}

	appendDeref(&scope.Locations, tenant.Location)
	appendDeref(&scope.Cities, tenant.City)
	appendDeref(&scope.Countries, tenant.Country)
	appendDeref(&scope.Regions, tenant.Region)

	for _, sp := range suppliers {
		if sp.Name != "" {
			scope.SupplierNames = append(scope.SupplierNames, sp.Name)
		}
		appendDeref(&scope.Locations, sp.Location)
		appendDeref(&scope.Cities, sp.City)
		appendDeref(&scope.Countries, sp.Country)
		appendDeref(&scope.Regions, sp.Region)
		if sp.Commodities != nil {
			scope.Commodities = append(scope.Commodities, splitCommodities(*sp.Commodities)...)
		}
	}

	scope.SupplierNames = dedup(scope.SupplierNames)
	scope.Locations = dedup(scope.Locations)
	scope.Cities = dedup(scope.Cities)
	scope.Countries = dedup(scope.Countries)
	scope.Regions = dedup(scope.Regions)
	scope.Commodities = dedup(scope.Commodities)
	return scope
}

// deriveParams turns a scope into concrete source fetch parameters, filling
// gaps with broad defaults so a sparsely configured tenant still gets a
// meaningful sweep.
func deriveParams(scope *models.TenantScope) source.Params {
	cities := scope.Cities
	if len(cities) == 0 {
		cities = scope.Locations
	}
	if len(cities) > maxScopeCities {
		cities = cities[:maxScopeCities]
	}
	if len(cities) == 0 {
		cities = defaultCities
	}

	commodities := scope.Commodities
	if len(commodities) == 0 {
		commodities = defaultCommodities
	}

	var routes []source.Route
	for _, origin := range cities[1:] {
		if origin == cities[0] {
			continue
		}
		routes = append(routes, source.Route{Origin: origin, Destination: cities[0]})
		if len(routes) == maxScopeCities {
			break
		}
	}
	if len(routes) == 0 {
		routes = []source.Route{defaultRoute}
	}

	keywords := append([]string{}, baseKeywords...)
	for i, c := range scope.Commodities {
		if i == 3 {
			break
		}
		keywords = append(keywords, c)
	}

	return source.Params{
		Cities:      cities,
		Commodities: commodities,
		Routes:      routes,
		Keywords:    keywords,
	}
}

// splitCommodities parses a comma or semicolon separated commodity list.
func splitCommodities(raw string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';'
	}) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func appendDeref(dst *[]string, v *string) {
	if v != nil && strings.TrimSpace(*v) != "" {
		*dst = append(*dst, strings.TrimSpace(*v))
	}
}

func dedup(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	var out []string
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
