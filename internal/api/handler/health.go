package handler

import (
	"context"
	"net/http"

	"github.com/kiranshivaraju/chainwatch/internal/api/response"
)

// Pinger is anything with a liveness check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewHealthHandler reports component health for GET /api/v1/health. The
// endpoint stays 200 as long as the process is serving; degraded
// dependencies are reported in the body.
func NewHealthHandler(db, cache Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]string{
			"database": pingStatus(r.Context(), db),
			"cache":    pingStatus(r.Context(), cache),
		}

		status := "ok"
		for _, s := range components {
			if s != "ok" {
				status = "degraded"
				break
			}
		}

		response.JSON(w, map[string]any{
			"status":     status,
			"components": components,
		})
	}
}

func pingStatus(ctx context.Context, p Pinger) string {
	if p == nil {
		return "not configured"
	}
	if err := p.Ping(ctx); err != nil {
		return "unreachable"
	}
	return "ok"
}
