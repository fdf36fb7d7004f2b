package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/kiranshivaraju/chainwatch/internal/agent"
	"github.com/kiranshivaraju/chainwatch/internal/api/response"
	"github.com/kiranshivaraju/chainwatch/internal/cache"
	"github.com/kiranshivaraju/chainwatch/pkg/models"
)

const agentStatusTTL = 5 * time.Second

// AgentController is the slice of the coordinator the API needs.
type AgentController interface {
	Trigger(ctx context.Context) error
	Running() bool
}

// AgentStatusStore reads the singleton agent status record.
type AgentStatusStore interface {
	GetAgentStatus(ctx context.Context) (*models.AgentStatus, error)
}

// NewAgentTriggerHandler starts a monitoring cycle for POST /api/v1/agent/trigger.
// The cycle runs in the background; the response is an immediate ack.
func NewAgentTriggerHandler(ctrl AgentController) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := ctrl.Trigger(r.Context()); err != nil {
			if errors.Is(err, agent.ErrRunInProgress) {
				response.Error(w, http.StatusConflict, "RUN_IN_PROGRESS",
					"A monitoring cycle is already running", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to trigger monitoring cycle", nil)
			return
		}
		response.Accepted(w, map[string]string{"status": "triggered"})
	}
}

// NewAgentStatusHandler serves GET /api/v1/agent/status. Status polls are
// frequent while a cycle runs, so reads go through a short-lived cache.
func NewAgentStatusHandler(st AgentStatusStore, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c != nil {
			if raw, ok, err := c.Get(r.Context(), cache.AgentStatusKey()); err == nil && ok {
				var status models.AgentStatus
				if json.Unmarshal(raw, &status) == nil {
					response.JSON(w, &status)
					return
				}
			}
		}

		status, err := st.GetAgentStatus(r.Context())
		if err != nil {
			storeError(w, err, "Agent status not found")
			return
		}

		if c != nil {
			if raw, err := json.Marshal(status); err == nil {
				c.Set(r.Context(), cache.AgentStatusKey(), raw, agentStatusTTL)
			}
		}
		response.JSON(w, status)
	}
}
