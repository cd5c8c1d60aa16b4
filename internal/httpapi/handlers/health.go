package handlers

import (
	"net/http"

	"docraster/internal/httpkit"
)

// Health performs a liveness check of the service.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	health := map[string]any{
		"status":  "ok",
		"service": "docraster",
	}

	if r.URL.Query().Get("deep") == "true" {
		health["storage"] = map[string]any{
			"provider": h.store.Provider(),
		}
		health["auth"] = map[string]any{
			"gate_enabled": h.gate.Enabled(),
		}
	}

	httpkit.WriteJSON(w, http.StatusOK, health)
}
