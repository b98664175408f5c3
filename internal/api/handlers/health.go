package handlers

import (
	"net/http"

	"water-route-service/internal/ports"
)

// HealthHandler serves liveness. With ?deep=1 it also runs the optimizer
// probe and reports the result; the status code stays 200 either way since
// the local fallback keeps the service usable without the optimizer.
type HealthHandler struct {
	Prober ports.Prober
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	res := map[string]any{"status": "ok"}
	if r.URL.Query().Get("deep") == "1" && h.Prober != nil {
		report := h.Prober.Probe(r.Context())
		optimizer := map[string]any{
			"reachable":   report.Reachable,
			"endpoint":    report.Endpoint,
			"duration_ms": report.Duration.Milliseconds(),
		}
		if report.Reason != "" {
			optimizer["reason"] = report.Reason
		}
		res["optimizer"] = optimizer
	}
	writeJSON(w, r, http.StatusOK, res)
}
