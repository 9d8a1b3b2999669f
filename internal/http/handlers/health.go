package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/hongminglow/pizza-be/internal/http/respond"
	"github.com/hongminglow/pizza-be/internal/storage"
)

const probeTimeout = 2 * time.Second

// HealthHandler returns uptime and the reachability of backing services.
type HealthHandler struct {
	startedAt time.Time
	version   string
	probes    map[string]storage.Pinger
	log       *zap.Logger
}

// NewHealthHandler creates a health endpoint handler. probes maps a dependency
// name to its backend; nil entries are skipped. Probe failures are logged and
// reported to clients only as "unavailable".
func NewHealthHandler(startedAt time.Time, version string, probes map[string]storage.Pinger, log *zap.Logger) *HealthHandler {
	return &HealthHandler{startedAt: startedAt, version: version, probes: probes, log: log}
}

// Register wires the handler into a ServeMux.
func (h *HealthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.handle)
}

func (h *HealthHandler) handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	names := make([]string, 0, len(h.probes))
	for name, p := range h.probes {
		if p != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	status, code := "ok", http.StatusOK
	checks := make(map[string]string, len(names))
	for _, name := range names {
		if err := h.probes[name].Ping(ctx); err != nil {
			h.log.Warn("health probe failed", zap.String("dependency", name), zap.Error(err))
			checks[name] = "unavailable"
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	respond.JSON(w, code, map[string]any{
		"status":  status,
		"version": h.version,
		"uptime":  time.Since(h.startedAt).Truncate(time.Second).String(),
		"checks":  checks,
	})
}
