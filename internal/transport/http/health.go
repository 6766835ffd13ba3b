package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"landing/pkg/platform/httputil"
)

const readinessTimeout = 2 * time.Second

// ReadinessCheck probes one configured backend (Postgres, Mongo, Redis, Kafka).
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type healthResponse struct {
	OK      bool              `json:"ok"`
	Message string            `json:"message"`
	Checks  map[string]string `json:"checks,omitempty"`
}

type healthHandler struct {
	checks []ReadinessCheck
	logger *slog.Logger
}

func newHealthHandler(checks []ReadinessCheck, logger *slog.Logger) *healthHandler {
	return &healthHandler{checks: checks, logger: logger}
}

func (h *healthHandler) handleLive(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, healthResponse{OK: true, Message: "Server is running"})
}

// handleReady runs every check in parallel, each bounded by readinessTimeout.
func (h *healthHandler) handleReady(w http.ResponseWriter, r *http.Request) {
	results := make(map[string]string, len(h.checks))
	var mu sync.Mutex
	var wg sync.WaitGroup
	ok := true
	for _, c := range h.checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
			defer cancel()
			err := c.Check(ctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				ok = false
				results[c.Name] = "unavailable"
				h.logger.WarnContext(r.Context(), "readiness check failed", "check", c.Name, "error", err)
				return
			}
			results[c.Name] = "ok"
		}()
	}
	wg.Wait()

	if !ok {
		httputil.WriteJSON(w, http.StatusServiceUnavailable, healthResponse{OK: false, Message: "not ready", Checks: results})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, healthResponse{OK: true, Message: "ready", Checks: results})
}
