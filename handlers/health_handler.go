package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/calvinballing/server/utils"
	"go.uber.org/zap"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"

	// readinessTimeout bounds the dependency probes so a stuck database
	// cannot hang the readiness endpoint.
	readinessTimeout = 5 * time.Second
)

// HealthStatus is the payload for both the liveness and readiness endpoints.
// Checks is only populated for readiness.
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthHandler serves liveness and readiness probes for the policy server.
type HealthHandler struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db *sql.DB, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

// HandleHealth handles GET /health. Liveness only: it answers 200 whenever
// the process is serving requests, without touching dependencies.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, HealthStatus{
		Status:    statusHealthy,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleReadiness handles GET /health/ready. It probes the database and
// answers 503 when the server cannot serve policy reads and writes.
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	status := statusHealthy
	httpStatus := http.StatusOK
	checks := map[string]string{"database": statusHealthy}

	if err := h.probeDatabase(ctx); err != nil {
		h.logger.Warn("database readiness probe failed", zap.Error(err))
		checks["database"] = statusUnhealthy
		status = statusUnhealthy
		httpStatus = http.StatusServiceUnavailable
	}

	payload := HealthStatus{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}

	if err := utils.WriteJSON(w, httpStatus, utils.SuccessResponse{Data: payload}); err != nil {
		h.logger.Error("failed to write readiness response", zap.Error(err))
	}
}

// probeDatabase verifies the pool can reach the database and run a query.
// A nil pool passes, which keeps the endpoint usable in handler tests.
func (h *HealthHandler) probeDatabase(ctx context.Context) error {
	if h.db == nil {
		return nil
	}

	if err := h.db.PingContext(ctx); err != nil {
		return err
	}

	var one int
	return h.db.QueryRowContext(ctx, "SELECT 1").Scan(&one)
}
