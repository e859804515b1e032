package api

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"
)

// HealthHandler reports process and ERP database liveness.
type HealthHandler struct {
	DB *sql.DB
}

// Check handles GET /api/health. It always answers 200; the database field
// says whether the ERP database answered a ping.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	status := "connected"
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if h.DB == nil {
		status = "disconnected"
	} else if err := h.DB.PingContext(ctx); err != nil {
		slog.Warn("database ping failed", "error", err)
		status = "disconnected"
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "healthy", "database": status})
}
