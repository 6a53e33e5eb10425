package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/forgo/jobs/api/internal/model"
)

const landingPage = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Jobs API</title></head>
<body>
<h1>Jobs API</h1>
<p>Track job applications over a JSON API.</p>
<p><a href="/api-docs/index.html">Documentation</a></p>
</body>
</html>
`

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// RootHandler serves the landing page, health check and unknown routes
type RootHandler struct {
	db Pinger
}

// NewRootHandler creates a new root handler
func NewRootHandler(db Pinger) *RootHandler {
	return &RootHandler{db: db}
}

// Landing serves GET /
func (h *RootHandler) Landing(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(landingPage))
}

// Health reports liveness and whether the store answers a ping
func (h *RootHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		slog.Warn("health check failed", slog.Any("error", err))
		WriteJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "degraded", Database: "unreachable"})
		return
	}

	WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok", Database: "ok"})
}

// NotFound answers every route that is not registered
func (h *RootHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, model.NewRouteNotFoundError())
}
