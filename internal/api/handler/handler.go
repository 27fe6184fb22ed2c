// Package handler provides HTTP handlers for the invocation server.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/api/respond"
	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/invoke"
)

const maxEventBytes = 1 << 20

// Invoker serves invocation events.
type Invoker interface {
	Handle(ctx context.Context, event map[string]any) invoke.Response
}

// HealthChecker verifies a backing store.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	invoker Invoker
	db      HealthChecker
}

// New creates a Handler with shared dependencies.
func New(invoker Invoker, db HealthChecker) *Handler {
	return &Handler{invoker: invoker, db: db}
}

// Root serves service info at /.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"name":   "Milestone Notification Dispatcher",
		"status": "running",
		"modes":  []string{invoke.ModeDispatch, invoke.ModeRealTestEmail, invoke.ModeTestEmail},
	})
}

// HealthCheck returns basic health status.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if err := h.db.HealthCheck(r.Context()); err != nil {
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]any{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     "Database connection check failed",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Invoke runs one invocation event. An empty body runs the full dispatch.
func (h *Handler) Invoke(w http.ResponseWriter, r *http.Request) {
	var event map[string]any
	err := json.NewDecoder(io.LimitReader(r.Body, maxEventBytes)).Decode(&event)
	if err != nil && !errors.Is(err, io.EOF) {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "BAD_EVENT", "Event body must be a JSON object", err.Error())
		return
	}

	resp := h.invoker.Handle(r.Context(), event)
	respond.WriteJSONObject(w, resp.StatusCode, resp)
}
