// Package handler provides HTTP handlers for all API endpoints. Runs are
// started and inspected through the run tracker; nothing here talks to the
// source APIs directly.
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/albapepper/scoracle-ingest/internal/api/respond"
	"github.com/albapepper/scoracle-ingest/internal/db"
	"github.com/albapepper/scoracle-ingest/internal/registry"
	"github.com/albapepper/scoracle-ingest/internal/runs"
)

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	tracker  *runs.Tracker
	registry *registry.Registry
	pool     *db.Pool // nil unless SINK=postgres

	sportsJSON []byte
	sportsETag string
}

// New creates a Handler with shared dependencies. pool may be nil.
func New(tracker *runs.Tracker, reg *registry.Registry, pool *db.Pool) *Handler {
	h := &Handler{tracker: tracker, registry: reg, pool: pool}
	h.sportsJSON, _ = json.Marshal(sportList(reg))
	h.sportsETag = respond.ComputeETag(h.sportsJSON)
	return h
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version and status.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "Scoracle Ingest API",
		"version": "1.0.0",
		"status":  "running",
		"docs":    "/docs",
		"sports":  h.registry.Keys(),
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Description Returns basic health status and timestamp.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
// @Summary Database health check
// @Description Verifies Postgres connectivity when the Postgres sink is in use.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if h.pool == nil {
		respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
			"status":    "healthy",
			"database":  "not_configured",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	if err := h.pool.HealthCheck(r.Context()); err != nil {
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     "Database connection check failed",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// SportInfo describes one registered sport.
type SportInfo struct {
	Key    string   `json:"key"`
	Name   string   `json:"name"`
	Feed   string   `json:"feed"`
	Paging string   `json:"paging"`
	Delay  string   `json:"delay"`
	Tables []string `json:"tables"`
}

func sportList(reg *registry.Registry) []SportInfo {
	var out []SportInfo
	for _, s := range reg.All() {
		info := SportInfo{Key: s.Key, Name: s.Name, Feed: s.Feed, Paging: string(s.Paging), Delay: s.Delay.String()}
		for _, t := range s.Mapper.Tables() {
			info.Tables = append(info.Tables, t.Name)
		}
		out = append(out, info)
	}
	return out
}

// ListSports returns the registered sports.
// @Summary List sports
// @Description Returns every registered sport with its feed, paging unit and destination tables.
// @Tags sports
// @Produce json
// @Success 200 {array} SportInfo
// @Success 304 "Not Modified"
// @Router /sports [get]
func (h *Handler) ListSports(w http.ResponseWriter, r *http.Request) {
	if respond.CheckETagMatch(r.Header.Get("If-None-Match"), h.sportsETag) {
		respond.WriteNotModified(w, h.sportsETag)
		return
	}
	respond.WriteJSON(w, h.sportsJSON, h.sportsETag, time.Hour)
}
