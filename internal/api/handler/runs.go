package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/albapepper/scoracle-ingest/internal/api/respond"
	"github.com/albapepper/scoracle-ingest/internal/ingest"
	"github.com/albapepper/scoracle-ingest/internal/provider"
	"github.com/albapepper/scoracle-ingest/internal/registry"
	"github.com/albapepper/scoracle-ingest/internal/runs"
)

// RunRequest is the body of POST /runs.
type RunRequest struct {
	Sport        string   `json:"sport"`
	Season       int      `json:"season,omitempty"`
	Seasons      []int    `json:"seasons,omitempty"`
	From         string   `json:"from,omitempty"` // YYYY-MM-DD
	To           string   `json:"to,omitempty"`   // YYYY-MM-DD
	Weeks        []int    `json:"weeks,omitempty"`
	SeasonTypes  []string `json:"season_types,omitempty"`
	Events       []string `json:"events,omitempty"`
	Teams        bool     `json:"teams,omitempty"`
	ForceDetails bool     `json:"force_details,omitempty"`
}

// scope resolves the request into a pipeline scope. Without a season, date
// range or event the sport's current season is used.
func (req RunRequest) scope(sport registry.Sport, now time.Time) (provider.Scope, error) {
	s := provider.Scope{
		Seasons:     req.Seasons,
		Weeks:       req.Weeks,
		SeasonTypes: req.SeasonTypes,
		Events:      req.Events,
		Teams:       req.Teams,
	}
	if req.Season != 0 {
		s.Seasons = append([]int{req.Season}, s.Seasons...)
	}
	for _, d := range []struct {
		raw string
		dst *time.Time
	}{{req.From, &s.From}, {req.To, &s.To}} {
		if d.raw == "" {
			continue
		}
		t, err := time.Parse("2006-01-02", d.raw)
		if err != nil {
			return s, errors.New("dates must be YYYY-MM-DD")
		}
		*d.dst = t
	}
	if len(s.Seasons) == 0 && s.From.IsZero() && s.To.IsZero() && len(s.Events) == 0 {
		s.Seasons = []int{sport.CurrentSeason(now)}
	}
	return s, nil
}

// StartRun starts an import in the background.
// @Summary Start a run
// @Description Starts an import for one sport. Only one run per sport may be active.
// @Tags runs
// @Accept json
// @Produce json
// @Param request body RunRequest true "Sport and scope"
// @Success 202 {object} runs.Run
// @Failure 400 {object} respond.ErrorResponse
// @Failure 409 {object} respond.ErrorResponse
// @Router /runs [post]
func (h *Handler) StartRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be JSON", err.Error())
		return
	}

	sport, err := h.registry.Lookup(req.Sport)
	if err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "UNKNOWN_SPORT", "Unknown sport", err.Error())
		return
	}
	scope, err := req.scope(sport, time.Now())
	if err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_SCOPE", "Invalid scope", err.Error())
		return
	}

	run, err := h.tracker.Start(sport.Key, scope, req.ForceDetails)
	switch {
	case errors.Is(err, runs.ErrBusy):
		respond.WriteError(w, http.StatusConflict, "RUN_IN_PROGRESS", "A run for "+sport.Key+" is already in progress")
		return
	case ingest.IsConfigError(err):
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_CONFIGURATION", "Run cannot start", err.Error())
		return
	case err != nil:
		respond.WriteErrorDetail(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Run cannot start", err.Error())
		return
	}

	w.Header().Set("Location", "/api/v1/runs/"+run.ID)
	respond.WriteJSONObject(w, http.StatusAccepted, run)
}

// ListRuns returns retained runs, newest first.
// @Summary List runs
// @Tags runs
// @Produce json
// @Success 200 {array} runs.Run
// @Router /runs [get]
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, h.tracker.List())
}

// GetRun returns one run with its live state or final stats.
// @Summary Get a run
// @Tags runs
// @Produce json
// @Param id path string true "Run id"
// @Success 200 {object} runs.Run
// @Failure 404 {object} respond.ErrorResponse
// @Router /runs/{id} [get]
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.tracker.Get(chi.URLParam(r, "id"))
	if err != nil {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Run not found")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, run)
}
