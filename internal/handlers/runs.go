package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"incident-pipeline/internal/service"
	"incident-pipeline/internal/storage"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 100
)

// RunsHandler lists recorded enrichment runs.
type RunsHandler struct {
	runs storage.RunStore
}

// NewRunsHandler creates a new RunsHandler.
func NewRunsHandler(runs storage.RunStore) *RunsHandler {
	return &RunsHandler{runs: runs}
}

// Routes returns the run ledger route table.
func (h *RunsHandler) Routes() []Route {
	return []Route{
		{Method: http.MethodGet, Path: "/runs", Handle: h.List},
		{Method: http.MethodGet, Path: "/runs/{id}", Handle: h.Get},
	}
}

// List handles GET /runs?limit=<n>, newest first.
func (h *RunsHandler) List(r *http.Request) Result {
	limit := defaultRunsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return Fail(&service.ValidationError{Field: "limit", Message: "must be a positive integer"})
		}
		limit = min(n, maxRunsLimit)
	}

	runs, err := h.runs.ListRecent(r.Context(), limit)
	if err != nil {
		return Fail(err)
	}
	return OK(runs)
}

// Get handles GET /runs/{id}.
func (h *RunsHandler) Get(r *http.Request) Result {
	run, err := h.runs.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, storage.ErrNotFound) {
		return Fail(service.ErrNotFound)
	}
	if err != nil {
		return Fail(err)
	}
	return OK(run)
}
