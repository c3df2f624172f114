package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"incident-pipeline/internal/incident"
	"incident-pipeline/internal/service"
)

const maxBodySize = 1 << 20

// IncidentHandler serves lookup, creation and search of incidents.
type IncidentHandler struct {
	svc service.IncidentService
}

// NewIncidentHandler creates a new IncidentHandler.
func NewIncidentHandler(svc service.IncidentService) *IncidentHandler {
	return &IncidentHandler{svc: svc}
}

// Routes returns the incident route table.
func (h *IncidentHandler) Routes() []Route {
	return []Route{
		{Method: http.MethodGet, Path: "/incidents", Handle: h.Get},
		{Method: http.MethodPost, Path: "/incidents", Handle: h.Create},
		{Method: http.MethodGet, Path: "/incidents/search", Handle: h.Search},
	}
}

// Get handles GET /incidents?id=<int>.
func (h *IncidentHandler) Get(r *http.Request) Result {
	raw := r.URL.Query().Get("id")
	if raw == "" {
		return Fail(&service.ValidationError{Field: "id", Message: "is required"})
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return Fail(&service.ValidationError{Field: "id", Message: "must be an integer"})
	}

	rec, err := h.svc.GetIncident(r.Context(), id)
	if err != nil {
		return Fail(err)
	}
	return OK(rec)
}

// Create handles POST /incidents with a flat {"title","body"} object.
func (h *IncidentHandler) Create(r *http.Request) Result {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		return Fail(fmt.Errorf("failed to read request body: %w", err))
	}
	if len(raw) > maxBodySize {
		return Fail(&service.ValidationError{Field: "body", Message: "request body too large"})
	}

	fields, err := incident.ParseFlat(string(raw))
	if err != nil {
		return Fail(&service.ValidationError{Field: "body", Message: "must be a flat JSON object"})
	}
	title, err := fields.String(incident.FieldTitle)
	if err != nil {
		return Fail(&service.ValidationError{Field: incident.FieldTitle, Message: "must be a string"})
	}
	body, err := fields.String(incident.FieldBody)
	if err != nil {
		return Fail(&service.ValidationError{Field: incident.FieldBody, Message: "must be a string"})
	}

	rec, err := h.svc.CreateIncident(r.Context(), service.CreateIncidentRequest{Title: title, Body: body})
	if err != nil {
		return Fail(err)
	}
	return Created(rec)
}

// Search handles GET /incidents/search?q=<text>.
func (h *IncidentHandler) Search(r *http.Request) Result {
	recs, err := h.svc.SearchIncidents(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		return Fail(err)
	}
	if recs == nil {
		recs = []incident.Record{}
	}
	return OK(recs)
}
