package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_incident_store.go -package=mocks incident-pipeline/internal/service IncidentStore
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_incident_service.go -package=mocks incident-pipeline/internal/service IncidentService

import (
	"context"
	"strings"

	"incident-pipeline/internal/contextutil"
	"incident-pipeline/internal/incident"
)

// IncidentStore is the storage seen from the service layer.
// This interface is defined from the service layer's perspective (consumer-first).
type IncidentStore interface {
	Get(id int) (incident.Record, bool)
	Create(title, body string) (incident.Record, error)
	Search(query string) []incident.Record
	Len() int
}

// CreateIncidentRequest carries the fields accepted when creating an incident.
// A nil field was absent from the request.
type CreateIncidentRequest struct {
	Title *string
	Body  *string
}

// IncidentService provides lookup, creation and search of incidents.
type IncidentService interface {
	// GetIncident returns the incident with the given id or ErrNotFound.
	GetIncident(ctx context.Context, id int) (incident.Record, error)
	// CreateIncident validates and stores a new incident.
	CreateIncident(ctx context.Context, req CreateIncidentRequest) (incident.Record, error)
	// SearchIncidents returns the incidents matching query, possibly none.
	SearchIncidents(ctx context.Context, query string) ([]incident.Record, error)
	// Count returns the number of stored incidents.
	Count() int
}

type incidentService struct {
	store IncidentStore
}

// NewIncidentService creates a new IncidentService.
func NewIncidentService(store IncidentStore) IncidentService {
	return &incidentService{store: store}
}

func (s *incidentService) GetIncident(ctx context.Context, id int) (incident.Record, error) {
	rec, ok := s.store.Get(id)
	if !ok {
		return incident.Record{}, WrapError(ErrNotFound, "incident lookup")
	}
	return rec, nil
}

func (s *incidentService) CreateIncident(ctx context.Context, req CreateIncidentRequest) (incident.Record, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		logger.WarnContext(ctx, "rejected incident without title")
		return incident.Record{}, &ValidationError{Field: incident.FieldTitle, Message: "required and must not be blank"}
	}
	if req.Body == nil || strings.TrimSpace(*req.Body) == "" {
		logger.WarnContext(ctx, "rejected incident without body")
		return incident.Record{}, &ValidationError{Field: incident.FieldBody, Message: "required and must not be blank"}
	}

	rec, err := s.store.Create(*req.Title, *req.Body)
	if err != nil {
		return incident.Record{}, WrapError(err, "failed to persist incident")
	}

	logger.InfoContext(ctx, "incident created", "id", rec.IDValue(), "title_length", len(*req.Title))
	return rec, nil
}

func (s *incidentService) SearchIncidents(ctx context.Context, query string) ([]incident.Record, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &ValidationError{Field: "q", Message: "required and must not be blank"}
	}
	return s.store.Search(query), nil
}

func (s *incidentService) Count() int {
	return s.store.Len()
}
