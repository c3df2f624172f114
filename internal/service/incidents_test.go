package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"go.uber.org/mock/gomock"

	"incident-pipeline/internal/incident"
	"incident-pipeline/internal/service"
	"incident-pipeline/internal/service/mocks"
)

func init() {
	// Set default logger to discard output for cleaner test output
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestIncidentService_GetIncident(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mocks.NewMockIncidentStore(ctrl)
	svc := service.NewIncidentService(mockStore)

	want := incident.Record{ID: incident.Ptr(3), Title: incident.Ptr("t")}
	mockStore.EXPECT().Get(3).Return(want, true)
	mockStore.EXPECT().Get(4).Return(incident.Record{}, false)

	got, err := svc.GetIncident(context.Background(), 3)
	if err != nil {
		t.Fatalf("GetIncident(3) unexpected error: %v", err)
	}
	if got.IDValue() != 3 {
		t.Errorf("GetIncident(3) id = %d, want 3", got.IDValue())
	}

	if _, err := svc.GetIncident(context.Background(), 4); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("GetIncident(4) error = %v, want ErrNotFound", err)
	}
}

func TestIncidentService_CreateIncident(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mocks.NewMockIncidentStore(ctrl)
	svc := service.NewIncidentService(mockStore)

	tests := []struct {
		name      string
		req       service.CreateIncidentRequest
		mockSetup func()
		wantErr   error
		wantField string
	}{
		{
			name: "successful create",
			req:  service.CreateIncidentRequest{Title: incident.Ptr("disk full"), Body: incident.Ptr("node7")},
			mockSetup: func() {
				mockStore.EXPECT().
					Create("disk full", "node7").
					Return(incident.Record{ID: incident.Ptr(1)}, nil)
			},
		},
		{
			name:      "missing title",
			req:       service.CreateIncidentRequest{Body: incident.Ptr("node7")},
			mockSetup: func() {},
			wantErr:   service.ErrInvalidInput,
			wantField: "title",
		},
		{
			name:      "blank body",
			req:       service.CreateIncidentRequest{Title: incident.Ptr("disk full"), Body: incident.Ptr(" \t")},
			mockSetup: func() {},
			wantErr:   service.ErrInvalidInput,
			wantField: "body",
		},
		{
			name: "store failure is wrapped",
			req:  service.CreateIncidentRequest{Title: incident.Ptr("a"), Body: incident.Ptr("b")},
			mockSetup: func() {
				mockStore.EXPECT().
					Create("a", "b").
					Return(incident.Record{ID: incident.Ptr(2)}, errors.New("disk gone"))
			},
			wantErr: errors.New("any"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()

			rec, err := svc.CreateIncident(context.Background(), tt.req)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("CreateIncident() unexpected error: %v", err)
				}
				if rec.IDValue() != 1 {
					t.Errorf("CreateIncident() id = %d, want 1", rec.IDValue())
				}
				return
			}
			if err == nil {
				t.Fatal("CreateIncident() expected error, got nil")
			}
			if tt.wantField != "" {
				var vErr *service.ValidationError
				if !errors.As(err, &vErr) || vErr.Field != tt.wantField {
					t.Errorf("CreateIncident() error = %v, want validation error on %s", err, tt.wantField)
				}
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("CreateIncident() error should match %v", tt.wantErr)
				}
			}
		})
	}
}

func TestIncidentService_SearchIncidents(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mocks.NewMockIncidentStore(ctrl)
	svc := service.NewIncidentService(mockStore)

	mockStore.EXPECT().Search("network").Return([]incident.Record{{ID: incident.Ptr(1)}})

	got, err := svc.SearchIncidents(context.Background(), "network")
	if err != nil {
		t.Fatalf("SearchIncidents() unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("SearchIncidents() returned %d records, want 1", len(got))
	}

	if _, err := svc.SearchIncidents(context.Background(), "   "); !errors.Is(err, service.ErrInvalidInput) {
		t.Errorf("SearchIncidents(blank) error = %v, want ErrInvalidInput", err)
	}
}

func TestIncidentService_Count(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mocks.NewMockIncidentStore(ctrl)
	mockStore.EXPECT().Len().Return(12)

	if got := service.NewIncidentService(mockStore).Count(); got != 12 {
		t.Errorf("Count() = %d, want 12", got)
	}
}
