package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"incident-pipeline/internal/storage"
	storagemocks "incident-pipeline/internal/storage/mocks"
)

func TestRunsHandler_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRuns := storagemocks.NewMockRunStore(ctrl)
	handler := Serve(NewRunsHandler(mockRuns).List)

	started := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name       string
		query      string
		mockSetup  func()
		wantStatus int
		wantRuns   int
	}{
		{
			name:  "default limit",
			query: "",
			mockSetup: func() {
				mockRuns.EXPECT().ListRecent(gomock.Any(), defaultRunsLimit).Return([]*storage.RunRecord{
					{ID: "b", Workers: 6, OK: 10, StartedAt: started, FinishedAt: started.Add(time.Second)},
					{ID: "a", Workers: 6, OK: 9, StartedAt: started.Add(-time.Hour), FinishedAt: started},
				}, nil)
			},
			wantStatus: http.StatusOK,
			wantRuns:   2,
		},
		{
			name:  "limit capped",
			query: "?limit=5000",
			mockSetup: func() {
				mockRuns.EXPECT().ListRecent(gomock.Any(), maxRunsLimit).Return([]*storage.RunRecord{}, nil)
			},
			wantStatus: http.StatusOK,
			wantRuns:   0,
		},
		{name: "invalid limit", query: "?limit=x", mockSetup: func() {}, wantStatus: http.StatusBadRequest},
		{name: "zero limit", query: "?limit=0", mockSetup: func() {}, wantStatus: http.StatusBadRequest},
		{
			name:  "ledger failure",
			query: "?limit=3",
			mockSetup: func() {
				mockRuns.EXPECT().ListRecent(gomock.Any(), 3).Return(nil, errors.New("database is locked"))
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()

			req := httptest.NewRequest(http.MethodGet, "/runs"+tt.query, nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("List() status = %v, want %v", w.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var runs []storage.RunRecord
			if err := json.Unmarshal(w.Body.Bytes(), &runs); err != nil {
				t.Fatalf("List() body is not a JSON array: %v", err)
			}
			if len(runs) != tt.wantRuns {
				t.Errorf("List() returned %d runs, want %d", len(runs), tt.wantRuns)
			}
		})
	}
}

func TestRunsHandler_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRuns := storagemocks.NewMockRunStore(ctrl)
	router := chi.NewRouter()
	for _, rt := range NewRunsHandler(mockRuns).Routes() {
		router.Method(rt.Method, rt.Path, Serve(rt.Handle))
	}

	started := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name       string
		id         string
		mockSetup  func()
		wantStatus int
		wantBody   string
	}{
		{
			name: "found",
			id:   "run-7",
			mockSetup: func() {
				mockRuns.EXPECT().Get(gomock.Any(), "run-7").Return(&storage.RunRecord{
					ID: "run-7", Workers: 2, Dispatched: 3, OK: 3, StartedAt: started, FinishedAt: started,
				}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "unknown run",
			id:   "nope",
			mockSetup: func() {
				mockRuns.EXPECT().Get(gomock.Any(), "nope").Return(nil, storage.ErrNotFound)
			},
			wantStatus: http.StatusNotFound,
			wantBody:   `{"error":"Resource not found"}` + "\n",
		},
		{
			name: "ledger failure",
			id:   "run-8",
			mockSetup: func() {
				mockRuns.EXPECT().Get(gomock.Any(), "run-8").Return(nil, errors.New("disk I/O error"))
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Internal server error"}` + "\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()

			req := httptest.NewRequest(http.MethodGet, "/runs/"+tt.id, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("Get() status = %v, want %v", w.Code, tt.wantStatus)
			}
			if tt.wantBody != "" {
				if w.Body.String() != tt.wantBody {
					t.Errorf("Get() body = %q, want %q", w.Body.String(), tt.wantBody)
				}
				return
			}
			var run storage.RunRecord
			if err := json.Unmarshal(w.Body.Bytes(), &run); err != nil {
				t.Fatalf("Get() body is not a run: %v", err)
			}
			if run.ID != tt.id || run.OK != 3 {
				t.Errorf("Get() = %+v, want run %s with ok=3", run, tt.id)
			}
		})
	}
}
