package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/adapters/logger"
	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/domain/models"
	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/export"
)

type fakeReportStore struct {
	report *models.ExportReport
	err    error
}

func (f *fakeReportStore) Save(ctx context.Context, report models.ExportReport) error {
	f.report = &report
	return nil
}

func (f *fakeReportStore) Last(ctx context.Context) (*models.ExportReport, error) {
	return f.report, f.err
}

func TestExportHandler_Status(t *testing.T) {
	finished := time.Date(2024, 3, 5, 7, 9, 0, 0, time.UTC)

	tests := []struct {
		name       string
		store      *fakeReportStore
		wantStatus int
		wantRunID  string
	}{
		{
			name:       "no runs yet",
			store:      &fakeReportStore{err: export.ErrNoReport},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "store failure",
			store:      &fakeReportStore{err: errors.New("redis down")},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name: "last report",
			store: &fakeReportStore{report: &models.ExportReport{
				RunID:      "run-1",
				FileName:   "catalog_en.xml",
				FinishedAt: finished,
				Status:     models.ExportFailed,
				ErrorKind:  models.ErrorKindUploadNetwork,
			}},
			wantStatus: http.StatusOK,
			wantRunID:  "run-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewExportHandler(tt.store, logger.NewNopLogger())

			rec := httptest.NewRecorder()
			h.Status(rec, httptest.NewRequest(http.MethodGet, "/api/v1/export/status", nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.wantRunID == "" {
				return
			}

			var body struct {
				Success bool                `json:"success"`
				Data    models.ExportReport `json:"data"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("Expected JSON body, got %v", err)
			}
			if body.Data.RunID != tt.wantRunID {
				t.Errorf("Expected run id %q, got %q", tt.wantRunID, body.Data.RunID)
			}
			if body.Data.ErrorKind != models.ErrorKindUploadNetwork {
				t.Errorf("Expected error kind to be reported, got %q", body.Data.ErrorKind)
			}
		})
	}
}
