package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sectorwire/sectorwire/internal/models"
	"github.com/sectorwire/sectorwire/internal/storage"
)

type fakeStore struct {
	reports []models.SectorReport
	weekly  *models.WeeklySummary
	err     error
}

func (f *fakeStore) GetSectorReports(ctx context.Context, limit int) ([]models.SectorReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.reports) {
		return f.reports[:limit], nil
	}
	return f.reports, nil
}

func (f *fakeStore) GetLatestSectorReport(ctx context.Context, sectorID string) (*models.SectorReport, error) {
	for i := range f.reports {
		if f.reports[i].SectorID == sectorID {
			return &f.reports[i], nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeStore) GetLatestWeeklySummary(ctx context.Context) (*models.WeeklySummary, error) {
	if f.weekly == nil {
		return nil, errors.New("not found")
	}
	return f.weekly, nil
}

func (f *fakeStore) GetStats(ctx context.Context) (*storage.Stats, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &storage.Stats{TotalReports: int64(len(f.reports))}, nil
}

func serve(t *testing.T, store ReportStore, path string) *httptest.ResponseRecorder {
	t.Helper()
	srv := NewServer(store, ":0")
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", path, nil)
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestGetReports(t *testing.T) {
	store := &fakeStore{reports: []models.SectorReport{
		{SectorID: "6", GeneratedDate: "2025-10-09", KeyEvents: []models.KeyEvent{{Date: "2025-10-08", Event: "e"}}},
	}}

	w := serve(t, store, "/api/reports/")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body struct {
		Count int `json:"count"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body.Count != 1 {
		t.Errorf("count = %d, want 1", body.Count)
	}
}

func TestGetReportsStoreError(t *testing.T) {
	w := serve(t, &fakeStore{err: errors.New("db down")}, "/api/reports/")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestGetSectorReport(t *testing.T) {
	store := &fakeStore{reports: []models.SectorReport{
		{SectorID: "6", GeneratedDate: "2025-10-09"},
	}}

	w := serve(t, store, "/api/reports/6")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var report models.SectorReport
	json.Unmarshal(w.Body.Bytes(), &report)
	if report.SectorID != "6" {
		t.Errorf("sector_id = %q, want %q", report.SectorID, "6")
	}
}

func TestGetSectorReportNotFound(t *testing.T) {
	w := serve(t, &fakeStore{}, "/api/reports/99")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestGetWeekly(t *testing.T) {
	store := &fakeStore{weekly: &models.WeeklySummary{
		ReportType: "weekly_summary",
		WeekPeriod: "October 03 - October 08, 2025",
	}}

	w := serve(t, store, "/api/weekly")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var summary models.WeeklySummary
	json.Unmarshal(w.Body.Bytes(), &summary)
	if summary.WeekPeriod != "October 03 - October 08, 2025" {
		t.Errorf("week_period = %q", summary.WeekPeriod)
	}
}

func TestGetWeeklyNotFound(t *testing.T) {
	w := serve(t, &fakeStore{}, "/api/weekly")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	w := serve(t, &fakeStore{}, "/api/health")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}
