package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sectorwire/sectorwire/internal/models"
	"github.com/sectorwire/sectorwire/internal/storage"
)

// ReportStore is the storage capability the handlers need.
type ReportStore interface {
	GetSectorReports(ctx context.Context, limit int) ([]models.SectorReport, error)
	GetLatestSectorReport(ctx context.Context, sectorID string) (*models.SectorReport, error)
	GetLatestWeeklySummary(ctx context.Context) (*models.WeeklySummary, error)
	GetStats(ctx context.Context) (*storage.Stats, error)
}

// Handlers holds the API handlers.
type Handlers struct {
	store ReportStore
}

// NewHandlers creates new API handlers.
func NewHandlers(store ReportStore) *Handlers {
	return &Handlers{store: store}
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func getLimit(r *http.Request, defaultLimit int) int {
	limit := defaultLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	return limit
}

// HealthCheck returns service health.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetStats returns report counts.
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetStats(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch stats")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// GetReports returns recent sector reports.
func (h *Handlers) GetReports(w http.ResponseWriter, r *http.Request) {
	limit := getLimit(r, 20)

	reports, err := h.store.GetSectorReports(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch reports")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"reports": reports,
		"count":   len(reports),
	})
}

// GetSectorReport returns the latest report for one sector.
func (h *Handlers) GetSectorReport(w http.ResponseWriter, r *http.Request) {
	sectorID := chi.URLParam(r, "sectorID")
	if sectorID == "" {
		respondError(w, http.StatusBadRequest, "Sector id is required")
		return
	}

	report, err := h.store.GetLatestSectorReport(r.Context(), sectorID)
	if err != nil {
		respondError(w, http.StatusNotFound, "Report not found")
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// GetWeekly returns the latest weekly summary.
func (h *Handlers) GetWeekly(w http.ResponseWriter, r *http.Request) {
	summary, err := h.store.GetLatestWeeklySummary(r.Context())
	if err != nil {
		respondError(w, http.StatusNotFound, "No weekly summary available")
		return
	}

	respondJSON(w, http.StatusOK, summary)
}
