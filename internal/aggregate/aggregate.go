// Package aggregate combines per-sector reports into the all-sectors
// artifact written after a batch run.
package aggregate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sectorwire/sectorwire/internal/models"
)

// Default artifact file names.
const (
	FinalFile   = "all_sectors_summary.json"
	PartialFile = "all_sectors_summary_partial.json"
)

// Aggregator accumulates sector reports across a batch run.
type Aggregator struct {
	outputDir string
	reports   map[string]models.SectorReport
	failed    []string
}

// New creates an aggregator writing into outputDir.
func New(outputDir string) *Aggregator {
	return &Aggregator{
		outputDir: outputDir,
		reports:   make(map[string]models.SectorReport),
	}
}

// Add records a completed sector report.
func (a *Aggregator) Add(report *models.SectorReport) {
	a.reports[report.SectorID] = *report
}

// Fail records a sector that could not be processed.
func (a *Aggregator) Fail(sectorID string) {
	a.failed = append(a.failed, sectorID)
}

// Reports returns the collected reports.
func (a *Aggregator) Reports() map[string]models.SectorReport {
	return a.reports
}

// Failed returns the sector ids that failed so far.
func (a *Aggregator) Failed() []string {
	return a.failed
}

// build assembles the artifact with computed metadata.
func (a *Aggregator) build(status string) *models.AllSectors {
	meta := models.AllSectorsMetadata{
		GeneratedDate: time.Now().Format(models.DateFormat + " 15:04:05"),
		TotalSectors:  len(a.reports),
		FailedSectors: a.failed,
		Status:        status,
	}
	if meta.FailedSectors == nil {
		meta.FailedSectors = []string{}
	}

	for _, r := range a.reports {
		meta.TotalTickers += r.TickerCount
		meta.TotalSummariesProcessed += r.SummaryCount
		meta.TotalKeyEvents += len(r.KeyEvents)
	}

	return &models.AllSectors{Metadata: meta, Sectors: a.reports}
}

// SavePartial writes the in-progress artifact, called after each batch so
// an interrupted run keeps its completed sectors.
func (a *Aggregator) SavePartial() error {
	return WriteJSON(filepath.Join(a.outputDir, PartialFile), a.build(models.StatusInProgress))
}

// SaveFinal writes the complete artifact and removes the partial file.
func (a *Aggregator) SaveFinal() (*models.AllSectors, error) {
	combined := a.build(models.StatusComplete)

	path := filepath.Join(a.outputDir, FinalFile)
	if err := WriteJSON(path, combined); err != nil {
		return nil, err
	}

	partial := filepath.Join(a.outputDir, PartialFile)
	if err := os.Remove(partial); err == nil {
		log.Debug().Str("file", partial).Msg("Removed partial file")
	}

	log.Info().
		Str("file", path).
		Int("sectors", combined.Metadata.TotalSectors).
		Int("tickers", combined.Metadata.TotalTickers).
		Int("summaries", combined.Metadata.TotalSummariesProcessed).
		Int("key_events", combined.Metadata.TotalKeyEvents).
		Msg("Saved combined results")

	return combined, nil
}

// WriteSectorReport writes a single sector's report file.
func WriteSectorReport(outputDir string, report *models.SectorReport) (string, error) {
	path := filepath.Join(outputDir, fmt.Sprintf("sector_%s_summary.json", report.SectorID))
	if err := WriteJSON(path, report); err != nil {
		return "", err
	}
	return path, nil
}

// LoadAllSectors reads a previously written aggregate artifact.
func LoadAllSectors(path string) (*models.AllSectors, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read aggregate file: %w", err)
	}

	var data models.AllSectors
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse aggregate file: %w", err)
	}

	return &data, nil
}

// WriteJSON writes v as indented JSON, matching the artifact formatting.
func WriteJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
