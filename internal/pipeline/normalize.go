package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sectorwire/sectorwire/internal/models"
	"github.com/sectorwire/sectorwire/internal/ollama"
)

// rawReport mirrors the model's output shape. Small local models sometimes
// wrap the whole report inside a "summary" string field; that field exists
// only to recover from this mistake.
type rawReport struct {
	SectorID      string            `json:"sector_id"`
	GeneratedDate string            `json:"generated_date"`
	KeyEvents     []models.KeyEvent `json:"key_events"`
	Summary       string            `json:"summary"`
}

// decodeReport parses a Stage 1 response into a normalized report: nested
// JSON in the summary field is unwrapped, missing fields are defaulted to
// the known sector id, today's date, and an empty event list.
func decodeReport(response, sectorID string) (*models.SectorReport, error) {
	raw, err := ollama.ExtractJSON(response)
	if err != nil {
		return nil, err
	}

	var rr rawReport
	if err := json.Unmarshal([]byte(raw), &rr); err != nil {
		return nil, fmt.Errorf("malformed JSON in response: %w", err)
	}

	if len(rr.KeyEvents) == 0 && looksLikeNestedReport(rr.Summary) {
		if nested := recoverNested(rr.Summary); nested != nil {
			// Keep the outer sector_id when present, the prompt echoed it
			if rr.SectorID != "" {
				nested.SectorID = rr.SectorID
			}
			rr = *nested
			log.Debug().Msg("Recovered nested JSON from summary field")
		}
	}

	return normalize(rr, sectorID), nil
}

// decodeStrictReport parses a Stage 2 response. All three contract fields
// must be present; anything less is invalid and triggers the caller's
// fallback to Stage 1.
func decodeStrictReport(response string) (*models.SectorReport, error) {
	raw, err := ollama.ExtractJSON(response)
	if err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("malformed JSON in response: %w", err)
	}
	for _, required := range []string{"sector_id", "generated_date", "key_events"} {
		if _, ok := fields[required]; !ok {
			return nil, fmt.Errorf("missing required field %q", required)
		}
	}

	var rr rawReport
	if err := json.Unmarshal([]byte(raw), &rr); err != nil {
		return nil, fmt.Errorf("malformed JSON in response: %w", err)
	}

	report := normalize(rr, rr.SectorID)
	return report, nil
}

// normalize fills the required fields of a report that the model left out.
func normalize(rr rawReport, sectorID string) *models.SectorReport {
	report := &models.SectorReport{
		SectorID:      rr.SectorID,
		GeneratedDate: rr.GeneratedDate,
		KeyEvents:     rr.KeyEvents,
	}

	if report.SectorID == "" {
		report.SectorID = sectorID
	}
	if report.GeneratedDate == "" {
		report.GeneratedDate = time.Now().Format(models.DateFormat)
	}
	if report.KeyEvents == nil {
		report.KeyEvents = []models.KeyEvent{}
	}

	return report
}

// looksLikeNestedReport reports whether a summary string appears to carry a
// JSON report rather than prose.
func looksLikeNestedReport(summary string) bool {
	if summary == "" {
		return false
	}
	trimmed := strings.TrimSpace(summary)
	return strings.HasPrefix(trimmed, "{") ||
		strings.Contains(summary, "```json") ||
		strings.Contains(summary, `"sector_id"`) ||
		strings.Contains(summary, `"generated_date"`) ||
		strings.Contains(summary, `"key_events"`)
}

// recoverNested tries to parse a report out of a summary string, returning
// nil when nothing parseable is found.
func recoverNested(summary string) *rawReport {
	raw, err := ollama.ExtractJSON(summary)
	if err != nil {
		return nil
	}

	var rr rawReport
	if err := json.Unmarshal([]byte(raw), &rr); err == nil {
		rr.Summary = ""
		return &rr
	}

	// The field may be a JSON-encoded string holding the report
	var unescaped string
	if err := json.Unmarshal([]byte(summary), &unescaped); err == nil {
		if inner, err := ollama.ExtractJSON(unescaped); err == nil {
			if err := json.Unmarshal([]byte(inner), &rr); err == nil {
				rr.Summary = ""
				return &rr
			}
		}
	}

	log.Debug().Msg("Could not parse nested JSON from summary field")
	return nil
}
