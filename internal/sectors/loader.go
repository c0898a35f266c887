// Package sectors loads the per-sector news input artifact and flattens it
// into summaries ready for the extraction pipeline.
package sectors

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sectorwire/sectorwire/internal/models"
)

// minEntryLength filters out fragments when splitting free text.
const minEntryLength = 50

// Loader reads sector data from the sectors summary artifact.
type Loader struct {
	path string
	data models.SectorFile
}

// NewLoader reads and parses the sectors summary file.
func NewLoader(path string) (*Loader, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sectors file: %w", err)
	}

	var data models.SectorFile
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse sectors file: %w", err)
	}

	log.Info().Str("file", path).Int("sectors", len(data)).Msg("Loaded sectors file")

	return &Loader{path: path, data: data}, nil
}

// SectorIDs returns all sector ids present in the file.
func (l *Loader) SectorIDs() []string {
	ids := make([]string, 0, len(l.data))
	for id := range l.data {
		ids = append(ids, id)
	}
	return ids
}

// Sector returns the data for one sector.
func (l *Loader) Sector(id string) (*models.SectorData, error) {
	sector, ok := l.data[id]
	if !ok {
		return nil, fmt.Errorf("sector %s not found", id)
	}
	return &sector, nil
}

// CollectSummaries flattens all non-empty long summaries of a sector.
func CollectSummaries(sector *models.SectorData) []models.Summary {
	var summaries []models.Summary

	for symbol, ticker := range sector.Tickers {
		for _, s := range ticker.Summaries {
			text := strings.TrimSpace(s.SummaryLong)
			if text == "" {
				continue
			}
			summaries = append(summaries, models.Summary{
				Ticker:          symbol,
				Title:           ticker.Title,
				Summary:         text,
				PublicationDate: s.PublicationDate,
			})
		}
	}

	log.Debug().
		Int("summaries", len(summaries)).
		Int("tickers", len(sector.Tickers)).
		Msg("Collected summaries")

	return summaries
}

// Deduplicate removes summaries with identical text, compared lowercased
// and trimmed. Order of first occurrence is preserved.
func Deduplicate(summaries []models.Summary) []models.Summary {
	seen := make(map[string]struct{}, len(summaries))
	unique := make([]models.Summary, 0, len(summaries))

	for _, s := range summaries {
		key := strings.ToLower(strings.TrimSpace(s.Summary))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, s)
	}

	if removed := len(summaries) - len(unique); removed > 0 {
		log.Info().
			Int("removed", removed).
			Int("remaining", len(unique)).
			Msg("Removed duplicate summaries")
	}

	return unique
}

// LoadTextFile loads summaries from a standalone text or CSV file, used when
// the input is not the structured sectors artifact. The returned id is the
// file name without extension.
func LoadTextFile(path string) ([]models.Summary, string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read file: %w", err)
	}

	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	content := string(raw)

	// A sector-shaped JSON file is flattened like the artifact
	var sector models.SectorData
	if err := json.Unmarshal(raw, &sector); err == nil && len(sector.Tickers) > 0 {
		return CollectSummaries(&sector), id, nil
	}

	lines := strings.Split(content, "\n")
	if len(lines) > 0 && strings.Contains(lines[0], ",") {
		if summaries := parseCSV(content); len(summaries) > 0 {
			log.Info().Int("entries", len(summaries)).Msg("Collected entries from CSV file")
			return summaries, id, nil
		}
	}

	// Plain text: one entry per substantial line
	var summaries []models.Summary
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if len(line) < minEntryLength {
			continue
		}
		summaries = append(summaries, models.Summary{
			Ticker:  fmt.Sprintf("Item_%d", i+1),
			Title:   "Text Entry",
			Summary: line,
		})
	}

	log.Info().Int("entries", len(summaries)).Msg("Collected entries from raw text")
	return summaries, id, nil
}

// parseCSV extracts text entries from CSV content, looking for a text-like
// column by header name and falling back to joining all fields.
func parseCSV(content string) []models.Summary {
	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil || len(records) < 2 {
		return nil
	}

	header := records[0]
	textCol := -1
	titleCol := -1
	for i, name := range header {
		lower := strings.ToLower(name)
		if textCol == -1 {
			for _, term := range []string{"text", "article", "summary", "content", "body"} {
				if strings.Contains(lower, term) {
					textCol = i
					break
				}
			}
		}
		if lower == "title" {
			titleCol = i
		}
	}

	var summaries []models.Summary
	for i, row := range records[1:] {
		var text string
		if textCol >= 0 && textCol < len(row) {
			text = row[textCol]
		} else {
			text = strings.Join(row, " ")
		}
		text = strings.TrimSpace(text)
		if len(text) < minEntryLength {
			continue
		}

		title := "CSV Entry"
		if titleCol >= 0 && titleCol < len(row) && row[titleCol] != "" {
			title = row[titleCol]
		}

		summaries = append(summaries, models.Summary{
			Ticker:  fmt.Sprintf("Article_%d", i+1),
			Title:   title,
			Summary: text,
		})
	}

	return summaries
}
