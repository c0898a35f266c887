// Package weekly generates the cross-sector weekly report: one ranking
// pass over all key events, then a deduplication pass. Ranking is entirely
// delegated to the model.
package weekly

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sectorwire/sectorwire/internal/models"
	"github.com/sectorwire/sectorwire/internal/ollama"
	"github.com/sectorwire/sectorwire/internal/pipeline"
)

// Summarizer produces the weekly report from an aggregate artifact.
type Summarizer struct {
	llm pipeline.Generator
}

// New creates a weekly summarizer.
func New(llm pipeline.Generator) *Summarizer {
	return &Summarizer{llm: llm}
}

// CollectEvents flattens all key events across sectors with their sector
// context attached.
func CollectEvents(data *models.AllSectors) []models.SectorEvent {
	var events []models.SectorEvent
	for sectorID, report := range data.Sectors {
		for _, e := range report.KeyEvents {
			date := e.Date
			if date == "" {
				date = "unknown"
			}
			events = append(events, models.SectorEvent{
				SectorID:    sectorID,
				TickerCount: report.TickerCount,
				Date:        date,
				Event:       e.Event,
			})
		}
	}

	log.Info().Int("events", len(events)).Msg("Collected key events from all sectors")
	return events
}

// Generate runs the two-stage weekly pipeline. A Stage 2 failure keeps the
// Stage 1 ranking, mirroring the sector pipeline's fallback.
func (s *Summarizer) Generate(ctx context.Context, events []models.SectorEvent) (*models.WeeklySummary, error) {
	if len(events) == 0 {
		return nil, fmt.Errorf("no key events to summarize")
	}

	period := weekPeriod(events, time.Now())

	log.Info().
		Int("events", len(events)).
		Str("period", period).
		Msg("Stage 1: ranking weekly events")

	resp, err := s.llm.Chat(ctx, ollama.ChatRequest{
		UserPrompt:  rankingPrompt(events, period),
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("weekly stage 1 failed: %w", err)
	}

	summary, err := decodeSummary(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("weekly stage 1 returned unparseable output: %w", err)
	}

	// The model tends to invent its own period
	summary.WeekPeriod = period
	summary.ReportType = "weekly_summary"
	summary.GeneratedDate = time.Now().Format(models.DateFormat)
	summary.TotalEventsAnalyzed = len(events)

	log.Info().Int("top_events", len(summary.TopEvents)).Msg("Stage 1 complete")

	if len(summary.TopEvents) == 0 {
		return summary, nil
	}

	log.Info().Msg("Stage 2: deduplicating weekly events")

	deduped, removed, err := s.deduplicate(ctx, summary.TopEvents)
	if err != nil {
		log.Warn().Err(err).Msg("Weekly Stage 2 failed, keeping Stage 1 ranking")
		return summary, nil
	}

	if len(removed) > 0 {
		log.Info().
			Int("before", len(summary.TopEvents)).
			Int("after", len(deduped)).
			Strs("removed", removed).
			Msg("Removed duplicate weekly events")
	}
	summary.TopEvents = deduped

	return summary, nil
}

// deduplicate runs the Stage 2 pass, returning the deduplicated events and
// the removed headlines.
func (s *Summarizer) deduplicate(ctx context.Context, events []models.TopEvent) ([]models.TopEvent, []string, error) {
	hints := repeatedEntities(events)

	resp, err := s.llm.Chat(ctx, ollama.ChatRequest{
		UserPrompt:  dedupPrompt(events, hints),
		Temperature: 0.1,
	})
	if err != nil {
		return nil, nil, err
	}

	raw, err := ollama.ExtractJSON(resp.Content)
	if err != nil {
		return nil, nil, err
	}

	var result struct {
		TopEvents         []models.TopEvent `json:"top_events"`
		DuplicatesRemoved []string          `json:"duplicates_removed"`
	}
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, nil, fmt.Errorf("malformed JSON in response: %w", err)
	}
	if result.TopEvents == nil {
		return nil, nil, fmt.Errorf("missing top_events in response")
	}

	return result.TopEvents, result.DuplicatesRemoved, nil
}

// decodeSummary parses the Stage 1 weekly response.
func decodeSummary(response string) (*models.WeeklySummary, error) {
	raw, err := ollama.ExtractJSON(response)
	if err != nil {
		return nil, err
	}

	var summary models.WeeklySummary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		return nil, fmt.Errorf("malformed JSON in response: %w", err)
	}
	if summary.TopEvents == nil {
		summary.TopEvents = []models.TopEvent{}
	}
	if summary.Themes == nil {
		summary.Themes = []string{}
	}

	return &summary, nil
}
