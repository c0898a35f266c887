// Package pipeline implements the two-stage key-event extraction flow:
// Stage 1 extracts candidate events from raw sector summaries, Stage 2 asks
// the model to deduplicate and quality-check them. Stage 2 failures fall
// back to the normalized Stage 1 output.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sectorwire/sectorwire/internal/models"
	"github.com/sectorwire/sectorwire/internal/ollama"
)

// Generator is the opaque text-generation capability the pipeline depends
// on. Deduplication has no local algorithm: it is delegated entirely to the
// model behind this interface.
type Generator interface {
	Chat(ctx context.Context, req ollama.ChatRequest) (*ollama.ChatResponse, error)
}

// Pipeline runs the per-sector extraction and validation stages.
type Pipeline struct {
	llm Generator
}

// New creates a pipeline on top of a text-generation client.
func New(llm Generator) *Pipeline {
	return &Pipeline{llm: llm}
}

// ExtractKeyEvents runs Stage 1: one model call over all summaries of a
// sector, parsed into a normalized report. A response without a parseable
// JSON object is a terminal error for the sector.
func (p *Pipeline) ExtractKeyEvents(ctx context.Context, sectorID string, summaries []models.Summary) (*models.SectorReport, error) {
	if len(summaries) == 0 {
		return nil, fmt.Errorf("no summaries for sector %s", sectorID)
	}

	log.Info().
		Str("sector", sectorID).
		Int("summaries", len(summaries)).
		Msg("Stage 1: extracting key events")

	resp, err := p.llm.Chat(ctx, ollama.ChatRequest{
		UserPrompt:  extractionPrompt(sectorID, summaries),
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("stage 1 failed for sector %s: %w", sectorID, err)
	}

	report, err := decodeReport(resp.Content, sectorID)
	if err != nil {
		return nil, fmt.Errorf("stage 1 returned unparseable output for sector %s: %w", sectorID, err)
	}

	log.Info().
		Str("sector", sectorID).
		Int("key_events", len(report.KeyEvents)).
		Msg("Stage 1 complete")

	return report, nil
}

// ValidateKeyEvents runs Stage 2: the deduplication/quality-control pass.
// Unlike Stage 1, a missing required field makes the whole output invalid;
// callers are expected to fall back to the Stage 1 report.
func (p *Pipeline) ValidateKeyEvents(ctx context.Context, sectorID string, events []models.KeyEvent) (*models.SectorReport, error) {
	log.Info().
		Str("sector", sectorID).
		Int("key_events", len(events)).
		Msg("Stage 2: validating key events")

	resp, err := p.llm.Chat(ctx, ollama.ChatRequest{
		UserPrompt:  validationPrompt(sectorID, events),
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("stage 2 failed for sector %s: %w", sectorID, err)
	}

	report, err := decodeStrictReport(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("stage 2 returned invalid output for sector %s: %w", sectorID, err)
	}

	log.Info().
		Str("sector", sectorID).
		Int("key_events", len(report.KeyEvents)).
		Msg("Stage 2 complete")

	return report, nil
}

// Run processes one sector end to end. Stage 1 failure is terminal; Stage 2
// failure substitutes the normalized Stage 1 report unchanged.
func (p *Pipeline) Run(ctx context.Context, sectorID string, summaries []models.Summary, tickerCount int) (*models.SectorReport, error) {
	stage1, err := p.ExtractKeyEvents(ctx, sectorID, summaries)
	if err != nil {
		return nil, err
	}

	report := stage1
	if len(stage1.KeyEvents) == 0 {
		log.Warn().Str("sector", sectorID).Msg("Stage 1 extracted no events, skipping Stage 2")
	} else {
		validated, err := p.ValidateKeyEvents(ctx, sectorID, stage1.KeyEvents)
		if err != nil {
			log.Warn().
				Err(err).
				Str("sector", sectorID).
				Msg("Stage 2 failed, falling back to Stage 1 output")
		} else {
			report = validated
		}
	}

	report.SectorID = sectorID
	report.TickerCount = tickerCount
	report.SummaryCount = len(summaries)
	if report.GeneratedDate == "" {
		report.GeneratedDate = time.Now().Format(models.DateFormat)
	}

	return report, nil
}
