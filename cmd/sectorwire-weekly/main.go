// SectorWire weekly summarizer.
// Reads the all-sectors artifact produced by the batch runner and generates
// a market-wide weekly summary.
//
// Usage:
//
//	sectorwire-weekly                            read <output_dir>/all_sectors_summary.json
//	sectorwire-weekly path/to/all_sectors.json   read a specific artifact
package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sectorwire/sectorwire/internal/aggregate"
	"github.com/sectorwire/sectorwire/internal/config"
	"github.com/sectorwire/sectorwire/internal/ollama"
	"github.com/sectorwire/sectorwire/internal/storage"
	"github.com/sectorwire/sectorwire/internal/weekly"
)

const outputFile = "weekly_summary.json"

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	log.Info().Msg("SectorWire - Generating weekly summary")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	inputPath := filepath.Join(cfg.OutputDir, aggregate.FinalFile)
	if len(os.Args) > 1 {
		inputPath = os.Args[1]
	}

	data, err := aggregate.LoadAllSectors(inputPath)
	if err != nil {
		log.Fatal().Err(err).Str("file", inputPath).Msg("Failed to load sector reports")
	}

	events := weekly.CollectEvents(data)
	log.Info().
		Int("sectors", len(data.Sectors)).
		Int("events", len(events)).
		Msg("Collected events")

	ctx := context.Background()

	health := ollama.NewHealthChecker(cfg.OllamaHost)
	if err := health.Check(ctx, cfg.Model); err != nil {
		log.Fatal().Err(err).Msg("Ollama server not available")
	}

	llm := ollama.NewClient(ollama.Config{
		Endpoint: cfg.OllamaEndpoint,
		Model:    cfg.Model,
		Timeout:  cfg.RequestTimeout,
	})

	start := time.Now()
	summarizer := weekly.New(llm)
	summary, err := summarizer.Generate(ctx, events)
	if err != nil {
		log.Fatal().Err(err).Msg("Weekly summary generation failed")
	}
	summary.SourceMetadata = data.Metadata

	outPath := filepath.Join(cfg.OutputDir, outputFile)
	if err := aggregate.WriteJSON(outPath, summary); err != nil {
		log.Fatal().Err(err).Msg("Failed to write weekly summary")
	}

	if cfg.MongoEnabled {
		store, err := storage.NewStore(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
		}
		defer store.Close(ctx)

		if err := store.SaveWeeklySummary(ctx, summary); err != nil {
			log.Warn().Err(err).Msg("Failed to persist weekly summary")
		}
	}

	log.Info().
		Str("file", outPath).
		Str("week_period", summary.WeekPeriod).
		Int("top_events", len(summary.TopEvents)).
		Dur("took", time.Since(start)).
		Msg("Weekly summary complete")
}
