// SectorWire batch runner.
// Processes sectors through the two-stage extraction pipeline and combines
// the results into the all-sectors artifact.
//
// Usage:
//
//	sectorwire             process every sector in the input file
//	sectorwire 1,2,3       process specific sectors
//	sectorwire factor.txt  process a standalone text/CSV file
package main

import (
	"context"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sectorwire/sectorwire/internal/aggregate"
	"github.com/sectorwire/sectorwire/internal/config"
	"github.com/sectorwire/sectorwire/internal/models"
	"github.com/sectorwire/sectorwire/internal/ollama"
	"github.com/sectorwire/sectorwire/internal/pipeline"
	"github.com/sectorwire/sectorwire/internal/sectors"
	"github.com/sectorwire/sectorwire/internal/storage"
)

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	log.Info().Msg("SectorWire - Starting batch run")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx := context.Background()

	// Confirm the model server is reachable before doing any work
	health := ollama.NewHealthChecker(cfg.OllamaHost)
	if err := health.Check(ctx, cfg.Model); err != nil {
		log.Fatal().Err(err).Msg("Ollama server not available")
	}

	llm := ollama.NewClient(ollama.Config{
		Endpoint: cfg.OllamaEndpoint,
		Model:    cfg.Model,
		Timeout:  cfg.RequestTimeout,
	})
	pipe := pipeline.New(llm)
	log.Info().Str("model", cfg.Model).Msg("Pipeline initialized")

	// A path argument switches to single-file mode
	if len(os.Args) > 1 && isFilePath(os.Args[1]) {
		runFile(ctx, cfg, pipe, os.Args[1])
		return
	}

	loader, err := sectors.NewLoader(cfg.InputFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load sectors file")
	}

	ids := loader.SectorIDs()
	if len(os.Args) > 1 {
		ids = strings.Split(os.Args[1], ",")
	}
	sortSectorIDs(ids)

	log.Info().
		Int("sectors", len(ids)).
		Int("batch_size", cfg.BatchSize).
		Msg("Processing sectors")

	var store *storage.Store
	if cfg.MongoEnabled {
		store, err = storage.NewStore(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
		}
		defer store.Close(ctx)
	}

	agg := aggregate.New(cfg.OutputDir)
	overallStart := time.Now()

	batchSize := cfg.BatchSize
	if batchSize < 1 {
		batchSize = 1
	}

	for i := 0; i < len(ids); i += batchSize {
		end := i + batchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[i:end]

		log.Info().
			Int("batch", i/batchSize+1).
			Int("total_batches", (len(ids)+batchSize-1)/batchSize).
			Strs("sectors", batch).
			Msg("Starting batch")

		for _, id := range batch {
			start := time.Now()
			report, err := processSector(ctx, loader, pipe, id)
			if err != nil {
				log.Error().Err(err).Str("sector", id).Msg("Sector failed")
				agg.Fail(id)
				continue
			}

			agg.Add(report)
			if _, err := aggregate.WriteSectorReport(cfg.OutputDir, report); err != nil {
				log.Warn().Err(err).Str("sector", id).Msg("Failed to write sector report file")
			}
			if store != nil {
				if err := store.UpsertSectorReport(ctx, report); err != nil {
					log.Warn().Err(err).Str("sector", id).Msg("Failed to persist sector report")
				}
			}

			log.Info().
				Str("sector", id).
				Int("key_events", len(report.KeyEvents)).
				Dur("took", time.Since(start)).
				Msg("Sector complete")
		}

		// Keep completed work on disk in case the run is interrupted
		if err := agg.SavePartial(); err != nil {
			log.Warn().Err(err).Msg("Failed to save partial results")
		}

		done := len(agg.Reports()) + len(agg.Failed())
		if remaining := len(ids) - done; remaining > 0 {
			avg := time.Since(overallStart) / time.Duration(done)
			log.Info().
				Int("done", done).
				Int("total", len(ids)).
				Dur("eta", avg*time.Duration(remaining)).
				Msg("Batch complete")
		}
	}

	if len(agg.Reports()) == 0 {
		log.Fatal().Msg("No sectors processed successfully")
	}

	combined, err := agg.SaveFinal()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to save final results")
	}

	log.Info().
		Int("successful", combined.Metadata.TotalSectors).
		Strs("failed", combined.Metadata.FailedSectors).
		Dur("took", time.Since(overallStart)).
		Msg("Batch run complete")
}

// processSector runs one sector through collection, deduplication and the
// two-stage pipeline.
func processSector(ctx context.Context, loader *sectors.Loader, pipe *pipeline.Pipeline, id string) (*models.SectorReport, error) {
	sector, err := loader.Sector(id)
	if err != nil {
		return nil, err
	}

	summaries := sectors.Deduplicate(sectors.CollectSummaries(sector))
	return pipe.Run(ctx, id, summaries, sector.TickerCount)
}

// runFile processes a standalone text/CSV file instead of the artifact.
func runFile(ctx context.Context, cfg *config.Config, pipe *pipeline.Pipeline, path string) {
	summaries, id, err := sectors.LoadTextFile(path)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("Failed to load file")
	}

	summaries = sectors.Deduplicate(summaries)
	report, err := pipe.Run(ctx, id, summaries, 0)
	if err != nil {
		log.Fatal().Err(err).Msg("Pipeline failed")
	}

	out, err := aggregate.WriteSectorReport(cfg.OutputDir, report)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to write report")
	}

	log.Info().
		Str("file", out).
		Int("key_events", len(report.KeyEvents)).
		Msg("Report written")
}

func isFilePath(arg string) bool {
	if _, err := os.Stat(arg); err == nil {
		return true
	}
	return strings.ContainsRune(arg, '.') && !strings.Contains(arg, ",")
}

// sortSectorIDs orders ids numerically when possible, lexically otherwise.
func sortSectorIDs(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		a, errA := strconv.Atoi(ids[i])
		b, errB := strconv.Atoi(ids[j])
		if errA == nil && errB == nil {
			return a < b
		}
		return ids[i] < ids[j]
	})
}
