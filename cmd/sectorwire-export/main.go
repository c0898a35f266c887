// SectorWire export tool.
// Builds the sector summaries artifact from raw database CSV exports.
//
// Usage:
//
//	sectorwire-export                            use default export file names
//	sectorwire-export summaries.csv tickers.csv  explicit input paths
package main

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sectorwire/sectorwire/internal/aggregate"
	"github.com/sectorwire/sectorwire/internal/config"
	"github.com/sectorwire/sectorwire/internal/export"
)

const (
	defaultSummariesFile = "summary-export.csv"
	defaultTickersFile   = "company-crypto-tickers-tabs.csv"
	tsvFile              = "sectors_summary.csv"
)

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	log.Info().Msg("SectorWire - Exporting sector summaries")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	summariesPath := defaultSummariesFile
	tickersPath := defaultTickersFile
	if len(os.Args) > 2 {
		summariesPath = os.Args[1]
		tickersPath = os.Args[2]
	}

	sectors, err := export.BuildArtifact(summariesPath, tickersPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build artifact")
	}

	totalTickers := 0
	for _, sector := range sectors {
		totalTickers += sector.TickerCount
	}
	log.Info().
		Int("sectors", len(sectors)).
		Int("tickers", totalTickers).
		Msg("Built sector map")

	if err := aggregate.WriteJSON(cfg.InputFile, sectors); err != nil {
		log.Fatal().Err(err).Msg("Failed to write artifact")
	}
	log.Info().Str("file", cfg.InputFile).Msg("Wrote sector summaries")

	tsvPath := filepath.Join(cfg.OutputDir, tsvFile)
	rows, err := export.WriteTSV(sectors, tsvPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to write TSV export")
	}
	log.Info().Str("file", tsvPath).Int("rows", rows).Msg("Wrote TSV export")
}
