// Package export builds the sectors summary artifact from the raw CSV
// exports, and flattens an artifact back to TSV for spreadsheet use.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sectorwire/sectorwire/internal/models"
)

// table is a parsed CSV keyed by header name.
type table struct {
	header map[string]int
	rows   [][]string
}

func readTable(path string, comma rune) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("%s is empty", path)
	}

	header := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		header[strings.TrimSpace(name)] = i
	}

	return &table{header: header, rows: records[1:]}, nil
}

func (t *table) get(row []string, column string) string {
	idx, ok := t.header[column]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// unassignedSector collects tickers without a sector id.
const unassignedSector = "unassigned"

// BuildArtifact assembles the sectors summary structure from the summaries
// export (semicolon-separated) and the tickers export (tab-separated).
func BuildArtifact(summariesPath, tickersPath string) (models.SectorFile, error) {
	tickers, err := readTable(tickersPath, '\t')
	if err != nil {
		return nil, err
	}
	summaries, err := readTable(summariesPath, ';')
	if err != nil {
		return nil, err
	}

	sectors := make(models.SectorFile)
	tickerToSector := make(map[string]string)

	for _, row := range tickers.rows {
		symbol := tickers.get(row, "symbol")
		if symbol == "" {
			continue
		}

		sectorID := tickers.get(row, "sectors_id")
		if sectorID == "" {
			sectorID = unassignedSector
		} else if f, err := strconv.ParseFloat(sectorID, 64); err == nil {
			// Sector ids arrive as floats from the spreadsheet export
			sectorID = strconv.Itoa(int(f))
		}

		sector, ok := sectors[sectorID]
		if !ok {
			sector = models.SectorData{Tickers: make(map[string]models.TickerData)}
		}
		if _, ok := sector.Tickers[symbol]; !ok {
			tickerID, _ := strconv.ParseInt(tickers.get(row, "tickers_id"), 10, 64)
			sector.Tickers[symbol] = models.TickerData{
				TickerID: tickerID,
				Title:    tickers.get(row, "title"),
			}
		}
		sectors[sectorID] = sector
		tickerToSector[symbol] = sectorID
	}

	log.Info().
		Int("sectors", len(sectors)).
		Int("tickers", len(tickerToSector)).
		Msg("Built sector structure")

	added := 0
	for _, row := range summaries.rows {
		for _, tic := range splitTics(summaries.get(row, "tics")) {
			sectorID, ok := tickerToSector[tic]
			if !ok {
				continue
			}

			articleID, _ := strconv.ParseInt(summaries.get(row, "articles_id"), 10, 64)
			bullets := summaries.get(row, "summary_bulletpoint")
			if bullets == "" {
				bullets = "Missing"
			}

			sector := sectors[sectorID]
			ticker := sector.Tickers[tic]
			ticker.Summaries = append(ticker.Summaries, models.TickerSummary{
				ArticleID:         articleID,
				ArticleTitle:      summaries.get(row, "article_title"),
				PublicationDate:   summaries.get(row, "published_at"),
				SummaryLong:       summaries.get(row, "summary_long"),
				SummaryBulletList: bullets,
			})
			sector.Tickers[tic] = ticker
			sectors[sectorID] = sector
			added++
		}
	}

	log.Info().Int("summaries", added).Msg("Attached summaries to tickers")

	pruneUnassigned(sectors)
	prune(sectors)

	for id, sector := range sectors {
		sector.TickerCount = len(sector.Tickers)
		sectors[id] = sector
	}

	return sectors, nil
}

// splitTics splits the ticker column, which may name several companies, and
// strips the "(company)" designation.
func splitTics(tics string) []string {
	var out []string
	for _, tic := range strings.Split(tics, ",") {
		tic = strings.ReplaceAll(tic, "(company)", "")
		tic = strings.TrimSpace(tic)
		if tic != "" && tic != "()" {
			out = append(out, tic)
		}
	}
	return out
}

// pruneUnassigned drops articles from the unassigned sector when the same
// article already lives in a proper sector.
func pruneUnassigned(sectors models.SectorFile) {
	unassigned, ok := sectors[unassignedSector]
	if !ok {
		return
	}

	assigned := make(map[int64]struct{})
	for id, sector := range sectors {
		if id == unassignedSector {
			continue
		}
		for _, ticker := range sector.Tickers {
			for _, s := range ticker.Summaries {
				assigned[s.ArticleID] = struct{}{}
			}
		}
	}

	removed := 0
	for symbol, ticker := range unassigned.Tickers {
		kept := ticker.Summaries[:0]
		for _, s := range ticker.Summaries {
			if _, ok := assigned[s.ArticleID]; ok {
				removed++
				continue
			}
			kept = append(kept, s)
		}
		ticker.Summaries = kept
		unassigned.Tickers[symbol] = ticker
	}

	if removed > 0 {
		log.Info().Int("removed", removed).Msg("Removed duplicate articles from unassigned sector")
	}
}

// prune removes tickers without summaries and sectors without tickers.
func prune(sectors models.SectorFile) {
	for id, sector := range sectors {
		for symbol, ticker := range sector.Tickers {
			if len(ticker.Summaries) == 0 {
				delete(sector.Tickers, symbol)
			}
		}
		if len(sector.Tickers) == 0 {
			delete(sectors, id)
		}
	}
}

// WriteTSV flattens an artifact to one row per summary.
func WriteTSV(sectors models.SectorFile, path string) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	writer.Comma = '\t'

	header := []string{
		"sector_id", "ticker_symbol", "ticker_id", "ticker_title",
		"article_id", "article_title", "publication_date",
		"summary_long", "summary_bulletpoint",
	}
	if err := writer.Write(header); err != nil {
		return 0, err
	}

	rows := 0
	for sectorID, sector := range sectors {
		for symbol, ticker := range sector.Tickers {
			for _, s := range ticker.Summaries {
				record := []string{
					sectorID,
					symbol,
					strconv.FormatInt(ticker.TickerID, 10),
					ticker.Title,
					strconv.FormatInt(s.ArticleID, 10),
					s.ArticleTitle,
					s.PublicationDate,
					s.SummaryLong,
					s.SummaryBulletList,
				}
				if err := writer.Write(record); err != nil {
					return rows, err
				}
				rows++
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return rows, err
	}

	log.Info().Int("rows", rows).Str("file", path).Msg("Wrote TSV export")
	return rows, nil
}
