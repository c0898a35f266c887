package sectors

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sectorwire/sectorwire/internal/models"
)

const sampleArtifact = `{
  "6": {
    "ticker_count": 2,
    "tickers": {
      "RDW": {
        "ticker_id": 101,
        "title": "Redwire",
        "summaries": [
          {"articles_id": 1, "article_title": "Contract win", "publication_date": "2025-10-08 14:00:00", "summary_long": "Redwire received a $45M contract from Axiom Space.", "summary_bulletpoint": ""},
          {"articles_id": 2, "article_title": "Empty", "publication_date": "", "summary_long": "   ", "summary_bulletpoint": ""}
        ]
      },
      "AMD": {
        "ticker_id": 102,
        "title": "AMD",
        "summaries": [
          {"articles_id": 3, "article_title": "Deal", "publication_date": "2025-10-07 09:30:00", "summary_long": "Lisa Su confirmed the OpenAI chip deal may close in Q4.", "summary_bulletpoint": ""}
        ]
      }
    }
  }
}`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoaderSector(t *testing.T) {
	loader, err := NewLoader(writeTemp(t, "sectors_summary.json", sampleArtifact))
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}

	if ids := loader.SectorIDs(); len(ids) != 1 || ids[0] != "6" {
		t.Errorf("SectorIDs = %v, want [6]", ids)
	}

	sector, err := loader.Sector("6")
	if err != nil {
		t.Fatalf("Sector: %v", err)
	}
	if sector.TickerCount != 2 {
		t.Errorf("ticker_count = %d, want 2", sector.TickerCount)
	}

	if _, err := loader.Sector("99"); err == nil {
		t.Error("expected error for unknown sector")
	}
}

func TestCollectSummariesSkipsEmpty(t *testing.T) {
	loader, err := NewLoader(writeTemp(t, "sectors_summary.json", sampleArtifact))
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	sector, _ := loader.Sector("6")

	summaries := CollectSummaries(sector)
	if len(summaries) != 2 {
		t.Fatalf("got %d summaries, want 2 (blank one skipped)", len(summaries))
	}
	for _, s := range summaries {
		if strings.TrimSpace(s.Summary) == "" {
			t.Error("blank summary not skipped")
		}
	}
}

func TestDeduplicate(t *testing.T) {
	summaries := []models.Summary{
		{Ticker: "RDW", Summary: "Redwire received a $45M contract."},
		{Ticker: "RDW", Summary: "  redwire received a $45m contract.  "},
		{Ticker: "AMD", Summary: "Lisa Su confirmed the deal."},
	}

	unique := Deduplicate(summaries)
	if len(unique) != 2 {
		t.Fatalf("got %d summaries, want 2", len(unique))
	}
	// First occurrence wins
	if unique[0].Summary != "Redwire received a $45M contract." {
		t.Errorf("first occurrence not preserved: %q", unique[0].Summary)
	}
}

func TestLoadTextFilePlainText(t *testing.T) {
	content := strings.Join([]string{
		"Redwire received a $45M contract from Axiom Space for station modules.",
		"short line",
		"",
		"Lisa Su confirmed the OpenAI chip deal may close in the fourth quarter.",
	}, "\n")

	summaries, id, err := LoadTextFile(writeTemp(t, "factor.txt", content))
	if err != nil {
		t.Fatalf("LoadTextFile: %v", err)
	}
	if id != "factor" {
		t.Errorf("id = %q, want %q", id, "factor")
	}
	if len(summaries) != 2 {
		t.Fatalf("got %d entries, want 2 (short lines skipped)", len(summaries))
	}
}

func TestLoadTextFileCSV(t *testing.T) {
	content := strings.Join([]string{
		"title,text",
		"Contract win,Redwire received a $45M contract from Axiom Space for modules.",
		"Chip deal,Lisa Su confirmed the OpenAI chip deal may close in the fourth quarter.",
	}, "\n")

	summaries, _, err := LoadTextFile(writeTemp(t, "articles.csv", content))
	if err != nil {
		t.Fatalf("LoadTextFile: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("got %d entries, want 2", len(summaries))
	}
	if summaries[0].Title != "Contract win" {
		t.Errorf("title column not used: %q", summaries[0].Title)
	}
	if !strings.Contains(summaries[0].Summary, "$45M") {
		t.Errorf("text column not used: %q", summaries[0].Summary)
	}
}

func TestLoadTextFileSectorJSON(t *testing.T) {
	content := `{"ticker_count": 1, "tickers": {"RDW": {"ticker_id": 1, "title": "Redwire", "summaries": [{"articles_id": 1, "article_title": "t", "publication_date": "", "summary_long": "Redwire received a $45M contract.", "summary_bulletpoint": ""}]}}}`

	summaries, id, err := LoadTextFile(writeTemp(t, "sector6.json", content))
	if err != nil {
		t.Fatalf("LoadTextFile: %v", err)
	}
	if id != "sector6" {
		t.Errorf("id = %q, want %q", id, "sector6")
	}
	if len(summaries) != 1 || summaries[0].Ticker != "RDW" {
		t.Fatalf("sector-shaped JSON not flattened: %#v", summaries)
	}
}
