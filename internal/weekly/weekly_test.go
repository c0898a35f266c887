package weekly

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/sectorwire/sectorwire/internal/models"
	"github.com/sectorwire/sectorwire/internal/ollama"
)

type fakeGenerator struct {
	responses []string
	errs      []error
	calls     int
}

func (f *fakeGenerator) Chat(ctx context.Context, req ollama.ChatRequest) (*ollama.ChatResponse, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i >= len(f.responses) {
		return nil, errors.New("no scripted response")
	}
	return &ollama.ChatResponse{Content: f.responses[i]}, nil
}

func TestWeekPeriod(t *testing.T) {
	now := time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		dates []string
		want  string
	}{
		{
			name:  "full dates",
			dates: []string{"2025-10-03", "2025-10-08", "2025-10-06"},
			want:  "October 03 - October 08, 2025",
		},
		{
			name:  "partial dates mixed in",
			dates: []string{"2025-10", "2025-10-08", "2025"},
			want:  "January 01 - October 08, 2025",
		},
		{
			name:  "no usable dates",
			dates: []string{"unknown", "Unknown", "soon", ""},
			want:  "Week of October 15, 2025",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var events []models.SectorEvent
			for _, d := range tt.dates {
				events = append(events, models.SectorEvent{SectorID: "1", Date: d, Event: "e"})
			}
			if got := weekPeriod(events, now); got != tt.want {
				t.Errorf("weekPeriod = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRepeatedEntities(t *testing.T) {
	events := []models.TopEvent{
		{Headline: "Redwire Wins $45M Axiom Contract"},
		{Headline: "Redwire Shares Jump After Contract News"},
		{Headline: "AMD Confirms OpenAI Deal"},
	}

	got := repeatedEntities(events)
	sort.Strings(got)

	want := []string{"Contract", "Redwire"}
	if len(got) != len(want) {
		t.Fatalf("repeatedEntities = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("repeatedEntities = %v, want %v", got, want)
		}
	}
}

func TestCollectEvents(t *testing.T) {
	data := &models.AllSectors{
		Sectors: map[string]models.SectorReport{
			"1": {TickerCount: 3, KeyEvents: []models.KeyEvent{
				{Date: "2025-10-08", Event: "a"},
				{Date: "", Event: "b"},
			}},
			"2": {TickerCount: 5, KeyEvents: []models.KeyEvent{
				{Date: "2025-10-07", Event: "c"},
			}},
		},
	}

	events := CollectEvents(data)
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	for _, e := range events {
		if e.Event == "b" && e.Date != "unknown" {
			t.Errorf("empty date should collect as unknown, got %q", e.Date)
		}
	}
}

const stage1Weekly = `{
  "report_type": "weekly_summary",
  "week_period": "made up by the model",
  "executive_summary": "A busy week.",
  "top_events": [
    {"rank": 1, "category": "M&A", "headline": "Redwire Wins $45M Axiom Contract", "details": "...", "market_impact": "High"},
    {"rank": 2, "category": "M&A", "headline": "Axiom Awards Contract to Redwire", "details": "...", "market_impact": "High"},
    {"rank": 3, "category": "Tech", "headline": "AMD Confirms OpenAI Deal", "details": "...", "market_impact": "High"}
  ],
  "themes": ["space", "AI"]
}`

const stage2Weekly = `{
  "top_events": [
    {"rank": 1, "category": "M&A", "headline": "Redwire Wins $45M Axiom Contract", "details": "...", "market_impact": "High"},
    {"rank": 2, "category": "Tech", "headline": "AMD Confirms OpenAI Deal", "details": "...", "market_impact": "High"}
  ],
  "duplicates_removed": ["Axiom Awards Contract to Redwire"],
  "kept_as_different": []
}`

func weeklyInput() []models.SectorEvent {
	return []models.SectorEvent{
		{SectorID: "1", Date: "2025-10-08", Event: "Redwire received a $45M contract from Axiom."},
		{SectorID: "2", Date: "2025-10-07", Event: "AMD confirmed the OpenAI deal."},
	}
}

func TestGenerate(t *testing.T) {
	llm := &fakeGenerator{responses: []string{stage1Weekly, stage2Weekly}}
	s := New(llm)

	summary, err := s.Generate(context.Background(), weeklyInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.ReportType != "weekly_summary" {
		t.Errorf("report_type = %q", summary.ReportType)
	}
	// The computed period wins over whatever the model wrote
	if summary.WeekPeriod != "October 07 - October 08, 2025" {
		t.Errorf("week_period = %q", summary.WeekPeriod)
	}
	if len(summary.TopEvents) != 2 {
		t.Errorf("got %d top events after dedup, want 2", len(summary.TopEvents))
	}
	if summary.TotalEventsAnalyzed != 2 {
		t.Errorf("total_events_analyzed = %d, want 2", summary.TotalEventsAnalyzed)
	}
}

func TestGenerateKeepsRankingWhenDedupFails(t *testing.T) {
	tests := []struct {
		name      string
		responses []string
		errs      []error
	}{
		{
			name:      "stage 2 transport error",
			responses: []string{stage1Weekly, ""},
			errs:      []error{nil, errors.New("model timed out")},
		},
		{
			name:      "stage 2 prose output",
			responses: []string{stage1Weekly, "All events look unique to me."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &fakeGenerator{responses: tt.responses, errs: tt.errs}
			s := New(llm)

			summary, err := s.Generate(context.Background(), weeklyInput())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(summary.TopEvents) != 3 {
				t.Errorf("expected the Stage 1 ranking to survive, got %d events", len(summary.TopEvents))
			}
		})
	}
}

func TestGenerateStage1FailureIsTerminal(t *testing.T) {
	llm := &fakeGenerator{errs: []error{errors.New("server down")}}
	s := New(llm)

	if _, err := s.Generate(context.Background(), weeklyInput()); err == nil {
		t.Fatal("expected error when Stage 1 fails")
	}
}

func TestGenerateNoEvents(t *testing.T) {
	s := New(&fakeGenerator{})
	if _, err := s.Generate(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty event list")
	}
}
