package pipeline

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/sectorwire/sectorwire/internal/models"
	"github.com/sectorwire/sectorwire/internal/ollama"
)

// fakeGenerator returns scripted responses in order, one per Chat call.
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

func testSummaries() []models.Summary {
	return []models.Summary{
		{Ticker: "RDW", Title: "Redwire", Summary: "Redwire received a $45M contract from Axiom Space, CEO Peter Cannito said.", PublicationDate: "2025-10-08 14:00:00"},
		{Ticker: "RDW", Title: "Redwire", Summary: "Axiom awarded a contract worth $45M to Redwire for station modules."},
		{Ticker: "AMD", Title: "AMD", Summary: "Lisa Su confirmed the OpenAI chip deal may close in Q4."},
	}
}

const stage1Response = `{
  "sector_id": "6",
  "generated_date": "2025-10-09",
  "key_events": [
    {"date": "2025-10-08", "event": "Redwire received a $45M contract from Axiom Space, per CEO Peter Cannito."},
    {"date": "2025-10", "event": "Lisa Su confirmed the AMD-OpenAI chip deal may close in Q4."}
  ]
}`

func TestExtractKeyEvents(t *testing.T) {
	llm := &fakeGenerator{responses: []string{"```json\n" + stage1Response + "\n```"}}
	p := New(llm)

	report, err := p.ExtractKeyEvents(context.Background(), "6", testSummaries())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.SectorID != "6" {
		t.Errorf("sector_id = %q, want %q", report.SectorID, "6")
	}
	if report.GeneratedDate != "2025-10-09" {
		t.Errorf("generated_date = %q, want %q", report.GeneratedDate, "2025-10-09")
	}
	if len(report.KeyEvents) != 2 {
		t.Fatalf("got %d key events, want 2", len(report.KeyEvents))
	}
	if report.KeyEvents[1].Date != "2025-10" {
		t.Errorf("partial date not preserved: %q", report.KeyEvents[1].Date)
	}
}

func TestExtractKeyEventsDefaultsMissingFields(t *testing.T) {
	llm := &fakeGenerator{responses: []string{`{"key_events": null}`}}
	p := New(llm)

	report, err := p.ExtractKeyEvents(context.Background(), "6", testSummaries())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.SectorID != "6" {
		t.Errorf("sector_id not defaulted: %q", report.SectorID)
	}
	if report.GeneratedDate != time.Now().Format(models.DateFormat) {
		t.Errorf("generated_date not defaulted: %q", report.GeneratedDate)
	}
	if report.KeyEvents == nil || len(report.KeyEvents) != 0 {
		t.Errorf("key_events should normalize to an empty slice, got %#v", report.KeyEvents)
	}
}

func TestExtractKeyEventsRecoversNestedJSON(t *testing.T) {
	nested := `{"sector_id": "9", "summary": "{\"sector_id\": \"wrong\", \"generated_date\": \"2025-10-09\", \"key_events\": [{\"date\": \"2025-10-08\", \"event\": \"Nested event\"}]}"}`

	llm := &fakeGenerator{responses: []string{nested}}
	p := New(llm)

	report, err := p.ExtractKeyEvents(context.Background(), "9", testSummaries())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(report.KeyEvents) != 1 || report.KeyEvents[0].Event != "Nested event" {
		t.Fatalf("nested events not recovered: %#v", report.KeyEvents)
	}
	// The outer sector_id wins over the nested one
	if report.SectorID != "9" {
		t.Errorf("sector_id = %q, want %q", report.SectorID, "9")
	}
}

func TestExtractKeyEventsUnparseableIsTerminal(t *testing.T) {
	llm := &fakeGenerator{responses: []string{"I am sorry, I cannot summarize this."}}
	p := New(llm)

	if _, err := p.ExtractKeyEvents(context.Background(), "6", testSummaries()); err == nil {
		t.Fatal("expected error for unparseable Stage 1 output")
	}
}

func TestExtractKeyEventsNoSummaries(t *testing.T) {
	p := New(&fakeGenerator{})
	if _, err := p.ExtractKeyEvents(context.Background(), "6", nil); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestRunUsesValidatedOutput(t *testing.T) {
	stage2 := `{
  "sector_id": "6",
  "generated_date": "2025-10-09",
  "key_events": [
    {"date": "2025-10-08", "event": "Redwire received a $45M contract from Axiom Space, per CEO Peter Cannito."}
  ]
}`
	llm := &fakeGenerator{responses: []string{stage1Response, stage2}}
	p := New(llm)

	report, err := p.Run(context.Background(), "6", testSummaries(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if llm.calls != 2 {
		t.Errorf("expected 2 model calls, got %d", llm.calls)
	}
	if len(report.KeyEvents) != 1 {
		t.Errorf("expected validated event list, got %d events", len(report.KeyEvents))
	}
	if report.TickerCount != 2 || report.SummaryCount != 3 {
		t.Errorf("metadata not attached: tickers=%d summaries=%d", report.TickerCount, report.SummaryCount)
	}
}

func TestRunFallsBackOnStage2Error(t *testing.T) {
	llm := &fakeGenerator{
		responses: []string{stage1Response, ""},
		errs:      []error{nil, errors.New("model timed out")},
	}
	p := New(llm)

	report, err := p.Run(context.Background(), "6", testSummaries(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []models.KeyEvent{
		{Date: "2025-10-08", Event: "Redwire received a $45M contract from Axiom Space, per CEO Peter Cannito."},
		{Date: "2025-10", Event: "Lisa Su confirmed the AMD-OpenAI chip deal may close in Q4."},
	}
	if !reflect.DeepEqual(report.KeyEvents, want) {
		t.Errorf("fallback did not preserve Stage 1 events:\ngot  %#v\nwant %#v", report.KeyEvents, want)
	}
}

func TestRunFallsBackOnInvalidStage2Output(t *testing.T) {
	tests := []struct {
		name   string
		stage2 string
	}{
		{"prose instead of JSON", "These events all look fine to me."},
		{"missing key_events field", `{"sector_id": "6", "generated_date": "2025-10-09"}`},
		{"missing generated_date field", `{"sector_id": "6", "key_events": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &fakeGenerator{responses: []string{stage1Response, tt.stage2}}
			p := New(llm)

			report, err := p.Run(context.Background(), "6", testSummaries(), 2)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(report.KeyEvents) != 2 {
				t.Errorf("expected Stage 1 events after fallback, got %d", len(report.KeyEvents))
			}
		})
	}
}

func TestRunSkipsStage2WithoutEvents(t *testing.T) {
	empty := `{"sector_id": "6", "generated_date": "2025-10-09", "key_events": []}`
	llm := &fakeGenerator{responses: []string{empty}}
	p := New(llm)

	report, err := p.Run(context.Background(), "6", testSummaries(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if llm.calls != 1 {
		t.Errorf("Stage 2 should be skipped for an empty event list, got %d calls", llm.calls)
	}
	if len(report.KeyEvents) != 0 {
		t.Errorf("expected empty report, got %d events", len(report.KeyEvents))
	}
}
