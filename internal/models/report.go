package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DateFormat is the wire format for generated_date fields.
const DateFormat = "2006-01-02"

// KeyEvent is a single extracted fact. Date may be partial: "2025-10-08",
// "2025-10" or "2025" depending on what the source text carried.
type KeyEvent struct {
	Date  string `bson:"date" json:"date"`
	Event string `bson:"event" json:"event"`
}

// SectorReport is the per-sector output of the extraction pipeline.
type SectorReport struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"-"`

	SectorID      string     `bson:"sector_id" json:"sector_id"`
	TickerCount   int        `bson:"ticker_count" json:"ticker_count,omitempty"`
	SummaryCount  int        `bson:"summary_count" json:"summary_count,omitempty"`
	GeneratedDate string     `bson:"generated_date" json:"generated_date"`
	KeyEvents     []KeyEvent `bson:"key_events" json:"key_events"`

	CreatedAt time.Time `bson:"created_at,omitempty" json:"-"`
}

// AllSectorsMetadata describes an aggregate run.
type AllSectorsMetadata struct {
	GeneratedDate           string   `bson:"generated_date" json:"generated_date"`
	TotalSectors            int      `bson:"total_sectors" json:"total_sectors"`
	TotalTickers            int      `bson:"total_tickers" json:"total_tickers"`
	TotalSummariesProcessed int      `bson:"total_summaries_processed" json:"total_summaries_processed"`
	TotalKeyEvents          int      `bson:"total_key_events" json:"total_key_events"`
	FailedSectors           []string `bson:"failed_sectors" json:"failed_sectors"`
	Status                  string   `bson:"status" json:"status"`
}

// Aggregate statuses.
const (
	StatusInProgress = "in_progress"
	StatusComplete   = "complete"
)

// AllSectors is the combined artifact written after a batch run.
type AllSectors struct {
	Metadata AllSectorsMetadata      `bson:"metadata" json:"metadata"`
	Sectors  map[string]SectorReport `bson:"sectors" json:"sectors"`
}

// TopEvent is one ranked entry of the weekly report.
type TopEvent struct {
	Rank         int    `bson:"rank" json:"rank"`
	Category     string `bson:"category" json:"category"`
	Headline     string `bson:"headline" json:"headline"`
	Details      string `bson:"details" json:"details"`
	MarketImpact string `bson:"market_impact" json:"market_impact"`
}

// WeeklySummary is the final ranked report across all sectors.
type WeeklySummary struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"-"`

	ReportType          string             `bson:"report_type" json:"report_type"`
	WeekPeriod          string             `bson:"week_period" json:"week_period"`
	GeneratedDate       string             `bson:"generated_date" json:"generated_date"`
	ExecutiveSummary    string             `bson:"executive_summary" json:"executive_summary"`
	TopEvents           []TopEvent         `bson:"top_events" json:"top_events"`
	Themes              []string           `bson:"themes" json:"themes"`
	SourceMetadata      AllSectorsMetadata `bson:"source_metadata" json:"source_metadata"`
	TotalEventsAnalyzed int                `bson:"total_events_analyzed" json:"total_events_analyzed"`

	CreatedAt time.Time `bson:"created_at,omitempty" json:"-"`
}

// SectorEvent is a key event flattened with its sector context, the unit
// the weekly summarizer ranks.
type SectorEvent struct {
	SectorID    string `json:"sector_id"`
	TickerCount int    `json:"ticker_count"`
	Date        string `json:"date"`
	Event       string `json:"event"`
}
