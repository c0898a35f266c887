package models

// SectorFile is the input artifact: a map of sector id to sector data.
type SectorFile map[string]SectorData

// SectorData holds all tickers of one sector.
type SectorData struct {
	TickerCount int                   `json:"ticker_count"`
	Tickers     map[string]TickerData `json:"tickers"`
}

// TickerData holds the news summaries collected for one ticker.
type TickerData struct {
	TickerID  int64           `json:"ticker_id"`
	Title     string          `json:"title"`
	Summaries []TickerSummary `json:"summaries"`
}

// TickerSummary is one article summary attached to a ticker.
type TickerSummary struct {
	ArticleID         int64  `json:"articles_id"`
	ArticleTitle      string `json:"article_title"`
	PublicationDate   string `json:"publication_date"`
	SummaryLong       string `json:"summary_long"`
	SummaryBulletList string `json:"summary_bulletpoint"`
}

// Summary is a single flattened news summary ready for the extraction prompt.
type Summary struct {
	Ticker          string `json:"ticker"`
	Title           string `json:"title"`
	Summary         string `json:"summary"`
	PublicationDate string `json:"publication_date,omitempty"`
}
