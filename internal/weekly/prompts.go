package weekly

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sectorwire/sectorwire/internal/models"
)

// rankingPrompt builds the Stage 1 weekly prompt: select and rank the most
// significant events of the week.
func rankingPrompt(events []models.SectorEvent, period string) string {
	var sb strings.Builder
	for i, e := range events {
		sb.WriteString(fmt.Sprintf("%d. [Sector %s] (%s): %s\n\n", i+1, e.SectorID, e.Date, e.Event))
	}

	return fmt.Sprintf(`You are a senior financial analyst. Create a weekly market report from these %d events.

## PRIORITY RANKING (use this order):
1. HIGHEST: events with DOLLAR AMOUNTS ($millions, $billions) - M&A deals, contracts, funding rounds
2. HIGH: stock price movements with PERCENTAGES (surged 15%%, dropped 20%%)
3. MEDIUM: product launches, partnerships with named companies
4. LOW: leadership appointments, general counsel hires, routine corporate updates

## EVENTS TO ANALYZE:
%s

Select the 10-12 MOST SIGNIFICANT events. Prioritize events with concrete numbers over general announcements.

Output as JSON:
{
  "report_type": "weekly_summary",
  "week_period": "%s",
  "executive_summary": "2-3 paragraph summary focusing on the biggest dollar amounts and market moves",
  "top_events": [
    {"rank": 1, "category": "Category", "headline": "Headline", "details": "Include specific numbers", "market_impact": "Impact"}
  ],
  "themes": ["theme1", "theme2"]
}

Output ONLY valid JSON:`, len(events), sb.String(), period)
}

// dedupPrompt builds the Stage 2 weekly prompt: remove true duplicates from
// the ranked list, guided by the repeated-entity hints.
func dedupPrompt(events []models.TopEvent, repeatedEntities []string) string {
	input, _ := json.MarshalIndent(events, "", "  ")

	return fmt.Sprintf(`You are a deduplication editor. Remove ONLY true duplicates.

CURRENT LIST OF %d EVENTS:
%s

## DEFINITION OF DUPLICATE:
Two events are duplicates ONLY if they describe the EXACT SAME underlying fact:
- Same person + same statement = DUPLICATE
- Same company + same announcement = DUPLICATE
- Same numbers reported twice = DUPLICATE

## NOT DUPLICATES (keep both):
- Same company but DIFFERENT news topics
- Same topic but DIFFERENT dollar amounts
- Company announcement vs CEO quote about different aspects
- Stock price move vs business development news

## ENTITIES APPEARING MULTIPLE TIMES: %v
Check each: are they TRUE duplicates (same fact) or different news about the same entity?

## TASK:
1. Compare events mentioning the same entity
2. If SAME underlying fact -> remove the less detailed one
3. If DIFFERENT facts -> keep both
4. Re-rank 1 to N

## OUTPUT:
{
  "top_events": [
    {"rank": 1, "category": "...", "headline": "...", "details": "...", "market_impact": "..."}
  ],
  "duplicates_removed": ["headline removed"],
  "kept_as_different": ["similar but different news"]
}

Output ONLY valid JSON:`, len(events), string(input), repeatedEntities)
}
