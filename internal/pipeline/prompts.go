package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sectorwire/sectorwire/internal/models"
)

// buildContext renders the numbered list of summaries fed to Stage 1.
func buildContext(sectorID string, summaries []models.Summary) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Here are %d company summaries from Sector %s:\n\n", len(summaries), sectorID))

	for i, s := range summaries {
		if s.PublicationDate != "" {
			// Keep just the date part of a "YYYY-MM-DD HH:MM:SS" timestamp
			date := s.PublicationDate
			if idx := strings.IndexByte(date, ' '); idx > 0 {
				date = date[:idx]
			}
			sb.WriteString(fmt.Sprintf("%d. [%s] %s (%s): %s\n\n", i+1, date, s.Ticker, s.Title, s.Summary))
		} else {
			sb.WriteString(fmt.Sprintf("%d. %s (%s): %s\n\n", i+1, s.Ticker, s.Title, s.Summary))
		}
	}

	return sb.String()
}

// extractionPrompt builds the Stage 1 prompt: extract distinct, high-impact
// key events from the sector's summaries as strict JSON.
func extractionPrompt(sectorID string, summaries []models.Summary) string {
	today := time.Now().Format(models.DateFormat)

	return fmt.Sprintf(`Take a deep breath.

# AI Summarization Prompt for Financial/Market Data

Your task is to produce a precise, fact-focused summary of the provided sector information. The input contains summaries of multiple companies and statements from officials/analysts. **CRITICAL: You must consolidate overlaps and aggressively remove all repetition. Do not include multiple sentences that have the same meaning.** Use only information present in the text - do not infer or add external facts.

## CRITICAL PRIORITY: Focus on HIGH-IMPACT, MARKET-MOVING information:
- Direct quotes and statements from named individuals (CEOs, Fed officials, regulators, analysts, influencers)
- Specific regulatory announcements, policy changes, or legal actions
- Concrete financial figures, valuations, deal terms, earnings surprises
- Uncertainty language: "not 100%% certain", "may", "might", "possibly", "unlikely", "expected to"
- Conditional statements: "if X happens, then Y"

## What to PRIORITIZE (in order):
1. M&A - deal amounts, valuations, financing details, timelines
2. Leadership changes - executive moves with reasons and market reaction
3. Earnings & financial outlook - actual vs expected, guidance changes
4. Legal & regulatory matters - lawsuits, investigations, penalties with amounts
5. New products & technology - launches with revenue impact
6. Thematic trends - AI, ESG, crypto, recession indicators
7. Regulatory changes - new laws, sanctions, compliance requirements
8. Insider transactions - size, direction, timing, context
9. Macroeconomic factors - rates, inflation, FX, geopolitics affecting specific companies
10. Named person statements - direct quotes with attribution and uncertainty language

## What to AVOID:
- Generic sector trends without specific companies/numbers
- Vague statements like "companies are facing challenges"
- Routine operational updates without material impact

## Attribution & Nuance:
- ALWAYS include WHO said/announced something (full name if available). Preserve the exact degree of certainty/uncertainty.
- Preserve numbers, units, currencies, tickers, timeframes exactly as written (no conversions). If conflicting figures exist, note the discrepancy or range.

---
## Inputs:

IMPORTANT: You MUST analyze the ACTUAL data provided below. Do not generate generic market commentary.

%s
---

## CRITICAL FINAL CHECK BEFORE OUTPUT - ZERO TOLERANCE FOR DUPLICATES

Before generating output, verify:
1. Company check: does ANY company name appear in MORE than ONE event? If yes, MERGE into ONE event.
2. Person check: does ANY person's name appear in MORE than ONE event? If yes, MERGE into ONE event.
3. Topic check: do ANY two events describe the SAME deal/announcement/action? If yes, KEEP only the MOST detailed one.
4. Semantic check: could ANY two events be describing the SAME underlying fact with different words? If yes, DELETE the duplicate.

## Output Format

Return only valid RFC 8259 JSON with exactly THREE fields in this order:

- sector_id - echo the sector_id exactly as given: "%s"
- generated_date - use today's date in YYYY-MM-DD format: "%s"
- key_events - an array of objects, each with "date" and "event" fields. Each event must be distinct and high-impact and include: (1) named person/company, (2) specific action/statement, (3) numbers/dates, (4) context.

No other fields. No code fences or extra text.

## Key Points to Remember
- CRITICAL: NO REPETITION - each key_event must be unique in meaning.
- CRITICAL: each event must be a single JSON string, not an array.
- Real names only - no placeholders like "Company A" or "Executive B".
- Preserve uncertainty - "may", "not certain", "possibly", "expects to".
- Numbers matter - include all dollar amounts, percentages, dates.
- Attribution is critical - always say WHO made the statement.
- Frequently mentioned = important - if someone appears many times in the data, they MUST be in key_events.`,
		buildContext(sectorID, summaries), sectorID, today)
}

// validationPrompt builds the Stage 2 prompt: deduplicate and quality-check
// the key events extracted by Stage 1.
func validationPrompt(sectorID string, events []models.KeyEvent) string {
	today := time.Now().Format(models.DateFormat)
	input, _ := json.MarshalIndent(events, "", "  ")

	return fmt.Sprintf(`You are performing quality control on extracted key events from financial news.

Your task:
1. DEDUPLICATE: remove events that describe the EXACT SAME occurrence (even if worded differently)
2. VALIDATE: keep only high-quality, specific, fact-based events
3. FILTER: remove generic statements without concrete facts

INPUT DATA:
%s

## AGGRESSIVE DEDUPLICATION - ZERO TOLERANCE

Check EVERY event against EVERY other event:
1. COMPANY NAME CHECK: if company X appears in two events, keep only one
2. PERSON NAME CHECK: if person Y appears in two events, keep only one
3. TOPIC CHECK: if the same deal/announcement/action appears twice, keep only one
4. SEMANTIC CHECK: if two events could answer the same question, keep only one

Keep ONLY the MOST detailed version of each unique fact.

QUALITY VALIDATION - KEEP events that have:
- Named individuals with specific statements/actions
- Concrete numbers, dates, percentages
- Specific company/regulatory actions
- Uncertainty language with attribution ("X said it may...")

REMOVE events that are:
- Generic sector trends without specifics
- Vague statements without attribution
- Duplicate information (including semantic duplicates)
- Low-impact routine operations

CRITICAL: you are NOT generating a summary. Output only the validated key_events array.

Output Format:
Return only valid RFC 8259 JSON with exactly THREE fields:
- sector_id: "%s"
- generated_date: "%s"
- key_events: array of validated, deduplicated events

Each key_event must have:
- date: "YYYY-MM-DD" (or "YYYY-MM" if day unknown, or "YYYY" if month unknown)
- event: detailed description (preserve attribution, uncertainty, specific numbers)

CRITICAL:
- Output validated events from the INPUT DATA above
- NO summary field in the output
- Focus on deduplication and quality, not on reducing count
- If an event is high-quality and unique, KEEP it`,
		string(input), sectorID, today)
}
