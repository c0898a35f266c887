package weekly

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/sectorwire/sectorwire/internal/models"
)

// parseEventDate accepts full and partial dates: YYYY-MM-DD, YYYY-MM, YYYY.
func parseEventDate(s string) (time.Time, bool) {
	switch len(s) {
	case 10:
		t, err := time.Parse("2006-01-02", s)
		return t, err == nil
	case 7:
		t, err := time.Parse("2006-01", s)
		return t, err == nil
	case 4:
		t, err := time.Parse("2006", s)
		return t, err == nil
	}
	return time.Time{}, false
}

// weekPeriod derives the report period from the actual event dates, falling
// back to the current week when no event carries a usable date.
func weekPeriod(events []models.SectorEvent, now time.Time) string {
	var min, max time.Time
	for _, e := range events {
		if strings.EqualFold(e.Date, "unknown") {
			continue
		}
		t, ok := parseEventDate(e.Date)
		if !ok {
			continue
		}
		if min.IsZero() || t.Before(min) {
			min = t
		}
		if max.IsZero() || t.After(max) {
			max = t
		}
	}

	if min.IsZero() {
		return fmt.Sprintf("Week of %s", now.Format("January 02, 2006"))
	}

	return fmt.Sprintf("%s - %s", min.Format("January 02"), max.Format("January 02, 2006"))
}

// repeatedEntities returns capitalized words appearing in more than one
// headline, a cheap hint list handed to the dedup prompt so the model
// rechecks those events against each other.
func repeatedEntities(events []models.TopEvent) []string {
	counts := make(map[string]int)
	for _, e := range events {
		seen := make(map[string]struct{})
		for _, word := range strings.Fields(e.Headline) {
			word = strings.TrimFunc(word, func(r rune) bool {
				return !unicode.IsLetter(r) && !unicode.IsDigit(r)
			})
			if len(word) <= 2 {
				continue
			}
			if !unicode.IsUpper([]rune(word)[0]) {
				continue
			}
			// Count each word once per headline
			if _, ok := seen[word]; ok {
				continue
			}
			seen[word] = struct{}{}
			counts[word]++
		}
	}

	var repeated []string
	for word, n := range counts {
		if n > 1 {
			repeated = append(repeated, word)
		}
	}
	return repeated
}
