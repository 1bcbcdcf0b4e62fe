// Package recurrence expands a creation-time repeat rule into the dates of
// independent occurrences.
package recurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/clubdesk/internal/constants"
	"github.com/julianstephens/clubdesk/internal/models"
	"github.com/julianstephens/clubdesk/internal/utils"
)

// Expand returns one YYYY-MM-DD date per occurrence, in order, starting at the
// anchor. Every date is computed from the anchor directly rather than from the
// previous occurrence.
//
// Monthly steps keep the day of month and let it overflow into the following
// month when the target month is shorter (Jan 31 + 1 month is Mar 2 or Mar 3).
// Yearly steps from Feb 29 land on Mar 1 in non-leap years. monthly_date
// currently behaves exactly like monthly.
//
// RepeatNone and unknown kinds yield only the anchor. A count below one is
// treated as one; there is no upper bound here, see ClampCount.
func Expand(rule models.RepeatRule) []string {
	// noon keeps day arithmetic clear of DST transitions at midnight
	a := rule.Anchor
	base := time.Date(a.Year(), a.Month(), a.Day(), 12, 0, 0, 0, a.Location())

	if !isRepeating(rule.Kind) {
		return []string{utils.FormatDateForAPI(base)}
	}

	count := rule.Count
	if count < 1 {
		count = 1
	}

	dates := make([]string, 0, count)
	for i := 0; i < count; i++ {
		dates = append(dates, utils.FormatDateForAPI(occurrence(base, rule.Kind, i)))
	}
	return dates
}

func occurrence(base time.Time, kind models.RepeatKind, i int) time.Time {
	switch kind {
	case models.RepeatDaily:
		return base.AddDate(0, 0, i)
	case models.RepeatWeekly:
		return base.AddDate(0, 0, 7*i)
	case models.RepeatMonthly, models.RepeatMonthlyDate:
		return base.AddDate(0, i, 0)
	case models.RepeatYearly:
		return base.AddDate(i, 0, 0)
	default:
		return base
	}
}

func isRepeating(kind models.RepeatKind) bool {
	switch kind {
	case models.RepeatDaily, models.RepeatWeekly, models.RepeatMonthly,
		models.RepeatMonthlyDate, models.RepeatYearly:
		return true
	default:
		return false
	}
}

// Drafts pairs every expanded date with the non-date fields of base. A base
// whose date is a range is never repeated and is returned unchanged.
func Drafts(base models.EventDraft, rule models.RepeatRule) []models.EventDraft {
	if utils.IsDateRange(base.Date) {
		return []models.EventDraft{base}
	}

	dates := Expand(rule)
	drafts := make([]models.EventDraft, len(dates))
	for i, d := range dates {
		draft := base
		draft.Date = d
		draft.IsRecurring = models.Flag(isRepeating(rule.Kind))
		drafts[i] = draft
	}
	return drafts
}

// ParseKind parses a repeat kind as typed on the command line.
func ParseKind(s string) (models.RepeatKind, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	if norm == "" {
		return models.RepeatNone, nil
	}
	for _, k := range models.RepeatKinds {
		if string(k) == norm {
			return k, nil
		}
	}
	return "", fmt.Errorf("invalid repeat kind: %s (expected none|daily|weekly|monthly|monthly_date|yearly)", s)
}

// ClampCount bounds an occurrence count to what the forms allow.
func ClampCount(n int) int {
	if n < 1 {
		return 1
	}
	if n > constants.MaxOccurrences {
		return constants.MaxOccurrences
	}
	return n
}

// Describe renders a rule for confirmations, e.g. "weekly, 4 times".
func Describe(rule models.RepeatRule) string {
	if !isRepeating(rule.Kind) || rule.Count <= 1 {
		return "once"
	}
	label := string(rule.Kind)
	if rule.Kind == models.RepeatMonthlyDate {
		label = "monthly (by date)"
	}
	return fmt.Sprintf("%s, %d times", label, rule.Count)
}
