// Package events holds the list-side rules for events: which of them a
// filter shows, in what order, and how a repeated event is submitted.
package events

import (
	"sort"

	"github.com/julianstephens/clubdesk/internal/models"
	"github.com/julianstephens/clubdesk/internal/utils"
)

// Matches reports whether e belongs to the filter bucket relative to today
// (YYYY-MM-DD). Dates compare as strings since the zero-padded form sorts
// chronologically. A range stays in the future bucket until its end date has
// passed. Events without a date belong to no bucket.
func Matches(e models.Event, today string, f models.Filter) bool {
	if e.Date == "" {
		return false
	}
	start, end, _ := utils.SplitDateRange(e.Date)

	switch f {
	case models.FilterToday:
		return start <= today && today <= end
	case models.FilterPast:
		return end < today
	case models.FilterFuture:
		return end >= today
	default:
		return false
	}
}

// Filter returns the events of list that match f, preserving order. The input
// is not modified.
func Filter(list []models.Event, today string, f models.Filter) []models.Event {
	out := make([]models.Event, 0, len(list))
	for _, e := range list {
		if Matches(e, today, f) {
			out = append(out, e)
		}
	}
	return out
}

// Counts returns the size of every filter bucket.
func Counts(list []models.Event, today string) map[models.Filter]int {
	counts := make(map[models.Filter]int, len(models.Filters))
	for _, e := range list {
		for _, f := range models.Filters {
			if Matches(e, today, f) {
				counts[f]++
			}
		}
	}
	return counts
}

// SortByDate orders events by start date then time, latest first when
// descending. Events with equal keys keep their relative order.
func SortByDate(list []models.Event, descending bool) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := sortKey(list[i]), sortKey(list[j])
		if descending {
			return a > b
		}
		return a < b
	})
}

// SortForFilter applies the order a filter is displayed in: past events most
// recent first, everything else soonest first.
func SortForFilter(list []models.Event, f models.Filter) {
	SortByDate(list, f == models.FilterPast)
}

func sortKey(e models.Event) string {
	start, _, _ := utils.SplitDateRange(e.Date)
	return start + " " + e.Time
}
