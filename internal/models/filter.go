package models

import (
	"fmt"
	"strings"
)

// Filter selects which events a list view shows relative to today.
type Filter string

const (
	FilterFuture Filter = "future"
	FilterToday  Filter = "today"
	FilterPast   Filter = "past"
)

// Filters lists the filters in tab order.
var Filters = []Filter{FilterFuture, FilterToday, FilterPast}

// ParseFilter parses a filter name, case-insensitively.
func ParseFilter(s string) (Filter, error) {
	switch Filter(strings.ToLower(strings.TrimSpace(s))) {
	case FilterFuture, "upcoming":
		return FilterFuture, nil
	case FilterToday:
		return FilterToday, nil
	case FilterPast:
		return FilterPast, nil
	default:
		return "", fmt.Errorf("invalid filter: %s (expected future|today|past)", s)
	}
}

// Label returns the tab title for f.
func (f Filter) Label() string {
	switch f {
	case FilterFuture:
		return "Future"
	case FilterToday:
		return "Today"
	case FilterPast:
		return "Past"
	default:
		return string(f)
	}
}
