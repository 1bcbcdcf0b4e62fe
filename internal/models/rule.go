package models

import "time"

// RepeatKind is the repetition chosen when creating an event.
type RepeatKind string

const (
	RepeatNone        RepeatKind = "none"
	RepeatDaily       RepeatKind = "daily"
	RepeatWeekly      RepeatKind = "weekly"
	RepeatMonthly     RepeatKind = "monthly"
	RepeatMonthlyDate RepeatKind = "monthly_date"
	RepeatYearly      RepeatKind = "yearly"
)

// RepeatKinds lists every kind in the order the forms offer them.
var RepeatKinds = []RepeatKind{
	RepeatNone,
	RepeatDaily,
	RepeatWeekly,
	RepeatMonthly,
	RepeatMonthlyDate,
	RepeatYearly,
}

// RepeatRule exists only while a creation form is open. It is expanded into
// independent drafts and never stored or sent to the backend.
type RepeatRule struct {
	Kind   RepeatKind `validate:"required,oneof=none daily weekly monthly monthly_date yearly"`
	Count  int        `validate:"min=1"`
	Anchor time.Time  `validate:"required"`
}
