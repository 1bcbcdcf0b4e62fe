package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Flag is the 0/1 boolean used by the events API. It decodes from JSON
// booleans, numbers and numeric strings, and encodes as 0 or 1.
type Flag bool

func (f Flag) MarshalJSON() ([]byte, error) {
	if f {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

func (f *Flag) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	switch strings.ToLower(raw) {
	case "", "null", "0", "false":
		*f = false
	case "1", "true":
		*f = true
	default:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid flag value %q", raw)
		}
		*f = n != 0
	}
	return nil
}

// Event is one stored occurrence. Date is either YYYY-MM-DD or a
// YYYY-MM-DD:YYYY-MM-DD range.
type Event struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Date        string `json:"date"`
	Time        string `json:"time,omitempty"` // HH:MM format
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type,omitempty"`
	IsRecurring Flag   `json:"is_recurring,omitempty"`
}

// UnmarshalJSON accepts numeric ids and HH:MM:SS times as emitted by the backend.
func (e *Event) UnmarshalJSON(data []byte) error {
	type alias Event
	var wire struct {
		alias
		ID json.RawMessage `json:"id,omitempty"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*e = Event(wire.alias)
	e.ID = ""
	if len(wire.ID) > 0 && string(wire.ID) != "null" {
		e.ID = strings.Trim(string(wire.ID), `"`)
	}
	if len(e.Time) == 8 && e.Time[5] == ':' {
		e.Time = e.Time[:5]
	}
	return nil
}

// Draft returns the creation shape of e without its id.
func (e Event) Draft() EventDraft {
	return EventDraft{
		Title:       e.Title,
		Date:        e.Date,
		Time:        e.Time,
		Location:    e.Location,
		Description: e.Description,
		Type:        e.Type,
		IsRecurring: e.IsRecurring,
	}
}

// EventDraft is the body of a create request. It is validated at the form
// boundary before it is ever submitted.
type EventDraft struct {
	Title       string `json:"title" validate:"required,max=255"`
	Date        string `json:"date" validate:"required,eventdate"`
	Time        string `json:"time,omitempty" validate:"omitempty,hhmm"`
	Location    string `json:"location,omitempty" validate:"max=255"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type,omitempty" validate:"max=64"`
	IsRecurring Flag   `json:"is_recurring"`
}

// EventUpdates is a partial update. Nil fields are omitted from the request so
// the backend leaves them unchanged.
type EventUpdates struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Date        *string `json:"date,omitempty" validate:"omitempty,eventdate"`
	Time        *string `json:"time,omitempty" validate:"omitempty,hhmm"`
	Location    *string `json:"location,omitempty" validate:"omitempty,max=255"`
	Description *string `json:"description,omitempty"`
	Type        *string `json:"type,omitempty" validate:"omitempty,max=64"`
}

// IsEmpty reports whether no field is set.
func (u EventUpdates) IsEmpty() bool {
	return u.Title == nil && u.Date == nil && u.Time == nil &&
		u.Location == nil && u.Description == nil && u.Type == nil
}

// Apply copies the set fields onto e.
func (u EventUpdates) Apply(e Event) Event {
	if u.Title != nil {
		e.Title = *u.Title
	}
	if u.Date != nil {
		e.Date = *u.Date
	}
	if u.Time != nil {
		e.Time = *u.Time
	}
	if u.Location != nil {
		e.Location = *u.Location
	}
	if u.Description != nil {
		e.Description = *u.Description
	}
	if u.Type != nil {
		e.Type = *u.Type
	}
	return e
}

// EditByTitleRequest updates every upcoming occurrence whose title matches.
type EditByTitleRequest struct {
	Title     string       `json:"title" validate:"required"`
	Updates   EventUpdates `json:"updates"`
	StartDate string       `json:"start_date,omitempty" validate:"omitempty,datesingle"`
	EndDate   string       `json:"end_date,omitempty" validate:"omitempty,datesingle"`
}

// DeleteRequest either names a single id or a bulk mode.
type DeleteRequest struct {
	ID    string `json:"id,omitempty"`
	Mode  string `json:"mode,omitempty" validate:"omitempty,oneof=upcomingTitle allOnDay"`
	Title string `json:"title,omitempty"`
	Date  string `json:"date,omitempty" validate:"omitempty,datesingle"`
}
