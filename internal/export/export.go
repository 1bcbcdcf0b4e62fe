// Package export writes events as an iCalendar feed.
package export

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"github.com/julianstephens/clubdesk/internal/constants"
	"github.com/julianstephens/clubdesk/internal/logger"
	"github.com/julianstephens/clubdesk/internal/models"
	"github.com/julianstephens/clubdesk/internal/utils"
)

const productID = "-//" + constants.AppName + "//events " + constants.Version + "//EN"

// ErrNothingToExport is returned when no event could be converted.
var ErrNothingToExport = errors.New("no events to export")

type Options struct {
	// Location anchors timed events. Nil or time.Local is written as UTC.
	Location *time.Location
	// TimedDuration is the length given to events that have a time. Defaults to one hour.
	TimedDuration time.Duration
	Now           func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.TimedDuration <= 0 {
		o.TimedDuration = time.Hour
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Calendar converts events to a VCALENDAR. Single dates become all-day
// events, or timed ones when a time is set. Ranges become all-day spans with
// an exclusive end date. Events with unreadable dates are skipped.
func Calendar(events []models.Event, opts Options) (*ical.Calendar, int, error) {
	opts = opts.withDefaults()

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	stamp := opts.Now().UTC()
	skipped := 0
	for _, e := range events {
		ve, err := toVEvent(e, stamp, opts)
		if err != nil {
			logger.Warn("Skipping event in export", "title", e.Title, "date", e.Date, "error", err)
			skipped++
			continue
		}
		cal.Children = append(cal.Children, ve)
	}

	if len(cal.Children) == 0 {
		return nil, skipped, ErrNothingToExport
	}
	return cal, skipped, nil
}

// Write encodes events to w and returns how many were written.
func Write(w io.Writer, events []models.Event, opts Options) (int, error) {
	cal, _, err := Calendar(events, opts)
	if err != nil {
		return 0, err
	}
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return 0, fmt.Errorf("failed to encode calendar: %w", err)
	}
	return len(cal.Children), nil
}

func toVEvent(e models.Event, stamp time.Time, opts Options) (*ical.Component, error) {
	start, end, isRange := utils.SplitDateRange(e.Date)
	if !utils.IsValidDate(start) || !utils.IsValidDate(end) {
		return nil, fmt.Errorf("invalid date %q", e.Date)
	}
	if end < start {
		return nil, fmt.Errorf("range %q ends before it starts", e.Date)
	}

	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, uid(e))
	ve.Props.SetText(ical.PropSummary, e.Title)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, stamp)

	startDay := utils.ParseDateStringIn(start, time.UTC)
	endDay := utils.ParseDateStringIn(end, time.UTC)

	switch {
	case !isRange && e.Time != "":
		at, err := utils.CombineDateAndTime(start, e.Time, opts.Location)
		if err != nil {
			return nil, err
		}
		if opts.Location == time.Local {
			at = at.UTC()
		}
		ve.Props.SetDateTime(ical.PropDateTimeStart, at)
		ve.Props.SetDateTime(ical.PropDateTimeEnd, at.Add(opts.TimedDuration))
	default:
		ve.Props.SetDate(ical.PropDateTimeStart, startDay)
		ve.Props.SetDate(ical.PropDateTimeEnd, endDay.AddDate(0, 0, 1))
	}

	if e.Location != "" {
		ve.Props.SetText(ical.PropLocation, e.Location)
	}
	if e.Description != "" {
		ve.Props.SetText(ical.PropDescription, e.Description)
	}
	if e.Type != "" {
		ve.Props.SetText(ical.PropCategories, e.Type)
	}
	return ve, nil
}

func uid(e models.Event) string {
	if e.ID != "" {
		return fmt.Sprintf("event-%s@%s", e.ID, constants.AppName)
	}
	return uuid.NewString() + "@" + constants.AppName
}
