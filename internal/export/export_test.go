package export

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-ical"

	"github.com/julianstephens/clubdesk/internal/models"
)

var fixedNow = func() time.Time { return time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC) }

func decode(t *testing.T, data []byte) []ical.Event {
	t.Helper()
	cal, err := ical.NewDecoder(bytes.NewReader(data)).Decode()
	if err != nil {
		t.Fatalf("failed to decode export: %v", err)
	}
	return cal.Events()
}

func propValue(t *testing.T, ev ical.Event, name string) string {
	t.Helper()
	p := ev.Props.Get(name)
	if p == nil {
		t.Fatalf("missing %s", name)
	}
	return p.Value
}

func TestWrite(t *testing.T) {
	events := []models.Event{
		{ID: "1", Title: "Training", Date: "2024-01-01", Time: "18:00", Location: "Hall B"},
		{ID: "2", Title: "Camp", Date: "2024-06-10:2024-06-20", Description: "Summer camp", Type: "camp"},
		{ID: "3", Title: "AGM", Date: "2024-03-01"},
	}

	var buf bytes.Buffer
	n, err := Write(&buf, events, Options{Location: time.UTC, Now: fixedNow})
	if err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
	if n != 3 {
		t.Errorf("Write() = %d, want 3", n)
	}

	out := decode(t, buf.Bytes())
	if len(out) != 3 {
		t.Fatalf("decoded %d events, want 3", len(out))
	}

	training := out[0]
	if got := propValue(t, training, ical.PropUID); got != "event-1@clubdesk" {
		t.Errorf("UID = %q", got)
	}
	if got := propValue(t, training, ical.PropDateTimeStart); got != "20240101T180000Z" {
		t.Errorf("timed DTSTART = %q", got)
	}
	if got := propValue(t, training, ical.PropDateTimeEnd); got != "20240101T190000Z" {
		t.Errorf("timed DTEND = %q", got)
	}
	if got := propValue(t, training, ical.PropLocation); got != "Hall B" {
		t.Errorf("LOCATION = %q", got)
	}

	camp := out[1]
	if got := propValue(t, camp, ical.PropDateTimeStart); got != "20240610" {
		t.Errorf("range DTSTART = %q", got)
	}
	if got := propValue(t, camp, ical.PropDateTimeEnd); got != "20240621" {
		t.Errorf("range DTEND = %q, want exclusive end 20240621", got)
	}
	if v := camp.Props.Get(ical.PropDateTimeStart).Params.Get(ical.ParamValue); v != "DATE" {
		t.Errorf("range DTSTART VALUE = %q, want DATE", v)
	}

	agm := out[2]
	if got := propValue(t, agm, ical.PropDateTimeEnd); got != "20240302" {
		t.Errorf("all-day DTEND = %q", got)
	}
}

func TestCalendar_SkipsBrokenDates(t *testing.T) {
	cal, skipped, err := Calendar([]models.Event{
		{ID: "1", Title: "Ok", Date: "2024-01-01"},
		{ID: "2", Title: "Broken", Date: "someday"},
		{ID: "3", Title: "Backwards", Date: "2024-02-10:2024-02-01"},
	}, Options{Now: fixedNow})
	if err != nil {
		t.Fatalf("Calendar() failed: %v", err)
	}
	if skipped != 2 {
		t.Errorf("skipped = %d, want 2", skipped)
	}
	if len(cal.Children) != 1 {
		t.Errorf("children = %d, want 1", len(cal.Children))
	}
}

func TestCalendar_Empty(t *testing.T) {
	if _, _, err := Calendar(nil, Options{}); !errors.Is(err, ErrNothingToExport) {
		t.Errorf("Calendar(nil) error = %v, want %v", err, ErrNothingToExport)
	}
}

func TestUIDWithoutID(t *testing.T) {
	got := uid(models.Event{Title: "Draft"})
	if !strings.HasSuffix(got, "@clubdesk") || len(got) < len("@clubdesk")+36 {
		t.Errorf("uid() = %q", got)
	}
}
