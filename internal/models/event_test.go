package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestFlagUnmarshal(t *testing.T) {
	tests := []struct {
		in      string
		want    Flag
		wantErr bool
	}{
		{`1`, true, false},
		{`0`, false, false},
		{`"1"`, true, false},
		{`"0"`, false, false},
		{`true`, true, false},
		{`false`, false, false},
		{`null`, false, false},
		{`""`, false, false},
		{`2`, true, false},
		{`"yes"`, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var f Flag
			err := json.Unmarshal([]byte(tt.in), &f)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal(%s) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && f != tt.want {
				t.Errorf("Unmarshal(%s) = %v, want %v", tt.in, f, tt.want)
			}
		})
	}
}

func TestEventUnmarshal_BackendShapes(t *testing.T) {
	raw := `[
		{"id": 12, "title": "Training", "date": "2024-03-04", "time": "18:30:00", "is_recurring": "1"},
		{"id": "abc", "title": "Camp", "date": "2024-06-10:2024-06-14", "time": null},
		{"title": "Draft", "date": "2024-01-01"}
	]`
	var list []Event
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if list[0].ID != "12" || list[0].Time != "18:30" || !bool(list[0].IsRecurring) {
		t.Errorf("numeric id event = %+v", list[0])
	}
	if list[1].ID != "abc" || list[1].Time != "" || list[1].IsRecurring {
		t.Errorf("string id event = %+v", list[1])
	}
	if list[2].ID != "" {
		t.Errorf("missing id = %q", list[2].ID)
	}
}

func TestEventDraft_FlagEncoding(t *testing.T) {
	data, err := json.Marshal(EventDraft{Title: "AGM", Date: "2024-03-01", IsRecurring: true})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"is_recurring":1`) {
		t.Errorf("draft JSON = %s", data)
	}
	if strings.Contains(string(data), `"time"`) {
		t.Errorf("empty time should be omitted: %s", data)
	}
}

func TestEventUpdates(t *testing.T) {
	if !(EventUpdates{}).IsEmpty() {
		t.Error("zero updates should be empty")
	}

	loc, empty := "Hall", ""
	u := EventUpdates{Location: &loc, Description: &empty}
	if u.IsEmpty() {
		t.Error("updates with fields set should not be empty")
	}

	orig := Event{ID: "1", Title: "AGM", Date: "2024-03-01", Description: "old"}
	got := u.Apply(orig)
	if got.Location != "Hall" || got.Description != "" || got.Title != "AGM" || got.ID != "1" {
		t.Errorf("Apply() = %+v", got)
	}

	data, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"location":"Hall","description":""}` {
		t.Errorf("updates JSON = %s", data)
	}
}

func TestParseFilter(t *testing.T) {
	for in, want := range map[string]Filter{
		"future": FilterFuture, "Upcoming": FilterFuture, " today ": FilterToday, "PAST": FilterPast,
	} {
		got, err := ParseFilter(in)
		if err != nil || got != want {
			t.Errorf("ParseFilter(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseFilter("later"); err == nil {
		t.Error("ParseFilter(later) should fail")
	}
}

func TestSessionValid(t *testing.T) {
	if (Session{Username: "admin"}).Valid() {
		t.Error("session without token should be invalid")
	}
	if !(Session{Username: "admin", Token: "t"}).Valid() {
		t.Error("session with username and token should be valid")
	}
}
