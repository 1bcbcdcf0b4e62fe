package eventcmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/clubdesk/internal/events"
	"github.com/julianstephens/clubdesk/internal/models"
	"github.com/julianstephens/clubdesk/internal/storage/sqlite"
)

func TestListCmd_Filters(t *testing.T) {
	_, srv := newBackend(t,
		models.Event{ID: "1", Title: "Yesterday", Date: day(-1)},
		models.Event{ID: "2", Title: "Today", Date: day(0), Time: "18:00"},
		models.Event{ID: "3", Title: "Camp", Date: day(-1) + ":" + day(1)},
		models.Event{ID: "4", Title: "Tomorrow", Date: day(1)},
	)

	tests := []struct {
		filter string
		want   []string
		absent []string
	}{
		{"future", []string{"Today", "Camp", "Tomorrow"}, []string{"Yesterday"}},
		{"today", []string{"Today", "Camp"}, []string{"Yesterday", "Tomorrow"}},
		{"past", []string{"Yesterday"}, []string{"Today", "Tomorrow", "Camp"}},
		{"all", []string{"Yesterday", "Today", "Camp", "Tomorrow"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			ctx, out := newTestContext(t, srv.URL)
			ctx.Config.Cache = ""
			if err := (&ListCmd{Filter: tt.filter, ShowIDs: true}).Run(ctx); err != nil {
				t.Fatalf("list failed: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(out.String(), "  "+w) {
					t.Errorf("output missing %q:\n%s", w, out.String())
				}
			}
			for _, a := range tt.absent {
				if strings.Contains(out.String(), "  "+a+" ") {
					t.Errorf("output should not contain %q:\n%s", a, out.String())
				}
			}
		})
	}
}

func TestListCmd_OfflineUsesCache(t *testing.T) {
	ctx, out := newTestContext(t, "")
	store := sqlite.NewStore(ctx.Config.Cache)
	if err := store.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := store.ReplaceEvents([]models.Event{{ID: "9", Title: "Cached", Date: day(3)}}, time.Now()); err != nil {
		t.Fatalf("ReplaceEvents: %v", err)
	}
	ctx.SetCache(store)

	if err := (&ListCmd{Filter: "future", Offline: true}).Run(ctx); err != nil {
		t.Fatalf("offline list failed: %v", err)
	}
	if !strings.Contains(out.String(), "showing cached events") || !strings.Contains(out.String(), "Cached") {
		t.Errorf("output:\n%s", out.String())
	}
}

func TestListCmd_Empty(t *testing.T) {
	_, srv := newBackend(t)
	ctx, out := newTestContext(t, srv.URL)
	ctx.Config.Cache = ""

	if err := (&ListCmd{Filter: "past"}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out.String(), "No past events") {
		t.Errorf("output = %q", out.String())
	}
}

func TestAddCmd_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cmd     AddCmd
		wantErr bool
	}{
		{"single", AddCmd{Title: "AGM", Date: "2024-03-01", Repeat: "none", Count: 1}, false},
		{"weekly", AddCmd{Title: "Training", Date: "2024-03-01", Repeat: "weekly", Count: 4}, false},
		{"blank title", AddCmd{Title: "  ", Date: "2024-03-01", Count: 1}, true},
		{"bad repeat", AddCmd{Title: "x", Date: "2024-03-01", Repeat: "hourly", Count: 1}, true},
		{"repeating range", AddCmd{Title: "Camp", Date: "2024-06-10", EndDate: "2024-06-14", Repeat: "yearly", Count: 2}, true},
		{"zero count", AddCmd{Title: "x", Date: "2024-03-01", Count: 0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cmd.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAddCmd_DryRun(t *testing.T) {
	b, srv := newBackend(t)
	ctx, out := newTestContext(t, srv.URL)

	cmd := &AddCmd{Title: "Dues", Date: "2024-01-31", Repeat: "monthly", Count: 3, DryRun: true}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("dry run failed: %v", err)
	}
	if got := b.calls("create"); len(got) != 0 {
		t.Errorf("dry run sent %d creates", len(got))
	}
	text := out.String()
	if !strings.Contains(text, "monthly, 3 times") {
		t.Errorf("output missing rule description:\n%s", text)
	}
	for _, want := range []string{"January 31, 2024", "March 2, 2024", "March 31, 2024"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestAddCmd_Weekly(t *testing.T) {
	b, srv := newBackend(t)
	ctx, out := newTestContext(t, srv.URL)

	cmd := &AddCmd{Title: "Training", Date: "2024-03-04", Time: "18:30", Repeat: "weekly", Count: 3}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	creates := b.calls("create")
	if len(creates) != 3 {
		t.Fatalf("creates = %d, want 3", len(creates))
	}
	wantDates := []string{"2024-03-04", "2024-03-11", "2024-03-18"}
	for i, body := range creates {
		if body["date"] != wantDates[i] {
			t.Errorf("create %d date = %v, want %s", i, body["date"], wantDates[i])
		}
		if body["time"] != "18:30" {
			t.Errorf("create %d time = %v", i, body["time"])
		}
		if body["is_recurring"] != float64(1) {
			t.Errorf("create %d is_recurring = %v, want 1", i, body["is_recurring"])
		}
	}
	if !strings.Contains(out.String(), "Created 3 occurrences of 'Training'") {
		t.Errorf("output:\n%s", out.String())
	}
}

func TestAddCmd_PartialFailureKeepsCreated(t *testing.T) {
	b, srv := newBackend(t)
	b.failCreateAfter = 2
	ctx, out := newTestContext(t, srv.URL)

	cmd := &AddCmd{Title: "Training", Date: "2024-03-04", Repeat: "weekly", Count: 5}
	err := cmd.Run(ctx)

	var batchErr *events.BatchError
	if !errors.As(err, &batchErr) {
		t.Fatalf("Run() error = %v, want a BatchError", err)
	}
	if batchErr.Created != 2 || batchErr.Total != 5 {
		t.Errorf("BatchError = %+v", batchErr)
	}
	if got := len(b.calls("create")); got != 3 {
		t.Errorf("creates attempted = %d, want 3 (stops at the first failure)", got)
	}
	if got := len(b.calls("delete")); got != 0 {
		t.Errorf("created occurrences were rolled back with %d deletes", got)
	}
	if len(b.stored()) != 2 {
		t.Errorf("stored = %d events, want 2", len(b.stored()))
	}
	if !strings.Contains(out.String(), "Created 2 of 5 occurrences") {
		t.Errorf("output:\n%s", out.String())
	}
}

func TestAddCmd_RequiresLogin(t *testing.T) {
	b, srv := newBackend(t)
	ctx, _ := newTestContext(t, srv.URL)
	if err := ctx.Session.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	err := (&AddCmd{Title: "AGM", Date: "2024-03-01", Repeat: "none", Count: 1}).Run(ctx)
	if err == nil {
		t.Fatal("add without a session should fail")
	}
	if len(b.calls("create")) != 0 {
		t.Error("no request should be sent without a session")
	}
}

func TestAddCmd_RejectsTooManyOccurrences(t *testing.T) {
	_, srv := newBackend(t)
	ctx, _ := newTestContext(t, srv.URL)
	ctx.Config.MaxOccurrences = 10

	err := (&AddCmd{Title: "Daily", Date: "2024-03-01", Repeat: "daily", Count: 11}).Run(ctx)
	if err == nil {
		t.Error("count above the configured maximum should fail")
	}
}

func TestEditCmd(t *testing.T) {
	b, srv := newBackend(t)
	ctx, out := newTestContext(t, srv.URL)

	loc := "  Hall B "
	empty := ""
	cmd := &EditCmd{ID: "42", UpdateFlags: UpdateFlags{Location: &loc, Description: &empty}}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("edit failed: %v", err)
	}

	edits := b.calls("edit")
	if len(edits) != 1 {
		t.Fatalf("edits = %d", len(edits))
	}
	body := edits[0]
	if body["id"] != "42" || body["location"] != "Hall B" {
		t.Errorf("edit body = %v", body)
	}
	if _, ok := body["title"]; ok {
		t.Errorf("unset title should be omitted: %v", body)
	}
	if !strings.Contains(out.String(), "Updated event (ID: 42)") {
		t.Errorf("output = %q", out.String())
	}
}

func TestEditCmd_Rejects(t *testing.T) {
	_, srv := newBackend(t)
	ctx, _ := newTestContext(t, srv.URL)

	if err := (&EditCmd{ID: "1"}).Run(ctx); err == nil {
		t.Error("an edit with no fields should fail")
	}

	at, rng := "18:00", "2024-06-10:2024-06-14"
	if err := (&EditCmd{ID: "1", Date: &rng, UpdateFlags: UpdateFlags{Time: &at}}).Run(ctx); err == nil {
		t.Error("a time on a date range should fail")
	}
}

func TestEditCmd_ChecksStoredEvent(t *testing.T) {
	at, single, rng, none := "18:00", "2024-06-12", "2024-06-10:2024-06-14", ""
	tests := []struct {
		name    string
		cmd     EditCmd
		wantErr string
	}{
		{"time on stored range", EditCmd{ID: "7", UpdateFlags: UpdateFlags{Time: &at}}, "time cannot be set on a date range"},
		{"range on stored time", EditCmd{ID: "8", Date: &rng}, "time cannot be set on a date range"},
		{"range clearing stored time", EditCmd{ID: "8", Date: &rng, UpdateFlags: UpdateFlags{Time: &none}}, ""},
		{"time with single date", EditCmd{ID: "7", Date: &single, UpdateFlags: UpdateFlags{Time: &at}}, ""},
		{"unknown id", EditCmd{ID: "99", UpdateFlags: UpdateFlags{Time: &at}}, "event 99 not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, srv := newBackend(t,
				models.Event{ID: "7", Title: "Camp", Date: "2024-06-10:2024-06-14"},
				models.Event{ID: "8", Title: "Training", Date: "2024-06-10", Time: "19:00"},
			)
			ctx, _ := newTestContext(t, srv.URL)

			err := tt.cmd.Run(ctx)
			edits := b.calls("edit")
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Run() error = %v", err)
				}
				if len(edits) != 1 {
					t.Errorf("edits = %d, want 1", len(edits))
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Run() error = %v, want %q", err, tt.wantErr)
			}
			if len(edits) != 0 {
				t.Errorf("rejected edit reached the backend: %v", edits)
			}
		})
	}
}

func TestEditByTitleCmd_RejectsBlankFields(t *testing.T) {
	blank, spaces := "", "   "
	tests := []struct {
		name string
		cmd  EditByTitleCmd
		flag string
	}{
		{"time", EditByTitleCmd{Title: "Training", UpdateFlags: UpdateFlags{Time: &blank}}, "--time"},
		{"location", EditByTitleCmd{Title: "Training", UpdateFlags: UpdateFlags{Location: &spaces}}, "--location"},
		{"description", EditByTitleCmd{Title: "Training", UpdateFlags: UpdateFlags{Description: &blank}}, "--description"},
		{"type", EditByTitleCmd{Title: "Training", UpdateFlags: UpdateFlags{Type: &blank}}, "--type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, srv := newBackend(t)
			ctx, _ := newTestContext(t, srv.URL)

			err := tt.cmd.Run(ctx)
			if err == nil || !strings.Contains(err.Error(), tt.flag) {
				t.Fatalf("Run() error = %v, want mention of %s", err, tt.flag)
			}
			if calls := b.calls("editByTitle"); len(calls) != 0 {
				t.Errorf("rejected edit reached the backend: %v", calls)
			}
		})
	}
}

func TestEditByTitleCmd_DefaultsStartToToday(t *testing.T) {
	b, srv := newBackend(t)
	ctx, out := newTestContext(t, srv.URL)

	at := "19:00"
	cmd := &EditByTitleCmd{Title: "Training", UpdateFlags: UpdateFlags{Time: &at}}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("edit-by-title failed: %v", err)
	}

	calls := b.calls("editByTitle")
	if len(calls) != 1 {
		t.Fatalf("calls = %d", len(calls))
	}
	body := calls[0]
	if body["start_date"] != ctx.Today() {
		t.Errorf("start_date = %v, want %s", body["start_date"], ctx.Today())
	}
	updates, _ := body["updates"].(map[string]any)
	if updates["time"] != "19:00" {
		t.Errorf("updates = %v", updates)
	}
	if !strings.Contains(out.String(), "Updated 2 occurrence(s) of 'Training'") {
		t.Errorf("output = %q", out.String())
	}
}

func TestDeleteCmd_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cmd     DeleteCmd
		wantErr bool
	}{
		{"id", DeleteCmd{ID: "5"}, false},
		{"upcoming title", DeleteCmd{UpcomingTitle: "Training"}, false},
		{"on day", DeleteCmd{OnDay: "2024-03-01"}, false},
		{"nothing", DeleteCmd{}, true},
		{"two targets", DeleteCmd{ID: "5", OnDay: "2024-03-01"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cmd.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDeleteCmd_Modes(t *testing.T) {
	b, srv := newBackend(t, models.Event{ID: "5", Title: "AGM", Date: "2024-03-01"})
	ctx, out := newTestContext(t, srv.URL)

	if err := (&DeleteCmd{ID: "5", Yes: true}).Run(ctx); err != nil {
		t.Fatalf("delete by id failed: %v", err)
	}
	if !strings.Contains(out.String(), "Deleted 1 event(s)") {
		t.Errorf("output = %q", out.String())
	}

	if err := (&DeleteCmd{UpcomingTitle: "Training", Yes: true}).Run(ctx); err != nil {
		t.Fatalf("delete by title failed: %v", err)
	}
	if err := (&DeleteCmd{OnDay: "2024-03-01", Yes: true}).Run(ctx); err != nil {
		t.Fatalf("delete on day failed: %v", err)
	}

	calls := b.calls("delete")
	if len(calls) != 3 {
		t.Fatalf("deletes = %d, want 3", len(calls))
	}
	if calls[1]["mode"] != "upcomingTitle" || calls[1]["title"] != "Training" {
		t.Errorf("title delete body = %v", calls[1])
	}
	if calls[2]["mode"] != "allOnDay" || calls[2]["date"] != "2024-03-01" {
		t.Errorf("day delete body = %v", calls[2])
	}
}

func TestDeleteCmd_InvalidDay(t *testing.T) {
	b, srv := newBackend(t)
	ctx, _ := newTestContext(t, srv.URL)

	if err := (&DeleteCmd{OnDay: "March 1st", Yes: true}).Run(ctx); err == nil {
		t.Error("an unreadable day should fail")
	}
	if len(b.calls("delete")) != 0 {
		t.Error("nothing should be sent for an invalid request")
	}
}

func TestCheckCmd_Fix(t *testing.T) {
	b, srv := newBackend(t,
		models.Event{ID: "1", Title: "Training", Date: "2024-03-04"},
		models.Event{ID: "2", Title: "training", Date: "2024-03-04"},
		models.Event{ID: "3", Title: "Training", Date: "2024-03-11"},
	)
	ctx, out := newTestContext(t, srv.URL)
	ctx.Config.Cache = ""

	if err := (&CheckCmd{Fix: true}).Run(ctx); err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !strings.Contains(out.String(), "appears 2 times") {
		t.Errorf("report missing duplicate:\n%s", out.String())
	}
	deletes := b.calls("delete")
	if len(deletes) != 1 || deletes[0]["id"] != "2" {
		t.Errorf("deletes = %v, want only id 2", deletes)
	}
	if len(b.stored()) != 2 {
		t.Errorf("stored = %v", b.stored())
	}
}

func TestCheckCmd_Clean(t *testing.T) {
	b, srv := newBackend(t, models.Event{ID: "1", Title: "AGM", Date: "2024-03-01"})
	ctx, out := newTestContext(t, srv.URL)
	ctx.Config.Cache = ""

	if err := (&CheckCmd{Fix: true}).Run(ctx); err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !strings.Contains(out.String(), "No conflicts detected.") {
		t.Errorf("output = %q", out.String())
	}
	if len(b.calls("delete")) != 0 {
		t.Error("a clean list should not trigger deletes")
	}
	if err := (&CheckCmd{Fix: true, Offline: true}).Run(ctx); err == nil {
		t.Error("--fix with --offline should fail")
	}
}

func TestExportCmd_File(t *testing.T) {
	_, srv := newBackend(t,
		models.Event{ID: "1", Title: "AGM", Date: "2024-03-01", Time: "19:00", Location: "Clubhouse"},
		models.Event{ID: "2", Title: "Camp", Date: "2024-06-10:2024-06-14"},
	)
	ctx, out := newTestContext(t, srv.URL)
	ctx.Config.Cache = ""

	path := filepath.Join(t.TempDir(), "events.ics")
	if err := (&ExportCmd{Output: path, Filter: "all", Duration: 0}).Run(ctx); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	text := string(data)
	for _, want := range []string{"BEGIN:VCALENDAR", "SUMMARY:AGM", "LOCATION:Clubhouse", "DTEND;VALUE=DATE:20240615"} {
		if !strings.Contains(text, want) {
			t.Errorf("calendar missing %q:\n%s", want, text)
		}
	}
	if !strings.Contains(out.String(), "Exported 2 event(s)") {
		t.Errorf("output = %q", out.String())
	}
}

func TestExportCmd_NothingToExport(t *testing.T) {
	_, srv := newBackend(t, models.Event{ID: "1", Title: "Old", Date: "2001-01-01"})
	ctx, _ := newTestContext(t, srv.URL)
	ctx.Config.Cache = ""

	if err := (&ExportCmd{Filter: "future"}).Run(ctx); err == nil {
		t.Error("exporting an empty selection should fail")
	}
}
