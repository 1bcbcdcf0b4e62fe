package eventcmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/clubdesk/internal/cli"
	"github.com/julianstephens/clubdesk/internal/config"
	"github.com/julianstephens/clubdesk/internal/models"
	"github.com/julianstephens/clubdesk/internal/session"
)

// fakeBackend keeps events in memory and answers the events API.
type fakeBackend struct {
	mu      sync.Mutex
	events  []models.Event
	nextID  int
	actions []string
	bodies  []map[string]any
	// failCreateAfter rejects every create once this many have succeeded.
	failCreateAfter int
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	action := r.URL.Query().Get("action")
	b.actions = append(b.actions, action)

	body := map[string]any{}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}
	b.bodies = append(b.bodies, body)

	reply := func(v map[string]any) {
		v["success"] = true
		_ = json.NewEncoder(w).Encode(v)
	}

	switch action {
	case "list":
		reply(map[string]any{"events": b.events})
	case "create":
		created := 0
		for _, a := range b.actions {
			if a == "create" {
				created++
			}
		}
		if b.failCreateAfter > 0 && created > b.failCreateAfter {
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "database is locked"})
			return
		}
		b.nextID++
		id := fmt.Sprint(100 + b.nextID)
		b.events = append(b.events, models.Event{ID: id, Title: fmt.Sprint(body["title"]), Date: fmt.Sprint(body["date"])})
		reply(map[string]any{"id": id})
	case "edit":
		reply(map[string]any{})
	case "editByTitle":
		reply(map[string]any{"updated": 2})
	case "delete":
		deleted := 0
		kept := b.events[:0]
		for _, e := range b.events {
			if id, _ := body["id"].(string); id != "" && e.ID == id {
				deleted++
				continue
			}
			kept = append(kept, e)
		}
		b.events = kept
		reply(map[string]any{"deleted": deleted})
	default:
		http.Error(w, "unexpected action", http.StatusBadRequest)
	}
}

func (b *fakeBackend) calls(action string) []map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []map[string]any
	for i, a := range b.actions {
		if a == action {
			out = append(out, b.bodies[i])
		}
	}
	return out
}

func (b *fakeBackend) stored() []models.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Event(nil), b.events...)
}

func newBackend(t *testing.T, events ...models.Event) (*fakeBackend, *httptest.Server) {
	t.Helper()
	b := &fakeBackend{events: events}
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)
	return b, srv
}

// newTestContext returns a signed-in context talking to apiURL, with output captured.
func newTestContext(t *testing.T, apiURL string) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	gokeyring.MockInit()

	dir := t.TempDir()
	cfg := config.DefaultConfig(dir)
	cfg.APIURL = apiURL
	cfg.Timezone = "UTC"

	ctx, err := cli.NewContext(cfg, filepath.Join(dir, "config.yaml"), session.New())
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	if err := ctx.Session.Save(models.Session{Username: "admin", Token: "secret"}); err != nil {
		t.Fatalf("Save session: %v", err)
	}
	var out bytes.Buffer
	ctx.Out = &out
	t.Cleanup(func() {
		_ = ctx.Session.Clear()
		ctx.Close()
	})
	return ctx, &out
}

// day returns the date offset days from today in UTC.
func day(offset int) string {
	return time.Now().UTC().AddDate(0, 0, offset).Format("2006-01-02")
}
