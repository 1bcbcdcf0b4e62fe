package system

import (
	"bytes"
	"encoding/json"
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
	"github.com/julianstephens/clubdesk/internal/storage/sqlite"
)

// fakeAPI answers list requests with a fixed set of events.
type fakeAPI struct {
	mu     sync.Mutex
	events []models.Event
	status int
	lists  int
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.status != 0 {
		w.WriteHeader(f.status)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "Session expired"})
		return
	}
	switch r.URL.Query().Get("action") {
	case "list":
		f.lists++
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "events": f.events})
	default:
		http.Error(w, "unexpected action", http.StatusBadRequest)
	}
}

func newFakeAPI(t *testing.T, events ...models.Event) (*fakeAPI, *httptest.Server) {
	t.Helper()
	api := &fakeAPI{events: events}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return api, srv
}

// newTestContext builds a context rooted in a temp dir with a sqlite cache.
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
	var out bytes.Buffer
	ctx.Out = &out
	t.Cleanup(ctx.Close)
	return ctx, &out
}

func signIn(t *testing.T, ctx *cli.Context) {
	t.Helper()
	if err := ctx.Session.Save(models.Session{Username: "admin", Token: "secret"}); err != nil {
		t.Fatalf("Save session: %v", err)
	}
	t.Cleanup(func() { _ = ctx.Session.Clear() })
}

func fixedNow() time.Time {
	return time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
}

func sampleEvents() []models.Event {
	return []models.Event{
		{ID: "1", Title: "Training", Date: "2024-03-18", Time: "18:00", IsRecurring: true},
		{ID: "2", Title: "Training", Date: "2024-03-25", Time: "18:00", IsRecurring: true},
		{ID: "3", Title: "Camp", Date: "2024-06-10:2024-06-14", Location: "Lake"},
	}
}

// initCache creates the sqlite cache configured on ctx and attaches it.
func initCache(t *testing.T, ctx *cli.Context) *sqlite.Store {
	t.Helper()
	store := sqlite.NewStore(ctx.Config.Cache)
	if err := store.Init(); err != nil {
		t.Fatalf("Init cache: %v", err)
	}
	ctx.SetCache(store)
	return store
}

func (f *fakeAPI) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists
}
