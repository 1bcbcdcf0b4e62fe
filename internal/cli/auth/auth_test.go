package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/clubdesk/internal/cli"
	"github.com/julianstephens/clubdesk/internal/config"
	"github.com/julianstephens/clubdesk/internal/session"
)

type fakeAuth struct {
	mu      sync.Mutex
	logouts int
	auth    []string
	// logoutStatus, when set, makes logout fail with that status.
	logoutStatus int
}

func (f *fakeAuth) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.auth = append(f.auth, r.Header.Get("Authorization"))

	switch r.URL.Query().Get("action") {
	case "login":
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "Invalid credentials"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"token":   "tok-123",
			"user":    map[string]string{"username": body["username"], "role": "admin"},
		})
	case "logout":
		f.logouts++
		if f.logoutStatus != 0 {
			w.WriteHeader(f.logoutStatus)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	default:
		http.Error(w, "unexpected action", http.StatusBadRequest)
	}
}

func setup(t *testing.T) (*fakeAuth, *cli.Context, *bytes.Buffer) {
	t.Helper()
	gokeyring.MockInit()

	f := &fakeAuth{}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfg := config.DefaultConfig(dir)
	cfg.APIURL = srv.URL
	cfg.Cache = ""
	ctx, err := cli.NewContext(cfg, filepath.Join(dir, "config.yaml"), session.New())
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	var out bytes.Buffer
	ctx.Out = &out
	t.Cleanup(func() { _ = ctx.Session.Clear() })
	return f, ctx, &out
}

func TestLoginLogout(t *testing.T) {
	f, ctx, out := setup(t)

	if err := (&LoginCmd{Username: " alice ", Password: "hunter2"}).Run(ctx); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if !strings.Contains(out.String(), "Signed in as alice (admin)") {
		t.Errorf("output = %q", out.String())
	}
	if ctx.Session.Token() != "tok-123" {
		t.Errorf("token = %q", ctx.Session.Token())
	}

	// a fresh store reads the persisted session
	reloaded := session.New()
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cur, err := reloaded.Current(); err != nil || cur.Username != "alice" {
		t.Errorf("reloaded session = %+v, %v", cur, err)
	}

	out.Reset()
	if err := (&WhoamiCmd{}).Run(ctx); err != nil {
		t.Fatalf("whoami failed: %v", err)
	}
	if !strings.Contains(out.String(), "alice") || !strings.Contains(out.String(), "admin") {
		t.Errorf("whoami output = %q", out.String())
	}

	if err := (&LogoutCmd{}).Run(ctx); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	f.mu.Lock()
	lastAuth := f.auth[len(f.auth)-1]
	f.mu.Unlock()
	if lastAuth != "Bearer tok-123" {
		t.Errorf("logout Authorization = %q", lastAuth)
	}
	if _, err := ctx.RequireLogin(); err == nil {
		t.Error("session should be cleared after logout")
	}
}

func TestLogin_BadPassword(t *testing.T) {
	_, ctx, _ := setup(t)

	err := (&LoginCmd{Username: "alice", Password: "wrong"}).Run(ctx)
	if err == nil || !strings.Contains(err.Error(), "Invalid credentials") {
		t.Errorf("Run() = %v, want the server message", err)
	}
	if _, err := ctx.RequireLogin(); err == nil {
		t.Error("no session should be saved after a failed login")
	}
}

func TestLogout_ServerFailureStillClears(t *testing.T) {
	f, ctx, out := setup(t)
	f.logoutStatus = http.StatusInternalServerError

	if err := (&LoginCmd{Username: "alice", Password: "hunter2"}).Run(ctx); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := (&LogoutCmd{}).Run(ctx); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if !strings.Contains(out.String(), "Signed out") {
		t.Errorf("output = %q", out.String())
	}
	if _, err := ctx.RequireLogin(); err == nil {
		t.Error("session should be cleared even when the server logout fails")
	}
}

func TestLogout_NotSignedIn(t *testing.T) {
	f, ctx, out := setup(t)

	if err := (&LogoutCmd{}).Run(ctx); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if !strings.Contains(out.String(), "Not signed in") {
		t.Errorf("output = %q", out.String())
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.logouts != 0 {
		t.Error("no request should be sent without a session")
	}
}

func TestWhoami_NotSignedIn(t *testing.T) {
	_, ctx, _ := setup(t)
	if err := (&WhoamiCmd{}).Run(ctx); err == nil {
		t.Error("whoami without a session should fail")
	}
}
