package system

import (
	"os"
	"strings"
	"testing"

	"github.com/julianstephens/clubdesk/internal/config"
	"github.com/julianstephens/clubdesk/internal/keyring"
	"github.com/julianstephens/clubdesk/internal/storage"
)

func TestInitCmd_Success(t *testing.T) {
	ctx, out := newTestContext(t, "")
	cachePath := ctx.Config.Cache

	cmd := &InitCmd{APIURL: "https://club.example/api/events.php", Locale: "de"}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("init command failed: %v", err)
	}

	if _, err := os.Stat(cachePath); os.IsNotExist(err) {
		t.Errorf("cache file was not created at %s", cachePath)
	}

	saved, err := config.Load(ctx.ConfigPath)
	if err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	if saved.APIURL != "https://club.example/api/events.php" || saved.Locale != "de" {
		t.Errorf("saved config = %+v", saved)
	}
	if !strings.Contains(out.String(), "clubdesk login") {
		t.Errorf("output should point at login, got %q", out.String())
	}
}

func TestInitCmd_Idempotent(t *testing.T) {
	ctx, _ := newTestContext(t, "")

	cmd := &InitCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("first init failed: %v", err)
	}
	if err := cmd.Run(ctx); err != nil {
		t.Errorf("second init failed (should be idempotent): %v", err)
	}
}

func TestInitCmd_ForceDeletesExisting(t *testing.T) {
	ctx, _ := newTestContext(t, "")

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("initial init failed: %v", err)
	}
	store, err := ctx.Cache()
	if err != nil {
		t.Fatalf("Cache(): %v", err)
	}
	if err := store.ReplaceEvents(sampleEvents(), fixedNow()); err != nil {
		t.Fatalf("ReplaceEvents: %v", err)
	}

	if err := (&InitCmd{Force: true}).Run(ctx); err != nil {
		t.Fatalf("init with force failed: %v", err)
	}

	store, err = ctx.Cache()
	if err != nil {
		t.Fatalf("Cache() after force: %v", err)
	}
	events, err := store.GetEvents()
	if err != nil {
		t.Fatalf("GetEvents: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("cache should be empty after force, got %d events", len(events))
	}
}

func TestInitCmd_DisabledCache(t *testing.T) {
	ctx, out := newTestContext(t, "")

	if err := (&InitCmd{Cache: "none"}).Run(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if !strings.Contains(out.String(), "Event cache disabled") {
		t.Errorf("output = %q", out.String())
	}
}

func TestInitCmd_InvalidTimezone(t *testing.T) {
	ctx, _ := newTestContext(t, "")

	if err := (&InitCmd{Timezone: "Mars/Olympus"}).Run(ctx); err == nil {
		t.Error("expected an error for an unknown timezone")
	}
	if _, err := os.Stat(ctx.ConfigPath); !os.IsNotExist(err) {
		t.Error("config should not be written when validation fails")
	}
}

func TestInitCmd_CacheSecret(t *testing.T) {
	ctx, _ := newTestContext(t, "")
	defer func() { _ = keyring.DeleteConnectionString() }()

	cmd := &InitCmd{CacheSecret: "not-a-connection-string"}
	if err := cmd.Run(ctx); err == nil {
		t.Fatal("expected an error for an invalid connection string")
	}

	// A valid secret is stored even though connecting to it fails here.
	cmd = &InitCmd{CacheSecret: "postgres://admin:pw@127.0.0.1:1/clubdesk?sslmode=disable&connect_timeout=1"}
	_ = cmd.Run(ctx)

	stored, err := keyring.GetConnectionString()
	if err != nil {
		t.Fatalf("connection string not stored: %v", err)
	}
	if stored != cmd.CacheSecret {
		t.Errorf("stored = %q", stored)
	}
	if ctx.Config.Cache != storage.KeyringCache {
		t.Errorf("cache = %q, want %q", ctx.Config.Cache, storage.KeyringCache)
	}
}

func TestMigrateCmd(t *testing.T) {
	ctx, out := newTestContext(t, "")

	if err := (&MigrateCmd{}).Run(ctx); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if !strings.Contains(out.String(), "schema is at version") {
		t.Errorf("output = %q", out.String())
	}

	ctx.Config.Cache = "none"
	out.Reset()
	if err := (&MigrateCmd{}).Run(ctx); err != nil {
		t.Fatalf("migrate with disabled cache failed: %v", err)
	}
	if !strings.Contains(out.String(), "nothing to migrate") {
		t.Errorf("output = %q", out.String())
	}
}
