package system

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/julianstephens/clubdesk/internal/cli"
	"github.com/julianstephens/clubdesk/internal/storage"
	"github.com/julianstephens/clubdesk/internal/storage/sqlite"
	"github.com/julianstephens/clubdesk/internal/syncer"
	"github.com/julianstephens/clubdesk/internal/utils"
)

type InitCmd struct {
	APIURL      string `name:"api-url" help:"Events endpoint, e.g. https://club.example/api/events.php."`
	AuthURL     string `name:"auth-url" help:"Login endpoint, if different from the events endpoint."`
	Locale      string `help:"Display language for dates (en, de, fr, nl)."`
	Timezone    string `help:"IANA timezone that defines today, or Local."`
	Cache       string `help:"Event cache: a sqlite file path, a postgres:// URL without password, 'keyring' or 'none'."`
	CacheSecret string `name:"cache-secret" help:"PostgreSQL connection string to keep in the OS keyring. Sets the cache to 'keyring'."`
	Force       bool   `help:"Delete an existing sqlite cache before initializing."`
}

func (c *InitCmd) apply(ctx *cli.Context) error {
	cfg := ctx.Config
	set := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	set(&cfg.APIURL, c.APIURL)
	set(&cfg.AuthURL, c.AuthURL)
	set(&cfg.Locale, c.Locale)
	set(&cfg.Timezone, c.Timezone)
	set(&cfg.Cache, c.Cache)

	if !utils.ValidateTimezone(cfg.Timezone) {
		return fmt.Errorf("invalid timezone %q", cfg.Timezone)
	}
	if err := syncer.ValidateSchedule(cfg.SyncSchedule); err != nil {
		return err
	}

	if c.CacheSecret != "" {
		if err := storeCacheSecret(ctx, c.CacheSecret); err != nil {
			return err
		}
		cfg.Cache = storage.KeyringCache
	}
	return nil
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if err := c.apply(ctx); err != nil {
		return err
	}
	if err := ctx.Config.Save(ctx.ConfigPath); err != nil {
		return err
	}
	ctx.Printf("Wrote configuration to: %s\n", ctx.ConfigPath)

	store, err := storage.Open(ctx.Config.Cache)
	if errors.Is(err, storage.ErrCacheDisabled) {
		ctx.Println("Event cache disabled")
	} else if err != nil {
		return err
	} else {
		if err := c.initCache(ctx, store); err != nil {
			return err
		}
	}

	if ctx.Config.APIURL == "" {
		ctx.Println("\nNo API URL set yet. Run 'clubdesk init --api-url <url>' or set CLUBDESK_API_URL.")
	} else {
		ctx.Println("\nNext: run 'clubdesk login' to sign in.")
	}
	return nil
}

func (c *InitCmd) initCache(ctx *cli.Context, store storage.Provider) error {
	// drop any handle opened by an earlier command before touching the file
	ctx.SetCache(nil)

	if c.Force {
		if _, ok := store.(*sqlite.Store); ok {
			path := store.GetConfigPath()
			if _, err := os.Stat(path); err == nil {
				if err := os.Remove(path); err != nil {
					return fmt.Errorf("failed to delete existing cache: %w", err)
				}
				ctx.Printf("Deleted existing cache at: %s\n", path)
			} else if !os.IsNotExist(err) {
				return fmt.Errorf("failed to access existing cache: %w", err)
			}
		}
	}

	if err := store.Init(); err != nil {
		_ = store.Close()
		return err
	}
	ctx.SetCache(store)
	ctx.Printf("Initialized event cache at: %s\n", store.GetConfigPath())
	return nil
}
