package system

import (
	"errors"
	"fmt"

	"github.com/julianstephens/clubdesk/internal/cli"
	"github.com/julianstephens/clubdesk/internal/storage"
)

type MigrateCmd struct{}

// Run brings the cache schema up to date.
func (c *MigrateCmd) Run(ctx *cli.Context) error {
	store, err := storage.Open(ctx.Config.Cache)
	if errors.Is(err, storage.ErrCacheDisabled) {
		ctx.Println("Event cache disabled, nothing to migrate.")
		return nil
	}
	if err != nil {
		return err
	}
	defer store.Close()

	reporter, ok := store.(storage.SchemaReporter)
	if !ok {
		return fmt.Errorf("cache %s does not support migrations", store.GetConfigPath())
	}

	if err := store.Init(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	current, latest, err := reporter.SchemaStatus()
	if err != nil {
		return err
	}
	if current != latest {
		return fmt.Errorf("migration incomplete: schema at version %d of %d", current, latest)
	}
	ctx.Printf("Event cache schema is at version %d.\n", current)
	return nil
}
