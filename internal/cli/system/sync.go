package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/clubdesk/internal/cli"
	"github.com/julianstephens/clubdesk/internal/storage"
	"github.com/julianstephens/clubdesk/internal/syncer"
)

type SyncCmd struct {
	Watch    bool   `short:"w" help:"Keep running and sync on the configured schedule."`
	Schedule string `help:"Cron expression or descriptor such as '@every 5m'. Overrides sync_schedule."`
}

func (c *SyncCmd) Run(ctx *cli.Context) error {
	if err := ctx.Config.Validate(); err != nil {
		return err
	}
	store, err := ctx.Cache()
	if errors.Is(err, storage.ErrCacheDisabled) {
		return errors.New("event cache is disabled, set 'cache' in the config or run 'clubdesk init --cache <path>'")
	}
	if err != nil {
		return err
	}

	s := syncer.New(ctx.Client, store)

	reqCtx, cancel := ctx.RequestContext()
	defer cancel()

	if !c.Watch {
		res, err := s.Sync(reqCtx)
		if err != nil {
			return err
		}
		ctx.Printf("Synced %d event(s) to %s\n", res.Count, store.GetConfigPath())
		return nil
	}

	spec := strings.TrimSpace(c.Schedule)
	if spec == "" {
		spec = ctx.Config.SyncSchedule
	}
	s.OnSync = func(res syncer.Result, err error) {
		at := res.FetchedAt.In(ctx.Location).Format("15:04:05")
		if err != nil {
			ctx.Printf("✗ sync failed: %v\n", err)
			return
		}
		ctx.Printf("[%s] synced %d event(s)\n", at, res.Count)
	}

	ctx.Printf("Watching (%s). Press Ctrl+C to stop.\n", spec)
	if err := s.Watch(reqCtx, spec, syncer.LockPath(ctx.ConfigDir())); err != nil {
		return fmt.Errorf("sync watch failed: %w", err)
	}
	return nil
}
