package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/clubdesk/internal/cli"
	"github.com/julianstephens/clubdesk/internal/keyring"
	"github.com/julianstephens/clubdesk/internal/logger"
	"github.com/julianstephens/clubdesk/internal/models"
	"github.com/julianstephens/clubdesk/internal/storage"
	"github.com/julianstephens/clubdesk/internal/syncer"
	"github.com/julianstephens/clubdesk/internal/utils"
)

// staleSyncAge is how old the last cache sync may be before doctor warns.
const staleSyncAge = 24 * time.Hour

type DoctorCmd struct{}

type doctorRun struct {
	ctx      *cli.Context
	hasError bool
}

func (r *doctorRun) ok(name string) {
	r.ctx.Printf("✓ %s: OK\n", name)
}

func (r *doctorRun) fail(name string, err error) {
	r.ctx.Printf("❌ %s: FAIL\n", name)
	r.ctx.Printf("   Error: %v\n", err)
	r.hasError = true
}

func (r *doctorRun) warn(name string, err error) {
	r.ctx.Printf("⚠ %s: WARNING\n", name)
	r.ctx.Printf("   %v\n", err)
}

func (r *doctorRun) skip(name, reason string) {
	r.ctx.Printf("⊘ %s: SKIPPED (%s)\n", name, reason)
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	r := &doctorRun{ctx: ctx}

	// Check 1: configuration
	configOK := true
	if err := ctx.Config.Validate(); err != nil {
		r.fail("Configuration", err)
		configOK = false
	} else if err := syncer.ValidateSchedule(ctx.Config.SyncSchedule); err != nil {
		r.fail("Configuration", err)
	} else {
		r.ok("Configuration")
	}

	// Check 2: clock and timezone
	if err := checkClockTimezone(ctx); err != nil {
		r.fail("Clock/timezone", err)
	} else {
		r.ok("Clock/timezone")
	}

	// Check 3: keyring (warning only)
	if !keyring.IsAvailable() {
		r.warn("OS keyring", errors.New("not available, sessions will not persist between runs"))
	} else {
		r.ok("OS keyring")
	}

	// Check 4: session (warning only)
	if _, err := ctx.RequireLogin(); err != nil {
		r.warn("Session", err)
	} else {
		r.ok("Session")
	}

	// Check 5: API reachable
	var fetched []models.Event
	if configOK {
		list, err := checkAPIReachable(ctx)
		if err != nil {
			r.fail("API reachable", err)
		} else {
			r.ok("API reachable")
			fetched = list
		}
	} else {
		r.skip("API reachable", "configuration invalid")
	}

	// Checks 6-8: event cache
	store, err := ctx.Cache()
	switch {
	case errors.Is(err, storage.ErrCacheDisabled):
		r.skip("Event cache", "disabled")
	case err != nil:
		r.fail("Event cache", err)
	default:
		r.ok("Event cache")

		if err := checkSchemaVersion(store); err != nil {
			r.fail("Schema version", err)
		} else {
			r.ok("Schema version")
		}

		if err := checkLastSync(store, time.Now()); err != nil {
			r.warn("Last sync", err)
		} else {
			r.ok("Last sync")
		}

		if fetched == nil {
			if cached, err := store.GetEvents(); err == nil {
				fetched = cached
			}
		}
	}

	// Check 9: event data (warning only)
	if fetched != nil {
		result := ctx.Validator.CheckEvents(fetched)
		if result.HasConflicts() {
			r.warn("Event data", fmt.Errorf("%d conflict(s) found, run 'clubdesk event check' for details", len(result.Conflicts)))
		} else {
			r.ok("Event data")
		}
	} else {
		r.skip("Event data", "no events available")
	}

	ctx.Println()
	ctx.Printf("Log file: %s\n", logger.Path(ctx.ConfigDir()))
	if r.hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	ctx.Println("All diagnostics passed!")
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if !utils.ValidateTimezone(ctx.Config.Timezone) {
		return fmt.Errorf("unknown timezone %q", ctx.Config.Timezone)
	}
	return nil
}

func checkAPIReachable(ctx *cli.Context) ([]models.Event, error) {
	reqCtx, cancel := context.WithTimeout(context.Background(), ctx.Config.Timeout())
	defer cancel()
	list, err := ctx.Client.List(reqCtx)
	if err != nil {
		return nil, err
	}
	return list, nil
}

func checkSchemaVersion(store storage.Provider) error {
	reporter, ok := store.(storage.SchemaReporter)
	if !ok {
		return nil
	}
	current, latest, err := reporter.SchemaStatus()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("cache schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d (run 'clubdesk migrate')", current, latest)
	}
	return nil
}

func checkLastSync(store storage.Provider, now time.Time) error {
	at, err := store.LastSync()
	if err != nil {
		return fmt.Errorf("failed to read last sync: %w", err)
	}
	if at.IsZero() {
		return errors.New("cache has never been synced, run 'clubdesk sync'")
	}
	if age := now.Sub(at); age > staleSyncAge {
		return fmt.Errorf("last sync was %s ago", age.Round(time.Minute))
	}
	return nil
}
