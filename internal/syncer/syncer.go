// Package syncer mirrors the remote event list into the local cache, once or
// on a cron schedule.
package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/julianstephens/clubdesk/internal/logger"
	"github.com/julianstephens/clubdesk/internal/models"
	"github.com/julianstephens/clubdesk/internal/storage"
)

// Lister fetches the full event list.
type Lister interface {
	List(ctx context.Context) ([]models.Event, error)
}

// Result describes one completed sync.
type Result struct {
	Count     int
	FetchedAt time.Time
}

type Syncer struct {
	client Lister
	store  storage.Provider
	now    func() time.Time

	// OnSync, if set, is called after every scheduled or initial sync in Watch.
	OnSync func(Result, error)
}

func New(client Lister, store storage.Provider) *Syncer {
	return &Syncer{
		client: client,
		store:  store,
		now:    time.Now,
	}
}

// Sync fetches the list and replaces the cache with it. The cache is left
// untouched when the fetch fails.
func (s *Syncer) Sync(ctx context.Context) (Result, error) {
	events, err := s.client.List(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to fetch events: %w", err)
	}

	res := Result{Count: len(events), FetchedAt: s.now()}
	if err := s.store.ReplaceEvents(events, res.FetchedAt); err != nil {
		return Result{}, fmt.Errorf("failed to update event cache: %w", err)
	}

	logger.Info("Event cache synced", "events", res.Count, "cache", s.store.GetConfigPath())
	return res, nil
}

// ValidateSchedule reports whether spec is a cron expression or descriptor
// such as "@every 15m".
func ValidateSchedule(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid sync schedule %q: %w", spec, err)
	}
	return nil
}

// Watch syncs immediately and then on spec until ctx is done. lockPath
// guards against a second watcher on the same machine.
func (s *Syncer) Watch(ctx context.Context, spec, lockPath string) error {
	if err := ValidateSchedule(spec); err != nil {
		return err
	}

	lock, err := AcquireLock(lockPath)
	if err != nil {
		return err
	}
	defer lock.Release()

	run := func() {
		res, err := s.Sync(ctx)
		if err != nil {
			logger.Warn("Scheduled sync failed", "error", err)
		}
		if s.OnSync != nil {
			s.OnSync(res, err)
		}
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(spec, run); err != nil {
		return fmt.Errorf("failed to schedule sync: %w", err)
	}

	logger.Info("Watching for event changes", "schedule", spec)
	run()
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	logger.Info("Stopped watching")
	return nil
}
