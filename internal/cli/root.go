package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/julianstephens/clubdesk/internal/api"
	"github.com/julianstephens/clubdesk/internal/config"
	"github.com/julianstephens/clubdesk/internal/display"
	"github.com/julianstephens/clubdesk/internal/events"
	"github.com/julianstephens/clubdesk/internal/logger"
	"github.com/julianstephens/clubdesk/internal/models"
	"github.com/julianstephens/clubdesk/internal/session"
	"github.com/julianstephens/clubdesk/internal/storage"
	"github.com/julianstephens/clubdesk/internal/utils"
	"github.com/julianstephens/clubdesk/internal/validation"
)

// ErrLoginRequired is returned by commands that change events without a session.
var ErrLoginRequired = errors.New("not signed in, run 'clubdesk login' first")

type Context struct {
	Config     *config.Config
	ConfigPath string
	Session    *session.Store
	Client     *api.Client
	Validator  *validation.Validator
	Formatter  *display.Formatter
	Location   *time.Location

	// Out receives command output. Nil means stdout.
	Out io.Writer

	cache storage.Provider
}

// NewContext wires the API client, session and display settings from cfg.
func NewContext(cfg *config.Config, configPath string, sess *session.Store) (*Context, error) {
	loc, err := utils.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	if sess == nil {
		sess = session.New()
	}
	return &Context{
		Config:     cfg,
		ConfigPath: configPath,
		Session:    sess,
		Client: api.New(api.Options{
			BaseURL: cfg.APIURL,
			AuthURL: cfg.AuthURL,
			Timeout: cfg.Timeout(),
			Tokens:  sess,
		}),
		Validator: validation.New(),
		Formatter: display.NewFormatter(cfg.Locale),
		Location:  loc,
	}, nil
}

func (c *Context) Stdout() io.Writer {
	if c.Out != nil {
		return c.Out
	}
	return os.Stdout
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Stdout(), format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Stdout(), args...)
}

// ConfigDir is the directory holding the config file, logs and lockfiles.
func (c *Context) ConfigDir() string {
	return filepath.Dir(c.ConfigPath)
}

func (c *Context) Creator() *events.Creator {
	return events.NewCreator(c.Client)
}

// Today returns the current date in the configured timezone.
func (c *Context) Today() string {
	return utils.TodayString(c.Location)
}

// RequestContext is cancelled on interrupt.
func (c *Context) RequestContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// RequireLogin returns the current session or ErrLoginRequired.
func (c *Context) RequireLogin() (models.Session, error) {
	sess, err := c.Session.Current()
	if err != nil {
		return models.Session{}, ErrLoginRequired
	}
	return sess, nil
}

// Cache opens and loads the configured event cache on first use.
func (c *Context) Cache() (storage.Provider, error) {
	if c.cache != nil {
		return c.cache, nil
	}
	store, err := storage.Open(c.Config.Cache)
	if err != nil {
		return nil, err
	}
	if err := store.Load(); err != nil {
		_ = store.Close()
		return nil, err
	}
	c.cache = store
	return store, nil
}

// SetCache replaces the cache, closing the previous one.
func (c *Context) SetCache(store storage.Provider) {
	if c.cache != nil && c.cache != store {
		_ = c.cache.Close()
	}
	c.cache = store
}

// Close releases the cache connection, if one was opened.
func (c *Context) Close() {
	if c.cache == nil {
		return
	}
	if err := c.cache.Close(); err != nil {
		logger.Warn("Failed to close event cache", "error", err)
	}
	c.cache = nil
}

// FetchEvents lists every event. With offline set, or when the API cannot
// be reached, the cached list is returned and fromCache is true. Rejected
// requests are never masked by the cache.
func (c *Context) FetchEvents(ctx context.Context, offline bool) (list []models.Event, fromCache bool, err error) {
	if !offline {
		list, err = c.Client.List(ctx)
		if err == nil {
			c.refreshCache(list)
			return list, false, nil
		}
		if !errors.Is(err, api.ErrNetwork) {
			return nil, false, fmt.Errorf("failed to list events: %w", err)
		}
		logger.Warn("API unreachable, falling back to cache", "error", err)
	}

	store, cacheErr := c.Cache()
	if cacheErr != nil {
		if err != nil {
			return nil, false, fmt.Errorf("failed to list events: %w", err)
		}
		return nil, false, fmt.Errorf("failed to open event cache: %w", cacheErr)
	}
	list, cacheErr = store.GetEvents()
	if cacheErr != nil {
		return nil, false, fmt.Errorf("failed to read event cache: %w", cacheErr)
	}
	return list, true, nil
}

func (c *Context) refreshCache(list []models.Event) {
	store, err := c.Cache()
	if err != nil {
		if !errors.Is(err, storage.ErrCacheDisabled) {
			logger.Debug("Event cache unavailable", "error", err)
		}
		return
	}
	if err := store.ReplaceEvents(list, time.Now()); err != nil {
		logger.Warn("Failed to update event cache", "error", err)
	}
}

// PrintEvents writes one line per event, with ids when showIDs is set.
func (c *Context) PrintEvents(list []models.Event, showIDs bool) {
	for _, e := range list {
		var b strings.Builder
		b.WriteString("  ")
		if e.IsRecurring {
			b.WriteString("↻ ")
		}
		b.WriteString(e.Title)
		if showIDs && e.ID != "" {
			fmt.Fprintf(&b, " (ID: %s)", e.ID)
		}
		fmt.Fprintf(&b, " - %s", c.Formatter.FormatWhen(e.Date, e.Time))
		if e.Location != "" {
			fmt.Fprintf(&b, " @ %s", e.Location)
		}
		if e.Type != "" {
			fmt.Fprintf(&b, " [%s]", e.Type)
		}
		c.Println(b.String())
	}
}
