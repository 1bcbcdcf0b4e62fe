package system

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/clubdesk/internal/cli"
	"github.com/julianstephens/clubdesk/internal/logger"
	"github.com/julianstephens/clubdesk/internal/storage"
	"github.com/julianstephens/clubdesk/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	if err := ctx.Config.Validate(); err != nil {
		return err
	}
	if _, err := ctx.RequireLogin(); err != nil {
		return err
	}

	opts := tui.Options{
		Backend:        ctx.Client,
		Creator:        ctx.Creator(),
		Formatter:      ctx.Formatter,
		Validator:      ctx.Validator,
		Location:       ctx.Location,
		MaxOccurrences: ctx.Config.MaxOccurrences,
	}
	store, err := ctx.Cache()
	switch {
	case err == nil:
		opts.Cache = store
	case !errors.Is(err, storage.ErrCacheDisabled):
		logger.Warn("Event cache unavailable, running without it", "error", err)
	}

	p := tea.NewProgram(tui.NewModel(opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
