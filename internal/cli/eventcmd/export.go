package eventcmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/julianstephens/clubdesk/internal/cli"
	"github.com/julianstephens/clubdesk/internal/events"
	"github.com/julianstephens/clubdesk/internal/export"
	"github.com/julianstephens/clubdesk/internal/models"
)

type ExportCmd struct {
	Output   string        `short:"o" help:"Write the calendar to this file instead of stdout." type:"path"`
	Filter   string        `short:"f" help:"Which events to export (future|today|past|all)." default:"all" enum:"future,upcoming,today,past,all"`
	Duration time.Duration `help:"Length given to events that have a start time." default:"1h"`
	Offline  bool          `help:"Export the local cache instead of the API."`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	if !c.Offline {
		if err := ctx.Config.Validate(); err != nil {
			return err
		}
	}

	reqCtx, cancel := ctx.RequestContext()
	defer cancel()

	list, _, err := ctx.FetchEvents(reqCtx, c.Offline)
	if err != nil {
		return err
	}
	if c.Filter != filterAll {
		filter, err := models.ParseFilter(c.Filter)
		if err != nil {
			return err
		}
		list = events.Filter(list, ctx.Today(), filter)
	}
	events.SortByDate(list, false)

	var w io.Writer = ctx.Stdout()
	if c.Output != "" {
		f, err := os.OpenFile(c.Output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", c.Output, err)
		}
		defer f.Close()
		w = f
	}

	n, err := export.Write(w, list, export.Options{
		Location:      ctx.Location,
		TimedDuration: c.Duration,
	})
	if err != nil {
		return err
	}
	if c.Output != "" {
		ctx.Printf("Exported %d event(s) to %s\n", n, c.Output)
	}
	return nil
}
