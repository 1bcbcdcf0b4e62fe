package eventcmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/clubdesk/internal/cli"
	"github.com/julianstephens/clubdesk/internal/constants"
	"github.com/julianstephens/clubdesk/internal/models"
)

type DeleteCmd struct {
	ID            string `arg:"" optional:"" help:"ID of the occurrence to delete."`
	UpcomingTitle string `name:"upcoming-title" help:"Delete every upcoming occurrence with this title."`
	OnDay         string `name:"on-day" help:"Delete every event on this date (YYYY-MM-DD)."`
	Yes           bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *DeleteCmd) request() models.DeleteRequest {
	switch {
	case c.UpcomingTitle != "":
		return models.DeleteRequest{Mode: constants.DeleteModeUpcomingTitle, Title: strings.TrimSpace(c.UpcomingTitle)}
	case c.OnDay != "":
		return models.DeleteRequest{Mode: constants.DeleteModeAllOnDay, Date: strings.TrimSpace(c.OnDay)}
	default:
		return models.DeleteRequest{ID: strings.TrimSpace(c.ID)}
	}
}

// Validate allows exactly one target.
func (c *DeleteCmd) Validate() error {
	n := 0
	for _, s := range []string{c.ID, c.UpcomingTitle, c.OnDay} {
		if strings.TrimSpace(s) != "" {
			n++
		}
	}
	if n != 1 {
		return errors.New("specify exactly one of <id>, --upcoming-title or --on-day")
	}
	return nil
}

func (c *DeleteCmd) describe(ctx *cli.Context, req models.DeleteRequest) string {
	switch req.Mode {
	case constants.DeleteModeUpcomingTitle:
		return fmt.Sprintf("every upcoming '%s'", req.Title)
	case constants.DeleteModeAllOnDay:
		return "every event on " + ctx.Formatter.FormatDate(req.Date)
	default:
		return "event " + req.ID
	}
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	req := c.request()
	if err := ctx.Validator.ValidateDelete(req); err != nil {
		return err
	}
	if err := ctx.Config.Validate(); err != nil {
		return err
	}
	if _, err := ctx.RequireLogin(); err != nil {
		return err
	}

	what := c.describe(ctx, req)
	if !c.Yes {
		ok, err := confirm(fmt.Sprintf("Delete %s?", what))
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Cancelled")
			return nil
		}
	}

	reqCtx, cancel := ctx.RequestContext()
	defer cancel()
	n, err := ctx.Client.Delete(reqCtx, req)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", what, err)
	}
	ctx.Printf("Deleted %d event(s)\n", n)
	return nil
}

func confirm(title string) (bool, error) {
	if fi, err := os.Stdin.Stat(); err == nil && fi.Mode()&os.ModeCharDevice == 0 {
		return false, errors.New("no terminal to confirm on, pass --yes")
	}
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description("This cannot be undone.").
				Affirmative("Delete").
				Negative("Keep").
				Value(&ok),
		),
	).WithTheme(huh.ThemeDracula()).Run()
	return ok, err
}
