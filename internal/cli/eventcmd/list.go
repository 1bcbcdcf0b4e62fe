package eventcmd

import (
	"fmt"
	"strings"

	"github.com/julianstephens/clubdesk/internal/cli"
	"github.com/julianstephens/clubdesk/internal/events"
	"github.com/julianstephens/clubdesk/internal/models"
)

const filterAll = "all"

type ListCmd struct {
	Filter  string `short:"f" help:"Which events to show (future|today|past|all)." default:"future" enum:"future,upcoming,today,past,all"`
	Remote  bool   `help:"Let the server decide what is upcoming or past instead of filtering by the local date."`
	Offline bool   `help:"Read the local cache instead of the API."`
	ShowIDs bool   `help:"Show event IDs." name:"show-ids"`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	if !c.Offline {
		if err := ctx.Config.Validate(); err != nil {
			return err
		}
	}

	list, fromCache, heading, err := c.load(ctx)
	if err != nil {
		return err
	}

	if fromCache {
		ctx.Println(cacheNotice(ctx))
	}
	if len(list) == 0 {
		ctx.Printf("No %s events\n", heading)
		return nil
	}
	ctx.Printf("%s events (%d):\n", capitalize(heading), len(list))
	ctx.PrintEvents(list, c.ShowIDs)
	return nil
}

func (c *ListCmd) load(ctx *cli.Context) ([]models.Event, bool, string, error) {
	reqCtx, cancel := ctx.RequestContext()
	defer cancel()

	if c.Filter == filterAll {
		list, fromCache, err := ctx.FetchEvents(reqCtx, c.Offline)
		if err != nil {
			return nil, false, "", err
		}
		out := append([]models.Event(nil), list...)
		events.SortByDate(out, false)
		return out, fromCache, filterAll, nil
	}

	filter, err := models.ParseFilter(c.Filter)
	if err != nil {
		return nil, false, "", err
	}
	heading := strings.ToLower(filter.Label())

	if c.Remote && !c.Offline && filter != models.FilterToday {
		var list []models.Event
		if filter == models.FilterPast {
			list, err = ctx.Client.Past(reqCtx)
		} else {
			list, err = ctx.Client.Upcoming(reqCtx)
		}
		if err != nil {
			return nil, false, "", fmt.Errorf("failed to list %s events: %w", heading, err)
		}
		return list, false, heading, nil
	}

	list, fromCache, err := ctx.FetchEvents(reqCtx, c.Offline)
	if err != nil {
		return nil, false, "", err
	}
	out := events.Filter(list, ctx.Today(), filter)
	events.SortForFilter(out, filter)
	return out, fromCache, heading, nil
}

func cacheNotice(ctx *cli.Context) string {
	store, err := ctx.Cache()
	if err != nil {
		return "(showing cached events)"
	}
	at, err := store.LastSync()
	if err != nil || at.IsZero() {
		return "(showing cached events, never synced)"
	}
	return fmt.Sprintf("(showing cached events from %s)", at.In(ctx.Location).Format("2006-01-02 15:04"))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
