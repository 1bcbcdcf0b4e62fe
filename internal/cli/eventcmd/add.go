package eventcmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/clubdesk/internal/cli"
	"github.com/julianstephens/clubdesk/internal/events"
	"github.com/julianstephens/clubdesk/internal/models"
	"github.com/julianstephens/clubdesk/internal/recurrence"
	"github.com/julianstephens/clubdesk/internal/utils"
)

type AddCmd struct {
	Title       string `arg:"" help:"Event title."`
	Date        string `short:"d" help:"Date (YYYY-MM-DD), or first day of a multi-day event." required:""`
	EndDate     string `help:"Last day of a multi-day event (YYYY-MM-DD)."`
	Time        string `short:"t" help:"Start time (HH:MM). Not allowed on multi-day events."`
	Location    string `short:"l" help:"Where the event takes place."`
	Description string `help:"Free text shown with the event."`
	Type        string `help:"Category, e.g. training or match."`
	Repeat      string `short:"r" help:"Repeat kind (none|daily|weekly|monthly|monthly_date|yearly)." default:"none"`
	Count       int    `short:"n" help:"Number of occurrences, including the first." default:"1"`
	DryRun      bool   `help:"Print the dates that would be created without creating them."`
}

func (c *AddCmd) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return errors.New("title cannot be empty")
	}
	kind, err := recurrence.ParseKind(c.Repeat)
	if err != nil {
		return err
	}
	if c.EndDate != "" && kind != models.RepeatNone {
		return errors.New("multi-day events cannot repeat")
	}
	if c.Count < 1 {
		return errors.New("count must be at least 1")
	}
	return nil
}

// build returns the base draft and the rule it expands with.
func (c *AddCmd) build(ctx *cli.Context) (models.EventDraft, models.RepeatRule, error) {
	kind, err := recurrence.ParseKind(c.Repeat)
	if err != nil {
		return models.EventDraft{}, models.RepeatRule{}, err
	}
	draft := models.EventDraft{
		Title:       strings.TrimSpace(c.Title),
		Date:        utils.JoinDateRange(strings.TrimSpace(c.Date), strings.TrimSpace(c.EndDate)),
		Time:        strings.TrimSpace(c.Time),
		Location:    strings.TrimSpace(c.Location),
		Description: strings.TrimSpace(c.Description),
		Type:        strings.TrimSpace(c.Type),
	}
	rule := models.RepeatRule{
		Kind:   kind,
		Count:  c.Count,
		Anchor: utils.ParseDateStringIn(strings.TrimSpace(c.Date), ctx.Location),
	}
	if kind == models.RepeatNone {
		rule.Count = 1
	}

	if err := ctx.Validator.ValidateDraft(draft); err != nil {
		return draft, rule, err
	}
	if err := ctx.Validator.ValidateRule(rule, ctx.Config.MaxOccurrences); err != nil {
		return draft, rule, err
	}
	return draft, rule, nil
}

func (c *AddCmd) Run(ctx *cli.Context) error {
	draft, rule, err := c.build(ctx)
	if err != nil {
		return err
	}

	drafts := recurrence.Drafts(draft, rule)
	if c.DryRun {
		ctx.Printf("Would create '%s' (%s):\n", draft.Title, recurrence.Describe(rule))
		for _, d := range drafts {
			ctx.Println(previewLine(ctx, d))
		}
		return nil
	}

	if err := ctx.Config.Validate(); err != nil {
		return err
	}
	if _, err := ctx.RequireLogin(); err != nil {
		return err
	}

	reqCtx, cancel := ctx.RequestContext()
	defer cancel()

	creator := ctx.Creator()
	creator.OnCreated = func(created, total int, ev models.Event) {
		if total > 1 {
			ctx.Printf("  ✓ %s (%d/%d)\n", ctx.Formatter.FormatWhen(ev.Date, ev.Time), created, total)
		}
	}

	created, err := creator.Submit(reqCtx, drafts)
	if err != nil {
		var batchErr *events.BatchError
		if errors.As(err, &batchErr) && created > 0 {
			ctx.Printf("Created %d of %d occurrences before the failure; they were kept.\n", created, batchErr.Total)
		}
		return err
	}

	if created == 1 {
		ctx.Printf("Created event: %s on %s\n", draft.Title, ctx.Formatter.FormatWhen(draft.Date, draft.Time))
	} else {
		ctx.Printf("Created %d occurrences of '%s'\n", created, draft.Title)
	}
	return nil
}

func previewLine(ctx *cli.Context, d models.EventDraft) string {
	return fmt.Sprintf("  %s", ctx.Formatter.FormatWhen(d.Date, d.Time))
}
