package eventcmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/clubdesk/internal/cli"
	"github.com/julianstephens/clubdesk/internal/models"
	"github.com/julianstephens/clubdesk/internal/utils"
)

// UpdateFlags are the editable fields. Unset flags leave the field alone.
// On a single edit an empty value clears the field; bulk edits reject it
// because the backend reads blank as unchanged there.
type UpdateFlags struct {
	Time        *string `short:"t" help:"New start time (HH:MM), or \"\" to clear (edit by id only)."`
	Location    *string `short:"l" help:"New location, or \"\" to clear (edit by id only)."`
	Description *string `help:"New description, or \"\" to clear (edit by id only)."`
	Type        *string `help:"New category, or \"\" to clear (edit by id only)."`
}

// blank returns the flag name of the first set but empty field.
func (f UpdateFlags) blank() string {
	for _, fl := range []struct {
		name string
		val  *string
	}{
		{"time", f.Time},
		{"location", f.Location},
		{"description", f.Description},
		{"type", f.Type},
	} {
		if fl.val != nil && strings.TrimSpace(*fl.val) == "" {
			return fl.name
		}
	}
	return ""
}

func (f UpdateFlags) apply(u *models.EventUpdates) {
	u.Time = trimmed(f.Time)
	u.Location = trimmed(f.Location)
	u.Description = trimmed(f.Description)
	u.Type = trimmed(f.Type)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

type EditCmd struct {
	ID    string  `arg:"" help:"ID of the occurrence to edit."`
	Title *string `help:"New title."`
	Date  *string `short:"d" help:"New date (YYYY-MM-DD or YYYY-MM-DD:YYYY-MM-DD)."`
	UpdateFlags `embed:""`
}

func (c *EditCmd) updates() models.EventUpdates {
	u := models.EventUpdates{
		Title: trimmed(c.Title),
		Date:  trimmed(c.Date),
	}
	c.UpdateFlags.apply(&u)
	return u
}

func (c *EditCmd) Run(ctx *cli.Context) error {
	updates := c.updates()
	if err := ctx.Validator.ValidateUpdates(updates); err != nil {
		return err
	}
	if updates.Time != nil && *updates.Time != "" && updates.Date != nil && utils.IsDateRange(*updates.Date) {
		return errors.New("time cannot be set on a date range")
	}
	if err := ctx.Config.Validate(); err != nil {
		return err
	}
	if _, err := ctx.RequireLogin(); err != nil {
		return err
	}

	reqCtx, cancel := ctx.RequestContext()
	defer cancel()
	if updates.Time != nil || updates.Date != nil {
		if err := c.checkMerged(reqCtx, ctx, updates); err != nil {
			return err
		}
	}
	if err := ctx.Client.Edit(reqCtx, c.ID, updates); err != nil {
		return fmt.Errorf("failed to edit event %s: %w", c.ID, err)
	}
	ctx.Printf("Updated event (ID: %s)\n", c.ID)
	return nil
}

// checkMerged validates the stored event with updates applied, so a time
// cannot land on an existing range and a range cannot keep an existing time.
func (c *EditCmd) checkMerged(reqCtx context.Context, ctx *cli.Context, updates models.EventUpdates) error {
	list, err := ctx.Client.List(reqCtx)
	if err != nil {
		return fmt.Errorf("failed to load event %s: %w", c.ID, err)
	}
	for _, ev := range list {
		if ev.ID == c.ID {
			return ctx.Validator.ValidateDraft(updates.Apply(ev).Draft())
		}
	}
	return fmt.Errorf("event %s not found", c.ID)
}

type EditByTitleCmd struct {
	Title     string  `arg:"" help:"Current title of the events to edit."`
	NewTitle  *string `help:"New title."`
	StartDate string  `help:"Only edit events on or after this date (YYYY-MM-DD). Defaults to today."`
	EndDate   string  `help:"Only edit events on or before this date (YYYY-MM-DD)."`
	UpdateFlags `embed:""`
}

func (c *EditByTitleCmd) request(today string) models.EditByTitleRequest {
	req := models.EditByTitleRequest{
		Title:     strings.TrimSpace(c.Title),
		StartDate: strings.TrimSpace(c.StartDate),
		EndDate:   strings.TrimSpace(c.EndDate),
	}
	if req.StartDate == "" {
		req.StartDate = today
	}
	req.Updates.Title = trimmed(c.NewTitle)
	c.UpdateFlags.apply(&req.Updates)
	return req
}

func (c *EditByTitleCmd) Run(ctx *cli.Context) error {
	if name := c.UpdateFlags.blank(); name != "" {
		return fmt.Errorf("--%s cannot be cleared when editing by title", name)
	}
	req := c.request(ctx.Today())
	if err := ctx.Validator.ValidateEditByTitle(req); err != nil {
		return err
	}
	if err := ctx.Config.Validate(); err != nil {
		return err
	}
	if _, err := ctx.RequireLogin(); err != nil {
		return err
	}

	reqCtx, cancel := ctx.RequestContext()
	defer cancel()
	n, err := ctx.Client.EditByTitle(reqCtx, req)
	if err != nil {
		return fmt.Errorf("failed to edit '%s': %w", req.Title, err)
	}
	ctx.Printf("Updated %d occurrence(s) of '%s'\n", n, req.Title)
	return nil
}
