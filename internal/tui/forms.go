package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/clubdesk/internal/constants"
	"github.com/julianstephens/clubdesk/internal/display"
	"github.com/julianstephens/clubdesk/internal/models"
	"github.com/julianstephens/clubdesk/internal/recurrence"
	"github.com/julianstephens/clubdesk/internal/utils"
	"github.com/julianstephens/clubdesk/internal/validation"
)

const (
	shapeSingle = "single"
	shapeRange  = "range"

	scopeThis  = "this"
	scopeTitle = "title"

	previewLimit = 6
)

// CreateFormModel backs the creation wizard.
type CreateFormModel struct {
	Title       string
	Shape       string
	Date        string
	Time        string
	EndDate     string
	Repeat      models.RepeatKind
	Count       string
	Location    string
	Description string
	Type        string
	Confirmed   bool
}

func newCreateFormModel(today string) *CreateFormModel {
	return &CreateFormModel{
		Shape:     shapeSingle,
		Date:      today,
		Repeat:    models.RepeatNone,
		Count:     "1",
		Confirmed: true,
	}
}

func (fm *CreateFormModel) isRange() bool { return fm.Shape == shapeRange }

// Build turns the answers into the base draft and repeat rule.
func (fm *CreateFormModel) Build(loc *time.Location) (models.EventDraft, models.RepeatRule, error) {
	draft := models.EventDraft{
		Title:       strings.TrimSpace(fm.Title),
		Location:    strings.TrimSpace(fm.Location),
		Description: strings.TrimSpace(fm.Description),
		Type:        strings.TrimSpace(fm.Type),
	}
	rule := models.RepeatRule{Kind: models.RepeatNone, Count: 1}

	if fm.isRange() {
		draft.Date = utils.JoinDateRange(strings.TrimSpace(fm.Date), strings.TrimSpace(fm.EndDate))
	} else {
		draft.Date = strings.TrimSpace(fm.Date)
		draft.Time = strings.TrimSpace(fm.Time)
		count, err := strconv.Atoi(strings.TrimSpace(fm.Count))
		if err != nil {
			return draft, rule, errors.New("count must be a number")
		}
		rule.Kind = fm.Repeat
		rule.Count = count
	}
	rule.Anchor = utils.ParseDateStringIn(draft.Date, loc)
	return draft, rule, nil
}

// Preview lists the dates the wizard will create.
func (fm *CreateFormModel) Preview(f *display.Formatter, loc *time.Location) string {
	draft, rule, err := fm.Build(loc)
	if err != nil || !utils.IsValidDate(strings.SplitN(draft.Date, constants.DateRangeSeparator, 2)[0]) {
		return "Enter a valid date to see a preview."
	}
	if fm.isRange() {
		return f.FormatDate(draft.Date)
	}

	dates := recurrence.Expand(rule)
	var b strings.Builder
	for i, d := range dates {
		if i == previewLimit {
			fmt.Fprintf(&b, "…and %d more", len(dates)-previewLimit)
			break
		}
		b.WriteString(f.FormatWhen(d, draft.Time))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func validateDateField(s string) error {
	if !utils.IsValidDate(strings.TrimSpace(s)) {
		return errors.New("use YYYY-MM-DD")
	}
	return nil
}

func validateOptionalTime(s string) error {
	if strings.TrimSpace(s) == "" || utils.ValidateTimeFormat(strings.TrimSpace(s)) {
		return nil
	}
	return errors.New("use HH:MM or leave empty")
}

func validateCount(max int) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || n < 1 || n > max {
			return fmt.Errorf("enter a number from 1 to %d", max)
		}
		return nil
	}
}

func notBlank(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}
		return nil
	}
}

func repeatOptions() []huh.Option[models.RepeatKind] {
	labels := map[models.RepeatKind]string{
		models.RepeatNone:        "Does not repeat",
		models.RepeatDaily:       "Daily",
		models.RepeatWeekly:      "Weekly",
		models.RepeatMonthly:     "Monthly",
		models.RepeatMonthlyDate: "Monthly (same date)",
		models.RepeatYearly:      "Yearly",
	}
	opts := make([]huh.Option[models.RepeatKind], 0, len(models.RepeatKinds))
	for _, k := range models.RepeatKinds {
		opts = append(opts, huh.NewOption(labels[k], k))
	}
	return opts
}

// NewCreateForm builds the creation wizard. The single-date and range
// groups are mutually exclusive.
func NewCreateForm(fm *CreateFormModel, f *display.Formatter, loc *time.Location, max int) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&fm.Title).
				Validate(notBlank("title")),
			huh.NewSelect[string]().
				Title("When").
				Options(
					huh.NewOption("On one day", shapeSingle),
					huh.NewOption("Over several days", shapeRange),
				).
				Value(&fm.Shape),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Date").
				Placeholder("YYYY-MM-DD").
				Value(&fm.Date).
				Validate(validateDateField),
			huh.NewInput().
				Title("Time").
				Description("Optional, HH:MM").
				Value(&fm.Time).
				Validate(validateOptionalTime),
			huh.NewSelect[models.RepeatKind]().
				Title("Repeat").
				Options(repeatOptions()...).
				Value(&fm.Repeat),
			huh.NewInput().
				Title("Occurrences").
				Description(fmt.Sprintf("1 to %d, ignored when the event does not repeat", max)).
				Value(&fm.Count).
				Validate(validateCount(max)),
		).WithHideFunc(fm.isRange),
		huh.NewGroup(
			huh.NewInput().
				Title("First day").
				Placeholder("YYYY-MM-DD").
				Value(&fm.Date).
				Validate(validateDateField),
			huh.NewInput().
				Title("Last day").
				Placeholder("YYYY-MM-DD").
				Value(&fm.EndDate).
				Validate(func(s string) error {
					if err := validateDateField(s); err != nil {
						return err
					}
					if strings.TrimSpace(s) < strings.TrimSpace(fm.Date) {
						return errors.New("last day is before the first day")
					}
					return nil
				}),
		).WithHideFunc(func() bool { return !fm.isRange() }),
		huh.NewGroup(
			huh.NewInput().Title("Location").Value(&fm.Location),
			huh.NewText().Title("Description").Value(&fm.Description),
			huh.NewInput().Title("Type").Description("e.g. training, match, meeting").Value(&fm.Type),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Create these events?").
				DescriptionFunc(func() string { return fm.Preview(f, loc) }, fm).
				Affirmative("Create").
				Negative("Cancel").
				Value(&fm.Confirmed),
		),
	).WithTheme(huh.ThemeDracula())
}

// EditFormModel backs the edit form. Fields start at the event's values;
// only the ones that change are sent.
type EditFormModel struct {
	Title       string
	Date        string
	Time        string
	Location    string
	Description string
	Type        string
	Scope       string
}

func newEditFormModel(e models.Event) *EditFormModel {
	return &EditFormModel{
		Title:       e.Title,
		Date:        e.Date,
		Time:        e.Time,
		Location:    e.Location,
		Description: e.Description,
		Type:        e.Type,
		Scope:       scopeThis,
	}
}

// Updates returns the fields that differ from orig. Date changes are
// dropped for title-wide edits since each occurrence keeps its own date.
func (fm *EditFormModel) Updates(orig models.Event) models.EventUpdates {
	var u models.EventUpdates
	set := func(dst **string, val, old string) {
		val = strings.TrimSpace(val)
		if val != old {
			*dst = &val
		}
	}
	set(&u.Title, fm.Title, orig.Title)
	if fm.Scope != scopeTitle {
		set(&u.Date, fm.Date, orig.Date)
	}
	set(&u.Time, fm.Time, orig.Time)
	set(&u.Location, fm.Location, orig.Location)
	set(&u.Description, fm.Description, orig.Description)
	set(&u.Type, fm.Type, orig.Type)
	return u
}

func NewEditForm(fm *EditFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Apply to").
				Options(
					huh.NewOption("This occurrence", scopeThis),
					huh.NewOption("All upcoming with this title", scopeTitle),
				).
				Value(&fm.Scope),
			huh.NewInput().
				Title("Title").
				Value(&fm.Title).
				Validate(notBlank("title")),
			huh.NewInput().
				Title("Date").
				Description("YYYY-MM-DD or YYYY-MM-DD:YYYY-MM-DD, ignored for title-wide edits").
				Value(&fm.Date).
				Validate(func(s string) error {
					if !validation.IsEventDate(strings.TrimSpace(s)) {
						return errors.New("use YYYY-MM-DD or YYYY-MM-DD:YYYY-MM-DD")
					}
					return nil
				}),
			huh.NewInput().
				Title("Time").
				Value(&fm.Time).
				Validate(validateOptionalTime),
			huh.NewInput().Title("Location").Value(&fm.Location),
			huh.NewText().Title("Description").Value(&fm.Description),
			huh.NewInput().Title("Type").Value(&fm.Type),
		),
	).WithTheme(huh.ThemeDracula())
}

// DeleteFormModel backs the delete confirmation.
type DeleteFormModel struct {
	Mode    string
	Confirm bool
}

const deleteModeThis = "this"

func NewDeleteForm(fm *DeleteFormModel, e models.Event, f *display.Formatter) *huh.Form {
	start, _, _ := utils.SplitDateRange(e.Date)
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(fmt.Sprintf("Delete '%s'?", e.Title)).
				Options(
					huh.NewOption("Only this occurrence", deleteModeThis),
					huh.NewOption(fmt.Sprintf("All upcoming '%s'", e.Title), constants.DeleteModeUpcomingTitle),
					huh.NewOption(fmt.Sprintf("Everything on %s", f.FormatDate(start)), constants.DeleteModeAllOnDay),
				).
				Value(&fm.Mode),
			huh.NewConfirm().
				Title("This cannot be undone.").
				Affirmative("Delete").
				Negative("Keep").
				Value(&fm.Confirm),
		),
	).WithTheme(huh.ThemeDracula())
}

// Request maps the chosen mode to a delete request.
func (fm *DeleteFormModel) Request(e models.Event) models.DeleteRequest {
	switch fm.Mode {
	case constants.DeleteModeUpcomingTitle:
		return models.DeleteRequest{Mode: fm.Mode, Title: e.Title}
	case constants.DeleteModeAllOnDay:
		start, _, _ := utils.SplitDateRange(e.Date)
		return models.DeleteRequest{Mode: fm.Mode, Date: start}
	default:
		return models.DeleteRequest{ID: e.ID}
	}
}
