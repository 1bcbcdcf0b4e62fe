package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/julianstephens/clubdesk/internal/models"
	"github.com/julianstephens/clubdesk/internal/utils"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictInvalidDate       ConflictType = "invalid_date"
	ConflictReversedRange     ConflictType = "reversed_range"
	ConflictTimeOnRange       ConflictType = "time_on_range"
	ConflictInvalidTime       ConflictType = "invalid_time"
	ConflictDuplicateTitleDay ConflictType = "duplicate_title_same_day"
)

// Conflict represents a problem found in the stored events
type Conflict struct {
	Type        ConflictType
	Description string
	Date        string   // date field of the events involved
	Items       []string // titles involved
	EventIDs    []string // ids involved (for auto-fixing)
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// FixAction represents an action taken during auto-fix
type FixAction struct {
	Action         string
	SourceConflict Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", conflict.Description)
	}
	return b.String()
}

// Validator checks drafts at the form boundary and stored events for conflicts.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator with the event tags registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	RegisterCustomValidators(v)
	return &Validator{validate: v}
}

// RegisterCustomValidators adds eventdate, datesingle and hhmm to v.
func RegisterCustomValidators(v *validator.Validate) {
	_ = v.RegisterValidation("eventdate", func(fl validator.FieldLevel) bool {
		return IsEventDate(fl.Field().String())
	})
	_ = v.RegisterValidation("datesingle", func(fl validator.FieldLevel) bool {
		return utils.IsValidDate(fl.Field().String())
	})
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return utils.ValidateTimeFormat(fl.Field().String())
	})
}

// IsEventDate accepts a single date or a start:end range with start <= end.
func IsEventDate(s string) bool {
	start, end, isRange := utils.SplitDateRange(s)
	if !utils.IsValidDate(start) {
		return false
	}
	if !isRange {
		return true
	}
	return utils.IsValidDate(end) && start <= end
}

// ValidateDraft rejects drafts that must not reach the backend.
func (v *Validator) ValidateDraft(d models.EventDraft) error {
	if err := v.validate.Struct(d); err != nil {
		return describe(err)
	}
	if d.Time != "" && utils.IsDateRange(d.Date) {
		return errors.New("time cannot be set on a date range")
	}
	return nil
}

// ValidateRule checks the repeat rule against the occurrence limit.
func (v *Validator) ValidateRule(r models.RepeatRule, max int) error {
	if err := v.validate.Struct(r); err != nil {
		return describe(err)
	}
	if max > 0 && r.Count > max {
		return fmt.Errorf("count must be between 1 and %d", max)
	}
	return nil
}

// ValidateUpdates checks a partial update. At least one field must be set.
func (v *Validator) ValidateUpdates(u models.EventUpdates) error {
	if u.IsEmpty() {
		return errors.New("nothing to update")
	}
	// min=1 counts spaces, so a blank title is checked after trimming
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		return errors.New("title cannot be empty")
	}
	// omitempty still runs on a pointer to "", so cleared fields are dropped
	// before the format checks
	check := u
	for _, f := range []**string{&check.Time, &check.Location, &check.Type} {
		if *f != nil && **f == "" {
			*f = nil
		}
	}
	if err := v.validate.Struct(check); err != nil {
		return describe(err)
	}
	return nil
}

// ValidateEditByTitle checks a bulk edit request.
func (v *Validator) ValidateEditByTitle(req models.EditByTitleRequest) error {
	if err := v.validate.Struct(req); err != nil {
		return describe(err)
	}
	if req.StartDate != "" && req.EndDate != "" && req.StartDate > req.EndDate {
		return errors.New("start date is after end date")
	}
	return v.ValidateUpdates(req.Updates)
}

// ValidateDelete checks that a delete request names exactly one target.
func (v *Validator) ValidateDelete(req models.DeleteRequest) error {
	if err := v.validate.Struct(req); err != nil {
		return describe(err)
	}
	switch {
	case req.ID != "" && req.Mode != "":
		return errors.New("delete takes either an id or a mode, not both")
	case req.ID == "" && req.Mode == "":
		return errors.New("delete needs an id or a mode")
	case req.Mode == "upcomingTitle" && req.Title == "":
		return errors.New("upcomingTitle delete needs a title")
	case req.Mode == "allOnDay" && req.Date == "":
		return errors.New("allOnDay delete needs a date")
	}
	return nil
}

func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		if fe.Kind().String() == "int" {
			return fmt.Sprintf("%s must be at least %s", field, fe.Param())
		}
		return fmt.Sprintf("%s cannot be empty", field)
	case "eventdate":
		return fmt.Sprintf("%s %q must be YYYY-MM-DD or YYYY-MM-DD:YYYY-MM-DD", field, fe.Value())
	case "datesingle":
		return fmt.Sprintf("%s %q must be YYYY-MM-DD", field, fe.Value())
	case "hhmm":
		return fmt.Sprintf("%s %q must be HH:MM", field, fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}

// CheckEvents scans stored events for problems the backend accepted.
func (v *Validator) CheckEvents(list []models.Event) ValidationResult {
	var result ValidationResult

	byKey := make(map[string][]models.Event)
	var keys []string
	for _, e := range list {
		start, end, isRange := utils.SplitDateRange(e.Date)
		switch {
		case !utils.IsValidDate(start) || (isRange && !utils.IsValidDate(end)):
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidDate,
				Description: fmt.Sprintf("'%s' has an unreadable date %q", e.Title, e.Date),
				Date:        e.Date,
				Items:       []string{e.Title},
				EventIDs:    []string{e.ID},
			})
			continue
		case isRange && start > end:
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictReversedRange,
				Description: fmt.Sprintf("'%s' ends (%s) before it starts (%s)", e.Title, end, start),
				Date:        e.Date,
				Items:       []string{e.Title},
				EventIDs:    []string{e.ID},
			})
		}
		if e.Time != "" {
			if isRange {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictTimeOnRange,
					Description: fmt.Sprintf("'%s' spans %s but has a time (%s) that will not be shown", e.Title, e.Date, e.Time),
					Date:        e.Date,
					Items:       []string{e.Title},
					EventIDs:    []string{e.ID},
				})
			} else if !utils.ValidateTimeFormat(e.Time) {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictInvalidTime,
					Description: fmt.Sprintf("'%s' on %s has an invalid time %q", e.Title, e.Date, e.Time),
					Date:        e.Date,
					Items:       []string{e.Title},
					EventIDs:    []string{e.ID},
				})
			}
		}

		key := strings.ToLower(strings.TrimSpace(e.Title)) + "\x00" + e.Date
		if _, seen := byKey[key]; !seen {
			keys = append(keys, key)
		}
		byKey[key] = append(byKey[key], e)
	}

	sort.Strings(keys)
	for _, key := range keys {
		group := byKey[key]
		if len(group) < 2 {
			continue
		}
		ids := make([]string, 0, len(group))
		for _, e := range group {
			ids = append(ids, e.ID)
		}
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictDuplicateTitleDay,
			Description: fmt.Sprintf("'%s' appears %d times on %s", group[0].Title, len(group), group[0].Date),
			Date:        group[0].Date,
			Items:       []string{group[0].Title},
			EventIDs:    ids,
		})
	}

	return result
}

// AutoFixDuplicates keeps the first event of every duplicate group and
// deletes the rest through deleteFunc. Failed deletes are reported and skipped.
func AutoFixDuplicates(conflicts []Conflict, deleteFunc func(id string) error) []FixAction {
	var actions []FixAction
	for _, c := range conflicts {
		if c.Type != ConflictDuplicateTitleDay || len(c.EventIDs) < 2 {
			continue
		}
		for _, id := range c.EventIDs[1:] {
			if id == "" {
				continue
			}
			if err := deleteFunc(id); err != nil {
				actions = append(actions, FixAction{
					Action:         fmt.Sprintf("Failed to delete duplicate '%s' (ID: %s): %v", c.Items[0], id, err),
					SourceConflict: c,
				})
				continue
			}
			actions = append(actions, FixAction{
				Action:         fmt.Sprintf("Deleted duplicate '%s' on %s (ID: %s)", c.Items[0], c.Date, id),
				SourceConflict: c,
			})
		}
	}
	return actions
}
