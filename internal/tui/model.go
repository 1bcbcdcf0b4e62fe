package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/clubdesk/internal/constants"
	"github.com/julianstephens/clubdesk/internal/display"
	"github.com/julianstephens/clubdesk/internal/events"
	"github.com/julianstephens/clubdesk/internal/models"
	"github.com/julianstephens/clubdesk/internal/storage"
	"github.com/julianstephens/clubdesk/internal/tui/components/eventlist"
	"github.com/julianstephens/clubdesk/internal/utils"
	"github.com/julianstephens/clubdesk/internal/validation"
)

// Backend is the part of the API client the TUI talks to.
type Backend interface {
	List(ctx context.Context) ([]models.Event, error)
	Edit(ctx context.Context, id string, updates models.EventUpdates) error
	EditByTitle(ctx context.Context, req models.EditByTitleRequest) (int, error)
	Delete(ctx context.Context, req models.DeleteRequest) (int, error)
}

// Creator submits the occurrences of a new event.
type Creator interface {
	CreateOccurrences(ctx context.Context, base models.EventDraft, rule models.RepeatRule) (int, error)
}

type Options struct {
	Backend   Backend
	Creator   Creator
	Cache     storage.Provider // optional; used when the API is unreachable
	Formatter *display.Formatter
	Validator *validation.Validator
	Location  *time.Location
	// MaxOccurrences bounds the repeat count offered by the create form.
	MaxOccurrences int
}

type Model struct {
	backend   Backend
	creator   Creator
	cache     storage.Provider
	formatter *display.Formatter
	validator *validation.Validator
	loc       *time.Location
	maxCount  int
	now       func() time.Time

	state     constants.SessionState
	filter    models.Filter
	keys      KeyMap
	help      help.Model
	eventList eventlist.Model

	all     []models.Event
	loading bool
	offline bool

	form       *huh.Form
	createForm *CreateFormModel
	editForm   *EditFormModel
	deleteForm *DeleteFormModel
	selected   models.Event

	status              string
	errMsg              string
	formError           string
	validationWarning   string
	validationConflicts []validation.Conflict

	quitting bool
	width    int
	height   int
}

func NewModel(opts Options) Model {
	f := opts.Formatter
	if f == nil {
		f = display.NewFormatter(constants.DefaultLocale)
	}
	v := opts.Validator
	if v == nil {
		v = validation.New()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	max := opts.MaxOccurrences
	if max <= 0 || max > constants.MaxOccurrences {
		max = constants.MaxOccurrences
	}

	return Model{
		backend:   opts.Backend,
		creator:   opts.Creator,
		cache:     opts.Cache,
		formatter: f,
		validator: v,
		loc:       loc,
		maxCount:  max,
		now:       time.Now,
		state:     constants.StateEvents,
		filter:    models.FilterFuture,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		eventList: eventlist.New(f, 0, 0),
		loading:   true,
	}
}

func (m Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down, m.keys.Enter}
	return [][]key.Binding{global, navigation}
}

func (m Model) Init() tea.Cmd {
	return m.loadEvents()
}

func (m Model) today() string {
	return utils.FormatDateForAPI(m.now().In(m.loc))
}

// visible returns the events of the active filter in display order.
func (m Model) visible() []models.Event {
	out := events.Filter(m.all, m.today(), m.filter)
	events.SortForFilter(out, m.filter)
	return out
}

func (m *Model) refreshList() tea.Cmd {
	return m.eventList.SetEvents(m.visible())
}

// updateValidationStatus re-checks the loaded events for problems the
// backend accepted.
func (m *Model) updateValidationStatus() {
	result := m.validator.CheckEvents(m.all)
	m.validationConflicts = result.Conflicts
	if result.HasConflicts() {
		m.validationWarning = fmt.Sprintf("⚠ %d validation warning(s)", len(result.Conflicts))
	} else {
		m.validationWarning = ""
	}
}

func (m *Model) setFilter(f models.Filter) tea.Cmd {
	m.filter = f
	return m.refreshList()
}

func (m *Model) cycleFilter(step int) tea.Cmd {
	idx := 0
	for i, f := range models.Filters {
		if f == m.filter {
			idx = i
		}
	}
	n := len(models.Filters)
	return m.setFilter(models.Filters[((idx+step)%n+n)%n])
}

func (m *Model) resize() {
	// tabs, banner, status and help
	m.eventList.SetSize(m.width-4, m.height-8)
	m.help.Width = m.width
}
