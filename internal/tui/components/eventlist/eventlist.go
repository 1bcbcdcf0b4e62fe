package eventlist

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/clubdesk/internal/display"
	"github.com/julianstephens/clubdesk/internal/models"
)

type AddEventMsg struct{}

type EditEventMsg struct {
	Event models.Event
}

type DeleteEventMsg struct {
	Event models.Event
}

type RefreshMsg struct{}

type Item struct {
	Event models.Event
	When  string
}

func (i Item) Title() string {
	if i.Event.IsRecurring {
		return "↻ " + i.Event.Title
	}
	return i.Event.Title
}

func (i Item) Description() string {
	parts := []string{i.When}
	if i.Event.Location != "" {
		parts = append(parts, i.Event.Location)
	}
	if i.Event.Type != "" {
		parts = append(parts, fmt.Sprintf("[%s]", i.Event.Type))
	}
	return strings.Join(parts, " · ")
}

func (i Item) FilterValue() string { return i.Event.Title }

type KeyMap struct {
	Add     key.Binding
	Edit    key.Binding
	Delete  key.Binding
	Refresh key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

type Model struct {
	list      list.Model
	keys      KeyMap
	formatter *display.Formatter
}

func New(formatter *display.Formatter, width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetStatusBarItemName("event", "events")

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Edit, keys.Delete, keys.Refresh}
	}
	l.AdditionalFullHelpKeys = l.AdditionalShortHelpKeys

	return Model{
		list:      l,
		keys:      keys,
		formatter: formatter,
	}
}

// SetEvents replaces the visible items, keeping the given order.
func (m *Model) SetEvents(events []models.Event) tea.Cmd {
	items := make([]list.Item, len(events))
	for i, e := range events {
		items[i] = Item{Event: e, When: m.formatter.FormatWhen(e.Date, e.Time)}
	}
	return m.list.SetItems(items)
}

// Selected returns the highlighted event.
func (m Model) Selected() (models.Event, bool) {
	item, ok := m.list.SelectedItem().(Item)
	if !ok {
		return models.Event{}, false
	}
	return item.Event, true
}

func (m Model) Len() int {
	return len(m.list.Items())
}

// Filtering reports whether the user is typing a list filter.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.Filtering() {
			break
		}

		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddEventMsg{} }
		case key.Matches(msg, m.keys.Refresh):
			return m, func() tea.Msg { return RefreshMsg{} }
		case key.Matches(msg, m.keys.Edit):
			if ev, ok := m.Selected(); ok {
				return m, func() tea.Msg { return EditEventMsg{Event: ev} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Delete):
			if ev, ok := m.Selected(); ok {
				return m, func() tea.Msg { return DeleteEventMsg{Event: ev} }
			}
			return m, nil
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
