package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/clubdesk/internal/api"
	"github.com/julianstephens/clubdesk/internal/constants"
	apperrors "github.com/julianstephens/clubdesk/internal/errors"
	"github.com/julianstephens/clubdesk/internal/logger"
	"github.com/julianstephens/clubdesk/internal/models"
	"github.com/julianstephens/clubdesk/internal/recurrence"
	"github.com/julianstephens/clubdesk/internal/tui/components/eventlist"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		if m.form != nil {
			m.form = m.form.WithWidth(msg.Width - 4)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}

	case eventsLoadedMsg:
		return m.handleEventsLoaded(msg)

	case createdMsg:
		m.loading = true
		if msg.err != nil {
			logger.Error("Event creation failed", "created", msg.count, "error", msg.err)
			m.status = ""
			m.errMsg = apperrors.Format(msg.err)
		} else {
			m.errMsg = ""
			m.status = fmt.Sprintf("Created %d event(s)", msg.count)
		}
		// occurrences created before a failure stay on the backend
		return m, m.loadEvents()

	case editedMsg:
		return m.handleMutation("Updated", msg.count, msg.err)

	case deletedMsg:
		return m.handleMutation("Deleted", msg.count, msg.err)
	}

	switch m.state {
	case constants.StateCreating:
		return m.updateCreateForm(msg)
	case constants.StateEditing:
		return m.updateEditForm(msg)
	case constants.StateConfirmDelete:
		return m.updateDeleteForm(msg)
	default:
		return m.updateEvents(msg)
	}
}

func (m Model) handleEventsLoaded(msg eventsLoadedMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	switch {
	case msg.err != nil && !msg.offline:
		logger.Error("Failed to load events", "error", msg.err)
		m.errMsg = apperrors.Format(msg.err)
		return m, nil
	case msg.offline:
		logger.Warn("Showing cached events", "error", msg.err)
		m.offline = true
		m.errMsg = fmt.Sprintf("Offline: showing cached events (%s)", api.Message(msg.err))
	default:
		m.offline = false
		m.errMsg = ""
	}
	m.all = msg.events
	m.updateValidationStatus()
	return m, m.refreshList()
}

func (m Model) handleMutation(verb string, count int, err error) (tea.Model, tea.Cmd) {
	if err != nil {
		logger.Error("Event change failed", "error", err)
		m.status = ""
		m.errMsg = apperrors.Format(err)
		return m, nil
	}
	m.errMsg = ""
	m.status = fmt.Sprintf("%s %d event(s)", verb, count)
	m.loading = true
	return m, m.loadEvents()
}

func (m Model) updateEvents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.eventList.Filtering() {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Tab):
			return m, m.cycleFilter(1)
		case key.Matches(msg, m.keys.ShiftTab):
			return m, m.cycleFilter(-1)
		}

	case eventlist.AddEventMsg:
		return m.openCreateForm()
	case eventlist.EditEventMsg:
		return m.openEditForm(msg.Event)
	case eventlist.DeleteEventMsg:
		return m.openDeleteForm(msg.Event)
	case eventlist.RefreshMsg:
		m.loading = true
		m.status = ""
		return m, m.loadEvents()
	}

	var cmd tea.Cmd
	m.eventList, cmd = m.eventList.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) openCreateForm() (tea.Model, tea.Cmd) {
	m.createForm = newCreateFormModel(m.today())
	m.form = NewCreateForm(m.createForm, m.formatter, m.loc, m.maxCount)
	m.formError = ""
	m.state = constants.StateCreating
	return m, m.form.Init()
}

func (m Model) openEditForm(e models.Event) (tea.Model, tea.Cmd) {
	m.selected = e
	m.editForm = newEditFormModel(e)
	m.form = NewEditForm(m.editForm)
	m.formError = ""
	m.state = constants.StateEditing
	return m, m.form.Init()
}

func (m Model) openDeleteForm(e models.Event) (tea.Model, tea.Cmd) {
	m.selected = e
	m.deleteForm = &DeleteFormModel{Mode: deleteModeThis}
	m.form = NewDeleteForm(m.deleteForm, e, m.formatter)
	m.formError = ""
	m.state = constants.StateConfirmDelete
	return m, m.form.Init()
}

// updateForm forwards msg to the open form. It reports true when the user
// backed out with esc.
func (m *Model) updateForm(msg tea.Msg) (tea.Cmd, bool) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.closeForm()
		return nil, true
	}
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	return cmd, false
}

func (m *Model) closeForm() {
	m.state = constants.StateEvents
	m.form = nil
	m.formError = ""
}

// rejectForm keeps the form open so the user can correct the input.
func (m *Model) rejectForm(err error) {
	m.formError = err.Error()
	m.form.State = huh.StateNormal
}

func (m Model) updateCreateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd, closed := m.updateForm(msg)
	if closed {
		return m, nil
	}

	switch m.form.State {
	case huh.StateCompleted:
		if !m.createForm.Confirmed {
			m.closeForm()
			m.status = "Creation cancelled"
			return m, nil
		}
		draft, rule, err := m.createForm.Build(m.loc)
		if err == nil {
			err = m.validator.ValidateDraft(draft)
		}
		if err == nil {
			err = m.validator.ValidateRule(rule, m.maxCount)
		}
		if err != nil {
			m.rejectForm(err)
			return m, cmd
		}
		m.closeForm()
		m.loading = true
		m.errMsg = ""
		m.status = fmt.Sprintf("Creating '%s' (%s)…", draft.Title, recurrence.Describe(rule))
		return m, m.createEvents(draft, rule)
	case huh.StateAborted:
		m.closeForm()
	}
	return m, cmd
}

func (m Model) updateEditForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd, closed := m.updateForm(msg)
	if closed {
		return m, nil
	}

	switch m.form.State {
	case huh.StateCompleted:
		updates := m.editForm.Updates(m.selected)
		if updates.IsEmpty() {
			m.closeForm()
			m.status = "Nothing changed"
			return m, nil
		}

		if m.editForm.Scope == scopeTitle {
			req := models.EditByTitleRequest{
				Title:     m.selected.Title,
				Updates:   updates,
				StartDate: m.today(),
			}
			if err := m.validator.ValidateEditByTitle(req); err != nil {
				m.rejectForm(err)
				return m, cmd
			}
			m.closeForm()
			m.loading = true
			return m, m.editByTitle(req)
		}

		err := m.validator.ValidateUpdates(updates)
		if err == nil {
			err = m.validator.ValidateDraft(updates.Apply(m.selected).Draft())
		}
		if err != nil {
			m.rejectForm(err)
			return m, cmd
		}
		m.closeForm()
		m.loading = true
		return m, m.editEvent(m.selected.ID, updates)
	case huh.StateAborted:
		m.closeForm()
	}
	return m, cmd
}

func (m Model) updateDeleteForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd, closed := m.updateForm(msg)
	if closed {
		return m, nil
	}

	switch m.form.State {
	case huh.StateCompleted:
		if !m.deleteForm.Confirm {
			m.closeForm()
			return m, nil
		}
		req := m.deleteForm.Request(m.selected)
		if err := m.validator.ValidateDelete(req); err != nil {
			m.rejectForm(err)
			return m, cmd
		}
		m.closeForm()
		m.loading = true
		return m, m.deleteEvents(req)
	case huh.StateAborted:
		m.closeForm()
	}
	return m, cmd
}
