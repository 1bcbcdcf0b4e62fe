package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/clubdesk/internal/constants"
	"github.com/julianstephens/clubdesk/internal/events"
	"github.com/julianstephens/clubdesk/internal/models"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StateCreating, constants.StateEditing, constants.StateConfirmDelete:
		content = m.viewForm()
	default:
		content = m.viewEvents()
	}

	var banner string
	if len(m.validationConflicts) > 0 && m.state == constants.StateEvents {
		banner = m.viewConflictBanner()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		banner,
		content,
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	counts := events.Counts(m.all, m.today())
	var tabs []string
	for _, f := range models.Filters {
		title := fmt.Sprintf("%s (%d)", f.Label(), counts[f])
		if f == m.filter {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	if m.offline {
		tabs = append(tabs, warningStyle.Render(" offline"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewEvents() string {
	if m.loading && len(m.all) == 0 {
		return docStyle.Render(mutedStyle.Render("Loading events…"))
	}
	if m.eventList.Len() == 0 {
		return docStyle.Render(mutedStyle.Render(
			fmt.Sprintf("No %s events. Press 'a' to add one.", strings.ToLower(m.filter.Label()))))
	}
	return docStyle.Render(m.eventList.View())
}

func (m Model) viewForm() string {
	if m.form == nil {
		return ""
	}
	var b strings.Builder
	if m.state == constants.StateConfirmDelete {
		b.WriteString(dangerStyle.Render(fmt.Sprintf("%s · %s",
			m.selected.Title, m.formatter.FormatWhen(m.selected.Date, m.selected.Time))))
		b.WriteString("\n\n")
	}
	b.WriteString(m.form.View())
	if m.formError != "" {
		b.WriteString("\n")
		b.WriteString(dangerStyle.Render(m.formError))
	}
	return docStyle.Render(b.String())
}

func (m Model) viewStatus() string {
	switch {
	case m.errMsg != "":
		return dangerStyle.Render(m.errMsg)
	case m.status != "":
		return successStyle.Render(m.status)
	case m.loading:
		return mutedStyle.Render("Working…")
	}
	return ""
}

func (m Model) viewConflictBanner() string {
	var b strings.Builder
	b.WriteString(m.validationWarning)
	for i, c := range m.validationConflicts {
		if i == 3 {
			fmt.Fprintf(&b, "\n  …and %d more (run 'clubdesk event check')", len(m.validationConflicts)-3)
			break
		}
		b.WriteString("\n  - ")
		b.WriteString(c.Description)
	}
	return warningStyle.Render(b.String())
}
