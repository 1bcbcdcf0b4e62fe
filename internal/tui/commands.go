package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/clubdesk/internal/api"
	"github.com/julianstephens/clubdesk/internal/constants"
	"github.com/julianstephens/clubdesk/internal/logger"
	"github.com/julianstephens/clubdesk/internal/models"
)

type eventsLoadedMsg struct {
	events  []models.Event
	offline bool
	err     error
}

type createdMsg struct {
	count int
	err   error
}

type editedMsg struct {
	count int
	err   error
}

type deletedMsg struct {
	count int
	err   error
}

func requestContext() (context.Context, context.CancelFunc) {
	// the creator submits up to MaxOccurrences requests in sequence
	return context.WithTimeout(context.Background(), constants.DefaultTimeout*time.Duration(constants.MaxOccurrences))
}

// loadEvents fetches every event. When the API cannot be reached and a cache
// is configured, the last synced list is shown instead.
func (m Model) loadEvents() tea.Cmd {
	backend, cache, now := m.backend, m.cache, m.now
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()

		list, err := backend.List(ctx)
		if err != nil {
			if cache == nil || !errors.Is(err, api.ErrNetwork) {
				return eventsLoadedMsg{err: err}
			}
			cached, cacheErr := cache.GetEvents()
			if cacheErr != nil {
				logger.Warn("Failed to read event cache", "error", cacheErr)
				return eventsLoadedMsg{err: err}
			}
			return eventsLoadedMsg{events: cached, offline: true, err: err}
		}

		if cache != nil {
			if err := cache.ReplaceEvents(list, now()); err != nil {
				logger.Warn("Failed to update event cache", "error", err)
			}
		}
		return eventsLoadedMsg{events: list}
	}
}

func (m Model) createEvents(base models.EventDraft, rule models.RepeatRule) tea.Cmd {
	creator := m.creator
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		n, err := creator.CreateOccurrences(ctx, base, rule)
		return createdMsg{count: n, err: err}
	}
}

func (m Model) editEvent(id string, updates models.EventUpdates) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		if err := backend.Edit(ctx, id, updates); err != nil {
			return editedMsg{err: err}
		}
		return editedMsg{count: 1}
	}
}

func (m Model) editByTitle(req models.EditByTitleRequest) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		n, err := backend.EditByTitle(ctx, req)
		return editedMsg{count: n, err: err}
	}
}

func (m Model) deleteEvents(req models.DeleteRequest) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		n, err := backend.Delete(ctx, req)
		return deletedMsg{count: n, err: err}
	}
}
