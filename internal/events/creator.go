package events

import (
	"context"
	"fmt"

	"github.com/julianstephens/clubdesk/internal/api"
	"github.com/julianstephens/clubdesk/internal/logger"
	"github.com/julianstephens/clubdesk/internal/models"
	"github.com/julianstephens/clubdesk/internal/recurrence"
)

// Submitter creates one event on the backend.
type Submitter interface {
	Create(ctx context.Context, draft models.EventDraft) (models.Event, error)
}

// BatchError reports a repeated creation that stopped part way. The
// occurrences created before the failure remain on the backend.
type BatchError struct {
	Created int
	Total   int
	Date    string
	Err     error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("could not create the occurrence on %s (%d of %d created): %s",
		e.Date, e.Created, e.Total, api.Message(e.Err))
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// Creator submits the occurrences of a repeated event one at a time.
type Creator struct {
	client    Submitter
	OnCreated func(created, total int, ev models.Event)
}

func NewCreator(client Submitter) *Creator {
	return &Creator{client: client}
}

// CreateOccurrences expands rule over base and submits every draft in order.
// It returns the number of occurrences created. The first failed submission
// stops the batch with a *BatchError; nothing already created is rolled back.
func (c *Creator) CreateOccurrences(ctx context.Context, base models.EventDraft, rule models.RepeatRule) (int, error) {
	return c.Submit(ctx, recurrence.Drafts(base, rule))
}

// Submit sends drafts sequentially, awaiting each response before the next.
func (c *Creator) Submit(ctx context.Context, drafts []models.EventDraft) (int, error) {
	total := len(drafts)
	created := 0
	for _, draft := range drafts {
		ev, err := c.client.Create(ctx, draft)
		if err != nil {
			logger.Error("Occurrence creation failed", "title", draft.Title, "date", draft.Date,
				"created", created, "total", total, "error", err)
			return created, &BatchError{Created: created, Total: total, Date: draft.Date, Err: err}
		}
		created++
		logger.Info("Occurrence created", "id", ev.ID, "title", ev.Title, "date", ev.Date)
		if c.OnCreated != nil {
			c.OnCreated(created, total, ev)
		}
	}
	return created, nil
}
