package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/clubdesk/internal/models"
	"github.com/julianstephens/clubdesk/internal/utils"
)

var errNotOpen = errors.New("event cache is not open")

func (s *Store) ReplaceEvents(events []models.Event, fetchedAt time.Time) error {
	if s.db == nil {
		return errNotOpen
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM events"); err != nil {
		return fmt.Errorf("failed to clear events: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO events (position, id, title, date, start_date, end_date, time, location, description, type, is_recurring)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range events {
		start, end, _ := utils.SplitDateRange(e.Date)
		if _, err := stmt.Exec(i, e.ID, e.Title, e.Date, start, end, e.Time, e.Location, e.Description, e.Type, bool(e.IsRecurring)); err != nil {
			return fmt.Errorf("failed to insert event %q: %w", e.Title, err)
		}
	}

	if _, err := tx.Exec(`
		INSERT INTO sync_state (id, fetched_at, event_count) VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET fetched_at = EXCLUDED.fetched_at, event_count = EXCLUDED.event_count`,
		fetchedAt.UTC(), len(events)); err != nil {
		return fmt.Errorf("failed to record sync time: %w", err)
	}

	return tx.Commit()
}

func (s *Store) GetEvents() ([]models.Event, error) {
	if s.db == nil {
		return nil, errNotOpen
	}

	rows, err := s.db.Query(`
		SELECT id, title, date, time, location, description, type, is_recurring
		FROM events ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var e models.Event
		var recurring bool
		if err := rows.Scan(&e.ID, &e.Title, &e.Date, &e.Time, &e.Location, &e.Description, &e.Type, &recurring); err != nil {
			return nil, err
		}
		e.IsRecurring = models.Flag(recurring)
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *Store) LastSync() (time.Time, error) {
	if s.db == nil {
		return time.Time{}, errNotOpen
	}

	var t time.Time
	err := s.db.QueryRow("SELECT fetched_at FROM sync_state WHERE id = 1").Scan(&t)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	return t, err
}
