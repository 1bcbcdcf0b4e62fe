package storage

import (
	"time"

	"github.com/julianstephens/clubdesk/internal/models"
)

// Provider is a local mirror of the last event list fetched from the API.
// It is read-only from the user's point of view; only a sync writes to it.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Events
	ReplaceEvents(events []models.Event, fetchedAt time.Time) error
	GetEvents() ([]models.Event, error)
	// LastSync returns the time of the last successful sync, or the zero time
	// if the cache has never been filled.
	LastSync() (time.Time, error)

	// Utils
	GetConfigPath() string
}

// SchemaReporter is implemented by providers backed by a migrated schema.
type SchemaReporter interface {
	SchemaStatus() (current, latest int, err error)
}
