package constants

import "time"

const (
	AppName            = "clubdesk"
	DefaultKeyringUser = "session"
	DefaultCacheUser   = "cache-connection"
	DefaultConfigDir   = "~/.config/clubdesk"
	DefaultConfigFile  = "config.yaml"
	DefaultCacheFile   = "events.db"
	Version            = "v0.3.0"

	// DateFormat is the wire format for event dates (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the wire format for event times (HH:MM)
	TimeFormat = "15:04"

	// DateRangeSeparator joins the start and end of a multi-day event
	DateRangeSeparator = ":"

	// MaxOccurrences is the upper bound offered by the creation forms.
	MaxOccurrences = 50

	// API defaults
	DefaultTimeout     = 15 * time.Second
	RequestIDHeader    = "X-Request-ID"
	DefaultSyncSpec    = "@every 15m"
	WatchLockfileName  = "clubdesk-sync.lock"
	DefaultLocale      = "en"
	DefaultTimezone    = "Local"
	GenericNetworkFail = "network error, please try again"
)

// SessionState represents the current state of the TUI application
type SessionState int

// Session States
const (
	StateEvents SessionState = iota
	StateCreating
	StateEditing
	StateConfirmDelete
)
