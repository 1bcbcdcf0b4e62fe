package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/julianstephens/clubdesk/internal/constants"
)

var (
	// ErrNetwork wraps transport failures where no response was received.
	ErrNetwork = errors.New("network error")
	// ErrUnauthorized is matched by API errors with status 401 or 403.
	ErrUnauthorized = errors.New("not authorized")
	// ErrNotConfigured is returned when no endpoint URL is set.
	ErrNotConfigured = errors.New("API URL is not configured")
)

// APIError is a response the backend rejected, either with a non-2xx status
// or with success set to false.
type APIError struct {
	Action  constants.Action
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s failed: %s", e.Action, e.Message)
	}
	return fmt.Sprintf("%s failed with status %d", e.Action, e.Status)
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized &&
		(e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden)
}

// Message returns the user-facing reason for err: the backend's own message
// when one was sent, otherwise a generic network failure.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return constants.GenericNetworkFail
}
