package keyring

import (
	"errors"
	"fmt"

	"github.com/julianstephens/clubdesk/internal/constants"
	"github.com/zalando/go-keyring"
)

var (
	// ErrNotFound is returned when no secret is stored under the requested entry
	ErrNotFound = errors.New("secret not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

func get(user string) (string, error) {
	secret, err := keyring.Get(constants.AppName, user)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return secret, nil
}

func set(user, secret, what string) error {
	if secret == "" {
		return fmt.Errorf("%s cannot be empty", what)
	}
	if err := keyring.Set(constants.AppName, user, secret); err != nil {
		return fmt.Errorf("failed to store %s in keyring: %w", what, err)
	}
	return nil
}

func del(user, what string) error {
	if err := keyring.Delete(constants.AppName, user); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", what, err)
	}
	return nil
}

// GetSession returns the serialized session blob.
// Returns ErrNotFound when nobody is signed in.
func GetSession() (string, error) {
	return get(constants.DefaultKeyringUser)
}

// SetSession stores the serialized session blob.
func SetSession(blob string) error {
	return set(constants.DefaultKeyringUser, blob, "session")
}

// DeleteSession removes the stored session.
func DeleteSession() error {
	return del(constants.DefaultKeyringUser, "session")
}

// GetConnectionString retrieves the event cache connection string.
// Returns ErrNotFound if no credentials are stored.
func GetConnectionString() (string, error) {
	return get(constants.DefaultCacheUser)
}

// SetConnectionString stores the event cache connection string.
func SetConnectionString(connStr string) error {
	return set(constants.DefaultCacheUser, connStr, "connection string")
}

// DeleteConnectionString removes the event cache connection string.
func DeleteConnectionString() error {
	return del(constants.DefaultCacheUser, "connection string")
}

// IsAvailable checks if the OS keyring is available on the current system.
// This is a best-effort check and may not catch all failure scenarios.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	// ErrNotFound means the keyring answered but is empty
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
