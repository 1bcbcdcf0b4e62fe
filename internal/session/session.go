// Package session holds the signed-in administrator for the lifetime of the
// process and persists it in the OS keyring between runs.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/julianstephens/clubdesk/internal/keyring"
	"github.com/julianstephens/clubdesk/internal/logger"
	"github.com/julianstephens/clubdesk/internal/models"
)

// ErrNotLoggedIn is returned when an operation needs a signed-in user.
var ErrNotLoggedIn = errors.New("not signed in")

// Store is safe for concurrent use. Its zero value is not usable; call New.
type Store struct {
	mu      sync.RWMutex
	current *models.Session
	now     func() time.Time
}

func New() *Store {
	return &Store{now: time.Now}
}

// Load restores a previously saved session. A missing entry leaves the
// store empty and is not an error; a corrupt entry is removed.
func (s *Store) Load() error {
	blob, err := keyring.GetSession()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			s.set(nil)
			return nil
		}
		return fmt.Errorf("failed to read session: %w", err)
	}

	var sess models.Session
	if err := json.Unmarshal([]byte(blob), &sess); err != nil || !sess.Valid() {
		logger.Warn("Discarding unreadable session", "error", err)
		_ = keyring.DeleteSession()
		s.set(nil)
		return nil
	}
	s.set(&sess)
	return nil
}

// Save stores sess as the current session and persists it.
func (s *Store) Save(sess models.Session) error {
	if !sess.Valid() {
		return errors.New("session needs a username and a token")
	}
	if sess.LoggedInAt.IsZero() {
		sess.LoggedInAt = s.now().UTC()
	}
	blob, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := keyring.SetSession(string(blob)); err != nil {
		return err
	}
	s.set(&sess)
	logger.Info("Signed in", "user", sess.Username)
	return nil
}

// Clear signs out locally. It succeeds when nothing was stored.
func (s *Store) Clear() error {
	s.set(nil)
	if err := keyring.DeleteSession(); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}

// Current returns the signed-in session or ErrNotLoggedIn.
func (s *Store) Current() (models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return models.Session{}, ErrNotLoggedIn
	}
	return *s.current, nil
}

// Token returns the bearer token, or "" when signed out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.Token
}

func (s *Store) set(sess *models.Session) {
	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()
}
