package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/clubdesk/internal/keyring"
	"github.com/julianstephens/clubdesk/internal/storage/postgres"
	"github.com/julianstephens/clubdesk/internal/storage/sqlite"
)

// KeyringCache is the cache setting that reads a PostgreSQL connection
// string, password included, from the OS keyring.
const KeyringCache = "keyring"

// ErrCacheDisabled is returned by Open when the cache setting is empty or "none".
var ErrCacheDisabled = errors.New("event cache is disabled")

var (
	_ Provider = (*sqlite.Store)(nil)
	_ Provider = (*postgres.Store)(nil)

	_ SchemaReporter = (*sqlite.Store)(nil)
	_ SchemaReporter = (*postgres.Store)(nil)
)

// IsPostgres reports whether cache is a PostgreSQL URL.
func IsPostgres(cache string) bool {
	return strings.HasPrefix(cache, "postgres://") || strings.HasPrefix(cache, "postgresql://")
}

// HasEmbeddedCredentials reports whether a PostgreSQL connection string carries a password.
func HasEmbeddedCredentials(connStr string) bool {
	_, err := postgres.ValidateConnString(connStr)
	return errors.Is(err, postgres.ErrEmbeddedCredentials)
}

// Open returns an unopened provider for the cache setting: a sqlite file path,
// a postgres:// URL without a password, or "keyring".
func Open(cache string) (Provider, error) {
	cache = strings.TrimSpace(cache)
	switch {
	case cache == "" || strings.EqualFold(cache, "none"):
		return nil, ErrCacheDisabled
	case cache == KeyringCache:
		connStr, err := keyring.GetConnectionString()
		if err != nil {
			return nil, fmt.Errorf("failed to read cache connection string: %w", err)
		}
		if _, err := postgres.ValidateConnString(connStr); err != nil && !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return nil, err
		}
		return postgres.New(connStr), nil
	case IsPostgres(cache):
		if _, err := postgres.ValidateConnString(cache); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("%w (store it with 'clubdesk init --cache-secret' and set cache: keyring)", err)
			}
			return nil, err
		}
		return postgres.New(cache), nil
	default:
		return sqlite.NewStore(cache), nil
	}
}
