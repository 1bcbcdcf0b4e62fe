// Package config loads the clubdesk YAML configuration, creating it with
// defaults on first run, and applies environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/clubdesk/internal/constants"
)

// Config is the top-level application configuration.
type Config struct {
	// APIURL is the events endpoint, e.g. https://club.example/api/events.php.
	APIURL string `yaml:"api_url"`
	// AuthURL is the login endpoint. Empty means APIURL.
	AuthURL string `yaml:"auth_url,omitempty"`

	// Locale selects the display language for dates (en, de, fr, nl).
	Locale string `yaml:"locale"`
	// Timezone is the IANA zone that defines "today" for filtering.
	Timezone string `yaml:"timezone"`

	// Cache is a sqlite file path, a postgres:// URL without password, or
	// "keyring" for a connection string kept in the OS keyring. Empty or
	// "none" disables the cache.
	Cache string `yaml:"cache"`

	TimeoutSeconds int    `yaml:"timeout_seconds"`
	SyncSchedule   string `yaml:"sync_schedule"`
	MaxOccurrences int    `yaml:"max_occurrences"`
}

// DefaultConfig returns an in-memory default configuration rooted at dir.
func DefaultConfig(dir string) *Config {
	return &Config{
		Locale:         constants.DefaultLocale,
		Timezone:       constants.DefaultTimezone,
		Cache:          filepath.Join(dir, constants.DefaultCacheFile),
		TimeoutSeconds: int(constants.DefaultTimeout / time.Second),
		SyncSchedule:   constants.DefaultSyncSpec,
		MaxOccurrences: constants.MaxOccurrences,
	}
}

// Normalize fills in zero values so older or hand-edited files still behave.
func (c *Config) Normalize() {
	c.APIURL = strings.TrimSpace(c.APIURL)
	c.AuthURL = strings.TrimSpace(c.AuthURL)
	if c.Locale == "" {
		c.Locale = constants.DefaultLocale
	}
	if c.Timezone == "" {
		c.Timezone = constants.DefaultTimezone
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = int(constants.DefaultTimeout / time.Second)
	}
	if c.SyncSchedule == "" {
		c.SyncSchedule = constants.DefaultSyncSpec
	}
	if c.MaxOccurrences <= 0 || c.MaxOccurrences > constants.MaxOccurrences {
		c.MaxOccurrences = constants.MaxOccurrences
	}
}

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate reports settings that make the client unusable.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("api_url is not set (edit the config file or set %s)", constants.EnvAPIURL)
	}
	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		return fmt.Errorf("api_url must be an http(s) URL, got %q", c.APIURL)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil && c.Timezone != constants.DefaultTimezone {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// ApplyEnv overrides fields from the process environment.
func (c *Config) ApplyEnv() {
	overrides := []struct {
		key string
		dst *string
	}{
		{constants.EnvAPIURL, &c.APIURL},
		{constants.EnvAuthURL, &c.AuthURL},
		{constants.EnvLocale, &c.Locale},
		{constants.EnvTimezone, &c.Timezone},
		{constants.EnvCache, &c.Cache},
	}
	for _, o := range overrides {
		if v, ok := os.LookupEnv(o.key); ok && strings.TrimSpace(v) != "" {
			*o.dst = strings.TrimSpace(v)
		}
	}
}

// Load reads the YAML file at path, writing a default file with 0600 perms
// when none exists. A .env file next to the config and one in the working
// directory are loaded first; variables already set in the environment win.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}
	loadDotEnv(filepath.Join(filepath.Dir(path), ".env"), ".env")

	cfg, err := read(path)
	if err != nil {
		return cfg, err
	}
	cfg.ApplyEnv()
	cfg.Normalize()
	return cfg, nil
}

func read(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig(filepath.Dir(path))
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

func loadDotEnv(paths ...string) {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		// godotenv.Load never overrides variables that are already set
		_ = godotenv.Load(p)
	}
}

// Save writes cfg atomically via a temp file and rename, with 0600 perms.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".clubdesk-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save delegates to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}

// DefaultPath returns the expanded path of the default config file.
func DefaultPath() (string, error) {
	dir, err := ExpandPath(constants.DefaultConfigDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.DefaultConfigFile), nil
}
