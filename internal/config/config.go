package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultServerURL      = "http://localhost:8080"
	DefaultRequestTimeout = 30 // seconds
	DefaultStaleTime      = 30 // seconds
	configFileName        = "config.json"
	logFileName           = "quill-t.log"
	configDirName         = "quill-t"
	MaxRecentlyViewed     = 10 // Maximum number of recently viewed authors to track
)

// Environment variables that override the config file
const (
	EnvServerURL = "QUILL_URL"
	EnvToken     = "QUILL_TOKEN"
	EnvTheme     = "QUILL_THEME"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"
)

// RecentlyViewedEntry represents an author whose detail screen was opened
type RecentlyViewedEntry struct {
	AuthorID string    `json:"author_id"`
	Name     string    `json:"name"`
	ViewedAt time.Time `json:"viewed_at"`
}

// Config holds the application configuration
type Config struct {
	ServerURL      string                `json:"server_url" validate:"required,url"`
	Token          string                `json:"token,omitempty"`
	Theme          string                `json:"theme,omitempty" validate:"omitempty,oneof=dark light solarized nord gruvbox"`
	RequestTimeout int                   `json:"request_timeout,omitempty" validate:"gte=0,lte=600"`
	StaleTime      int                   `json:"stale_time,omitempty" validate:"gte=0,lte=86400"`
	LogLevel       string                `json:"log_level,omitempty" validate:"omitempty,oneof=debug info warn warning error"`
	LogFormat      string                `json:"log_format,omitempty" validate:"omitempty,oneof=json text"`
	LogFile        string                `json:"log_file,omitempty"`
	RecentlyViewed []RecentlyViewedEntry `json:"recently_viewed,omitempty"`

	// Path to config file (not persisted)
	path string `json:"-"`

	// File values of the fields the environment may override. Save writes
	// these back so an override never ends up on disk.
	persisted overridable
}

type overridable struct {
	ServerURL string
	Token     string
	Theme     string
	LogLevel  string
	LogFormat string
}

func (c *Config) snapshot() overridable {
	return overridable{
		ServerURL: c.ServerURL,
		Token:     c.Token,
		Theme:     c.Theme,
		LogLevel:  c.LogLevel,
		LogFormat: c.LogFormat,
	}
}

// Load loads configuration from the default config file
func Load() (*Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom loads configuration from the given file, then applies environment
// overrides. A missing file yields the defaults.
func LoadFrom(configPath string) (*Config, error) {
	cfg := &Config{
		ServerURL: DefaultServerURL,
		path:      configPath,
	}

	data, err := os.ReadFile(configPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	cfg.path = configPath
	cfg.persisted = cfg.snapshot()
	cfg.applyEnv()
	return cfg, nil
}

// LoadEnvFile loads KEY=value pairs from a .env file into the process
// environment. Variables already set are left alone; a missing file is not an error.
func LoadEnvFile(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// applyEnv overrides file values with environment variables
func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvServerURL)); v != "" {
		c.ServerURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvToken)); v != "" {
		c.Token = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTheme)); v != "" {
		c.Theme = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		c.LogFormat = strings.ToLower(v)
	}
}

// Save persists the configuration to disk
func (c *Config) Save() error {
	// Ensure directory exists
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	out := *c
	out.ServerURL = c.persisted.ServerURL
	out.Token = c.persisted.Token
	out.Theme = c.persisted.Theme
	out.LogLevel = c.persisted.LogLevel
	out.LogFormat = c.persisted.LogFormat

	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(c.path, data, 0600)
}

// Path returns the config file location
func (c *Config) Path() string {
	return c.path
}

// SetTheme updates the theme and saves
func (c *Config) SetTheme(name string) error {
	c.Theme = name
	c.persisted.Theme = name
	return c.Save()
}

// SetServerURL updates the server URL and saves
func (c *Config) SetServerURL(serverURL string) error {
	c.ServerURL = serverURL
	c.persisted.ServerURL = serverURL
	return c.Save()
}

// Timeout returns the per-request timeout
func (c *Config) Timeout() time.Duration {
	if c.RequestTimeout <= 0 {
		return DefaultRequestTimeout * time.Second
	}
	return time.Duration(c.RequestTimeout) * time.Second
}

// StaleDuration returns how long a fetched query stays fresh
func (c *Config) StaleDuration() time.Duration {
	if c.StaleTime <= 0 {
		return DefaultStaleTime * time.Second
	}
	return time.Duration(c.StaleTime) * time.Second
}

// LogPath returns the log file path, defaulting to a file beside the config
func (c *Config) LogPath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(filepath.Dir(c.path), logFileName)
}

// AddRecentlyViewed records an author at the front of the recently viewed list
func (c *Config) AddRecentlyViewed(authorID, name string) error {
	// Remove existing entry for this author if present
	newList := make([]RecentlyViewedEntry, 0, MaxRecentlyViewed)
	for _, entry := range c.RecentlyViewed {
		if entry.AuthorID != authorID {
			newList = append(newList, entry)
		}
	}

	entry := RecentlyViewedEntry{
		AuthorID: authorID,
		Name:     name,
		ViewedAt: time.Now(),
	}
	c.RecentlyViewed = append([]RecentlyViewedEntry{entry}, newList...)

	if len(c.RecentlyViewed) > MaxRecentlyViewed {
		c.RecentlyViewed = c.RecentlyViewed[:MaxRecentlyViewed]
	}

	return c.Save()
}

// GetRecentlyViewedIDs returns the list of recently viewed author IDs
func (c *Config) GetRecentlyViewedIDs() []string {
	ids := make([]string, len(c.RecentlyViewed))
	for i, entry := range c.RecentlyViewed {
		ids[i] = entry.AuthorID
	}
	return ids
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, ".config")
	}

	return filepath.Join(configDir, configDirName, configFileName), nil
}
