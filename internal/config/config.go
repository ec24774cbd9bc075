// Package config contains everything related to configuration
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	Location        *time.Location
	APIBaseURL      string
	DatabasePath    string
	BookmarksPath   string
	ExportDir       string
	LogPath         string
	LogLevel        string
	Timezone        string
	EnvFile         string
	RefreshInterval time.Duration
	NotifyNewClicks bool
}

// Default values
const (
	defaultAPIBaseURL = "http://localhost:8080"
	defaultLogLevel   = "info"
	appDirName        = "clickdash"
)

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	// The first .env found wins; godotenv never overrides set variables.
	var envFile string
	for _, path := range getEnvPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				envFile = path
			}
			break
		}
	}

	cfg := &Config{
		APIBaseURL:      strings.TrimRight(getEnvString("API_BASE_URL", defaultAPIBaseURL), "/"),
		DatabasePath:    getEnvString("DATABASE_PATH", getDefaultPath("lookups.db")),
		BookmarksPath:   getEnvString("BOOKMARKS_PATH", getDefaultPath("bookmarks.json")),
		ExportDir:       getEnvString("EXPORT_DIR", getDefaultPath("exports")),
		LogPath:         getEnvString("LOG_PATH", getDefaultPath("clickdash.log")),
		LogLevel:        getEnvString("LOG_LEVEL", defaultLogLevel),
		Timezone:        getEnvString("TIMEZONE", ""),
		RefreshInterval: getEnvDuration("REFRESH_INTERVAL", 0),
		NotifyNewClicks: getEnvBool("NOTIFY_NEW_CLICKS", false),
		EnvFile:         envFile,
	}

	if err := validateBaseURL(cfg.APIBaseURL); err != nil {
		return nil, err
	}

	loc, err := loadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	cfg.Location = loc

	if cfg.RefreshInterval < 0 {
		cfg.RefreshInterval = 0
	}

	// Ensure database directory exists
	if err := ensureDir(filepath.Dir(cfg.DatabasePath)); err != nil {
		return nil, err
	}

	// Ensure bookmarks directory exists
	if err := ensureDir(filepath.Dir(cfg.BookmarksPath)); err != nil {
		return nil, err
	}

	return cfg, nil
}

// TimezoneName returns the configured zone or the local zone name.
func (c *Config) TimezoneName() string {
	if c.Timezone != "" {
		return c.Timezone
	}
	return "Local"
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid API_BASE_URL %q: %w", raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid API_BASE_URL %q: must be an absolute http(s) URL", raw)
	}
	return nil
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", name, err)
	}
	return loc, nil
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory locations
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", appDirName, ".env"),
			filepath.Join(home, "."+appDirName, ".env"),
		)
	}

	// Parent directories (useful for development)
	if cwd, err := os.Getwd(); err == nil {
		parent := filepath.Dir(cwd)
		paths = append(paths, filepath.Join(parent, ".env"))
		grandparent := filepath.Dir(parent)
		paths = append(paths, filepath.Join(grandparent, ".env"))
	}

	return paths
}

// getDefaultPath returns name inside the per-user config directory, or name
// itself when there is no home directory.
func getDefaultPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, ".config", appDirName, name)
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// getEnvBool accepts anything strconv.ParseBool does.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
