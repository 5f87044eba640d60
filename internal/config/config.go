// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Database DatabaseConfig
	Search   SearchConfig
	Content  ContentConfig
	Sync     SyncConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
	DataPath    string // Base directory for the database, index and checkpoints
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DatabaseConfig holds SQLite configuration.
type DatabaseConfig struct {
	Path string // default: {DataPath}/content.db
}

// SearchConfig holds full-text search configuration.
type SearchConfig struct {
	Enabled        bool
	IndexPath      string // default: {DataPath}/search
	CheckpointPath string // default: {DataPath}/checkpoints
	MaxCandidates  int    // Upper bound on IDs a search contributes to a listing
}

// ContentConfig holds listing and annotation limits.
type ContentConfig struct {
	DefaultLimit        int
	MaxLimit            int
	AnnotateConcurrency int
}

// SyncConfig holds the incremental index sync schedule.
type SyncConfig struct {
	Schedule string // cron expression, e.g. "@every 5m"
}

// Flags carries command-line overrides. Empty fields fall through to the
// environment, then the .env file, then defaults.
type Flags struct {
	EnvFile       string
	Env           string
	LogLevel      string
	DataPath      string
	DatabasePath  string
	SearchEnabled string
	SyncSchedule  string
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig(flags Flags) (*Config, error) {
	envFile := flags.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file %s: %w", envFile, err)
	}

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(flags.Env, "ENV", "development"),
			DataPath:    getConfigValue(flags.DataPath, "DATA_PATH", ""),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(flags.LogLevel, "LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			Path: getConfigValue(flags.DatabasePath, "DATABASE_PATH", ""),
		},
		Search: SearchConfig{
			Enabled:        getBoolConfigValue(flags.SearchEnabled, "SEARCH_ENABLED", true),
			IndexPath:      getConfigValue("", "SEARCH_INDEX_PATH", ""),
			CheckpointPath: getConfigValue("", "SEARCH_CHECKPOINT_PATH", ""),
		},
		Sync: SyncConfig{
			Schedule: getConfigValue(flags.SyncSchedule, "SYNC_SCHEDULE", "@every 5m"),
		},
	}

	var err error
	if cfg.Search.MaxCandidates, err = getIntConfigValue("", "SEARCH_MAX_CANDIDATES", 500); err != nil {
		return nil, err
	}
	if cfg.Content.DefaultLimit, err = getIntConfigValue("", "CONTENT_DEFAULT_LIMIT", 20); err != nil {
		return nil, err
	}
	if cfg.Content.MaxLimit, err = getIntConfigValue("", "CONTENT_MAX_LIMIT", 100); err != nil {
		return nil, err
	}
	if cfg.Content.AnnotateConcurrency, err = getIntConfigValue("", "ANNOTATE_CONCURRENCY", 4); err != nil {
		return nil, err
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Database.Path == "" {
		return errors.New("database path cannot be empty after expansion")
	}

	if c.Search.MaxCandidates < 1 {
		return fmt.Errorf("search max candidates must be positive, got %d", c.Search.MaxCandidates)
	}
	if c.Content.MaxLimit < 1 {
		return fmt.Errorf("content max limit must be positive, got %d", c.Content.MaxLimit)
	}
	if c.Content.DefaultLimit < 1 || c.Content.DefaultLimit > c.Content.MaxLimit {
		return fmt.Errorf("content default limit must be between 1 and %d, got %d", c.Content.MaxLimit, c.Content.DefaultLimit)
	}
	if c.Content.AnnotateConcurrency < 1 {
		return fmt.Errorf("annotate concurrency must be positive, got %d", c.Content.AnnotateConcurrency)
	}

	if _, err := cron.ParseStandard(c.Sync.Schedule); err != nil {
		return fmt.Errorf("invalid sync schedule %q: %w", c.Sync.Schedule, err)
	}

	return nil
}

// expandPaths resolves the data directory and the paths derived from it.
func (c *Config) expandPaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	if c.App.DataPath, err = expandPath(c.App.DataPath, filepath.Join(homeDir, ".sveltesociety")); err != nil {
		return err
	}
	if c.Database.Path, err = expandPath(c.Database.Path, filepath.Join(c.App.DataPath, "content.db")); err != nil {
		return err
	}
	if c.Search.IndexPath, err = expandPath(c.Search.IndexPath, filepath.Join(c.App.DataPath, "search")); err != nil {
		return err
	}
	if c.Search.CheckpointPath, err = expandPath(c.Search.CheckpointPath, filepath.Join(c.App.DataPath, "checkpoints")); err != nil {
		return err
	}
	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, defaultPath is returned unchanged.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) (int, error) {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, strValue, err)
	}
	return n, nil
}
