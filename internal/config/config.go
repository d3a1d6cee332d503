package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
	APIBind string `toml:"api_bind"`
}

// Feed contains configuration for RSS ingestion.
type Feed struct {
	URL                  string `toml:"url"`
	PollIntervalMinutes  int    `toml:"poll_interval_minutes"`
	FetchTimeoutSeconds  int    `toml:"fetch_timeout_seconds"`
	MaxConcurrentFetches int    `toml:"max_concurrent_fetches"`
}

// Training contains configuration for the retrain orchestrator and the
// external trainer invocation.
type Training struct {
	Threshold           int    `toml:"threshold"`
	CheckIntervalHours  int    `toml:"check_interval_hours"`
	BaseModelRef        string `toml:"base_model_ref"`
	TrainerBinary       string `toml:"trainer_binary"`
	TrainTimeoutMinutes int    `toml:"train_timeout_minutes"`
}

// Classifier contains configuration for prediction routing. When MLEnabled is
// false, or the ML scorer fails, predictions come from the built-in rule
// engine.
type Classifier struct {
	MLEnabled bool   `toml:"ml_enabled"`
	MLBinary  string `toml:"ml_binary"`
}

// Logging contains configuration for log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config encapsulates all configuration values for periksa.
//
// Configuration sections by subsystem:
//   - Paths: data/log directories and API bind address
//   - Feed: RSS source and ingestion timing
//   - Training: retrain threshold, scheduler interval, trainer binary
//   - Classifier: optional ML scorer routing
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Feed       Feed       `toml:"feed"`
	Training   Training   `toml:"training"`
	Classifier Classifier `toml:"classifier"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/periksa/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/periksa/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("periksa.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FeedPollInterval returns the RSS poll interval as a duration. Zero disables
// periodic ingestion.
func (c *Config) FeedPollInterval() time.Duration {
	if c.Feed.PollIntervalMinutes <= 0 {
		return 0
	}
	return time.Duration(c.Feed.PollIntervalMinutes) * time.Minute
}

// RetrainCheckInterval returns the auto-retrain scheduler interval. Zero
// disables the periodic check.
func (c *Config) RetrainCheckInterval() time.Duration {
	if c.Training.CheckIntervalHours <= 0 {
		return 0
	}
	return time.Duration(c.Training.CheckIntervalHours) * time.Hour
}

// TrainTimeout returns the maximum duration allowed for one trainer run.
func (c *Config) TrainTimeout() time.Duration {
	if c.Training.TrainTimeoutMinutes <= 0 {
		return 0
	}
	return time.Duration(c.Training.TrainTimeoutMinutes) * time.Minute
}

// FetchTimeout returns the per-article content fetch timeout.
func (c *Config) FetchTimeout() time.Duration {
	if c.Feed.FetchTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Feed.FetchTimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
