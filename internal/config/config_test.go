package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
	if cfg.Training.Threshold != 50 {
		t.Fatalf("default threshold = %d, want 50", cfg.Training.Threshold)
	}
	if cfg.Training.CheckIntervalHours != 6 {
		t.Fatalf("default check interval = %d, want 6", cfg.Training.CheckIntervalHours)
	}
}

func TestValidateCollectsProblems(t *testing.T) {
	cfg := Default()
	cfg.Paths.DataDir = ""
	cfg.Training.Threshold = 0
	cfg.Logging.Format = "yaml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation failure")
	}
	for _, fragment := range []string{"paths.data_dir", "training.threshold", "logging.format"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Errorf("error %q missing %q", err.Error(), fragment)
		}
	}
}

func TestValidateMLRequiresBinary(t *testing.T) {
	cfg := Default()
	cfg.Classifier.MLEnabled = true
	if err := cfg.Validate(); err == nil {
		t.Fatal("ml_enabled without ml_binary must fail validation")
	}
	cfg.Classifier.MLBinary = "periksa-scorer"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "periksa.toml")

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("file should not exist")
	}
	if resolved != path {
		t.Fatalf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.Training.Threshold != 50 {
		t.Fatalf("defaults not applied, threshold = %d", cfg.Training.Threshold)
	}
}

func TestLoadOverridesFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "periksa.toml")
	content := `
[paths]
data_dir = "` + filepath.Join(dir, "data") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[training]
threshold = 25
check_interval_hours = 2

[logging]
format = "JSON"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected file to be found")
	}
	if cfg.Training.Threshold != 25 {
		t.Fatalf("threshold = %d, want 25", cfg.Training.Threshold)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("format not normalized, got %q", cfg.Logging.Format)
	}
	if cfg.RetrainCheckInterval() != 2*time.Hour {
		t.Fatalf("check interval = %s", cfg.RetrainCheckInterval())
	}
	// Untouched sections keep their defaults.
	if cfg.Training.TrainerBinary != "periksa-trainer" {
		t.Fatalf("trainer binary = %q", cfg.Training.TrainerBinary)
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "periksa.toml")
	content := `
[training]
threshold = -1
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, _, err := Load(path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestDurationHelpers(t *testing.T) {
	cfg := Default()
	if cfg.FeedPollInterval() != 60*time.Minute {
		t.Fatalf("poll interval = %s", cfg.FeedPollInterval())
	}
	if cfg.FetchTimeout() != 10*time.Second {
		t.Fatalf("fetch timeout = %s", cfg.FetchTimeout())
	}
	if cfg.TrainTimeout() != 120*time.Minute {
		t.Fatalf("train timeout = %s", cfg.TrainTimeout())
	}

	cfg.Feed.PollIntervalMinutes = 0
	if cfg.FeedPollInterval() != 0 {
		t.Fatal("zero minutes must disable polling")
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("sample not found after creation")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample config must validate: %v", err)
	}
}
