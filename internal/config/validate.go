package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks configuration values that cannot be defaulted away.
func (c *Config) Validate() error {
	var problems []string

	if c.Paths.DataDir == "" {
		problems = append(problems, "paths.data_dir is required")
	}
	if c.Paths.LogDir == "" {
		problems = append(problems, "paths.log_dir is required")
	}
	if c.Training.Threshold <= 0 {
		problems = append(problems, "training.threshold must be positive")
	}
	if c.Training.TrainerBinary == "" {
		problems = append(problems, "training.trainer_binary is required")
	}
	if c.Classifier.MLEnabled && c.Classifier.MLBinary == "" {
		problems = append(problems, "classifier.ml_binary is required when classifier.ml_enabled is true")
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format: unsupported value %q", c.Logging.Format))
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}
