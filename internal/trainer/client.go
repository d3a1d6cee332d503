package trainer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"

	"periksa/internal/logging"
	"periksa/internal/training"
)

var commandContext = exec.CommandContext

// CLI invokes an external fine-tuning binary. Samples are streamed to the
// binary as JSON on stdin; the binary prints a single JSON result object on
// stdout:
//
//	{"success": true, "samples_used": 120, "accuracy": 0.93, "f1": 0.91}
type CLI struct {
	binary string
	logger *slog.Logger
}

// Option configures the CLI trainer.
type Option func(*CLI)

// WithBinary overrides the trainer binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithLogger attaches a logger for trainer stderr diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *CLI) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCLI constructs a trainer client around an external binary.
func NewCLI(opts ...Option) *CLI {
	c := &CLI{binary: "periksa-trainer", logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(logging.String(logging.FieldComponent, "trainer"))
	return c
}

type trainRequest struct {
	BaseModel string            `json:"base_model"`
	Samples   []training.Sample `json:"samples"`
}

type trainResponse struct {
	Success     bool     `json:"success"`
	SamplesUsed int      `json:"samples_used"`
	Accuracy    *float64 `json:"accuracy"`
	F1          *float64 `json:"f1"`
	Error       string   `json:"error"`
}

// Train runs one fine-tuning pass in the external binary.
func (c *CLI) Train(ctx context.Context, baseModelRef string, samples []training.Sample) (training.Result, error) {
	if len(samples) == 0 {
		return training.Result{}, errors.New("no samples to train on")
	}

	request, err := json.Marshal(trainRequest{BaseModel: baseModelRef, Samples: samples})
	if err != nil {
		return training.Result{}, fmt.Errorf("marshal train request: %w", err)
	}

	c.logger.Info("invoking trainer",
		logging.String("binary", c.binary),
		logging.Int(logging.FieldSamples, len(samples)))

	var stderr bytes.Buffer
	cmd := commandContext(ctx, c.binary, "train")
	cmd.Stdin = bytes.NewReader(request)
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if stderr.Len() > 0 {
		c.logger.Debug("trainer stderr", logging.String("output", stderr.String()))
	}
	if err != nil {
		if ctx.Err() != nil {
			return training.Result{}, fmt.Errorf("trainer interrupted: %w", ctx.Err())
		}
		return training.Result{}, fmt.Errorf("run trainer: %w", err)
	}

	var response trainResponse
	if err := json.Unmarshal(bytes.TrimSpace(output), &response); err != nil {
		return training.Result{}, fmt.Errorf("parse trainer output: %w", err)
	}

	result := training.Result{
		Success:     response.Success,
		SamplesUsed: response.SamplesUsed,
		Accuracy:    response.Accuracy,
		F1:          response.F1,
		Message:     response.Error,
	}
	if !response.Success && result.Message == "" {
		result.Message = "trainer reported failure without detail"
	}
	return result, nil
}

var _ training.Trainer = (*CLI)(nil)
