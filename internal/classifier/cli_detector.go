package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var commandContext = exec.CommandContext

// CLIDetector invokes an external scorer binary. The binary receives a JSON
// request on stdin and must print a single JSON object on stdout:
//
//	{"label": "hoax", "confidence": 0.87}
type CLIDetector struct {
	binary string
}

// CLIOption configures the CLI detector.
type CLIOption func(*CLIDetector)

// WithScorerBinary overrides the default binary name.
func WithScorerBinary(binary string) CLIOption {
	return func(d *CLIDetector) {
		if binary != "" {
			d.binary = binary
		}
	}
}

// NewCLIDetector constructs a detector around an external scorer binary.
func NewCLIDetector(opts ...CLIOption) *CLIDetector {
	d := &CLIDetector{binary: "periksa-scorer"}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Predict runs the scorer binary for one text.
func (d *CLIDetector) Predict(ctx context.Context, text, source string) (Prediction, error) {
	if strings.TrimSpace(text) == "" {
		return Prediction{}, errors.New("text is required")
	}

	request, err := json.Marshal(struct {
		Text   string `json:"text"`
		Source string `json:"source,omitempty"`
	}{Text: text, Source: source})
	if err != nil {
		return Prediction{}, fmt.Errorf("marshal scorer request: %w", err)
	}

	cmd := commandContext(ctx, d.binary, "predict")
	cmd.Stdin = bytes.NewReader(request)
	output, err := cmd.Output()
	if err != nil {
		return Prediction{}, fmt.Errorf("run scorer: %w", err)
	}

	var payload struct {
		Label      string  `json:"label"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal(bytes.TrimSpace(output), &payload); err != nil {
		return Prediction{}, fmt.Errorf("parse scorer output: %w", err)
	}
	label, ok := ParseLabel(payload.Label)
	if !ok {
		return Prediction{}, fmt.Errorf("scorer returned unknown label %q", payload.Label)
	}
	return Prediction{Label: label, Confidence: payload.Confidence}, nil
}

var _ Detector = (*CLIDetector)(nil)
