package training

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"periksa/internal/logging"
	"periksa/internal/store"
)

// ErrRetrainInProgress is returned when a retrain is triggered while another
// one is still running.
var ErrRetrainInProgress = errors.New("retrain already in progress")

// Trainer runs one fine-tuning pass over the given samples.
type Trainer interface {
	Train(ctx context.Context, baseModelRef string, samples []Sample) (Result, error)
}

// Result is the outcome reported by a trainer run.
type Result struct {
	Success     bool
	SamplesUsed int
	Accuracy    *float64
	F1          *float64
	Message     string
}

// RetrainResult describes one TriggerRetrain call. Skipped outcomes are
// normal control flow (threshold not met, nothing pending), not errors.
type RetrainResult struct {
	Success     bool
	Skipped     bool
	Message     string
	SamplesUsed int
	Accuracy    *float64
	F1          *float64
	Pending     int
	Threshold   int
}

// Bookkeeper is the write side the orchestrator needs after a run.
type Bookkeeper interface {
	MarkTrained(ctx context.Context, ids []string) (int64, error)
	AppendHistory(ctx context.Context, entry *store.HistoryEntry) error
}

// Orchestrator coordinates retrain runs: it gates on the queue threshold,
// snapshots the pending set, invokes the trainer, and records the outcome.
// Only one run may be active at a time.
type Orchestrator struct {
	queue        *Queue
	books        Bookkeeper
	trainer      Trainer
	logger       *slog.Logger
	baseModelRef string
	trainTimeout time.Duration

	mu sync.Mutex
}

// NewOrchestrator wires the orchestrator. trainTimeout <= 0 disables the
// per-run deadline.
func NewOrchestrator(queue *Queue, books Bookkeeper, trainer Trainer, baseModelRef string, trainTimeout time.Duration, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		queue:        queue,
		books:        books,
		trainer:      trainer,
		logger:       logger.With(logging.String(logging.FieldComponent, "orchestrator")),
		baseModelRef: baseModelRef,
		trainTimeout: trainTimeout,
	}
}

// TriggerRetrain runs one retrain attempt. force bypasses the threshold gate
// but never the empty-queue gate. Concurrent calls beyond the first fail with
// ErrRetrainInProgress.
func (o *Orchestrator) TriggerRetrain(ctx context.Context, force bool) (*RetrainResult, error) {
	if !o.mu.TryLock() {
		return nil, ErrRetrainInProgress
	}
	defer o.mu.Unlock()

	status, err := o.queue.Status(ctx)
	if err != nil {
		return nil, err
	}

	result := &RetrainResult{Pending: status.TotalPending, Threshold: status.Threshold}

	if !force && !status.ReadyForTraining {
		result.Skipped = true
		result.Message = fmt.Sprintf("threshold not met: %d of %d pending", status.TotalPending, status.Threshold)
		o.logger.Info("retrain skipped", logging.Int("pending", status.TotalPending), logging.Int("threshold", status.Threshold))
		return result, nil
	}
	if status.TotalPending == 0 {
		result.Skipped = true
		result.Message = "no pending training data"
		o.logger.Info("retrain skipped, queue empty")
		return result, nil
	}

	// Snapshot the export set before training starts; records labeled while
	// the trainer runs stay pending for the next cycle.
	samples, err := o.queue.PendingItems(ctx, 0)
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, errors.New("pending records produced no training samples")
	}

	o.logger.Info("retrain starting",
		logging.Int(logging.FieldSamples, len(samples)),
		logging.String("base_model", o.baseModelRef))

	trainCtx := ctx
	if o.trainTimeout > 0 {
		var cancel context.CancelFunc
		trainCtx, cancel = context.WithTimeout(ctx, o.trainTimeout)
		defer cancel()
	}

	started := time.Now()
	outcome, trainErr := o.trainer.Train(trainCtx, o.baseModelRef, samples)
	elapsed := time.Since(started)

	if trainErr != nil || !outcome.Success {
		message := outcome.Message
		if trainErr != nil {
			message = trainErr.Error()
		}
		if message == "" {
			message = "trainer reported failure"
		}
		o.appendHistory(ctx, &store.HistoryEntry{
			SamplesUsed: len(samples),
			Status:      store.HistoryStatusFailed,
			Message:     message,
		})
		o.logger.Error("retrain failed",
			logging.String("reason", message),
			logging.Duration("elapsed", elapsed))
		result.Message = "training failed: " + message
		return result, nil
	}

	ids := make([]string, len(samples))
	for i, sample := range samples {
		ids[i] = sample.ID
	}
	marked, err := o.books.MarkTrained(ctx, ids)
	if err != nil {
		o.appendHistory(ctx, &store.HistoryEntry{
			SamplesUsed: len(samples),
			Accuracy:    outcome.Accuracy,
			F1:          outcome.F1,
			Status:      store.HistoryStatusFailed,
			Message:     "training succeeded but records could not be marked: " + err.Error(),
		})
		return nil, fmt.Errorf("mark trained records: %w", err)
	}

	samplesUsed := outcome.SamplesUsed
	if samplesUsed == 0 {
		samplesUsed = len(samples)
	}
	o.appendHistory(ctx, &store.HistoryEntry{
		SamplesUsed: samplesUsed,
		Accuracy:    outcome.Accuracy,
		F1:          outcome.F1,
		Status:      store.HistoryStatusSuccess,
		Message:     outcome.Message,
	})

	o.logger.Info("retrain complete",
		logging.Int(logging.FieldSamples, samplesUsed),
		logging.Int64("marked", marked),
		logging.Duration("elapsed", elapsed))

	result.Success = true
	result.SamplesUsed = samplesUsed
	result.Accuracy = outcome.Accuracy
	result.F1 = outcome.F1
	result.Message = "training completed"
	return result, nil
}

// appendHistory records a retrain outcome. History is an audit trail; a write
// failure is logged but does not change the run's outcome.
func (o *Orchestrator) appendHistory(ctx context.Context, entry *store.HistoryEntry) {
	if err := o.books.AppendHistory(ctx, entry); err != nil {
		o.logger.Warn("failed to record training history", logging.Error(err))
	}
}
