package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"periksa/internal/checker"
	"periksa/internal/config"
	"periksa/internal/ingest"
	"periksa/internal/logging"
	"periksa/internal/store"
	"periksa/internal/training"
)

// Daemon runs the background services and enforces single-instance
// execution: RSS ingestion, the auto-retrain scheduler, and the HTTP API.
type Daemon struct {
	cfg          *config.Config
	logger       *slog.Logger
	store        *store.Store
	ingest       *ingest.Service
	orchestrator *training.Orchestrator
	queue        *training.Queue
	checker      *checker.Service

	lockPath string
	lock     *flock.Flock

	api *apiServer

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	DatabasePath string
	LockFilePath string
	Queue        training.QueueStatus
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, st *store.Store, ingestSvc *ingest.Service, queue *training.Queue, orchestrator *training.Orchestrator, checkSvc *checker.Service, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || st == nil || queue == nil || orchestrator == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, queue, orchestrator, and logger")
	}

	lockPath := filepath.Join(cfg.Paths.DataDir, "periksad.lock")
	d := &Daemon{
		cfg:          cfg,
		logger:       logger.With(logging.String(logging.FieldComponent, "daemon")),
		store:        st,
		ingest:       ingestSvc,
		orchestrator: orchestrator,
		queue:        queue,
		checker:      checkSvc,
		lockPath:     lockPath,
		lock:         flock.New(lockPath),
	}

	api, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = api
	return d, nil
}

// Start acquires the daemon lock and launches the background loops.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another periksa daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	if d.api != nil {
		if err := d.api.start(runCtx); err != nil {
			_ = d.lock.Unlock()
			cancel()
			d.cancel = nil
			return err
		}
	}

	if d.ingest != nil {
		if interval := d.cfg.FeedPollInterval(); interval > 0 {
			d.wg.Add(1)
			go d.pollLoop(runCtx, interval)
		}
	}
	if interval := d.cfg.RetrainCheckInterval(); interval > 0 {
		d.wg.Add(1)
		go d.retrainLoop(runCtx, interval)
	}

	d.running.Store(true)
	d.logger.Info("periksa daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.wg.Wait()
	if d.api != nil {
		d.api.stop()
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("periksa daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Status reports the daemon's runtime state.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:      d.running.Load(),
		DatabasePath: d.store.Path(),
		LockFilePath: d.lockPath,
	}
	if queueStatus, err := d.queue.Status(ctx); err == nil {
		status.Queue = queueStatus
	}
	return status
}

// pollLoop runs one ingestion cycle immediately, then on every tick.
func (d *Daemon) pollLoop(ctx context.Context, interval time.Duration) {
	defer d.wg.Done()

	d.pollOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.pollOnce(ctx)
		}
	}
}

func (d *Daemon) pollOnce(ctx context.Context) {
	if _, err := d.ingest.Poll(ctx); err != nil && !errors.Is(err, context.Canceled) {
		d.logger.Error("feed poll failed", logging.Error(err))
	}
}

// retrainLoop periodically offers the orchestrator a non-forced retrain. The
// orchestrator's own gates decide whether anything happens.
func (d *Daemon) retrainLoop(ctx context.Context, interval time.Duration) {
	defer d.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result, err := d.orchestrator.TriggerRetrain(ctx, false)
			switch {
			case errors.Is(err, training.ErrRetrainInProgress):
				d.logger.Debug("retrain check skipped, run in progress")
			case errors.Is(err, context.Canceled):
				return
			case err != nil:
				d.logger.Error("scheduled retrain failed", logging.Error(err))
			case result.Skipped:
				d.logger.Debug("scheduled retrain skipped", logging.String("reason", result.Message))
			}
		}
	}
}
