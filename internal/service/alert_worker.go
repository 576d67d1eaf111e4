package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// AlertWorker is a background worker that periodically runs the alert check for all users
type AlertWorker struct {
	alertCheckService *AlertCheckService
	logger            zerolog.Logger
	interval          time.Duration
	stopCh            chan struct{}
	doneCh            chan struct{}
	mu                sync.Mutex
	running           bool
	lastReport        *AlertCheckReport
}

// AlertWorkerConfig holds configuration for the alert worker
type AlertWorkerConfig struct {
	Interval time.Duration // How often to run the alert check
}

// DefaultAlertWorkerConfig returns the daily schedule
func DefaultAlertWorkerConfig() AlertWorkerConfig {
	return AlertWorkerConfig{
		Interval: 24 * time.Hour,
	}
}

// NewAlertWorker creates a new alert worker
func NewAlertWorker(alertCheckService *AlertCheckService, logger zerolog.Logger, config AlertWorkerConfig) *AlertWorker {
	if config.Interval <= 0 {
		config.Interval = DefaultAlertWorkerConfig().Interval
	}

	return &AlertWorker{
		alertCheckService: alertCheckService,
		logger:            logger.With().Str("component", "alert_worker").Logger(),
		interval:          config.Interval,
		stopCh:            make(chan struct{}),
		doneCh:            make(chan struct{}),
	}
}

// Start begins the background alert check loop
func (w *AlertWorker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info().
		Dur("interval", w.interval).
		Msg("Starting alert worker")

	go w.run(ctx)
}

// Stop gracefully stops the alert worker, waiting for an in-flight run to finish
func (w *AlertWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	w.logger.Info().Msg("Stopping alert worker")
	close(w.stopCh)
	<-w.doneCh
	w.logger.Info().Msg("Alert worker stopped")
}

func (w *AlertWorker) run(ctx context.Context) {
	defer close(w.doneCh)
	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	// Stop cancels the in-flight run between users
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-w.stopCh:
			cancel()
		case <-runCtx.Done():
		}
	}()

	// Run immediately on startup
	w.checkAll(runCtx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-runCtx.Done():
			return
		case <-ticker.C:
			w.checkAll(runCtx)
		}
	}
}

func (w *AlertWorker) checkAll(ctx context.Context) {
	report, err := w.alertCheckService.RunAlertCheck(ctx, nil)
	if err != nil {
		if ctx.Err() != nil {
			w.logger.Info().Msg("Alert check interrupted")
		} else {
			w.logger.Error().Err(err).Msg("Alert check failed")
		}
	}
	if report != nil {
		w.mu.Lock()
		w.lastReport = report
		w.mu.Unlock()
	}
}

// LastReport returns the report of the most recent run, or nil before the first run completes
func (w *AlertWorker) LastReport() *AlertCheckReport {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastReport
}

// IsRunning returns whether the worker is currently running
func (w *AlertWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
