package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/trinexa/trinexa-web/internal/mailer"
)

// Hooks are optional counters fired on terminal delivery outcomes.
type Hooks struct {
	Delivered func()
	Failed    func()
}

// DispatcherConfig tunes the delivery workers.
type DispatcherConfig struct {
	Workers       int
	MaxRetries    int
	RetryInterval time.Duration
	PollInterval  time.Duration
}

// Dispatcher drains the outbox through the mailer. Temporary failures are
// deferred with exponential backoff; permanent failures and exhausted
// retries go to the dead letter index.
type Dispatcher struct {
	outbox *Outbox
	mailer mailer.Mailer
	cfg    DispatcherConfig
	hooks  Hooks
	logger *slog.Logger

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewDispatcher wires a dispatcher over an outbox.
func NewDispatcher(outbox *Outbox, m mailer.Mailer, cfg DispatcherConfig, hooks Hooks, logger *slog.Logger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 5 * time.Minute
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 10 * time.Second
	}

	return &Dispatcher{
		outbox: outbox,
		mailer: m,
		cfg:    cfg,
		hooks:  hooks,
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

// Start launches the delivery workers.
func (d *Dispatcher) Start(ctx context.Context) {
	d.logger.Info("starting notification dispatcher", "workers", d.cfg.Workers)
	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx, i)
	}
}

// Stop waits for in-flight deliveries to finish.
func (d *Dispatcher) Stop() {
	close(d.stopCh)
	d.wg.Wait()
	d.logger.Info("notification dispatcher stopped")
}

func (d *Dispatcher) worker(ctx context.Context, id int) {
	defer d.wg.Done()

	logger := d.logger.With("worker_id", id)
	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-d.stopCh:
			return
		case <-ticker.C:
			d.deliverOne(ctx, logger)
		}
	}
}

func (d *Dispatcher) deliverOne(ctx context.Context, logger *slog.Logger) {
	n, err := d.outbox.Dequeue()
	if err != nil {
		logger.Error("outbox dequeue failed", "error", err)
		return
	}
	if n == nil {
		return
	}

	logger = logger.With("notification_id", n.ID, "kind", n.Kind)

	sendCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	err = d.mailer.Send(sendCtx, n.Email)
	cancel()

	if err == nil {
		if err := d.outbox.Complete(n); err != nil {
			logger.Error("failed to record delivery", "error", err)
		}
		if d.hooks.Delivered != nil {
			d.hooks.Delivered()
		}
		logger.Info("notification delivered", "to", n.Email.To)
		return
	}

	n.RetryCount++
	n.LastError = err.Error()

	if mailer.IsTemporary(err) && n.RetryCount < d.cfg.MaxRetries {
		backoff := d.backoff(n.RetryCount)
		if err := d.outbox.Defer(n, time.Now().Add(backoff)); err != nil {
			logger.Error("failed to defer notification", "error", err)
		}
		logger.Warn("delivery deferred",
			"retry_count", n.RetryCount, "backoff", backoff, "error", n.LastError)
		return
	}

	if err := d.outbox.Bury(n); err != nil {
		logger.Error("failed to dead-letter notification", "error", err)
	}
	if d.hooks.Failed != nil {
		d.hooks.Failed()
	}
	logger.Error("notification failed permanently",
		"retry_count", n.RetryCount, "error", n.LastError)
}

// backoff doubles the retry interval per attempt, capped at one hour.
func (d *Dispatcher) backoff(retryCount int) time.Duration {
	multiplier := 1 << (retryCount - 1)
	if multiplier > 12 {
		multiplier = 12
	}
	backoff := time.Duration(multiplier) * d.cfg.RetryInterval
	if backoff > time.Hour {
		return time.Hour
	}
	return backoff
}
