package metrics

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

// OutboxStats is the subset of outbox state the sampler publishes.
type OutboxStats interface {
	PendingCount() (int, error)
}

// Sampler periodically refreshes the gauges that describe process and
// outbox state rather than discrete events.
type Sampler struct {
	metrics  *Metrics
	outbox   OutboxStats
	interval time.Duration
	started  time.Time
	logger   *slog.Logger
}

// NewSampler wires a sampler. The outbox may be nil when notifications
// are disabled.
func NewSampler(m *Metrics, outbox OutboxStats, interval time.Duration, logger *slog.Logger) *Sampler {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Sampler{
		metrics:  m,
		outbox:   outbox,
		interval: interval,
		started:  time.Now(),
		logger:   logger,
	}
}

// Run samples until the context is cancelled.
func (s *Sampler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sample()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sample()
		}
	}
}

func (s *Sampler) sample() {
	s.metrics.UptimeSeconds.Set(time.Since(s.started).Seconds())
	s.metrics.Goroutines.Set(float64(runtime.NumGoroutine()))

	if s.outbox != nil {
		pending, err := s.outbox.PendingCount()
		if err != nil {
			s.logger.Warn("outbox stats unavailable", "error", err)
			return
		}
		s.metrics.OutboxPending.Set(float64(pending))
	}
}
