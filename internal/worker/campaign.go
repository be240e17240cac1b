// Package worker runs the scheduled-message campaign loop: due broadcasts
// are expanded into per-recipient notifications on the outbox and marked
// sent.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/trinexa/trinexa-web/internal/mailer"
	"github.com/trinexa/trinexa-web/internal/notify"
	"github.com/trinexa/trinexa-web/internal/template"
	"github.com/trinexa/trinexa-web/internal/web/models"
	"github.com/trinexa/trinexa-web/internal/web/repository"
)

// Queue is the outbox surface the worker needs.
type Queue interface {
	Enqueue(n *notify.Notification) error
}

// Config tunes the campaign loop.
type Config struct {
	PollInterval time.Duration
	BatchSize    int
}

func (c *Config) defaults() {
	if c.PollInterval <= 0 {
		c.PollInterval = 30 * time.Second
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 10
	}
}

// Campaign polls for due scheduled messages and fans them out.
type Campaign struct {
	cfg      Config
	messages *repository.MessageRepository
	queue    Queue
	logger   *slog.Logger

	// Processed is called once per sent message; may be nil.
	Processed func()

	now func() time.Time
}

// NewCampaign wires the campaign worker.
func NewCampaign(cfg Config, messages *repository.MessageRepository, queue Queue, logger *slog.Logger) *Campaign {
	cfg.defaults()
	return &Campaign{
		cfg:      cfg,
		messages: messages,
		queue:    queue,
		logger:   logger,
		now:      time.Now,
	}
}

// Run processes due messages until the context is cancelled.
func (c *Campaign) Run(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Tick()
		}
	}
}

// Tick runs one poll cycle.
func (c *Campaign) Tick() {
	due, err := c.messages.Due(c.now(), c.cfg.BatchSize)
	if err != nil {
		c.logger.Error("due message query failed", "error", err)
		return
	}

	for i := range due {
		c.process(&due[i])
	}
}

// process fans one message out to its audience. The message is marked sent
// with the number of recipients actually enqueued; individual enqueue
// failures reduce the count but do not abort the send.
func (c *Campaign) process(msg *models.ScheduledMessage) {
	recipients, err := c.messages.Recipients(msg.RecipientType)
	if err != nil {
		c.logger.Error("recipient resolution failed",
			"message", msg.ID, "audience", msg.RecipientType, "error", err)
		return
	}

	sent := 0
	for _, rcpt := range recipients {
		vars := map[string]string{
			"name":  rcpt.Name,
			"email": rcpt.Email,
		}
		email := mailer.Email{
			To:       rcpt.Email,
			ToName:   rcpt.Name,
			Subject:  template.Substitute(msg.Subject, vars),
			TextBody: template.Substitute(msg.Content, vars),
		}
		if err := c.queue.Enqueue(notify.NewNotification(notify.KindCampaign, email)); err != nil {
			c.logger.Error("campaign enqueue failed",
				"message", msg.ID, "to", rcpt.Email, "error", err)
			continue
		}
		sent++
	}

	if err := c.messages.MarkSent(msg.ID, sent); err != nil {
		c.logger.Error("mark sent failed", "message", msg.ID, "error", err)
		return
	}

	c.logger.Info("scheduled message sent", "message", msg.ID, "recipients", sent)
	if c.Processed != nil {
		c.Processed()
	}
}
