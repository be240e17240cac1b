// Package notify is the outbound notification path: form handlers and the
// campaign worker enqueue email notifications into a durable outbox, and a
// dispatcher delivers them with retries. Enqueueing never blocks or fails
// the caller's primary transaction.
package notify

import (
	"time"

	"github.com/google/uuid"

	"github.com/trinexa/trinexa-web/internal/mailer"
)

// Notification statuses
const (
	StatusPending   = "pending"
	StatusSending   = "sending"
	StatusDelivered = "delivered"
	StatusDeferred  = "deferred"
	StatusFailed    = "failed"
)

// Notification kinds, for operator-facing stats
const (
	KindDemoConfirmation        = "demo_confirmation"
	KindApplicationConfirmation = "application_confirmation"
	KindWelcome                 = "welcome"
	KindCampaign                = "campaign"
	KindStatusUpdate            = "status_update"
)

// Notification is one queued outbound email.
type Notification struct {
	ID          string       `json:"id"`
	Kind        string       `json:"kind"`
	Email       mailer.Email `json:"email"`
	Status      string       `json:"status"`
	RetryCount  int          `json:"retry_count"`
	LastError   string       `json:"last_error,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	NextRetryAt time.Time    `json:"next_retry_at,omitempty"`
}

// NewNotification builds a pending notification for an email.
func NewNotification(kind string, email mailer.Email) *Notification {
	now := time.Now()
	return &Notification{
		ID:        uuid.New().String(),
		Kind:      kind,
		Email:     email,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
