package models

import "time"

// Recipient types for broadcast messages. A coarse audience category used to
// fan out a message without storing individual recipient lists upfront.
const (
	RecipientsDemoRequesters = "demo_requesters"
	RecipientsJobApplicants  = "job_applicants"
	RecipientsAdmins         = "admins"
	RecipientsAll            = "all"
)

// ValidRecipientType reports whether t is a known recipient type.
func ValidRecipientType(t string) bool {
	switch t {
	case RecipientsDemoRequesters, RecipientsJobApplicants, RecipientsAdmins, RecipientsAll:
		return true
	}
	return false
}

// Scheduled message statuses
const (
	MessagePending   = "pending"
	MessageSent      = "sent"
	MessageCancelled = "cancelled"
)

// ScheduledMessage is a broadcast queued for a future send. pending → sent
// is performed by the background worker; pending → cancelled is an admin
// action. Sent and cancelled are terminal.
type ScheduledMessage struct {
	ID            string     `json:"id"`
	Subject       string     `json:"subject"`
	Content       string     `json:"content"`
	RecipientType string     `json:"recipient_type"`
	ScheduledFor  time.Time  `json:"scheduled_for"`
	Status        string     `json:"status"`
	SentAt        *time.Time `json:"sent_at,omitempty"`
	SentCount     int        `json:"sent_count"`
	CreatedBy     string     `json:"created_by,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Recipient is one resolved member of a broadcast audience.
type Recipient struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// MessageListFilter for filtering scheduled messages
type MessageListFilter struct {
	Status string
	Limit  int
	Offset int
}
