package models

import "time"

// Email template categories
const (
	EmailCategoryWelcome      = "welcome"
	EmailCategoryConfirmation = "confirmation"
	EmailCategoryInterview    = "interview"
	EmailCategoryRejection    = "rejection"
	EmailCategoryMarketing    = "marketing"
)

// Message template categories
const (
	MessageCategoryAnnouncement = "announcement"
	MessageCategoryNewsletter   = "newsletter"
	MessageCategoryPromotion    = "promotion"
	MessageCategorySystem       = "system"
)

// ValidEmailCategory reports whether c is a known email template category.
func ValidEmailCategory(c string) bool {
	switch c {
	case EmailCategoryWelcome, EmailCategoryConfirmation, EmailCategoryInterview,
		EmailCategoryRejection, EmailCategoryMarketing:
		return true
	}
	return false
}

// ValidMessageCategory reports whether c is a known message template category.
func ValidMessageCategory(c string) bool {
	switch c {
	case MessageCategoryAnnouncement, MessageCategoryNewsletter,
		MessageCategoryPromotion, MessageCategorySystem:
		return true
	}
	return false
}

// EmailTemplate is a reusable email body with {variable} placeholders.
// Variables is derived from Content at save time and stored alongside.
type EmailTemplate struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Subject   string    `json:"subject"`
	Content   string    `json:"content"`
	Variables string    `json:"variables"` // JSON array
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MessageTemplate is a reusable in-product/broadcast message body with
// {variable} placeholders.
type MessageTemplate struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Subject   string    `json:"subject"`
	Content   string    `json:"content"`
	Variables string    `json:"variables"` // JSON array
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TemplateListFilter for filtering template lists
type TemplateListFilter struct {
	Category   string
	Search     string
	ActiveOnly bool
	Limit      int
	Offset     int
}
