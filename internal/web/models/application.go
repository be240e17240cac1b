package models

import "time"

// Application pipeline statuses
const (
	ApplicationPending     = "pending"
	ApplicationShortlisted = "shortlisted"
	ApplicationRejected    = "rejected"
)

// ValidApplicationStatus reports whether s is a known pipeline status.
func ValidApplicationStatus(s string) bool {
	switch s {
	case ApplicationPending, ApplicationShortlisted, ApplicationRejected:
		return true
	}
	return false
}

// JobApplication is an application for a specific position. PositionID is a
// weak reference: the position may have been deleted since.
type JobApplication struct {
	ID          string    `json:"id"`
	PositionID  string    `json:"position_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	CoverLetter string    `json:"cover_letter,omitempty"`
	ResumePath  string    `json:"resume_path,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GeneralApplication is an open application not tied to a position.
type GeneralApplication struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	Message    string    `json:"message,omitempty"`
	ResumePath string    `json:"resume_path,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ApplicationListFilter for filtering application lists
type ApplicationListFilter struct {
	PositionID string
	Status     string
	Search     string
	Limit      int
	Offset     int
}
