package models

import "time"

// Demo booking statuses
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
)

// ValidBookingStatus reports whether s is a known booking status.
func ValidBookingStatus(s string) bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

// DemoBooking is a demo request captured from the public booking form.
type DemoBooking struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Company       string    `json:"company,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	ProductID     string    `json:"product_id,omitempty"`
	PreferredDate string    `json:"preferred_date,omitempty"`
	Message       string    `json:"message,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// BookingListFilter for filtering the bookings list
type BookingListFilter struct {
	Status string
	Search string
	Limit  int
	Offset int
}
