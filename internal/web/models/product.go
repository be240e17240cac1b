package models

import "time"

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Tagline     string    `json:"tagline,omitempty"`
	Description string    `json:"description"`
	Features    string    `json:"features,omitempty"` // JSON array of bullet points
	PricingInfo string    `json:"pricing_info,omitempty"`
	IsActive    bool      `json:"is_active"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
