package models

import "time"

type JobPosition struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Department   string    `json:"department"`
	Location     string    `json:"location"`
	Type         string    `json:"type"` // full-time, part-time, contract
	Description  string    `json:"description"`
	Requirements string    `json:"requirements"`
	SalaryRange  string    `json:"salary_range,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PositionListFilter for filtering the positions list
type PositionListFilter struct {
	Department string
	ActiveOnly bool
	Limit      int
	Offset     int
}
