package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/trinexa/trinexa-web/internal/web/models"
)

type PositionRepository struct {
	db *sql.DB
}

func NewPositionRepository(db *sql.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

// Create creates a new job position
func (r *PositionRepository) Create(p *models.JobPosition) error {
	p.ID = uuid.New().String()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt

	_, err := r.db.Exec(`
		INSERT INTO job_positions (id, title, department, location, type, description, requirements, salary_range, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Department, p.Location, p.Type, p.Description, p.Requirements,
		nullable(p.SalaryRange), p.IsActive, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create position: %w", err)
	}
	return nil
}

// GetByID returns a position by ID
func (r *PositionRepository) GetByID(id string) (*models.JobPosition, error) {
	p := &models.JobPosition{}
	var salary sql.NullString
	err := r.db.QueryRow(`
		SELECT id, title, department, location, type, description, requirements, salary_range, is_active, created_at, updated_at
		FROM job_positions WHERE id = ?`, id,
	).Scan(&p.ID, &p.Title, &p.Department, &p.Location, &p.Type, &p.Description,
		&p.Requirements, &salary, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.SalaryRange = salary.String
	return p, nil
}

// List returns positions matching the filter
func (r *PositionRepository) List(filter models.PositionListFilter) ([]models.JobPosition, error) {
	query := `
		SELECT id, title, department, location, type, description, requirements, salary_range, is_active, created_at, updated_at
		FROM job_positions WHERE 1=1`
	args := []any{}

	if filter.ActiveOnly {
		query += " AND is_active = 1"
	}
	if filter.Department != "" {
		query += " AND department = ?"
		args = append(args, filter.Department)
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	positions := []models.JobPosition{}
	for rows.Next() {
		var p models.JobPosition
		var salary sql.NullString
		if err := rows.Scan(&p.ID, &p.Title, &p.Department, &p.Location, &p.Type, &p.Description,
			&p.Requirements, &salary, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.SalaryRange = salary.String
		positions = append(positions, p)
	}
	return positions, nil
}

// Update updates a position
func (r *PositionRepository) Update(p *models.JobPosition) error {
	p.UpdatedAt = time.Now()
	res, err := r.db.Exec(`
		UPDATE job_positions
		SET title = ?, department = ?, location = ?, type = ?, description = ?,
			requirements = ?, salary_range = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		p.Title, p.Department, p.Location, p.Type, p.Description, p.Requirements,
		nullable(p.SalaryRange), p.IsActive, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update position: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("position not found: %s", p.ID)
	}
	return nil
}

// Delete removes a position. Applications keep a null position reference.
func (r *PositionRepository) Delete(id string) error {
	_, err := r.db.Exec("DELETE FROM job_positions WHERE id = ?", id)
	return err
}

// CountActive returns the number of open positions
func (r *PositionRepository) CountActive() (int, error) {
	var n int
	err := r.db.QueryRow("SELECT COUNT(*) FROM job_positions WHERE is_active = 1").Scan(&n)
	return n, err
}
