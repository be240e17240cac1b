package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/trinexa/trinexa-web/internal/web/models"
)

type ApplicationRepository struct {
	db *sql.DB
}

func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// CreateJob creates a job application in pending status.
func (r *ApplicationRepository) CreateJob(a *models.JobApplication) error {
	a.ID = uuid.New().String()
	a.Status = models.ApplicationPending
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt

	_, err := r.db.Exec(`
		INSERT INTO job_applications (id, position_id, name, email, phone, cover_letter, resume_path, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, nullable(a.PositionID), a.Name, a.Email, nullable(a.Phone),
		nullable(a.CoverLetter), nullable(a.ResumePath), a.Status, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job application: %w", err)
	}
	return nil
}

// CreateGeneral creates an open application in pending status.
func (r *ApplicationRepository) CreateGeneral(a *models.GeneralApplication) error {
	a.ID = uuid.New().String()
	a.Status = models.ApplicationPending
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt

	_, err := r.db.Exec(`
		INSERT INTO general_applications (id, name, email, phone, message, resume_path, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, a.Email, nullable(a.Phone), nullable(a.Message),
		nullable(a.ResumePath), a.Status, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create general application: %w", err)
	}
	return nil
}

// GetJob returns a job application by ID
func (r *ApplicationRepository) GetJob(id string) (*models.JobApplication, error) {
	a := &models.JobApplication{}
	var positionID, phone, cover, resume sql.NullString
	err := r.db.QueryRow(`
		SELECT id, position_id, name, email, phone, cover_letter, resume_path, status, created_at, updated_at
		FROM job_applications WHERE id = ?`, id,
	).Scan(&a.ID, &positionID, &a.Name, &a.Email, &phone, &cover, &resume, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.PositionID = positionID.String
	a.Phone = phone.String
	a.CoverLetter = cover.String
	a.ResumePath = resume.String
	return a, nil
}

// ListJob returns job applications matching the filter
func (r *ApplicationRepository) ListJob(filter models.ApplicationListFilter) ([]models.JobApplication, error) {
	query := `
		SELECT id, position_id, name, email, phone, cover_letter, resume_path, status, created_at, updated_at
		FROM job_applications WHERE 1=1`
	args := []any{}

	if filter.PositionID != "" {
		query += " AND position_id = ?"
		args = append(args, filter.PositionID)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		query += " AND (name LIKE ? OR email LIKE ?)"
		args = append(args, "%"+filter.Search+"%", "%"+filter.Search+"%")
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

	apps := []models.JobApplication{}
	for rows.Next() {
		var a models.JobApplication
		var positionID, phone, cover, resume sql.NullString
		if err := rows.Scan(&a.ID, &positionID, &a.Name, &a.Email, &phone, &cover, &resume,
			&a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		a.PositionID = positionID.String
		a.Phone = phone.String
		a.CoverLetter = cover.String
		a.ResumePath = resume.String
		apps = append(apps, a)
	}
	return apps, nil
}

// ListGeneral returns open applications matching the filter
func (r *ApplicationRepository) ListGeneral(filter models.ApplicationListFilter) ([]models.GeneralApplication, error) {
	query := `
		SELECT id, name, email, phone, message, resume_path, status, created_at, updated_at
		FROM general_applications WHERE 1=1`
	args := []any{}

	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		query += " AND (name LIKE ? OR email LIKE ?)"
		args = append(args, "%"+filter.Search+"%", "%"+filter.Search+"%")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := []models.GeneralApplication{}
	for rows.Next() {
		var a models.GeneralApplication
		var phone, message, resume sql.NullString
		if err := rows.Scan(&a.ID, &a.Name, &a.Email, &phone, &message, &resume,
			&a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		a.Phone = phone.String
		a.Message = message.String
		a.ResumePath = resume.String
		apps = append(apps, a)
	}
	return apps, nil
}

// SetJobStatus moves a job application through the pipeline.
func (r *ApplicationRepository) SetJobStatus(id, status string) error {
	if !models.ValidApplicationStatus(status) {
		return fmt.Errorf("invalid application status: %s", status)
	}
	res, err := r.db.Exec(
		"UPDATE job_applications SET status = ?, updated_at = ? WHERE id = ?",
		status, time.Now(), id,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("application not found: %s", id)
	}
	return nil
}

// SetGeneralStatus moves an open application through the pipeline.
func (r *ApplicationRepository) SetGeneralStatus(id, status string) error {
	if !models.ValidApplicationStatus(status) {
		return fmt.Errorf("invalid application status: %s", status)
	}
	res, err := r.db.Exec(
		"UPDATE general_applications SET status = ?, updated_at = ? WHERE id = ?",
		status, time.Now(), id,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("application not found: %s", id)
	}
	return nil
}

// CountJobByStatus returns job application counts keyed by status
func (r *ApplicationRepository) CountJobByStatus() (map[string]int, error) {
	rows, err := r.db.Query("SELECT status, COUNT(*) FROM job_applications GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, nil
}
