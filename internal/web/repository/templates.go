package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	tmpl "github.com/trinexa/trinexa-web/internal/template"
	"github.com/trinexa/trinexa-web/internal/web/models"
)

// deriveVariables recomputes the persisted variables column from the
// subject and content bodies. Called on every save so the column cannot
// drift from the content it was extracted from.
func deriveVariables(subject, content string) string {
	vars := tmpl.ExtractVariables(subject, content)
	data, err := json.Marshal(vars)
	if err != nil {
		return "[]"
	}
	return string(data)
}

type EmailTemplateRepository struct {
	db *sql.DB
}

func NewEmailTemplateRepository(db *sql.DB) *EmailTemplateRepository {
	return &EmailTemplateRepository{db: db}
}

// Create creates an email template, deriving its variables from content.
func (r *EmailTemplateRepository) Create(t *models.EmailTemplate) error {
	t.ID = uuid.New().String()
	t.Variables = deriveVariables(t.Subject, t.Content)
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt

	_, err := r.db.Exec(`
		INSERT INTO email_templates (id, name, category, subject, content, variables, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Category, t.Subject, t.Content, t.Variables, t.IsActive, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create email template: %w", err)
	}
	return nil
}

// GetByID returns an email template by ID
func (r *EmailTemplateRepository) GetByID(id string) (*models.EmailTemplate, error) {
	t := &models.EmailTemplate{}
	err := r.db.QueryRow(`
		SELECT id, name, category, subject, content, variables, is_active, created_at, updated_at
		FROM email_templates WHERE id = ?`, id,
	).Scan(&t.ID, &t.Name, &t.Category, &t.Subject, &t.Content, &t.Variables, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// GetByName returns an email template by its unique name
func (r *EmailTemplateRepository) GetByName(name string) (*models.EmailTemplate, error) {
	t := &models.EmailTemplate{}
	err := r.db.QueryRow(`
		SELECT id, name, category, subject, content, variables, is_active, created_at, updated_at
		FROM email_templates WHERE name = ?`, name,
	).Scan(&t.ID, &t.Name, &t.Category, &t.Subject, &t.Content, &t.Variables, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// List returns email templates matching the filter
func (r *EmailTemplateRepository) List(filter models.TemplateListFilter) ([]models.EmailTemplate, error) {
	query := `
		SELECT id, name, category, subject, content, variables, is_active, created_at, updated_at
		FROM email_templates WHERE 1=1`
	args := []any{}

	if filter.Category != "" {
		query += " AND category = ?"
		args = append(args, filter.Category)
	}
	if filter.ActiveOnly {
		query += " AND is_active = 1"
	}
	if filter.Search != "" {
		query += " AND (name LIKE ? OR subject LIKE ?)"
		args = append(args, "%"+filter.Search+"%", "%"+filter.Search+"%")
	}
	query += " ORDER BY updated_at DESC"
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

	templates := []models.EmailTemplate{}
	for rows.Next() {
		var t models.EmailTemplate
		if err := rows.Scan(&t.ID, &t.Name, &t.Category, &t.Subject, &t.Content, &t.Variables,
			&t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, nil
}

// Update updates an email template, re-deriving its variables.
func (r *EmailTemplateRepository) Update(t *models.EmailTemplate) error {
	t.Variables = deriveVariables(t.Subject, t.Content)
	t.UpdatedAt = time.Now()

	res, err := r.db.Exec(`
		UPDATE email_templates
		SET name = ?, category = ?, subject = ?, content = ?, variables = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		t.Name, t.Category, t.Subject, t.Content, t.Variables, t.IsActive, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update email template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("email template not found: %s", t.ID)
	}
	return nil
}

// Delete removes an email template
func (r *EmailTemplateRepository) Delete(id string) error {
	_, err := r.db.Exec("DELETE FROM email_templates WHERE id = ?", id)
	return err
}

type MessageTemplateRepository struct {
	db *sql.DB
}

func NewMessageTemplateRepository(db *sql.DB) *MessageTemplateRepository {
	return &MessageTemplateRepository{db: db}
}

// Create creates a message template, deriving its variables from content.
func (r *MessageTemplateRepository) Create(t *models.MessageTemplate) error {
	t.ID = uuid.New().String()
	t.Variables = deriveVariables(t.Subject, t.Content)
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt

	_, err := r.db.Exec(`
		INSERT INTO message_templates (id, name, category, subject, content, variables, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Category, t.Subject, t.Content, t.Variables, t.IsActive, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create message template: %w", err)
	}
	return nil
}

// GetByID returns a message template by ID
func (r *MessageTemplateRepository) GetByID(id string) (*models.MessageTemplate, error) {
	t := &models.MessageTemplate{}
	err := r.db.QueryRow(`
		SELECT id, name, category, subject, content, variables, is_active, created_at, updated_at
		FROM message_templates WHERE id = ?`, id,
	).Scan(&t.ID, &t.Name, &t.Category, &t.Subject, &t.Content, &t.Variables, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// List returns message templates matching the filter
func (r *MessageTemplateRepository) List(filter models.TemplateListFilter) ([]models.MessageTemplate, error) {
	query := `
		SELECT id, name, category, subject, content, variables, is_active, created_at, updated_at
		FROM message_templates WHERE 1=1`
	args := []any{}

	if filter.Category != "" {
		query += " AND category = ?"
		args = append(args, filter.Category)
	}
	if filter.ActiveOnly {
		query += " AND is_active = 1"
	}
	if filter.Search != "" {
		query += " AND (name LIKE ? OR subject LIKE ?)"
		args = append(args, "%"+filter.Search+"%", "%"+filter.Search+"%")
	}
	query += " ORDER BY updated_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := []models.MessageTemplate{}
	for rows.Next() {
		var t models.MessageTemplate
		if err := rows.Scan(&t.ID, &t.Name, &t.Category, &t.Subject, &t.Content, &t.Variables,
			&t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, nil
}

// Update updates a message template, re-deriving its variables.
func (r *MessageTemplateRepository) Update(t *models.MessageTemplate) error {
	t.Variables = deriveVariables(t.Subject, t.Content)
	t.UpdatedAt = time.Now()

	res, err := r.db.Exec(`
		UPDATE message_templates
		SET name = ?, category = ?, subject = ?, content = ?, variables = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		t.Name, t.Category, t.Subject, t.Content, t.Variables, t.IsActive, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update message template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("message template not found: %s", t.ID)
	}
	return nil
}

// Delete removes a message template
func (r *MessageTemplateRepository) Delete(id string) error {
	_, err := r.db.Exec("DELETE FROM message_templates WHERE id = ?", id)
	return err
}
