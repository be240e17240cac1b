package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/trinexa/trinexa-web/internal/web/models"
)

type MessageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Schedule creates a pending scheduled message.
func (r *MessageRepository) Schedule(m *models.ScheduledMessage) error {
	if !models.ValidRecipientType(m.RecipientType) {
		return fmt.Errorf("invalid recipient type: %s", m.RecipientType)
	}
	m.ID = uuid.New().String()
	m.Status = models.MessagePending
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt

	_, err := r.db.Exec(`
		INSERT INTO scheduled_messages (id, subject, content, recipient_type, scheduled_for, status, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Subject, m.Content, m.RecipientType, m.ScheduledFor, m.Status,
		nullable(m.CreatedBy), m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to schedule message: %w", err)
	}
	return nil
}

// GetByID returns a scheduled message by ID
func (r *MessageRepository) GetByID(id string) (*models.ScheduledMessage, error) {
	m := &models.ScheduledMessage{}
	var sentAt sql.NullTime
	var createdBy sql.NullString
	err := r.db.QueryRow(`
		SELECT id, subject, content, recipient_type, scheduled_for, status, sent_at, sent_count, created_by, created_at, updated_at
		FROM scheduled_messages WHERE id = ?`, id,
	).Scan(&m.ID, &m.Subject, &m.Content, &m.RecipientType, &m.ScheduledFor, &m.Status,
		&sentAt, &m.SentCount, &createdBy, &m.CreatedAt, &m.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if sentAt.Valid {
		m.SentAt = &sentAt.Time
	}
	m.CreatedBy = createdBy.String
	return m, nil
}

// List returns scheduled messages matching the filter
func (r *MessageRepository) List(filter models.MessageListFilter) ([]models.ScheduledMessage, error) {
	query := `
		SELECT id, subject, content, recipient_type, scheduled_for, status, sent_at, sent_count, created_by, created_at, updated_at
		FROM scheduled_messages WHERE 1=1`
	args := []any{}

	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	query += " ORDER BY scheduled_for DESC"
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

	messages := []models.ScheduledMessage{}
	for rows.Next() {
		var m models.ScheduledMessage
		var sentAt sql.NullTime
		var createdBy sql.NullString
		if err := rows.Scan(&m.ID, &m.Subject, &m.Content, &m.RecipientType, &m.ScheduledFor,
			&m.Status, &sentAt, &m.SentCount, &createdBy, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		if sentAt.Valid {
			m.SentAt = &sentAt.Time
		}
		m.CreatedBy = createdBy.String
		messages = append(messages, m)
	}
	return messages, nil
}

// Due returns pending messages whose scheduled time has passed.
func (r *MessageRepository) Due(now time.Time, limit int) ([]models.ScheduledMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(`
		SELECT id, subject, content, recipient_type, scheduled_for, status, sent_at, sent_count, created_by, created_at, updated_at
		FROM scheduled_messages
		WHERE status = ? AND scheduled_for <= ?
		ORDER BY scheduled_for LIMIT ?`,
		models.MessagePending, now, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []models.ScheduledMessage{}
	for rows.Next() {
		var m models.ScheduledMessage
		var sentAt sql.NullTime
		var createdBy sql.NullString
		if err := rows.Scan(&m.ID, &m.Subject, &m.Content, &m.RecipientType, &m.ScheduledFor,
			&m.Status, &sentAt, &m.SentCount, &createdBy, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		if sentAt.Valid {
			m.SentAt = &sentAt.Time
		}
		m.CreatedBy = createdBy.String
		messages = append(messages, m)
	}
	return messages, nil
}

// MarkSent transitions pending → sent. Only pending rows are affected, so a
// cancelled message can never be sent.
func (r *MessageRepository) MarkSent(id string, sentCount int) error {
	res, err := r.db.Exec(`
		UPDATE scheduled_messages SET status = ?, sent_at = ?, sent_count = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		models.MessageSent, time.Now(), sentCount, time.Now(), id, models.MessagePending,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("message %s is not pending", id)
	}
	return nil
}

// Cancel transitions pending → cancelled.
func (r *MessageRepository) Cancel(id string) error {
	res, err := r.db.Exec(`
		UPDATE scheduled_messages SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		models.MessageCancelled, time.Now(), id, models.MessagePending,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("message %s is not pending", id)
	}
	return nil
}

// CountPending returns the number of pending scheduled messages
func (r *MessageRepository) CountPending() (int, error) {
	var n int
	err := r.db.QueryRow("SELECT COUNT(*) FROM scheduled_messages WHERE status = ?", models.MessagePending).Scan(&n)
	return n, err
}

// CountRecipients returns the approximate audience size for a recipient
// type. Used as a preflight before send/schedule: a zero count must refuse
// the action.
func (r *MessageRepository) CountRecipients(recipientType string) (int, error) {
	recipients, err := r.Recipients(recipientType)
	if err != nil {
		return 0, err
	}
	return len(recipients), nil
}

// Recipients resolves the audience for a recipient type to distinct
// addresses. Resolution happens at call time, so the audience reflects the
// data as of the send, not as of the scheduling.
func (r *MessageRepository) Recipients(recipientType string) ([]models.Recipient, error) {
	var query string
	switch recipientType {
	case models.RecipientsDemoRequesters:
		query = `SELECT email, name FROM demo_bookings`
	case models.RecipientsJobApplicants:
		query = `
			SELECT email, name FROM job_applications
			UNION
			SELECT email, name FROM general_applications`
	case models.RecipientsAdmins:
		query = `SELECT email, COALESCE(name, '') FROM users WHERE role = 'admin'`
	case models.RecipientsAll:
		query = `
			SELECT email, name FROM demo_bookings
			UNION
			SELECT email, name FROM job_applications
			UNION
			SELECT email, name FROM general_applications
			UNION
			SELECT email, COALESCE(name, '') FROM users`
	default:
		return nil, fmt.Errorf("invalid recipient type: %s", recipientType)
	}

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seen := map[string]bool{}
	recipients := []models.Recipient{}
	for rows.Next() {
		var rec models.Recipient
		if err := rows.Scan(&rec.Email, &rec.Name); err != nil {
			return nil, err
		}
		if rec.Email == "" || seen[rec.Email] {
			continue
		}
		seen[rec.Email] = true
		recipients = append(recipients, rec)
	}
	return recipients, nil
}
