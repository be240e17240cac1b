package repository

import (
	"database/sql"
	"time"

	"github.com/trinexa/trinexa-web/internal/web/models"
)

type AuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Record appends an audit entry. Audit failures are for the caller to
// swallow; the admin action itself must not fail because of them.
func (r *AuditRepository) Record(e *models.AuditEntry) error {
	e.CreatedAt = time.Now()
	_, err := r.db.Exec(`
		INSERT INTO audit_log (user_id, user_email, action, entity_type, entity_id, details, ip_address, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		nullable(e.UserID), nullable(e.UserEmail), e.Action, nullable(e.EntityType),
		nullable(e.EntityID), nullable(e.Details), nullable(e.IPAddress), e.CreatedAt,
	)
	return err
}

// List returns the most recent audit entries
func (r *AuditRepository) List(limit int) ([]models.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(`
		SELECT id, user_id, user_email, action, entity_type, entity_id, details, ip_address, created_at
		FROM audit_log ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.AuditEntry{}
	for rows.Next() {
		var e models.AuditEntry
		var userID, userEmail, entityType, entityID, details, ip sql.NullString
		if err := rows.Scan(&e.ID, &userID, &userEmail, &e.Action, &entityType, &entityID,
			&details, &ip, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.UserID = userID.String
		e.UserEmail = userEmail.String
		e.EntityType = entityType.String
		e.EntityID = entityID.String
		e.Details = details.String
		e.IPAddress = ip.String
		entries = append(entries, e)
	}
	return entries, nil
}

// DeleteOlderThan removes audit entries created before the cutoff.
func (r *AuditRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	res, err := r.db.Exec("DELETE FROM audit_log WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type SettingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the value for key, or "" when unset.
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// Set stores the value for key.
func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.db.Exec(`
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now(),
	)
	return err
}

// All returns every setting.
func (r *SettingsRepository) All() (map[string]string, error) {
	rows, err := r.db.Query("SELECT key, value FROM settings")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		settings[k] = v
	}
	return settings, nil
}
