package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/trinexa/trinexa-web/internal/web/models"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user. Role defaults to user when empty.
func (r *UserRepository) Create(u *models.User) error {
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	u.ID = uuid.New().String()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt

	_, err := r.db.Exec(`
		INSERT INTO users (id, email, password_hash, name, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.Name, u.Role, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByEmail returns a user by email
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	return r.scanOne(r.db.QueryRow(`
		SELECT id, email, password_hash, name, role, created_at, updated_at
		FROM users WHERE email = ?`, email))
}

// GetByID returns a user by ID
func (r *UserRepository) GetByID(id string) (*models.User, error) {
	return r.scanOne(r.db.QueryRow(`
		SELECT id, email, password_hash, name, role, created_at, updated_at
		FROM users WHERE id = ?`, id))
}

func (r *UserRepository) scanOne(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var name sql.NullString
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &name, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.Name = name.String
	return u, nil
}

// List returns all users ordered by creation time
func (r *UserRepository) List() ([]models.User, error) {
	rows, err := r.db.Query(`
		SELECT id, email, password_hash, name, role, created_at, updated_at
		FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		var name sql.NullString
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &name, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		u.Name = name.String
		users = append(users, u)
	}
	return users, nil
}

// UpdatePassword replaces the password hash for a user
func (r *UserRepository) UpdatePassword(id, passwordHash string) error {
	_, err := r.db.Exec(
		"UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?",
		passwordHash, time.Now(), id,
	)
	return err
}

// Delete removes a user by email. Returns sql.ErrNoRows semantics via count.
func (r *UserRepository) Delete(email string) (bool, error) {
	res, err := r.db.Exec("DELETE FROM users WHERE email = ?", email)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create creates a session with the given TTL and returns it
func (r *SessionRepository) Create(userID string, ttl time.Duration) (*models.Session, error) {
	s := &models.Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(ttl),
		CreatedAt: time.Now(),
	}
	_, err := r.db.Exec(`
		INSERT INTO sessions (id, user_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)`,
		s.ID, s.UserID, s.ExpiresAt, s.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return s, nil
}

// Get returns a session by ID, or nil if missing or expired.
func (r *SessionRepository) Get(id string) (*models.Session, error) {
	s := &models.Session{}
	err := r.db.QueryRow(`
		SELECT id, user_id, expires_at, created_at FROM sessions WHERE id = ?`, id,
	).Scan(&s.ID, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if time.Now().After(s.ExpiresAt) {
		return nil, nil
	}
	return s, nil
}

// Delete removes a session
func (r *SessionRepository) Delete(id string) error {
	_, err := r.db.Exec("DELETE FROM sessions WHERE id = ?", id)
	return err
}

// DeleteExpired removes all expired sessions
func (r *SessionRepository) DeleteExpired() (int64, error) {
	res, err := r.db.Exec("DELETE FROM sessions WHERE expires_at < ?", time.Now())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
