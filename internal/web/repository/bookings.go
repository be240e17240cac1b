package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/trinexa/trinexa-web/internal/web/models"
)

type BookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create creates a demo booking in pending status.
func (r *BookingRepository) Create(b *models.DemoBooking) error {
	b.ID = uuid.New().String()
	b.Status = models.BookingPending
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt

	_, err := r.db.Exec(`
		INSERT INTO demo_bookings (id, name, email, company, phone, product_id, preferred_date, message, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Name, b.Email, nullable(b.Company), nullable(b.Phone), nullable(b.ProductID),
		nullable(b.PreferredDate), nullable(b.Message), b.Status, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create demo booking: %w", err)
	}
	return nil
}

// GetByID returns a booking by ID
func (r *BookingRepository) GetByID(id string) (*models.DemoBooking, error) {
	b := &models.DemoBooking{}
	var company, phone, productID, preferred, message sql.NullString
	err := r.db.QueryRow(`
		SELECT id, name, email, company, phone, product_id, preferred_date, message, status, created_at, updated_at
		FROM demo_bookings WHERE id = ?`, id,
	).Scan(&b.ID, &b.Name, &b.Email, &company, &phone, &productID, &preferred, &message,
		&b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	b.Company = company.String
	b.Phone = phone.String
	b.ProductID = productID.String
	b.PreferredDate = preferred.String
	b.Message = message.String
	return b, nil
}

// List returns bookings matching the filter
func (r *BookingRepository) List(filter models.BookingListFilter) ([]models.DemoBooking, error) {
	query := `
		SELECT id, name, email, company, phone, product_id, preferred_date, message, status, created_at, updated_at
		FROM demo_bookings WHERE 1=1`
	args := []any{}

	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		query += " AND (name LIKE ? OR email LIKE ? OR company LIKE ?)"
		args = append(args, "%"+filter.Search+"%", "%"+filter.Search+"%", "%"+filter.Search+"%")
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

	bookings := []models.DemoBooking{}
	for rows.Next() {
		var b models.DemoBooking
		var company, phone, productID, preferred, message sql.NullString
		if err := rows.Scan(&b.ID, &b.Name, &b.Email, &company, &phone, &productID, &preferred,
			&message, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		b.Company = company.String
		b.Phone = phone.String
		b.ProductID = productID.String
		b.PreferredDate = preferred.String
		b.Message = message.String
		bookings = append(bookings, b)
	}
	return bookings, nil
}

// SetStatus updates a booking's status.
func (r *BookingRepository) SetStatus(id, status string) error {
	if !models.ValidBookingStatus(status) {
		return fmt.Errorf("invalid booking status: %s", status)
	}
	res, err := r.db.Exec(
		"UPDATE demo_bookings SET status = ?, updated_at = ? WHERE id = ?",
		status, time.Now(), id,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("booking not found: %s", id)
	}
	return nil
}

// CountByStatus returns booking counts keyed by status
func (r *BookingRepository) CountByStatus() (map[string]int, error) {
	rows, err := r.db.Query("SELECT status, COUNT(*) FROM demo_bookings GROUP BY status")
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
