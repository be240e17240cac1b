package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/trinexa/trinexa-web/internal/web/models"
)

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create creates a product
func (r *ProductRepository) Create(p *models.Product) error {
	p.ID = uuid.New().String()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt

	_, err := r.db.Exec(`
		INSERT INTO products (id, name, tagline, description, features, pricing_info, is_active, sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, nullable(p.Tagline), p.Description, nullable(p.Features),
		nullable(p.PricingInfo), p.IsActive, p.SortOrder, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// GetByID returns a product by ID
func (r *ProductRepository) GetByID(id string) (*models.Product, error) {
	p := &models.Product{}
	var tagline, features, pricing sql.NullString
	err := r.db.QueryRow(`
		SELECT id, name, tagline, description, features, pricing_info, is_active, sort_order, created_at, updated_at
		FROM products WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &tagline, &p.Description, &features, &pricing,
		&p.IsActive, &p.SortOrder, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.Tagline = tagline.String
	p.Features = features.String
	p.PricingInfo = pricing.String
	return p, nil
}

// List returns products in display order. activeOnly limits to active rows.
func (r *ProductRepository) List(activeOnly bool) ([]models.Product, error) {
	query := `
		SELECT id, name, tagline, description, features, pricing_info, is_active, sort_order, created_at, updated_at
		FROM products`
	if activeOnly {
		query += " WHERE is_active = 1"
	}
	query += " ORDER BY sort_order, name"

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		var tagline, features, pricing sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &tagline, &p.Description, &features, &pricing,
			&p.IsActive, &p.SortOrder, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.Tagline = tagline.String
		p.Features = features.String
		p.PricingInfo = pricing.String
		products = append(products, p)
	}
	return products, nil
}

// Update updates a product
func (r *ProductRepository) Update(p *models.Product) error {
	p.UpdatedAt = time.Now()
	res, err := r.db.Exec(`
		UPDATE products
		SET name = ?, tagline = ?, description = ?, features = ?, pricing_info = ?, is_active = ?, sort_order = ?, updated_at = ?
		WHERE id = ?`,
		p.Name, nullable(p.Tagline), p.Description, nullable(p.Features), nullable(p.PricingInfo),
		p.IsActive, p.SortOrder, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("product not found: %s", p.ID)
	}
	return nil
}

// Delete removes a product
func (r *ProductRepository) Delete(id string) error {
	_, err := r.db.Exec("DELETE FROM products WHERE id = ?", id)
	return err
}
