package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/trinexa/trinexa-web/internal/web/models"
)

type PageSectionRepository struct {
	db *sql.DB
}

func NewPageSectionRepository(db *sql.DB) *PageSectionRepository {
	return &PageSectionRepository{db: db}
}

// ListActive returns the active sections of a page in display order.
func (r *PageSectionRepository) ListActive(pageID string) ([]models.PageSection, error) {
	return r.list(`
		SELECT id, page_id, section_id, section_name, section_type, default_content, sort_order, is_active, created_at
		FROM page_sections WHERE page_id = ? AND is_active = 1 ORDER BY sort_order`, pageID)
}

// ListAll returns every section of a page, including inactive ones.
func (r *PageSectionRepository) ListAll(pageID string) ([]models.PageSection, error) {
	return r.list(`
		SELECT id, page_id, section_id, section_name, section_type, default_content, sort_order, is_active, created_at
		FROM page_sections WHERE page_id = ? ORDER BY sort_order`, pageID)
}

func (r *PageSectionRepository) list(query string, args ...any) ([]models.PageSection, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sections := []models.PageSection{}
	for rows.Next() {
		var s models.PageSection
		if err := rows.Scan(&s.ID, &s.PageID, &s.SectionID, &s.SectionName, &s.SectionType,
			&s.DefaultContent, &s.SortOrder, &s.IsActive, &s.CreatedAt); err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, nil
}

// Get returns a single section by its page and section identifiers.
func (r *PageSectionRepository) Get(pageID, sectionID string) (*models.PageSection, error) {
	s := &models.PageSection{}
	err := r.db.QueryRow(`
		SELECT id, page_id, section_id, section_name, section_type, default_content, sort_order, is_active, created_at
		FROM page_sections WHERE page_id = ? AND section_id = ?`, pageID, sectionID,
	).Scan(&s.ID, &s.PageID, &s.SectionID, &s.SectionName, &s.SectionType,
		&s.DefaultContent, &s.SortOrder, &s.IsActive, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

type PageContentRepository struct {
	db *sql.DB
}

func NewPageContentRepository(db *sql.DB) *PageContentRepository {
	return &PageContentRepository{db: db}
}

// ByPage returns all persisted content rows for a page.
func (r *PageContentRepository) ByPage(pageID string) ([]models.PageContent, error) {
	rows, err := r.db.Query(`
		SELECT id, page_id, section_id, content, metadata, updated_by, created_at, updated_at
		FROM page_content WHERE page_id = ?`, pageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contents := []models.PageContent{}
	for rows.Next() {
		var c models.PageContent
		var metadata, updatedBy sql.NullString
		if err := rows.Scan(&c.ID, &c.PageID, &c.SectionID, &c.Content, &metadata, &updatedBy,
			&c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		c.Metadata = metadata.String
		c.UpdatedBy = updatedBy.String
		contents = append(contents, c)
	}
	return contents, nil
}

// Get returns the persisted content row for (page, section), or nil.
func (r *PageContentRepository) Get(pageID, sectionID string) (*models.PageContent, error) {
	c := &models.PageContent{}
	var metadata, updatedBy sql.NullString
	err := r.db.QueryRow(`
		SELECT id, page_id, section_id, content, metadata, updated_by, created_at, updated_at
		FROM page_content WHERE page_id = ? AND section_id = ?`, pageID, sectionID,
	).Scan(&c.ID, &c.PageID, &c.SectionID, &c.Content, &metadata, &updatedBy, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.Metadata = metadata.String
	c.UpdatedBy = updatedBy.String
	return c, nil
}

// Upsert creates the content row for (page, section) lazily on first edit,
// or replaces its content on subsequent edits.
func (r *PageContentRepository) Upsert(c *models.PageContent) error {
	now := time.Now()
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	c.UpdatedAt = now

	_, err := r.db.Exec(`
		INSERT INTO page_content (id, page_id, section_id, content, metadata, updated_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(page_id, section_id) DO UPDATE SET
			content = excluded.content,
			metadata = excluded.metadata,
			updated_by = excluded.updated_by,
			updated_at = excluded.updated_at`,
		c.ID, c.PageID, c.SectionID, c.Content, nullable(c.Metadata), nullable(c.UpdatedBy), now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert page content: %w", err)
	}
	return nil
}

// Delete removes the persisted row, reverting the section to its default.
func (r *PageContentRepository) Delete(pageID, sectionID string) error {
	_, err := r.db.Exec("DELETE FROM page_content WHERE page_id = ? AND section_id = ?", pageID, sectionID)
	return err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
