package repository

import (
	"testing"

	"github.com/google/uuid"

	"github.com/trinexa/trinexa-web/internal/web/db"
	"github.com/trinexa/trinexa-web/internal/web/models"
)

func seedSection(t *testing.T, repo *PageSectionRepository, pageID, sectionID, sectionType, defaultContent string) {
	t.Helper()
	_, err := repo.db.Exec(`
		INSERT INTO page_sections (id, page_id, section_id, section_name, section_type, default_content, sort_order, is_active)
		VALUES (?, ?, ?, ?, ?, ?, 0, 1)`,
		uuid.New().String(), pageID, sectionID, sectionID, sectionType, defaultContent,
	)
	if err != nil {
		t.Fatalf("failed to seed section: %v", err)
	}
}

func TestPageContentRepository_UpsertAndGet(t *testing.T) {
	sqlDB := setupTestDB(t)
	repo := NewPageContentRepository(sqlDB)

	c := &models.PageContent{
		PageID:    "about",
		SectionID: "hero",
		Content:   `{"title":"About Us"}`,
		UpdatedBy: "admin@trinexa.example",
	}
	if err := repo.Upsert(c); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if c.ID == "" {
		t.Error("Upsert() did not set ID")
	}

	got, err := repo.Get("about", "hero")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got == nil {
		t.Fatal("Get() returned nil")
	}
	if got.Content != `{"title":"About Us"}` {
		t.Errorf("Get() Content = %q", got.Content)
	}

	// Second upsert replaces content for the same (page, section) key.
	c2 := &models.PageContent{
		PageID:    "about",
		SectionID: "hero",
		Content:   `{"title":"Rewritten"}`,
	}
	if err := repo.Upsert(c2); err != nil {
		t.Fatalf("Upsert() second error = %v", err)
	}

	got, err = repo.Get("about", "hero")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Content != `{"title":"Rewritten"}` {
		t.Errorf("Get() after second upsert Content = %q", got.Content)
	}
	if got.ID != c.ID {
		t.Errorf("upsert must keep the original row id: got %s, want %s", got.ID, c.ID)
	}

	rows, err := repo.ByPage("about")
	if err != nil {
		t.Fatalf("ByPage() error = %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("ByPage() returned %d rows, want 1", len(rows))
	}
}

func TestPageContentRepository_GetMissing(t *testing.T) {
	sqlDB := setupTestDB(t)
	repo := NewPageContentRepository(sqlDB)

	got, err := repo.Get("about", "hero")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != nil {
		t.Error("Get() should return nil for a missing row")
	}
}

func TestPageSectionRepository_ListActive(t *testing.T) {
	sqlDB := setupTestDB(t)
	sections := NewPageSectionRepository(sqlDB)

	seedSection(t, sections, "home", "hero", "hero", `{"title":"Hi"}`)
	seedSection(t, sections, "home", "stats", "stats", `{"items":[]}`)
	if _, err := sqlDB.Exec("UPDATE page_sections SET is_active = 0 WHERE section_id = 'stats'"); err != nil {
		t.Fatalf("failed to deactivate section: %v", err)
	}

	active, err := sections.ListActive("home")
	if err != nil {
		t.Fatalf("ListActive() error = %v", err)
	}
	if len(active) != 1 || active[0].SectionID != "hero" {
		t.Errorf("ListActive() = %+v, want only hero", active)
	}

	all, err := sections.ListAll("home")
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("ListAll() returned %d sections, want 2", len(all))
	}
}

func TestDBSeed_Idempotent(t *testing.T) {
	sqlDB := setupTestDB(t)

	wrapped := &db.DB{DB: sqlDB}
	n1, err := wrapped.Seed()
	if err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	if n1 == 0 {
		t.Fatal("Seed() inserted nothing")
	}

	n2, err := wrapped.Seed()
	if err != nil {
		t.Fatalf("Seed() second error = %v", err)
	}
	if n2 != 0 {
		t.Errorf("Seed() second run inserted %d rows, want 0", n2)
	}
}
