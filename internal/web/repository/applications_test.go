package repository

import (
	"testing"

	"github.com/trinexa/trinexa-web/internal/web/models"
)

func TestApplicationRepository_PipelineTransitions(t *testing.T) {
	sqlDB := setupTestDB(t)
	repo := NewApplicationRepository(sqlDB)

	a := &models.JobApplication{Name: "Ada", Email: "ada@example.com"}
	if err := repo.CreateJob(a); err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}
	if a.Status != models.ApplicationPending {
		t.Errorf("new application status = %s, want pending", a.Status)
	}

	if err := repo.SetJobStatus(a.ID, models.ApplicationShortlisted); err != nil {
		t.Fatalf("SetJobStatus() error = %v", err)
	}
	got, err := repo.GetJob(a.ID)
	if err != nil {
		t.Fatalf("GetJob() error = %v", err)
	}
	if got.Status != models.ApplicationShortlisted {
		t.Errorf("status = %s, want shortlisted", got.Status)
	}

	if err := repo.SetJobStatus(a.ID, "hired"); err == nil {
		t.Error("SetJobStatus() should reject unknown status")
	}
	if err := repo.SetJobStatus("missing-id", models.ApplicationRejected); err == nil {
		t.Error("SetJobStatus() should fail for a missing application")
	}
}

func TestApplicationRepository_WeakPositionReference(t *testing.T) {
	sqlDB := setupTestDB(t)
	apps := NewApplicationRepository(sqlDB)
	positions := NewPositionRepository(sqlDB)

	p := &models.JobPosition{Title: "Go Engineer", Department: "Engineering", IsActive: true}
	if err := positions.Create(p); err != nil {
		t.Fatalf("positions.Create() error = %v", err)
	}

	a := &models.JobApplication{PositionID: p.ID, Name: "Ada", Email: "ada@example.com"}
	if err := apps.CreateJob(a); err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}

	// Deleting the position keeps the application, dropping the reference.
	if err := positions.Delete(p.ID); err != nil {
		t.Fatalf("positions.Delete() error = %v", err)
	}
	got, err := apps.GetJob(a.ID)
	if err != nil {
		t.Fatalf("GetJob() error = %v", err)
	}
	if got == nil {
		t.Fatal("application vanished with its position")
	}
	if got.PositionID != "" {
		t.Errorf("PositionID = %q, want cleared", got.PositionID)
	}
}

func TestApplicationRepository_ListAndCounts(t *testing.T) {
	sqlDB := setupTestDB(t)
	repo := NewApplicationRepository(sqlDB)

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		if err := repo.CreateJob(&models.JobApplication{Name: "X", Email: email}); err != nil {
			t.Fatalf("CreateJob() error = %v", err)
		}
	}
	apps, err := repo.ListJob(models.ApplicationListFilter{})
	if err != nil {
		t.Fatalf("ListJob() error = %v", err)
	}
	if len(apps) != 3 {
		t.Fatalf("ListJob() returned %d, want 3", len(apps))
	}

	if err := repo.SetJobStatus(apps[0].ID, models.ApplicationRejected); err != nil {
		t.Fatalf("SetJobStatus() error = %v", err)
	}

	counts, err := repo.CountJobByStatus()
	if err != nil {
		t.Fatalf("CountJobByStatus() error = %v", err)
	}
	if counts[models.ApplicationPending] != 2 || counts[models.ApplicationRejected] != 1 {
		t.Errorf("CountJobByStatus() = %v", counts)
	}

	rejected, err := repo.ListJob(models.ApplicationListFilter{Status: models.ApplicationRejected})
	if err != nil {
		t.Fatalf("ListJob(rejected) error = %v", err)
	}
	if len(rejected) != 1 {
		t.Errorf("ListJob(rejected) returned %d, want 1", len(rejected))
	}
}
