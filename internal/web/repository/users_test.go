package repository

import (
	"testing"
	"time"

	"github.com/trinexa/trinexa-web/internal/web/models"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	sqlDB := setupTestDB(t)
	repo := NewUserRepository(sqlDB)

	u := &models.User{Email: "ada@example.com", PasswordHash: "hash", Name: "Ada"}
	if err := repo.Create(u); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if u.Role != models.RoleUser {
		t.Errorf("default role = %s, want user", u.Role)
	}

	got, err := repo.GetByEmail("ada@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if got == nil || got.ID != u.ID {
		t.Errorf("GetByEmail() = %+v", got)
	}

	if dup := repo.Create(&models.User{Email: "ada@example.com", PasswordHash: "x"}); dup == nil {
		t.Error("Create() should reject a duplicate email")
	}
}

func TestSessionRepository_Expiry(t *testing.T) {
	sqlDB := setupTestDB(t)
	users := NewUserRepository(sqlDB)
	sessions := NewSessionRepository(sqlDB)

	u := &models.User{Email: "ada@example.com", PasswordHash: "hash"}
	if err := users.Create(u); err != nil {
		t.Fatalf("users.Create() error = %v", err)
	}

	live, err := sessions.Create(u.ID, time.Hour)
	if err != nil {
		t.Fatalf("sessions.Create() error = %v", err)
	}
	expired, err := sessions.Create(u.ID, -time.Minute)
	if err != nil {
		t.Fatalf("sessions.Create() error = %v", err)
	}

	if got, _ := sessions.Get(live.ID); got == nil {
		t.Error("Get() returned nil for a live session")
	}
	if got, _ := sessions.Get(expired.ID); got != nil {
		t.Error("Get() returned an expired session")
	}

	n, err := sessions.DeleteExpired()
	if err != nil {
		t.Fatalf("DeleteExpired() error = %v", err)
	}
	if n != 1 {
		t.Errorf("DeleteExpired() removed %d, want 1", n)
	}
}

func TestUserRepository_Delete(t *testing.T) {
	sqlDB := setupTestDB(t)
	repo := NewUserRepository(sqlDB)

	if err := repo.Create(&models.User{Email: "ada@example.com", PasswordHash: "hash"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	ok, err := repo.Delete("ada@example.com")
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if !ok {
		t.Error("Delete() reported no rows removed")
	}

	ok, err = repo.Delete("ada@example.com")
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if ok {
		t.Error("Delete() reported rows removed for a missing user")
	}
}
