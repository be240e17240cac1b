package repository

import (
	"testing"
	"time"

	"github.com/trinexa/trinexa-web/internal/web/models"
)

func TestMessageRepository_ScheduleAndDue(t *testing.T) {
	sqlDB := setupTestDB(t)
	repo := NewMessageRepository(sqlDB)

	past := &models.ScheduledMessage{
		Subject:       "Past",
		Content:       "due now",
		RecipientType: models.RecipientsAll,
		ScheduledFor:  time.Now().Add(-time.Hour),
	}
	future := &models.ScheduledMessage{
		Subject:       "Future",
		Content:       "not yet",
		RecipientType: models.RecipientsAll,
		ScheduledFor:  time.Now().Add(time.Hour),
	}
	for _, m := range []*models.ScheduledMessage{past, future} {
		if err := repo.Schedule(m); err != nil {
			t.Fatalf("Schedule() error = %v", err)
		}
		if m.Status != models.MessagePending {
			t.Errorf("Schedule() status = %s, want pending", m.Status)
		}
	}

	due, err := repo.Due(time.Now(), 10)
	if err != nil {
		t.Fatalf("Due() error = %v", err)
	}
	if len(due) != 1 || due[0].Subject != "Past" {
		t.Errorf("Due() = %+v, want only the past message", due)
	}
}

func TestMessageRepository_InvalidRecipientType(t *testing.T) {
	sqlDB := setupTestDB(t)
	repo := NewMessageRepository(sqlDB)

	err := repo.Schedule(&models.ScheduledMessage{
		Subject:       "Bad",
		Content:       "x",
		RecipientType: "everyone",
		ScheduledFor:  time.Now(),
	})
	if err == nil {
		t.Fatal("Schedule() expected error for invalid recipient type")
	}
}

func TestMessageRepository_Transitions(t *testing.T) {
	sqlDB := setupTestDB(t)
	repo := NewMessageRepository(sqlDB)

	m := &models.ScheduledMessage{
		Subject:       "Announce",
		Content:       "hello",
		RecipientType: models.RecipientsAdmins,
		ScheduledFor:  time.Now(),
	}
	if err := repo.Schedule(m); err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}

	if err := repo.Cancel(m.ID); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}

	// A cancelled message can be neither sent nor cancelled again.
	if err := repo.MarkSent(m.ID, 3); err == nil {
		t.Error("MarkSent() on cancelled message should fail")
	}
	if err := repo.Cancel(m.ID); err == nil {
		t.Error("Cancel() on cancelled message should fail")
	}

	got, err := repo.GetByID(m.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Status != models.MessageCancelled {
		t.Errorf("status = %s, want cancelled", got.Status)
	}
}

func TestMessageRepository_MarkSent(t *testing.T) {
	sqlDB := setupTestDB(t)
	repo := NewMessageRepository(sqlDB)

	m := &models.ScheduledMessage{
		Subject:       "Announce",
		Content:       "hello",
		RecipientType: models.RecipientsAdmins,
		ScheduledFor:  time.Now(),
	}
	if err := repo.Schedule(m); err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	if err := repo.MarkSent(m.ID, 7); err != nil {
		t.Fatalf("MarkSent() error = %v", err)
	}

	got, _ := repo.GetByID(m.ID)
	if got.Status != models.MessageSent || got.SentCount != 7 || got.SentAt == nil {
		t.Errorf("after MarkSent: %+v", got)
	}
}

func TestMessageRepository_Recipients(t *testing.T) {
	sqlDB := setupTestDB(t)
	repo := NewMessageRepository(sqlDB)
	bookings := NewBookingRepository(sqlDB)
	apps := NewApplicationRepository(sqlDB)
	users := NewUserRepository(sqlDB)

	if err := bookings.Create(&models.DemoBooking{Name: "Dana", Email: "dana@example.com"}); err != nil {
		t.Fatalf("booking Create() error = %v", err)
	}
	if err := apps.CreateGeneral(&models.GeneralApplication{Name: "Gil", Email: "gil@example.com"}); err != nil {
		t.Fatalf("application CreateGeneral() error = %v", err)
	}
	// Same person booked a demo and applied; must be counted once for "all".
	if err := apps.CreateGeneral(&models.GeneralApplication{Name: "Dana", Email: "dana@example.com"}); err != nil {
		t.Fatalf("application CreateGeneral() error = %v", err)
	}
	if err := users.Create(&models.User{Email: "root@trinexa.example", PasswordHash: "x", Role: models.RoleAdmin}); err != nil {
		t.Fatalf("user Create() error = %v", err)
	}

	cases := []struct {
		recipientType string
		want          int
	}{
		{models.RecipientsDemoRequesters, 1},
		{models.RecipientsJobApplicants, 2},
		{models.RecipientsAdmins, 1},
		{models.RecipientsAll, 3},
	}
	for _, tc := range cases {
		n, err := repo.CountRecipients(tc.recipientType)
		if err != nil {
			t.Fatalf("CountRecipients(%s) error = %v", tc.recipientType, err)
		}
		if n != tc.want {
			t.Errorf("CountRecipients(%s) = %d, want %d", tc.recipientType, n, tc.want)
		}
	}
}

func TestMessageRepository_RecipientsEmpty(t *testing.T) {
	sqlDB := setupTestDB(t)
	repo := NewMessageRepository(sqlDB)

	n, err := repo.CountRecipients(models.RecipientsDemoRequesters)
	if err != nil {
		t.Fatalf("CountRecipients() error = %v", err)
	}
	if n != 0 {
		t.Errorf("CountRecipients() = %d, want 0", n)
	}
}
