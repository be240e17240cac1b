package worker

import (
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/trinexa/trinexa-web/internal/notify"
	"github.com/trinexa/trinexa-web/internal/web/db"
	"github.com/trinexa/trinexa-web/internal/web/models"
	"github.com/trinexa/trinexa-web/internal/web/repository"
)

type fakeQueue struct {
	mu       sync.Mutex
	enqueued []*notify.Notification
	err      error
}

func (q *fakeQueue) Enqueue(n *notify.Notification) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.enqueued = append(q.enqueued, n)
	return nil
}

func setupWorker(t *testing.T, queue Queue) (*Campaign, *repository.MessageRepository, *repository.BookingRepository) {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	if err := database.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	messages := repository.NewMessageRepository(database.DB)
	bookings := repository.NewBookingRepository(database.DB)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewCampaign(Config{}, messages, queue, logger), messages, bookings
}

func scheduleDue(t *testing.T, messages *repository.MessageRepository, subject, content, audience string) *models.ScheduledMessage {
	t.Helper()
	msg := &models.ScheduledMessage{
		Subject:       subject,
		Content:       content,
		RecipientType: audience,
		ScheduledFor:  time.Now().Add(-time.Minute),
	}
	if err := messages.Schedule(msg); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	return msg
}

func TestCampaign_SendsDueMessage(t *testing.T) {
	queue := &fakeQueue{}
	worker, messages, bookings := setupWorker(t, queue)

	for _, b := range []*models.DemoBooking{
		{Name: "Ada", Email: "ada@example.com"},
		{Name: "Grace", Email: "grace@example.com"},
	} {
		if err := bookings.Create(b); err != nil {
			t.Fatalf("create booking: %v", err)
		}
	}
	msg := scheduleDue(t, messages, "Hello {name}", "News for {email}", models.RecipientsDemoRequesters)

	processed := 0
	worker.Processed = func() { processed++ }
	worker.Tick()

	if len(queue.enqueued) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(queue.enqueued))
	}
	for _, n := range queue.enqueued {
		if n.Kind != notify.KindCampaign {
			t.Errorf("expected campaign kind, got %s", n.Kind)
		}
	}
	if queue.enqueued[0].Email.Subject != "Hello Ada" && queue.enqueued[1].Email.Subject != "Hello Ada" {
		t.Error("expected placeholder substitution in subject")
	}

	sent, err := messages.GetByID(msg.ID)
	if err != nil {
		t.Fatalf("get message: %v", err)
	}
	if sent.Status != models.MessageSent {
		t.Errorf("expected status sent, got %s", sent.Status)
	}
	if sent.SentCount != 2 {
		t.Errorf("expected sent count 2, got %d", sent.SentCount)
	}
	if processed != 1 {
		t.Errorf("expected Processed hook once, got %d", processed)
	}
}

func TestCampaign_FutureMessageUntouched(t *testing.T) {
	queue := &fakeQueue{}
	worker, messages, bookings := setupWorker(t, queue)

	if err := bookings.Create(&models.DemoBooking{Name: "Ada", Email: "ada@example.com"}); err != nil {
		t.Fatalf("create booking: %v", err)
	}
	msg := &models.ScheduledMessage{
		Subject:       "Later",
		Content:       "Not yet",
		RecipientType: models.RecipientsDemoRequesters,
		ScheduledFor:  time.Now().Add(time.Hour),
	}
	if err := messages.Schedule(msg); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	worker.Tick()

	if len(queue.enqueued) != 0 {
		t.Errorf("expected no notifications, got %d", len(queue.enqueued))
	}
	got, _ := messages.GetByID(msg.ID)
	if got.Status != models.MessagePending {
		t.Errorf("expected still pending, got %s", got.Status)
	}
}

func TestCampaign_EnqueueFailureReducesCount(t *testing.T) {
	queue := &fakeQueue{err: errOutboxFull}
	worker, messages, bookings := setupWorker(t, queue)

	if err := bookings.Create(&models.DemoBooking{Name: "Ada", Email: "ada@example.com"}); err != nil {
		t.Fatalf("create booking: %v", err)
	}
	msg := scheduleDue(t, messages, "Hi", "Body", models.RecipientsDemoRequesters)

	worker.Tick()

	// The message is still marked sent; the failed recipient is reflected
	// in the count.
	got, _ := messages.GetByID(msg.ID)
	if got.Status != models.MessageSent {
		t.Errorf("expected status sent, got %s", got.Status)
	}
	if got.SentCount != 0 {
		t.Errorf("expected sent count 0, got %d", got.SentCount)
	}
}

var errOutboxFull = &outboxErr{}

type outboxErr struct{}

func (e *outboxErr) Error() string { return "outbox full" }
