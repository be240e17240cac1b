package notify

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/trinexa/trinexa-web/internal/mailer"
)

func newTestOutbox(t *testing.T) *Outbox {
	t.Helper()
	o, err := Open(filepath.Join(t.TempDir(), "outbox.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { o.Close() })
	return o
}

func testEmail(to string) mailer.Email {
	return mailer.Email{To: to, Subject: "Hello", TextBody: "hi"}
}

func TestOutbox_EnqueueDequeueOrder(t *testing.T) {
	o := newTestOutbox(t)

	first := NewNotification(KindWelcome, testEmail("a@example.org"))
	second := NewNotification(KindWelcome, testEmail("b@example.org"))
	second.CreatedAt = first.CreatedAt.Add(time.Millisecond)

	if err := o.Enqueue(first); err != nil {
		t.Fatal(err)
	}
	if err := o.Enqueue(second); err != nil {
		t.Fatal(err)
	}

	got, err := o.Dequeue()
	if err != nil {
		t.Fatalf("Dequeue: %v", err)
	}
	if got == nil || got.ID != first.ID {
		t.Fatalf("dequeued %v, want first enqueued", got)
	}
	if got.Status != StatusSending {
		t.Errorf("claimed status = %q, want sending", got.Status)
	}
}

func TestOutbox_DequeueEmpty(t *testing.T) {
	o := newTestOutbox(t)
	n, err := o.Dequeue()
	if err != nil {
		t.Fatalf("Dequeue: %v", err)
	}
	if n != nil {
		t.Errorf("expected nil from empty outbox, got %+v", n)
	}
}

func TestOutbox_DeferNotReadyUntilRetryTime(t *testing.T) {
	o := newTestOutbox(t)

	n := NewNotification(KindCampaign, testEmail("a@example.org"))
	if err := o.Enqueue(n); err != nil {
		t.Fatal(err)
	}
	claimed, _ := o.Dequeue()
	if err := o.Defer(claimed, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Defer: %v", err)
	}

	if got, _ := o.Dequeue(); got != nil {
		t.Error("deferred notification dequeued before its retry time")
	}

	// A retry time in the past makes it deliverable again.
	if err := o.Defer(claimed, time.Now().Add(-time.Second)); err != nil {
		t.Fatal(err)
	}
	got, err := o.Dequeue()
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.ID != n.ID {
		t.Error("expected deferred notification once retry time passed")
	}
}

func TestOutbox_BuryAndRetry(t *testing.T) {
	o := newTestOutbox(t)

	n := NewNotification(KindDemoConfirmation, testEmail("a@example.org"))
	if err := o.Enqueue(n); err != nil {
		t.Fatal(err)
	}
	claimed, _ := o.Dequeue()
	claimed.RetryCount = 5
	claimed.LastError = "550 no such user"
	if err := o.Bury(claimed); err != nil {
		t.Fatalf("Bury: %v", err)
	}

	dead, err := o.Dead(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(dead) != 1 || dead[0].Status != StatusFailed {
		t.Fatalf("dead letters = %+v", dead)
	}

	if err := o.Retry(n.ID); err != nil {
		t.Fatalf("Retry: %v", err)
	}
	got, _ := o.Dequeue()
	if got == nil || got.ID != n.ID {
		t.Fatal("retried notification should be deliverable again")
	}
	if got.RetryCount != 0 || got.LastError != "" {
		t.Errorf("retry budget not reset: %+v", got)
	}
	if remaining, _ := o.Dead(0); len(remaining) != 0 {
		t.Error("retried notification still in dead letter index")
	}
}

func TestOutbox_Stats(t *testing.T) {
	o := newTestOutbox(t)

	for i := 0; i < 3; i++ {
		if err := o.Enqueue(NewNotification(KindWelcome, testEmail("a@example.org"))); err != nil {
			t.Fatal(err)
		}
	}
	claimed, _ := o.Dequeue()
	if err := o.Complete(claimed); err != nil {
		t.Fatal(err)
	}

	stats, err := o.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 3 || stats.Pending != 2 || stats.Delivered != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestOutbox_CleanupDelivered(t *testing.T) {
	o := newTestOutbox(t)

	old := NewNotification(KindWelcome, testEmail("a@example.org"))
	if err := o.Enqueue(old); err != nil {
		t.Fatal(err)
	}
	claimed, _ := o.Dequeue()
	if err := o.Complete(claimed); err != nil {
		t.Fatal(err)
	}
	claimed.UpdatedAt = time.Now().Add(-48 * time.Hour)
	if err := o.put(claimed); err != nil {
		t.Fatal(err)
	}

	removed, err := o.CleanupDelivered(24 * time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if n, _ := o.Get(old.ID); n != nil {
		t.Error("cleaned notification still present")
	}
}
