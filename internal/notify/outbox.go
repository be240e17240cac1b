package notify

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketNotifications = []byte("notifications")
	bucketReady         = []byte("ready")
	bucketDeferred      = []byte("deferred")
	bucketDead          = []byte("dead")
)

// Outbox is the durable notification store. Pending and deferred work is
// indexed by time-sortable keys so dispatch order follows enqueue order.
type Outbox struct {
	db *bolt.DB
}

// Open opens or creates the outbox file.
func Open(path string) (*Outbox, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create outbox directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open outbox: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketNotifications, bucketReady, bucketDeferred, bucketDead} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Outbox{db: db}, nil
}

// Enqueue stores a notification and adds it to the ready index.
func (o *Outbox) Enqueue(n *Notification) error {
	return o.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(n)
		if err != nil {
			return fmt.Errorf("marshal notification: %w", err)
		}
		if err := tx.Bucket(bucketNotifications).Put([]byte(n.ID), data); err != nil {
			return err
		}
		return tx.Bucket(bucketReady).Put(indexKey(n.CreatedAt, n.ID), []byte(n.ID))
	})
}

// Dequeue claims the next deliverable notification, preferring deferred
// retries whose time has come, then ready work in enqueue order. Returns
// nil when nothing is deliverable.
func (o *Outbox) Dequeue() (*Notification, error) {
	var claimed *Notification

	err := o.db.Update(func(tx *bolt.Tx) error {
		store := tx.Bucket(bucketNotifications)
		now := time.Now()

		c := tx.Bucket(bucketDeferred).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if indexTime(k).After(now) {
				break
			}
			n, err := claim(store, c, v, now)
			if err != nil {
				return err
			}
			if n != nil {
				claimed = n
				return nil
			}
		}

		c = tx.Bucket(bucketReady).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			n, err := claim(store, c, v, now)
			if err != nil {
				return err
			}
			if n != nil {
				claimed = n
				return nil
			}
		}
		return nil
	})

	return claimed, err
}

// claim flips a notification to sending and drops its index entry. A stale
// index pointing at a deleted notification is cleaned up and skipped.
func claim(store *bolt.Bucket, c *bolt.Cursor, id []byte, now time.Time) (*Notification, error) {
	data := store.Get(id)
	if data == nil {
		c.Delete()
		return nil, nil
	}

	var n Notification
	if err := json.Unmarshal(data, &n); err != nil {
		c.Delete()
		return nil, nil
	}

	n.Status = StatusSending
	n.UpdatedAt = now

	updated, err := json.Marshal(&n)
	if err != nil {
		return nil, err
	}
	if err := store.Put(id, updated); err != nil {
		return nil, err
	}
	if err := c.Delete(); err != nil {
		return nil, err
	}
	return &n, nil
}

// Complete records a delivered notification.
func (o *Outbox) Complete(n *Notification) error {
	n.Status = StatusDelivered
	n.UpdatedAt = time.Now()
	return o.put(n)
}

// Defer schedules a retry at the given time.
func (o *Outbox) Defer(n *Notification, retryAt time.Time) error {
	n.Status = StatusDeferred
	n.NextRetryAt = retryAt
	n.UpdatedAt = time.Now()

	return o.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(n)
		if err != nil {
			return err
		}
		if err := tx.Bucket(bucketNotifications).Put([]byte(n.ID), data); err != nil {
			return err
		}
		return tx.Bucket(bucketDeferred).Put(indexKey(retryAt, n.ID), []byte(n.ID))
	})
}

// Bury moves a notification to the dead letter index after a permanent
// failure or retry exhaustion.
func (o *Outbox) Bury(n *Notification) error {
	n.Status = StatusFailed
	n.UpdatedAt = time.Now()

	return o.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(n)
		if err != nil {
			return err
		}
		if err := tx.Bucket(bucketNotifications).Put([]byte(n.ID), data); err != nil {
			return err
		}
		return tx.Bucket(bucketDead).Put(indexKey(n.UpdatedAt, n.ID), []byte(n.ID))
	})
}

// Get returns a notification by id, or nil when absent.
func (o *Outbox) Get(id string) (*Notification, error) {
	var n *Notification
	err := o.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketNotifications).Get([]byte(id))
		if data == nil {
			return nil
		}
		n = &Notification{}
		return json.Unmarshal(data, n)
	})
	return n, err
}

// List returns notifications, newest last, optionally filtered by status.
func (o *Outbox) List(status string, limit int) ([]*Notification, error) {
	var out []*Notification
	err := o.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketNotifications).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var n Notification
			if err := json.Unmarshal(v, &n); err != nil {
				continue
			}
			if status != "" && n.Status != status {
				continue
			}
			out = append(out, &n)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
		return nil
	})
	return out, err
}

// Dead returns the dead-lettered notifications in failure order.
func (o *Outbox) Dead(limit int) ([]*Notification, error) {
	var out []*Notification
	err := o.db.View(func(tx *bolt.Tx) error {
		store := tx.Bucket(bucketNotifications)
		c := tx.Bucket(bucketDead).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			data := store.Get(v)
			if data == nil {
				continue
			}
			var n Notification
			if err := json.Unmarshal(data, &n); err != nil {
				continue
			}
			out = append(out, &n)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
		return nil
	})
	return out, err
}

// Retry moves a dead notification back to the ready index with a reset
// retry budget.
func (o *Outbox) Retry(id string) error {
	return o.db.Update(func(tx *bolt.Tx) error {
		store := tx.Bucket(bucketNotifications)
		data := store.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("notification not found: %s", id)
		}

		var n Notification
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("unmarshal notification: %w", err)
		}

		dropIndexEntry(tx.Bucket(bucketDead), id)

		n.Status = StatusPending
		n.RetryCount = 0
		n.LastError = ""
		n.UpdatedAt = time.Now()

		updated, err := json.Marshal(&n)
		if err != nil {
			return err
		}
		if err := store.Put([]byte(id), updated); err != nil {
			return err
		}
		return tx.Bucket(bucketReady).Put(indexKey(n.UpdatedAt, n.ID), []byte(n.ID))
	})
}

// Stats summarizes the outbox by status.
type Stats struct {
	Pending   int `json:"pending"`
	Sending   int `json:"sending"`
	Delivered int `json:"delivered"`
	Deferred  int `json:"deferred"`
	Failed    int `json:"failed"`
	Total     int `json:"total"`
}

// Stats counts notifications by status.
func (o *Outbox) Stats() (*Stats, error) {
	stats := &Stats{}
	err := o.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketNotifications).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var n Notification
			if err := json.Unmarshal(v, &n); err != nil {
				continue
			}
			stats.Total++
			switch n.Status {
			case StatusPending:
				stats.Pending++
			case StatusSending:
				stats.Sending++
			case StatusDelivered:
				stats.Delivered++
			case StatusDeferred:
				stats.Deferred++
			case StatusFailed:
				stats.Failed++
			}
		}
		return nil
	})
	return stats, err
}

// PendingCount returns how many notifications still await delivery,
// counting deferred retries.
func (o *Outbox) PendingCount() (int, error) {
	stats, err := o.Stats()
	if err != nil {
		return 0, err
	}
	return stats.Pending + stats.Deferred, nil
}

// CleanupDelivered removes delivered notifications older than maxAge and
// returns how many were removed.
func (o *Outbox) CleanupDelivered(maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	cutoff := time.Now().Add(-maxAge)
	removed := 0

	err := o.db.Update(func(tx *bolt.Tx) error {
		store := tx.Bucket(bucketNotifications)
		var stale [][]byte

		c := store.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var n Notification
			if err := json.Unmarshal(v, &n); err != nil {
				continue
			}
			if n.Status == StatusDelivered && n.UpdatedAt.Before(cutoff) {
				stale = append(stale, append([]byte{}, k...))
			}
		}

		for _, k := range stale {
			if err := store.Delete(k); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	return removed, err
}

// Close closes the outbox file.
func (o *Outbox) Close() error {
	return o.db.Close()
}

func dropIndexEntry(b *bolt.Bucket, id string) {
	c := b.Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		if string(v) == id {
			c.Delete()
			return
		}
	}
}

func (o *Outbox) put(n *Notification) error {
	return o.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(n)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketNotifications).Put([]byte(n.ID), data)
	})
}

func indexKey(t time.Time, id string) []byte {
	return []byte(t.UTC().Format(time.RFC3339Nano) + ":" + id)
}

func indexTime(key []byte) time.Time {
	s := string(key)
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == ':' {
			ts, _ := time.Parse(time.RFC3339Nano, s[:i])
			return ts
		}
	}
	return time.Time{}
}
