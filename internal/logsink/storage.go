package logsink

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketDays = []byte("log_days")

// Store persists log entries in per-day buckets inside a single bbolt file.
// Each key is a DayFormat date mapping to a JSON array of entries, capped at
// DayCapacity with oldest-first eviction.
type Store struct {
	db *bolt.DB
}

// OpenStore opens (or creates) the log store at path.
func OpenStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log store directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{
		Timeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open log store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketDays)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create log bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Append adds an entry to the bucket for day, evicting the oldest entries
// beyond DayCapacity.
func (s *Store) Append(day string, e Entry) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketDays)

		var entries []Entry
		if raw := b.Get([]byte(day)); raw != nil {
			// A corrupt bucket is replaced rather than surfaced: losing old
			// diagnostics beats refusing new ones.
			if err := json.Unmarshal(raw, &entries); err != nil {
				entries = nil
			}
		}

		entries = append(entries, e)
		if len(entries) > DayCapacity {
			entries = entries[len(entries)-DayCapacity:]
		}

		data, err := json.Marshal(entries)
		if err != nil {
			return fmt.Errorf("failed to marshal day bucket: %w", err)
		}
		return b.Put([]byte(day), data)
	})
}

// Day returns the entries stored for the given day, oldest first. A missing
// or malformed bucket yields an empty slice.
func (s *Store) Day(day string) ([]Entry, error) {
	entries := []Entry{}
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketDays).Get([]byte(day))
		if raw == nil {
			return nil
		}
		if err := json.Unmarshal(raw, &entries); err != nil {
			entries = []Entry{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Days lists all day keys currently present.
func (s *Store) Days() ([]string, error) {
	days := []string{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDays).ForEach(func(k, _ []byte) error {
			days = append(days, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return days, nil
}

// DeleteDay removes the bucket for the given day.
func (s *Store) DeleteDay(day string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDays).Delete([]byte(day))
	})
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// marshalData renders arbitrary entry data for export lines.
func marshalData(data any) string {
	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(b)
}
