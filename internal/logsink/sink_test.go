package logsink

import (
	"bytes"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	bolt "go.etcd.io/bbolt"
)

func newTestMirror() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})), &buf
}

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := OpenStore(filepath.Join(t.TempDir(), "logs.db"))
	if err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSink_RingBound(t *testing.T) {
	mirror, _ := newTestMirror()
	sink := New(LevelDebug, nil, mirror)

	for i := 0; i < 1500; i++ {
		sink.Info(fmt.Sprintf("entry %d", i), nil, "test")
	}

	logs := sink.Logs(nil)
	if len(logs) != RingCapacity {
		t.Fatalf("Logs() returned %d entries, want %d", len(logs), RingCapacity)
	}

	// The ring must hold the most recent 1000 in order: 500..1499.
	if logs[0].Message != "entry 500" {
		t.Errorf("oldest retained entry = %q, want %q", logs[0].Message, "entry 500")
	}
	if logs[len(logs)-1].Message != "entry 1499" {
		t.Errorf("newest retained entry = %q, want %q", logs[len(logs)-1].Message, "entry 1499")
	}
	for i, e := range logs {
		if want := fmt.Sprintf("entry %d", i+500); e.Message != want {
			t.Fatalf("entry %d = %q, want %q", i, e.Message, want)
		}
	}
}

func TestSink_DayBucketBound(t *testing.T) {
	mirror, _ := newTestMirror()
	store := newTestStore(t)
	sink := New(LevelDebug, store, mirror)

	for i := 0; i < 150; i++ {
		sink.Info(fmt.Sprintf("entry %d", i), nil, "test")
	}

	stored := sink.StoredLogs("")
	if len(stored) != DayCapacity {
		t.Fatalf("StoredLogs() returned %d entries, want %d", len(stored), DayCapacity)
	}
	if stored[0].Message != "entry 50" {
		t.Errorf("oldest stored entry = %q, want %q", stored[0].Message, "entry 50")
	}
	if stored[len(stored)-1].Message != "entry 149" {
		t.Errorf("newest stored entry = %q, want %q", stored[len(stored)-1].Message, "entry 149")
	}
}

func TestSink_LevelThreshold(t *testing.T) {
	mirror, buf := newTestMirror()
	store := newTestStore(t)
	sink := New(LevelWarn, store, mirror)

	sink.Debug("debug message", nil, "test")
	sink.Info("info message", nil, "test")
	sink.Warn("warn message", nil, "test")
	sink.Error("error message", nil, "test")

	logs := sink.Logs(nil)
	if len(logs) != 2 {
		t.Fatalf("Logs() returned %d entries, want 2", len(logs))
	}
	if logs[0].Level != "WARN" || logs[1].Level != "ERROR" {
		t.Errorf("retained levels = %s, %s; want WARN, ERROR", logs[0].Level, logs[1].Level)
	}

	stored := sink.StoredLogs("")
	if len(stored) != 2 {
		t.Errorf("StoredLogs() returned %d entries, want 2", len(stored))
	}

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Error("suppressed levels leaked to the mirror logger")
	}
	if !strings.Contains(out, "warn message") || !strings.Contains(out, "error message") {
		t.Error("emitted levels missing from the mirror logger")
	}
}

func TestSink_ExactLevelFilter(t *testing.T) {
	mirror, _ := newTestMirror()
	sink := New(LevelDebug, nil, mirror)

	sink.Error("boom", nil, "")
	sink.Warn("careful", nil, "")
	sink.Error("boom again", nil, "")

	level := LevelError
	logs := sink.Logs(&level)
	if len(logs) != 2 {
		t.Fatalf("Logs(ERROR) returned %d entries, want 2", len(logs))
	}
	for _, e := range logs {
		if e.Level != "ERROR" {
			t.Errorf("filtered entry has level %s", e.Level)
		}
	}
}

func TestSink_RetentionPruning(t *testing.T) {
	mirror, _ := newTestMirror()
	store := newTestStore(t)
	sink := New(LevelDebug, store, mirror)

	now := time.Now()
	days := []string{
		now.Format(DayFormat),
		now.AddDate(0, 0, -6).Format(DayFormat),
		now.AddDate(0, 0, -10).Format(DayFormat),
	}
	for _, day := range days {
		if err := store.Append(day, Entry{Timestamp: day, Level: "INFO", Message: "m"}); err != nil {
			t.Fatalf("Append(%s) error = %v", day, err)
		}
	}

	removed := sink.ClearOld(7)
	if removed != 1 {
		t.Fatalf("ClearOld(7) removed %d buckets, want 1", removed)
	}

	remaining, err := store.Days()
	if err != nil {
		t.Fatalf("Days() error = %v", err)
	}
	if len(remaining) != 2 {
		t.Fatalf("remaining buckets = %v, want 2", remaining)
	}
	for _, day := range remaining {
		if day == days[2] {
			t.Errorf("bucket %s should have been pruned", day)
		}
	}
}

func TestSink_ExportFormat(t *testing.T) {
	mirror, _ := newTestMirror()
	store := newTestStore(t)
	sink := New(LevelDebug, store, mirror)

	sink.Log(LevelError, "save failed", map[string]any{"code": "42501"}, "templates", "user-1")

	out := sink.Export("")
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 1 {
		t.Fatalf("Export() produced %d lines, want 1", len(lines))
	}

	line := lines[0]
	for _, want := range []string{"ERROR:", "[templates]", "[User: user-1]", "save failed", `| Data: {"code":"42501"}`} {
		if !strings.Contains(line, want) {
			t.Errorf("export line %q missing %q", line, want)
		}
	}
}

func TestSink_SetLevelLogged(t *testing.T) {
	mirror, _ := newTestMirror()
	sink := New(LevelError, nil, mirror)

	sink.SetLevel(LevelDebug)
	if sink.Level() != LevelDebug {
		t.Fatalf("Level() = %v, want DEBUG", sink.Level())
	}

	logs := sink.Logs(nil)
	if len(logs) != 1 {
		t.Fatalf("Logs() returned %d entries, want the level-change entry", len(logs))
	}
	if logs[0].Level != "INFO" || !strings.Contains(logs[0].Message, "DEBUG") {
		t.Errorf("level change entry = %+v", logs[0])
	}
}

func TestStore_MalformedBucket(t *testing.T) {
	store := newTestStore(t)

	// Write garbage directly into a day key.
	day := time.Now().Format(DayFormat)
	err := store.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDays).Put([]byte(day), []byte("{not json"))
	})
	if err != nil {
		t.Fatalf("failed to corrupt bucket: %v", err)
	}

	entries, err := store.Day(day)
	if err != nil {
		t.Fatalf("Day() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Day() on malformed bucket returned %d entries, want 0", len(entries))
	}

	// Appending over garbage replaces it.
	if err := store.Append(day, Entry{Level: "INFO", Message: "fresh"}); err != nil {
		t.Fatalf("Append() over malformed bucket error = %v", err)
	}
	entries, err = store.Day(day)
	if err != nil {
		t.Fatalf("Day() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Message != "fresh" {
		t.Errorf("Day() after recovery = %+v, want single fresh entry", entries)
	}
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want Level
		ok   bool
	}{
		{"error", LevelError, true},
		{"WARN", LevelWarn, true},
		{"warning", LevelWarn, true},
		{"Info", LevelInfo, true},
		{"debug", LevelDebug, true},
		{"verbose", LevelInfo, false},
	}
	for _, tc := range cases {
		got, err := ParseLevel(tc.in)
		if tc.ok && err != nil {
			t.Errorf("ParseLevel(%q) error = %v", tc.in, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("ParseLevel(%q) expected error", tc.in)
		}
		if tc.ok && got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
