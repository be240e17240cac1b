// Package logsink implements the application diagnostic log sink: a bounded
// in-memory ring of recent entries plus a day-bucketed persisted copy with
// its own retention window. The sink mirrors every entry to slog; it never
// returns persistence errors to callers, because logging must not be able to
// take the application down.
package logsink

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level is the sink verbosity level. Lower value means higher severity.
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

// String returns the canonical upper-case level name.
func (l Level) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	default:
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
}

// ParseLevel parses a level name (case-insensitive).
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return LevelError, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "INFO":
		return LevelInfo, nil
	case "DEBUG":
		return LevelDebug, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Entry is a single sink entry.
type Entry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	Source    string `json:"source,omitempty"`
	UserID    string `json:"user_id,omitempty"`
}

const (
	// RingCapacity bounds the in-memory entry ring; the oldest entry is
	// evicted on overflow.
	RingCapacity = 1000

	// DayCapacity bounds each persisted day bucket.
	DayCapacity = 100

	// DefaultRetentionDays is how long persisted day buckets are kept.
	DefaultRetentionDays = 7

	// DayFormat is the bucket key format for persisted entries.
	DayFormat = "2006-01-02"
)

// Sink is a long-lived, explicitly constructed log sink. It is safe for
// concurrent use. The store may be nil, in which case entries are kept in
// memory only.
type Sink struct {
	mu       sync.Mutex
	level    Level
	ring     []Entry // oldest first
	store    *Store
	mirror   *slog.Logger
	observer func(Level)

	now func() time.Time
}

// SetObserver registers a callback invoked once per recorded entry, after
// level filtering. Used to feed counters. Must be called before the sink is
// shared across goroutines.
func (s *Sink) SetObserver(fn func(Level)) {
	s.observer = fn
}

// New creates a sink with the given verbosity threshold. mirror must not be
// nil; store may be.
func New(level Level, store *Store, mirror *slog.Logger) *Sink {
	return &Sink{
		level:  level,
		store:  store,
		mirror: mirror,
		now:    time.Now,
	}
}

// Log records an entry if level is at or above the current threshold.
// data may be nil; source and userID may be empty.
func (s *Sink) Log(level Level, msg string, data any, source, userID string) {
	s.mu.Lock()
	if level > s.level {
		s.mu.Unlock()
		return
	}

	now := s.now()
	e := Entry{
		Timestamp: now.Format(time.RFC3339),
		Level:     level.String(),
		Message:   msg,
		Data:      data,
		Source:    source,
		UserID:    userID,
	}

	s.ring = append(s.ring, e)
	if len(s.ring) > RingCapacity {
		s.ring = s.ring[len(s.ring)-RingCapacity:]
	}
	store := s.store
	observer := s.observer
	s.mu.Unlock()

	s.emit(level, e)
	if observer != nil {
		observer(level)
	}

	if store != nil {
		if err := store.Append(now.Format(DayFormat), e); err != nil {
			s.mirror.Warn("log sink: failed to persist entry", "error", err)
		}
	}
}

// Error records an entry at ERROR level.
func (s *Sink) Error(msg string, data any, source string) {
	s.Log(LevelError, msg, data, source, "")
}

// Warn records an entry at WARN level.
func (s *Sink) Warn(msg string, data any, source string) {
	s.Log(LevelWarn, msg, data, source, "")
}

// Info records an entry at INFO level.
func (s *Sink) Info(msg string, data any, source string) {
	s.Log(LevelInfo, msg, data, source, "")
}

// Debug records an entry at DEBUG level.
func (s *Sink) Debug(msg string, data any, source string) {
	s.Log(LevelDebug, msg, data, source, "")
}

func (s *Sink) emit(level Level, e Entry) {
	args := []any{}
	if e.Source != "" {
		args = append(args, "source", e.Source)
	}
	if e.UserID != "" {
		args = append(args, "user_id", e.UserID)
	}
	if e.Data != nil {
		args = append(args, "data", e.Data)
	}

	switch level {
	case LevelError:
		s.mirror.Error(e.Message, args...)
	case LevelWarn:
		s.mirror.Warn(e.Message, args...)
	case LevelInfo:
		s.mirror.Info(e.Message, args...)
	default:
		s.mirror.Debug(e.Message, args...)
	}
}

// Logs returns a snapshot of the in-memory ring, oldest first. If level is
// non-nil only entries of exactly that level are returned.
func (s *Sink) Logs(level *Level) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if level == nil {
		out := make([]Entry, len(s.ring))
		copy(out, s.ring)
		return out
	}

	want := level.String()
	out := []Entry{}
	for _, e := range s.ring {
		if e.Level == want {
			out = append(out, e)
		}
	}
	return out
}

// StoredLogs returns the persisted bucket for the given day (DayFormat).
// An empty date means today. Missing or malformed buckets return an empty
// slice, never an error.
func (s *Sink) StoredLogs(date string) []Entry {
	if s.store == nil {
		return []Entry{}
	}
	if date == "" {
		date = s.now().Format(DayFormat)
	}

	entries, err := s.store.Day(date)
	if err != nil {
		s.mirror.Warn("log sink: failed to read stored logs", "date", date, "error", err)
		return []Entry{}
	}
	return entries
}

// Export formats the persisted bucket for the given day (default today) as
// a plain-text document, one line per entry:
//
//	[timestamp] LEVEL: [source] [User: id] message | Data: json
func (s *Sink) Export(date string) string {
	entries := s.StoredLogs(date)

	var b strings.Builder
	for _, e := range entries {
		b.WriteString(formatEntry(e))
		b.WriteString("\n")
	}
	return b.String()
}

// ClearOld removes persisted day buckets older than daysToKeep days and
// returns how many buckets were removed. daysToKeep <= 0 falls back to the
// default retention window.
func (s *Sink) ClearOld(daysToKeep int) int {
	if s.store == nil {
		return 0
	}
	if daysToKeep <= 0 {
		daysToKeep = DefaultRetentionDays
	}

	days, err := s.store.Days()
	if err != nil {
		s.mirror.Warn("log sink: failed to list stored days", "error", err)
		return 0
	}

	today, _ := time.Parse(DayFormat, s.now().Format(DayFormat))
	cutoff := today.AddDate(0, 0, -daysToKeep)

	removed := 0
	sort.Strings(days)
	for _, day := range days {
		d, err := time.Parse(DayFormat, day)
		if err != nil {
			// Unparseable bucket keys are stale garbage; drop them too.
			if err := s.store.DeleteDay(day); err == nil {
				removed++
			}
			continue
		}
		if d.Before(cutoff) {
			if err := s.store.DeleteDay(day); err != nil {
				s.mirror.Warn("log sink: failed to delete bucket", "date", day, "error", err)
				continue
			}
			removed++
		}
	}
	return removed
}

// SetLevel changes the verbosity threshold. The change is itself recorded
// at INFO.
func (s *Sink) SetLevel(level Level) {
	s.mu.Lock()
	s.level = level
	s.mu.Unlock()

	s.Log(LevelInfo, fmt.Sprintf("log level set to %s", level), nil, "logsink", "")
}

// Level returns the current verbosity threshold.
func (s *Sink) Level() Level {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level
}

func formatEntry(e Entry) string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(e.Timestamp)
	b.WriteString("] ")
	b.WriteString(e.Level)
	b.WriteString(":")
	if e.Source != "" {
		b.WriteString(" [")
		b.WriteString(e.Source)
		b.WriteString("]")
	}
	if e.UserID != "" {
		b.WriteString(" [User: ")
		b.WriteString(e.UserID)
		b.WriteString("]")
	}
	b.WriteString(" ")
	b.WriteString(e.Message)
	if e.Data != nil {
		b.WriteString(" | Data: ")
		b.WriteString(marshalData(e.Data))
	}
	return b.String()
}
