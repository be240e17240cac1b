// Package middleware carries the HTTP cross-cutting concerns: request
// logging, panic recovery, session authentication, role gating, and
// per-IP rate limiting for the public forms.
package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/trinexa/trinexa-web/internal/web/models"
	"github.com/trinexa/trinexa-web/internal/web/repository"
)

// SessionCookie is the session cookie name.
const SessionCookie = "session"

type ctxKey string

const ctxKeyUser ctxKey = "user"

// Logger logs every request with status and duration.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.status,
				"duration", time.Since(start),
				"ip", ClientIP(r),
			)
		})
	}
}

// Recovery converts handler panics into 500 responses.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic recovered",
						"error", err,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// MethodOverride honors a _method form field on POST requests, so HTML
// forms can express PUT and DELETE.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if method := r.FormValue("_method"); method != "" {
				r.Method = method
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Sessions is the session and user lookup shared by the auth middlewares.
type Sessions struct {
	sessions *repository.SessionRepository
	users    *repository.UserRepository
	logger   *slog.Logger
}

// NewSessions wires the session middleware state.
func NewSessions(sessions *repository.SessionRepository, users *repository.UserRepository, logger *slog.Logger) *Sessions {
	return &Sessions{sessions: sessions, users: users, logger: logger}
}

// LoadUser resolves the session cookie into a user and stores it in the
// request context. Requests without a valid session pass through without
// a user; gating is left to RequireUser and RequireAdmin.
func (s *Sessions) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookie)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		session, err := s.sessions.Get(cookie.Value)
		if err != nil {
			s.logger.Error("session lookup failed", "error", err)
			next.ServeHTTP(w, r)
			return
		}
		if session == nil {
			next.ServeHTTP(w, r)
			return
		}

		user, err := s.users.GetByID(session.UserID)
		if err != nil || user == nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyUser, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireUser redirects unauthenticated requests to the login page.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFromContext(r) == nil {
			http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin gates a subtree to users with the admin role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := UserFromContext(r)
		if user == nil {
			http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
			return
		}
		if !user.IsAdmin() {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserFromContext returns the authenticated user, or nil.
func UserFromContext(r *http.Request) *models.User {
	if user, ok := r.Context().Value(ctxKeyUser).(*models.User); ok {
		return user
	}
	return nil
}

// RateLimiter is an in-memory per-key counter with minute and hour
// windows, used on the public form endpoints.
type RateLimiter struct {
	mu       sync.Mutex
	counters map[string]*rateLimitCounter
}

type rateLimitCounter struct {
	minuteCount int
	hourCount   int
	minuteReset time.Time
	hourReset   time.Time
}

// NewRateLimiter starts the limiter and its cleanup loop.
func NewRateLimiter() *RateLimiter {
	rl := &RateLimiter{counters: make(map[string]*rateLimitCounter)}
	go rl.cleanup()
	return rl
}

// Allow checks and increments the counters for a key. A limit of zero
// disables that window.
func (rl *RateLimiter) Allow(key string, limitMinute, limitHour int) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	counter, exists := rl.counters[key]
	if !exists {
		counter = &rateLimitCounter{
			minuteReset: now.Add(time.Minute),
			hourReset:   now.Add(time.Hour),
		}
		rl.counters[key] = counter
	}

	if now.After(counter.minuteReset) {
		counter.minuteCount = 0
		counter.minuteReset = now.Add(time.Minute)
	}
	if now.After(counter.hourReset) {
		counter.hourCount = 0
		counter.hourReset = now.Add(time.Hour)
	}

	if limitMinute > 0 && counter.minuteCount >= limitMinute {
		return false
	}
	if limitHour > 0 && counter.hourCount >= limitHour {
		return false
	}

	counter.minuteCount++
	counter.hourCount++
	return true
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for key, counter := range rl.counters {
			if now.After(counter.minuteReset) && now.After(counter.hourReset) {
				delete(rl.counters, key)
			}
		}
		rl.mu.Unlock()
	}
}

// FormThrottle limits public form POSTs per client IP.
func FormThrottle(rl *RateLimiter, limitMinute, limitHour int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost && !rl.Allow(ClientIP(r), limitMinute, limitHour) {
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP extracts the client address, honoring proxy headers.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if parts := strings.Split(xff, ","); len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
