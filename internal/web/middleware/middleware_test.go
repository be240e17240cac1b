package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/trinexa/trinexa-web/internal/web/db"
	"github.com/trinexa/trinexa-web/internal/web/models"
	"github.com/trinexa/trinexa-web/internal/web/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupSessions(t *testing.T) (*Sessions, *repository.UserRepository, *repository.SessionRepository) {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	if err := database.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	users := repository.NewUserRepository(database.DB)
	sessions := repository.NewSessionRepository(database.DB)
	return NewSessions(sessions, users, testLogger()), users, sessions
}

func createUser(t *testing.T, users *repository.UserRepository, role string) *models.User {
	t.Helper()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	u := &models.User{
		Email:        role + "@trinexa.ai",
		PasswordHash: string(hash),
		Name:         "Test User",
		Role:         role,
	}
	if err := users.Create(u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func echoUser(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user := UserFromContext(r); user != nil {
			w.Write([]byte(user.Email))
			return
		}
		w.Write([]byte("anonymous"))
	})
}

func TestLoadUser_ValidSession(t *testing.T) {
	mw, users, sessions := setupSessions(t)
	user := createUser(t, users, models.RoleAdmin)
	session, err := sessions.Create(user.ID, time.Hour)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	req := httptest.NewRequest("GET", "/admin", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: session.ID})
	rec := httptest.NewRecorder()

	mw.LoadUser(echoUser(t)).ServeHTTP(rec, req)

	if got := rec.Body.String(); got != user.Email {
		t.Errorf("expected user %q in context, got %q", user.Email, got)
	}
}

func TestLoadUser_MissingCookie(t *testing.T) {
	mw, _, _ := setupSessions(t)

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()

	mw.LoadUser(echoUser(t)).ServeHTTP(rec, req)

	if got := rec.Body.String(); got != "anonymous" {
		t.Errorf("expected anonymous, got %q", got)
	}
}

func TestLoadUser_ExpiredSession(t *testing.T) {
	mw, users, sessions := setupSessions(t)
	user := createUser(t, users, models.RoleUser)
	session, err := sessions.Create(user.ID, -time.Minute)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: session.ID})
	rec := httptest.NewRecorder()

	mw.LoadUser(echoUser(t)).ServeHTTP(rec, req)

	if got := rec.Body.String(); got != "anonymous" {
		t.Errorf("expected anonymous for expired session, got %q", got)
	}
}

func TestRequireUser_RedirectsAnonymous(t *testing.T) {
	rec := httptest.NewRecorder()
	RequireUser(echoUser(t)).ServeHTTP(rec, httptest.NewRequest("GET", "/admin", nil))

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/auth/login" {
		t.Errorf("expected redirect to /auth/login, got %q", loc)
	}
}

func TestRequireAdmin_ForbidsRegularUser(t *testing.T) {
	mw, users, sessions := setupSessions(t)
	user := createUser(t, users, models.RoleUser)
	session, _ := sessions.Create(user.ID, time.Hour)

	req := httptest.NewRequest("GET", "/admin", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: session.ID})
	rec := httptest.NewRecorder()

	mw.LoadUser(RequireAdmin(echoUser(t))).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for non-admin, got %d", rec.Code)
	}
}

func TestRequireAdmin_AllowsAdmin(t *testing.T) {
	mw, users, sessions := setupSessions(t)
	user := createUser(t, users, models.RoleAdmin)
	session, _ := sessions.Create(user.ID, time.Hour)

	req := httptest.NewRequest("GET", "/admin", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: session.ID})
	rec := httptest.NewRecorder()

	mw.LoadUser(RequireAdmin(echoUser(t))).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for admin, got %d", rec.Code)
	}
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter()

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4", 3, 10) {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("1.2.3.4", 3, 10) {
		t.Error("fourth request within a minute should be denied")
	}
	if !rl.Allow("5.6.7.8", 3, 10) {
		t.Error("different key should not share counters")
	}
}

func TestFormThrottle_OnlyLimitsPosts(t *testing.T) {
	rl := NewRateLimiter()
	handler := FormThrottle(rl, 1, 10)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	post := func() int {
		req := httptest.NewRequest("POST", "/book-demo", nil)
		req.RemoteAddr = "9.9.9.9:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := post(); code != http.StatusOK {
		t.Errorf("first POST expected 200, got %d", code)
	}
	if code := post(); code != http.StatusTooManyRequests {
		t.Errorf("second POST expected 429, got %d", code)
	}

	req := httptest.NewRequest("GET", "/book-demo", nil)
	req.RemoteAddr = "9.9.9.9:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("GET should not be throttled, got %d", rec.Code)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(r *http.Request)
		expect string
	}{
		{"remote addr", func(r *http.Request) { r.RemoteAddr = "10.0.0.1:5555" }, "10.0.0.1"},
		{"x-forwarded-for", func(r *http.Request) {
			r.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
		}, "203.0.113.5"},
		{"x-real-ip", func(r *http.Request) { r.Header.Set("X-Real-IP", "198.51.100.7") }, "198.51.100.7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			tt.setup(req)
			if got := ClientIP(req); got != tt.expect {
				t.Errorf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}
