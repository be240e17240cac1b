package handlers

import (
	"net/http"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/trinexa/trinexa-web/internal/web/middleware"
	"github.com/trinexa/trinexa-web/internal/web/models"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// LoginPage shows the login form.
func (h *Handlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	if middleware.UserFromContext(r) != nil {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	h.render(w, r, "login", map[string]any{
		"OIDCEnabled": h.oidc != nil,
	})
}

// Login handles the password login form.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(strings.ToLower(r.FormValue("email")))
	password := r.FormValue("password")

	user, err := h.users.GetByEmail(email)
	if err != nil {
		h.error(w, http.StatusInternalServerError, "login failed")
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		h.render(w, r, "login", map[string]any{
			"Error":       "Invalid email or password",
			"OIDCEnabled": h.oidc != nil,
		})
		return
	}

	h.startSession(w, r, user)
}

// RegisterPage shows the registration form.
func (h *Handlers) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "register", map[string]any{"Form": map[string]string{}})
}

// Register handles self-service account creation. New accounts get the
// regular user role; admin is granted from the CLI or through SSO domains.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	form := map[string]string{
		"name":  strings.TrimSpace(r.FormValue("name")),
		"email": strings.TrimSpace(strings.ToLower(r.FormValue("email"))),
	}
	password := r.FormValue("password")
	confirm := r.FormValue("password_confirm")

	var errs []string
	if form["name"] == "" {
		errs = append(errs, "Name is required")
	}
	if !emailPattern.MatchString(form["email"]) {
		errs = append(errs, "A valid email address is required")
	}
	if len(password) < 8 {
		errs = append(errs, "Password must be at least 8 characters")
	}
	if password != confirm {
		errs = append(errs, "Passwords do not match")
	}
	if r.FormValue("terms") == "" {
		errs = append(errs, "You must accept the terms of service")
	}
	if len(errs) == 0 {
		existing, err := h.users.GetByEmail(form["email"])
		if err != nil {
			h.error(w, http.StatusInternalServerError, "registration failed")
			return
		}
		if existing != nil {
			errs = append(errs, "An account with this email already exists")
		}
	}
	if len(errs) > 0 {
		h.render(w, r, "register", map[string]any{"Errors": errs, "Form": form})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.error(w, http.StatusInternalServerError, "registration failed")
		return
	}

	user := &models.User{
		Email:        form["email"],
		PasswordHash: string(hash),
		Name:         form["name"],
		Role:         models.RoleUser,
	}
	if err := h.users.Create(user); err != nil {
		h.error(w, http.StatusInternalServerError, "registration failed")
		return
	}

	h.enqueueWelcome(user)
	h.startSession(w, r, user)
}

// Logout destroys the session.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookie); err == nil {
		if err := h.sessions.Delete(cookie.Value); err != nil {
			h.logger.Warn("session delete failed", "error", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}

// OIDCLogin redirects to the identity provider.
func (h *Handlers) OIDCLogin(w http.ResponseWriter, r *http.Request) {
	if h.oidc == nil {
		h.error(w, http.StatusNotFound, "SSO is not configured")
		return
	}
	url, _, err := h.oidc.AuthCodeURL()
	if err != nil {
		h.error(w, http.StatusInternalServerError, "SSO sign-in failed")
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// OIDCCallback completes the SSO flow. First-time SSO users are created on
// the fly; the role follows the configured admin domains.
func (h *Handlers) OIDCCallback(w http.ResponseWriter, r *http.Request) {
	if h.oidc == nil {
		h.error(w, http.StatusNotFound, "SSO is not configured")
		return
	}

	info, err := h.oidc.Exchange(r.Context(), r.URL.Query().Get("state"), r.URL.Query().Get("code"))
	if err != nil {
		h.logger.Warn("oidc exchange failed", "error", err)
		h.render(w, r, "login", map[string]any{
			"Error":       "SSO sign-in failed",
			"OIDCEnabled": true,
		})
		return
	}

	email := strings.ToLower(info.Email)
	user, err := h.users.GetByEmail(email)
	if err != nil {
		h.error(w, http.StatusInternalServerError, "login failed")
		return
	}
	if user == nil {
		role := models.RoleUser
		if h.oidc.IsAdminEmail(email) {
			role = models.RoleAdmin
		}
		user = &models.User{Email: email, Name: info.Name, Role: role}
		if err := h.users.Create(user); err != nil {
			h.error(w, http.StatusInternalServerError, "login failed")
			return
		}
		h.enqueueWelcome(user)
	}

	h.startSession(w, r, user)
}

func (h *Handlers) startSession(w http.ResponseWriter, r *http.Request, user *models.User) {
	session, err := h.sessions.Create(user.ID, h.cfg.Auth.SessionTTL)
	if err != nil {
		h.error(w, http.StatusInternalServerError, "login failed")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    session.ID,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.cfg.Server.TLS.Enabled,
	})

	if user.IsAdmin() {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
