// Package handlers implements the HTTP handlers of the marketing site and
// its admin panel.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/trinexa/trinexa-web/internal/config"
	"github.com/trinexa/trinexa-web/internal/content"
	"github.com/trinexa/trinexa-web/internal/logsink"
	"github.com/trinexa/trinexa-web/internal/metrics"
	"github.com/trinexa/trinexa-web/internal/notify"
	"github.com/trinexa/trinexa-web/internal/storage"
	"github.com/trinexa/trinexa-web/internal/web/auth"
	"github.com/trinexa/trinexa-web/internal/web/db"
	"github.com/trinexa/trinexa-web/internal/web/middleware"
	"github.com/trinexa/trinexa-web/internal/web/models"
	"github.com/trinexa/trinexa-web/internal/web/repository"
	"github.com/trinexa/trinexa-web/internal/web/views"
)

// Deps carries everything the handlers need. Metrics, Outbox, OIDC and the
// upload store may be nil when the corresponding subsystem is disabled.
type Deps struct {
	Cfg     *config.Config
	DB      *db.DB
	Views   *views.Engine
	Sink    *logsink.Sink
	Outbox  *notify.Outbox
	Cache   *content.Cache
	Uploads *storage.UploadStore
	Metrics *metrics.Metrics
	OIDC    *auth.OIDCProvider
	Logger  *slog.Logger
}

type Handlers struct {
	cfg     *config.Config
	views   *views.Engine
	sink    *logsink.Sink
	outbox  *notify.Outbox
	cache   *content.Cache
	uploads *storage.UploadStore
	metrics *metrics.Metrics
	oidc    *auth.OIDCProvider
	logger  *slog.Logger

	users            *repository.UserRepository
	sessions         *repository.SessionRepository
	sections         *repository.PageSectionRepository
	pageContent      *repository.PageContentRepository
	bookings         *repository.BookingRepository
	applications     *repository.ApplicationRepository
	positions        *repository.PositionRepository
	products         *repository.ProductRepository
	emailTemplates   *repository.EmailTemplateRepository
	messageTemplates *repository.MessageTemplateRepository
	messages         *repository.MessageRepository
	audit            *repository.AuditRepository
	settings         *repository.SettingsRepository
}

func New(d Deps) *Handlers {
	return &Handlers{
		cfg:     d.Cfg,
		views:   d.Views,
		sink:    d.Sink,
		outbox:  d.Outbox,
		cache:   d.Cache,
		uploads: d.Uploads,
		metrics: d.Metrics,
		oidc:    d.OIDC,
		logger:  d.Logger,

		users:            repository.NewUserRepository(d.DB.DB),
		sessions:         repository.NewSessionRepository(d.DB.DB),
		sections:         repository.NewPageSectionRepository(d.DB.DB),
		pageContent:      repository.NewPageContentRepository(d.DB.DB),
		bookings:         repository.NewBookingRepository(d.DB.DB),
		applications:     repository.NewApplicationRepository(d.DB.DB),
		positions:        repository.NewPositionRepository(d.DB.DB),
		products:         repository.NewProductRepository(d.DB.DB),
		emailTemplates:   repository.NewEmailTemplateRepository(d.DB.DB),
		messageTemplates: repository.NewMessageTemplateRepository(d.DB.DB),
		messages:         repository.NewMessageRepository(d.DB.DB),
		audit:            repository.NewAuditRepository(d.DB.DB),
		settings:         repository.NewSettingsRepository(d.DB.DB),
	}
}

// Health check
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// render renders an admin template inside the layout, injecting the
// authenticated user.
func (h *Handlers) render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data["User"]; !ok {
		data["User"] = middleware.UserFromContext(r)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.views.Render(w, name, data); err != nil {
		h.logger.Error("template render failed", "template", name, "error", err)
	}
}

// renderSite renders a standalone public page template.
func (h *Handlers) renderSite(w http.ResponseWriter, name string, data map[string]any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.views.Render(w, "site/"+name, data); err != nil {
		h.logger.Error("template render failed", "template", name, "error", err)
	}
}

func (h *Handlers) json(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("json encode failed", "error", err)
	}
}

func (h *Handlers) error(w http.ResponseWriter, status int, message string) {
	h.logger.Error("request error", "status", status, "message", message)
	http.Error(w, message, status)
}

// countForm records an accepted public form submission.
func (h *Handlers) countForm(form string) {
	if h.metrics != nil {
		h.metrics.FormSubmissionsTotal.WithLabelValues(form).Inc()
	}
}

// auditLog records an admin action; failures are logged and swallowed.
func (h *Handlers) auditLog(r *http.Request, action, entityType, entityID string) {
	e := &models.AuditEntry{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		IPAddress:  middleware.ClientIP(r),
	}
	if user := middleware.UserFromContext(r); user != nil {
		e.UserID = user.ID
		e.UserEmail = user.Email
	}
	if err := h.audit.Record(e); err != nil {
		h.logger.Warn("audit record failed", "action", action, "error", err)
	}
}
