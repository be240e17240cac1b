// Package server assembles the application: database, log sink, outbox,
// mailer, background workers, metrics, and the HTTP router.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/trinexa/trinexa-web/internal/config"
	"github.com/trinexa/trinexa-web/internal/content"
	"github.com/trinexa/trinexa-web/internal/logsink"
	"github.com/trinexa/trinexa-web/internal/mailer"
	"github.com/trinexa/trinexa-web/internal/metrics"
	"github.com/trinexa/trinexa-web/internal/notify"
	"github.com/trinexa/trinexa-web/internal/storage"
	"github.com/trinexa/trinexa-web/internal/web/auth"
	"github.com/trinexa/trinexa-web/internal/web/db"
	"github.com/trinexa/trinexa-web/internal/web/handlers"
	"github.com/trinexa/trinexa-web/internal/web/middleware"
	"github.com/trinexa/trinexa-web/internal/web/repository"
	"github.com/trinexa/trinexa-web/internal/web/static"
	"github.com/trinexa/trinexa-web/internal/web/views"
	"github.com/trinexa/trinexa-web/internal/worker"
)

// Public form endpoints share one per-IP throttle.
const (
	formLimitPerMinute = 5
	formLimitPerHour   = 30
)

type Server struct {
	cfg    *config.Config
	logger *slog.Logger

	db     *db.DB
	views  *views.Engine
	sink   *logsink.Sink
	outbox *notify.Outbox
	cache  *content.Cache
	m      *metrics.Metrics

	http          *http.Server
	metricsServer *metrics.Server
	sampler       *metrics.Sampler
	dispatcher    *notify.Dispatcher
	campaign      *worker.Campaign
	sessions      *repository.SessionRepository
}

func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	database, err := db.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := database.Migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if n, err := database.Seed(); err != nil {
		return nil, fmt.Errorf("failed to seed sections: %w", err)
	} else if n > 0 {
		logger.Info("seeded page sections", "count", n)
	}

	viewEngine, err := views.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize views: %w", err)
	}

	m := metrics.New()

	// Log sink with its persisted day-bucket store.
	sinkLevel, err := logsink.ParseLevel(cfg.LogSink.Level)
	if err != nil {
		logger.Warn("invalid log sink level, using INFO", "level", cfg.LogSink.Level)
		sinkLevel = logsink.LevelInfo
	}
	var store *logsink.Store
	if cfg.LogSink.Path != "" {
		store, err = logsink.OpenStore(cfg.LogSink.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open log store: %w", err)
		}
	}
	// An admin-adjusted level persisted through the console wins over config.
	settings := repository.NewSettingsRepository(database.DB)
	if stored, err := settings.Get(handlers.SettingLogSinkLevel); err == nil && stored != "" {
		if level, err := logsink.ParseLevel(stored); err == nil {
			sinkLevel = level
		}
	}

	sink := logsink.New(sinkLevel, store, logger)
	sink.SetObserver(func(level logsink.Level) {
		m.LogEntriesTotal.WithLabelValues(strings.ToLower(level.String())).Inc()
	})

	var oidcProvider *auth.OIDCProvider
	if cfg.Auth.OIDC.Enabled {
		oidcProvider, err = auth.NewOIDCProvider(context.Background(), &cfg.Auth.OIDC)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OIDC provider: %w", err)
		}
		logger.Info("OIDC provider initialized", "issuer", cfg.Auth.OIDC.IssuerURL)
	}

	outbox, err := notify.Open(cfg.Outbox.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open outbox: %w", err)
	}

	mail, err := mailer.New(cfg.Mail, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mailer: %w", err)
	}

	dispatcher := notify.NewDispatcher(outbox, mail,
		notify.DispatcherConfig{
			Workers:       cfg.Outbox.Workers,
			MaxRetries:    cfg.Outbox.MaxRetries,
			RetryInterval: cfg.Outbox.RetryInterval,
			PollInterval:  cfg.Outbox.PollInterval,
		},
		notify.Hooks{
			Delivered: m.NotificationsSentTotal.Inc,
			Failed:    m.NotificationsFailedTotal.Inc,
		},
		logger.With("component", "dispatcher"),
	)

	var uploads *storage.UploadStore
	if cfg.Uploads.Dir != "" {
		uploads, err = storage.NewUploadStore(cfg.Uploads.Dir, cfg.Uploads.MaxSizeBytes, cfg.Uploads.Extensions)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize upload store: %w", err)
		}
	}

	sections := repository.NewPageSectionRepository(database.DB)
	pageContent := repository.NewPageContentRepository(database.DB)
	cache := content.NewCache(content.NewResolver(sections, pageContent, sink))

	campaign := worker.NewCampaign(
		worker.Config{PollInterval: cfg.Worker.PollInterval, BatchSize: cfg.Worker.BatchSize},
		repository.NewMessageRepository(database.DB),
		outbox,
		logger.With("component", "campaign"),
	)
	campaign.Processed = m.ScheduledMessagesProcessedTotal.Inc

	s := &Server{
		cfg:        cfg,
		logger:     logger,
		db:         database,
		views:      viewEngine,
		sink:       sink,
		outbox:     outbox,
		cache:      cache,
		m:          m,
		dispatcher: dispatcher,
		campaign:   campaign,
		sessions:   repository.NewSessionRepository(database.DB),
	}

	if cfg.Metrics.Enabled {
		s.metricsServer = metrics.NewServer(m, cfg.Metrics.ListenAddr, cfg.Metrics.Path, logger)
		s.sampler = metrics.NewSampler(m, outbox, 0, logger)
	}

	h := handlers.New(handlers.Deps{
		Cfg:     cfg,
		DB:      database,
		Views:   viewEngine,
		Sink:    sink,
		Outbox:  outbox,
		Cache:   cache,
		Uploads: uploads,
		Metrics: m,
		OIDC:    oidcProvider,
		Logger:  logger,
	})

	s.http = &http.Server{
		Addr:         cfg.Server.ListenAddr,
		Handler:      s.setupRoutes(h),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

func (s *Server) setupRoutes(h *handlers.Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recovery(s.logger))
	r.Use(middleware.Logger(s.logger))
	r.Use(s.m.Middleware)
	r.Use(middleware.MethodOverride)

	sessions := middleware.NewSessions(
		s.sessions,
		repository.NewUserRepository(s.db.DB),
		s.logger,
	)
	r.Use(sessions.LoadUser)

	r.Get("/health", h.Health)
	r.Handle("/static/*", http.StripPrefix("/static/", static.Handler()))

	// Public marketing pages
	r.Get("/", h.Home)
	r.Get("/about", h.About)
	r.Get("/products", h.Products)
	r.Get("/careers", h.Careers)

	// Public forms, throttled per IP
	throttle := middleware.FormThrottle(middleware.NewRateLimiter(), formLimitPerMinute, formLimitPerHour)
	r.Group(func(r chi.Router) {
		r.Use(throttle)
		r.Get("/book-demo", h.BookDemoPage)
		r.Post("/book-demo", h.BookDemo)
		r.Get("/careers/apply", h.ApplyGeneralPage)
		r.Post("/careers/apply", h.ApplyGeneral)
		r.Get("/careers/{id}", h.PositionDetail)
		r.Post("/careers/{id}/apply", h.ApplyJob)
	})

	// Auth
	r.Route("/auth", func(r chi.Router) {
		r.Get("/login", h.LoginPage)
		r.Post("/login", h.Login)
		r.Get("/register", h.RegisterPage)
		r.Post("/register", h.Register)
		r.Post("/logout", h.Logout)
		r.Get("/oidc", h.OIDCLogin)
		r.Get("/callback", h.OIDCCallback)
	})

	// Admin console
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdmin)

		r.Get("/", h.Dashboard)

		r.Get("/content", h.ContentIndex)
		r.Get("/content/{pageID}/{sectionID}", h.ContentEdit)
		r.Post("/content/{pageID}/{sectionID}", h.ContentSave)
		r.Post("/content/{pageID}/{sectionID}/reset", h.ContentReset)

		r.Get("/positions", h.PositionsAdmin)
		r.Get("/positions/new", h.PositionNew)
		r.Post("/positions", h.PositionCreate)
		r.Get("/positions/{id}", h.PositionEditPage)
		r.Put("/positions/{id}", h.PositionUpdate)
		r.Delete("/positions/{id}", h.PositionDelete)

		r.Get("/products", h.ProductsAdmin)
		r.Get("/products/new", h.ProductNew)
		r.Post("/products", h.ProductCreate)
		r.Get("/products/{id}", h.ProductEditPage)
		r.Put("/products/{id}", h.ProductUpdate)
		r.Delete("/products/{id}", h.ProductDelete)

		r.Get("/applications", h.ApplicationsAdmin)
		r.Post("/applications/{kind}/{id}/status", h.ApplicationSetStatus)
		r.Get("/uploads/{name}", h.ResumeDownload)

		r.Get("/bookings", h.BookingsAdmin)
		r.Post("/bookings/{id}/status", h.BookingSetStatus)

		r.Get("/templates", h.TemplatesAdmin)
		r.Get("/templates/new", h.TemplateNew)
		r.Post("/templates", h.TemplateCreate)
		r.Get("/templates/export", h.TemplatesExport)
		r.Get("/templates/{kind}/{id}", h.TemplateEditPage)
		r.Put("/templates/{kind}/{id}", h.TemplateUpdate)
		r.Delete("/templates/{kind}/{id}", h.TemplateDelete)
		r.Get("/templates/{kind}/{id}/preview", h.TemplatePreview)

		r.Get("/messages", h.MessagesAdmin)
		r.Get("/messages/new", h.MessageCompose)
		r.Post("/messages", h.MessageSchedule)
		r.Post("/messages/{id}/cancel", h.MessageCancel)

		r.Get("/logs", h.LogsAdmin)
		r.Get("/logs/export", h.LogsExport)
		r.Post("/logs/level", h.LogsSetLevel)
		r.Post("/logs/cleanup", h.LogsCleanup)
	})

	return r
}

// Run starts the application and blocks until the context is cancelled or
// the listener fails.
func (s *Server) Run(ctx context.Context) error {
	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	s.dispatcher.Start(workerCtx)
	go s.campaign.Run(workerCtx)
	go s.sessionCleanup(workerCtx)

	if s.metricsServer != nil {
		go func() {
			if err := s.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				s.logger.Error("metrics server failed", "error", err)
			}
		}()
		go s.sampler.Run(workerCtx)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting web server", "addr", s.cfg.Server.ListenAddr)
		if s.cfg.Server.TLS.Enabled {
			errCh <- s.http.ListenAndServeTLS(s.cfg.Server.TLS.CertFile, s.cfg.Server.TLS.KeyFile)
		} else {
			errCh <- s.http.ListenAndServe()
		}
	}()

	select {
	case err := <-errCh:
		s.shutdown(stopWorkers)
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("shutdown error", "error", err)
		}
		s.shutdown(stopWorkers)
		return nil
	}
}

func (s *Server) shutdown(stopWorkers context.CancelFunc) {
	stopWorkers()
	s.dispatcher.Stop()
	if s.metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("metrics shutdown error", "error", err)
		}
	}
	if err := s.outbox.Close(); err != nil {
		s.logger.Warn("outbox close error", "error", err)
	}
	if err := s.db.Close(); err != nil {
		s.logger.Warn("database close error", "error", err)
	}
}

// sessionCleanup periodically drops expired sessions.
func (s *Server) sessionCleanup(ctx context.Context) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := s.sessions.DeleteExpired(); err != nil {
				s.logger.Warn("session cleanup failed", "error", err)
			} else if n > 0 {
				s.logger.Info("expired sessions removed", "count", n)
			}
		}
	}
}
