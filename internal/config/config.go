package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the main configuration structure
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	LogSink  LogSinkConfig  `yaml:"log_sink"`
	Auth     AuthConfig     `yaml:"auth"`
	Mail     MailConfig     `yaml:"mail"`
	Outbox   OutboxConfig   `yaml:"outbox"`
	Worker   WorkerConfig   `yaml:"worker"`
	Uploads  UploadsConfig  `yaml:"uploads"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Site     SiteConfig     `yaml:"site"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	ListenAddr string    `yaml:"listen_addr"`
	BaseURL    string    `yaml:"base_url"`
	TLS        TLSConfig `yaml:"tls"`
}

// TLSConfig contains TLS settings for the HTTP server
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// DatabaseConfig contains SQLite settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig contains slog mirror settings
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// LogSinkConfig contains the diagnostic log sink settings
type LogSinkConfig struct {
	Path          string `yaml:"path"`           // bbolt file for day buckets
	Level         string `yaml:"level"`          // sink verbosity threshold
	RetentionDays int    `yaml:"retention_days"` // persisted bucket retention
}

// AuthConfig contains authentication settings
type AuthConfig struct {
	SessionTTL   time.Duration `yaml:"session_ttl"`
	LocalEnabled bool          `yaml:"local_enabled"`
	OIDC         OIDCConfig    `yaml:"oidc"`
}

// OIDCConfig contains optional OIDC SSO settings for the admin console
type OIDCConfig struct {
	Enabled      bool     `yaml:"enabled"`
	Provider     string   `yaml:"provider"` // display name on the login page
	IssuerURL    string   `yaml:"issuer_url"`
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	RedirectURL  string   `yaml:"redirect_url"`
	Scopes       []string `yaml:"scopes"`
	AdminDomains []string `yaml:"admin_domains"` // email domains granted the admin role
}

// MailConfig contains outbound mail settings
type MailConfig struct {
	Enabled   bool       `yaml:"enabled"`
	Host      string     `yaml:"host"` // SMTP relay host
	Port      int        `yaml:"port"`
	Username  string     `yaml:"username"`
	Password  string     `yaml:"password"`
	From      string     `yaml:"from"`
	FromName  string     `yaml:"from_name"`
	StartTLS  bool       `yaml:"starttls"`
	Timeout   time.Duration `yaml:"timeout"`
	DKIM      DKIMConfig `yaml:"dkim"`
}

// DKIMConfig contains DKIM signing settings for outbound mail
type DKIMConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Domain   string `yaml:"domain"`
	Selector string `yaml:"selector"`
	KeyFile  string `yaml:"key_file"`
}

// OutboxConfig contains notification outbox settings
type OutboxConfig struct {
	Path          string        `yaml:"path"` // bbolt file
	Workers       int           `yaml:"workers"`
	MaxRetries    int           `yaml:"max_retries"`
	RetryInterval time.Duration `yaml:"retry_interval"`
	PollInterval  time.Duration `yaml:"poll_interval"`
}

// WorkerConfig contains scheduled-message worker settings
type WorkerConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	BatchSize    int           `yaml:"batch_size"`
}

// UploadsConfig contains resume/attachment upload settings
type UploadsConfig struct {
	Dir          string   `yaml:"dir"`
	MaxSizeBytes int64    `yaml:"max_size_bytes"`
	Extensions   []string `yaml:"extensions"` // allowed file extensions
}

// MetricsConfig contains Prometheus metrics settings
type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"`
	Path       string `yaml:"path"`
}

// SiteConfig contains site-wide identity settings
type SiteConfig struct {
	CompanyName  string `yaml:"company_name"`
	ProductName  string `yaml:"product_name"`
	ContactEmail string `yaml:"contact_email"`
}

// Load reads and validates configuration from a YAML file. A missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns the default configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = ":8080"
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = "http://localhost:8080"
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/trinexa.db"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.LogSink.Path == "" {
		c.LogSink.Path = "data/logs.db"
	}
	if c.LogSink.Level == "" {
		c.LogSink.Level = "info"
	}
	if c.LogSink.RetentionDays <= 0 {
		c.LogSink.RetentionDays = 7
	}
	if c.Auth.SessionTTL <= 0 {
		c.Auth.SessionTTL = 24 * time.Hour
	}
	if !c.Auth.OIDC.Enabled {
		c.Auth.LocalEnabled = true
	}
	if c.Mail.Port == 0 {
		c.Mail.Port = 587
	}
	if c.Mail.Timeout <= 0 {
		c.Mail.Timeout = 30 * time.Second
	}
	if c.Outbox.Path == "" {
		c.Outbox.Path = "data/outbox.db"
	}
	if c.Outbox.Workers <= 0 {
		c.Outbox.Workers = 2
	}
	if c.Outbox.MaxRetries <= 0 {
		c.Outbox.MaxRetries = 5
	}
	if c.Outbox.RetryInterval <= 0 {
		c.Outbox.RetryInterval = 5 * time.Minute
	}
	if c.Outbox.PollInterval <= 0 {
		c.Outbox.PollInterval = 10 * time.Second
	}
	if c.Worker.PollInterval <= 0 {
		c.Worker.PollInterval = 30 * time.Second
	}
	if c.Worker.BatchSize <= 0 {
		c.Worker.BatchSize = 50
	}
	if c.Uploads.Dir == "" {
		c.Uploads.Dir = "data/uploads"
	}
	if c.Uploads.MaxSizeBytes <= 0 {
		c.Uploads.MaxSizeBytes = 10 << 20
	}
	if len(c.Uploads.Extensions) == 0 {
		c.Uploads.Extensions = []string{".pdf", ".doc", ".docx", ".txt"}
	}
	if c.Metrics.ListenAddr == "" {
		c.Metrics.ListenAddr = ":9090"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Site.CompanyName == "" {
		c.Site.CompanyName = "Trinexa"
	}
	if c.Site.ProductName == "" {
		c.Site.ProductName = "NexusAI"
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Server.TLS.Enabled {
		if c.Server.TLS.CertFile == "" || c.Server.TLS.KeyFile == "" {
			return fmt.Errorf("server.tls requires cert_file and key_file")
		}
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	if c.Auth.OIDC.Enabled {
		if c.Auth.OIDC.IssuerURL == "" || c.Auth.OIDC.ClientID == "" || c.Auth.OIDC.ClientSecret == "" {
			return fmt.Errorf("auth.oidc requires issuer_url, client_id and client_secret")
		}
	}
	if c.Mail.Enabled {
		if c.Mail.Host == "" {
			return fmt.Errorf("mail requires host when enabled")
		}
		if c.Mail.From == "" {
			return fmt.Errorf("mail requires from when enabled")
		}
		if c.Mail.DKIM.Enabled {
			if c.Mail.DKIM.Domain == "" || c.Mail.DKIM.Selector == "" || c.Mail.DKIM.KeyFile == "" {
				return fmt.Errorf("mail.dkim requires domain, selector and key_file")
			}
		}
	}
	return nil
}
