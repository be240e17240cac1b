package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "web.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q, want :8080", cfg.Server.ListenAddr)
	}
	if cfg.LogSink.RetentionDays != 7 {
		t.Errorf("RetentionDays = %d, want 7", cfg.LogSink.RetentionDays)
	}
	if !cfg.Auth.LocalEnabled {
		t.Error("local auth should default to enabled without OIDC")
	}
	if cfg.Auth.SessionTTL != 24*time.Hour {
		t.Errorf("SessionTTL = %v, want 24h", cfg.Auth.SessionTTL)
	}
	if cfg.Outbox.MaxRetries != 5 {
		t.Errorf("Outbox.MaxRetries = %d, want 5", cfg.Outbox.MaxRetries)
	}
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_addr: ":9000"
database:
  path: /tmp/test.db
logging:
  level: debug
  format: json
log_sink:
  level: warn
  retention_days: 14
worker:
  poll_interval: 5s
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.ListenAddr != ":9000" {
		t.Errorf("ListenAddr = %q", cfg.Server.ListenAddr)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q", cfg.Logging.Format)
	}
	if cfg.LogSink.RetentionDays != 14 {
		t.Errorf("RetentionDays = %d", cfg.LogSink.RetentionDays)
	}
	if cfg.Worker.PollInterval != 5*time.Second {
		t.Errorf("Worker.PollInterval = %v", cfg.Worker.PollInterval)
	}
	// Untouched section keeps defaults.
	if cfg.Metrics.Path != "/metrics" {
		t.Errorf("Metrics.Path = %q", cfg.Metrics.Path)
	}
}

func TestLoad_InvalidFormat(t *testing.T) {
	path := writeConfig(t, "logging:\n  format: xml\n")
	if _, err := Load(path); err == nil {
		t.Fatal("Load() expected error for invalid logging format")
	}
}

func TestLoad_OIDCValidation(t *testing.T) {
	path := writeConfig(t, `
auth:
  oidc:
    enabled: true
    issuer_url: https://id.example.com
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load() expected error for incomplete OIDC config")
	}
}

func TestLoad_MailValidation(t *testing.T) {
	path := writeConfig(t, `
mail:
  enabled: true
  from: noreply@trinexa.example
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load() expected error for mail without host")
	}
}
