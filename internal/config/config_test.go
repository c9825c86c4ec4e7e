package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ferdiebergado/storyboard/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"server": {"port": 9000, "read_timeout": "3s"},
		"placement": {"history_limit": 5}
	}`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("config.Load(%q) = %v, want: nil", path, err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("cfg.Server.Port = %d, want: %d", cfg.Server.Port, 9000)
	}

	if got, want := cfg.Server.ReadTimeout.Duration, 3*time.Second; got != want {
		t.Errorf("cfg.Server.ReadTimeout = %v, want: %v", got, want)
	}

	if cfg.Placement.HistoryLimit != 5 {
		t.Errorf("cfg.Placement.HistoryLimit = %d, want: %d", cfg.Placement.HistoryLimit, 5)
	}

	defaults := config.Defaults()
	if cfg.JWT.Issuer != defaults.JWT.Issuer {
		t.Errorf("cfg.JWT.Issuer = %q, want default: %q", cfg.JWT.Issuer, defaults.JWT.Issuer)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `{"server": {"port": 9000}}`)

	t.Setenv("PORT", "9100")
	t.Setenv("FUNCTIONS_URL", "http://functions.test")
	t.Setenv("BILLING_WEBHOOK_SECRET", "whsec")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("config.Load(%q) = %v, want: nil", path, err)
	}

	if cfg.Server.Port != 9100 {
		t.Errorf("cfg.Server.Port = %d, want: %d", cfg.Server.Port, 9100)
	}

	if cfg.Functions.BaseURL != "http://functions.test" {
		t.Errorf("cfg.Functions.BaseURL = %q, want: %q", cfg.Functions.BaseURL, "http://functions.test")
	}

	if cfg.Billing.WebhookSecret != "whsec" {
		t.Errorf("cfg.Billing.WebhookSecret = %q, want: %q", cfg.Billing.WebhookSecret, "whsec")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("config.Load(missing) = nil, want: error")
	}
}
