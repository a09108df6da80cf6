package config

import (
	"os"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("FUNPAY_AUTH_TOKEN", "fp-token")
	t.Setenv("STEAM_API_USER", "user")
	t.Setenv("STEAM_API_PASS", "pass")
	t.Setenv("STEAM_API_BASE_URL", "https://provider.example")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.CategoryID != "1086" {
		t.Errorf("category: got %q, want %q", cfg.CategoryID, "1086")
	}
	if cfg.ServiceID != 1 {
		t.Errorf("service id: got %d, want 1", cfg.ServiceID)
	}
	if cfg.MinBalance != 5 {
		t.Errorf("min balance: got %v, want 5", cfg.MinBalance)
	}
	if !cfg.AutoRefund || !cfg.AutoDeactivate {
		t.Errorf("safety toggles must default on: refund=%v deactivate=%v", cfg.AutoRefund, cfg.AutoDeactivate)
	}
	if cfg.SessionTTL != time.Hour {
		t.Errorf("session ttl: got %v, want 1h", cfg.SessionTTL)
	}
	if cfg.HTTPRequestTimeout != 20*time.Second {
		t.Errorf("request timeout: got %v, want 20s", cfg.HTTPRequestTimeout)
	}
	if cfg.TokenRefreshInterval != 50*time.Minute {
		t.Errorf("token refresh interval: got %v, want 50m", cfg.TokenRefreshInterval)
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("AUTO_REFUND", "false")
	t.Setenv("MIN_BALANCE", "12.5")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("ADMIN_CHAT_ID", "admin-1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.AutoRefund {
		t.Error("auto refund override ignored")
	}
	if cfg.MinBalance != 12.5 {
		t.Errorf("min balance: got %v, want 12.5", cfg.MinBalance)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("session ttl: got %v, want 30m", cfg.SessionTTL)
	}
	if cfg.AdminChatID != "admin-1" {
		t.Errorf("admin chat: got %q", cfg.AdminChatID)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	setRequired(t)
	// t.Setenv registered the restore; unset to simulate a missing variable.
	os.Unsetenv("FUNPAY_AUTH_TOKEN")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error without the marketplace token")
	}
}
