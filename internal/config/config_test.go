package config

import (
	"testing"
	"time"
)

func TestLoadConfigRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error when JWT_SECRET is empty")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("JWT_EXPIRE", "7d")
	t.Setenv("APP_ENV", "dev")
	t.Setenv("CLIENT_STORE", "Redis")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.JWTExpiry != 7*24*time.Hour {
		t.Fatalf("expected 7 day expiry, got %s", cfg.JWTExpiry)
	}
	if cfg.AppEnv != "development" {
		t.Fatalf("expected development env, got %q", cfg.AppEnv)
	}
	if cfg.ClientStore != ClientStoreRedis {
		t.Fatalf("expected redis client store, got %q", cfg.ClientStore)
	}
}

func TestLoadConfigRejectsUnknownClientStore(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("CLIENT_STORE", "localstorage")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected unsupported client store error")
	}
}

func TestParseExpiry(t *testing.T) {
	cases := map[string]time.Duration{
		"90m": 90 * time.Minute,
		"24h": 24 * time.Hour,
		"1d":  24 * time.Hour,
	}
	for input, want := range cases {
		got, err := parseExpiry(input)
		if err != nil {
			t.Fatalf("parseExpiry(%q): %v", input, err)
		}
		if got != want {
			t.Fatalf("parseExpiry(%q) = %s, want %s", input, got, want)
		}
	}

	for _, input := range []string{"", "0d", "abc", "-5m"} {
		if _, err := parseExpiry(input); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}
