package config

import (
	"testing"
	"time"
)

func TestLoadConfigDefaultsJWTSecretToSessionSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("RATE_LIMIT_WINDOW", "5m")
	t.Setenv("RATE_LIMIT_AUTH", "not-a-number")

	cfg := LoadConfig()

	if cfg.JWTSecret != "s3cret" {
		t.Fatalf("expected jwt secret to fall back to session secret, got %q", cfg.JWTSecret)
	}
	if cfg.RateLimitWindow != 5*time.Minute {
		t.Fatalf("expected 5m window, got %s", cfg.RateLimitWindow)
	}
	if cfg.RateLimitAuth != 10 {
		t.Fatalf("expected default auth limit on bad input, got %d", cfg.RateLimitAuth)
	}
}

func TestValidateRequiresSecretsInProduction(t *testing.T) {
	cfg := &Config{Environment: "production", JWTSecret: defaultSecret}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for default secret in production")
	}

	cfg = &Config{Environment: "production", JWTSecret: "x", RazorpayKeyID: "k", RazorpayKeySecret: "s"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg = &Config{Environment: "development", JWTSecret: defaultSecret}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("development should accept defaults: %v", err)
	}
}
