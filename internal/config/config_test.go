package config

import (
	"testing"
	"time"
)

func TestLoad_ReportsMissingRequired(t *testing.T) {
	// Ensure a clean env by not setting anything and calling validation directly.
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidate_ProductionRequiresSSLMode(t *testing.T) {
	c := Config{
		App:      AppConfig{Env: "production", Port: 8080},
		DB:       DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "commerce", SSLMode: ""},
		Redis:    RedisConfig{Host: "localhost", Port: 6379},
		Identity: IdentityConfig{Secret: "secret", Issuer: "iss", Audience: "aud"},
	}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for production without DB_SSLMODE")
	}
}

func TestValidate_LocalDefaults(t *testing.T) {
	c := Config{
		App:      AppConfig{Env: "local", Port: 8080},
		DB:       DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "commerce", SSLMode: ""},
		Redis:    RedisConfig{Host: "localhost", Port: 6379},
		Identity: IdentityConfig{Secret: "secret"},
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected sslmode disable default, got %q", c.DB.SSLMode)
	}
	if c.Identity.SessionCookieName != "__session" {
		t.Fatalf("expected default cookie name, got %q", c.Identity.SessionCookieName)
	}
	if c.Identity.SkewTolerance != 15*time.Second {
		t.Fatalf("expected 15s skew default, got %v", c.Identity.SkewTolerance)
	}
}

func TestValidate_ProductionRequiresIssuerAndAudience(t *testing.T) {
	c := Config{
		App:      AppConfig{Env: "production", Port: 8080},
		DB:       DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "commerce", SSLMode: "require"},
		Redis:    RedisConfig{Host: "localhost", Port: 6379},
		Identity: IdentityConfig{Secret: "secret"},
	}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for production without issuer/audience")
	}
}
