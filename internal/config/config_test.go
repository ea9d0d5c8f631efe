package config

import (
	"testing"
	"time"
)

func validBase() Config {
	return Config{
		App:   AppConfig{Env: "local", Port: 8080},
		DB:    DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "portal"},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		Auth:  AuthConfig{JWTSecret: "secret"},
	}
}

func TestValidate_ReportsMissingRequired(t *testing.T) {
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidate_ProductionRequiresSSLModeAndIssuer(t *testing.T) {
	c := validBase()
	c.App.Env = "production"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for production without DB_SSLMODE/JWT_ISSUER")
	}
}

func TestValidate_LocalDefaults(t *testing.T) {
	c := validBase()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected sslmode disable default, got %q", c.DB.SSLMode)
	}
	if c.Auth.AccessTokenTTL != 15*time.Minute {
		t.Fatalf("expected 15m token ttl default, got %s", c.Auth.AccessTokenTTL)
	}
	if c.Tenancy.CacheTTL != 5*time.Second {
		t.Fatalf("expected 5s tenant cache ttl default, got %s", c.Tenancy.CacheTTL)
	}
	if c.Login.AttemptLimit != 10 {
		t.Fatalf("expected login attempt limit default, got %d", c.Login.AttemptLimit)
	}
}

func TestValidate_RejectsOversizedStalenessWindows(t *testing.T) {
	c := validBase()
	c.Tenancy.CacheTTL = 30 * time.Second
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for tenant cache ttl above 5s")
	}

	c = validBase()
	c.Auth.Leeway = 5 * time.Minute
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for leeway above 60s")
	}
}
