package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if errWrite := os.WriteFile(path, []byte(content), 0o600); errWrite != nil {
		t.Fatalf("write config: %v", errWrite)
	}
	return path
}

func TestLoadAppliesDefaultsForMissingFile(t *testing.T) {
	cfg, errLoad := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if errLoad != nil {
		t.Fatalf("load: %v", errLoad)
	}
	if cfg.Environment != EnvDevelopment {
		t.Fatalf("expected development default, got %q", cfg.Environment)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("expected default addr, got %q", cfg.Server.Addr)
	}
	if cfg.Auth.SessionTTL != 7*24*time.Hour {
		t.Fatalf("expected 7 day session ttl, got %v", cfg.Auth.SessionTTL)
	}
	if cfg.Auth.BcryptCost != 12 {
		t.Fatalf("expected default bcrypt cost 12, got %d", cfg.Auth.BcryptCost)
	}
}

func TestLoadReadsFileValues(t *testing.T) {
	path := writeConfig(t, `
environment: production
server:
  addr: ":9000"
auth:
  secret: file-secret
  session_ttl: 1h
`)
	cfg, errLoad := Load(path)
	if errLoad != nil {
		t.Fatalf("load: %v", errLoad)
	}
	if !cfg.IsProduction() {
		t.Fatal("expected production environment")
	}
	if cfg.Server.Addr != ":9000" {
		t.Fatalf("expected addr from file, got %q", cfg.Server.Addr)
	}
	if cfg.Auth.SessionTTL != time.Hour {
		t.Fatalf("expected 1h ttl from file, got %v", cfg.Auth.SessionTTL)
	}
}

func TestEnvOverridesFileValues(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9000"
`)
	t.Setenv("INKPRESS_ADDR", ":7070")
	t.Setenv("INKPRESS_SESSION_TTL", "30m")

	cfg, errLoad := Load(path)
	if errLoad != nil {
		t.Fatalf("load: %v", errLoad)
	}
	if cfg.Server.Addr != ":7070" {
		t.Fatalf("expected env addr to win, got %q", cfg.Server.Addr)
	}
	if cfg.Auth.SessionTTL != 30*time.Minute {
		t.Fatalf("expected env ttl to win, got %v", cfg.Auth.SessionTTL)
	}
}

func TestProductionRequiresSecret(t *testing.T) {
	path := writeConfig(t, "environment: production\n")
	if _, errLoad := Load(path); errLoad == nil {
		t.Fatal("expected error for production config without auth secret")
	}

	t.Setenv("INKPRESS_AUTH_SECRET", "env-secret")
	cfg, errLoad := Load(path)
	if errLoad != nil {
		t.Fatalf("load with env secret: %v", errLoad)
	}
	if cfg.Auth.Secret != "env-secret" {
		t.Fatalf("expected secret from env, got %q", cfg.Auth.Secret)
	}
}

func TestBcryptCostClampedToValidRange(t *testing.T) {
	path := writeConfig(t, `
auth:
  bcrypt_cost: 99
`)
	cfg, errLoad := Load(path)
	if errLoad != nil {
		t.Fatalf("load: %v", errLoad)
	}
	if cfg.Auth.BcryptCost != 31 {
		t.Fatalf("expected cost clamped to 31, got %d", cfg.Auth.BcryptCost)
	}
}
