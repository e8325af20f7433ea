package config

import (
	"os"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("DATABASE_URL")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if !cfg.IsDev() {
		t.Error("expected development default")
	}
	if cfg.MigrationsDir != "./migrations" {
		t.Errorf("unexpected migrations dir: %s", cfg.MigrationsDir)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	os.Setenv("PORT", "9999")
	os.Setenv("ENV", "production")
	defer os.Unsetenv("PORT")
	defer os.Unsetenv("ENV")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9999" {
		t.Errorf("expected port 9999, got %s", cfg.Port)
	}
	if !cfg.IsProduction() {
		t.Error("expected production mode")
	}
}

func TestValidate_RequiresDatabaseURL(t *testing.T) {
	cfg := &Config{DBMaxConns: 10, DBMinConns: 2}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when DATABASE_URL is missing")
	}

	cfg.DatabaseURL = "postgres://localhost/notes"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_ConnBounds(t *testing.T) {
	cfg := &Config{DatabaseURL: "postgres://localhost/notes", DBMaxConns: 1, DBMinConns: 5}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when max conns < min conns")
	}
}
