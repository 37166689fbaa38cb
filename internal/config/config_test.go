package config

import "testing"

func TestLoadReadsLoggingEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FILE", "/var/log/cleanhub/api.log")

	cfg := Load()
	if cfg.LogLevel != "warn" {
		t.Fatalf("expected LOG_LEVEL to be read, got %q", cfg.LogLevel)
	}
	if cfg.LogFile != "/var/log/cleanhub/api.log" {
		t.Fatalf("expected LOG_FILE to be read, got %q", cfg.LogFile)
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("ENV", "production")
	cfg := Load()
	if !cfg.IsProduction() || cfg.IsDevelopment() {
		t.Fatalf("expected production mode for ENV=production, got %q", cfg.Env)
	}

	t.Setenv("ENV", "development")
	cfg = Load()
	if !cfg.IsDevelopment() || cfg.IsProduction() {
		t.Fatalf("expected development mode for ENV=development, got %q", cfg.Env)
	}
}
