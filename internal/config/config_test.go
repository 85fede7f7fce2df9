package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "REGISTRATION_DATA_DIR", "REGISTRATION_CONFIG"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPPort != 8080 {
		t.Errorf("port = %d, want 8080", cfg.HTTPPort)
	}
	if cfg.DataDir != "data" {
		t.Errorf("data dir = %q, want data", cfg.DataDir)
	}
	if len(cfg.SeedSessions) != 3 {
		t.Fatalf("got %d seed sessions, want 3", len(cfg.SeedSessions))
	}
	if cfg.SeedSessions[1].Price != "79.99" {
		t.Errorf("seed price = %q, want 79.99", cfg.SeedSessions[1].Price)
	}
	if len(cfg.FontPaths) == 0 {
		t.Error("no default font paths")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9999")
	t.Setenv("REGISTRATION_DATA_DIR", "/tmp/regdata")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPPort != 9999 {
		t.Errorf("port = %d, want 9999", cfg.HTTPPort)
	}
	if cfg.DataDir != "/tmp/regdata" {
		t.Errorf("data dir = %q", cfg.DataDir)
	}
}

func TestLoadInvalidPort(t *testing.T) {
	clearEnv(t)
	for _, bad := range []string{"abc", "-1", "0"} {
		t.Setenv("PORT", bad)
		if _, err := Load(); err == nil {
			t.Errorf("PORT=%q accepted", bad)
		}
	}
}

func TestLoadYAMLFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `listen_port: 3000
data_dir: /var/lib/registration
font_paths:
  - /opt/fonts/custom.ttf
seed_sessions:
  - id: "10"
    name: Go for Gophers
    date: 2026-09-01
    capacity: 40
    price: "59.99"
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("REGISTRATION_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPPort != 3000 {
		t.Errorf("port = %d, want 3000", cfg.HTTPPort)
	}
	if cfg.DataDir != "/var/lib/registration" {
		t.Errorf("data dir = %q", cfg.DataDir)
	}
	if len(cfg.SeedSessions) != 1 || cfg.SeedSessions[0].Name != "Go for Gophers" {
		t.Errorf("seed sessions = %+v", cfg.SeedSessions)
	}
	if cfg.SeedSessions[0].Price != "59.99" {
		t.Errorf("seed price = %q", cfg.SeedSessions[0].Price)
	}

	t.Run("env beats file", func(t *testing.T) {
		t.Setenv("PORT", "4000")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.HTTPPort != 4000 {
			t.Errorf("port = %d, want 4000", cfg.HTTPPort)
		}
	})
}

func TestLoadMissingConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("REGISTRATION_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))
	if _, err := Load(); err == nil {
		t.Error("missing config file accepted")
	}
}
