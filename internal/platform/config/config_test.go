package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(New())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Addr != DefaultAddr || cfg.TokenSecret != DefaultTokenSecret {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.SessionTTL != 12*time.Hour || cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("unexpected durations: %+v", cfg)
	}
	if cfg.LoginRate != 5 || cfg.LoginBurst != 10 {
		t.Fatalf("unexpected login throttle: %+v", cfg)
	}
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("PLANNER_ADDR", ":9999")
	t.Setenv("PLANNER_SESSION_TTL", "30m")
	t.Setenv("PLANNER_LOG_FORMAT", "console")
	t.Setenv("PLANNER_LOGIN_BURST", "3")

	cfg, err := Load(New())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Addr != ":9999" || cfg.SessionTTL != 30*time.Minute || cfg.LogFormat != "console" || cfg.LoginBurst != 3 {
		t.Fatalf("environment not applied: %+v", cfg)
	}
}

func TestLoad_RejectsInvalid(t *testing.T) {
	t.Setenv("PLANNER_SESSION_TTL", "0s")
	if _, err := Load(New()); err == nil {
		t.Fatalf("expected error for zero session ttl")
	}
}

func TestLoadDotEnv(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing file should be ignored, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "planner.env")
	if err := os.WriteFile(path, []byte("PLANNER_UI_ORIGIN=http://example.test\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("PLANNER_UI_ORIGIN", "")
	os.Unsetenv("PLANNER_UI_ORIGIN")
	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv error: %v", err)
	}
	cfg, err := Load(New())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.UIOrigin != "http://example.test" {
		t.Fatalf("dotenv value not applied: %+v", cfg)
	}
}
