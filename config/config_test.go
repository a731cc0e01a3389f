package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Addr != ":1234" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.AutosaveDebounce != 5*time.Second {
		t.Errorf("AutosaveDebounce = %v", cfg.AutosaveDebounce)
	}
	if cfg.SnapshotInterval != 30*time.Minute {
		t.Errorf("SnapshotInterval = %v", cfg.SnapshotInterval)
	}
	if cfg.SessionTTL != 120*time.Minute {
		t.Errorf("SessionTTL = %v", cfg.SessionTTL)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("AUTOSAVE_DEBOUNCE_MS", "250")
	t.Setenv("SNAPSHOT_INTERVAL_MINUTES", "10")
	t.Setenv("REDIS_URL", "redis://localhost:6379")

	cfg := Load()
	if cfg.Addr != ":9000" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.AutosaveDebounce != 250*time.Millisecond {
		t.Errorf("AutosaveDebounce = %v", cfg.AutosaveDebounce)
	}
	if cfg.SnapshotInterval != 10*time.Minute {
		t.Errorf("SnapshotInterval = %v", cfg.SnapshotInterval)
	}
	if cfg.RedisURL == "" {
		t.Error("RedisURL not picked up")
	}
}

func TestGetenvIntRejectsGarbage(t *testing.T) {
	t.Setenv("AUTOSAVE_DEBOUNCE_MS", "not-a-number")
	cfg := Load()
	if cfg.AutosaveDebounce != 5*time.Second {
		t.Errorf("AutosaveDebounce = %v, want fallback", cfg.AutosaveDebounce)
	}
}
