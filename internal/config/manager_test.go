package config

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestManagerCreatesAndUpdates(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(WithConfigDir(dir))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	path := filepath.Join(dir, "config.json")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not created: %v", err)
	}

	cfg := mgr.Get()
	cfg.ServerPort = 9999
	cfg.SessionBackend = StoreSQLite

	data, _ := json.Marshal(cfg)
	if err := mgr.UpdateFromJSON(string(data)); err != nil {
		t.Fatalf("UpdateFromJSON: %v", err)
	}

	updated := mgr.Get()
	if updated.ServerPort != 9999 {
		t.Fatalf("expected port 9999, got %d", updated.ServerPort)
	}
	if updated.SessionBackend != StoreSQLite {
		t.Fatalf("expected sqlite backend, got %s", updated.SessionBackend)
	}
}

func TestManagerRejectsInvalidUpdate(t *testing.T) {
	mgr, err := NewManager(WithConfigDir(t.TempDir()))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	cfg := mgr.Get()
	cfg.LLMProvider = "not-a-provider"

	data, _ := json.Marshal(cfg)
	if err := mgr.UpdateFromJSON(string(data)); err == nil {
		t.Fatal("expected validation error for unknown provider")
	}
	if got := mgr.Get().LLMProvider; got == "not-a-provider" {
		t.Fatalf("rejected config must not be applied, got provider %s", got)
	}
}

func TestManagerWatchReloads(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(WithConfigDir(dir))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan struct{}, 1)
	if err := mgr.Watch(ctx, func(cfg Config) {
		reloaded <- struct{}{}
	}); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	cfg := mgr.Get()
	cfg.ServerPort = 9091

	if err := writeConfigFile(mgr.Path(), cfg); err != nil {
		t.Fatalf("writeConfigFile: %v", err)
	}

	select {
	case <-reloaded:
	case <-time.After(2 * time.Second):
		t.Fatalf("watcher did not fire on config change")
	}

	if got := mgr.Get().ServerPort; got != 9091 {
		t.Fatalf("expected reloaded port 9091, got %d", got)
	}
}

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfigWithRoot(t.TempDir())
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.ModelCallTimeout() <= 0 {
		t.Fatal("model call timeout must be positive")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.ServerPort = 0 }},
		{"port out of range", func(c *Config) { c.ServerPort = 70000 }},
		{"unknown provider", func(c *Config) { c.LLMProvider = "bard" }},
		{"unknown backend", func(c *Config) { c.SessionBackend = "redis" }},
		{"non-positive timeout", func(c *Config) { c.ModelTimeout = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfigWithRoot(t.TempDir())
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
