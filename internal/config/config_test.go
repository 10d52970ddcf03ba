package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := Validate(cfg); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidateDetection(t *testing.T) {
	for _, mod := range []func(*Config){
		func(c *Config) { c.Detection.WindowSize = 0 },
		func(c *Config) { c.Detection.WindowSize = -5 },
		func(c *Config) { c.Detection.Threshold = 0 },
		func(c *Config) { c.Detection.Threshold = -1 },
		func(c *Config) { c.Detection.Threshold = math.NaN() },
		func(c *Config) { c.Detection.Threshold = math.Inf(1) },
	} {
		cfg := DefaultConfig()
		mod(cfg)
		if err := Validate(cfg); err == nil {
			t.Fatalf("expected validation error for %+v", cfg.Detection)
		}
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("log_level: debug\ndetection:\n  window_size: 30\n  threshold: 3\ngenerator:\n  enabled: false\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log level: %s", cfg.LogLevel)
	}
	if cfg.Detection.WindowSize != 30 || cfg.Detection.Threshold != 3 {
		t.Fatalf("detection: %+v", cfg.Detection)
	}
	if cfg.Generator.Enabled {
		t.Fatalf("generator should be disabled")
	}
	// Untouched sections keep their defaults.
	if cfg.Ingest.ChannelBuffer != 10000 {
		t.Fatalf("channel buffer default lost: %d", cfg.Ingest.ChannelBuffer)
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := []byte(`{"detection":{"window_size":10,"threshold":2}}`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Detection.WindowSize != 10 {
		t.Fatalf("detection: %+v", cfg.Detection)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("detection:\n  window_size: 0\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for invalid window size")
	}
}

func TestStaticManager(t *testing.T) {
	mgr := NewStaticManager(nil)
	if mgr.Get() == nil {
		t.Fatalf("nil config from static manager")
	}
	if needs, err := mgr.NeedsReload(); err != nil || needs {
		t.Fatalf("static manager reload: needs=%v err=%v", needs, err)
	}
}
