package config

import (
	"os"
	"testing"
)

func TestEnvOverrides(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	cfg.Paths.ConfigPath = "/tmp/config" // avoid creation

	t.Setenv("VINSPECT_ENABLED", "0")
	t.Setenv("VINSPECT_METRICS_ADDR", "1.2.3.4:9999")
	t.Setenv("VINSPECT_LOG_LEVEL", "debug")
	t.Setenv("VINSPECT_LOG_FORMAT", "json")
	t.Setenv("VINSPECT_APPEND_TO", "src/main.js")

	applyEnvOverrides(cfg)

	if cfg.Inspector.Enabled {
		t.Fatalf("inspector should be disabled via env")
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Addr != "1.2.3.4:9999" {
		t.Fatalf("metrics override failed: %+v", cfg.Metrics)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Fatalf("logging overrides failed: %+v", cfg.Logging)
	}
	if cfg.Inspector.AppendTo != "src/main.js" {
		t.Fatalf("append_to override failed: %q", cfg.Inspector.AppendTo)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/config.toml"

	cfg, err := Default()
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	cfg.Paths.ConfigPath = path
	cfg.Editor.Bin = "/usr/bin/nvim"
	cfg.Inspector.ToggleKeyCombo = "alt-x"

	if err := Save(cfg, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Editor.Bin != "/usr/bin/nvim" {
		t.Fatalf("expected editor bin to persist")
	}
	if loaded.Inspector.ToggleKeyCombo != "alt-x" {
		t.Fatalf("expected toggle combo to persist")
	}

	// cleanup to avoid residue
	_ = os.Remove(path)
}

func TestDefaultNavKeys(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	if cfg.Inspector.NavKeys.Parent != "ArrowUp" || cfg.Inspector.NavKeys.Prev != "ArrowLeft" {
		t.Fatalf("unexpected nav key defaults: %+v", cfg.Inspector.NavKeys)
	}
	if cfg.Inspector.ShowToggleButton != "active" {
		t.Fatalf("unexpected toggle button default: %q", cfg.Inspector.ShowToggleButton)
	}
	if !cfg.Inspector.CustomStyles {
		t.Fatalf("custom styles should default on")
	}
}
