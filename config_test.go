package lumen

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Debug {
		t.Error("Debug should default to false")
	}
	if cfg.MaxTreeDepth != 32 || cfg.MaxChildCount != 1000 {
		t.Errorf("limits = %d/%d, want 32/1000", cfg.MaxTreeDepth, cfg.MaxChildCount)
	}
	if cfg.Logger != nil {
		t.Error("Logger should default to nil")
	}
}

func TestZeroConfigGetsDefaults(t *testing.T) {
	g := NewGraphWithConfig(newRecordingScene(), Config{})
	if g.Config().MaxTreeDepth != defaultMaxTreeDepth || g.Config().MaxChildCount != defaultMaxChildCount {
		t.Errorf("limits = %d/%d", g.Config().MaxTreeDepth, g.Config().MaxChildCount)
	}
	if g.Logger() == nil {
		t.Error("graph has no logger")
	}
}

func TestParseConfigYAML(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
debug: true
max_tree_depth: 8
log_level: warn
`), "yaml")
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if !cfg.Debug || cfg.MaxTreeDepth != 8 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.MaxChildCount != defaultMaxChildCount {
		t.Errorf("MaxChildCount = %d, missing fields should keep defaults", cfg.MaxChildCount)
	}
	if cfg.LogLevel != "warn" || cfg.Logger == nil {
		t.Error("log level should build a logger")
	}
}

func TestParseConfigEmptyYAML(t *testing.T) {
	cfg, err := ParseConfig(nil, "yaml")
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.MaxTreeDepth != defaultMaxTreeDepth {
		t.Errorf("MaxTreeDepth = %d", cfg.MaxTreeDepth)
	}
}

func TestParseConfigTOML(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
debug = true
max_child_count = 16
`), "toml")
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if !cfg.Debug || cfg.MaxChildCount != 16 || cfg.MaxTreeDepth != defaultMaxTreeDepth {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Logger != nil {
		t.Error("no log level should leave Logger nil")
	}
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format string
	}{
		{"bad yaml", "debug: [", "yaml"},
		{"unknown yaml field", "verbose: true", "yaml"},
		{"unknown toml field", "verbose = true", "toml"},
		{"bad log level", "log_level: loud", "yml"},
		{"bad toml log level", `log_level = "loud"`, "toml"},
		{"unsupported format", "{}", "json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseConfig([]byte(tt.data), tt.format); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	if err := (Config{LogLevel: "DEBUG"}).Validate(); err != nil {
		t.Errorf("upper-case level rejected: %v", err)
	}
	err := (Config{LogLevel: "loud"}).Validate()
	if err == nil || !strings.Contains(err.Error(), "loud") {
		t.Errorf("Validate = %v, want an invalid level error", err)
	}
}

func TestNewGraphWithInvalidConfigPanics(t *testing.T) {
	assertPanics(t, "NewGraphWithConfig", func() {
		NewGraphWithConfig(newRecordingScene(), Config{LogLevel: "loud"})
	})
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lumen.toml")
	if err := os.WriteFile(path, []byte("max_tree_depth = 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.MaxTreeDepth != 4 {
		t.Errorf("MaxTreeDepth = %d, want 4", cfg.MaxTreeDepth)
	}

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "read config") {
		t.Errorf("LoadConfig(missing) = %v", err)
	}
}
