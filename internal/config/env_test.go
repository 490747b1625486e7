package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestApplyEnv(t *testing.T) {
	t.Setenv("RASTERKIT_PRIMARY", "cmyk")
	t.Setenv("RASTERKIT_GAMMA", "2.2")
	t.Setenv("RASTERKIT_HUE", "-30")
	t.Setenv("RASTERKIT_SATURATION", "lots")
	t.Setenv("RASTERKIT_PROOF_FORMAT", "TIFF")

	got := applyEnv(DefaultSettings())
	if got.Primary != "cmyk" || got.Gamma != 2.2 || got.Hue != -30 {
		t.Errorf("overrides not applied: %+v", got)
	}
	if got.Saturation != 100 {
		t.Errorf("invalid value replaced default: saturation = %d", got.Saturation)
	}
	if got.ProofFormat != "tiff" {
		t.Errorf("proof format = %q", got.ProofFormat)
	}
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "settings.json"), []byte(`{"resolution":600}`), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RASTERKIT_CONFIG_DIR", dir)
	t.Setenv("RASTERKIT_HUE", "10")

	got, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.Resolution != 600 || got.Hue != 10 {
		t.Errorf("settings = %+v", got)
	}
}

func TestLoadWritesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RASTERKIT_CONFIG_DIR", dir)
	t.Setenv("RASTERKIT_RESOLUTION", "150")

	if _, err := Load(); err != nil {
		t.Fatal(err)
	}
	s, err := NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "settings.json")); err != nil {
		t.Fatalf("settings file not written: %v", err)
	}
	// Environment overrides are not persisted.
	if got := s.Get(); got != DefaultSettings() {
		t.Errorf("stored settings = %+v, want defaults", got)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
