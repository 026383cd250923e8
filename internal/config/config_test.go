package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/P-ict0/HourTrack/internal/config"
)

func TestLoadOptionalMissing(t *testing.T) {
	cfg, err := config.LoadOptional(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != nil {
		t.Fatalf("expected nil config for missing file, got %+v", cfg)
	}
}

func TestLoadOptional(t *testing.T) {
	dir := t.TempDir()
	data := []byte("format: short\ndata_file: /tmp/registry.json\n")
	if err := os.WriteFile(filepath.Join(dir, "config.yml"), data, 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.LoadOptional(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Format != "short" || cfg.DataFile != "/tmp/registry.json" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestValidateRejectsUnknownFormat(t *testing.T) {
	if _, err := config.FromYAML([]byte("format: verbose\n")); err == nil {
		t.Fatalf("expected error for unknown format")
	}
	if _, err := config.FromYAML([]byte("format: [\n")); err == nil {
		t.Fatalf("expected error for invalid yaml")
	}
}
