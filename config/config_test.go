package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "database:\n  path: ./data/rao.db\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Http.Port != 8080 {
		t.Fatalf("expected default port, got %d", cfg.Http.Port)
	}
	if cfg.Scoring.Policy != "A" {
		t.Fatalf("expected default policy A, got %q", cfg.Scoring.Policy)
	}
	if cfg.Model.Type != "boosted_trees" {
		t.Fatalf("expected default model type, got %q", cfg.Model.Type)
	}
	if cfg.Limits.CompressionTime.Min != 30 || cfg.Limits.CompressionTime.Max != 1200 {
		t.Fatalf("expected default compression bounds, got %+v", cfg.Limits.CompressionTime)
	}
}

func TestLoadPolicyOverride(t *testing.T) {
	path := writeConfig(t, "scoring:\n  policy: B\n  cache_size: 8\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Scoring.Policy != "B" || cfg.Scoring.CacheSize != 8 {
		t.Fatalf("unexpected scoring section: %+v", cfg.Scoring)
	}
}

func TestLoadRejectsUnknownPolicy(t *testing.T) {
	path := writeConfig(t, "scoring:\n  policy: C\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown policy")
	}
}

func TestLoadRejectsInvertedBounds(t *testing.T) {
	path := writeConfig(t, `limits:
  compression_time: { min: 400, max: 30 }
  nitroglycerin_dose: { min: 0, max: 2500 }
  radial_diameter_mm: { min: 0.5, max: 7.0 }
  sheath_ratio: { min: 0.1, max: 2.0 }
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for inverted bounds")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
