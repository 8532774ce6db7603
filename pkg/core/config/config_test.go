package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", "spreadsheet_id: abc123\nmax_concurrent: 9\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.SpreadsheetID != "abc123" || cfg.MaxConcurrent != 9 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.DefaultModel != "gemini-2.5-flash" {
		t.Errorf("default model not applied: %q", cfg.DefaultModel)
	}
}

func TestLoadHJSON(t *testing.T) {
	path := writeFile(t, "config.hjson", "{\n  # sheet to drive\n  spreadsheet_id: abc456\n  listen_addr: \":9090\"\n}")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.SpreadsheetID != "abc456" || cfg.ListenAddr != ":9090" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "config.yaml", "spreadsheet_id: from-file\ndefault_model: file-model\n")
	t.Setenv("SPREADSHEET_ID", "from-env")
	t.Setenv("MAX_CONCURRENT_REQUESTS", "3")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.SpreadsheetID != "from-env" {
		t.Errorf("SpreadsheetID = %q, want env to win", cfg.SpreadsheetID)
	}
	if cfg.DefaultModel != "file-model" {
		t.Errorf("DefaultModel = %q, want file value kept without env override", cfg.DefaultModel)
	}
	if cfg.MaxConcurrent != 3 {
		t.Errorf("MaxConcurrent = %d, want 3", cfg.MaxConcurrent)
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for explicitly named missing file")
	}
}

func TestLoadNoFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q, want default", cfg.ListenAddr)
	}
}
