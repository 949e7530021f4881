package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Absent(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg == nil {
		t.Fatal("expected zero-value config, got nil")
	}
	if len(cfg.Languages) != 0 || cfg.MaxDepth != 0 || cfg.Verbose {
		t.Errorf("expected zero-value config, got %+v", cfg)
	}
}

func TestLoad_Yml(t *testing.T) {
	dir := t.TempDir()
	content := `
languages: [python, go]
excludeDirs: [generated]
honorGitignore: true
maxDepth: 4
maxNodes: 100
concurrency: 2
extraBuiltins: [log_event]
graphDBPath: .codegraph/graph.kuzu
verbose: true
`
	if err := os.WriteFile(filepath.Join(dir, "codegraph.yml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Languages) != 2 || cfg.Languages[0] != "python" {
		t.Errorf("languages = %v", cfg.Languages)
	}
	if !cfg.HonorGitignore || cfg.MaxDepth != 4 || cfg.MaxNodes != 100 || cfg.Concurrency != 2 {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.GraphDBPath != ".codegraph/graph.kuzu" || !cfg.Verbose {
		t.Errorf("unexpected config %+v", cfg)
	}
	if len(cfg.ExtraBuiltins) != 1 || cfg.ExtraBuiltins[0] != "log_event" {
		t.Errorf("extraBuiltins = %v", cfg.ExtraBuiltins)
	}
}

func TestLoad_YamlFallback(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "codegraph.yaml"), []byte("maxDepth: 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxDepth != 7 {
		t.Errorf("maxDepth = %d, want 7", cfg.MaxDepth)
	}
}

func TestLoad_Malformed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "codegraph.yml"), []byte("languages: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Error("malformed YAML must error")
	}
}
