package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsZeroValue(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GCThreshold != 0 || len(cfg.ModuleSearchPaths) != 0 {
		t.Errorf("expected zero-value config, got %+v", cfg)
	}
}

func TestLoadParsesFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".neutronrc.toml")
	src := `
module_search_paths = ["vendor/modules", "lib"]
gc_threshold = 4096
home = "/opt/neutron"
`
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.ModuleSearchPaths) != 2 || cfg.ModuleSearchPaths[0] != "vendor/modules" {
		t.Errorf("got module search paths %v", cfg.ModuleSearchPaths)
	}
	if cfg.GCThreshold != 4096 {
		t.Errorf("got GCThreshold %d, want 4096", cfg.GCThreshold)
	}
	if cfg.Env() != "/opt/neutron" {
		t.Errorf("got Env() %q, want /opt/neutron", cfg.Env())
	}
}

func TestEnvFallsBackToEnvironmentVariable(t *testing.T) {
	t.Setenv("NEUTRON_HOME", "/from/env")
	cfg := &Config{}
	if got := cfg.Env(); got != "/from/env" {
		t.Errorf("got %q, want /from/env", got)
	}
}
