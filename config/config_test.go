package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stanford-oval/thingtalk-go/nnsyntax"
)

func TestLoadFillsDefaultsAndOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tt.yaml")
	if err := os.WriteFile(path, []byte("entity_allocation: consecutive\nrequire_grounding: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.EntityAllocation != nnsyntax.Consecutive {
		t.Fatalf("want consecutive, got %s", cfg.EntityAllocation)
	}
	if !cfg.RequireGrounding {
		t.Fatal("want RequireGrounding true")
	}
	if cfg.SchemaCacheTTLSeconds != 300 {
		t.Fatalf("want default ttl 300, got %d", cfg.SchemaCacheTTLSeconds)
	}
}

func TestLoadRejectsUnknownAllocationMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tt.yaml")
	if err := os.WriteFile(path, []byte("entity_allocation: bogus\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("want an error for an unknown allocation mode")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("want an error for a missing config file")
	}
}
