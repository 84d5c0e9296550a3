package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/icco/jukebox/internal/kind"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Error loading config: %v", err)
	}
	if cfg.MappingsPath() != filepath.Join(dir, "mappings.txt") {
		t.Errorf("Unexpected mappings path %s", cfg.MappingsPath())
	}
	if cfg.StatePath() != filepath.Join(dir, "current.jukebox") {
		t.Errorf("Unexpected state path %s", cfg.StatePath())
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	abs := filepath.Join(t.TempDir(), "elsewhere.jukebox")

	cfg := DefaultConfig()
	cfg.MappingsFile = "notes.txt"
	cfg.StateFile = abs
	cfg.Debug = true
	if err := cfg.Save(dir); err != nil {
		t.Fatalf("Error saving config: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Error loading config: %v", err)
	}
	if !loaded.Debug {
		t.Error("Expected debug to be set")
	}
	if loaded.MappingsPath() != filepath.Join(dir, "notes.txt") {
		t.Errorf("Unexpected mappings path %s", loaded.MappingsPath())
	}
	if loaded.StatePath() != abs {
		t.Errorf("Expected absolute state path %s, got %s", abs, loaded.StatePath())
	}
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("debug: [not a bool"), 0600); err != nil {
		t.Fatalf("Error writing config: %v", err)
	}
	_, err := Load(dir)
	if kind.Of(err) != kind.Config {
		t.Errorf("Expected config error, got %v", err)
	}
}
