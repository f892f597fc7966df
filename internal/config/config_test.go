package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func setConfigHome(t *testing.T) string {
	t.Helper()
	if runtime.GOOS != "linux" {
		t.Skip("config dir override relies on XDG_CONFIG_HOME")
	}
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	setConfigHome(t)

	s, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Download.Connections != 8 {
		t.Errorf("Connections = %d, want 8", s.Download.Connections)
	}
	if s.Download.OutputDir != "." {
		t.Errorf("OutputDir = %q, want .", s.Download.OutputDir)
	}
}

func TestLoadFromFile(t *testing.T) {
	setConfigHome(t)
	if err := EnsureDirs(); err != nil {
		t.Fatal(err)
	}

	yaml := "download:\n  connections: 16\n  output_dir: /downloads\n"
	if err := os.WriteFile(filepath.Join(Dir(), "config.yaml"), []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Download.Connections != 16 {
		t.Errorf("Connections = %d, want 16", s.Download.Connections)
	}
	if s.Download.OutputDir != "/downloads" {
		t.Errorf("OutputDir = %q, want /downloads", s.Download.OutputDir)
	}
}

func TestLoadRejectsInvalidConnections(t *testing.T) {
	setConfigHome(t)
	if err := EnsureDirs(); err != nil {
		t.Fatal(err)
	}

	yaml := "download:\n  connections: 0\n"
	if err := os.WriteFile(filepath.Join(Dir(), "config.yaml"), []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Download.Connections != 8 {
		t.Errorf("Connections = %d, want fallback 8", s.Download.Connections)
	}
}
