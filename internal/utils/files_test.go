package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAddOwnerExecPreservesBits(t *testing.T) {
	tests := []struct {
		name  string
		start os.FileMode
		want  os.FileMode
	}{
		{"rw-r--r--", 0644, 0744},
		{"rw-rw-r--", 0664, 0764},
		{"rw-------", 0600, 0700},
		{"already executable", 0755, 0755},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "script.sh")
			if err := os.WriteFile(path, []byte("#!/bin/bash\n"), 0600); err != nil {
				t.Fatalf("Failed to create test file: %v", err)
			}
			// Chmod explicitly so the umask does not interfere
			if err := os.Chmod(path, tt.start); err != nil {
				t.Fatalf("Failed to chmod test file: %v", err)
			}

			if err := AddOwnerExec(path); err != nil {
				t.Fatalf("AddOwnerExec error: %v", err)
			}

			info, err := os.Stat(path)
			if err != nil {
				t.Fatalf("stat: %v", err)
			}
			if got := info.Mode().Perm(); got != tt.want {
				t.Errorf("mode = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestAddOwnerExecMissingFile(t *testing.T) {
	if err := AddOwnerExec(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Expected error for missing file, got nil")
	}
}

func TestFileChecks(t *testing.T) {
	cases := map[string][2]bool{
		"job.yaml":    {true, false},
		"job.YML":     {true, false},
		"job.json":    {true, false},
		"run.sh":      {false, true},
		"run.sh.cmd":  {false, true},
		"README":      {false, false},
		"job.sbatch":  {false, true},
		"config.toml": {true, false},
	}
	for path, want := range cases {
		if got := IsJobFile(path); got != want[0] {
			t.Errorf("IsJobFile(%q) = %v; want %v", path, got, want[0])
		}
		if got := IsScript(path); got != want[1] {
			t.Errorf("IsScript(%q) = %v; want %v", path, got, want[1])
		}
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir error: %v", err)
	}
	if !DirExists(dir) {
		t.Errorf("expected %s to exist", dir)
	}
	if FileExists(dir) {
		t.Errorf("FileExists(%s) = true for a directory", dir)
	}
}
