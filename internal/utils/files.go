package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Standard default permissions
// File: u=rw, g=rw, o=r
const PermFile os.FileMode = 0664

// Dir:  u=rwx, g=rwx, o=rx (Requires +x to traverse)
const PermDir os.FileMode = 0775

// PermOwnerExec is the owner execute bit (u+x)
const PermOwnerExec os.FileMode = 0100

// AddOwnerExec adds u+x to path and leaves every other permission bit as it is.
func AddOwnerExec(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("could not stat path %s: %w", path, err)
	}
	mode := info.Mode().Perm() | PermOwnerExec
	PrintDebug("Setting mode of %s to %v", StylePath(path), mode)
	if err := os.Chmod(path, mode); err != nil {
		return fmt.Errorf("failed to chmod file %s: %w", path, err)
	}
	return nil
}

// --- Extension Checks (String-based) ---

// IsJobFile checks if the path looks like a job description (.yaml, .yml, .json, .toml).
func IsJobFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json", ".toml":
		return true
	}
	return false
}

// IsScript checks if the path is a generated batch script (.sh, .cmd, .bsub, .sbatch).
func IsScript(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sh", ".cmd", ".bsub", ".sbatch":
		return true
	}
	return false
}

// --- Filesystem Checks (OS-based) ---

// FileExists checks if a file exists and is not a directory.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists checks if a path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// EnsureDir checks if a directory exists, and creates it if it doesn't.
func EnsureDir(path string) error {
	if DirExists(path) {
		return nil
	}
	return os.MkdirAll(path, PermDir)
}
