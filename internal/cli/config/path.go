// Package config provides the `relver config` commands.
// path.go resolves the target of `config init`.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cfgpkg "github.com/ariel-frischer/relver/internal/config"
)

// ResolvePath converts a raw path argument to an absolute path.
//   - Empty string or ".": the current working directory
//   - "~" or "~/...": expanded to the user's home directory
//   - Relative path: resolved against the current working directory
//   - Absolute path: returned unchanged
func ResolvePath(rawPath string) (string, error) {
	if rawPath == "" || rawPath == "." {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
		return cwd, nil
	}

	if strings.HasPrefix(rawPath, "~") {
		expanded, err := expandTilde(rawPath)
		if err != nil {
			return "", fmt.Errorf("expanding tilde in path: %w", err)
		}
		rawPath = expanded
	}

	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return "", fmt.Errorf("resolving absolute path: %w", err)
	}
	return absPath, nil
}

// expandTilde expands a leading "~" or "~/" to the user's home directory.
func expandTilde(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path[1:], "/")), nil
}

// EnsureDirectory creates path (and any parents) with 0755 permissions.
// It fails when path exists and is a file.
func EnsureDirectory(path string) error {
	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("path exists and is not a directory: %s", path)
		}
		return nil
	}

	if os.IsNotExist(err) {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", path, err)
		}
		return nil
	}

	return fmt.Errorf("checking path %s: %w", path, err)
}

// initTarget returns the file `config init` writes: the user config with
// user set, otherwise .relver.yml in dir.
func initTarget(dir string, user bool) (string, error) {
	if user {
		return cfgpkg.UserConfigPath()
	}
	return filepath.Join(dir, cfgpkg.ProjectConfigFile), nil
}
