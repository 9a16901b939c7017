package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ProjectConfigFile is the project config file name, looked up in the
// working directory.
const ProjectConfigFile = ".relver.yml"

// UserConfigPath returns the path to the user-level config file.
// This follows the XDG Base Directory Specification:
// - Linux: ~/.config/relver/config.yml
// - macOS: ~/Library/Application Support/relver/config.yml
// - Windows: %APPDATA%\relver\config.yml
//
// If XDG_CONFIG_HOME is set, it will be respected on Linux.
func UserConfigPath() (string, error) {
	dir, err := UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yml"), nil
}

// UserConfigDir returns the path to the user-level config directory.
func UserConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "relver"), nil
}

// ProjectConfigPath returns the path to the project-level config file.
func ProjectConfigPath() string {
	return ProjectConfigFile
}

// Source is one configuration layer as seen by LoadWithOptions.
type Source struct {
	Name    string
	Path    string
	Present bool
}

// Sources lists the file layers for opts, lowest priority first, followed
// by the RELVER_ environment variables that are set.
func Sources(opts LoadOptions) []Source {
	var out []Source
	if !opts.SkipUserConfig {
		if path, err := UserConfigPath(); err == nil {
			out = append(out, Source{Name: "user", Path: path, Present: fileExists(path)})
		}
	}

	project := opts.ProjectConfigPath
	if project == "" {
		project = filepath.Join(opts.ProjectDir, ProjectConfigFile)
	}
	out = append(out, Source{Name: "project", Path: project, Present: fileExists(project)})

	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, EnvPrefix) {
			out = append(out, Source{Name: "env", Path: name, Present: true})
		}
	}
	return out
}
