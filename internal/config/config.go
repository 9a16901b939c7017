// Package config provides hierarchical configuration management for relver using koanf.
// Configuration is loaded with priority: environment variables (RELVER_*) > project config
// (.relver.yml) > user config (~/.config/relver/config.yml) > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/ariel-frischer/relver/internal/convention"
	"github.com/ariel-frischer/relver/internal/monorepo"
	"github.com/ariel-frischer/relver/internal/semver"
)

// EnvPrefix prefixes every environment override. A double underscore
// separates nested keys: RELVER_RELEASE__TOKEN sets release.token.
const EnvPrefix = "RELVER_"

// Configuration represents the relver configuration
type Configuration struct {
	// Convention selects the commit message convention: conventional or emoji.
	Convention string `koanf:"convention" validate:"oneof=conventional emoji"`

	// Keywords override the convention's bump rules. An empty list keeps the
	// built-in keywords for that level.
	Keywords KeywordsConfig `koanf:"keywords"`
	Exclude  ExcludeConfig  `koanf:"exclude"`
	// Sections maps a commit type to a changelog section name, replacing the
	// built-in mapping for that type.
	Sections map[string]string `koanf:"sections"`

	TagPrefix      string `koanf:"tag_prefix"`
	InitialVersion string `koanf:"initial_version" validate:"required"`
	Prerelease     string `koanf:"prerelease"`
	// MinBump raises the repo-wide bump when there is something to release.
	MinBump string `koanf:"min_bump" validate:"oneof=none patch minor major"`

	Changelog ChangelogConfig `koanf:"changelog"`
	Monorepo  MonorepoConfig  `koanf:"monorepo"`
	Release   ReleaseConfig   `koanf:"release"`
	Git       GitConfig       `koanf:"git"`
	Log       LogConfig       `koanf:"log"`
}

// KeywordsConfig lists bump keywords per level.
type KeywordsConfig struct {
	Major []string `koanf:"major"`
	Minor []string `koanf:"minor"`
	Patch []string `koanf:"patch"`
}

// ExcludeConfig lists commit types and scopes left out of changelogs. A nil
// list keeps the convention default.
type ExcludeConfig struct {
	Types  []string `koanf:"types"`
	Scopes []string `koanf:"scopes"`
}

// ChangelogConfig configures changelog files.
type ChangelogConfig struct {
	File       string `koanf:"file" validate:"required"`
	PerPackage bool   `koanf:"per_package"`
	// Project is the name used in a new changelog's header.
	Project string `koanf:"project"`
}

// MonorepoConfig configures per-package releases.
type MonorepoConfig struct {
	Enabled bool   `koanf:"enabled"`
	Mode    string `koanf:"mode" validate:"oneof=scope path both"`
	Unified bool   `koanf:"unified"`
	// Scopes maps a commit scope to a package path.
	Scopes     map[string]string `koanf:"scopes"`
	Workspaces []string          `koanf:"workspaces"`
	// Packages are declared explicitly and take precedence over discovery.
	Packages []PackageConfig `koanf:"packages" validate:"dive"`
}

// PackageConfig declares one package.
type PackageConfig struct {
	Name    string `koanf:"name" validate:"required"`
	Path    string `koanf:"path" validate:"required"`
	Scope   string `koanf:"scope"`
	Version string `koanf:"version"`
	Private bool   `koanf:"private"`
}

// ReleaseConfig configures the hosting service releases are published to.
type ReleaseConfig struct {
	Provider    string `koanf:"provider" validate:"oneof=none github gitea"`
	URL         string `koanf:"url"`
	Repository  string `koanf:"repository"`
	Token       string `koanf:"token"`
	Draft       bool   `koanf:"draft"`
	Retries     uint   `koanf:"retries" validate:"min=1,max=10"`
	Concurrency int    `koanf:"concurrency" validate:"min=1,max=32"`
}

// GitConfig controls what relver writes to the repository.
type GitConfig struct {
	Remote string `koanf:"remote" validate:"required"`
	Commit bool   `koanf:"commit"`
	Push   bool   `koanf:"push"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level      string `koanf:"level"`
	File       string `koanf:"file"`
	MaxSize    int    `koanf:"max_size" validate:"min=0"`
	MaxBackups int    `koanf:"max_backups" validate:"min=0"`
	MaxAge     int    `koanf:"max_age" validate:"min=0"`
	Compress   bool   `koanf:"compress"`
}

// LoadOptions configures how configuration is loaded
type LoadOptions struct {
	// ProjectConfigPath overrides the project config path (default: .relver.yml)
	ProjectConfigPath string
	// ProjectDir is where .relver.yml is looked up when ProjectConfigPath is
	// empty. Defaults to the working directory.
	ProjectDir string
	// SkipUserConfig ignores the user-level config file.
	SkipUserConfig bool
	// Overrides are "key=value" assignments applied after every other source.
	Overrides []string
}

// Load loads configuration from user, project, and environment sources.
// Priority: Environment variables > Project config > User config > Defaults
func Load(projectConfigPath string) (*Configuration, error) {
	return LoadWithOptions(LoadOptions{ProjectConfigPath: projectConfigPath})
}

// LoadWithOptions loads configuration with custom options
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	k, err := load(opts)
	if err != nil {
		return nil, err
	}
	return finalizeConfig(k)
}

// Render returns the effective configuration as YAML or JSON, with the
// release token redacted. format is "yaml" or "json".
func Render(opts LoadOptions, format string) ([]byte, error) {
	k, err := load(opts)
	if err != nil {
		return nil, err
	}
	if _, err := finalizeConfig(k); err != nil {
		return nil, err
	}
	if k.String("release.token") != "" {
		_ = k.Set("release.token", "********")
	}

	switch format {
	case "json":
		return k.Marshal(json.Parser())
	case "yaml", "":
		return k.Marshal(yaml.Parser())
	default:
		return nil, fmt.Errorf("unknown format %q (expected yaml or json)", format)
	}
}

// load merges every configuration source in priority order.
func load(opts LoadOptions) (*koanf.Koanf, error) {
	k := koanf.New(".")

	loadDefaults(k)

	if !opts.SkipUserConfig {
		if err := loadUserConfig(k); err != nil {
			return nil, err
		}
	}

	if err := loadProjectConfig(k, opts.ProjectDir, opts.ProjectConfigPath); err != nil {
		return nil, err
	}

	if err := loadEnvironmentConfig(k); err != nil {
		return nil, err
	}

	for _, o := range opts.Overrides {
		key, value, err := ParseAssignment(o)
		if err != nil {
			return nil, err
		}
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("applying override %s: %w", key, err)
		}
	}
	return k, nil
}

// loadDefaults applies default configuration values
func loadDefaults(k *koanf.Koanf) {
	for key, value := range GetDefaults() {
		_ = k.Set(key, value)
	}
}

// loadUserConfig loads ~/.config/relver/config.yml when present.
func loadUserConfig(k *koanf.Koanf) error {
	path, err := UserConfigPath()
	if err != nil || !fileExists(path) {
		return nil
	}
	if err := loadYAMLConfig(k, path, "user"); err != nil {
		return fmt.Errorf("loading user config: %w", err)
	}
	return nil
}

// loadProjectConfig loads the project config. A custom path must exist.
func loadProjectConfig(k *koanf.Koanf, dir, customPath string) error {
	path := ProjectConfigPath()
	if dir != "" {
		path = filepath.Join(dir, path)
	}
	if customPath != "" {
		if !fileExists(customPath) {
			return fmt.Errorf("config file %s not found", customPath)
		}
		path = customPath
	}
	if !fileExists(path) {
		return nil
	}
	if err := loadYAMLConfig(k, path, "project"); err != nil {
		return fmt.Errorf("loading project config: %w", err)
	}
	return nil
}

// loadYAMLConfig validates and loads a YAML config file
func loadYAMLConfig(k *koanf.Koanf, path, configType string) error {
	if err := ValidateYAMLSyntax(path); err != nil {
		return fmt.Errorf("validating YAML syntax for %s config: %w", configType, err)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to load %s config %s: %w", configType, path, err)
	}
	return nil
}

// loadEnvironmentConfig loads environment variable overrides
func loadEnvironmentConfig(k *koanf.Koanf) error {
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return fmt.Errorf("failed to load environment config: %w", err)
	}
	return nil
}

// finalizeConfig unmarshals and validates the merged configuration
func finalizeConfig(k *koanf.Koanf) (*Configuration, error) {
	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := ValidateConfigValues(&cfg, "config"); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg.Log.File = expandHomePath(cfg.Log.File)
	return &cfg, nil
}

// fileExists returns true if the file exists and is readable
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// envTransform converts environment variable names to config keys
// Example: RELVER_RELEASE__TOKEN -> release.token
func envTransform(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// expandHomePath expands ~ to the user's home directory
func expandHomePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return homeDir + path[1:]
		}
	}
	return path
}

// ConventionConfig builds the classification rules from the convention
// defaults and the configured overrides.
func (c *Configuration) ConventionConfig() (*convention.Config, error) {
	style, err := convention.ParseStyle(c.Convention)
	if err != nil {
		return nil, err
	}
	cc := convention.Defaults(style)

	if len(c.Keywords.Major) > 0 {
		cc.Keywords.Major = c.Keywords.Major
	}
	if len(c.Keywords.Minor) > 0 {
		cc.Keywords.Minor = c.Keywords.Minor
	}
	if len(c.Keywords.Patch) > 0 {
		cc.Keywords.Patch = c.Keywords.Patch
	}
	if c.Exclude.Types != nil {
		cc.ExcludeTypes = c.Exclude.Types
	}
	if c.Exclude.Scopes != nil {
		cc.ExcludeScopes = c.Exclude.Scopes
	}

	for commitType, name := range c.Sections {
		if strings.EqualFold(name, "none") || name == "" {
			delete(cc.TypeToSection, commitType)
			continue
		}
		s, err := convention.ParseSection(name)
		if err != nil {
			return nil, fmt.Errorf("sections.%s: %w", commitType, err)
		}
		cc.TypeToSection[commitType] = s
	}
	return cc, nil
}

// InitialVersionValue parses initial_version.
func (c *Configuration) InitialVersionValue() (semver.Version, error) {
	v, err := semver.Parse(c.InitialVersion)
	if err != nil {
		return semver.Version{}, fmt.Errorf("initial_version: %w", err)
	}
	return v, nil
}

// MinBumpValue parses min_bump.
func (c *Configuration) MinBumpValue() (semver.BumpType, error) {
	return semver.ParseBump(c.MinBump)
}

// RoutingMode parses monorepo.mode.
func (c *Configuration) RoutingMode() (monorepo.Mode, error) {
	return monorepo.ParseMode(c.Monorepo.Mode)
}

// ReleaseToken returns release.token, falling back to the provider's
// conventional environment variable.
func (c *Configuration) ReleaseToken() string {
	if c.Release.Token != "" {
		return c.Release.Token
	}
	switch c.Release.Provider {
	case "github":
		return os.Getenv("GITHUB_TOKEN")
	case "gitea":
		return os.Getenv("GITEA_TOKEN")
	}
	return ""
}
