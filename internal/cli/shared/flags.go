package shared

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/relver/internal/config"
)

// Global flag names, registered on the root command.
const (
	FlagConfig = "config"
	FlagRepo   = "repo"
	FlagDebug  = "debug"
	FlagPlain  = "plain"
	FlagSet    = "set"
)

// AnnotationSkipConfig marks commands that run without a valid configuration.
const AnnotationSkipConfig = "relver/skip-config"

// RepoDir returns the --repo flag as an absolute path.
func RepoDir(cmd *cobra.Command) (string, error) {
	repo, _ := cmd.Flags().GetString(FlagRepo)
	if repo == "" {
		repo = "."
	}
	return filepath.Abs(repo)
}

// Plain reports whether --plain was given.
func Plain(cmd *cobra.Command) bool {
	plain, _ := cmd.Flags().GetBool(FlagPlain)
	return plain
}

// LoadConfig loads configuration for the repository selected by --repo,
// applying --config and --set.
func LoadConfig(cmd *cobra.Command) (*config.Configuration, error) {
	dir, err := RepoDir(cmd)
	if err != nil {
		return nil, err
	}
	path, _ := cmd.Flags().GetString(FlagConfig)
	overrides, _ := cmd.Flags().GetStringArray(FlagSet)
	return config.LoadWithOptions(config.LoadOptions{
		ProjectConfigPath: path,
		ProjectDir:        dir,
		Overrides:         overrides,
	})
}

type configKey struct{}

// WithConfig stores cfg in ctx.
func WithConfig(ctx context.Context, cfg *config.Configuration) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// ConfigFrom returns the configuration stored by the root command, or nil.
func ConfigFrom(ctx context.Context) *config.Configuration {
	cfg, _ := ctx.Value(configKey{}).(*config.Configuration)
	return cfg
}

// SkipsConfig reports whether cmd or any of its parents carries
// AnnotationSkipConfig.
func SkipsConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if _, ok := c.Annotations[AnnotationSkipConfig]; ok {
			return true
		}
	}
	return false
}
