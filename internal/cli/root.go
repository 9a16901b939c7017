// Package cli implements the relver command line.
package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	clicfg "github.com/ariel-frischer/relver/internal/cli/config"
	"github.com/ariel-frischer/relver/internal/cli/shared"
	"github.com/ariel-frischer/relver/internal/cli/util"
	"github.com/ariel-frischer/relver/internal/config"
	clierrors "github.com/ariel-frischer/relver/internal/errors"
	"github.com/ariel-frischer/relver/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "relver",
	Short: "Version bumps and changelogs from commit history",
	Long: `relver reads the commits since your last release, classifies them as
Conventional Commits (or emoji-prefixed Clean Commits), and derives the next
semantic version and a Keep a Changelog entry.

In a monorepo each package is versioned on its own: commits are routed to
packages by scope and changed paths, and each package gets its own tag
(name@version) and changelog.`,
	Example: `  # What would the next version be?
  relver next

  # Preview the changelog entry
  relver changelog

  # Per-package table for a monorepo
  relver plan

  # Write changelogs, tag and publish
  relver release --dry-run
  relver release`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	},
}

var logCloser io.Closer

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: shared.GroupRelease, Title: "Release Commands:"},
		&cobra.Group{ID: shared.GroupInspect, Title: "Inspection Commands:"},
		&cobra.Group{ID: shared.GroupConfiguration, Title: "Configuration Commands:"},
	)

	flags := rootCmd.PersistentFlags()
	flags.StringP(shared.FlagConfig, "c", "", "Project config file (default: <repo>/.relver.yml)")
	flags.StringP(shared.FlagRepo, "C", ".", "Repository directory")
	flags.Bool(shared.FlagDebug, false, "Enable debug logging")
	flags.Bool(shared.FlagPlain, false, "Plain output (no colors, icons or spinners)")
	flags.StringArray(shared.FlagSet, nil, "Override a config key (key=value, repeatable)")

	clicfg.Register(rootCmd)
	util.Register(rootCmd)
}

// setup loads configuration and installs logging before any command runs.
func setup(cmd *cobra.Command, _ []string) error {
	debug, _ := cmd.Flags().GetBool(shared.FlagDebug)

	cfg, err := shared.LoadConfig(cmd)
	if err != nil {
		if !shared.SkipsConfig(cmd) {
			return clierrors.WrapWithMessage(err, clierrors.Configuration, "loading configuration",
				"Check the file with: relver config show",
				"Recreate it with: relver config init --force")
		}
		cfg = nil
	}

	opts := logging.Options{Debug: debug}
	if cfg != nil {
		opts = logOptions(cfg.Log, debug)
	}
	_, logCloser = logging.Setup(cmd.ErrOrStderr(), opts)

	if cfg != nil {
		cmd.SetContext(shared.WithConfig(cmd.Context(), cfg))
	}
	return nil
}

func logOptions(lc config.LogConfig, debug bool) logging.Options {
	return logging.Options{
		Level:      lc.Level,
		Debug:      debug,
		File:       lc.File,
		MaxSize:    lc.MaxSize,
		MaxBackups: lc.MaxBackups,
		MaxAge:     lc.MaxAge,
		Compress:   lc.Compress,
	}
}

// Execute runs the root command. Errors are printed here; the caller only
// maps them to an exit code with ExitCode.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := interrupted(rootCmd.ExecuteContext(ctx))
	if err != nil && !silent(err) {
		plain, _ := rootCmd.PersistentFlags().GetBool(shared.FlagPlain)
		clierrors.FprintError(rootCmd.ErrOrStderr(), err, plain)
	}
	return err
}

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	if code := shared.ExitCodeOf(err); code != shared.ExitFailure {
		return code
	}
	if cliErr := clierrors.AsCLIError(err); cliErr != nil {
		switch cliErr.Category {
		case clierrors.Argument:
			return shared.ExitInvalidArguments
		case clierrors.Prerequisite:
			return shared.ExitMissingPrerequisite
		}
	}
	return shared.ExitFailure
}

// interrupted replaces a cancellation caused by SIGINT or SIGTERM with a
// user-facing error.
func interrupted(err error) error {
	if !errors.Is(err, context.Canceled) {
		return err
	}
	return clierrors.NewRuntimeError("interrupted",
		"A release may have stopped part way: check `git status` and `git tag` before re-running")
}

// silent reports whether err is an ExitError whose message was already shown.
func silent(err error) bool {
	exitErr, ok := err.(*shared.ExitError)
	return ok && exitErr.Err == nil
}
