package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/relver/internal/cli/shared"
	clierrors "github.com/ariel-frischer/relver/internal/errors"
	"github.com/ariel-frischer/relver/internal/output"
	"github.com/ariel-frischer/relver/internal/progress"
	"github.com/ariel-frischer/relver/internal/release"
)

var releaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Write changelogs, tag, push and publish the next release",
	Long: `Run the full release: plan the next version(s), insert the changelog
entries, sync package manifests, commit, create annotated tags, push, and
publish hosted releases.

Which of those steps run is controlled by configuration:
  git.commit        commit changelogs and manifests (default: true)
  git.push          push the commit and tags (default: false)
  release.provider  publish to github or gitea (default: none)

Use --dry-run to list the steps without changing anything.`,
	Example: `  relver release --dry-run
  relver release
  relver release --set git.push=true --set release.provider=github
  relver release --fail-on-empty   # exit 6 when there is nothing to release`,
	Args: cobra.NoArgs,
	RunE: runRelease,
}

func init() {
	releaseCmd.GroupID = shared.GroupRelease
	releaseCmd.Flags().BoolP("dry-run", "n", false, "Show the release steps without running them")
	releaseCmd.Flags().Bool("fail-on-empty", false, "Exit with code 6 when there is nothing to release")
	rootCmd.AddCommand(releaseCmd)
}

func runRelease(cmd *cobra.Command, _ []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	failOnEmpty, _ := cmd.Flags().GetBool("fail-on-empty")
	plain := shared.Plain(cmd)
	printer := output.Printer{Out: cmd.OutOrStdout(), Plain: plain}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	plan, err := s.plan(cmd.Context())
	if err != nil {
		return err
	}

	publisher, err := s.publisher()
	if err != nil {
		if !dryRun {
			return err
		}
		printer.Warn("publishing would fail: " + err.Error())
	}

	runner := release.NewRunner(s.src, publisher, release.Options{
		Root:          s.src.Root(),
		ChangelogFile: s.cfg.Changelog.File,
		PerPackage:    s.cfg.Changelog.PerPackage,
		ProjectName:   s.cfg.Changelog.Project,
		DryRun:        dryRun,
		Commit:        s.cfg.Git.Commit,
		Push:          s.cfg.Git.Push,
		Remote:        s.cfg.Git.Remote,
		Draft:         s.cfg.Release.Draft,
		Publish:       s.cfg.Release.Provider != "none",
		Concurrency:   s.cfg.Release.Concurrency,
	}, s.logger)

	var sp *progress.Spinner
	if !dryRun {
		caps := progress.DetectTerminalCapabilities(os.Stderr)
		sp = progress.NewSpinner(cmd.ErrOrStderr(), caps, !plain && output.IsTerminal(cmd.ErrOrStderr()))
		sp.Start("Releasing")
	}

	report, err := runner.Run(cmd.Context(), plan)
	if errors.Is(err, release.ErrNothingToRelease) {
		if sp != nil {
			sp.Success("nothing to release")
		}
		printer.Warn("nothing to release: no commit warrants a version bump")
		if failOnEmpty {
			return shared.NewExitError(shared.ExitNothingToRelease)
		}
		return nil
	}
	if err != nil {
		if sp != nil {
			sp.Fail(err.Error())
		}
		if report != nil {
			printSteps(printer, report, true)
		}
		return releaseError(err)
	}
	if sp != nil {
		sp.Success(strings.Join(report.Tags, ", "))
	}

	if dryRun {
		printer.Header("dry run")
		printSteps(printer, report, false)
		return nil
	}
	printSteps(printer, report, false)
	for _, p := range report.Published {
		if p.URL != "" {
			printer.Success(fmt.Sprintf("published %s: %s", p.Tag, p.URL))
		}
	}
	printer.Success("released " + strings.Join(report.Tags, ", "))
	return nil
}

// releaseError gives runner failures that carry no category a Runtime one.
func releaseError(err error) error {
	if clierrors.IsCLIError(err) {
		return err
	}
	return clierrors.WrapWithMessage(err, clierrors.Runtime, "release stopped",
		"Check `git status` and `git tag` for the steps that completed",
		"Re-run with --debug for details")
}

func printSteps(p output.Printer, report *release.Report, failed bool) {
	if failed {
		p.Warn("planned steps (the release stopped part way):")
	}
	for _, step := range report.Steps {
		p.Step(step.Kind, step.Target)
	}
}
