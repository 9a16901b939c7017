package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ariel-frischer/relver/internal/cli/shared"
	"github.com/ariel-frischer/relver/internal/planner"
)

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Print the next version",
	Long: `Print the version the next release would get.

For a single-package repository this is one line. In monorepo mode each
package that would be released is printed as "<name> <version>".
With --plain only versions are printed, which suits scripts.`,
	Example: `  relver next
  VERSION=$(relver next --plain)
  relver next --bump`,
	Args: cobra.NoArgs,
	RunE: runNext,
}

func init() {
	nextCmd.GroupID = shared.GroupInspect
	nextCmd.Flags().Bool("bump", false, "Print the bump type (major, minor, patch, none) instead")
	rootCmd.AddCommand(nextCmd)
}

func runNext(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	plan, err := s.plan(cmd.Context())
	if err != nil {
		return err
	}

	bumpOnly, _ := cmd.Flags().GetBool("bump")
	printNext(cmd.OutOrStdout(), plan, bumpOnly, shared.Plain(cmd))
	return nil
}

func printNext(out io.Writer, plan *planner.Result, bumpOnly, plain bool) {
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()
	if plain {
		bold, dim = fmt.Sprint, fmt.Sprint
	}

	if plan.Packages != nil {
		for _, p := range plan.ReleasedPackages() {
			version := p.Entry.Version
			if bumpOnly {
				version = p.Bump.String()
			}
			fmt.Fprintf(out, "%s %s\n", p.Package.Name, bold(version))
		}
		return
	}

	switch {
	case bumpOnly:
		fmt.Fprintln(out, plan.Bump.String())
	case !plan.Released():
		if !plain {
			fmt.Fprintln(out, dim("no release: no commit since "+plan.Current.String()+" warrants a version bump"))
		}
	case plain:
		fmt.Fprintln(out, plan.Version)
	case plan.FirstRelease:
		fmt.Fprintf(out, "%s %s\n", bold(plan.Version), dim("(first release)"))
	default:
		fmt.Fprintf(out, "%s %s\n", bold(plan.Version), dim(fmt.Sprintf("(%s from %s)", plan.Bump, plan.Current)))
	}
}
