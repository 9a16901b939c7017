package cli

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/relver/internal/changelog"
	"github.com/ariel-frischer/relver/internal/cli/shared"
	clierrors "github.com/ariel-frischer/relver/internal/errors"
	"github.com/ariel-frischer/relver/internal/planner"
)

var changelogCmd = &cobra.Command{
	Use:   "changelog",
	Short: "Preview or write the pending changelog entry",
	Long: `Render the changelog entry for the commits since the last release.

By default the entry is previewed on the terminal. With --markdown the raw
Keep a Changelog markdown is printed instead, and with --write it is
inserted into the changelog file above the previous release.

In monorepo mode --package selects one package; without it every package
that would be released is shown.`,
	Example: `  relver changelog
  relver changelog --markdown > NOTES.md
  relver changelog --write
  relver changelog --package @acme/web`,
	Args: cobra.NoArgs,
	RunE: runChangelog,
}

func init() {
	changelogCmd.GroupID = shared.GroupInspect
	changelogCmd.Flags().Bool("write", false, "Insert the entry into the changelog file(s)")
	changelogCmd.Flags().Bool("markdown", false, "Print raw markdown instead of the terminal preview")
	changelogCmd.Flags().StringP("package", "p", "", "Only this package (monorepo mode)")
	rootCmd.AddCommand(changelogCmd)
}

// changelogEntry is one entry with the file it belongs to.
type changelogEntry struct {
	name  string
	file  string
	entry *changelog.Version
}

func runChangelog(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	plan, err := s.plan(cmd.Context())
	if err != nil {
		return err
	}

	pkg, _ := cmd.Flags().GetString("package")
	entries, err := changelogEntries(plan, s.cfg.Changelog.File, pkg)
	if err != nil {
		return err
	}

	write, _ := cmd.Flags().GetBool("write")
	markdown, _ := cmd.Flags().GetBool("markdown")
	out := cmd.OutOrStdout()

	for i, e := range entries {
		if write {
			file := filepath.Join(s.src.Root(), filepath.FromSlash(e.file))
			err := changelog.InsertEntry(file, s.cfg.Changelog.Project, e.entry)
			if errors.Is(err, changelog.ErrEntryExists) {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s already has %s, skipped\n", e.file, e.entry.Version)
				continue
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Updated %s (%s)\n", e.file, e.entry.Version)
			continue
		}

		if i > 0 {
			fmt.Fprintln(out)
		}
		if len(entries) > 1 || e.name != "" {
			fmt.Fprintf(out, "# %s\n", e.name)
		}
		if markdown {
			fmt.Fprint(out, changelog.RenderVersionString(e.entry))
			continue
		}
		if err := changelog.FormatVersion(e.entry, out, changelog.FormatOptions{Plain: shared.Plain(cmd)}); err != nil {
			return err
		}
	}
	return nil
}

// changelogEntries picks the entries to show or write. A repository plan
// has one entry; a monorepo plan has one per released package.
func changelogEntries(plan *planner.Result, repoFile, pkg string) ([]changelogEntry, error) {
	if plan.Packages == nil {
		if pkg != "" {
			return nil, clierrors.NewArgumentError("--package requires monorepo mode",
				"Enable it with monorepo.enabled: true in .relver.yml")
		}
		return []changelogEntry{{file: repoFile, entry: plan.Entry}}, nil
	}

	var out []changelogEntry
	found := false
	for _, p := range plan.Packages {
		if pkg != "" && p.Package.Name != pkg {
			continue
		}
		found = true
		if !p.Released() {
			continue
		}
		out = append(out, changelogEntry{
			name:  p.Package.Name,
			file:  path.Join(p.Package.Path, "CHANGELOG.md"),
			entry: p.Entry,
		})
	}
	if pkg != "" && !found {
		return nil, clierrors.UnknownPackage(pkg, packageNames(plan.Packages))
	}
	return out, nil
}
