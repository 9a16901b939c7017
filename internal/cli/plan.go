package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/ariel-frischer/relver/internal/changelog"
	"github.com/ariel-frischer/relver/internal/cli/shared"
	"github.com/ariel-frischer/relver/internal/commit"
	"github.com/ariel-frischer/relver/internal/planner"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show what the next release would contain",
	Long: `Show the release plan as a table: for each releasable unit (the
repository, or every package in monorepo mode) the current version, the
bump, the next version, the tag and how many commits it covers. Section
counts for each release follow the table.`,
	Example: `  relver plan
  relver plan --commits
  relver plan --set monorepo.unified=true`,
	Args: cobra.NoArgs,
	RunE: runPlan,
}

func init() {
	planCmd.GroupID = shared.GroupInspect
	planCmd.Flags().Bool("commits", false, "List the commits behind each release")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	plan, err := s.plan(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	rows := planRows(plan)
	renderPlan(out, rows)
	if list, _ := cmd.Flags().GetBool("commits"); list {
		renderCommits(out, rows)
	}
	return nil
}

// planRow is one line of the plan table.
type planRow struct {
	name, current, bump, next, tag string
	commits                        []commit.Classified
	counts                         []changelog.SectionCount
}

func planRows(plan *planner.Result) []planRow {
	if plan.Packages == nil {
		current := plan.Current.String()
		if plan.FirstRelease {
			current = "-"
		}
		return []planRow{{
			name:    "(repository)",
			current: current,
			bump:    plan.Bump.String(),
			next:    versionOrDash(plan.Released(), plan.Version),
			tag:     plan.Tag,
			commits: plan.Commits,
			counts:  plan.Counts(),
		}}
	}

	rows := make([]planRow, 0, len(plan.Packages))
	for _, p := range plan.Packages {
		row := planRow{
			name:    p.Package.Name,
			current: p.Package.Version.String(),
			bump:    p.Bump.String(),
			tag:     p.Tag,
			commits: p.Commits,
		}
		if p.Package.Private {
			row.bump = "private"
		}
		if p.Released() {
			row.next = p.Entry.Version
			row.counts = p.Entry.Changes.Counts()
		} else {
			row.next = "-"
		}
		rows = append(rows, row)
	}
	return rows
}

func versionOrDash(ok bool, v string) string {
	if !ok {
		return "-"
	}
	return v
}

func renderPlan(out io.Writer, rows []planRow) {

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Package", "Current", "Bump", "Next", "Tag", "Commits"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, r := range rows {
		table.Append([]string{r.name, r.current, r.bump, r.next, r.tag, strconv.Itoa(len(r.commits))})
	}
	table.Render()

	for _, r := range rows {
		var parts []string
		for _, c := range r.counts {
			if c.Count > 0 {
				parts = append(parts, fmt.Sprintf("%s %d", c.Section, c.Count))
			}
		}
		if len(parts) > 0 {
			fmt.Fprintf(out, "%s: %s\n", r.name, strings.Join(parts, ", "))
		}
	}
}

// renderCommits lists each row's commits as "sha section subject". Excluded
// commits show "-" as their section.
func renderCommits(out io.Writer, rows []planRow) {
	for _, r := range rows {
		if len(r.commits) == 0 {
			continue
		}
		fmt.Fprintf(out, "\n%s\n", r.name)
		for _, c := range r.commits {
			section := string(c.Section)
			if c.Excluded() {
				section = "-"
			}
			fmt.Fprintf(out, "  %s  %-10s %s\n", c.ShortSHA(), section, c.Subject)
		}
	}
}
