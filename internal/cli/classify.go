package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/relver/internal/cli/shared"
	"github.com/ariel-frischer/relver/internal/commit"
	"github.com/ariel-frischer/relver/internal/convention"
	clierrors "github.com/ariel-frischer/relver/internal/errors"
	"github.com/ariel-frischer/relver/internal/semver"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <subject>",
	Short: "Show how a commit message is classified",
	Long: `Show how relver classifies a commit message under the configured
convention: its type, scope, breaking flag, changelog section and bump.
No repository is needed.`,
	Example: `  relver classify "feat(api): add pagination"
  relver classify "🐛 fix: handle empty body"
  relver classify "refactor: drop v1" --body "BREAKING CHANGE: v1 removed"`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 || args[0] == "" {
			return clierrors.MissingSubject()
		}
		return nil
	},
	RunE: runClassify,
}

func init() {
	classifyCmd.GroupID = shared.GroupInspect
	classifyCmd.Flags().String("body", "", "Commit body (footers such as BREAKING CHANGE)")
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg := shared.ConfigFrom(cmd.Context())
	if cfg == nil {
		var err error
		if cfg, err = shared.LoadConfig(cmd); err != nil {
			return clierrors.Wrap(err, clierrors.Configuration)
		}
	}
	conv, err := cfg.ConventionConfig()
	if err != nil {
		return clierrors.Wrap(err, clierrors.Configuration)
	}

	body, _ := cmd.Flags().GetString("body")
	c := commit.ClassifyRaw(commit.RawCommit{Subject: args[0], Body: body}, conv)
	printClassification(cmd.OutOrStdout(), c, conv)
	return nil
}

func printClassification(out io.Writer, c commit.Classified, conv *convention.Config) {
	section := string(c.Section)
	if c.Excluded() {
		section = "(excluded)"
	}
	scope := c.Scope
	if scope == "" {
		scope = "-"
	}

	rows := [][2]string{
		{"type", c.Type},
		{"scope", scope},
		{"breaking", strconv.FormatBool(c.IsBreaking)},
		{"description", c.Description},
		{"section", section},
		{"bump", semver.ComputeBump([]commit.Classified{c}, conv.Keywords).String()},
	}
	for _, r := range rows {
		fmt.Fprintf(out, "%-12s %s\n", r[0]+":", r[1])
	}
}
