// Package util provides the `relver version` command.
package util

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ariel-frischer/relver/internal/build"
	"github.com/ariel-frischer/relver/internal/cli/shared"
	"github.com/ariel-frischer/relver/internal/output"
)

// Box drawing characters for the pretty version output.
const (
	boxTopLeft     = "╭"
	boxTopRight    = "╮"
	boxBottomLeft  = "╰"
	boxBottomRight = "╯"
	boxHorizontal  = "─"
	boxVertical    = "│"
)

var versionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Display version information (v)",
	Long:    "Display version, commit, build date, and Go version information for relver",
	Example: `  # Show version info
  relver version

  # Plain output (for scripts)
  relver version --plain`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{shared.AnnotationSkipConfig: "true"},
	Run: func(cmd *cobra.Command, _ []string) {
		info := build.Current()
		if shared.Plain(cmd) {
			printPlainVersion(cmd.OutOrStdout(), info)
			return
		}
		printPrettyVersion(cmd.OutOrStdout(), info, output.GetTerminalWidth())
	},
}

// Register adds the version command to root.
func Register(root *cobra.Command) {
	versionCmd.GroupID = shared.GroupInspect
	root.AddCommand(versionCmd)
}

// printPlainVersion prints a simple version output for scripting
func printPlainVersion(out io.Writer, info build.Info) {
	fmt.Fprintf(out, "relver %s\n", info.Version)
	fmt.Fprintf(out, "commit: %s\n", info.Commit)
	fmt.Fprintf(out, "built: %s\n", info.BuildDate)
	fmt.Fprintf(out, "go: %s\n", info.GoVersion)
	fmt.Fprintf(out, "platform: %s\n", info.Platform)
}

// printPrettyVersion prints the build info in a centered box.
func printPrettyVersion(out io.Writer, info build.Info, termWidth int) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	white := color.New(color.FgWhite, color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	version := info.Version
	if info.IsDevBuild() {
		version += " (unreleased build)"
	}
	rows := []struct {
		label string
		value string
	}{
		{"Version", version},
		{"Commit", info.ShortCommit()},
		{"Built", info.BuildDate},
		{"Go", info.GoVersion},
		{"Platform", info.Platform},
	}

	boxWidth := 44
	if termWidth < 50 {
		boxWidth = termWidth - 6
	}
	if boxWidth < 30 {
		boxWidth = 30
	}
	pad := strings.Repeat(" ", max(0, (termWidth-boxWidth)/2))
	inner := boxWidth - 2

	fmt.Fprintln(out)
	fmt.Fprintln(out, pad+cyan(centerText("relver", boxWidth)))
	fmt.Fprintln(out, pad+dim(centerText("release notes from commit history", boxWidth)))
	fmt.Fprintln(out)
	fmt.Fprintln(out, pad+boxTopLeft+strings.Repeat(boxHorizontal, inner)+boxTopRight)
	for _, r := range rows {
		plainLen := 2 + 10 + 3 + len([]rune(r.value))
		fill := ""
		if plainLen < inner {
			fill = strings.Repeat(" ", inner-plainLen)
		}
		fmt.Fprintf(out, "%s%s  %s   %s%s%s\n", pad, boxVertical, yellow(fmt.Sprintf("%10s", r.label)), white(r.value), fill, boxVertical)
	}
	fmt.Fprintln(out, pad+boxBottomLeft+strings.Repeat(boxHorizontal, inner)+boxBottomRight)
	fmt.Fprintln(out, pad+dim(centerText(build.SourceURL, boxWidth)))
	fmt.Fprintln(out)
}

// centerText centers text within width, returning text unchanged if it does not fit.
func centerText(text string, width int) string {
	n := len([]rune(text))
	if n >= width {
		return text
	}
	return strings.Repeat(" ", (width-n)/2) + text
}
