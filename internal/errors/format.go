package errors

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// palette holds the color functions used by formatError. The plain palette
// passes text through unchanged.
type palette struct {
	label, message, fix, usageLabel, usage, bullet, category func(a ...interface{}) string
}

var (
	colored = palette{
		label:      color.New(color.FgRed, color.Bold).SprintFunc(),
		message:    color.New(color.FgRed).SprintFunc(),
		fix:        color.New(color.FgGreen, color.Bold).SprintFunc(),
		usageLabel: color.New(color.FgCyan, color.Bold).SprintFunc(),
		usage:      color.New(color.FgCyan).SprintFunc(),
		bullet:     color.New(color.FgGreen).SprintFunc(),
		category:   color.New(color.FgYellow).SprintFunc(),
	}
	plain = palette{
		label: fmt.Sprint, message: fmt.Sprint, fix: fmt.Sprint, usageLabel: fmt.Sprint,
		usage: fmt.Sprint, bullet: fmt.Sprint, category: fmt.Sprint,
	}
)

// FormatError formats a CLIError for display in the terminal.
// Colors are dropped automatically when color.NoColor is set.
func FormatError(err *CLIError) string {
	if err == nil {
		return ""
	}
	return formatError(err, colored)
}

// FormatErrorPlain formats a CLIError without colors.
func FormatErrorPlain(err *CLIError) string {
	if err == nil {
		return ""
	}
	return formatError(err, plain)
}

func formatError(err *CLIError, p palette) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s [%s]: %s\n", p.label("Error"), p.category(err.Category.String()), p.message(err.Message))

	if err.Usage != "" {
		fmt.Fprintf(&sb, "\n%s%s\n", p.usageLabel("Usage: "), p.usage(err.Usage))
	}

	if len(err.Remediation) > 0 {
		fmt.Fprintf(&sb, "\n%s\n", p.fix("To fix this:"))
		for _, step := range err.Remediation {
			fmt.Fprintf(&sb, "  %s %s\n", p.bullet("•"), step)
		}
	}

	return sb.String()
}

// FprintError prints err to w. A CLIError gets its category and remediation;
// any other error is shown as a Runtime error.
func FprintError(w io.Writer, err error, usePlain bool) {
	if err == nil {
		return
	}
	cliErr := AsCLIError(err)
	if cliErr == nil {
		cliErr = &CLIError{Category: Runtime, Message: err.Error()}
	}
	if usePlain {
		fmt.Fprint(w, FormatErrorPlain(cliErr))
		return
	}
	fmt.Fprint(w, FormatError(cliErr))
}
