// Package output provides terminal output formatting for the relver CLI.
// This package has minimal dependencies to avoid import cycles.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// GetTerminalWidth returns the terminal width, defaulting to 80 if unavailable.
func GetTerminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Printer writes release progress lines, in color unless Plain is set.
type Printer struct {
	Out   io.Writer
	Plain bool
}

func (p Printer) paint(attrs []color.Attribute, s string) string {
	if p.Plain {
		return s
	}
	return color.New(attrs...).Sprint(s)
}

// Header prints a dim rule with a label, e.g. "── dry run ──".
func (p Printer) Header(label string) {
	line := strings.Repeat("─", 3)
	fmt.Fprintf(p.Out, "%s %s %s\n", p.paint([]color.Attribute{color.Faint}, line),
		p.paint([]color.Attribute{color.FgMagenta, color.Bold}, label),
		p.paint([]color.Attribute{color.Faint}, line))
}

// Step prints one release action, e.g. "→ tag      v1.2.0".
func (p Printer) Step(kind, target string) {
	fmt.Fprintf(p.Out, "%s %-9s %s\n", p.paint([]color.Attribute{color.FgMagenta}, "→"), kind,
		p.paint([]color.Attribute{color.FgCyan}, target))
}

// Success prints a green checkmark line.
func (p Printer) Success(message string) {
	fmt.Fprintf(p.Out, "%s %s\n", p.paint([]color.Attribute{color.FgGreen, color.Bold}, "✓"), message)
}

// Warn prints a yellow notice.
func (p Printer) Warn(message string) {
	fmt.Fprintf(p.Out, "%s %s\n", p.paint([]color.Attribute{color.FgYellow, color.Bold}, "!"), message)
}
