package changelog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ariel-frischer/relver/internal/convention"
	"github.com/fatih/color"
	"golang.org/x/term"
)

// SectionStyle defines the color and icon for a changelog section.
type SectionStyle struct {
	Color *color.Color
	Icon  string
}

var sectionStyles = map[convention.Section]SectionStyle{
	convention.SectionAdded:      {Color: color.New(color.FgGreen), Icon: "✓"},
	convention.SectionChanged:    {Color: color.New(color.FgBlue), Icon: "~"},
	convention.SectionDeprecated: {Color: color.New(color.FgRed), Icon: "⚠"},
	convention.SectionRemoved:    {Color: color.New(color.FgRed), Icon: "✗"},
	convention.SectionFixed:      {Color: color.New(color.FgYellow), Icon: "⚡"},
	convention.SectionSecurity:   {Color: color.New(color.FgMagenta), Icon: "🔒"},
}

// FormatOptions controls terminal output.
type FormatOptions struct {
	Plain    bool // Disable colors and icons
	MaxWidth int  // Maximum line width (0 = auto-detect)
}

// FormatVersion writes a terminal preview of one entry.
func FormatVersion(v *Version, w io.Writer, opts FormatOptions) error {
	if err := writeVersionHeader(v, w, opts); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	if v.Changes.IsEmpty() {
		_, err := fmt.Fprintln(w, "\n  (no changelog-worthy commits)")
		return err
	}

	width := resolveWidth(opts.MaxWidth)
	for _, s := range convention.Sections() {
		entries := v.Changes.Section(s)
		if len(entries) == 0 {
			continue
		}
		if err := writeSection(s, entries, w, opts, width); err != nil {
			return err
		}
	}
	return nil
}

func writeVersionHeader(v *Version, w io.Writer, opts FormatOptions) error {
	header := "v" + v.Version
	switch {
	case v.IsUnreleased():
		header = "Unreleased"
	case v.Date != "":
		header = fmt.Sprintf("v%s (%s)", v.Version, v.Date)
	}

	if opts.Plain {
		_, err := fmt.Fprintf(w, "## %s\n", header)
		return err
	}
	bold := color.New(color.Bold).SprintFunc()
	_, err := fmt.Fprintf(w, "## %s\n", bold(header))
	return err
}

func writeSection(s convention.Section, entries []string, w io.Writer, opts FormatOptions, width int) error {
	style := sectionStyles[s]

	if opts.Plain {
		if _, err := fmt.Fprintf(w, "\n### %s\n", s); err != nil {
			return err
		}
	} else {
		colored := style.Color.SprintFunc()
		if _, err := fmt.Fprintf(w, "\n%s %s\n", colored(style.Icon), colored(string(s))); err != nil {
			return err
		}
	}

	const prefix = "  - "
	for _, text := range entries {
		if opts.Plain {
			if _, err := fmt.Fprintf(w, "%s%s\n", prefix, text); err != nil {
				return err
			}
			continue
		}
		wrapped := wrapText(text, width-len(prefix), "    ")
		if _, err := fmt.Fprintf(w, "%s%s\n", prefix, style.Color.Sprint(wrapped)); err != nil {
			return err
		}
	}
	return nil
}

// resolveWidth determines the terminal width to use.
func resolveWidth(maxWidth int) int {
	if maxWidth > 0 {
		return maxWidth
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

// wrapText wraps text to maxWidth, indenting continuation lines.
func wrapText(text string, maxWidth int, indent string) string {
	if maxWidth <= 0 || len(text) <= maxWidth {
		return text
	}

	var lines []string
	remaining := text
	for len(remaining) > maxWidth {
		breakPoint := maxWidth
		for i := maxWidth - 1; i > 0; i-- {
			if remaining[i] == ' ' {
				breakPoint = i
				break
			}
		}
		lines = append(lines, remaining[:breakPoint])
		remaining = strings.TrimLeft(remaining[breakPoint:], " ")
	}
	if remaining != "" {
		lines = append(lines, remaining)
	}
	return strings.Join(lines, "\n"+indent)
}
