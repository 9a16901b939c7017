package changelog

import (
	"fmt"
	"io"
	"strings"

	"github.com/ariel-frischer/relver/internal/convention"
)

// RenderHeader writes the Keep a Changelog preamble used for new files.
func RenderHeader(project string, w io.Writer) error {
	subject := "this project"
	if project != "" {
		subject = project
	}
	header := `# Changelog

All notable changes to ` + subject + ` will be documented in this file.

The format is based on [Keep a Changelog](https://keepachangelog.com/en/1.1.0/),
and this project adheres to [Semantic Versioning](https://semver.org/spec/v2.0.0.html).
`
	_, err := io.WriteString(w, header)
	return err
}

// RenderVersion writes a version header followed by its non-empty sections.
// Output is deterministic for a given input.
func RenderVersion(v *Version, w io.Writer) error {
	if _, err := io.WriteString(w, formatVersionHeader(v)+"\n"); err != nil {
		return fmt.Errorf("rendering version %s: %w", v.Version, err)
	}
	return renderChanges(&v.Changes, w)
}

// RenderVersionString is RenderVersion into a string.
func RenderVersionString(v *Version) string {
	var b strings.Builder
	_ = RenderVersion(v, &b)
	return b.String()
}

// formatVersionHeader formats the version header line.
func formatVersionHeader(v *Version) string {
	if v.IsUnreleased() {
		return "## [Unreleased]"
	}
	if v.Date == "" {
		return fmt.Sprintf("## [%s]", v.Version)
	}
	return fmt.Sprintf("## [%s] - %s", v.Version, v.Date)
}

// renderChanges writes all non-empty sections in display order.
func renderChanges(c *Changes, w io.Writer) error {
	for _, s := range convention.Sections() {
		entries := c.Section(s)
		if len(entries) == 0 {
			continue
		}
		if err := renderSection(s, entries, w); err != nil {
			return err
		}
	}
	return nil
}

// renderSection writes one "### Section" block.
func renderSection(s convention.Section, entries []string, w io.Writer) error {
	if _, err := io.WriteString(w, "\n### "+string(s)+"\n"); err != nil {
		return err
	}
	for _, entry := range entries {
		if _, err := io.WriteString(w, "- "+entry+"\n"); err != nil {
			return err
		}
	}
	return nil
}
