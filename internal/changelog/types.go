package changelog

import "github.com/ariel-frischer/relver/internal/convention"

// Unreleased is the version identifier rendered as "## [Unreleased]".
const Unreleased = "unreleased"

// Version is one changelog entry.
// Date uses YYYY-MM-DD and is empty for unreleased entries.
type Version struct {
	Version string
	Date    string
	Changes Changes
}

// Changes groups entry lines by Keep a Changelog section.
// Empty sections are omitted when rendering.
type Changes struct {
	Added      []string
	Changed    []string
	Deprecated []string
	Removed    []string
	Fixed      []string
	Security   []string
}

// SectionCount is the number of entries in one section.
type SectionCount struct {
	Section convention.Section
	Count   int
}

// IsEmpty returns true if no section has entries.
func (c Changes) IsEmpty() bool {
	return c.Count() == 0
}

// Count returns the total number of entries across all sections.
func (c Changes) Count() int {
	n := 0
	for _, s := range convention.Sections() {
		n += len(c.Section(s))
	}
	return n
}

// Counts returns per-section entry counts in display order, including zeros.
func (c Changes) Counts() []SectionCount {
	counts := make([]SectionCount, 0, 6)
	for _, s := range convention.Sections() {
		counts = append(counts, SectionCount{Section: s, Count: len(c.Section(s))})
	}
	return counts
}

// Section returns the entries filed under s.
func (c Changes) Section(s convention.Section) []string {
	switch s {
	case convention.SectionAdded:
		return c.Added
	case convention.SectionChanged:
		return c.Changed
	case convention.SectionDeprecated:
		return c.Deprecated
	case convention.SectionRemoved:
		return c.Removed
	case convention.SectionFixed:
		return c.Fixed
	case convention.SectionSecurity:
		return c.Security
	default:
		return nil
	}
}

// add appends text to section s. Unknown sections are ignored.
func (c *Changes) add(s convention.Section, text string) {
	switch s {
	case convention.SectionAdded:
		c.Added = append(c.Added, text)
	case convention.SectionChanged:
		c.Changed = append(c.Changed, text)
	case convention.SectionDeprecated:
		c.Deprecated = append(c.Deprecated, text)
	case convention.SectionRemoved:
		c.Removed = append(c.Removed, text)
	case convention.SectionFixed:
		c.Fixed = append(c.Fixed, text)
	case convention.SectionSecurity:
		c.Security = append(c.Security, text)
	}
}

// IsUnreleased returns true if this entry has no version yet.
func (v Version) IsUnreleased() bool {
	return v.Version == Unreleased
}
