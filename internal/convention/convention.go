// Package convention holds the rule set that drives classification output:
// which commit types bump which version component, which types and scopes are
// left out of the changelog, and which section each type lands in.
package convention

import (
	"fmt"
	"slices"
)

// Style selects the built-in defaults for a commit message convention.
type Style string

const (
	// StyleConventional is plain Conventional Commits ("feat: ...").
	StyleConventional Style = "conventional"
	// StyleEmoji is the emoji-prefixed Clean Commit convention ("📦 new: ...").
	StyleEmoji Style = "emoji"
)

// ParseStyle validates a convention name.
func ParseStyle(name string) (Style, error) {
	switch Style(name) {
	case StyleConventional, StyleEmoji:
		return Style(name), nil
	case "":
		return StyleConventional, nil
	default:
		return "", fmt.Errorf("unknown convention %q (valid: conventional, emoji)", name)
	}
}

// Keywords are the three bump rule sets. Major keywords are matched as literal
// substrings of the full message; minor and patch keywords are matched by
// exact equality with the commit type.
type Keywords struct {
	Major []string
	Minor []string
	Patch []string
}

// Config is the complete convention rule set for one run.
type Config struct {
	Style         Style
	Keywords      Keywords
	ExcludeTypes  []string
	ExcludeScopes []string
	TypeToSection map[string]Section
}

// Defaults returns the built-in configuration for the given style.
func Defaults(style Style) *Config {
	cfg := &Config{
		Style: style,
		Keywords: Keywords{
			Major: []string{"BREAKING CHANGE", "BREAKING-CHANGE"},
		},
		ExcludeScopes: []string{"release"},
		TypeToSection: defaultSections(),
	}

	switch style {
	case StyleEmoji:
		cfg.Keywords.Minor = []string{"new"}
		cfg.Keywords.Patch = []string{"update", "remove", "security", "setup"}
		cfg.ExcludeTypes = []string{"docs", "test", "release"}
	default:
		cfg.Style = StyleConventional
		cfg.Keywords.Minor = []string{"feat"}
		cfg.Keywords.Patch = []string{"fix", "perf", "refactor", "revert", "security"}
		cfg.ExcludeTypes = []string{"docs", "test", "ci", "style", "build"}
	}

	return cfg
}

// MapToSection returns the changelog section for a commit type and scope, or
// SectionNone when the commit is excluded. Unknown types are excluded, not errors.
func (c *Config) MapToSection(commitType, scope string) Section {
	if c.excluded(commitType, scope) {
		return SectionNone
	}
	return c.TypeToSection[commitType]
}

// SectionFor is MapToSection with the breaking override applied: a breaking
// commit that survives the exclusion filters always lands in Changed.
func (c *Config) SectionFor(commitType, scope string, breaking bool) Section {
	if breaking && !c.excluded(commitType, scope) {
		return SectionChanged
	}
	return c.MapToSection(commitType, scope)
}

func (c *Config) excluded(commitType, scope string) bool {
	if slices.Contains(c.ExcludeTypes, commitType) {
		return true
	}
	return scope != "" && slices.Contains(c.ExcludeScopes, scope)
}

// IsMinor reports whether the commit type is a minor bump keyword.
func (k Keywords) IsMinor(commitType string) bool {
	return slices.Contains(k.Minor, commitType)
}

// IsPatch reports whether the commit type is a patch bump keyword.
func (k Keywords) IsPatch(commitType string) bool {
	return slices.Contains(k.Patch, commitType)
}
