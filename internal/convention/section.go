package convention

import (
	"fmt"
	"strings"
)

// Section is a Keep a Changelog category. The zero value means excluded.
type Section string

const (
	SectionNone       Section = ""
	SectionAdded      Section = "Added"
	SectionChanged    Section = "Changed"
	SectionDeprecated Section = "Deprecated"
	SectionRemoved    Section = "Removed"
	SectionFixed      Section = "Fixed"
	SectionSecurity   Section = "Security"
)

// Sections returns every section in changelog display order.
func Sections() []Section {
	return []Section{
		SectionAdded,
		SectionChanged,
		SectionDeprecated,
		SectionRemoved,
		SectionFixed,
		SectionSecurity,
	}
}

// ParseSection resolves a section name case-insensitively.
func ParseSection(name string) (Section, error) {
	for _, s := range Sections() {
		if strings.EqualFold(string(s), strings.TrimSpace(name)) {
			return s, nil
		}
	}
	return SectionNone, fmt.Errorf("unknown changelog section %q (valid: added, changed, deprecated, removed, fixed, security)", name)
}

// defaultSections is the built-in type to section mapping shared by both styles.
func defaultSections() map[string]Section {
	return map[string]Section{
		"feat": SectionAdded,
		"new":  SectionAdded,
		"add":  SectionAdded,

		"fix":    SectionFixed,
		"bugfix": SectionFixed,
		"revert": SectionFixed,

		"security": SectionSecurity,

		"perf":     SectionChanged,
		"refactor": SectionChanged,
		"update":   SectionChanged,
		"change":   SectionChanged,
		"chore":    SectionChanged,
		"setup":    SectionChanged,

		"deprecate": SectionDeprecated,

		"remove": SectionRemoved,
		"delete": SectionRemoved,
	}
}
