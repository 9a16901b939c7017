package commit

import (
	"strings"

	"github.com/ariel-frischer/relver/internal/convention"
)

// TypeOther is assigned to messages that do not follow a known convention.
const TypeOther = "other"

// RawCommit is a commit as supplied by the git source. ChangedFiles is only
// populated when path-based package routing needs it.
type RawCommit struct {
	SHA          string
	Subject      string
	Body         string
	ChangedFiles []string
}

// Message returns the full commit message, subject and body separated the
// way git stores them.
func (r RawCommit) Message() string {
	if r.Body == "" {
		return r.Subject
	}
	return r.Subject + "\n\n" + r.Body
}

// Classification is the structured form of a single commit message.
type Classification struct {
	Type        string
	Scope       string
	IsBreaking  bool
	Description string
}

// Classified is a commit with its classification and changelog section.
// An empty Section means the commit is excluded from the changelog.
type Classified struct {
	SHA         string
	Type        string
	Scope       string
	IsBreaking  bool
	Description string
	Section     convention.Section

	// Subject and Body are kept for keyword scans over the full message.
	Subject      string
	Body         string
	ChangedFiles []string
}

// Excluded reports whether the commit has no changelog section.
func (c Classified) Excluded() bool {
	return c.Section == convention.SectionNone
}

// Text returns the full message text that keyword rules are matched against.
func (c Classified) Text() string {
	if c.Body == "" {
		return c.Subject
	}
	return c.Subject + "\n\n" + c.Body
}

// ShortSHA returns the first seven characters of the commit hash.
func (c Classified) ShortSHA() string {
	if len(c.SHA) <= 7 {
		return c.SHA
	}
	return c.SHA[:7]
}

// firstLine returns s up to the first newline, without trailing whitespace.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimRight(s, " \t\r")
}
