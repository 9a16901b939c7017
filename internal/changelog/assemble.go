package changelog

import (
	"strings"

	"github.com/ariel-frischer/relver/internal/commit"
)

// BreakingPrefix marks breaking entries in rendered changelogs.
const BreakingPrefix = "**BREAKING:** "

// Assemble groups commits by their section. Excluded commits are skipped and
// the input order is kept within each section.
func Assemble(commits []commit.Classified) Changes {
	var c Changes
	for _, cm := range commits {
		if cm.Excluded() {
			continue
		}
		c.add(cm.Section, EntryText(cm))
	}
	return c
}

// EntryText is the rendered line for a commit, without the list marker.
func EntryText(c commit.Classified) string {
	if c.IsBreaking {
		return BreakingPrefix + c.Description
	}
	return c.Description
}

// Render renders the changelog entry for version as markdown, beginning with
// the "## [version] - date" header.
func Render(version, date string, commits []commit.Classified) string {
	var b strings.Builder
	_ = RenderVersion(&Version{Version: version, Date: date, Changes: Assemble(commits)}, &b)
	return b.String()
}

// RenderBody renders only the section blocks of an entry. It is used for
// release notes, where the host already shows the version as the title.
func RenderBody(commits []commit.Classified) string {
	var b strings.Builder
	changes := Assemble(commits)
	_ = renderChanges(&changes, &b)
	return strings.TrimLeft(b.String(), "\n")
}
