package commit

import (
	"regexp"
	"strings"

	"github.com/ariel-frischer/relver/internal/convention"
)

// headerPattern matches "type(scope)!: description" where scope and "!" are optional.
var headerPattern = regexp.MustCompile(`^([a-z]+)(?:\s*\(([^)]*)\))?(!)?: (.*)$`)

// breakingMarkers are the body footers that flag a breaking change.
var breakingMarkers = []string{"BREAKING CHANGE", "BREAKING-CHANGE"}

// Classify parses a commit subject and body into a Classification.
// It never fails: subjects that do not match the header pattern yield
// type "other" with the original subject as the description.
func Classify(subject, body string) Classification {
	subject = firstLine(subject)

	var c Classification
	if m := headerPattern.FindStringSubmatch(stripLeadingSymbols(subject)); m != nil {
		c = Classification{
			Type:        m[1],
			Scope:       m[2],
			IsBreaking:  m[3] == "!",
			Description: m[4],
		}
	} else {
		c = Classification{Type: TypeOther, Description: subject}
	}

	if hasBreakingMarker(body) {
		c.IsBreaking = true
	}
	return c
}

// ClassifyRaw classifies a raw commit and assigns its changelog section.
func ClassifyRaw(raw RawCommit, cfg *convention.Config) Classified {
	c := Classify(raw.Subject, raw.Body)
	return Classified{
		SHA:          raw.SHA,
		Type:         c.Type,
		Scope:        c.Scope,
		IsBreaking:   c.IsBreaking,
		Description:  c.Description,
		Section:      cfg.SectionFor(c.Type, c.Scope, c.IsBreaking),
		Subject:      firstLine(raw.Subject),
		Body:         raw.Body,
		ChangedFiles: raw.ChangedFiles,
	}
}

// ClassifyAll classifies commits preserving input order.
func ClassifyAll(raws []RawCommit, cfg *convention.Config) []Classified {
	out := make([]Classified, 0, len(raws))
	for _, raw := range raws {
		out = append(out, ClassifyRaw(raw, cfg))
	}
	return out
}

// stripLeadingSymbols removes the maximal prefix of characters that are not
// ASCII letters, which drops emoji and the whitespace after them.
func stripLeadingSymbols(s string) string {
	for i := 0; i < len(s); i++ {
		if isASCIILetter(s[i]) {
			return s[i:]
		}
	}
	return ""
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func hasBreakingMarker(body string) bool {
	for _, marker := range breakingMarkers {
		if strings.Contains(body, marker) {
			return true
		}
	}
	return false
}
