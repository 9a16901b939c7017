package semver

import (
	"fmt"
	"strings"

	"github.com/ariel-frischer/relver/internal/commit"
	"github.com/ariel-frischer/relver/internal/convention"
)

// BumpType is the magnitude of a version increment, ordered
// BumpNone < BumpPatch < BumpMinor < BumpMajor.
type BumpType int

const (
	BumpNone BumpType = iota
	BumpPatch
	BumpMinor
	BumpMajor
)

// String returns the lowercase bump name.
func (b BumpType) String() string {
	switch b {
	case BumpPatch:
		return "patch"
	case BumpMinor:
		return "minor"
	case BumpMajor:
		return "major"
	default:
		return "none"
	}
}

// ParseBump resolves a bump name as printed by String.
func ParseBump(s string) (BumpType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return BumpNone, nil
	case "patch":
		return BumpPatch, nil
	case "minor":
		return BumpMinor, nil
	case "major":
		return BumpMajor, nil
	default:
		return BumpNone, fmt.Errorf("unknown bump type %q", s)
	}
}

// Max returns the larger of two bumps.
func Max(a, b BumpType) BumpType {
	if a > b {
		return a
	}
	return b
}

// ComputeBump returns the highest bump warranted by the commits.
//
// For each commit the full message is scanned for major keywords first, and a
// breaking commit forces major as well; major ends the scan. Otherwise the
// commit type is compared against the minor and then the patch keywords.
func ComputeBump(commits []commit.Classified, kw convention.Keywords) BumpType {
	bump := BumpNone
	for _, c := range commits {
		if c.IsBreaking || containsAny(c.Text(), kw.Major) {
			return BumpMajor
		}
		switch {
		case kw.IsMinor(c.Type):
			bump = Max(bump, BumpMinor)
		case kw.IsPatch(c.Type):
			bump = Max(bump, BumpPatch)
		}
	}
	return bump
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(text, k) {
			return true
		}
	}
	return false
}
