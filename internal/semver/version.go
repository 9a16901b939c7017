package semver

import (
	"fmt"
	"strings"

	blang "github.com/blang/semver/v4"
)

// Version is a semantic version triple.
type Version struct {
	Major uint64
	Minor uint64
	Patch uint64
}

// Parse reads a version string, tolerating a leading "v" and missing
// components ("1.2" is 1.2.0). Prerelease and build metadata are discarded.
func Parse(s string) (Version, error) {
	v, err := blang.ParseTolerant(strings.TrimSpace(s))
	if err != nil {
		return Version{}, fmt.Errorf("parsing version %q: %w", s, err)
	}
	return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch}, nil
}

// MustParse is Parse for constants; it panics on invalid input.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// ParseTag extracts the version from a tag carrying the given prefix
// (for example "v1.2.3" with prefix "v"). ok is false when the tag does not
// carry the prefix or the remainder is not a version.
func ParseTag(tag, prefix string) (Version, bool) {
	if !strings.HasPrefix(tag, prefix) {
		return Version{}, false
	}
	v, err := Parse(strings.TrimPrefix(tag, prefix))
	if err != nil {
		return Version{}, false
	}
	return v, true
}

// ParseScopedTag splits a "<package>@<version>" tag. Scoped npm-style names
// such as "@acme/web@1.0.0" are split at the last "@".
func ParseScopedTag(tag string) (name string, v Version, ok bool) {
	i := strings.LastIndex(tag, "@")
	if i <= 0 {
		return "", Version{}, false
	}
	v, err := Parse(tag[i+1:])
	if err != nil {
		return "", Version{}, false
	}
	return tag[:i], v, true
}

// String renders the bare triple.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Display renders the version with an optional prerelease suffix.
func (v Version) Display(prerelease string) string {
	prerelease = strings.TrimPrefix(strings.TrimSpace(prerelease), "-")
	if prerelease == "" {
		return v.String()
	}
	return v.String() + "-" + prerelease
}

// Compare returns -1, 0 or 1 comparing v to o.
func (v Version) Compare(o Version) int {
	switch {
	case v.Major != o.Major:
		return cmpUint(v.Major, o.Major)
	case v.Minor != o.Minor:
		return cmpUint(v.Minor, o.Minor)
	default:
		return cmpUint(v.Patch, o.Patch)
	}
}

// Apply returns v bumped by b. BumpNone returns v unchanged. Zero-major
// versions get no special treatment.
func (v Version) Apply(b BumpType) Version {
	switch b {
	case BumpMajor:
		return Version{Major: v.Major + 1}
	case BumpMinor:
		return Version{Major: v.Major, Minor: v.Minor + 1}
	case BumpPatch:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
	default:
		return v
	}
}

func cmpUint(a, b uint64) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}
