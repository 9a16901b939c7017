package changelog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrEntryExists is returned when the changelog already has the version.
var ErrEntryExists = errors.New("changelog already contains this version")

// InsertEntry adds v to the changelog file at path. A missing file is created
// with the standard header. The entry goes above the newest released version,
// below any Unreleased block.
func InsertEntry(path, project string, v *Version) error {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading changelog %s: %w", path, err)
	}

	var content string
	if errors.Is(err, fs.ErrNotExist) {
		var b strings.Builder
		if err := RenderHeader(project, &b); err != nil {
			return fmt.Errorf("rendering header: %w", err)
		}
		b.WriteString("\n")
		b.WriteString(RenderVersionString(v))
		content = b.String()
	} else {
		content, err = InsertInto(string(data), v)
		if err != nil {
			return err
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating changelog directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing changelog %s: %w", path, err)
	}
	return nil
}

// InsertInto returns content with the rendered entry for v inserted.
func InsertInto(content string, v *Version) (string, error) {
	if !v.IsUnreleased() && HasVersion(content, v.Version) {
		return "", fmt.Errorf("version %s: %w", v.Version, ErrEntryExists)
	}

	entry := RenderVersionString(v)
	lines := strings.SplitAfter(content, "\n")

	for i, line := range lines {
		if !isReleaseHeading(line) {
			continue
		}
		var b strings.Builder
		for _, l := range lines[:i] {
			b.WriteString(l)
		}
		b.WriteString(entry)
		b.WriteString("\n")
		for _, l := range lines[i:] {
			b.WriteString(l)
		}
		return b.String(), nil
	}

	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + "\n" + entry, nil
}

// HasVersion reports whether content has a "## [version]" heading.
func HasVersion(content, version string) bool {
	prefix := "## [" + version + "]"
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), prefix) {
			return true
		}
	}
	return false
}

// isReleaseHeading matches "## [x]" headings other than Unreleased.
func isReleaseHeading(line string) bool {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "## [") {
		return false
	}
	return !strings.HasPrefix(strings.ToLower(line), "## [unreleased]")
}
