package changelog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertInto(t *testing.T) {
	t.Parallel()

	entry := &Version{Version: "1.1.0", Date: "2026-02-01", Changes: Changes{Added: []string{"New"}}}

	tests := map[string]struct {
		content   string
		wantOrder []string
	}{
		"above newest release": {
			content:   "# Changelog\n\n## [1.0.0] - 2026-01-01\n\n### Fixed\n- Old\n",
			wantOrder: []string{"# Changelog", "## [1.1.0] - 2026-02-01", "## [1.0.0] - 2026-01-01"},
		},
		"below unreleased": {
			content:   "# Changelog\n\n## [Unreleased]\n\n### Added\n- Pending\n\n## [1.0.0] - 2026-01-01\n",
			wantOrder: []string{"## [Unreleased]", "## [1.1.0] - 2026-02-01", "## [1.0.0] - 2026-01-01"},
		},
		"appended when no releases": {
			content:   "# Changelog\n\nIntro text.",
			wantOrder: []string{"Intro text.", "## [1.1.0] - 2026-02-01"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := InsertInto(tc.content, entry)
			require.NoError(t, err)

			last := -1
			for _, marker := range tc.wantOrder {
				idx := strings.Index(got, marker)
				require.GreaterOrEqual(t, idx, 0, "missing %q in:\n%s", marker, got)
				assert.Greater(t, idx, last, "%q out of order in:\n%s", marker, got)
				last = idx
			}
		})
	}
}

func TestInsertInto_Duplicate(t *testing.T) {
	t.Parallel()

	content := "# Changelog\n\n## [1.0.0] - 2026-01-01\n"
	_, err := InsertInto(content, &Version{Version: "1.0.0", Date: "2026-01-02"})

	assert.True(t, errors.Is(err, ErrEntryExists))
}

func TestInsertEntry_CreatesFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "packages", "a", "CHANGELOG.md")
	v := &Version{Version: "0.1.0", Date: "2026-03-03", Changes: Changes{Added: []string{"First"}}}

	require.NoError(t, InsertEntry(path, "a", v))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "All notable changes to a")
	assert.Contains(t, string(data), "## [0.1.0] - 2026-03-03\n\n### Added\n- First\n")
}

func TestInsertEntry_UpdatesFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "CHANGELOG.md")
	require.NoError(t, os.WriteFile(path, []byte("# Changelog\n\n## [0.1.0] - 2026-01-01\n"), 0o644))

	v := &Version{Version: "0.2.0", Date: "2026-02-02", Changes: Changes{Fixed: []string{"Bug"}}}
	require.NoError(t, InsertEntry(path, "", v))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Less(t, strings.Index(string(data), "0.2.0"), strings.Index(string(data), "0.1.0"))
}

func TestHasVersion(t *testing.T) {
	t.Parallel()

	content := "# Changelog\n\n## [1.2.0] - 2026-01-01\n"
	assert.True(t, HasVersion(content, "1.2.0"))
	assert.False(t, HasVersion(content, "1.2"))
	assert.False(t, HasVersion(content, "1.3.0"))
}
