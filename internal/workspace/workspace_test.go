package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariel-frischer/relver/internal/semver"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()

	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func fixture(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	writeFile(t, root, "package.json", `{"name": "root", "private": true, "workspaces": ["packages/*", "apps/*"]}`)
	writeFile(t, root, "packages/core/package.json", `{"name": "@acme/core", "version": "1.2.0"}`)
	writeFile(t, root, "packages/utils/package.json", `{"name": "@acme/utils", "version": "0.3.1", "private": "true"}`)
	writeFile(t, root, "apps/web/package.json", `{"name": "web"}`)
	writeFile(t, root, "apps/web/node_modules/dep/package.json", `{"name": "dep", "version": "9.9.9"}`)
	writeFile(t, root, "docs/README.md", "# docs")
	return root
}

func TestReadManifest(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		content string
		want    Manifest
		wantErr bool
	}{
		"full": {
			content: `{"name": "a", "version": "1.0.0", "private": false}`,
			want:    Manifest{Name: "a", Version: "1.0.0"},
		},
		"string private": {
			content: `{"name": "a", "private": "true"}`,
			want:    Manifest{Name: "a", Private: true},
		},
		"workspaces list": {
			content: `{"name": "r", "workspaces": ["packages/*"]}`,
			want:    Manifest{Name: "r", Workspaces: []string{"packages/*"}},
		},
		"yarn workspaces object": {
			content: `{"name": "r", "workspaces": {"packages": ["libs/*", "apps/*"]}}`,
			want:    Manifest{Name: "r", Workspaces: []string{"libs/*", "apps/*"}},
		},
		"invalid json": {
			content: `{"name": `,
			wantErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeFile(t, dir, "package.json", tc.content)

			got, err := ReadManifest(filepath.Join(dir, "package.json"))
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	root := fixture(t)

	tests := map[string]struct {
		globs     []string
		wantNames []string
	}{
		"root workspaces field": {
			wantNames: []string{"web", "@acme/core", "@acme/utils"},
		},
		"explicit directory glob": {
			globs:     []string{"packages/*"},
			wantNames: []string{"@acme/core", "@acme/utils"},
		},
		"double star manifest glob": {
			globs:     []string{"**/package.json"},
			wantNames: []string{"web", "root", "@acme/core", "@acme/utils"},
		},
		"overlapping globs dedupe": {
			globs:     []string{"./apps/*/", "apps/web"},
			wantNames: []string{"web"},
		},
		"no matches": {
			globs: []string{"libs/*"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			pkgs, err := Discover(root, tc.globs)
			require.NoError(t, err)

			var names []string
			for _, p := range pkgs {
				names = append(names, p.Name)
			}
			assert.Equal(t, tc.wantNames, names)
		})
	}
}

func TestDiscover_PackageFields(t *testing.T) {
	t.Parallel()

	pkgs, err := Discover(fixture(t), []string{"packages/*", "apps/*"})
	require.NoError(t, err)
	require.Len(t, pkgs, 3)

	web := pkgs[0]
	assert.Equal(t, "apps/web", web.Path)
	assert.Equal(t, "web", web.Scope)
	assert.Equal(t, semver.Version{}, web.Version)
	assert.Equal(t, "apps/web/package.json", web.Manifest)

	core := pkgs[1]
	assert.Equal(t, "packages/core", core.Path)
	assert.Equal(t, "core", core.Scope)
	assert.Equal(t, semver.MustParse("1.2.0"), core.Version)
	assert.False(t, core.Private)

	assert.True(t, pkgs[2].Private)
}

func TestDiscover_Errors(t *testing.T) {
	t.Parallel()

	_, err := Discover(t.TempDir(), nil)
	assert.Error(t, err)

	_, err = Discover(t.TempDir(), []string{"packages/[a"})
	assert.ErrorContains(t, err, "invalid workspace glob")

	root := t.TempDir()
	writeFile(t, root, "pkgs/a/package.json", `{"version": "1.0.0"}`)
	_, err = Discover(root, []string{"pkgs/*"})
	assert.ErrorContains(t, err, "has no name")

	root = t.TempDir()
	writeFile(t, root, "pkgs/a/package.json", `{"name": "a", "version": "latest"}`)
	_, err = Discover(root, []string{"pkgs/*"})
	assert.Error(t, err)
}

func TestDefaultScope(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "web", DefaultScope("@acme/web"))
	assert.Equal(t, "core", DefaultScope("core"))
}

func TestSyncVersion(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	original := "{\n  \"name\": \"a\",\n  \"version\": \"1.0.0\",\n  \"scripts\": {\n    \"build\": \"tsc\"\n  }\n}\n"
	writeFile(t, dir, "package.json", original)
	manifest := filepath.Join(dir, "package.json")

	require.NoError(t, SyncVersion(manifest, "1.1.0"))

	data, err := os.ReadFile(manifest)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"name\": \"a\",\n  \"version\": \"1.1.0\",\n  \"scripts\": {\n    \"build\": \"tsc\"\n  }\n}\n", string(data))

	m, err := ReadManifest(manifest)
	require.NoError(t, err)
	assert.Equal(t, "1.1.0", m.Version)

	assert.Error(t, SyncVersion(filepath.Join(dir, "missing.json"), "1.0.0"))
}
