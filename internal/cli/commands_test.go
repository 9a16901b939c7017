package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariel-frischer/relver/internal/cli/shared"
	"github.com/ariel-frischer/relver/internal/config"
	clierrors "github.com/ariel-frischer/relver/internal/errors"
)

// These tests drive the global rootCmd and cannot run in parallel.

type fixture struct {
	t    *testing.T
	dir  string
	repo *git.Repository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	// Keep the developer's user config out of the tests.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	return &fixture{t: t, dir: dir, repo: repo}
}

func (f *fixture) write(name, content string) {
	f.t.Helper()
	full := filepath.Join(f.dir, name)
	require.NoError(f.t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(f.t, os.WriteFile(full, []byte(content), 0o644))
}

func (f *fixture) commit(msg string, files map[string]string) {
	f.t.Helper()
	wt, err := f.repo.Worktree()
	require.NoError(f.t, err)
	for name, content := range files {
		f.write(name, content)
		_, err := wt.Add(name)
		require.NoError(f.t, err)
	}
	_, err = wt.Commit(msg, &git.CommitOptions{
		Author:            &object.Signature{Name: "Test", Email: "test@test.com"},
		AllowEmptyCommits: true,
	})
	require.NoError(f.t, err)
}

func (f *fixture) tag(name string) {
	f.t.Helper()
	head, err := f.repo.Head()
	require.NoError(f.t, err)
	_, err = f.repo.CreateTag(name, head.Hash(), nil)
	require.NoError(f.t, err)
}

func (f *fixture) tags() []string {
	f.t.Helper()
	iter, err := f.repo.Tags()
	require.NoError(f.t, err)
	var out []string
	for {
		ref, err := iter.Next()
		if err != nil {
			break
		}
		out = append(out, ref.Name().Short())
	}
	return out
}

func (f *fixture) headMessage() string {
	f.t.Helper()
	head, err := f.repo.Head()
	require.NoError(f.t, err)
	c, err := f.repo.CommitObject(head.Hash())
	require.NoError(f.t, err)
	return strings.TrimSpace(c.Message)
}

// run executes rootCmd against the fixture with --plain.
func (f *fixture) run(args ...string) (string, error) {
	f.t.Helper()
	return execute(f.t, append([]string{"--repo", f.dir, "--plain"}, args...)...)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

// resetFlags restores every flag to its default between executions.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// releasedRepo has v1.0.0 followed by a feature and a fix.
func releasedRepo(t *testing.T) *fixture {
	f := newFixture(t)
	f.commit("chore: init", map[string]string{"README.md": "# demo\n"})
	f.tag("v1.0.0")
	f.commit("feat: add search", map[string]string{"search.go": "package demo\n"})
	f.commit("fix(search): handle empty query", nil)
	return f
}

func TestNext(t *testing.T) {
	tests := map[string]struct {
		setup func(t *testing.T) *fixture
		args  []string
		want  string
	}{
		"minor release": {
			setup: releasedRepo,
			want:  "1.1.0\n",
		},
		"bump only": {
			setup: releasedRepo,
			args:  []string{"--bump"},
			want:  "minor\n",
		},
		"min bump from config": {
			setup: releasedRepo,
			args:  []string{"--set", "min_bump=major"},
			want:  "2.0.0\n",
		},
		"first release uses initial version": {
			setup: func(t *testing.T) *fixture {
				f := newFixture(t)
				f.commit("fix: first", nil)
				return f
			},
			want: "0.1.0\n",
		},
		"nothing to release": {
			setup: func(t *testing.T) *fixture {
				f := newFixture(t)
				f.commit("feat: x", nil)
				f.tag("v2.0.0")
				return f
			},
			want: "",
		},
		"custom prefix and prerelease": {
			setup: func(t *testing.T) *fixture {
				f := releasedRepo(t)
				f.tag("rel-1.0.5")
				f.commit("feat!: drop v1 api", nil)
				return f
			},
			args: []string{"--set", "tag_prefix=rel-", "--set", "prerelease=rc.1"},
			want: "2.0.0-rc.1\n",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			f := tt.setup(t)
			out, err := f.run(append([]string{"next"}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestChangelog(t *testing.T) {
	f := releasedRepo(t)

	out, err := f.run("changelog", "--markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "## [1.1.0] - ")
	assert.Contains(t, out, "### Added\n- add search\n")
	assert.Contains(t, out, "### Fixed\n- handle empty query\n")

	out, err = f.run("changelog")
	require.NoError(t, err)
	assert.Contains(t, out, "1.1.0")
	assert.Contains(t, out, "add search")

	out, err = f.run("changelog", "--write")
	require.NoError(t, err)
	assert.Equal(t, "Updated CHANGELOG.md (1.1.0)\n", out)

	data, err := os.ReadFile(filepath.Join(f.dir, "CHANGELOG.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Changelog")
	assert.Contains(t, string(data), "## [1.1.0] - ")

	_, err = f.run("changelog", "--package", "web")
	require.Error(t, err)
	assert.Equal(t, shared.ExitInvalidArguments, ExitCode(err))
}

func TestPlan(t *testing.T) {
	f := releasedRepo(t)

	out, err := f.run("plan")
	require.NoError(t, err)
	assert.Contains(t, out, "(repository)")
	assert.Contains(t, out, "1.0.0")
	assert.Contains(t, out, "minor")
	assert.Contains(t, out, "v1.1.0")
	assert.Contains(t, out, "(repository): Added 1, Fixed 1")
	assert.NotContains(t, out, "feat: add search")

	out, err = f.run("plan", "--commits")
	require.NoError(t, err)
	assert.Regexp(t, `(?m)^  [0-9a-f]{7}  Added      feat: add search$`, out)
	assert.Regexp(t, `(?m)^  [0-9a-f]{7}  Fixed      fix\(search\): handle empty query$`, out)
}

func TestRelease(t *testing.T) {
	f := releasedRepo(t)

	out, err := f.run("release", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "dry run")
	assert.Contains(t, out, "changelog")
	assert.Contains(t, out, "chore(release): v1.1.0")
	assert.NotContains(t, f.tags(), "v1.1.0")
	assert.NoFileExists(t, filepath.Join(f.dir, "CHANGELOG.md"))

	out, err = f.run("release")
	require.NoError(t, err)
	assert.Contains(t, out, "released v1.1.0")
	assert.Contains(t, f.tags(), "v1.1.0")
	assert.Equal(t, "chore(release): v1.1.0", f.headMessage())
	assert.FileExists(t, filepath.Join(f.dir, "CHANGELOG.md"))

	out, err = f.run("release")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing to release")

	_, err = f.run("release", "--fail-on-empty")
	require.Error(t, err)
	assert.Equal(t, shared.ExitNothingToRelease, ExitCode(err))
	assert.True(t, silent(err))
}

func TestRelease_MissingToken(t *testing.T) {
	f := releasedRepo(t)
	t.Setenv("GITHUB_TOKEN", "")

	_, err := f.run("release", "--set", "release.provider=github", "--set", "release.repository=acme/demo")
	require.Error(t, err)
	assert.Equal(t, shared.ExitMissingPrerequisite, ExitCode(err))
	assert.NotContains(t, f.tags(), "v1.1.0")

	out, err := f.run("release", "--dry-run", "--set", "release.provider=github", "--set", "release.repository=acme/demo")
	require.NoError(t, err)
	assert.Contains(t, out, "publishing would fail")
}

func TestMonorepo(t *testing.T) {
	f := newFixture(t)
	f.commit("chore: init", map[string]string{
		"package.json":            `{"name": "root", "private": true, "workspaces": ["packages/*"]}`,
		"packages/a/package.json": "{\n  \"name\": \"@acme/a\",\n  \"version\": \"1.0.0\"\n}\n",
		"packages/b/package.json": "{\n  \"name\": \"@acme/b\",\n  \"version\": \"0.3.0\"\n}\n",
		".relver.yml":             "monorepo:\n  enabled: true\n",
	})
	f.tag("@acme/a@1.0.0")
	f.tag("@acme/b@0.3.0")
	f.commit("feat(a): add widget", map[string]string{"packages/a/widget.js": "x"})
	f.commit("fix: patch b", map[string]string{"packages/b/b.js": "y"})

	out, err := f.run("next")
	require.NoError(t, err)
	assert.Equal(t, "@acme/a 1.1.0\n@acme/b 0.3.1\n", out)

	out, err = f.run("plan")
	require.NoError(t, err)
	assert.Contains(t, out, "@acme/a@1.1.0")
	assert.Contains(t, out, "@acme/b@0.3.1")

	out, err = f.run("changelog", "--markdown", "--package", "@acme/b")
	require.NoError(t, err)
	assert.Contains(t, out, "# @acme/b\n")
	assert.Contains(t, out, "### Fixed\n- patch b\n")
	assert.NotContains(t, out, "add widget")

	_, err = f.run("release")
	require.NoError(t, err)
	assert.Subset(t, f.tags(), []string{"@acme/a@1.1.0", "@acme/b@0.3.1"})

	manifest, err := os.ReadFile(filepath.Join(f.dir, "packages/a/package.json"))
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"name\": \"@acme/a\",\n  \"version\": \"1.1.0\"\n}\n", string(manifest))
	assert.FileExists(t, filepath.Join(f.dir, "packages/a/CHANGELOG.md"))
	assert.NoFileExists(t, filepath.Join(f.dir, "CHANGELOG.md"))

	out, err = f.run("next")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestClassify(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	out, err := execute(t, "--repo", t.TempDir(), "classify", "feat(api)!: drop v1 endpoints")
	require.NoError(t, err)
	assert.Contains(t, out, "type:        feat\n")
	assert.Contains(t, out, "scope:       api\n")
	assert.Contains(t, out, "breaking:    true\n")
	assert.Contains(t, out, "section:     Changed\n")
	assert.Contains(t, out, "bump:        major\n")

	out, err = execute(t, "--repo", t.TempDir(), "classify", "docs: readme", "--body", "")
	require.NoError(t, err)
	assert.Contains(t, out, "section:     (excluded)\n")

	_, err = execute(t, "--repo", t.TempDir(), "classify")
	require.Error(t, err)
	assert.Equal(t, shared.ExitInvalidArguments, ExitCode(err))
}

func TestErrors(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	_, err := execute(t, "--repo", t.TempDir(), "next")
	require.Error(t, err)
	cliErr := clierrors.AsCLIError(err)
	require.NotNil(t, cliErr)
	assert.Equal(t, clierrors.Prerequisite, cliErr.Category)
	assert.Equal(t, shared.ExitMissingPrerequisite, ExitCode(err))

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.ProjectConfigFile), []byte("convention: nope\n"), 0o644))
	_, err = execute(t, "--repo", dir, "next")
	require.Error(t, err)
	cliErr = clierrors.AsCLIError(err)
	require.NotNil(t, cliErr)
	assert.Equal(t, clierrors.Configuration, cliErr.Category)

	// Commands that do not need configuration still work.
	out, err := execute(t, "--repo", dir, "config", "keys")
	require.NoError(t, err)
	assert.Contains(t, out, "release.provider")
}
