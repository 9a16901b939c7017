package release

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariel-frischer/relver/internal/commit"
	"github.com/ariel-frischer/relver/internal/convention"
	"github.com/ariel-frischer/relver/internal/monorepo"
	"github.com/ariel-frischer/relver/internal/planner"
	"github.com/ariel-frischer/relver/internal/semver"
)

type fakeRepo struct {
	commits []string
	files   [][]string
	tags    []string
	pushed  []string
	branch  string
	tagErr  error
}

func (f *fakeRepo) CommitFiles(message string, paths []string) (string, error) {
	f.commits = append(f.commits, message)
	f.files = append(f.files, paths)
	return "abc123", nil
}

func (f *fakeRepo) CreateTag(name, message string) error {
	if f.tagErr != nil {
		return f.tagErr
	}
	f.tags = append(f.tags, name)
	return nil
}

func (f *fakeRepo) CurrentBranch() (string, error) { return f.branch, nil }

func (f *fakeRepo) Push(ctx context.Context, remote, branch string, tags []string) error {
	f.pushed = append(f.pushed, remote+" "+branch)
	f.pushed = append(f.pushed, tags...)
	return nil
}

type fakePublisher struct {
	mu       sync.Mutex
	releases []Release
	fail     map[string]error
}

func (f *fakePublisher) Name() string { return "fake" }

func (f *fakePublisher) Publish(ctx context.Context, r Release) (Published, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail[r.Tag]; err != nil {
		return Published{}, err
	}
	f.releases = append(f.releases, r)
	return Published{Tag: r.Tag, URL: "https://host/" + r.Tag}, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func repoPlan(t *testing.T, subjects ...string) *planner.Result {
	t.Helper()

	var raws []commit.RawCommit
	for i, s := range subjects {
		raws = append(raws, commit.RawCommit{SHA: string(rune('a' + i)), Subject: s})
	}
	current := semver.MustParse("1.0.0")
	plan, err := planner.Plan(planner.Input{
		Commits:    raws,
		Convention: convention.Defaults(convention.StyleConventional),
		Current:    &current,
		TagPrefix:  "v",
		Date:       "2026-10-18",
	})
	require.NoError(t, err)
	return plan
}

func TestRunner_RepoRelease(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	repo := &fakeRepo{branch: "main"}
	pub := &fakePublisher{}

	r := NewRunner(repo, pub, Options{
		Root:        root,
		ProjectName: "widgets",
		Commit:      true,
		Push:        true,
		Publish:     true,
	}, quietLogger())

	report, err := r.Run(context.Background(), repoPlan(t, "feat: add auth", "fix: fix leak"))
	require.NoError(t, err)

	assert.Equal(t, []string{"v1.1.0"}, report.Tags)
	assert.Equal(t, []string{"v1.1.0"}, repo.tags)
	assert.Equal(t, []string{"chore(release): v1.1.0"}, repo.commits)
	assert.Equal(t, [][]string{{"CHANGELOG.md"}}, repo.files)
	assert.Equal(t, []string{"origin main", "v1.1.0"}, repo.pushed)

	require.Len(t, pub.releases, 1)
	assert.Equal(t, "v1.1.0", pub.releases[0].Name)
	assert.Equal(t, "### Added\n- add auth\n\n### Fixed\n- fix leak\n", pub.releases[0].Body)
	assert.False(t, pub.releases[0].Prerelease)
	assert.Equal(t, []Published{{Tag: "v1.1.0", URL: "https://host/v1.1.0"}}, report.Published)

	data, err := os.ReadFile(filepath.Join(root, "CHANGELOG.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "All notable changes to widgets")
	assert.Contains(t, string(data), "## [1.1.0] - 2026-10-18\n\n### Added\n- add auth\n")
}

func TestRunner_DryRun(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	repo := &fakeRepo{branch: "main"}
	pub := &fakePublisher{}

	r := NewRunner(repo, pub, Options{Root: root, DryRun: true, Commit: true, Push: true, Publish: true}, quietLogger())
	report, err := r.Run(context.Background(), repoPlan(t, "fix: a"))
	require.NoError(t, err)

	kinds := make([]string, 0, len(report.Steps))
	for _, s := range report.Steps {
		kinds = append(kinds, s.Kind)
	}
	assert.Equal(t, []string{StepChangelog, StepCommit, StepTag, StepPush, StepPublish}, kinds)

	assert.Empty(t, repo.tags)
	assert.Empty(t, repo.commits)
	assert.Empty(t, pub.releases)
	_, err = os.Stat(filepath.Join(root, "CHANGELOG.md"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunner_NothingToRelease(t *testing.T) {
	t.Parallel()

	r := NewRunner(&fakeRepo{}, nil, Options{Root: t.TempDir()}, quietLogger())
	_, err := r.Run(context.Background(), repoPlan(t, "docs: readme"))
	assert.ErrorIs(t, err, ErrNothingToRelease)
}

func TestRunner_TagFailureStops(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{tagErr: errors.New("tag exists")}
	pub := &fakePublisher{}
	r := NewRunner(repo, pub, Options{Root: t.TempDir(), Publish: true}, quietLogger())

	_, err := r.Run(context.Background(), repoPlan(t, "fix: a"))
	assert.ErrorContains(t, err, "tag exists")
	assert.Empty(t, pub.releases)
}

func TestRunner_Monorepo(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, p := range []string{"packages/a", "packages/b", "packages/c"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, p), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(root, p, "package.json"),
			[]byte("{\n  \"name\": \""+filepath.Base(p)+"\",\n  \"version\": \"1.0.0\"\n}\n"), 0o644))
	}

	reg, err := monorepo.NewRegistry([]monorepo.Package{
		{Name: "a", Path: "packages/a", Scope: "a", Version: semver.MustParse("1.0.0"), Manifest: "packages/a/package.json"},
		{Name: "b", Path: "packages/b", Scope: "b", Version: semver.MustParse("1.0.0"), Manifest: "packages/b/package.json"},
		{Name: "c", Path: "packages/c", Scope: "c", Version: semver.MustParse("1.0.0"), Manifest: "packages/c/package.json"},
	})
	require.NoError(t, err)

	plan, err := planner.Plan(planner.Input{
		Commits: []commit.RawCommit{
			{SHA: "2", Subject: "fix(b): patch b"},
			{SHA: "1", Subject: "feat(a): add a"},
		},
		Convention: convention.Defaults(convention.StyleConventional),
		Prerelease: "beta.1",
		Date:       "2026-10-18",
		Monorepo:   &planner.Monorepo{Registry: reg, Mode: monorepo.ModeScope},
	})
	require.NoError(t, err)

	repo := &fakeRepo{branch: "main"}
	pub := &fakePublisher{fail: map[string]error{"b@1.0.1-beta.1": ErrReleaseExists}}
	r := NewRunner(repo, pub, Options{
		Root:        root,
		PerPackage:  true,
		Commit:      true,
		Publish:     true,
		Concurrency: 2,
	}, quietLogger())

	report, err := r.Run(context.Background(), plan)
	require.NoError(t, err)

	assert.Equal(t, []string{"a@1.1.0-beta.1", "b@1.0.1-beta.1"}, repo.tags)
	assert.Equal(t, []string{"chore(release): a@1.1.0-beta.1, b@1.0.1-beta.1"}, repo.commits)
	assert.ElementsMatch(t, []string{
		"packages/a/CHANGELOG.md", "packages/a/package.json",
		"packages/b/CHANGELOG.md", "packages/b/package.json",
	}, repo.files[0])

	manifest, err := os.ReadFile(filepath.Join(root, "packages/a/package.json"))
	require.NoError(t, err)
	assert.Contains(t, string(manifest), `"version": "1.1.0-beta.1"`)

	untouched, err := os.ReadFile(filepath.Join(root, "packages/c/package.json"))
	require.NoError(t, err)
	assert.Contains(t, string(untouched), `"version": "1.0.0"`)

	_, err = os.Stat(filepath.Join(root, "CHANGELOG.md"))
	assert.True(t, os.IsNotExist(err))

	cl, err := os.ReadFile(filepath.Join(root, "packages/a/CHANGELOG.md"))
	require.NoError(t, err)
	assert.Contains(t, string(cl), "## [1.1.0-beta.1] - 2026-10-18\n\n### Added\n- add a\n")

	require.Len(t, pub.releases, 1)
	assert.True(t, pub.releases[0].Prerelease)
	assert.Equal(t, []Published{
		{Tag: "a@1.1.0-beta.1", URL: "https://host/a@1.1.0-beta.1"},
		{Tag: "b@1.0.1-beta.1"},
	}, report.Published)
}

func TestRunner_PublishFailure(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{fail: map[string]error{"v1.0.1": errors.New("boom")}}
	r := NewRunner(&fakeRepo{}, pub, Options{Root: t.TempDir(), Publish: true}, quietLogger())

	_, err := r.Run(context.Background(), repoPlan(t, "fix: a"))
	assert.ErrorContains(t, err, "publishing v1.0.1")
	assert.ErrorContains(t, err, "boom")
}
