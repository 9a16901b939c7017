package monorepo

import (
	"testing"

	"github.com/ariel-frischer/relver/internal/commit"
	"github.com/ariel-frischer/relver/internal/convention"
	"github.com/ariel-frischer/relver/internal/semver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate(t *testing.T) {
	t.Parallel()

	cfg := convention.Defaults(convention.StyleConventional)
	reg, err := NewRegistry([]Package{
		{Name: "a", Path: "pkgs/a", Scope: "a", Version: semver.MustParse("1.0.0")},
		{Name: "b", Path: "pkgs/b", Scope: "b", Version: semver.MustParse("2.0.0")},
		{Name: "c", Path: "pkgs/c", Scope: "c", Version: semver.MustParse("0.5.0")},
		{Name: "secret", Path: "pkgs/secret", Scope: "secret", Version: semver.MustParse("1.0.0"), Private: true},
	})
	require.NoError(t, err)

	commits := commit.ClassifyAll([]commit.RawCommit{
		{SHA: "1", Subject: "feat(a): add thing"},
		{SHA: "2", Subject: "fix(b): fix thing"},
		{SHA: "3", Subject: "docs(c): explain"},
	}, cfg)
	routed := NewRouter(reg, nil, ModeScope).RouteAll(commits)

	t.Run("independent", func(t *testing.T) {
		t.Parallel()

		results := Aggregate(routed, reg, cfg.Keywords, AggregateOptions{})
		require.Len(t, results, 4)

		assert.Equal(t, semver.BumpMinor, results[0].Bump)
		assert.Equal(t, "1.1.0", results[0].NewVersion.String())
		assert.Equal(t, "a@1.1.0", results[0].Tag)

		assert.Equal(t, semver.BumpPatch, results[1].Bump)
		assert.Equal(t, "b@2.0.1", results[1].Tag)

		assert.False(t, results[2].Released())
		assert.Equal(t, "0.5.0", results[2].NewVersion.String())
		assert.Empty(t, results[2].Tag)

		assert.False(t, results[3].Released())
	})

	t.Run("unified", func(t *testing.T) {
		t.Parallel()

		results := Aggregate(routed, reg, cfg.Keywords, AggregateOptions{Unified: true})

		assert.Equal(t, "1.1.0", results[0].NewVersion.String())
		assert.Equal(t, "2.1.0", results[1].NewVersion.String())
		assert.Equal(t, "0.6.0", results[2].NewVersion.String())
		assert.Equal(t, semver.BumpNone, results[3].Bump)
		assert.Equal(t, "1.0.0", results[3].NewVersion.String())
	})

	t.Run("prerelease tags", func(t *testing.T) {
		t.Parallel()

		results := Aggregate(routed, reg, cfg.Keywords, AggregateOptions{Prerelease: "rc.1"})
		assert.Equal(t, "a@1.1.0-rc.1", results[0].Tag)
		assert.Equal(t, "1.1.0", results[0].NewVersion.String())
	})
}

func TestAggregate_UnifiedDedupesCascade(t *testing.T) {
	t.Parallel()

	cfg := convention.Defaults(convention.StyleConventional)
	reg, err := NewRegistry([]Package{
		{Name: "a", Path: "a", Version: semver.MustParse("1.0.0")},
		{Name: "b", Path: "b", Version: semver.MustParse("1.0.0")},
	})
	require.NoError(t, err)

	// An unscoped commit cascades to both packages but must be counted once.
	commits := commit.ClassifyAll([]commit.RawCommit{{SHA: "x", Subject: "fix: shared"}}, cfg)
	routed := NewRouter(reg, nil, ModeScope).RouteAll(commits)

	assert.Len(t, unionCommits(routed, reg), 1)

	results := Aggregate(routed, reg, cfg.Keywords, AggregateOptions{Unified: true})
	assert.Equal(t, "1.0.1", results[0].NewVersion.String())
	assert.Equal(t, "1.0.1", results[1].NewVersion.String())
}

func TestAggregate_NoCommits(t *testing.T) {
	t.Parallel()

	cfg := convention.Defaults(convention.StyleConventional)
	reg, err := NewRegistry([]Package{{Name: "a", Path: "a", Version: semver.MustParse("1.0.0")}})
	require.NoError(t, err)

	results := Aggregate(map[string][]commit.Classified{}, reg, cfg.Keywords, AggregateOptions{Unified: true})
	require.Len(t, results, 1)
	assert.False(t, results[0].Released())
}
