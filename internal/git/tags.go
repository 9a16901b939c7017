package git

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/ariel-frischer/relver/internal/semver"
)

// ErrTagExists is returned by CreateTag when the tag name is taken.
var ErrTagExists = errors.New("tag already exists")

// Tag is a release tag resolved to its commit.
type Tag struct {
	Name    string
	Commit  string
	Version semver.Version
}

// TagMatcher decides whether a tag name is a release tag and extracts its version.
type TagMatcher func(name string) (semver.Version, bool)

// PrefixMatcher matches repo-wide tags such as "v1.2.3".
func PrefixMatcher(prefix string) TagMatcher {
	return func(name string) (semver.Version, bool) {
		return semver.ParseTag(name, prefix)
	}
}

// PackageMatcher matches "<pkg>@<version>" tags for one package.
func PackageMatcher(pkg string) TagMatcher {
	return func(name string) (semver.Version, bool) {
		n, v, ok := semver.ParseScopedTag(name)
		return v, ok && n == pkg
	}
}

// LatestTag walks history from HEAD and returns the nearest matching tag.
// When several matching tags point at the same commit the highest version wins.
func (s *Source) LatestTag(ctx context.Context, match TagMatcher) (Tag, bool, error) {
	byCommit, err := s.tagsByCommit(match)
	if err != nil {
		return Tag{}, false, err
	}
	if len(byCommit) == 0 {
		return Tag{}, false, nil
	}

	from, err := s.head()
	if err != nil {
		return Tag{}, false, err
	}
	iter, err := s.repo.Log(&git.LogOptions{From: from})
	if err != nil {
		return Tag{}, false, fmt.Errorf("reading log: %w", err)
	}
	defer iter.Close()

	var found Tag
	var ok bool
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		tags := byCommit[c.Hash]
		if len(tags) == 0 {
			return nil
		}
		found, ok = highest(tags), true
		return storer.ErrStop
	})
	if err != nil && !errors.Is(err, storer.ErrStop) {
		return Tag{}, false, err
	}

	if ok {
		logDebug("[git] LatestTag: %s at %s", found.Name, found.Commit)
	}
	return found, ok, nil
}

// tagsByCommit indexes every matching tag by the commit it points at.
// Annotated tags are peeled to their target commit.
func (s *Source) tagsByCommit(match TagMatcher) (map[plumbing.Hash][]Tag, error) {
	refs, err := s.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer refs.Close()

	out := make(map[plumbing.Hash][]Tag)
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		v, ok := match(name)
		if !ok {
			return nil
		}

		target := ref.Hash()
		if obj, err := s.repo.TagObject(target); err == nil {
			c, err := obj.Commit()
			if err != nil {
				logDebug("[git] skipping tag %s: %v", name, err)
				return nil
			}
			target = c.Hash
		}

		out[target] = append(out[target], Tag{Name: name, Commit: target.String(), Version: v})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}
	return out, nil
}

func highest(tags []Tag) Tag {
	best := tags[0]
	for _, t := range tags[1:] {
		if t.Version.Compare(best.Version) > 0 {
			best = t
		}
	}
	return best
}

// CreateTag creates an annotated tag at HEAD.
func (s *Source) CreateTag(name, message string) error {
	if _, err := s.repo.Tag(name); err == nil {
		return fmt.Errorf("%s: %w", name, ErrTagExists)
	}

	head, err := s.head()
	if err != nil {
		return err
	}

	_, err = s.repo.CreateTag(name, head, &git.CreateTagOptions{
		Tagger:  s.signature(),
		Message: message,
	})
	if err != nil {
		return fmt.Errorf("creating tag %s: %w", name, err)
	}

	logDebug("[git] CreateTag: %s at %s", name, head)
	return nil
}

// CommitFiles stages paths (relative to the worktree root) and commits them.
func (s *Source) CommitFiles(message string, paths []string) (string, error) {
	wt, err := s.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("getting worktree: %w", err)
	}

	for _, p := range paths {
		if _, err := wt.Add(p); err != nil {
			return "", fmt.Errorf("staging %s: %w", p, err)
		}
	}

	hash, err := wt.Commit(message, &git.CommitOptions{Author: s.signature()})
	if err != nil {
		return "", fmt.Errorf("committing release: %w", err)
	}

	logDebug("[git] CommitFiles: %s (%d files)", hash, len(paths))
	return hash.String(), nil
}

// signature returns the identity from git config, falling back to a fixed
// relver identity so tagging works on CI machines without user config.
func (s *Source) signature() *object.Signature {
	sig := &object.Signature{Name: "relver", Email: "relver@localhost", When: time.Now()}

	cfg, err := s.repo.ConfigScoped(config.GlobalScope)
	if err != nil {
		return sig
	}
	if cfg.User.Name != "" {
		sig.Name = cfg.User.Name
	}
	if cfg.User.Email != "" {
		sig.Email = cfg.User.Email
	}
	return sig
}
