package git

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/ariel-frischer/relver/internal/commit"
)

// LogOptions controls CommitsSince.
type LogOptions struct {
	// WithFiles populates RawCommit.ChangedFiles by diffing each commit
	// against its first parent.
	WithFiles bool
	// Until stops an unbounded walk (empty ref) once every listed SHA has
	// been reached. The commit completing the set is not returned.
	Until []string
}

// CommitsSince returns the commits reachable from HEAD that were made after
// ref, newest first. An empty ref returns the whole history. ref may be any
// revision go-git can resolve, typically a tag name.
func (s *Source) CommitsSince(ctx context.Context, ref string, opts LogOptions) ([]commit.RawCommit, error) {
	from, err := s.head()
	if err != nil {
		return nil, err
	}

	stop := plumbing.ZeroHash
	if ref != "" {
		h, err := s.repo.ResolveRevision(plumbing.Revision(ref))
		if err != nil {
			return nil, fmt.Errorf("resolving %q: %w", ref, err)
		}
		stop = *h
	}

	iter, err := s.repo.Log(&git.LogOptions{From: from})
	if err != nil {
		return nil, fmt.Errorf("reading log: %w", err)
	}
	defer iter.Close()

	pending := make(map[string]struct{}, len(opts.Until))
	if ref == "" {
		for _, sha := range opts.Until {
			pending[sha] = struct{}{}
		}
	}

	var out []commit.RawCommit
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if c.Hash == stop {
			return storer.ErrStop
		}
		if _, ok := pending[c.Hash.String()]; ok {
			delete(pending, c.Hash.String())
			if len(pending) == 0 {
				return storer.ErrStop
			}
		}

		raw := toRaw(c)
		if opts.WithFiles {
			files, err := changedFiles(ctx, c)
			if err != nil {
				return fmt.Errorf("diffing %s: %w", c.Hash, err)
			}
			raw.ChangedFiles = files
		}
		out = append(out, raw)
		return nil
	})
	if err != nil && !errors.Is(err, storer.ErrStop) {
		return nil, err
	}

	logDebug("[git] CommitsSince(%q): %d commits", ref, len(out))
	return out, nil
}

// toRaw splits a commit message into subject and body.
func toRaw(c *object.Commit) commit.RawCommit {
	msg := strings.TrimRight(c.Message, "\n")
	subject, body, _ := strings.Cut(msg, "\n")
	return commit.RawCommit{
		SHA:     c.Hash.String(),
		Subject: strings.TrimSpace(subject),
		Body:    strings.TrimSpace(body),
	}
}

// changedFiles lists paths touched by c relative to its first parent. Root
// commits are compared with the empty tree. Renames report both paths.
func changedFiles(ctx context.Context, c *object.Commit) ([]string, error) {
	tree, err := c.Tree()
	if err != nil {
		return nil, err
	}

	var parentTree *object.Tree
	if c.NumParents() > 0 {
		parent, err := c.Parent(0)
		if err != nil {
			return nil, err
		}
		if parentTree, err = parent.Tree(); err != nil {
			return nil, err
		}
	}

	changes, err := object.DiffTreeWithOptions(ctx, parentTree, tree, object.DefaultDiffTreeOptions)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(changes))
	files := make([]string, 0, len(changes))
	for _, ch := range changes {
		for _, name := range []string{ch.From.Name, ch.To.Name} {
			if name != "" && !seen[name] {
				seen[name] = true
				files = append(files, name)
			}
		}
	}
	return files, nil
}
