// Package git reads release history from a repository and writes release
// tags back to it. It uses go-git for every operation, so no git binary is
// required.
package git

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// ErrNotRepository is returned when no repository is found at or above the path.
var ErrNotRepository = errors.New("not a git repository")

// debugLogger is a function that logs debug messages when debug mode is enabled.
// By default, it's a no-op. Set it via SetDebugLogger to enable debug output.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for git operations.
// Pass nil to disable debug logging. The logger function should format
// and output the message (similar to log.Printf signature).
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

// logDebug logs a debug message if the debug logger is set.
func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// Source is an opened repository.
type Source struct {
	repo *git.Repository
	root string
}

// Open opens the repository containing path. If path is empty, the current
// working directory is used. Parent directories are searched for .git.
func Open(path string) (*Source, error) {
	repo, err := openRepo(path)
	if err != nil {
		return nil, err
	}

	s := &Source{repo: repo}
	if wt, err := repo.Worktree(); err == nil {
		s.root = wt.Filesystem.Root()
	}
	return s, nil
}

// openRepo opens a git repository at the specified path or current working directory.
// It uses go-git's PlainOpenWithOptions with DetectDotGit enabled to traverse
// up the directory tree to find the repository root.
func openRepo(path string) (*git.Repository, error) {
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
	}

	logDebug("[git] opening repository at %s", path)

	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotRepository)
	}
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}

	logDebug("[git] repository opened successfully")
	return repo, nil
}

// Root returns the absolute path of the worktree, or "" for bare repositories.
func (s *Source) Root() string {
	return s.root
}

// CurrentBranch returns the checked out branch name.
// Returns empty string if in detached HEAD state.
func (s *Source) CurrentBranch() (string, error) {
	head, err := s.repo.Head()
	if err != nil {
		return "", fmt.Errorf("getting HEAD reference: %w", err)
	}

	if !head.Name().IsBranch() {
		logDebug("[git] CurrentBranch: detached HEAD state")
		return "", nil
	}

	branch := head.Name().Short()
	logDebug("[git] CurrentBranch: %s", branch)
	return branch, nil
}

// RemoteURL returns the first URL configured for the named remote.
func (s *Source) RemoteURL(name string) (string, error) {
	remote, err := s.repo.Remote(name)
	if err != nil {
		return "", fmt.Errorf("looking up remote %q: %w", name, err)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("remote %q has no URL", name)
	}
	return urls[0], nil
}

// head returns the commit hash HEAD points at.
func (s *Source) head() (plumbing.Hash, error) {
	ref, err := s.repo.Head()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("getting HEAD reference: %w", err)
	}
	return ref.Hash(), nil
}
