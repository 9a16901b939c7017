// Package release executes a release plan: it writes changelogs, syncs
// package manifests, tags and pushes, and publishes releases to the hosting
// service.
package release

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrReleaseExists is returned when the host already has a release for the tag.
var ErrReleaseExists = errors.New("release already exists")

// Release is a release to create on the hosting service.
type Release struct {
	Tag        string
	Name       string
	Body       string
	Target     string
	Draft      bool
	Prerelease bool
}

// title is the display name, falling back to the tag.
func (r Release) title() string {
	if strings.TrimSpace(r.Name) == "" {
		return r.Tag
	}
	return r.Name
}

// Published identifies a created release.
type Published struct {
	Tag string
	URL string
}

// Publisher creates releases on a hosting service.
type Publisher interface {
	Publish(ctx context.Context, r Release) (Published, error)
	Name() string
}

// ParseRepository extracts "owner/repo" from a remote URL in SCP, SSH or
// HTTPS form.
func ParseRepository(remote string) (owner, repo string, err error) {
	s := strings.TrimSpace(remote)

	switch {
	case strings.Contains(s, "://"):
		u, perr := url.Parse(s)
		if perr != nil {
			return "", "", fmt.Errorf("parsing remote URL %q: %w", remote, perr)
		}
		s = u.Path
	case strings.Contains(s, ":"):
		// git@host:owner/repo.git
		s = s[strings.Index(s, ":")+1:]
	}

	s = strings.TrimSuffix(strings.Trim(s, "/"), ".git")
	parts := strings.Split(s, "/")
	if len(parts) < 2 || parts[len(parts)-2] == "" || parts[len(parts)-1] == "" {
		return "", "", fmt.Errorf("cannot determine owner/repo from remote %q", remote)
	}
	return parts[len(parts)-2], parts[len(parts)-1], nil
}

// splitRepository splits an "owner/repo" string.
func splitRepository(s string) (owner, repo string, err error) {
	owner, repo, ok := strings.Cut(strings.Trim(s, "/"), "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("repository must be owner/repo, got %q", s)
	}
	return owner, repo, nil
}
