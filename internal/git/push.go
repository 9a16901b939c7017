package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

// DefaultPushTimeout bounds a push when the caller's context has no deadline.
const DefaultPushTimeout = 60 * time.Second

// Push pushes the current branch and the named tags to remote.
// An empty branch pushes only the tags.
func (s *Source) Push(ctx context.Context, remote, branch string, tags []string) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultPushTimeout)
		defer cancel()
	}

	url, err := s.RemoteURL(remote)
	if err != nil {
		return err
	}

	if isSSHURL(url) && !isSSHAgentAvailable() {
		return fmt.Errorf("remote %q uses SSH but no SSH agent is available (SSH_AUTH_SOCK is unset)", remote)
	}

	specs := refSpecs(branch, tags)
	if len(specs) == 0 {
		return nil
	}

	logDebug("[git] pushing %d refs to remote '%s' (%s)", len(specs), remote, url)

	err = s.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: remote,
		RefSpecs:   specs,
		Auth:       getAuthForURL(url),
	})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("pushing to %s: %w", remote, err)
	}
	return nil
}

// refSpecs builds the push refspecs for a branch and tags.
func refSpecs(branch string, tags []string) []config.RefSpec {
	var specs []config.RefSpec
	if branch != "" {
		ref := "refs/heads/" + branch
		specs = append(specs, config.RefSpec(ref+":"+ref))
	}
	for _, t := range tags {
		ref := "refs/tags/" + t
		specs = append(specs, config.RefSpec(ref+":"+ref))
	}
	return specs
}

// getAuthForURL returns the appropriate authentication method for a remote URL.
// SSH URLs use SSH agent auth, HTTPS URLs use environment credentials.
func getAuthForURL(url string) transport.AuthMethod {
	if isSSHURL(url) {
		auth, err := ssh.NewSSHAgentAuth("git")
		if err != nil {
			logDebug("[git] SSH agent auth failed: %v", err)
			return nil
		}
		return auth
	}

	username := os.Getenv("GIT_USERNAME")
	password := os.Getenv("GIT_PASSWORD")
	if username == "" {
		if token := os.Getenv("GITHUB_TOKEN"); token != "" {
			// GitHub accepts any non-empty username with a token as password.
			username, password = "x-access-token", token
		}
	}

	if username != "" {
		return &http.BasicAuth{
			Username: username,
			Password: password,
		}
	}

	return nil
}

// isSSHURL checks if a URL is an SSH URL.
// Detects git@ (SCP-style), ssh://, and git+ssh:// schemes.
func isSSHURL(url string) bool {
	return strings.HasPrefix(url, "git@") ||
		strings.HasPrefix(url, "ssh://") ||
		strings.HasPrefix(url, "git+ssh://")
}

// isSSHAgentAvailable checks if an SSH agent is available.
// Returns true only if SSH_AUTH_SOCK is set and non-empty.
func isSSHAgentAvailable() bool {
	sock := strings.TrimSpace(os.Getenv("SSH_AUTH_SOCK"))
	return sock != ""
}
