package release

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
)

// DefaultGitHubURL is the public GitHub REST endpoint.
const DefaultGitHubURL = "https://api.github.com"

const (
	retryInitialInterval = 500 * time.Millisecond
	retryMaximumInterval = 5 * time.Second
)

// GitHubOptions configures a GitHub publisher.
type GitHubOptions struct {
	// BaseURL defaults to DefaultGitHubURL; set it for GitHub Enterprise.
	BaseURL    string
	Repository string
	Token      string
	// Retries is the number of attempts for transient failures.
	Retries    uint
	HTTPClient *http.Client
}

// GitHub publishes releases through the GitHub REST API.
type GitHub struct {
	endpoint string
	owner    string
	repo     string
	token    string
	retries  uint
	delay    time.Duration
	hc       *http.Client
}

// NewGitHub creates a GitHub publisher.
func NewGitHub(opts GitHubOptions) (*GitHub, error) {
	owner, repo, err := splitRepository(opts.Repository)
	if err != nil {
		return nil, err
	}
	if opts.Token == "" {
		return nil, errors.New("github: token is required")
	}

	endpoint := strings.TrimRight(opts.BaseURL, "/")
	if endpoint == "" {
		endpoint = DefaultGitHubURL
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	retries := opts.Retries
	if retries == 0 {
		retries = 3
	}

	return &GitHub{
		endpoint: endpoint,
		owner:    owner,
		repo:     repo,
		token:    opts.Token,
		retries:  retries,
		delay:    retryInitialInterval,
		hc:       hc,
	}, nil
}

// Name implements Publisher.
func (g *GitHub) Name() string { return "github" }

type githubReleaseRequest struct {
	TagName         string `json:"tag_name"`
	TargetCommitish string `json:"target_commitish,omitempty"`
	Name            string `json:"name"`
	Body            string `json:"body"`
	Draft           bool   `json:"draft"`
	Prerelease      bool   `json:"prerelease"`
}

type githubReleaseResponse struct {
	ID      int64  `json:"id"`
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// httpStatusError is a non-2xx response.
type httpStatusError struct {
	Status int
	Body   string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Body)
}

// retryable reports whether a failed request may succeed when repeated.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *httpStatusError
	if errors.As(err, &se) {
		return se.Status >= 500 || se.Status == http.StatusTooManyRequests
	}
	return !errors.Is(err, ErrReleaseExists)
}

// Publish creates the release, retrying server errors and network failures.
func (g *GitHub) Publish(ctx context.Context, r Release) (Published, error) {
	payload, err := json.Marshal(githubReleaseRequest{
		TagName:         r.Tag,
		TargetCommitish: r.Target,
		Name:            r.title(),
		Body:            r.Body,
		Draft:           r.Draft,
		Prerelease:      r.Prerelease,
	})
	if err != nil {
		return Published{}, fmt.Errorf("encoding release: %w", err)
	}

	path := fmt.Sprintf("%s/repos/%s/%s/releases", g.endpoint, g.owner, g.repo)

	var out githubReleaseResponse
	err = retry.Do(
		func() error {
			return g.post(ctx, path, payload, &out)
		},
		retry.Attempts(g.retries),
		retry.Delay(g.delay),
		retry.MaxDelay(retryMaximumInterval),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			slog.Warn("GitHub release request failed, retrying",
				"tag", r.Tag,
				"attempt", n+1,
				"max_attempts", g.retries,
				"error", err,
			)
		}),
	)
	if err != nil {
		return Published{}, fmt.Errorf("github: creating release %s: %w", r.Tag, err)
	}
	return Published{Tag: r.Tag, URL: out.HTMLURL}, nil
}

func (g *GitHub) post(ctx context.Context, path string, payload []byte, outObj any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Authorization", "Bearer "+g.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

	resp, err := g.hc.Do(req)
	if err != nil {
		return fmt.Errorf("failed to do http request, path:%s, err:%w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if resp.StatusCode == http.StatusUnprocessableEntity && bytes.Contains(body, []byte("already_exists")) {
			return ErrReleaseExists
		}
		return &httpStatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return json.NewDecoder(resp.Body).Decode(outObj)
}
