package release

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/OpenCSGs/gitea-go-sdk/gitea"
)

// GiteaOptions configures a Gitea publisher.
type GiteaOptions struct {
	URL        string
	Repository string
	Token      string
	HTTPClient *http.Client
}

// Gitea publishes releases through the Gitea SDK.
type Gitea struct {
	url   string
	owner string
	repo  string
	token string
	hc    *http.Client
}

// NewGitea creates a Gitea publisher.
func NewGitea(opts GiteaOptions) (*Gitea, error) {
	if opts.URL == "" {
		return nil, errors.New("gitea: url is required")
	}
	owner, repo, err := splitRepository(opts.Repository)
	if err != nil {
		return nil, err
	}
	if opts.Token == "" {
		return nil, errors.New("gitea: token is required")
	}
	return &Gitea{
		url:   strings.TrimRight(opts.URL, "/"),
		owner: owner,
		repo:  repo,
		token: opts.Token,
		hc:    opts.HTTPClient,
	}, nil
}

// Name implements Publisher.
func (g *Gitea) Name() string { return "gitea" }

func (g *Gitea) client(ctx context.Context) (*gitea.Client, error) {
	opts := []gitea.ClientOption{
		gitea.SetContext(ctx),
		gitea.SetToken(g.token),
		// Skip the server version probe.
		gitea.SetGiteaVersion(""),
	}
	if g.hc != nil {
		opts = append(opts, gitea.SetHTTPClient(g.hc))
	}
	return gitea.NewClient(g.url, opts...)
}

// Publish implements Publisher.
func (g *Gitea) Publish(ctx context.Context, r Release) (Published, error) {
	c, err := g.client(ctx)
	if err != nil {
		return Published{}, fmt.Errorf("gitea: creating client: %w", err)
	}

	rel, resp, err := c.CreateRelease(g.owner, g.repo, gitea.CreateReleaseOption{
		TagName:      r.Tag,
		Target:       r.Target,
		Title:        r.title(),
		Note:         r.Body,
		IsDraft:      r.Draft,
		IsPrerelease: r.Prerelease,
	})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusConflict {
			return Published{}, fmt.Errorf("gitea: %s: %w", r.Tag, ErrReleaseExists)
		}
		return Published{}, fmt.Errorf("gitea: creating release %s: %w", r.Tag, err)
	}
	return Published{Tag: r.Tag, URL: rel.HTMLURL}, nil
}
