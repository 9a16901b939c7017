package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/relver/internal/cli/shared"
	"github.com/ariel-frischer/relver/internal/config"
	"github.com/ariel-frischer/relver/internal/convention"
	clierrors "github.com/ariel-frischer/relver/internal/errors"
	"github.com/ariel-frischer/relver/internal/git"
	"github.com/ariel-frischer/relver/internal/monorepo"
	"github.com/ariel-frischer/relver/internal/planner"
	"github.com/ariel-frischer/relver/internal/release"
	"github.com/ariel-frischer/relver/internal/semver"
	"github.com/ariel-frischer/relver/internal/workspace"
)

// session is what every repository command needs: the configuration, the
// opened repository and the derived classification rules.
type session struct {
	cfg    *config.Configuration
	src    *git.Source
	conv   *convention.Config
	logger *slog.Logger
}

func openSession(cmd *cobra.Command) (*session, error) {
	cfg := shared.ConfigFrom(cmd.Context())
	if cfg == nil {
		var err error
		if cfg, err = shared.LoadConfig(cmd); err != nil {
			return nil, clierrors.Wrap(err, clierrors.Configuration)
		}
	}

	dir, err := shared.RepoDir(cmd)
	if err != nil {
		return nil, err
	}
	src, err := git.Open(dir)
	if errors.Is(err, git.ErrNotRepository) {
		return nil, clierrors.NotGitRepository(dir)
	}
	if err != nil {
		return nil, err
	}

	conv, err := cfg.ConventionConfig()
	if err != nil {
		return nil, clierrors.Wrap(err, clierrors.Configuration)
	}

	return &session{cfg: cfg, src: src, conv: conv, logger: slog.Default()}, nil
}

// plan computes the release plan for HEAD.
func (s *session) plan(ctx context.Context) (*planner.Result, error) {
	in, err := s.input(ctx)
	if err != nil {
		return nil, err
	}
	return planner.Plan(in)
}

func (s *session) input(ctx context.Context) (planner.Input, error) {
	initial, err := s.cfg.InitialVersionValue()
	if err != nil {
		return planner.Input{}, clierrors.InvalidVersion(s.cfg.InitialVersion, "initial_version")
	}
	minBump, err := s.cfg.MinBumpValue()
	if err != nil {
		return planner.Input{}, clierrors.Wrap(err, clierrors.Configuration)
	}
	in := planner.Input{
		Convention:     s.conv,
		InitialVersion: initial,
		TagPrefix:      s.cfg.TagPrefix,
		Prerelease:     s.cfg.Prerelease,
		MinBump:        minBump,
	}

	latest, found, err := s.src.LatestTag(ctx, git.PrefixMatcher(s.cfg.TagPrefix))
	if err != nil {
		return planner.Input{}, fmt.Errorf("finding latest release tag: %w", err)
	}
	ref := ""
	if found {
		v := latest.Version
		in.Current = &v
		ref = latest.Name
	}

	if !s.cfg.Monorepo.Enabled {
		s.logger.Debug("planning repository release", "since", ref)
		in.Commits, err = s.src.CommitsSince(ctx, ref, git.LogOptions{})
		return in, err
	}

	mode, err := s.cfg.RoutingMode()
	if err != nil {
		return planner.Input{}, clierrors.Wrap(err, clierrors.Configuration)
	}
	reg, since, err := s.registry(ctx)
	if err != nil {
		return planner.Input{}, err
	}

	opts := git.LogOptions{WithFiles: mode != monorepo.ModeScope}
	if public := reg.Public(); len(public) > 0 && len(since) == len(public) {
		for _, sha := range since {
			opts.Until = append(opts.Until, sha)
		}
	}
	in.Commits, err = s.src.CommitsSince(ctx, "", opts)
	if err != nil {
		return planner.Input{}, err
	}

	in.Monorepo = &planner.Monorepo{
		Registry:  reg,
		Overrides: s.cfg.Monorepo.Scopes,
		Mode:      mode,
		Unified:   s.cfg.Monorepo.Unified,
		Since:     since,
	}
	s.logger.Debug("planning monorepo release", "packages", len(reg), "commits", len(in.Commits))
	return in, nil
}

// registry builds the package registry. Each public package's version comes
// from its latest name@version tag when one exists; since maps the package
// path to that tag's commit.
func (s *session) registry(ctx context.Context) (monorepo.Registry, map[string]string, error) {
	pkgs, err := s.packages()
	if err != nil {
		return nil, nil, err
	}

	since := make(map[string]string)
	for i := range pkgs {
		if pkgs[i].Private {
			continue
		}
		tag, ok, err := s.src.LatestTag(ctx, git.PackageMatcher(pkgs[i].Name))
		if err != nil {
			return nil, nil, fmt.Errorf("finding latest tag for %s: %w", pkgs[i].Name, err)
		}
		if ok {
			pkgs[i].Version = tag.Version
			since[monorepo.CleanPath(pkgs[i].Path)] = tag.Commit
		}
	}

	reg, err := monorepo.NewRegistry(pkgs)
	if err != nil {
		return nil, nil, clierrors.Wrap(err, clierrors.Configuration)
	}
	for _, scope := range reg.StaleOverrides(s.cfg.Monorepo.Scopes) {
		s.logger.Warn("scope override names no package, using package scopes",
			"scope", scope, "path", s.cfg.Monorepo.Scopes[scope])
	}
	return reg, since, nil
}

// packages returns the explicitly configured packages, or the workspace
// packages discovered from manifests.
func (s *session) packages() ([]monorepo.Package, error) {
	root := s.src.Root()
	if len(s.cfg.Monorepo.Packages) == 0 {
		pkgs, err := workspace.Discover(root, s.cfg.Monorepo.Workspaces)
		if err != nil {
			return nil, clierrors.WrapWithMessage(err, clierrors.Configuration, "discovering workspace packages",
				"Set monorepo.workspaces, or declare monorepo.packages")
		}
		if len(pkgs) == 0 {
			return nil, clierrors.NoPackages(root)
		}
		return pkgs, nil
	}

	pkgs := make([]monorepo.Package, 0, len(s.cfg.Monorepo.Packages))
	for _, pc := range s.cfg.Monorepo.Packages {
		p, err := configuredPackage(root, pc)
		if err != nil {
			return nil, err
		}
		pkgs = append(pkgs, p)
	}
	return pkgs, nil
}

// configuredPackage turns a monorepo.packages entry into a Package. The
// version falls back to the package's manifest when not configured.
func configuredPackage(root string, pc config.PackageConfig) (monorepo.Package, error) {
	p := monorepo.Package{
		Name:    pc.Name,
		Path:    monorepo.CleanPath(pc.Path),
		Scope:   pc.Scope,
		Private: pc.Private,
	}
	if p.Scope == "" {
		p.Scope = workspace.DefaultScope(pc.Name)
	}

	manifest := filepath.Join(root, filepath.FromSlash(p.Path), workspace.ManifestName)
	if _, err := os.Stat(manifest); err == nil {
		p.Manifest = filepath.ToSlash(filepath.Join(p.Path, workspace.ManifestName))
		if pc.Version == "" {
			m, err := workspace.ReadManifest(manifest)
			if err != nil {
				return monorepo.Package{}, err
			}
			pc.Version = m.Version
		}
	}

	if pc.Version != "" {
		v, err := semver.Parse(pc.Version)
		if err != nil {
			return monorepo.Package{}, clierrors.InvalidVersion(pc.Version, "package "+pc.Name)
		}
		p.Version = v
	}
	return p, nil
}

// publisher returns the configured release publisher, or nil when
// release.provider is none.
func (s *session) publisher() (release.Publisher, error) {
	rc := s.cfg.Release
	if rc.Provider == "" || rc.Provider == "none" {
		return nil, nil
	}

	token := s.cfg.ReleaseToken()
	if token == "" {
		return nil, clierrors.MissingReleaseToken(rc.Provider)
	}

	repo := rc.Repository
	if repo == "" {
		url, err := s.src.RemoteURL(s.cfg.Git.Remote)
		if err != nil {
			return nil, clierrors.MissingRepository(s.cfg.Git.Remote)
		}
		owner, name, err := release.ParseRepository(url)
		if err != nil {
			return nil, clierrors.MissingRepository(s.cfg.Git.Remote)
		}
		repo = owner + "/" + name
	}

	switch rc.Provider {
	case "github":
		gh, err := release.NewGitHub(release.GitHubOptions{
			BaseURL:    rc.URL,
			Repository: repo,
			Token:      token,
			Retries:    rc.Retries,
		})
		if err != nil {
			return nil, clierrors.Wrap(err, clierrors.Configuration)
		}
		return gh, nil
	case "gitea":
		if rc.URL == "" {
			return nil, clierrors.NewConfigError("release.url is required for gitea",
				"Set release.url to your Gitea base URL, e.g. https://gitea.example.com")
		}
		gt, err := release.NewGitea(release.GiteaOptions{
			URL:        rc.URL,
			Repository: repo,
			Token:      token,
		})
		if err != nil {
			return nil, clierrors.Wrap(err, clierrors.Configuration)
		}
		return gt, nil
	default:
		return nil, clierrors.NewConfigError(fmt.Sprintf("unknown release provider %q", rc.Provider))
	}
}

// packageNames lists the registry's package names for error messages.
func packageNames(pkgs []planner.PackageResult) []string {
	names := make([]string, 0, len(pkgs))
	for _, p := range pkgs {
		names = append(names, p.Package.Name)
	}
	return names
}
