package monorepo

import (
	"github.com/ariel-frischer/relver/internal/commit"
	"github.com/ariel-frischer/relver/internal/convention"
	"github.com/ariel-frischer/relver/internal/semver"
)

// PackageBumpResult is the release decision for one package.
type PackageBumpResult struct {
	Package    Package
	Bump       semver.BumpType
	NewVersion semver.Version
	// Tag is "<name>@<version>", empty when Bump is BumpNone.
	Tag string
	// Commits are the commits routed to the package, in input order.
	Commits []commit.Classified
}

// Released reports whether the package gets a new version.
func (r PackageBumpResult) Released() bool {
	return r.Bump != semver.BumpNone
}

// AggregateOptions controls how per-package bumps are derived.
type AggregateOptions struct {
	// Unified applies one bump, computed over every routed commit, to all
	// non-private packages.
	Unified bool
	// Prerelease is appended to the version in generated tags.
	Prerelease string
}

// Aggregate computes one result per registry package, in registry order.
// Private packages and packages without routed commits (outside unified mode)
// always get BumpNone.
func Aggregate(routed map[string][]commit.Classified, registry Registry, kw convention.Keywords, opts AggregateOptions) []PackageBumpResult {
	unifiedBump := semver.BumpNone
	if opts.Unified {
		unifiedBump = semver.ComputeBump(unionCommits(routed, registry), kw)
	}

	results := make([]PackageBumpResult, 0, len(registry))
	for _, pkg := range registry {
		res := PackageBumpResult{Package: pkg, NewVersion: pkg.Version}
		if !pkg.Private {
			res.Commits = routed[pkg.Path]
			if opts.Unified {
				res.Bump = unifiedBump
			} else {
				res.Bump = semver.ComputeBump(res.Commits, kw)
			}
		}
		if res.Released() {
			res.NewVersion = pkg.Version.Apply(res.Bump)
			res.Tag = ScopedTag(pkg.Name, res.NewVersion.Display(opts.Prerelease))
		}
		results = append(results, res)
	}
	return results
}

// ScopedTag formats a package release tag.
func ScopedTag(name, version string) string {
	return name + "@" + version
}

// unionCommits flattens the routed groups, keeping each commit once.
func unionCommits(routed map[string][]commit.Classified, registry Registry) []commit.Classified {
	seen := make(map[string]bool)
	var all []commit.Classified
	for _, pkg := range registry {
		for _, c := range routed[pkg.Path] {
			if c.SHA != "" && seen[c.SHA] {
				continue
			}
			seen[c.SHA] = true
			all = append(all, c)
		}
	}
	return all
}
