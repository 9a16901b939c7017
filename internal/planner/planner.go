// Package planner turns a range of raw commits into a release plan: the
// repo-wide bump, next version and changelog entry, plus per-package results
// when the repository is a monorepo.
package planner

import (
	"errors"
	"time"

	"github.com/ariel-frischer/relver/internal/changelog"
	"github.com/ariel-frischer/relver/internal/commit"
	"github.com/ariel-frischer/relver/internal/convention"
	"github.com/ariel-frischer/relver/internal/monorepo"
	"github.com/ariel-frischer/relver/internal/semver"
)

// DateLayout is the changelog date format.
const DateLayout = "2006-01-02"

// ErrNoConvention is returned when Input carries no convention rules.
var ErrNoConvention = errors.New("planner: convention config is required")

// Input is everything Plan needs. Commits are newest first, as git log
// returns them.
type Input struct {
	Commits    []commit.RawCommit
	Convention *convention.Config

	// Current is the version of the latest release, nil when the repository
	// has never been released.
	Current        *semver.Version
	InitialVersion semver.Version
	TagPrefix      string
	Prerelease     string
	// MinBump raises the repo-wide bump of any plan that releases. Package
	// bumps are not affected.
	MinBump semver.BumpType
	// Date is stamped on changelog entries; empty means today.
	Date string

	// Monorepo enables per-package planning when non-nil.
	Monorepo *Monorepo
}

// Monorepo holds the package routing settings.
type Monorepo struct {
	Registry  monorepo.Registry
	Overrides map[string]string
	Mode      monorepo.Mode
	Unified   bool
	// Since maps a package path to the SHA its latest release tag points
	// at. Commits at or below that SHA in Input.Commits are already released
	// for the package and are not routed to it.
	Since map[string]string
}

// Result is a complete release plan.
type Result struct {
	Commits []commit.Classified

	Bump         semver.BumpType
	Current      semver.Version
	FirstRelease bool
	NextVersion  semver.Version
	// Version is NextVersion with the prerelease suffix applied.
	Version string
	Tag     string
	Title   string

	Entry     *changelog.Version
	Changelog string
	Notes     string

	Packages []PackageResult
}

// PackageResult is one package's release decision with its changelog entry.
type PackageResult struct {
	monorepo.PackageBumpResult
	Entry     *changelog.Version
	Changelog string
	Notes     string
	Title     string
}

// Released reports whether the plan produces a repo-wide release.
func (r *Result) Released() bool {
	return r.Bump != semver.BumpNone
}

// ReleasedPackages returns the packages that get a new version.
func (r *Result) ReleasedPackages() []PackageResult {
	var out []PackageResult
	for _, p := range r.Packages {
		if p.Released() {
			out = append(out, p)
		}
	}
	return out
}

// Counts returns the section counts of the repo-wide entry.
func (r *Result) Counts() []changelog.SectionCount {
	return r.Entry.Changes.Counts()
}

// Plan classifies the commits and computes the release plan.
func Plan(in Input) (*Result, error) {
	if in.Convention == nil {
		return nil, ErrNoConvention
	}
	date := in.Date
	if date == "" {
		date = time.Now().Format(DateLayout)
	}

	classified := commit.ClassifyAll(in.Commits, in.Convention)
	res := &Result{
		Commits: classified,
		Bump:    semver.ComputeBump(classified, in.Convention.Keywords),
	}
	if res.Bump != semver.BumpNone {
		res.Bump = semver.Max(res.Bump, in.MinBump)
	}

	switch {
	case in.Current != nil:
		res.Current = *in.Current
		res.NextVersion = in.Current.Apply(res.Bump)
	case len(classified) > 0:
		res.FirstRelease = true
		res.Bump = semver.Max(semver.Max(res.Bump, semver.BumpPatch), in.MinBump)
		res.NextVersion = in.InitialVersion
	}

	res.Version = res.NextVersion.Display(in.Prerelease)
	res.Entry = &changelog.Version{
		Version: res.Version,
		Date:    date,
		Changes: changelog.Assemble(classified),
	}
	res.Changelog = changelog.RenderVersionString(res.Entry)
	res.Notes = changelog.RenderBody(classified)
	if res.Released() {
		res.Tag = in.TagPrefix + res.Version
		res.Title = in.Convention.Decorate(leadType(classified, in.Convention.Keywords), res.Tag)
	}

	if in.Monorepo != nil {
		res.Packages = planPackages(in, classified, date)
	}
	return res, nil
}

func planPackages(in Input, classified []commit.Classified, date string) []PackageResult {
	m := in.Monorepo
	router := monorepo.NewRouter(m.Registry, m.Overrides, m.Mode)
	routed := router.RouteAll(classified)
	dropReleased(routed, m.Since, classified)

	bumps := monorepo.Aggregate(routed, m.Registry, in.Convention.Keywords, monorepo.AggregateOptions{
		Unified:    m.Unified,
		Prerelease: in.Prerelease,
	})

	out := make([]PackageResult, 0, len(bumps))
	for _, b := range bumps {
		pr := PackageResult{PackageBumpResult: b}
		if b.Released() {
			pr.Entry = &changelog.Version{
				Version: b.NewVersion.Display(in.Prerelease),
				Date:    date,
				Changes: changelog.Assemble(b.Commits),
			}
			pr.Changelog = changelog.RenderVersionString(pr.Entry)
			pr.Notes = changelog.RenderBody(b.Commits)
			pr.Title = in.Convention.Decorate(leadType(b.Commits, in.Convention.Keywords), b.Tag)
		}
		out = append(out, pr)
	}
	return out
}

// dropReleased trims each package's routed commits to those newer than the
// package's last release. A SHA missing from the commit list trims nothing.
func dropReleased(routed map[string][]commit.Classified, since map[string]string, classified []commit.Classified) {
	if len(since) == 0 {
		return
	}
	position := make(map[string]int, len(classified))
	for i, c := range classified {
		position[c.SHA] = i
	}
	for path, commits := range routed {
		cut, ok := position[since[path]]
		if !ok {
			continue
		}
		kept := commits[:0:0]
		for _, c := range commits {
			if position[c.SHA] < cut {
				kept = append(kept, c)
			}
		}
		routed[path] = kept
	}
}

// leadType returns the type of the first commit carrying the highest bump,
// which is what the release title is decorated with.
func leadType(commits []commit.Classified, kw convention.Keywords) string {
	lead, best := "", semver.BumpNone
	for _, c := range commits {
		b := semver.ComputeBump([]commit.Classified{c}, kw)
		if b > best {
			lead, best = c.Type, b
		}
	}
	return lead
}
