package release

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ariel-frischer/relver/internal/changelog"
	"github.com/ariel-frischer/relver/internal/planner"
	"github.com/ariel-frischer/relver/internal/workspace"
)

// ErrNothingToRelease is returned when the plan has no releasable changes.
var ErrNothingToRelease = errors.New("nothing to release")

// Repository is the git surface the runner writes to.
type Repository interface {
	CommitFiles(message string, paths []string) (string, error)
	CreateTag(name, message string) error
	CurrentBranch() (string, error)
	Push(ctx context.Context, remote, branch string, tags []string) error
}

// Options controls what Run does.
type Options struct {
	// Root is the repository worktree; file paths in the plan are relative to it.
	Root string
	// ChangelogFile is the repo-wide changelog, relative to Root.
	ChangelogFile string
	// PerPackage writes <package>/CHANGELOG.md for each released package.
	PerPackage  bool
	ProjectName string

	DryRun  bool
	Commit  bool
	Push    bool
	Remote  string
	Draft   bool
	Publish bool
	// Concurrency bounds simultaneous publish requests.
	Concurrency int
}

// Step is one action Run performed, or would perform in dry-run mode.
type Step struct {
	Kind   string
	Target string
}

// Step kinds.
const (
	StepChangelog = "changelog"
	StepManifest  = "manifest"
	StepCommit    = "commit"
	StepTag       = "tag"
	StepPush      = "push"
	StepPublish   = "publish"
)

// Report summarises a run.
type Report struct {
	Steps     []Step
	Tags      []string
	Published []Published
}

// Runner applies a release plan to a repository.
type Runner struct {
	repo      Repository
	publisher Publisher
	opts      Options
	logger    *slog.Logger
}

// NewRunner creates a runner. publisher may be nil when publishing is off.
func NewRunner(repo Repository, publisher Publisher, opts Options, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.Remote == "" {
		opts.Remote = "origin"
	}
	if opts.ChangelogFile == "" {
		opts.ChangelogFile = "CHANGELOG.md"
	}
	return &Runner{repo: repo, publisher: publisher, opts: opts, logger: logger}
}

// target is one releasable unit: the whole repository or a single package.
type target struct {
	name      string
	tag       string
	title     string
	notes     string
	entry     *changelog.Version
	changelog string
	manifest  string
	version   string
}

// targets lists what the plan releases. A monorepo plan releases its
// packages; otherwise the repository itself is released.
func (r *Runner) targets(plan *planner.Result) []target {
	if len(plan.Packages) > 0 {
		var out []target
		for _, p := range plan.ReleasedPackages() {
			t := target{
				name:    p.Package.Name,
				tag:     p.Tag,
				title:   p.Title,
				notes:   p.Notes,
				entry:   p.Entry,
				version: p.Entry.Version,
			}
			if r.opts.PerPackage {
				t.changelog = path.Join(p.Package.Path, "CHANGELOG.md")
			}
			t.manifest = p.Package.Manifest
			out = append(out, t)
		}
		return out
	}

	if !plan.Released() {
		return nil
	}
	return []target{{
		name:      r.opts.ProjectName,
		tag:       plan.Tag,
		title:     plan.Title,
		notes:     plan.Notes,
		entry:     plan.Entry,
		changelog: r.opts.ChangelogFile,
		version:   plan.Version,
	}}
}

// Run executes the plan. In dry-run mode the steps are reported but nothing
// is written, tagged, pushed or published.
func (r *Runner) Run(ctx context.Context, plan *planner.Result) (*Report, error) {
	targets := r.targets(plan)
	if len(targets) == 0 {
		return nil, ErrNothingToRelease
	}

	report := &Report{}
	var files []string
	for _, t := range targets {
		report.Tags = append(report.Tags, t.tag)
		if t.changelog != "" {
			report.Steps = append(report.Steps, Step{Kind: StepChangelog, Target: t.changelog})
			files = append(files, t.changelog)
		}
		if t.manifest != "" {
			report.Steps = append(report.Steps, Step{Kind: StepManifest, Target: t.manifest})
			files = append(files, t.manifest)
		}
	}
	if r.opts.Commit && len(files) > 0 {
		report.Steps = append(report.Steps, Step{Kind: StepCommit, Target: commitMessage(report.Tags)})
	}
	for _, tag := range report.Tags {
		report.Steps = append(report.Steps, Step{Kind: StepTag, Target: tag})
	}
	if r.opts.Push {
		report.Steps = append(report.Steps, Step{Kind: StepPush, Target: r.opts.Remote})
	}
	if r.opts.Publish && r.publisher != nil {
		for _, tag := range report.Tags {
			report.Steps = append(report.Steps, Step{Kind: StepPublish, Target: tag})
		}
	}

	if r.opts.DryRun {
		r.logger.Info("dry run, no changes made", "tags", strings.Join(report.Tags, ","))
		return report, nil
	}

	if err := r.writeFiles(targets); err != nil {
		return report, err
	}

	if r.opts.Commit && len(files) > 0 {
		sha, err := r.repo.CommitFiles(commitMessage(report.Tags), files)
		if err != nil {
			return report, err
		}
		r.logger.Info("committed release files", "sha", sha, "files", len(files))
	}

	for _, t := range targets {
		if err := r.repo.CreateTag(t.tag, "Release "+t.tag); err != nil {
			return report, err
		}
		r.logger.Info("created tag", "tag", t.tag)
	}

	if r.opts.Push {
		if err := r.push(ctx, report.Tags); err != nil {
			return report, err
		}
	}

	if r.opts.Publish && r.publisher != nil {
		published, err := r.publish(ctx, targets)
		report.Published = published
		if err != nil {
			return report, err
		}
	}

	return report, nil
}

func (r *Runner) writeFiles(targets []target) error {
	for _, t := range targets {
		if t.changelog != "" {
			file := filepath.Join(r.opts.Root, filepath.FromSlash(t.changelog))
			if err := changelog.InsertEntry(file, t.name, t.entry); err != nil {
				return fmt.Errorf("writing changelog for %s: %w", t.tag, err)
			}
			r.logger.Debug("wrote changelog", "file", t.changelog, "version", t.version)
		}
		if t.manifest != "" {
			file := filepath.Join(r.opts.Root, filepath.FromSlash(t.manifest))
			if err := workspace.SyncVersion(file, t.version); err != nil {
				return fmt.Errorf("syncing manifest for %s: %w", t.tag, err)
			}
			r.logger.Debug("synced manifest", "file", t.manifest, "version", t.version)
		}
	}
	return nil
}

func (r *Runner) push(ctx context.Context, tags []string) error {
	branch := ""
	if r.opts.Commit {
		b, err := r.repo.CurrentBranch()
		if err != nil {
			return err
		}
		branch = b
	}
	if err := r.repo.Push(ctx, r.opts.Remote, branch, tags); err != nil {
		return err
	}
	r.logger.Info("pushed release", "remote", r.opts.Remote, "branch", branch, "tags", len(tags))
	return nil
}

// publish creates one hosted release per target, at most Concurrency at a
// time. Results keep target order.
func (r *Runner) publish(ctx context.Context, targets []target) ([]Published, error) {
	results := make([]Published, len(targets))
	var mu sync.Mutex
	var failed []string

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)

	for i, t := range targets {
		g.Go(func() error {
			pub, err := r.publisher.Publish(ctx, Release{
				Tag:        t.tag,
				Name:       t.title,
				Body:       t.notes,
				Draft:      r.opts.Draft,
				Prerelease: isPrerelease(t.version),
			})
			if errors.Is(err, ErrReleaseExists) {
				r.logger.Warn("release already exists, skipping", "tag", t.tag)
				results[i] = Published{Tag: t.tag}
				return nil
			}
			if err != nil {
				mu.Lock()
				failed = append(failed, t.tag)
				mu.Unlock()
				return err
			}
			r.logger.Info("published release", "provider", r.publisher.Name(), "tag", t.tag, "url", pub.URL)
			results[i] = pub
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("publishing %s: %w", strings.Join(failed, ", "), err)
	}
	return results, nil
}

// isPrerelease reports whether a display version carries a prerelease suffix.
func isPrerelease(version string) bool {
	return strings.Contains(version, "-")
}

func commitMessage(tags []string) string {
	return "chore(release): " + strings.Join(tags, ", ")
}
