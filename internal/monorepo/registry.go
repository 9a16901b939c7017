// Package monorepo routes classified commits to the workspace packages they
// affect and computes a version bump for each package.
package monorepo

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/ariel-frischer/relver/internal/semver"
)

// Package describes one releasable unit of a workspace.
type Package struct {
	Name string
	// Path is repo-relative, slash separated, without a trailing slash.
	Path  string
	Scope string
	// Version is the package's current version.
	Version semver.Version
	// Private packages never receive bumps or tags from commit routing.
	Private bool
	// Manifest is the manifest file the version was read from, if any.
	Manifest string
}

// Registry is the ordered list of known packages.
type Registry []Package

// NewRegistry normalizes package paths and rejects duplicates.
func NewRegistry(pkgs []Package) (Registry, error) {
	reg := make(Registry, 0, len(pkgs))
	seen := make(map[string]string, len(pkgs))
	for _, p := range pkgs {
		p.Path = CleanPath(p.Path)
		if p.Name == "" {
			return nil, fmt.Errorf("package at %q has no name", p.Path)
		}
		if _, ok := reg.ByName(p.Name); ok {
			return nil, fmt.Errorf("package name %q is declared twice", p.Name)
		}
		if other, ok := seen[p.Path]; ok {
			return nil, fmt.Errorf("packages %q and %q share path %q", other, p.Name, p.Path)
		}
		seen[p.Path] = p.Name
		reg = append(reg, p)
	}
	return reg, nil
}

// ByPath returns the package registered at path.
func (r Registry) ByPath(p string) (Package, bool) {
	if i := r.indexOfPath(CleanPath(p)); i >= 0 {
		return r[i], true
	}
	return Package{}, false
}

// ByName returns the package with the given name.
func (r Registry) ByName(name string) (Package, bool) {
	for _, p := range r {
		if p.Name == name {
			return p, true
		}
	}
	return Package{}, false
}

// StaleOverrides returns the scopes whose override path names no package,
// sorted. The router ignores them.
func (r Registry) StaleOverrides(overrides map[string]string) []string {
	var stale []string
	for scope, p := range overrides {
		if _, ok := r.ByPath(p); !ok {
			stale = append(stale, scope)
		}
	}
	sort.Strings(stale)
	return stale
}

// Public returns the paths of all non-private packages in registry order.
func (r Registry) Public() []string {
	paths := make([]string, 0, len(r))
	for _, p := range r {
		if !p.Private {
			paths = append(paths, p.Path)
		}
	}
	return paths
}

func (r Registry) indexOfPath(p string) int {
	for i := range r {
		if r[i].Path == p {
			return i
		}
	}
	return -1
}

// CleanPath normalizes a repo-relative path: slash separated, no leading "./",
// no trailing slash. The repository root is ".".
func CleanPath(p string) string {
	p = strings.ReplaceAll(strings.TrimSpace(p), "\\", "/")
	if p == "" {
		return "."
	}
	return path.Clean(p)
}
