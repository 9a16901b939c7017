package monorepo

import (
	"fmt"
	"strings"

	"github.com/ariel-frischer/relver/internal/commit"
)

// Mode selects which signals route a commit to packages.
type Mode string

const (
	ModeScope Mode = "scope"
	ModePath  Mode = "path"
	ModeBoth  Mode = "both"
)

// ParseMode validates a routing mode name; empty selects ModeBoth.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeScope, ModePath, ModeBoth:
		return Mode(s), nil
	case "":
		return ModeBoth, nil
	default:
		return "", fmt.Errorf("unknown routing mode %q (valid: scope, path, both)", s)
	}
}

func (m Mode) usesScope() bool { return m == ModeScope || m == ModeBoth }
func (m Mode) usesPath() bool  { return m == ModePath || m == ModeBoth }

// Router assigns commits to packages by scope and changed-file path.
type Router struct {
	registry Registry
	// overrides maps a commit scope to a package path and wins over the
	// registry's own scope fields.
	overrides map[string]string
	mode      Mode
}

// NewRouter creates a router over registry. Override values are package paths.
func NewRouter(registry Registry, overrides map[string]string, mode Mode) *Router {
	cleaned := make(map[string]string, len(overrides))
	for scope, p := range overrides {
		cleaned[scope] = CleanPath(p)
	}
	if mode == "" {
		mode = ModeBoth
	}
	return &Router{registry: registry, overrides: cleaned, mode: mode}
}

// Route returns the paths of the packages the commit affects, in registry order.
//
// Scope routing adds at most one package per commit: the override mapping is
// consulted first, then the registry scopes (first match wins). Path routing
// adds the most specific package containing each changed file. A commit that
// matches nothing cascades to every non-private package. Private packages are
// dropped from the result but still count as a match.
func (r *Router) Route(c commit.Classified) []string {
	matched := make(map[int]bool)

	if r.mode.usesScope() && c.Scope != "" {
		if i := r.scopeMatch(c.Scope); i >= 0 {
			matched[i] = true
		}
	}

	if r.mode.usesPath() {
		for _, f := range c.ChangedFiles {
			if i := r.pathMatch(CleanPath(f)); i >= 0 {
				matched[i] = true
			}
		}
	}

	if len(matched) == 0 {
		return r.registry.Public()
	}

	paths := make([]string, 0, len(matched))
	for i, p := range r.registry {
		if matched[i] && !p.Private {
			paths = append(paths, p.Path)
		}
	}
	return paths
}

// RouteAll routes every commit and groups them by package path. Each group
// keeps the input commit order.
func (r *Router) RouteAll(commits []commit.Classified) map[string][]commit.Classified {
	routed := make(map[string][]commit.Classified)
	for _, c := range commits {
		for _, p := range r.Route(c) {
			routed[p] = append(routed[p], c)
		}
	}
	return routed
}

// scopeMatch returns the registry index for scope, or -1. An override
// naming a path outside the registry is skipped.
func (r *Router) scopeMatch(scope string) int {
	if p, ok := r.overrides[scope]; ok {
		if i := r.registry.indexOfPath(p); i >= 0 {
			return i
		}
	}
	for i, pkg := range r.registry {
		if pkg.Scope != "" && pkg.Scope == scope {
			return i
		}
	}
	return -1
}

// pathMatch returns the index of the package with the longest path that
// equals file or is a directory prefix of it, or -1.
func (r *Router) pathMatch(file string) int {
	best, bestLen := -1, -1
	for i, pkg := range r.registry {
		if !containsPath(pkg.Path, file) {
			continue
		}
		if len(pkg.Path) > bestLen {
			best, bestLen = i, len(pkg.Path)
		}
	}
	return best
}

func containsPath(dir, file string) bool {
	if dir == "." {
		return true
	}
	return file == dir || strings.HasPrefix(file, dir+"/")
}
