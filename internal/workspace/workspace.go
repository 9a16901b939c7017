// Package workspace discovers the packages of a JavaScript-style monorepo
// from their package.json manifests and writes released versions back.
package workspace

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cast"
	"github.com/tidwall/sjson"

	"github.com/ariel-frischer/relver/internal/monorepo"
	"github.com/ariel-frischer/relver/internal/semver"
)

// ManifestName is the manifest file looked up in each package directory.
const ManifestName = "package.json"

// Manifest is the subset of package.json relver reads.
type Manifest struct {
	Name       string
	Version    string
	Private    bool
	Workspaces []string
}

// ReadManifest parses a package.json file. Loosely typed fields such as
// "private": "true" are coerced.
func ReadManifest(manifest string) (Manifest, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(manifest), json.Parser()); err != nil {
		return Manifest{}, fmt.Errorf("reading manifest %s: %w", manifest, err)
	}

	m := Manifest{
		Name:    cast.ToString(k.Get("name")),
		Version: cast.ToString(k.Get("version")),
		Private: cast.ToBool(k.Get("private")),
	}

	// "workspaces" is either a list or {"packages": [...]} (yarn).
	switch {
	case k.Exists("workspaces.packages"):
		m.Workspaces = cast.ToStringSlice(k.Get("workspaces.packages"))
	case k.Exists("workspaces"):
		m.Workspaces = cast.ToStringSlice(k.Get("workspaces"))
	}
	return m, nil
}

// Discover finds package manifests under root. Each glob names package
// directories ("packages/*") or manifest files ("apps/**/package.json").
// With no globs the root manifest's "workspaces" field is used.
// Packages are returned sorted by path; node_modules is never searched.
func Discover(root string, globs []string) ([]monorepo.Package, error) {
	if len(globs) == 0 {
		rootManifest, err := ReadManifest(filepath.Join(root, ManifestName))
		if err != nil {
			return nil, fmt.Errorf("no workspace globs configured and %w", err)
		}
		globs = rootManifest.Workspaces
	}

	fsys := os.DirFS(root)
	seen := make(map[string]bool)
	var files []string
	for _, g := range globs {
		pattern := manifestPattern(g)
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid workspace glob %q", g)
		}
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expanding workspace glob %q: %w", g, err)
		}
		for _, m := range matches {
			if seen[m] || strings.Contains("/"+m, "/node_modules/") {
				continue
			}
			seen[m] = true
			files = append(files, m)
		}
	}
	sort.Strings(files)

	pkgs := make([]monorepo.Package, 0, len(files))
	for _, f := range files {
		pkg, err := packageFromManifest(root, f)
		if err != nil {
			return nil, err
		}
		pkgs = append(pkgs, pkg)
	}
	return pkgs, nil
}

// manifestPattern turns a directory glob into a manifest glob.
func manifestPattern(g string) string {
	g = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(g), "./"), "/")
	if path.Base(g) == ManifestName {
		return g
	}
	return g + "/" + ManifestName
}

func packageFromManifest(root, rel string) (monorepo.Package, error) {
	m, err := ReadManifest(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return monorepo.Package{}, err
	}

	dir := path.Dir(rel)
	if m.Name == "" {
		return monorepo.Package{}, fmt.Errorf("manifest %s has no name", rel)
	}

	v := semver.Version{}
	if m.Version != "" {
		if v, err = semver.Parse(m.Version); err != nil {
			return monorepo.Package{}, fmt.Errorf("manifest %s: %w", rel, err)
		}
	}

	return monorepo.Package{
		Name:     m.Name,
		Path:     dir,
		Scope:    DefaultScope(m.Name),
		Version:  v,
		Private:  m.Private,
		Manifest: rel,
	}, nil
}

// DefaultScope derives the commit scope for a package name by dropping any
// npm organisation: "@acme/web" becomes "web".
func DefaultScope(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// SyncVersion sets the "version" field of the manifest file, leaving the
// rest of the document untouched.
func SyncVersion(manifest, version string) error {
	info, err := os.Stat(manifest)
	if err != nil {
		return fmt.Errorf("syncing version: %w", err)
	}
	data, err := os.ReadFile(manifest)
	if err != nil {
		return fmt.Errorf("reading manifest %s: %w", manifest, err)
	}

	out, err := sjson.SetBytes(data, "version", version)
	if err != nil {
		return fmt.Errorf("setting version in %s: %w", manifest, err)
	}

	if err := os.WriteFile(manifest, out, info.Mode().Perm()); err != nil {
		return fmt.Errorf("writing manifest %s: %w", manifest, err)
	}
	return nil
}
