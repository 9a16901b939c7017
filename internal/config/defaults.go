package config

// GetDefaultConfigTemplate returns a fully commented config template
// that helps users understand all available options
func GetDefaultConfigTemplate() string {
	return `# relver configuration
# See 'relver config keys' for all options. Environment variables override
# this file: RELVER_<KEY>, with __ between nested keys (RELVER_RELEASE__TOKEN).

# Commit convention
convention: conventional              # conventional | emoji
# keywords:                           # Override bump keywords (empty keeps defaults)
#   major: ["BREAKING CHANGE", "BREAKING-CHANGE"]
#   minor: [feat]
#   patch: [fix, perf, refactor, revert, security]
# exclude:                            # Types and scopes left out of the changelog
#   types: [docs, test, ci, style, build]
#   scopes: [release]
# sections:                           # Type to section overrides (none excludes)
#   chore: none

# Versioning
tag_prefix: v                         # Repo-wide tags look like v1.2.3
initial_version: 0.1.0                # Version of the first release
prerelease: ""                        # Suffix for tags and changelog headings (e.g. rc.1)
min_bump: none                        # Raise the repo-wide bump, e.g. major for a planned 2.0

# Changelog
changelog:
  file: CHANGELOG.md                  # Repo-wide changelog, relative to the repo root
  per_package: true                   # Write <package>/CHANGELOG.md in monorepo mode
  project: ""                         # Name used in a new changelog header

# Monorepo
monorepo:
  enabled: false
  mode: both                          # scope | path | both
  unified: false                      # Apply one bump to every package
  workspaces: []                      # Package globs (default: package.json "workspaces")
  scopes: {}                          # Commit scope to package path overrides
  packages: []                        # Explicit packages: {name, path, scope, version, private}

# Publishing
release:
  provider: none                      # none | github | gitea
  url: ""                             # Gitea base URL or GitHub Enterprise API URL
  repository: ""                      # owner/repo (default: derived from the git remote)
  token: ""                           # Default: GITHUB_TOKEN / GITEA_TOKEN
  draft: false
  retries: 3
  concurrency: 4                      # Parallel publish requests in monorepo mode

# Git
git:
  remote: origin
  commit: true                        # Commit changelogs and manifests before tagging
  push: false                         # Push the release commit and tags

# Logging
log:
  level: warn                         # debug | info | warn | error
  file: ""                            # Rotating log file (empty disables)
  max_size: 10                        # Megabytes before rotation
  max_backups: 3
  max_age: 28                         # Days
  compress: false
`
}

// GetDefaults returns the default configuration values
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"convention":      "conventional",
		"tag_prefix":      "v",
		"initial_version": "0.1.0",
		"prerelease":      "",
		"min_bump":        "none",
		"changelog": map[string]interface{}{
			"file":        "CHANGELOG.md",
			"per_package": true,
			"project":     "",
		},
		"monorepo": map[string]interface{}{
			"enabled": false,
			"mode":    "both",
			"unified": false,
		},
		// release: publishing is opt-in; retries cover transient host errors.
		"release": map[string]interface{}{
			"provider":    "none",
			"url":         "",
			"repository":  "",
			"token":       "",
			"draft":       false,
			"retries":     3,
			"concurrency": 4,
		},
		"git": map[string]interface{}{
			"remote": "origin",
			"commit": true,
			"push":   false,
		},
		"log": map[string]interface{}{
			"level":       "warn",
			"file":        "",
			"max_size":    10,
			"max_backups": 3,
			"max_age":     28,
			"compress":    false,
		},
	}
}
