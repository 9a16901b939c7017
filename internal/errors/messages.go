package errors

import (
	"fmt"
	"strings"
)

// Common error messages for the relver CLI.

// NotGitRepository is returned when the working directory is outside a git repository.
func NotGitRepository(path string) *CLIError {
	return NewPrerequisiteError(
		fmt.Sprintf("%s is not inside a git repository", path),
		"Run relver from within a git checkout",
		"Or point at one with: relver --repo <path> <command>",
	)
}

// InvalidVersion is returned when a version string cannot be parsed.
func InvalidVersion(value, source string) *CLIError {
	return NewConfigError(
		fmt.Sprintf("invalid version %q in %s", value, source),
		"Versions must be semantic versions such as 1.2.3",
		"A leading v is accepted in tags (v1.2.3) but not in manifests",
	)
}

// MissingReleaseToken is returned when publishing is enabled without credentials.
func MissingReleaseToken(provider string) *CLIError {
	envVar := strings.ToUpper(provider) + "_TOKEN"
	return NewPrerequisiteError(
		fmt.Sprintf("no API token for release provider %q", provider),
		fmt.Sprintf("Export %s, or set release.token in .relver.yml", envVar),
		"Or skip publishing with: relver release --set release.provider=none",
	)
}

// MissingRepository is returned when owner/repo cannot be derived for publishing.
func MissingRepository(remote string) *CLIError {
	return NewConfigError(
		fmt.Sprintf("cannot determine the hosted repository from remote %q", remote),
		"Set release.repository to owner/repo in .relver.yml",
	)
}

// UnknownPackage is returned when a command names a package that is not in the workspace.
func UnknownPackage(name string, known []string) *CLIError {
	remediation := []string{"List packages with: relver plan"}
	if len(known) > 0 {
		remediation = append(remediation, "Known packages: "+strings.Join(known, ", "))
	}
	return NewArgumentError(fmt.Sprintf("unknown package %q", name), remediation...)
}

// NoPackages is returned when monorepo mode finds nothing to release.
func NoPackages(root string) *CLIError {
	return NewConfigError(
		fmt.Sprintf("monorepo mode is enabled but no packages were found under %s", root),
		"Add a workspaces list to package.json, or set monorepo.workspaces",
		"Or declare packages explicitly under monorepo.packages",
	)
}

// MissingSubject is returned when classify is called without a commit subject.
func MissingSubject() *CLIError {
	return NewArgumentErrorWithUsage(
		"commit subject is required",
		`relver classify "<subject>" [--body "<body>"]`,
		`Example: relver classify "feat(api)!: drop v1 endpoints"`,
	)
}

// ConfigExists is returned by config init when the file is already present.
func ConfigExists(path string) *CLIError {
	return NewConfigError(
		fmt.Sprintf("%s already exists", path),
		"Edit the existing file, or pass --force to overwrite it",
	)
}
