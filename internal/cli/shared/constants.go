// Package shared provides constants and helpers used across CLI subpackages.
package shared

import (
	"errors"
	"fmt"
)

// Command groups shown in `relver --help`.
const (
	GroupRelease       = "release"
	GroupInspect       = "inspect"
	GroupConfiguration = "configuration"
)

// Exit codes for the relver CLI.
// These codes support scripting and CI/CD integration.
const (
	ExitSuccess = 0
	// ExitFailure covers runtime and configuration errors.
	ExitFailure = 1
	// ExitInvalidArguments indicates invalid command arguments.
	ExitInvalidArguments = 3
	// ExitMissingPrerequisite indicates the repository or environment is not
	// ready (no git repository, no release token).
	ExitMissingPrerequisite = 4
	// ExitNothingToRelease is returned by `release --fail-on-empty` when no
	// commit warrants a release.
	ExitNothingToRelease = 6
)

// ExitError carries a specific exit code. Its message, when set, has already
// been shown to the user.
type ExitError struct {
	Code int
	Err  error
}

// NewExitError creates an ExitError without a wrapped error.
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCodeOf returns the exit code carried by err, or ExitFailure.
func ExitCodeOf(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}
