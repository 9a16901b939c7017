// Package semver computes version bumps from classified commits and applies
// them to major.minor.patch triples.
//
// Prerelease and build metadata are display-only suffixes here. They are
// dropped when a version is parsed and never influence bump arithmetic.
package semver
