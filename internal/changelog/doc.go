// Package changelog assembles classified commits into Keep a Changelog
// entries and maintains CHANGELOG.md files.
//
// This package implements:
//   - grouping commits into the six Keep a Changelog sections
//   - markdown rendering of a single version entry
//   - inserting a new entry into an existing CHANGELOG.md
//   - colored terminal previews of an entry
package changelog
