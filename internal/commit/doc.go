// Package commit turns raw commit messages into classified records.
//
// Two message conventions are understood without being told which one produced
// a message:
//   - Conventional Commits: "feat(api)!: drop v1 endpoints"
//   - Emoji-prefixed Clean Commit: "📦 new (api): add v2 endpoints"
//
// Both normalize to the same Classification shape. Messages that match neither
// convention classify as type "other" and are never an error.
package commit
