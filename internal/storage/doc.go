// Package storage persists imported rosters and assignment configs in a
// single SQLite database.
//
// Rosters and configs are stored as JSON documents next to a few indexed
// columns. At most one roster and exactly one assignment config are
// active at a time; the built-in default config is seeded on first open
// and cannot be deleted.
package storage
