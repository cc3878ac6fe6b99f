// Package analysis derives the cohort reports shown next to the scored
// roster: per-exam averages and spreads, subject correlations, top lists,
// and how classes are represented among the strongest students.
//
// Every function reads raw snapshots and applies the same "0 means not
// taken" filter the scoring pipeline uses. Composite metrics and tracks
// are computed with the scoring package, so callers may pass either raw
// or scored snapshots.
package analysis
