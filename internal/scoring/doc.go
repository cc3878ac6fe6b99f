// Package scoring computes derived academic metrics for exam rosters.
//
// # Components
//
//   - track.go: elective track classification from raw scores
//   - composite.go: four-, six- and nine-subject composites (raw and assigned)
//   - rank.go: score-descending ranks at grade and class scope
//   - assign.go: percentile-banded score assignment
//   - stages.go / pipeline.go: the per-exam pipeline and batch runner
//   - memo.go: optional content-addressed result cache
//
// # Absent scores
//
// A score of 0 means "not taken". Zero scores never enter a ranking
// population, never receive a rank and are never assigned a score.
//
// # Usage
//
//	p, err := scoring.NewPipeline(domain.DefaultAssignmentConfig(), scoring.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	enriched, err := p.RunBatch(ctx, snapshots)
package scoring
