package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/electroluxcode/score-analyzer/internal/infrastructure"
	"github.com/electroluxcode/score-analyzer/pkg/contracts/domain"
)

// TracerName is the instrumentation scope of pipeline spans.
const TracerName = "score-analyzer.scoring"

// Pipeline runs the scoring stages over exam snapshots. It holds no
// per-run state and is safe for concurrent use.
type Pipeline struct {
	config  domain.AssignmentConfig
	policy  TiePolicy
	workers int
	logger  *slog.Logger
	metrics *infrastructure.ScoringMetrics
	tracer  trace.Tracer
	stages  []Stage
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. A nil logger keeps slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithTiePolicy selects how equal scores are ranked.
func WithTiePolicy(policy TiePolicy) Option {
	return func(p *Pipeline) { p.policy = policy }
}

// WithWorkers bounds the number of snapshots RunBatch scores at once.
// Values below 1 mean GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(p *Pipeline) { p.workers = n }
}

// WithMetrics records run, stage and student counts on m.
func WithMetrics(m *infrastructure.ScoringMetrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// NewPipeline validates cfg and builds a pipeline around it. The config
// is copied, so later changes by the caller do not affect runs.
func NewPipeline(cfg domain.AssignmentConfig, opts ...Option) (*Pipeline, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	p := &Pipeline{
		config: cfg.Clone(),
		policy: TieSequential,
		logger: slog.Default(),
		tracer: otel.Tracer(TracerName),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.workers < 1 {
		p.workers = runtime.GOMAXPROCS(0)
	}

	p.stages = baseStages()
	if p.config.Active() {
		p.stages = append(p.stages, assignmentStages()...)
	}
	return p, nil
}

// Config returns a copy of the assignment config the pipeline runs with.
func (p *Pipeline) Config() domain.AssignmentConfig {
	return p.config.Clone()
}

// TiePolicy returns the configured tie policy.
func (p *Pipeline) TiePolicy() TiePolicy {
	return p.policy
}

// Stages lists the stage IDs this pipeline executes, in order.
func (p *Pipeline) Stages() []string {
	ids := make([]string, len(p.stages))
	for i, s := range p.stages {
		ids[i] = s.ID()
	}
	return ids
}

// Run scores one snapshot and returns the enriched copy. snap itself is
// never modified.
func (p *Pipeline) Run(ctx context.Context, snap domain.ExamSnapshot) (domain.ExamSnapshot, error) {
	start := time.Now()
	ctx, span := p.tracer.Start(ctx, "scoring.run",
		trace.WithAttributes(
			attribute.Int("exam.number", snap.ExamNumber),
			attribute.String("exam.name", snap.ExamName),
			attribute.Int("exam.students", len(snap.Students)),
		))
	defer span.End()

	st := newRunState(snap, p.config, p.policy)
	err := p.execute(ctx, st)

	infrastructure.RecordPipelineRun(ctx, p.metrics, snap.ExamNumber, len(snap.Students), time.Since(start), err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return domain.ExamSnapshot{}, fmt.Errorf("exam %d: %w", snap.ExamNumber, err)
	}

	p.logger.DebugContext(ctx, "exam scored",
		slog.Int("exam_number", snap.ExamNumber),
		slog.Int("students", len(snap.Students)),
		slog.Duration("duration", time.Since(start)))
	return st.snapshot, nil
}

func (p *Pipeline) execute(ctx context.Context, st *runState) error {
	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return err
		}

		stageStart := time.Now()
		stageCtx, span := p.tracer.Start(ctx, "scoring.stage."+stage.ID(),
			trace.WithAttributes(attribute.String("stage.name", stage.Name())))
		err := stage.Apply(stageCtx, st)
		span.End()
		infrastructure.RecordStageDuration(ctx, p.metrics, stage.ID(), time.Since(stageStart))

		if err != nil {
			return fmt.Errorf("stage %s: %w", stage.ID(), err)
		}
		p.logger.DebugContext(ctx, "stage completed",
			slog.String("stage", stage.ID()),
			slog.Int("exam_number", st.snapshot.ExamNumber))
	}
	return nil
}

// RunBatch scores every snapshot independently on a bounded worker pool.
// Results keep the input order. The first failure cancels the rest.
func (p *Pipeline) RunBatch(ctx context.Context, snaps []domain.ExamSnapshot) ([]domain.ExamSnapshot, error) {
	start := time.Now()
	out := make([]domain.ExamSnapshot, len(snaps))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i := range snaps {
		i := i
		g.Go(func() error {
			res, err := p.Run(gctx, snaps[i])
			if err != nil {
				return err
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		p.logger.ErrorContext(ctx, "batch scoring failed", slog.String("error", err.Error()))
		return nil, err
	}

	students := 0
	for _, s := range snaps {
		students += len(s.Students)
	}
	p.logger.InfoContext(ctx, "batch scored",
		slog.Int("exams", len(snaps)),
		slog.Int("students", students),
		slog.Bool("assignment", p.config.Active()),
		slog.Duration("duration", time.Since(start)))
	return out, nil
}
