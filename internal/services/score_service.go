package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/electroluxcode/score-analyzer/internal/analysis"
	"github.com/electroluxcode/score-analyzer/internal/dataprocessing"
	apierrors "github.com/electroluxcode/score-analyzer/internal/errors"
	"github.com/electroluxcode/score-analyzer/internal/exporter"
	"github.com/electroluxcode/score-analyzer/internal/infrastructure"
	"github.com/electroluxcode/score-analyzer/internal/scoring"
	"github.com/electroluxcode/score-analyzer/internal/storage"
	"github.com/electroluxcode/score-analyzer/pkg/contracts/domain"
)

// ActiveRosterID addresses whichever roster is currently active.
const ActiveRosterID = "active"

// Store is the persistence the score service needs.
type Store interface {
	SaveRoster(ctx context.Context, name string, snaps []domain.ExamSnapshot) (storage.RosterSummary, error)
	ListRosters(ctx context.Context) ([]storage.RosterSummary, error)
	GetRoster(ctx context.Context, id string) (storage.Roster, error)
	ActiveRoster(ctx context.Context) (storage.Roster, error)
	ActivateRoster(ctx context.Context, id string) error
	DeleteRoster(ctx context.Context, id string) error

	SaveConfig(ctx context.Context, name string, cfg domain.AssignmentConfig) (storage.NamedConfig, error)
	ListConfigs(ctx context.Context) ([]storage.NamedConfig, error)
	GetConfig(ctx context.Context, id string) (storage.NamedConfig, error)
	ActiveConfig(ctx context.Context) (storage.NamedConfig, error)
	ActivateConfig(ctx context.Context, id string) error
	DeleteConfig(ctx context.Context, id string) error
}

// ScoreOptions tunes how rosters are scored.
type ScoreOptions struct {
	Workers      int
	TiePolicy    scoring.TiePolicy
	MemoEnabled  bool
	MemoSize     int
	FieldMapping dataprocessing.FieldMapping
	Metrics      *infrastructure.ScoringMetrics
}

// ScoredRoster is a roster after a pipeline run.
type ScoredRoster struct {
	Roster storage.RosterSummary
	Config storage.NamedConfig
	Exams  []domain.ExamSnapshot
}

// batchRunner is satisfied by both scoring.Pipeline and
// scoring.CachedPipeline.
type batchRunner interface {
	RunBatch(ctx context.Context, snaps []domain.ExamSnapshot) ([]domain.ExamSnapshot, error)
}

// ScoreService ties import, storage, scoring, analysis and export
// together. It is safe for concurrent use.
type ScoreService struct {
	store  Store
	opts   ScoreOptions
	logger *slog.Logger

	mu      sync.Mutex
	runners map[string]batchRunner
}

// NewScoreService creates a score service.
func NewScoreService(store Store, opts ScoreOptions, logger *slog.Logger) *ScoreService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScoreService{
		store:   store,
		opts:    opts,
		logger:  logger.With(slog.String("component", "score_service")),
		runners: make(map[string]batchRunner),
	}
}

// ImportWorkbook parses an uploaded workbook and stores it as the new
// active roster.
func (s *ScoreService) ImportWorkbook(ctx context.Context, name string, r io.Reader) (storage.RosterSummary, error) {
	start := time.Now()
	snaps, err := dataprocessing.ParseWorkbook(r, dataprocessing.ParseOptions{
		Mapping: s.opts.FieldMapping,
		Logger:  s.logger,
	})
	if err != nil {
		return storage.RosterSummary{}, err
	}

	summary, err := s.store.SaveRoster(ctx, name, snaps)
	if err != nil {
		return storage.RosterSummary{}, err
	}
	s.logger.InfoContext(ctx, "workbook imported",
		slog.String("roster_id", summary.ID),
		slog.String("name", summary.Name),
		slog.Int("exams", summary.Exams),
		slog.Int("students", summary.Students),
		slog.Duration("duration", time.Since(start)))
	return summary, nil
}

// ListRosters lists stored rosters, newest first.
func (s *ScoreService) ListRosters(ctx context.Context) ([]storage.RosterSummary, error) {
	return s.store.ListRosters(ctx)
}

// DeleteRoster removes a roster.
func (s *ScoreService) DeleteRoster(ctx context.Context, id string) error {
	return s.store.DeleteRoster(ctx, id)
}

// ActivateRoster makes id the active roster.
func (s *ScoreService) ActivateRoster(ctx context.Context, id string) error {
	if err := s.store.ActivateRoster(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "roster activated", slog.String("roster_id", id))
	return nil
}

// Results scores the roster's exams (all of them when exams is empty)
// with the active assignment config.
func (s *ScoreService) Results(ctx context.Context, rosterID string, exams []int) (ScoredRoster, error) {
	roster, err := s.roster(ctx, rosterID)
	if err != nil {
		return ScoredRoster{}, err
	}
	snaps, err := selectExams(roster, exams)
	if err != nil {
		return ScoredRoster{}, err
	}

	nc, err := s.store.ActiveConfig(ctx)
	if err != nil {
		return ScoredRoster{}, err
	}
	runner, err := s.runnerFor(nc)
	if err != nil {
		return ScoredRoster{}, err
	}

	scored, err := runner.RunBatch(ctx, snaps)
	if err != nil {
		return ScoredRoster{}, fmt.Errorf("score roster %s: %w", roster.ID, err)
	}
	return ScoredRoster{Roster: roster.RosterSummary, Config: nc, Exams: scored}, nil
}

// ExportFormat selects the export encoding.
type ExportFormat string

// Export formats.
const (
	FormatXLSX ExportFormat = "xlsx"
	FormatCSV  ExportFormat = "csv"
)

// ParseExportFormat accepts "xlsx" (also "excel") or "csv"; empty means xlsx.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "xlsx", "excel":
		return FormatXLSX, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", apierrors.NewAppValidationError(fmt.Sprintf("unsupported export format %q", s))
	}
}

// Export scores the roster and writes it to w.
func (s *ScoreService) Export(ctx context.Context, w io.Writer, rosterID string, format ExportFormat, exams []int) error {
	res, err := s.Results(ctx, rosterID, exams)
	if err != nil {
		return err
	}
	switch format {
	case FormatCSV:
		err = exporter.WriteCSV(w, res.Exams)
	default:
		err = exporter.WriteWorkbook(w, res.Exams)
	}
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "roster exported",
		slog.String("roster_id", res.Roster.ID),
		slog.String("format", string(format)),
		slog.Int("exams", len(res.Exams)))
	return nil
}

// ExportTemplate writes an empty import workbook.
func (s *ScoreService) ExportTemplate(w io.Writer) error {
	return exporter.WriteTemplate(w)
}

// AnalysisKind names one analysis.
type AnalysisKind string

// Analyses offered over a roster.
const (
	AnalysisAverages        AnalysisKind = "averages"
	AnalysisStdDev          AnalysisKind = "std-dev"
	AnalysisCorrelation     AnalysisKind = "correlation"
	AnalysisTopStudents     AnalysisKind = "top-students"
	AnalysisClassAdvantage  AnalysisKind = "class-advantage"
	AnalysisEffectiveValues AnalysisKind = "effective-values"
	AnalysisClassShare      AnalysisKind = "class-share"
)

// AnalysisKinds lists every supported kind.
func AnalysisKinds() []string {
	return []string{
		string(AnalysisAverages), string(AnalysisStdDev), string(AnalysisCorrelation),
		string(AnalysisTopStudents), string(AnalysisClassAdvantage),
		string(AnalysisEffectiveValues), string(AnalysisClassShare),
	}
}

// AnalysisQuery parameterises an analysis run.
type AnalysisQuery struct {
	Kind   AnalysisKind
	Class  string
	Top    int
	Metric analysis.Metric
	Exams  []int
}

// Analyze runs one analysis over the roster's raw scores.
func (s *ScoreService) Analyze(ctx context.Context, rosterID string, q AnalysisQuery) (interface{}, error) {
	roster, err := s.roster(ctx, rosterID)
	if err != nil {
		return nil, err
	}
	data, err := selectExams(roster, q.Exams)
	if err != nil {
		return nil, err
	}
	if q.Metric == "" {
		q.Metric = analysis.MetricTotal
	}

	switch q.Kind {
	case AnalysisAverages:
		return analysis.AverageScores(data, q.Class), nil
	case AnalysisStdDev:
		return analysis.StandardDeviations(data, q.Class), nil
	case AnalysisCorrelation:
		return analysis.CorrelationMatrix(data), nil
	case AnalysisTopStudents:
		return analysis.TopStudents(data, q.Top, q.Metric), nil
	case AnalysisClassAdvantage:
		return analysis.ClassAdvantages(data, q.Top), nil
	case AnalysisEffectiveValues:
		return analysis.EffectiveValues(data, q.Top), nil
	case AnalysisClassShare:
		return analysis.ClassShareTrends(data, q.Top), nil
	default:
		return nil, apierrors.NewNotFoundError(fmt.Sprintf("analysis %q", q.Kind))
	}
}

// ListConfigs lists stored assignment configs.
func (s *ScoreService) ListConfigs(ctx context.Context) ([]storage.NamedConfig, error) {
	return s.store.ListConfigs(ctx)
}

// CreateConfig validates and stores an assignment config, optionally
// activating it.
func (s *ScoreService) CreateConfig(ctx context.Context, name string, cfg domain.AssignmentConfig, activate bool) (storage.NamedConfig, error) {
	if err := scoring.ValidateConfig(cfg); err != nil {
		return storage.NamedConfig{}, apierrors.NewAppValidationError("invalid assignment config").
			WithDetails(strings.TrimPrefix(err.Error(), scoring.ErrInvalidConfig.Error()+": "))
	}

	nc, err := s.store.SaveConfig(ctx, name, cfg)
	if err != nil {
		return storage.NamedConfig{}, err
	}
	if activate {
		if err := s.store.ActivateConfig(ctx, nc.ID); err != nil {
			return storage.NamedConfig{}, err
		}
		nc.Active = true
	}
	return nc, nil
}

// ImportConfig parses a text assignment config and stores it.
func (s *ScoreService) ImportConfig(ctx context.Context, name string, r io.Reader, activate bool) (storage.NamedConfig, error) {
	cfg, err := dataprocessing.ParseAssignmentConfig(r)
	if err != nil {
		return storage.NamedConfig{}, err
	}
	return s.CreateConfig(ctx, name, cfg, activate)
}

// ExportConfig writes a stored config in the text format.
func (s *ScoreService) ExportConfig(ctx context.Context, id string, w io.Writer) error {
	nc, err := s.store.GetConfig(ctx, id)
	if err != nil {
		return err
	}
	return dataprocessing.FormatAssignmentConfig(w, nc.Config)
}

// ActivateConfig makes id the active assignment config.
func (s *ScoreService) ActivateConfig(ctx context.Context, id string) error {
	if err := s.store.ActivateConfig(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "assignment config activated", slog.String("config_id", id))
	return nil
}

// DeleteConfig removes an assignment config and its cached pipeline.
func (s *ScoreService) DeleteConfig(ctx context.Context, id string) error {
	if err := s.store.DeleteConfig(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.runners, id)
	s.mu.Unlock()
	return nil
}

func (s *ScoreService) roster(ctx context.Context, id string) (storage.Roster, error) {
	if id == "" || id == ActiveRosterID {
		return s.store.ActiveRoster(ctx)
	}
	return s.store.GetRoster(ctx, id)
}

// runnerFor returns the pipeline for a stored config. Stored configs are
// immutable, so pipelines are cached by config ID.
func (s *ScoreService) runnerFor(nc storage.NamedConfig) (batchRunner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.runners[nc.ID]; ok {
		return r, nil
	}

	p, err := scoring.NewPipeline(nc.Config,
		scoring.WithLogger(s.logger),
		scoring.WithTiePolicy(s.opts.TiePolicy),
		scoring.WithWorkers(s.opts.Workers),
		scoring.WithMetrics(s.opts.Metrics),
	)
	if err != nil {
		return nil, apierrors.NewConfigError(fmt.Sprintf("assignment config %s is invalid", nc.ID), err)
	}

	var r batchRunner = p
	if s.opts.MemoEnabled {
		r = scoring.NewCachedPipeline(p, s.opts.MemoSize)
	}
	s.runners[nc.ID] = r
	return r, nil
}

func selectExams(roster storage.Roster, exams []int) ([]domain.ExamSnapshot, error) {
	snaps := analysis.FilterByExams(roster.Snapshots, exams)
	if len(snaps) == 0 {
		return nil, apierrors.NewNotFoundError("exam").WithContext("exams", exams)
	}
	return snaps, nil
}
