package http

import (
	"context"
	"io"

	"github.com/electroluxcode/score-analyzer/internal/services"
	"github.com/electroluxcode/score-analyzer/internal/storage"
	"github.com/electroluxcode/score-analyzer/pkg/contracts/domain"
)

// ScoreServiceInterface defines the score operations the handlers use
type ScoreServiceInterface interface {
	ImportWorkbook(ctx context.Context, name string, r io.Reader) (storage.RosterSummary, error)
	ListRosters(ctx context.Context) ([]storage.RosterSummary, error)
	DeleteRoster(ctx context.Context, id string) error
	ActivateRoster(ctx context.Context, id string) error
	Results(ctx context.Context, rosterID string, exams []int) (services.ScoredRoster, error)
	Export(ctx context.Context, w io.Writer, rosterID string, format services.ExportFormat, exams []int) error
	ExportTemplate(w io.Writer) error
	Analyze(ctx context.Context, rosterID string, q services.AnalysisQuery) (interface{}, error)

	ListConfigs(ctx context.Context) ([]storage.NamedConfig, error)
	CreateConfig(ctx context.Context, name string, cfg domain.AssignmentConfig, activate bool) (storage.NamedConfig, error)
	ImportConfig(ctx context.Context, name string, r io.Reader, activate bool) (storage.NamedConfig, error)
	ExportConfig(ctx context.Context, id string, w io.Writer) error
	ActivateConfig(ctx context.Context, id string) error
	DeleteConfig(ctx context.Context, id string) error
}
