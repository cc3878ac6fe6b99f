// Command scorecalc scores a workbook offline and writes the results next
// to it, without the HTTP server or database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/electroluxcode/score-analyzer/internal/analysis"
	"github.com/electroluxcode/score-analyzer/internal/dataprocessing"
	"github.com/electroluxcode/score-analyzer/internal/exporter"
	"github.com/electroluxcode/score-analyzer/internal/infrastructure"
	"github.com/electroluxcode/score-analyzer/internal/scoring"
	"github.com/electroluxcode/score-analyzer/pkg/contracts"
	"github.com/electroluxcode/score-analyzer/pkg/contracts/domain"
)

type options struct {
	in       string
	bands    string
	out      string
	csv      string
	noAssign bool
	workers  int
	ties     string
}

func main() {
	var opts options
	flag.StringVar(&opts.in, "in", "", "input workbook (.xlsx), one sheet per exam")
	flag.StringVar(&opts.bands, "bands", "", "assignment config in the text format (defaults to the built-in table)")
	flag.StringVar(&opts.out, "out", "", "output workbook (defaults to <in>-scored.xlsx)")
	flag.StringVar(&opts.csv, "csv", "", "also write the results as CSV to this path")
	flag.BoolVar(&opts.noAssign, "no-assign", false, "skip grade assignment")
	flag.IntVar(&opts.workers, "workers", 0, "parallel exam workers (0 = GOMAXPROCS)")
	flag.StringVar(&opts.ties, "ties", "sequential", "tie policy: sequential or shared")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn or error")
	flag.Parse()

	logger := infrastructure.NewLogger(os.Stderr, *logLevel)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, opts, logger); err != nil {
		logger.Error("Scoring failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, logger *slog.Logger) error {
	if opts.in == "" {
		return fmt.Errorf("-in is required")
	}
	if opts.out == "" {
		opts.out = strings.TrimSuffix(opts.in, filepath.Ext(opts.in)) + "-scored.xlsx"
	}

	cfg, err := loadAssignmentConfig(opts.bands)
	if err != nil {
		return err
	}
	if opts.noAssign {
		cfg.Enabled = false
	}
	policy, err := scoring.ParseTiePolicy(opts.ties)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "Scoring workbook",
		slog.String("version", contracts.GetVersionString()),
		slog.String("in", opts.in),
		slog.Bool("assignment", cfg.Active()),
		slog.String("tie_policy", policy.String()))

	snaps, err := dataprocessing.ParseFile(opts.in, dataprocessing.ParseOptions{Logger: logger})
	if err != nil {
		return err
	}

	pipeline, err := scoring.NewPipeline(cfg,
		scoring.WithLogger(logger),
		scoring.WithWorkers(opts.workers),
		scoring.WithTiePolicy(policy),
	)
	if err != nil {
		return err
	}

	start := time.Now()
	scored, err := pipeline.RunBatch(ctx, snaps)
	if err != nil {
		return err
	}
	for _, snap := range scored {
		logExamSummary(ctx, logger, snap)
	}

	if err := exporter.WriteWorkbookFile(opts.out, scored); err != nil {
		return err
	}
	if opts.csv != "" {
		if err := exporter.WriteCSVFile(opts.csv, scored); err != nil {
			return err
		}
	}

	logger.InfoContext(ctx, "Scoring complete",
		slog.Int("exams", len(scored)),
		slog.String("out", opts.out),
		slog.String("csv", opts.csv),
		slog.Duration("duration", time.Since(start)))
	return nil
}

func loadAssignmentConfig(path string) (domain.AssignmentConfig, error) {
	if path == "" {
		return domain.DefaultAssignmentConfig(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return domain.AssignmentConfig{}, err
	}
	defer f.Close()
	return dataprocessing.ParseAssignmentConfig(f)
}

func logExamSummary(ctx context.Context, logger *slog.Logger, snap domain.ExamSnapshot) {
	attrs := []any{
		slog.Int("exam", snap.ExamNumber),
		slog.Int("students", len(snap.Students)),
	}
	exam := []domain.ExamSnapshot{snap}
	for _, series := range analysis.AverageScores(exam, "") {
		if series.Metric == analysis.MetricTotal && len(series.Points) > 0 {
			attrs = append(attrs, slog.Float64("average_total", series.Points[0].Value))
		}
	}
	if top := analysis.TopStudents(exam, 1, analysis.MetricTotal); len(top) > 0 {
		attrs = append(attrs,
			slog.String("top_student", top[0].StudentID),
			slog.Float64("top_total", top[0].Score))
	}
	logger.InfoContext(ctx, "Exam scored", attrs...)
}
