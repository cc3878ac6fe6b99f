package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"reflect"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/electroluxcode/score-analyzer/internal/config"
	"github.com/electroluxcode/score-analyzer/internal/dataprocessing"
	apierrors "github.com/electroluxcode/score-analyzer/internal/errors"
	"github.com/electroluxcode/score-analyzer/internal/infrastructure"
	customMiddleware "github.com/electroluxcode/score-analyzer/internal/middleware"
	"github.com/electroluxcode/score-analyzer/internal/scoring"
	"github.com/electroluxcode/score-analyzer/internal/services"
	"github.com/electroluxcode/score-analyzer/internal/storage"
	handlers "github.com/electroluxcode/score-analyzer/internal/transport/http"
	"github.com/electroluxcode/score-analyzer/pkg/contracts"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Logger        *slog.Logger
	Router        *chi.Mux
	Server        *http.Server
	Store         *storage.Store
	ScoreService  *services.ScoreService
	HealthService *services.HealthService
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.ScoringMetrics
}

// NewApplication loads the configuration and logger from the environment
// and builds the application.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger)
}

// New wires every component from an explicit configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ctx := context.Background()

	logger.InfoContext(ctx, "Application starting",
		slog.String("version", contracts.GetVersionString()),
		slog.String("data_dir", cfg.Paths.DataDir))

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	metrics, err := infrastructure.CreateScoringMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create scoring metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
	}

	if err := app.initializeServices(ctx); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices opens storage and builds the services on top of it
func (a *Application) initializeServices(ctx context.Context) error {
	store, err := storage.Open(ctx, a.Config.DatabasePath(), a.Logger)
	if err != nil {
		return err
	}
	a.Store = store

	policy, err := scoring.ParseTiePolicy(a.Config.Scoring.TiePolicy)
	if err != nil {
		return err
	}

	a.ScoreService = services.NewScoreService(store, services.ScoreOptions{
		Workers:      a.Config.Scoring.Workers,
		TiePolicy:    policy,
		MemoEnabled:  a.Config.Scoring.MemoEnabled,
		MemoSize:     a.Config.Scoring.MemoSize,
		FieldMapping: dataprocessing.FieldMapping(a.Config.Scoring.FieldMapping),
		Metrics:      a.Metrics,
	}, a.Logger)

	a.HealthService = services.NewHealthService(map[string]services.Pinger{
		"database": store,
	}, a.Logger)

	if a.Config.Scoring.BandsFile != "" {
		if err := a.loadBandsFile(ctx, a.Config.Scoring.BandsFile); err != nil {
			return fmt.Errorf("failed to load bands file: %w", err)
		}
	}

	a.Logger.InfoContext(ctx, "Services initialized",
		slog.String("database", store.Path()),
		slog.String("tie_policy", policy.String()),
		slog.Bool("memo_enabled", a.Config.Scoring.MemoEnabled))
	return nil
}

// loadBandsFile activates the assignment config stored in path. A stored
// config with the same name and content is reused instead of duplicated.
func (a *Application) loadBandsFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cfg, err := dataprocessing.ParseAssignmentConfig(f)
	if err != nil {
		return err
	}
	name := filepath.Base(path)

	existing, err := a.ScoreService.ListConfigs(ctx)
	if err != nil {
		return err
	}
	for _, nc := range existing {
		if nc.Name == name && reflect.DeepEqual(nc.Config, cfg) {
			a.Logger.InfoContext(ctx, "Reusing stored assignment config",
				slog.String("config_id", nc.ID),
				slog.String("file", path))
			return a.ScoreService.ActivateConfig(ctx, nc.ID)
		}
	}

	nc, err := a.ScoreService.CreateConfig(ctx, name, cfg, true)
	if err != nil {
		return err
	}
	a.Logger.InfoContext(ctx, "Imported assignment config",
		slog.String("config_id", nc.ID),
		slog.String("file", path))
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	errorHandler := apierrors.NewErrorHandler(a.Logger, a.Config.Logging.Level == "debug")
	telemetry := customMiddleware.NewTelemetry(a.OTelProviders.Tracer, a.Metrics)

	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))
	r.Use(telemetry.Handler)
	r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout))
	r.Use(customMiddleware.MaxBodySize(a.Config.Server.MaxUploadBytes))
	r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Server.AllowedOrigins,
	}))
	r.Use(customMiddleware.SecurityHeaders)

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
	r.Get("/healthz", healthHandler.HealthCheck)
	r.Handle("/metrics", a.metricsHandler())

	r.Route("/api/v1", func(r chi.Router) {
		if rl := a.Config.Server.RateLimit; rl.Enabled {
			r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.Logger).Handler)
		}

		r.Get("/version", healthHandler.Version)
		r.Mount("/rosters", handlers.NewRosterHandler(a.ScoreService, a.Logger, errorHandler).Routes())
		r.Mount("/assignment-configs", handlers.NewConfigHandler(a.ScoreService, a.Logger, errorHandler).Routes())
	})

	a.Router = r
}

func (a *Application) metricsHandler() http.Handler {
	if a.OTelProviders != nil && a.OTelProviders.PrometheusHTTP != nil {
		return a.OTelProviders.PrometheusHTTP
	}
	return promhttp.Handler()
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         a.Config.Server.Addr(),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start serves HTTP in the background. A listener failure calls cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting server",
		slog.String("address", a.Server.Addr),
		slog.String("level", a.Config.Logging.Level))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if a.Server != nil {
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
		}
	}
	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}
	a.Close()

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return errors.Join(errs...)
}

// Close releases storage. It is safe to call more than once.
func (a *Application) Close() {
	if a.Store == nil {
		return
	}
	if err := a.Store.Close(); err != nil {
		a.Logger.Error("Error closing database", slog.String("error", err.Error()))
	}
	a.Store = nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	<-ctx.Done()
	a.Logger.Info("Received shutdown signal")

	return a.Stop(ctx)
}
