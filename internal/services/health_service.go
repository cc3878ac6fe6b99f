package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/electroluxcode/score-analyzer/pkg/contracts"
	api "github.com/electroluxcode/score-analyzer/pkg/contracts/api/v1"
)

// Pinger is anything whose liveness can be probed.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthService provides health check functionality
type HealthService struct {
	checks    map[string]Pinger
	startTime time.Time
	logger    *slog.Logger
}

// NewHealthService creates a health service probing the given dependencies.
func NewHealthService(checks map[string]Pinger, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		checks:    checks,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// Check probes every dependency. Status is "ok" when all pass and
// "degraded" otherwise.
func (s *HealthService) Check(ctx context.Context) api.HealthResponse {
	resp := api.HealthResponse{
		Status:    "ok",
		Version:   contracts.Version,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Checks:    make(map[string]string, len(s.checks)),
	}
	for name, p := range s.checks {
		if err := p.Ping(ctx); err != nil {
			s.logger.WarnContext(ctx, "health check failed",
				slog.String("check", name),
				slog.String("error", err.Error()))
			resp.Checks[name] = err.Error()
			resp.Status = "degraded"
			continue
		}
		resp.Checks[name] = "ok"
	}
	return resp
}

// Version returns build information.
func (s *HealthService) Version() contracts.VersionInfo {
	return contracts.GetVersionInfo()
}
