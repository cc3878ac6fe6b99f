// Package api contains the request and response contracts of the v1 HTTP API.
package api

import (
	"time"

	"github.com/electroluxcode/score-analyzer/pkg/contracts/domain"
)

// CreateAssignmentConfigRequest is the body of POST /assignment-configs.
type CreateAssignmentConfigRequest struct {
	Name            string             `json:"name" validate:"required,max=64"`
	Enabled         *bool              `json:"enabled,omitempty"`
	EnabledSubjects domain.SubjectSet  `json:"enabled_subjects"`
	Bands           []domain.GradeBand `json:"bands" validate:"required,min=1,dive"`
	Activate        bool               `json:"activate"`
}

// Config returns the assignment config described by the request. An
// empty subject list selects the six electives; a missing enabled flag
// means enabled.
func (r CreateAssignmentConfigRequest) Config() domain.AssignmentConfig {
	subjects := r.EnabledSubjects
	if subjects.Empty() {
		subjects = domain.NewSubjectSet(domain.ElectiveSubjects...)
	}
	enabled := r.Enabled == nil || *r.Enabled
	bands := make([]domain.GradeBand, len(r.Bands))
	copy(bands, r.Bands)
	return domain.AssignmentConfig{Enabled: enabled, EnabledSubjects: subjects, Bands: bands}
}

// ResultsResponse is the body of GET /rosters/{id}/results.
type ResultsResponse struct {
	RosterID   string                `json:"roster_id"`
	ConfigID   string                `json:"config_id"`
	Assignment bool                  `json:"assignment"`
	Exams      []domain.ExamSnapshot `json:"exams"`
}

// AnalysisResponse wraps one analysis result.
type AnalysisResponse struct {
	RosterID string      `json:"roster_id"`
	Kind     string      `json:"kind"`
	Data     interface{} `json:"data"`
}

// ListResponse is the envelope of every collection endpoint.
type ListResponse struct {
	Count int         `json:"count"`
	Data  interface{} `json:"data"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Timestamp time.Time         `json:"timestamp"`
	Uptime    string            `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}
