package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/electroluxcode/score-analyzer/internal/analysis"
	apierrors "github.com/electroluxcode/score-analyzer/internal/errors"
	appmw "github.com/electroluxcode/score-analyzer/internal/middleware"
	"github.com/electroluxcode/score-analyzer/internal/services"
	api "github.com/electroluxcode/score-analyzer/pkg/contracts/api/v1"
)

// Bounds of the top query parameter.
const (
	defaultTop = 10
	maxTop     = 1000
)

// RosterHandler handles roster import, results, export and analysis
type RosterHandler struct {
	service      ScoreServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	query        *appmw.QueryParamValidator
}

// NewRosterHandler creates a new roster handler
func NewRosterHandler(service ScoreServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *RosterHandler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "roster_handler"))
	return &RosterHandler{
		service:      service,
		logger:       logger,
		errorHandler: errorHandler,
		query:        appmw.NewQueryParamValidator(logger, errorHandler),
	}
}

// Routes returns the roster routes
func (h *RosterHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(render.SetContentType(render.ContentTypeJSON)).Get("/", h.ListRosters)
	r.Post("/", h.ImportRoster)
	r.Get("/template", h.DownloadTemplate)

	r.Route("/{id}", func(r chi.Router) {
		r.Delete("/", h.DeleteRoster)
		r.Put("/active", h.ActivateRoster)
		r.Get("/results", h.GetResults)
		r.Get("/export", h.ExportRoster)
		r.Get("/analysis/{kind}", h.GetAnalysis)
	})

	return r
}

// ImportRoster handles POST /rosters (multipart field "file")
func (h *RosterHandler) ImportRoster(w http.ResponseWriter, r *http.Request) {
	upload, err := readUpload(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	summary, err := h.service.ImportWorkbook(r.Context(), upload.name, upload.reader())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "roster imported",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("roster_id", summary.ID),
		slog.Int("bytes", len(upload.data)))

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, summary)
}

// ListRosters handles GET /rosters
func (h *RosterHandler) ListRosters(w http.ResponseWriter, r *http.Request) {
	rosters, err := h.service.ListRosters(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.ListResponse{Count: len(rosters), Data: rosters})
}

// DeleteRoster handles DELETE /rosters/{id}
func (h *RosterHandler) DeleteRoster(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteRoster(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ActivateRoster handles PUT /rosters/{id}/active
func (h *RosterHandler) ActivateRoster(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ActivateRoster(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetResults handles GET /rosters/{id}/results?exams=1,2
func (h *RosterHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	exams, ok := h.query.ValidateIntList(w, r, "exams")
	if !ok {
		return
	}

	res, err := h.service.Results(r.Context(), chi.URLParam(r, "id"), exams)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, api.ResultsResponse{
		RosterID:   res.Roster.ID,
		ConfigID:   res.Config.ID,
		Assignment: res.Config.Config.Active(),
		Exams:      res.Exams,
	})
}

// ExportRoster handles GET /rosters/{id}/export?format=xlsx|csv&exams=
func (h *RosterHandler) ExportRoster(w http.ResponseWriter, r *http.Request) {
	formatName, ok := h.query.ValidateEnum(w, r, "format", []string{"xlsx", "csv"}, "xlsx")
	if !ok {
		return
	}
	exams, ok := h.query.ValidateIntList(w, r, "exams")
	if !ok {
		return
	}
	format, err := services.ParseExportFormat(formatName)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	id := chi.URLParam(r, "id")
	var body bytes.Buffer
	if err := h.service.Export(r.Context(), &body, id, format, exams); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	contentType := contentTypeXLSX
	if format == services.FormatCSV {
		contentType = contentTypeCSV
	}
	sendAttachment(w, contentType, fmt.Sprintf("scores-%s.%s", id, format), &body)
}

// DownloadTemplate handles GET /rosters/template
func (h *RosterHandler) DownloadTemplate(w http.ResponseWriter, r *http.Request) {
	var body bytes.Buffer
	if err := h.service.ExportTemplate(&body); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	sendAttachment(w, contentTypeXLSX, "template.xlsx", &body)
}

// GetAnalysis handles GET /rosters/{id}/analysis/{kind}?class=&top=&metric=&exams=
func (h *RosterHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	if !contains(services.AnalysisKinds(), kind) {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("kind",
			fmt.Sprintf("unknown analysis %q", kind)))
		return
	}

	top, ok := h.query.ValidateInt(w, r, "top", 1, maxTop, defaultTop)
	if !ok {
		return
	}
	exams, ok := h.query.ValidateIntList(w, r, "exams")
	if !ok {
		return
	}
	metric := analysis.MetricTotal
	if raw := r.URL.Query().Get("metric"); raw != "" {
		m, err := analysis.ParseMetric(raw)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("metric", err.Error()))
			return
		}
		metric = m
	}

	id := chi.URLParam(r, "id")
	data, err := h.service.Analyze(r.Context(), id, services.AnalysisQuery{
		Kind:   services.AnalysisKind(kind),
		Class:  r.URL.Query().Get("class"),
		Top:    top,
		Metric: metric,
		Exams:  exams,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.AnalysisResponse{RosterID: id, Kind: kind, Data: data})
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
