package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "github.com/electroluxcode/score-analyzer/internal/errors"
	appmw "github.com/electroluxcode/score-analyzer/internal/middleware"
	api "github.com/electroluxcode/score-analyzer/pkg/contracts/api/v1"
)

// ConfigHandler manages assignment configs
type ConfigHandler struct {
	service      ScoreServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validator    *appmw.RequestValidator
}

// NewConfigHandler creates a new assignment config handler
func NewConfigHandler(service ScoreServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ConfigHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConfigHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "config_handler")),
		errorHandler: errorHandler,
		validator:    appmw.NewRequestValidator(),
	}
}

// Routes returns the assignment config routes
func (h *ConfigHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListConfigs)
	r.Post("/", h.CreateConfig)
	r.Post("/import", h.ImportConfig)

	r.Route("/{id}", func(r chi.Router) {
		r.Delete("/", h.DeleteConfig)
		r.Put("/active", h.ActivateConfig)
		r.Get("/export", h.ExportConfig)
	})

	return r
}

// ListConfigs handles GET /assignment-configs
func (h *ConfigHandler) ListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := h.service.ListConfigs(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.ListResponse{Count: len(configs), Data: configs})
}

// CreateConfig handles POST /assignment-configs with a JSON body
func (h *ConfigHandler) CreateConfig(w http.ResponseWriter, r *http.Request) {
	var req api.CreateAssignmentConfigRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	nc, err := h.service.CreateConfig(r.Context(), req.Name, req.Config(), req.Activate)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "assignment config created",
		slog.String("config_id", nc.ID),
		slog.Bool("active", nc.Active))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, nc)
}

// ImportConfig handles POST /assignment-configs/import (multipart field
// "file", optional "name" and "activate")
func (h *ConfigHandler) ImportConfig(w http.ResponseWriter, r *http.Request) {
	upload, err := readUpload(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	activate, err := formBool(upload.form("activate"))
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("activate", "activate must be a boolean"))
		return
	}

	nc, err := h.service.ImportConfig(r.Context(), upload.name, upload.reader(), activate)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, nc)
}

// ExportConfig handles GET /assignment-configs/{id}/export
func (h *ConfigHandler) ExportConfig(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body bytes.Buffer
	if err := h.service.ExportConfig(r.Context(), id, &body); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	sendAttachment(w, contentTypeText, fmt.Sprintf("assignment-%s.txt", id), &body)
}

// ActivateConfig handles PUT /assignment-configs/{id}/active
func (h *ConfigHandler) ActivateConfig(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ActivateConfig(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteConfig handles DELETE /assignment-configs/{id}
func (h *ConfigHandler) DeleteConfig(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteConfig(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
