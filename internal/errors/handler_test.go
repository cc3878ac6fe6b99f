package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError(t *testing.T) {
	h := NewErrorHandler(slog.New(slog.NewJSONHandler(io.Discard, nil)), false)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantDetail string
	}{
		{"validation", NewAppValidationError("percentages sum to 99"), http.StatusBadRequest, TypeValidation, "percentages sum to 99"},
		{"parsing", NewParsingError("failed to read workbook", errors.New("bad zip")), http.StatusUnprocessableEntity, TypeParsing, "failed to read workbook: bad zip"},
		{"not found wrapped", fmt.Errorf("results: %w", NewNotFoundError("roster")), http.StatusNotFound, TypeNotFound, "roster not found"},
		{"conflict", NewConflictError("default config cannot be deleted"), http.StatusConflict, TypeConflict, "default config cannot be deleted"},
		{"storage hides cause", NewStorageError("insert", errors.New("disk I/O error")), http.StatusInternalServerError, TypeStorage, "An unexpected error occurred while processing your request"},
		{"api error", ErrValidation("top", "must be positive"), http.StatusBadRequest, TypeValidation, "Request validation failed"},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout, TypeTimeout, "The request took too long to process and was cancelled"},
		{"too large", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge, TypePayloadTooLarge, "The request body exceeds 10 bytes"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, TypeInternal, "An unexpected error occurred while processing your request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/rosters/x", nil)
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "req-1"))
			rec := httptest.NewRecorder()

			h.HandleError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, tt.wantDetail, body["detail"])
			assert.Equal(t, "/api/v1/rosters/x", body["instance"])
			assert.Equal(t, "req-1", body["trace_id"])
		})
	}
}

func TestHandleErrorCarriesDetails(t *testing.T) {
	h := NewErrorHandler(nil, false)
	err := NewAppValidationError("invalid assignment config").WithDetails("line 2: max < min", "line 3: not a number")

	rec := httptest.NewRecorder()
	h.HandleError(rec, httptest.NewRequest(http.MethodPost, "/api/v1/assignment-configs/import", nil), err)

	var body struct {
		Errors    []string `json:"errors"`
		ErrorType string   `json:"error_type"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"line 2: max < min", "line 3: not a number"}, body.Errors)
	assert.Equal(t, "VALIDATION", body.ErrorType)
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	h := NewErrorHandler(nil, false)

	rec := httptest.NewRecorder()
	h.NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.MethodNotAllowed(rec, httptest.NewRequest(http.MethodPatch, "/api/v1/rosters", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, rec.Body.String(), "Method PATCH is not allowed")
}
