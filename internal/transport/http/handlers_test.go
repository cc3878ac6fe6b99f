package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/electroluxcode/score-analyzer/internal/analysis"
	apierrors "github.com/electroluxcode/score-analyzer/internal/errors"
	"github.com/electroluxcode/score-analyzer/internal/services"
	"github.com/electroluxcode/score-analyzer/internal/storage"
	"github.com/electroluxcode/score-analyzer/pkg/contracts/domain"
)

// MockScoreService is a testify mock of ScoreServiceInterface
type MockScoreService struct {
	mock.Mock
}

func (m *MockScoreService) ImportWorkbook(ctx context.Context, name string, r io.Reader) (storage.RosterSummary, error) {
	args := m.Called(ctx, name, r)
	return args.Get(0).(storage.RosterSummary), args.Error(1)
}

func (m *MockScoreService) ListRosters(ctx context.Context) ([]storage.RosterSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).([]storage.RosterSummary), args.Error(1)
}

func (m *MockScoreService) DeleteRoster(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockScoreService) ActivateRoster(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockScoreService) Results(ctx context.Context, rosterID string, exams []int) (services.ScoredRoster, error) {
	args := m.Called(ctx, rosterID, exams)
	return args.Get(0).(services.ScoredRoster), args.Error(1)
}

func (m *MockScoreService) Export(ctx context.Context, w io.Writer, rosterID string, format services.ExportFormat, exams []int) error {
	return m.Called(ctx, w, rosterID, format, exams).Error(0)
}

func (m *MockScoreService) ExportTemplate(w io.Writer) error {
	return m.Called(w).Error(0)
}

func (m *MockScoreService) Analyze(ctx context.Context, rosterID string, q services.AnalysisQuery) (interface{}, error) {
	args := m.Called(ctx, rosterID, q)
	return args.Get(0), args.Error(1)
}

func (m *MockScoreService) ListConfigs(ctx context.Context) ([]storage.NamedConfig, error) {
	args := m.Called(ctx)
	return args.Get(0).([]storage.NamedConfig), args.Error(1)
}

func (m *MockScoreService) CreateConfig(ctx context.Context, name string, cfg domain.AssignmentConfig, activate bool) (storage.NamedConfig, error) {
	args := m.Called(ctx, name, cfg, activate)
	return args.Get(0).(storage.NamedConfig), args.Error(1)
}

func (m *MockScoreService) ImportConfig(ctx context.Context, name string, r io.Reader, activate bool) (storage.NamedConfig, error) {
	args := m.Called(ctx, name, r, activate)
	return args.Get(0).(storage.NamedConfig), args.Error(1)
}

func (m *MockScoreService) ExportConfig(ctx context.Context, id string, w io.Writer) error {
	return m.Called(ctx, id, w).Error(0)
}

func (m *MockScoreService) ActivateConfig(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockScoreService) DeleteConfig(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRouter(svc *MockScoreService) chi.Router {
	logger := testLogger()
	eh := apierrors.NewErrorHandler(logger, false)
	r := chi.NewRouter()
	r.Mount("/rosters", NewRosterHandler(svc, logger, eh).Routes())
	r.Mount("/assignment-configs", NewConfigHandler(svc, logger, eh).Routes())
	return r
}

func serve(r chi.Router, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func multipartRequest(t *testing.T, target string, fields map[string]string, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestRosterHandler_ImportRoster(t *testing.T) {
	t.Run("uses the name field", func(t *testing.T) {
		svc := new(MockScoreService)
		svc.On("ImportWorkbook", mock.Anything, "期中", mock.Anything).
			Return(storage.RosterSummary{ID: "r1", Name: "期中", Exams: 2, Students: 3, Active: true}, nil)

		req := multipartRequest(t, "/rosters", map[string]string{"name": "期中"}, "scores.xlsx", []byte("xlsx"))
		rec := serve(newTestRouter(svc), req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "r1", body["id"])
		assert.Equal(t, float64(3), body["students"])
		svc.AssertExpectations(t)
	})

	t.Run("falls back to the file name", func(t *testing.T) {
		svc := new(MockScoreService)
		svc.On("ImportWorkbook", mock.Anything, "scores.xlsx", mock.Anything).
			Return(storage.RosterSummary{ID: "r2"}, nil)

		req := multipartRequest(t, "/rosters", nil, "scores.xlsx", []byte("xlsx"))
		rec := serve(newTestRouter(svc), req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("missing file", func(t *testing.T) {
		svc := new(MockScoreService)
		req := multipartRequest(t, "/rosters", map[string]string{"name": "x"}, "", nil)
		rec := serve(newTestRouter(svc), req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "ImportWorkbook", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("not multipart", func(t *testing.T) {
		svc := new(MockScoreService)
		req := httptest.NewRequest(http.MethodPost, "/rosters", strings.NewReader("{}"))
		req.Header.Set("Content-Type", "application/json")
		rec := serve(newTestRouter(svc), req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unparseable workbook", func(t *testing.T) {
		svc := new(MockScoreService)
		svc.On("ImportWorkbook", mock.Anything, "bad.xlsx", mock.Anything).
			Return(storage.RosterSummary{}, apierrors.NewParsingError("failed to read workbook", io.ErrUnexpectedEOF))

		req := multipartRequest(t, "/rosters", nil, "bad.xlsx", []byte("nope"))
		rec := serve(newTestRouter(svc), req)

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, float64(http.StatusUnprocessableEntity), decodeBody(t, rec)["status"])
	})
}

func TestRosterHandler_Lifecycle(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		target     string
		setup      func(svc *MockScoreService)
		wantStatus int
	}{
		{
			name:   "list",
			method: http.MethodGet,
			target: "/rosters",
			setup: func(svc *MockScoreService) {
				svc.On("ListRosters", mock.Anything).Return([]storage.RosterSummary{{ID: "a"}, {ID: "b"}}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "delete",
			method: http.MethodDelete,
			target: "/rosters/a",
			setup: func(svc *MockScoreService) {
				svc.On("DeleteRoster", mock.Anything, "a").Return(nil)
			},
			wantStatus: http.StatusNoContent,
		},
		{
			name:   "delete missing",
			method: http.MethodDelete,
			target: "/rosters/zzz",
			setup: func(svc *MockScoreService) {
				svc.On("DeleteRoster", mock.Anything, "zzz").Return(apierrors.NewNotFoundError("roster"))
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:   "activate",
			method: http.MethodPut,
			target: "/rosters/b/active",
			setup: func(svc *MockScoreService) {
				svc.On("ActivateRoster", mock.Anything, "b").Return(nil)
			},
			wantStatus: http.StatusNoContent,
		},
		{
			name:   "storage failure",
			method: http.MethodGet,
			target: "/rosters",
			setup: func(svc *MockScoreService) {
				svc.On("ListRosters", mock.Anything).
					Return([]storage.RosterSummary(nil), apierrors.NewStorageError("failed to list rosters", io.EOF))
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockScoreService)
			tt.setup(svc)

			rec := serve(newTestRouter(svc), httptest.NewRequest(tt.method, tt.target, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestRosterHandler_ListEnvelope(t *testing.T) {
	svc := new(MockScoreService)
	svc.On("ListRosters", mock.Anything).Return([]storage.RosterSummary{{ID: "a"}, {ID: "b"}}, nil)

	rec := serve(newTestRouter(svc), httptest.NewRequest(http.MethodGet, "/rosters", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(2), body["count"])
	assert.Len(t, body["data"], 2)
}

func TestRosterHandler_GetResults(t *testing.T) {
	t.Run("passes parsed exams", func(t *testing.T) {
		svc := new(MockScoreService)
		svc.On("Results", mock.Anything, "active", []int{1, 3}).Return(services.ScoredRoster{
			Roster: storage.RosterSummary{ID: "r1"},
			Config: storage.NamedConfig{ID: "c1", Config: domain.DefaultAssignmentConfig()},
			Exams:  []domain.ExamSnapshot{{ExamNumber: 1}, {ExamNumber: 3}},
		}, nil)

		rec := serve(newTestRouter(svc), httptest.NewRequest(http.MethodGet, "/rosters/active/results?exams=3,1,3", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "r1", body["roster_id"])
		assert.Equal(t, "c1", body["config_id"])
		assert.Equal(t, true, body["assignment"])
		assert.Len(t, body["exams"], 2)
		svc.AssertExpectations(t)
	})

	t.Run("rejects a bad exam list", func(t *testing.T) {
		svc := new(MockScoreService)
		rec := serve(newTestRouter(svc), httptest.NewRequest(http.MethodGet, "/rosters/r1/results?exams=1,x", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "Results", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no active roster", func(t *testing.T) {
		svc := new(MockScoreService)
		svc.On("Results", mock.Anything, "active", []int(nil)).
			Return(services.ScoredRoster{}, apierrors.NewNotFoundError("active roster"))

		rec := serve(newTestRouter(svc), httptest.NewRequest(http.MethodGet, "/rosters/active/results", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRosterHandler_Export(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		format      services.ExportFormat
		contentType string
		filename    string
	}{
		{"default xlsx", "", services.FormatXLSX, contentTypeXLSX, "scores-r1.xlsx"},
		{"csv", "?format=csv", services.FormatCSV, contentTypeCSV, "scores-r1.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockScoreService)
			svc.On("Export", mock.Anything, mock.Anything, "r1", tt.format, []int(nil)).
				Run(func(args mock.Arguments) {
					_, _ = io.WriteString(args.Get(1).(io.Writer), "payload")
				}).
				Return(nil)

			rec := serve(newTestRouter(svc), httptest.NewRequest(http.MethodGet, "/rosters/r1/export"+tt.query, nil))

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Header().Get("Content-Disposition"), tt.filename)
			assert.Equal(t, "payload", rec.Body.String())
		})
	}

	t.Run("unknown format", func(t *testing.T) {
		svc := new(MockScoreService)
		rec := serve(newTestRouter(svc), httptest.NewRequest(http.MethodGet, "/rosters/r1/export?format=pdf", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "Export", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("failure renders a problem instead of a partial file", func(t *testing.T) {
		svc := new(MockScoreService)
		svc.On("Export", mock.Anything, mock.Anything, "r1", services.FormatXLSX, []int{9}).
			Run(func(args mock.Arguments) {
				_, _ = io.WriteString(args.Get(1).(io.Writer), "partial")
			}).
			Return(apierrors.NewNotFoundError("exam"))

		rec := serve(newTestRouter(svc), httptest.NewRequest(http.MethodGet, "/rosters/r1/export?exams=9", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.NotContains(t, rec.Body.String(), "partial")
	})
}

func TestRosterHandler_DownloadTemplate(t *testing.T) {
	svc := new(MockScoreService)
	svc.On("ExportTemplate", mock.Anything).
		Run(func(args mock.Arguments) {
			_, _ = io.WriteString(args.Get(0).(io.Writer), "template")
		}).
		Return(nil)

	rec := serve(newTestRouter(svc), httptest.NewRequest(http.MethodGet, "/rosters/template", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, contentTypeXLSX, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "template.xlsx")
	svc.AssertNotCalled(t, "DeleteRoster", mock.Anything, mock.Anything)
}

func TestRosterHandler_GetAnalysis(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		svc := new(MockScoreService)
		want := services.AnalysisQuery{
			Kind:   services.AnalysisKind("top-students"),
			Top:    defaultTop,
			Metric: analysis.MetricTotal,
		}
		svc.On("Analyze", mock.Anything, "r1", want).Return([]string{"s1"}, nil)

		rec := serve(newTestRouter(svc), httptest.NewRequest(http.MethodGet, "/rosters/r1/analysis/top-students", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "top-students", body["kind"])
		assert.Equal(t, []interface{}{"s1"}, body["data"])
		svc.AssertExpectations(t)
	})

	t.Run("query parameters", func(t *testing.T) {
		svc := new(MockScoreService)
		want := services.AnalysisQuery{
			Kind:   services.AnalysisKind("averages"),
			Class:  "2",
			Top:    5,
			Metric: analysis.MetricFourTotal,
			Exams:  []int{2},
		}
		svc.On("Analyze", mock.Anything, "r1", want).Return(map[string]float64{}, nil)

		target := "/rosters/r1/analysis/averages?class=2&top=5&metric=" + string(analysis.MetricFourTotal) + "&exams=2"
		rec := serve(newTestRouter(svc), httptest.NewRequest(http.MethodGet, target, nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	tests := []struct {
		name   string
		target string
	}{
		{"unknown kind", "/rosters/r1/analysis/horoscope"},
		{"top out of range", "/rosters/r1/analysis/top-students?top=0"},
		{"top not a number", "/rosters/r1/analysis/top-students?top=many"},
		{"unknown metric", "/rosters/r1/analysis/averages?metric=shoe-size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockScoreService)
			rec := serve(newTestRouter(svc), httptest.NewRequest(http.MethodGet, tt.target, nil))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			svc.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestConfigHandler_CreateConfig(t *testing.T) {
	t.Run("valid request", func(t *testing.T) {
		svc := new(MockScoreService)
		isDefaultElectives := mock.MatchedBy(func(cfg domain.AssignmentConfig) bool {
			return cfg.Enabled &&
				cfg.EnabledSubjects == domain.NewSubjectSet(domain.ElectiveSubjects...) &&
				len(cfg.Bands) == 2
		})
		svc.On("CreateConfig", mock.Anything, "两档", isDefaultElectives, true).
			Return(storage.NamedConfig{ID: "c9", Name: "两档", Active: true}, nil)

		body := `{"name":"两档","activate":true,"bands":[
			{"grade":"A","percentage":50,"score_ceiling":100,"score_floor":80},
			{"grade":"B","percentage":50,"score_ceiling":79,"score_floor":60}]}`
		req := httptest.NewRequest(http.MethodPost, "/assignment-configs", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := serve(newTestRouter(svc), req)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "c9", decodeBody(t, rec)["id"])
		svc.AssertExpectations(t)
	})

	t.Run("explicitly disabled", func(t *testing.T) {
		svc := new(MockScoreService)
		disabled := mock.MatchedBy(func(cfg domain.AssignmentConfig) bool {
			return !cfg.Enabled && cfg.EnabledSubjects == domain.NewSubjectSet(domain.SubjectPhysics)
		})
		svc.On("CreateConfig", mock.Anything, "off", disabled, false).
			Return(storage.NamedConfig{ID: "c10"}, nil)

		body := `{"name":"off","enabled":false,"enabled_subjects":["物理"],"bands":[
			{"grade":"A","percentage":100,"score_ceiling":100,"score_floor":30}]}`
		req := httptest.NewRequest(http.MethodPost, "/assignment-configs", strings.NewReader(body))
		rec := serve(newTestRouter(svc), req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		svc.AssertExpectations(t)
	})

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"name":`},
		{"missing name", `{"bands":[{"grade":"A","percentage":100,"score_ceiling":100,"score_floor":30}]}`},
		{"no bands", `{"name":"x","bands":[]}`},
		{"ceiling below floor", `{"name":"x","bands":[{"grade":"A","percentage":100,"score_ceiling":20,"score_floor":30}]}`},
		{"unknown subject", `{"name":"x","enabled_subjects":["music"],"bands":[{"grade":"A","percentage":100,"score_ceiling":100,"score_floor":30}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockScoreService)
			req := httptest.NewRequest(http.MethodPost, "/assignment-configs", strings.NewReader(tt.body))
			rec := serve(newTestRouter(svc), req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			svc.AssertNotCalled(t, "CreateConfig", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("percentages that do not sum to 100", func(t *testing.T) {
		svc := new(MockScoreService)
		svc.On("CreateConfig", mock.Anything, "x", mock.Anything, false).
			Return(storage.NamedConfig{}, apierrors.NewAppValidationError("invalid assignment config").
				WithDetails("band percentages sum to 90.00, want 100"))

		body := `{"name":"x","bands":[{"grade":"A","percentage":90,"score_ceiling":100,"score_floor":30}]}`
		req := httptest.NewRequest(http.MethodPost, "/assignment-configs", strings.NewReader(body))
		rec := serve(newTestRouter(svc), req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "sum to 90.00")
	})
}

func TestConfigHandler_ImportConfig(t *testing.T) {
	t.Run("activate flag", func(t *testing.T) {
		svc := new(MockScoreService)
		svc.On("ImportConfig", mock.Anything, "bands.txt", mock.Anything, true).
			Return(storage.NamedConfig{ID: "c1", Active: true}, nil)

		req := multipartRequest(t, "/assignment-configs/import", map[string]string{"activate": "true"},
			"bands.txt", []byte("A,100,100,30\n"))
		rec := serve(newTestRouter(svc), req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("bad activate flag", func(t *testing.T) {
		svc := new(MockScoreService)
		req := multipartRequest(t, "/assignment-configs/import", map[string]string{"activate": "perhaps"},
			"bands.txt", []byte("A,100,100,30\n"))
		rec := serve(newTestRouter(svc), req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "ImportConfig", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestConfigHandler_Management(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		target     string
		setup      func(svc *MockScoreService)
		wantStatus int
	}{
		{
			name:   "list",
			method: http.MethodGet,
			target: "/assignment-configs",
			setup: func(svc *MockScoreService) {
				svc.On("ListConfigs", mock.Anything).Return([]storage.NamedConfig{{ID: "d", Default: true}}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "activate",
			method: http.MethodPut,
			target: "/assignment-configs/c1/active",
			setup: func(svc *MockScoreService) {
				svc.On("ActivateConfig", mock.Anything, "c1").Return(nil)
			},
			wantStatus: http.StatusNoContent,
		},
		{
			name:   "delete",
			method: http.MethodDelete,
			target: "/assignment-configs/c1",
			setup: func(svc *MockScoreService) {
				svc.On("DeleteConfig", mock.Anything, "c1").Return(nil)
			},
			wantStatus: http.StatusNoContent,
		},
		{
			name:   "delete default",
			method: http.MethodDelete,
			target: "/assignment-configs/d",
			setup: func(svc *MockScoreService) {
				svc.On("DeleteConfig", mock.Anything, "d").
					Return(apierrors.NewConflictError("the default assignment config cannot be deleted"))
			},
			wantStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockScoreService)
			tt.setup(svc)

			rec := serve(newTestRouter(svc), httptest.NewRequest(tt.method, tt.target, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestConfigHandler_ExportConfig(t *testing.T) {
	svc := new(MockScoreService)
	svc.On("ExportConfig", mock.Anything, "c1", mock.Anything).
		Run(func(args mock.Arguments) {
			_, _ = io.WriteString(args.Get(2).(io.Writer), "A,100,100,30\n")
		}).
		Return(nil)

	rec := serve(newTestRouter(svc), httptest.NewRequest(http.MethodGet, "/assignment-configs/c1/export", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, contentTypeText, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "assignment-c1.txt")
	assert.Equal(t, "A,100,100,30\n", rec.Body.String())
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		pinger     stubPinger
		wantStatus int
		wantState  string
	}{
		{"healthy", stubPinger{}, http.StatusOK, "ok"},
		{"degraded", stubPinger{err: io.ErrClosedPipe}, http.StatusServiceUnavailable, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hs := services.NewHealthService(map[string]services.Pinger{"database": tt.pinger}, testLogger())
			h := NewHealthHandler(hs, testLogger())

			rec := httptest.NewRecorder()
			h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantState, decodeBody(t, rec)["status"])
		})
	}

	t.Run("version", func(t *testing.T) {
		hs := services.NewHealthService(nil, testLogger())
		h := NewHealthHandler(hs, testLogger())

		rec := httptest.NewRecorder()
		h.Version(rec, httptest.NewRequest(http.MethodGet, "/api/v1/version", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, decodeBody(t, rec)["version"])
	})
}
