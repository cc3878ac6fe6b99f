package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/electroluxcode/score-analyzer/internal/errors"
)

func newQueryValidator() *QueryParamValidator {
	return NewQueryParamValidator(discardLogger(), apierrors.NewErrorHandler(discardLogger(), false))
}

func TestValidateInt(t *testing.T) {
	v := newQueryValidator()

	tests := []struct {
		name   string
		query  string
		want   int
		wantOK bool
	}{
		{"default", "", 10, true},
		{"valid", "?top=25", 25, true},
		{"below range", "?top=0", 0, false},
		{"above range", "?top=1001", 0, false},
		{"not a number", "?top=ten", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			got, ok := v.ValidateInt(rec, httptest.NewRequest(http.MethodGet, "/"+tt.query, nil), "top", 1, 1000, 10)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
			if !ok {
				assert.Equal(t, http.StatusBadRequest, rec.Code)
			}
		})
	}
}

func TestValidateEnum(t *testing.T) {
	v := newQueryValidator()
	allowed := []string{"total", "four_total", "six_total"}

	got, ok := v.ValidateEnum(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/?metric=six_total", nil), "metric", allowed, "total")
	assert.True(t, ok)
	assert.Equal(t, "six_total", got)

	got, ok = v.ValidateEnum(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), "metric", allowed, "total")
	assert.True(t, ok)
	assert.Equal(t, "total", got)

	rec := httptest.NewRecorder()
	_, ok = v.ValidateEnum(rec, httptest.NewRequest(http.MethodGet, "/?metric=seven", nil), "metric", allowed, "total")
	assert.False(t, ok)
	assert.Contains(t, rec.Body.String(), "metric must be one of: total, four_total, six_total")
}

func TestValidateIntList(t *testing.T) {
	v := newQueryValidator()

	tests := []struct {
		name   string
		query  string
		want   []int
		wantOK bool
	}{
		{"absent", "", nil, true},
		{"sorted and deduplicated", "?exams=3,1,3,2", []int{1, 2, 3}, true},
		{"blank items skipped", "?exams=2,,5", []int{2, 5}, true},
		{"zero rejected", "?exams=0,1", nil, false},
		{"garbage rejected", "?exams=1,x", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			got, ok := v.ValidateIntList(rec, httptest.NewRequest(http.MethodGet, "/"+tt.query, nil), "exams")
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequestValidator(t *testing.T) {
	type band struct {
		Grade string  `json:"grade" validate:"required"`
		Floor float64 `json:"score_floor" validate:"gte=0"`
	}
	type request struct {
		Name  string `json:"name" validate:"required,max=64"`
		Bands []band `json:"bands" validate:"required,dive"`
	}

	rv := NewRequestValidator()
	require.NoError(t, rv.ValidateStruct(request{Name: "default", Bands: []band{{Grade: "A"}}}))

	err := rv.ValidateStruct(request{Bands: []band{{Grade: "", Floor: -1}}})
	require.Error(t, err)

	var apiErr *apierrors.APIError
	require.ErrorAs(t, err, &apiErr)
	details, ok := apiErr.Details.([]apierrors.ValidationError)
	require.True(t, ok)

	fields := make([]string, 0, len(details))
	for _, d := range details {
		fields = append(fields, d.Field)
	}
	assert.ElementsMatch(t, []string{"request.name", "request.bands[0].grade", "request.bands[0].score_floor"}, fields)
}
