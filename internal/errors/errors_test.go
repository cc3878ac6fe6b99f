package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	cause := errors.New("zip: not a valid zip file")
	err := NewParsingError("failed to open workbook", cause).
		WithContext("file", "scores.xlsx").
		WithDetails("sheet 2: missing 姓名 column")

	assert.Equal(t, "[PARSING] failed to open workbook: zip: not a valid zip file", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "scores.xlsx", err.Context["file"])
	assert.Equal(t, []string{"sheet 2: missing 姓名 column"}, err.Details)

	wrapped := fmt.Errorf("import: %w", err)
	assert.True(t, IsType(wrapped, ErrTypeParsing))
	assert.False(t, IsType(wrapped, ErrTypeStorage))
	assert.False(t, IsType(cause, ErrTypeParsing))
}

func TestAppErrorConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		typ  ErrorType
		msg  string
	}{
		{"storage", NewStorageError("insert roster", nil), ErrTypeStorage, "[STORAGE] insert roster"},
		{"validation", NewAppValidationError("bad bands"), ErrTypeValidation, "[VALIDATION] bad bands"},
		{"not found", NewNotFoundError("roster"), ErrTypeNotFound, "[NOT_FOUND] roster not found"},
		{"conflict", NewConflictError("default config is read-only"), ErrTypeConflict, "[CONFLICT] default config is read-only"},
		{"config", NewConfigError("bands file", nil), ErrTypeConfig, "[CONFIG] bands file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.typ, tt.err.Type)
			assert.Equal(t, tt.msg, tt.err.Error())
			assert.Nil(t, tt.err.Unwrap())
		})
	}
}

func TestAPIErrorHelpers(t *testing.T) {
	err := ErrValidation("top", "must be positive")
	assert.Equal(t, 400, err.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", err.ErrorCode)
	assert.Equal(t, []ValidationError{{Field: "top", Message: "must be positive"}}, err.Details)

	nf := NotFoundError("roster")
	assert.Equal(t, 404, nf.StatusCode)
	assert.Equal(t, "roster not found", nf.Error())

	inv := InvalidRequestWithError(errors.New("unexpected EOF"))
	assert.Equal(t, "unexpected EOF", inv.Details)
}
