package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorType_Constants(t *testing.T) {
	tests := []struct {
		name     string
		errType  ErrorType
		expected string
	}{
		{
			name:     "parsing error type",
			errType:  ErrTypeParsing,
			expected: "PARSING",
		},
		{
			name:     "storage error type",
			errType:  ErrTypeStorage,
			expected: "STORAGE",
		},
		{
			name:     "validation error type",
			errType:  ErrTypeValidation,
			expected: "VALIDATION",
		},
		{
			name:     "not found error type",
			errType:  ErrTypeNotFound,
			expected: "NOT_FOUND",
		},
		{
			name:     "permission error type",
			errType:  ErrTypePermission,
			expected: "PERMISSION",
		},
		{
			name:     "config error type",
			errType:  ErrTypeConfig,
			expected: "CONFIG",
		},
		{
			name:     "render error type",
			errType:  ErrTypeRender,
			expected: "RENDER",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.errType))
		})
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name        string
		appError    *AppError
		wantMessage string
	}{
		{
			name: "error without cause",
			appError: &AppError{
				Type:    ErrTypeNotFound,
				Message: "input file not found: data/raw.csv",
				Cause:   nil,
			},
			wantMessage: "[NOT_FOUND] input file not found: data/raw.csv",
		},
		{
			name: "error with cause",
			appError: &AppError{
				Type:    ErrTypeParsing,
				Message: "failed to read raw dataset",
				Cause:   fmt.Errorf("unexpected EOF"),
			},
			wantMessage: "[PARSING] failed to read raw dataset: unexpected EOF",
		},
		{
			name: "storage error with cause",
			appError: &AppError{
				Type:    ErrTypeStorage,
				Message: "failed to write cleaned dataset",
				Cause:   errors.New("disk full"),
			},
			wantMessage: "[STORAGE] failed to write cleaned dataset: disk full",
		},
		{
			name: "error with empty message",
			appError: &AppError{
				Type:    ErrTypeValidation,
				Message: "",
				Cause:   nil,
			},
			wantMessage: "[VALIDATION] ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, tt.appError.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	t.Run("unwrap with cause", func(t *testing.T) {
		cause := fmt.Errorf("original error")
		appErr := NewParsingError("parse failed", cause)
		assert.Equal(t, cause, appErr.Unwrap())
	})

	t.Run("unwrap without cause", func(t *testing.T) {
		appErr := NewValidationError("bad field")
		assert.Nil(t, appErr.Unwrap())
	})
}

func TestAppError_WithContext(t *testing.T) {
	tests := []struct {
		name          string
		appError      *AppError
		key           string
		value         interface{}
		expectedValue interface{}
	}{
		{
			name:          "add string context",
			appError:      NewStorageError("write failed", nil),
			key:           "path",
			value:         "data/cleaned_tax_data.csv",
			expectedValue: "data/cleaned_tax_data.csv",
		},
		{
			name:          "add integer context",
			appError:      NewParsingError("row rejected", nil),
			key:           "row_number",
			value:         42,
			expectedValue: 42,
		},
		{
			name: "add context to error with nil context",
			appError: &AppError{
				Type:    ErrTypeConfig,
				Message: "bad config",
				Context: nil,
			},
			key:           "field",
			value:         "logging.level",
			expectedValue: "logging.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.appError.WithContext(tt.key, tt.value)

			// Should return the same instance
			assert.Same(t, tt.appError, result)

			require.Contains(t, result.Context, tt.key)
			assert.Equal(t, tt.expectedValue, result.Context[tt.key])
			assert.NotNil(t, result.Context)
		})
	}
}

func TestNewAppError(t *testing.T) {
	cause := errors.New("underlying")
	got := NewAppError(ErrTypeStorage, "operation failed", cause)

	assert.Equal(t, ErrTypeStorage, got.Type)
	assert.Equal(t, "operation failed", got.Message)
	assert.Equal(t, cause, got.Cause)
	assert.NotNil(t, got.Context)
	assert.Empty(t, got.Context)
}

func TestHelperConstructors(t *testing.T) {
	cause := fmt.Errorf("boom")

	tests := []struct {
		name     string
		err      *AppError
		wantType ErrorType
		wantMsg  string
	}{
		{
			name:     "parsing helper",
			err:      NewParsingError("failed to parse date", cause),
			wantType: ErrTypeParsing,
			wantMsg:  "failed to parse date",
		},
		{
			name:     "storage helper",
			err:      NewStorageError("failed to create file", cause),
			wantType: ErrTypeStorage,
			wantMsg:  "failed to create file",
		},
		{
			name:     "validation helper",
			err:      NewValidationError("missing column"),
			wantType: ErrTypeValidation,
			wantMsg:  "missing column",
		},
		{
			name:     "not found helper",
			err:      NewNotFoundError("cleaned dataset"),
			wantType: ErrTypeNotFound,
			wantMsg:  "cleaned dataset not found",
		},
		{
			name:     "permission helper",
			err:      NewPermissionError("reports directory is not writable"),
			wantType: ErrTypePermission,
			wantMsg:  "reports directory is not writable",
		},
		{
			name:     "config helper",
			err:      NewConfigError("invalid logging level", cause),
			wantType: ErrTypeConfig,
			wantMsg:  "invalid logging level",
		},
		{
			name:     "render helper",
			err:      NewRenderError("pie panel failed", cause),
			wantType: ErrTypeRender,
			wantMsg:  "pie panel failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.wantMsg, tt.err.Message)
			assert.NotNil(t, tt.err.Context)
		})
	}
}

func TestNewMissingInputError(t *testing.T) {
	err := NewMissingInputError("data/cleaned_tax_data.csv", "run the cleaner first")

	assert.Equal(t, ErrTypeNotFound, err.Type)
	assert.Equal(t, "[NOT_FOUND] input file not found: data/cleaned_tax_data.csv", err.Error())
	assert.Equal(t, "run the cleaner first", err.Hint)
	assert.Equal(t, "data/cleaned_tax_data.csv", err.Context["path"])
}

func TestIsNotFound(t *testing.T) {
	t.Run("direct not found error", func(t *testing.T) {
		assert.True(t, IsNotFound(NewNotFoundError("raw dataset")))
	})

	t.Run("wrapped not found error", func(t *testing.T) {
		wrapped := fmt.Errorf("loading failed: %w", NewMissingInputError("x.csv", "run the cleaner first"))
		assert.True(t, IsNotFound(wrapped))
	})

	t.Run("other app error", func(t *testing.T) {
		assert.False(t, IsNotFound(NewStorageError("write failed", nil)))
	})

	t.Run("plain error", func(t *testing.T) {
		assert.False(t, IsNotFound(errors.New("plain")))
	})

	t.Run("nil error", func(t *testing.T) {
		assert.False(t, IsNotFound(nil))
	})
}

func TestHint(t *testing.T) {
	t.Run("hint present", func(t *testing.T) {
		err := NewMissingInputError("data/raw.csv", "pass -sample to generate demo data")
		assert.Equal(t, "pass -sample to generate demo data", Hint(err))
	})

	t.Run("hint through wrapping", func(t *testing.T) {
		err := fmt.Errorf("analyzer: %w", NewMissingInputError("c.csv", "run the cleaner first"))
		assert.Equal(t, "run the cleaner first", Hint(err))
	})

	t.Run("no hint", func(t *testing.T) {
		assert.Equal(t, "", Hint(NewStorageError("x", nil)))
	})

	t.Run("plain error", func(t *testing.T) {
		assert.Equal(t, "", Hint(errors.New("plain")))
	})
}

func TestAppError_ErrorsIntegration(t *testing.T) {
	t.Run("errors.Is works with AppError", func(t *testing.T) {
		originalErr := fmt.Errorf("original error")
		appErr := NewParsingError("parse failed", originalErr)

		assert.True(t, errors.Is(appErr, originalErr))

		otherErr := fmt.Errorf("other error")
		assert.False(t, errors.Is(appErr, otherErr))
	})

	t.Run("errors.As works with AppError", func(t *testing.T) {
		originalErr := &AppError{
			Type:    ErrTypeRender,
			Message: "render failed",
		}
		wrappedErr := fmt.Errorf("wrapped: %w", originalErr)

		var appErr *AppError
		assert.True(t, errors.As(wrappedErr, &appErr))
		assert.Equal(t, ErrTypeRender, appErr.Type)
		assert.Equal(t, "render failed", appErr.Message)
	})

	t.Run("nested error unwrapping", func(t *testing.T) {
		rootErr := fmt.Errorf("root cause")
		inner := NewStorageError("write error", rootErr)
		outer := NewConfigError("startup error", inner)

		assert.True(t, errors.Is(outer, inner))
		assert.True(t, errors.Is(outer, rootErr))

		var storageErr *AppError
		assert.True(t, errors.As(outer, &storageErr))
		// As finds the outermost AppError first
		assert.Equal(t, ErrTypeConfig, storageErr.Type)
	})
}

func TestAppError_ContextChaining(t *testing.T) {
	appErr := NewParsingError("row rejected", nil)

	result := appErr.
		WithContext("row_number", 17).
		WithContext("column", "transaction_date").
		WithHint("check the source export format")

	assert.Same(t, appErr, result)
	assert.Equal(t, 17, result.Context["row_number"])
	assert.Equal(t, "transaction_date", result.Context["column"])
	assert.Equal(t, "check the source export format", result.Hint)
}
