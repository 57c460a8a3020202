package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapError(t *testing.T) {
	tests := []struct {
		name            string
		originalError   error
		message         string
		expectedMessage string
	}{
		{
			name:            "wrap simple error",
			originalError:   errors.New("original error"),
			message:         "wrapper message",
			expectedMessage: "wrapper message: original error",
		},
		{
			name:            "empty wrapper message",
			originalError:   errors.New("original error"),
			message:         "",
			expectedMessage: ": original error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrappedError := WrapError(tt.originalError, tt.message)
			require.Error(t, wrappedError)
			assert.Equal(t, tt.expectedMessage, wrappedError.Error())
			assert.ErrorIs(t, wrappedError, tt.originalError)
		})
	}
}

func TestWrapError_Nil(t *testing.T) {
	assert.NoError(t, WrapError(nil, "ignored"))
	assert.NoError(t, WrapErrorf(nil, "ignored %d", 1))
}

func TestWrapErrorf(t *testing.T) {
	err := WrapErrorf(ErrNotJSON, "entry %s", "a.json")

	assert.Equal(t, "entry a.json: body is not JSON", err.Error())
	assert.ErrorIs(t, err, ErrNotJSON)
}

func TestNewError(t *testing.T) {
	tests := []struct {
		name            string
		format          string
		args            []interface{}
		expectedMessage string
	}{
		{
			name:            "simple message",
			format:          "simple error message",
			args:            nil,
			expectedMessage: "simple error message",
		},
		{
			name:            "formatted message",
			format:          "error with value: %d",
			args:            []interface{}{42},
			expectedMessage: "error with value: 42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewError(tt.format, tt.args...)
			assert.Error(t, err)
			assert.Equal(t, tt.expectedMessage, err.Error())
		})
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("sort", "bogus", "unknown sort mode")

	assert.Equal(t, "validation failed for field 'sort': unknown sort mode (value: bogus)", err.Error())
	assert.ErrorIs(t, err, ErrInvalidInput)

	var target *ValidationError
	require.True(t, errors.As(WrapError(err, "parse"), &target))
	assert.Equal(t, "sort", target.Field)
}

func TestConfigurationError(t *testing.T) {
	tests := []struct {
		name     string
		err      *ConfigurationError
		expected string
	}{
		{
			name:     "section and field",
			err:      NewConfigurationError("log_config", "log_level", "bad level"),
			expected: "configuration error in section 'log_config', field 'log_level': bad level",
		},
		{
			name:     "section only",
			err:      NewConfigurationError("export_config", "", "missing"),
			expected: "configuration error in section 'export_config': missing",
		},
		{
			name:     "reason only",
			err:      NewConfigurationError("", "", "empty"),
			expected: "configuration error: empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
			assert.ErrorIs(t, tt.err, ErrInvalidConfiguration)
		})
	}
}

func TestArchiveError(t *testing.T) {
	withEntry := NewArchiveError("crawl.wacz", "archive/data.warc.gz", ErrMalformedContainer)
	assert.Equal(t, "archive 'crawl.wacz' entry 'archive/data.warc.gz': malformed container", withEntry.Error())
	assert.ErrorIs(t, withEntry, ErrMalformedContainer)

	withoutEntry := NewArchiveError("notes.txt", "", ErrUnsupportedFormat)
	assert.Equal(t, "archive 'notes.txt': unsupported archive format", withoutEntry.Error())
	assert.ErrorIs(t, withoutEntry, ErrUnsupportedFormat)
}

func TestRecoverToError(t *testing.T) {
	assert.NoError(t, RecoverToError(nil))

	err := RecoverToError("boom")
	assert.EqualError(t, err, "panic: boom")

	err = RecoverToError(ErrEntryTooLarge)
	assert.ErrorIs(t, err, ErrEntryTooLarge)
}
