package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeValidation, "denial text too short")
	require.NotNil(t, err)
	assert.Equal(t, ErrCodeValidation, err.Code)
	assert.Contains(t, err.Error(), "COMMON_010")
	assert.Contains(t, err.Error(), "denial text too short")
	assert.NotEmpty(t, err.Stack)
}

func TestErrorFormat(t *testing.T) {
	err := New(ErrCodeAppealNotFound, "appeal not found")
	assert.Equal(t, "[APL_001] appeal not found", err.Error())

	withDetail := err.WithDetail("id=abc-123")
	assert.Equal(t, "[APL_001] appeal not found: id=abc-123", withDetail.Error())
	// Original is not mutated.
	assert.Empty(t, err.Detail)
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(cause, ErrCodeDatabaseError, "failed to load appeal")
	require.NotNil(t, err)
	assert.Equal(t, ErrCodeDatabaseError, err.Code)
	assert.True(t, errors.Is(err, cause))
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "should be nil"))
}

func TestWrapPreservesCodeForUnknown(t *testing.T) {
	inner := New(ErrCodeConversionFailed, "ocr down")
	outer := Wrap(inner, ErrCodeUnknown, "upload failed")
	assert.Equal(t, ErrCodeConversionFailed, outer.Code)
}

func TestIsCode(t *testing.T) {
	inner := New(ErrCodeGenerationTimeout, "llm timed out")
	outer := Wrap(inner, ErrCodeInternal, "compose failed")
	assert.True(t, IsCode(outer, ErrCodeGenerationTimeout))
	assert.True(t, IsCode(outer, ErrCodeInternal))
	assert.False(t, IsCode(outer, ErrCodeCacheError))
	assert.False(t, IsCode(nil, ErrCodeInternal))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(New(ErrCodeAppealNotFound, "gone")))
	assert.True(t, IsNotFound(New(ErrCodePayerNotFound, "gone")))
	assert.True(t, IsNotFound(NotFound("gone")))
	assert.False(t, IsNotFound(New(ErrCodeInternal, "boom")))
	assert.False(t, IsNotFound(nil))
}

func TestIsValidation(t *testing.T) {
	assert.True(t, IsValidation(Validation("too short")))
	assert.True(t, IsValidation(InvalidParam("bad field")))
	assert.False(t, IsValidation(Internal("boom")))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, CodeOK, GetCode(nil))
	assert.Equal(t, ErrCodeUnknown, GetCode(fmt.Errorf("plain error")))
	assert.Equal(t, ErrCodeTimeout, GetCode(Timeout("slow")))
}

func TestHTTPStatusForCode(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeAppealNotFound, http.StatusNotFound},
		{ErrCodeConversionFailed, http.StatusBadGateway},
		{ErrCodeConversionTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeGenerationTimeout, http.StatusGatewayTimeout},
		{ErrorCode("NO_SUCH_CODE"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatusForCode(tt.code), "code %s", tt.code)
	}
}

func TestClientServerClassification(t *testing.T) {
	assert.True(t, IsClientError(ErrCodeValidation))
	assert.False(t, IsServerError(ErrCodeValidation))
	assert.True(t, IsServerError(ErrCodeDatabaseError))
	assert.False(t, IsClientError(ErrCodeDatabaseError))
}

func TestModuleForCode(t *testing.T) {
	assert.Equal(t, "APL", ModuleForCode(ErrCodeAppealNotFound))
	assert.Equal(t, "CNV", ModuleForCode(ErrCodeConversionFailed))
	assert.Equal(t, "COMMON", ModuleForCode(ErrCodeInternal))
}

func TestEveryCodeHasStatusAndMessage(t *testing.T) {
	for code := range ErrorCodeHTTPStatus {
		_, ok := ErrorCodeMessage[code]
		assert.True(t, ok, "code %s has status but no default message", code)
	}
	for code := range ErrorCodeMessage {
		_, ok := ErrorCodeHTTPStatus[code]
		assert.True(t, ok, "code %s has message but no HTTP status", code)
	}
}
