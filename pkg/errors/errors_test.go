package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorMessage(t *testing.T) {
	err := NewNotAuthorizedError("owner role required")
	assert.Equal(t, "NOT_AUTHORIZED: owner role required", err.Error())
	assert.Equal(t, http.StatusForbidden, err.HTTPStatus)
}

func TestAppErrorWithCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := NewUpstreamFailureError("meeting provider unavailable", cause)

	assert.Contains(t, err.Error(), "UPSTREAM_FAILURE")
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, cause, err.Unwrap())
	assert.Equal(t, http.StatusBadGateway, err.HTTPStatus)
}

func TestGetAppError(t *testing.T) {
	inner := NewConflictError("channel title already taken")
	wrapped := fmt.Errorf("create channel: %w", inner)

	got := GetAppError(wrapped)
	assert.NotNil(t, got)
	assert.Equal(t, ErrCodeConflict, got.Code)

	assert.Nil(t, GetAppError(nil))
	assert.Nil(t, GetAppError(fmt.Errorf("plain error")))
}

func TestConstructorStatusMapping(t *testing.T) {
	tests := []struct {
		err    *AppError
		code   ErrorCode
		status int
	}{
		{NewMalformedInputError("bad frame"), ErrCodeMalformedInput, http.StatusBadRequest},
		{NewNotFoundError("channel"), ErrCodeNotFound, http.StatusNotFound},
		{NewNotAuthenticatedError("no identity"), ErrCodeNotAuthenticated, http.StatusUnauthorized},
		{NewNotAuthorizedError("member role required"), ErrCodeNotAuthorized, http.StatusForbidden},
		{NewRateLimitError(), ErrCodeRateLimit, http.StatusTooManyRequests},
		{NewInternalError("boom"), ErrCodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.code, tt.err.Code)
		assert.Equal(t, tt.status, tt.err.HTTPStatus)
	}
}
