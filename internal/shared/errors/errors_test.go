package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	t.Run("Error returns message", func(t *testing.T) {
		err := &AppError{Code: "TEST_ERROR", Message: "test error message"}
		assert.Equal(t, "test error message", err.Error())
	})

	t.Run("Error includes wrapped error", func(t *testing.T) {
		err := &AppError{Code: "TEST_ERROR", Message: "outer", Err: errors.New("inner")}
		assert.Equal(t, "outer: inner", err.Error())
	})

	t.Run("ToResponse keeps code and message", func(t *testing.T) {
		resp := Forbidden("").ToResponse()
		assert.Equal(t, "FORBIDDEN", resp.Error.Code)
		assert.Equal(t, "access denied", resp.Error.Message)
	})
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		code     string
		status   int
		sentinel error
	}{
		{"bad request", BadRequest("filename is required"), "BAD_REQUEST", http.StatusBadRequest, ErrBadRequest},
		{"forbidden", Forbidden("nope"), "FORBIDDEN", http.StatusForbidden, ErrForbidden},
		{"content type", ContentType(""), "CONTENT_TYPE_ERROR", http.StatusBadRequest, ErrBadRequest},
		{"configuration", Configuration("collection media not configured"), "CONFIGURATION_ERROR", http.StatusBadRequest, ErrConfiguration},
		{"rate limited", RateLimited(""), "RATE_LIMIT_EXCEEDED", http.StatusTooManyRequests, ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.StatusCode)
			assert.ErrorIs(t, tt.err, tt.sentinel)
		})
	}
}

func TestStorageTransport(t *testing.T) {
	cause := errors.New("connection reset")
	err := StorageTransport("presign put", cause)

	assert.Equal(t, "STORAGE_TRANSPORT_ERROR", err.Code)
	assert.Equal(t, http.StatusBadGateway, err.StatusCode)
	assert.ErrorIs(t, err, ErrStorageTransport)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "presign put failed")
}

func TestGetStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"app error", Forbidden(""), http.StatusForbidden},
		{"wrapped app error", fmt.Errorf("issue: %w", Configuration("x")), http.StatusBadRequest},
		{"not found sentinel", fmt.Errorf("get: %w", ErrNotFound), http.StatusNotFound},
		{"transport sentinel", fmt.Errorf("put: %w", ErrStorageTransport), http.StatusBadGateway},
		{"configuration sentinel", fmt.Errorf("sign: %w", ErrConfiguration), http.StatusBadRequest},
		{"forbidden sentinel", fmt.Errorf("sign: %w", ErrForbidden), http.StatusForbidden},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetStatusCode(tt.err))
		})
	}
}
