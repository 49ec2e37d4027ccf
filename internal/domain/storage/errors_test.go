package storage

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/uniedit/storage-oss/internal/shared/errors"
)

func TestErrors_StatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", ErrInvalidInput, http.StatusBadRequest},
		{"collection not configured", fmt.Errorf("%w: docs", ErrCollectionNotConfigured), http.StatusBadRequest},
		{"access denied", ErrAccessDenied, http.StatusForbidden},
		{"object not found", ErrObjectNotFound, http.StatusNotFound},
		{"transport", fmt.Errorf("%w: get a.png: %w", ErrStorageTransport, errors.New("timeout")), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperrors.GetStatusCode(tt.err))
		})
	}
}
