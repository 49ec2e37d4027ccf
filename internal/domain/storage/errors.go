package storage

import (
	"fmt"

	"github.com/uniedit/storage-oss/internal/port/outbound"
	apperrors "github.com/uniedit/storage-oss/internal/shared/errors"
)

var (
	// ErrCollectionNotConfigured is returned for collections without storage options.
	ErrCollectionNotConfigured = fmt.Errorf("collection not configured for object storage: %w", apperrors.ErrConfiguration)

	// ErrAccessDenied is returned when the access policy rejects a signed URL request.
	ErrAccessDenied = fmt.Errorf("signed url: %w", apperrors.ErrForbidden)

	// ErrInvalidInput is returned when a request is missing required fields.
	ErrInvalidInput = fmt.Errorf("invalid input: %w", apperrors.ErrBadRequest)

	// ErrObjectNotFound is returned when a requested object does not exist.
	ErrObjectNotFound = outbound.ErrObjectNotFound

	// ErrStorageTransport marks failures reported by the storage client.
	ErrStorageTransport = fmt.Errorf("object storage: %w", apperrors.ErrStorageTransport)
)
