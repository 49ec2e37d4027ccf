package outbound

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/uniedit/storage-oss/internal/shared/errors"
)

// ErrObjectNotFound is returned by Get when the key does not exist.
var ErrObjectNotFound = fmt.Errorf("object %w", apperrors.ErrNotFound)

// PutOptions holds options for single-request uploads.
type PutOptions struct {
	MimeType string
}

// MultipartOptions holds options for multipart uploads.
type MultipartOptions struct {
	MimeType    string
	Parallelism int
	PartSize    int64
}

// Object is the content of a stored object together with the response
// headers reported by the storage backend.
type Object struct {
	Body   io.ReadCloser
	Header http.Header
	Size   int64
}

// ObjectStoragePort defines the object storage capabilities used by the adapter.
type ObjectStoragePort interface {
	// Put uploads an in-memory payload in a single request.
	Put(ctx context.Context, key string, data []byte, opts PutOptions) error

	// PutStream uploads a stream of known size in a single request.
	PutStream(ctx context.Context, key string, body io.Reader, size int64, opts PutOptions) error

	// MultipartUpload uploads body in parts. Abort on failure is the client's job.
	MultipartUpload(ctx context.Context, key string, body io.Reader, opts MultipartOptions) error

	// Get retrieves an object. Returns ErrObjectNotFound when absent.
	Get(ctx context.Context, key string) (*Object, error)

	// Delete removes an object.
	Delete(ctx context.Context, key string) error

	// SignPut returns a time-limited URL that allows a single PUT of key.
	SignPut(ctx context.Context, key string, ttl time.Duration) (string, error)
}
