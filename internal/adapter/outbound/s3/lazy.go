package s3

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/uniedit/storage-oss/internal/port/outbound"
)

// Factory builds the underlying storage on first use.
type Factory func(ctx context.Context) (outbound.ObjectStoragePort, error)

// LazyStorage defers client construction until the first operation and then
// shares one instance. A failed construction is retried on the next call.
type LazyStorage struct {
	mu      sync.Mutex
	factory Factory
	storage outbound.ObjectStoragePort
}

// NewLazyStorage creates a lazily initialized storage.
func NewLazyStorage(factory Factory) *LazyStorage {
	return &LazyStorage{factory: factory}
}

func (l *LazyStorage) get(ctx context.Context) (outbound.ObjectStoragePort, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.storage != nil {
		return l.storage, nil
	}

	s, err := l.factory(ctx)
	if err != nil {
		return nil, err
	}
	l.storage = s
	return s, nil
}

// Initialized reports whether the underlying storage has been built.
func (l *LazyStorage) Initialized() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.storage != nil
}

func (l *LazyStorage) Put(ctx context.Context, key string, data []byte, opts outbound.PutOptions) error {
	s, err := l.get(ctx)
	if err != nil {
		return err
	}
	return s.Put(ctx, key, data, opts)
}

func (l *LazyStorage) PutStream(ctx context.Context, key string, body io.Reader, size int64, opts outbound.PutOptions) error {
	s, err := l.get(ctx)
	if err != nil {
		return err
	}
	return s.PutStream(ctx, key, body, size, opts)
}

func (l *LazyStorage) MultipartUpload(ctx context.Context, key string, body io.Reader, opts outbound.MultipartOptions) error {
	s, err := l.get(ctx)
	if err != nil {
		return err
	}
	return s.MultipartUpload(ctx, key, body, opts)
}

func (l *LazyStorage) Get(ctx context.Context, key string) (*outbound.Object, error) {
	s, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, key)
}

func (l *LazyStorage) Delete(ctx context.Context, key string) error {
	s, err := l.get(ctx)
	if err != nil {
		return err
	}
	return s.Delete(ctx, key)
}

func (l *LazyStorage) SignPut(ctx context.Context, key string, ttl time.Duration) (string, error) {
	s, err := l.get(ctx)
	if err != nil {
		return "", err
	}
	return s.SignPut(ctx, key, ttl)
}

var _ outbound.ObjectStoragePort = (*LazyStorage)(nil)
