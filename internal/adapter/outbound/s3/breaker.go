package s3

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/uniedit/storage-oss/internal/port/outbound"
)

// BreakerConfig configures the circuit breaker around the storage backend.
type BreakerConfig struct {
	Name             string
	FailureThreshold uint32
	Timeout          time.Duration
}

// BreakerStorage rejects calls while the backend is failing.
type BreakerStorage struct {
	next    outbound.ObjectStoragePort
	breaker *gobreaker.CircuitBreaker[any]
}

// NewBreakerStorage wraps next with a circuit breaker.
func NewBreakerStorage(next outbound.ObjectStoragePort, cfg BreakerConfig, logger *zap.Logger) *BreakerStorage {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Name == "" {
		cfg.Name = "object-storage"
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, outbound.ErrObjectNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Storage circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &BreakerStorage{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker[any](settings),
	}
}

// State returns the current breaker state.
func (b *BreakerStorage) State() gobreaker.State {
	return b.breaker.State()
}

func (b *BreakerStorage) run(fn func() error) error {
	_, err := b.breaker.Execute(func() (any, error) {
		return nil, fn()
	})
	return err
}

func (b *BreakerStorage) Put(ctx context.Context, key string, data []byte, opts outbound.PutOptions) error {
	return b.run(func() error { return b.next.Put(ctx, key, data, opts) })
}

func (b *BreakerStorage) PutStream(ctx context.Context, key string, body io.Reader, size int64, opts outbound.PutOptions) error {
	return b.run(func() error { return b.next.PutStream(ctx, key, body, size, opts) })
}

func (b *BreakerStorage) MultipartUpload(ctx context.Context, key string, body io.Reader, opts outbound.MultipartOptions) error {
	return b.run(func() error { return b.next.MultipartUpload(ctx, key, body, opts) })
}

func (b *BreakerStorage) Get(ctx context.Context, key string) (*outbound.Object, error) {
	var obj *outbound.Object
	err := b.run(func() error {
		var err error
		obj, err = b.next.Get(ctx, key)
		return err
	})
	return obj, err
}

func (b *BreakerStorage) Delete(ctx context.Context, key string) error {
	return b.run(func() error { return b.next.Delete(ctx, key) })
}

func (b *BreakerStorage) SignPut(ctx context.Context, key string, ttl time.Duration) (string, error) {
	var url string
	err := b.run(func() error {
		var err error
		url, err = b.next.SignPut(ctx, key, ttl)
		return err
	})
	return url, err
}

var _ outbound.ObjectStoragePort = (*BreakerStorage)(nil)
