package outbound

import (
	"context"
	"time"

	"github.com/uniedit/storage-oss/internal/shared/requestctx"
)

// AccessRequest is evaluated by an AccessPolicyPort before a signed URL is issued.
type AccessRequest struct {
	CollectionSlug string
	Principal      *requestctx.Principal
}

// AccessPolicyPort decides whether a caller may upload directly to a collection.
type AccessPolicyPort interface {
	Check(ctx context.Context, req AccessRequest) (bool, error)
}

// TokenValidatorPort validates bearer tokens.
type TokenValidatorPort interface {
	ValidateToken(token string) (*requestctx.Principal, error)
}

// RateLimiterPort defines rate limiting operations.
type RateLimiterPort interface {
	// Allow reports whether one more request fits in the window for key.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	// GetRemaining returns how many requests are left in the window for key.
	GetRemaining(ctx context.Context, key string, limit int, window time.Duration) (int, error)
}

// PrefixRequest describes a static read whose key prefix must be resolved.
type PrefixRequest struct {
	Collection string
	Filename   string
}

// PrefixResolverPort resolves the key prefix of a stored file.
type PrefixResolverPort interface {
	ResolvePrefix(ctx context.Context, req PrefixRequest) (string, error)
}
