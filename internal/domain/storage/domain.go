package storage

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/uniedit/storage-oss/internal/port/inbound"
	"github.com/uniedit/storage-oss/internal/port/outbound"
	"github.com/uniedit/storage-oss/internal/shared/requestctx"
)

// SignedURLExpiry is the validity window of presigned upload URLs.
const SignedURLExpiry = 3600 * time.Second

// Config holds the storage options shared by all collection adapters.
type Config struct {
	ACL          string
	CustomDomain string
	Endpoint     string
	Region       string
	Bucket       string
	Secure       bool
	// Collections maps a collection slug to its key prefix.
	Collections map[string]string
}

// Domain implements the storage adapter logic on top of an object storage client.
type Domain struct {
	client     outbound.ObjectStoragePort
	access     outbound.AccessPolicyPort
	resolver   outbound.PrefixResolverPort
	dispatcher *Dispatcher
	config     *Config
	logger     *zap.Logger
}

// NewDomain creates a new storage domain. A nil access policy allows
// authenticated principals only; a nil resolver uses the configured prefixes.
func NewDomain(
	client outbound.ObjectStoragePort,
	access outbound.AccessPolicyPort,
	resolver outbound.PrefixResolverPort,
	config *Config,
	logger *zap.Logger,
) *Domain {
	if config == nil {
		config = &Config{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if access == nil {
		access = AuthenticatedPolicy{}
	}
	if resolver == nil {
		resolver = ConfiguredPrefixResolver{Prefixes: config.Collections}
	}
	return &Domain{
		client:     client,
		access:     access,
		resolver:   resolver,
		dispatcher: NewDispatcher(client, logger),
		config:     config,
		logger:     logger,
	}
}

// Collections returns the configured collection slugs in sorted order.
func (d *Domain) Collections() []string {
	slugs := make([]string, 0, len(d.config.Collections))
	for slug := range d.config.Collections {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

// Adapter returns the storage adapter of a configured collection.
func (d *Domain) Adapter(collection string) (*Adapter, error) {
	prefix, ok := d.config.Collections[collection]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotConfigured, collection)
	}
	return &Adapter{collection: collection, prefix: prefix, domain: d}, nil
}

// IssueSignedURL validates the request against the collection configuration
// and the access policy, then presigns a PUT for the computed key.
func (d *Domain) IssueSignedURL(ctx context.Context, in *inbound.SignedURLInput) (*inbound.SignedURLOutput, error) {
	if in == nil || in.Filename == "" {
		return nil, ErrInvalidInput
	}

	prefix, ok := d.config.Collections[in.CollectionSlug]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotConfigured, in.CollectionSlug)
	}

	allowed, err := d.access.Check(ctx, outbound.AccessRequest{
		CollectionSlug: in.CollectionSlug,
		Principal:      requestctx.PrincipalFrom(ctx),
	})
	if err != nil {
		return nil, fmt.Errorf("check access: %w", err)
	}
	if !allowed {
		return nil, ErrAccessDenied
	}

	key := JoinKey(prefix, in.Filename)

	url, err := d.client.SignPut(ctx, key, SignedURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("%w: sign put %s: %w", ErrStorageTransport, key, err)
	}

	d.logger.Info("Signed upload URL issued",
		zap.String("collection", in.CollectionSlug),
		zap.String("key", key),
		zap.String("mime_type", in.MimeType),
		zap.String("request_id", requestctx.RequestID(ctx)),
	)

	return &inbound.SignedURLOutput{URL: url}, nil
}

// FetchObject reads a collection file after resolving its prefix.
func (d *Domain) FetchObject(ctx context.Context, in *inbound.StaticFileInput) (*outbound.Object, error) {
	if in == nil || in.Filename == "" {
		return nil, ErrInvalidInput
	}
	if _, ok := d.config.Collections[in.Collection]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotConfigured, in.Collection)
	}

	prefix, err := d.resolver.ResolvePrefix(ctx, outbound.PrefixRequest{
		Collection: in.Collection,
		Filename:   in.Filename,
	})
	if err != nil {
		return nil, fmt.Errorf("resolve prefix: %w", err)
	}

	key := JoinKey(prefix, in.Filename)

	obj, err := d.client.Get(ctx, key)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("%w: get %s: %w", ErrStorageTransport, key, err)
	}
	if obj == nil || obj.Body == nil {
		return nil, ErrObjectNotFound
	}

	return obj, nil
}

var _ inbound.StorageDomain = (*Domain)(nil)
