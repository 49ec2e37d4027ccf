package storage

import (
	"context"

	"github.com/uniedit/storage-oss/internal/port/outbound"
)

// AuthenticatedPolicy allows any request that carries a principal.
type AuthenticatedPolicy struct{}

// Check implements outbound.AccessPolicyPort.
func (AuthenticatedPolicy) Check(_ context.Context, req outbound.AccessRequest) (bool, error) {
	return req.Principal != nil, nil
}

// AccessPolicyFunc adapts a function to outbound.AccessPolicyPort.
type AccessPolicyFunc func(ctx context.Context, req outbound.AccessRequest) (bool, error)

// Check implements outbound.AccessPolicyPort.
func (f AccessPolicyFunc) Check(ctx context.Context, req outbound.AccessRequest) (bool, error) {
	return f(ctx, req)
}

// ConfiguredPrefixResolver resolves the prefix of a static read to the
// collection's configured prefix. Hosts that store a prefix per document
// supply their own PrefixResolverPort.
type ConfiguredPrefixResolver struct {
	Prefixes map[string]string
}

// ResolvePrefix implements outbound.PrefixResolverPort.
func (r ConfiguredPrefixResolver) ResolvePrefix(_ context.Context, req outbound.PrefixRequest) (string, error) {
	return r.Prefixes[req.Collection], nil
}

var (
	_ outbound.AccessPolicyPort   = AuthenticatedPolicy{}
	_ outbound.AccessPolicyPort   = AccessPolicyFunc(nil)
	_ outbound.PrefixResolverPort = ConfiguredPrefixResolver{}
)
