package inbound

import (
	"context"

	"github.com/uniedit/storage-oss/internal/port/outbound"
)

// SignedURLInput is the body of a signed URL request.
type SignedURLInput struct {
	CollectionSlug string `json:"collectionSlug"`
	Filename       string `json:"filename"`
	MimeType       string `json:"mimeType"`
}

// SignedURLOutput is returned to clients that upload directly to storage.
type SignedURLOutput struct {
	URL string `json:"url"`
}

// StaticFileInput identifies a file served through the static read proxy.
type StaticFileInput struct {
	Collection string
	Filename   string
}

// StorageDomain is the surface used by the HTTP adapters.
type StorageDomain interface {
	// IssueSignedURL returns a presigned PUT URL for a collection file.
	IssueSignedURL(ctx context.Context, in *SignedURLInput) (*SignedURLOutput, error)

	// FetchObject reads a collection file from storage.
	FetchObject(ctx context.Context, in *StaticFileInput) (*outbound.Object, error)

	// Collections returns the slugs of all configured collections.
	Collections() []string
}
