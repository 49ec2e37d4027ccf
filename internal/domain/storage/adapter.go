package storage

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// AdapterName identifies this storage adapter to the upload pipeline.
const AdapterName = "oss"

// File is an incoming upload handed over by the document lifecycle.
type File struct {
	Filename     string
	MimeType     string
	Size         int64
	Buffer       []byte
	TempFilePath string
}

// UploadData carries document fields that affect the key.
type UploadData struct {
	// Prefix overrides the collection prefix when set.
	Prefix string
}

// DeleteRequest identifies a stored file by the prefix recorded on its document.
type DeleteRequest struct {
	Prefix   string
	Filename string
}

// Adapter is the per-collection storage adapter.
type Adapter struct {
	collection string
	prefix     string
	domain     *Domain
}

// Name returns the adapter name.
func (a *Adapter) Name() string { return AdapterName }

// Collection returns the collection slug served by the adapter.
func (a *Adapter) Collection() string { return a.collection }

// Prefix returns the collection's configured key prefix.
func (a *Adapter) Prefix() string { return a.prefix }

// GenerateURL returns the display URL of a stored file.
func (a *Adapter) GenerateURL(filename, prefix string) string {
	cfg := a.domain.config
	return GenerateURL(URLParams{
		ACL:          cfg.ACL,
		CustomDomain: cfg.CustomDomain,
		Endpoint:     cfg.Endpoint,
		Region:       cfg.Region,
		Bucket:       cfg.Bucket,
		Secure:       cfg.Secure,
		Prefix:       prefix,
		Filename:     filename,
	})
}

// HandleUpload stores file under the document prefix, or the collection
// prefix when the document has none.
func (a *Adapter) HandleUpload(ctx context.Context, file *File, data *UploadData) error {
	if file == nil || file.Filename == "" {
		return ErrInvalidInput
	}

	prefix := a.prefix
	if data != nil && data.Prefix != "" {
		prefix = data.Prefix
	}

	size := file.Size
	if size == 0 {
		size = int64(len(file.Buffer))
	}

	return a.domain.dispatcher.Dispatch(ctx, &UploadRequest{
		Key:          JoinKey(prefix, file.Filename),
		Size:         size,
		Buffer:       file.Buffer,
		TempFilePath: file.TempFilePath,
		MimeType:     file.MimeType,
	})
}

// HandleDelete removes the stored file. Only the document prefix is used.
func (a *Adapter) HandleDelete(ctx context.Context, req *DeleteRequest) error {
	if req == nil || req.Filename == "" {
		return ErrInvalidInput
	}

	key := JoinKey(req.Prefix, req.Filename)
	if err := a.domain.client.Delete(ctx, key); err != nil {
		return fmt.Errorf("%w: delete %s: %w", ErrStorageTransport, key, err)
	}

	a.domain.logger.Debug("Object deleted",
		zap.String("collection", a.collection),
		zap.String("key", key),
	)
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrObjectNotFound)
}
