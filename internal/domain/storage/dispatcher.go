package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/uniedit/storage-oss/internal/port/outbound"
)

const (
	// MultipartThreshold is the exclusive upper bound for single-request
	// uploads and the part size of multipart uploads.
	MultipartThreshold int64 = 50 * 1024 * 1024

	// MultipartParallelism is the number of parts uploaded concurrently.
	MultipartParallelism = 4
)

// UploadMode is the strategy chosen for an upload.
type UploadMode string

const (
	UploadModeSingle    UploadMode = "single"
	UploadModeMultipart UploadMode = "multipart"
)

// UploadRequest is a single file upload. Exactly one of Buffer and
// TempFilePath is authoritative; the temp file wins when both are set.
// A zero Size with a temp file means the size is read from the file.
type UploadRequest struct {
	Key          string
	Size         int64
	Buffer       []byte
	TempFilePath string
	MimeType     string
}

// ChooseUploadMode routes payloads in (0, MultipartThreshold) to a single put
// and everything else, zero-byte payloads included, to multipart.
func ChooseUploadMode(size int64) UploadMode {
	if size > 0 && size < MultipartThreshold {
		return UploadModeSingle
	}
	return UploadModeMultipart
}

// Dispatcher uploads files with a single put or a multipart upload.
type Dispatcher struct {
	client outbound.ObjectStoragePort
	logger *zap.Logger
}

// NewDispatcher creates a new upload dispatcher.
func NewDispatcher(client outbound.ObjectStoragePort, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{client: client, logger: logger}
}

// Dispatch performs exactly one storage call for req. Storage errors are
// returned without retry. The temp file is closed but never removed.
func (d *Dispatcher) Dispatch(ctx context.Context, req *UploadRequest) error {
	if req == nil || req.Key == "" {
		return ErrInvalidInput
	}

	var (
		stream io.Reader
		file   *os.File
		size   = req.Size
	)
	if req.TempFilePath != "" {
		f, err := os.Open(req.TempFilePath)
		if err != nil {
			return fmt.Errorf("open temp file: %w", err)
		}
		defer f.Close()
		file = f
		stream = f

		// An unknown size is taken from the file itself.
		if size == 0 {
			info, err := f.Stat()
			if err != nil {
				return fmt.Errorf("stat temp file: %w", err)
			}
			size = info.Size()
		}
	}

	mode := ChooseUploadMode(size)
	d.logger.Debug("Dispatching upload",
		zap.String("key", req.Key),
		zap.Int64("size", size),
		zap.String("mode", string(mode)),
		zap.Bool("stream", file != nil),
	)

	var err error
	switch {
	case mode == UploadModeSingle && file != nil:
		err = d.client.PutStream(ctx, req.Key, stream, size, outbound.PutOptions{MimeType: req.MimeType})
	case mode == UploadModeSingle:
		err = d.client.Put(ctx, req.Key, req.Buffer, outbound.PutOptions{MimeType: req.MimeType})
	default:
		if stream == nil {
			stream = bytes.NewReader(req.Buffer)
		}
		err = d.client.MultipartUpload(ctx, req.Key, stream, outbound.MultipartOptions{
			MimeType:    req.MimeType,
			Parallelism: MultipartParallelism,
			PartSize:    MultipartThreshold,
		})
	}
	if err != nil {
		return fmt.Errorf("%w: %s upload %s: %w", ErrStorageTransport, mode, req.Key, err)
	}

	return nil
}
