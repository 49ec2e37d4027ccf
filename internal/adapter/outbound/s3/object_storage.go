package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/uniedit/storage-oss/internal/port/outbound"
	"github.com/uniedit/storage-oss/internal/shared/metrics"
)

// API is the subset of the S3 client used by ObjectStorage.
type API interface {
	manager.UploadAPIClient

	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Presigner signs requests for later use by a client.
type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// ObjectStorage implements ObjectStoragePort on top of the S3 API.
type ObjectStorage struct {
	api       API
	presigner Presigner
	bucket    string
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewObjectStorage creates an object storage adapter for bucket.
func NewObjectStorage(client *s3.Client, bucket string, m *metrics.Metrics, logger *zap.Logger) *ObjectStorage {
	return newObjectStorage(client, s3.NewPresignClient(client), bucket, m, logger)
}

func newObjectStorage(api API, presigner Presigner, bucket string, m *metrics.Metrics, logger *zap.Logger) *ObjectStorage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ObjectStorage{
		api:       api,
		presigner: presigner,
		bucket:    bucket,
		metrics:   m,
		logger:    logger,
	}
}

// Put uploads data in a single PutObject request.
func (s *ObjectStorage) Put(ctx context.Context, key string, data []byte, opts outbound.PutOptions) error {
	start := time.Now()

	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   contentType(opts.MimeType),
	})
	s.observe("put", start, err)
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}

	s.recordBytes("single", int64(len(data)))
	return nil
}

// PutStream uploads body in a single PutObject request.
func (s *ObjectStorage) PutStream(ctx context.Context, key string, body io.Reader, size int64, opts outbound.PutOptions) error {
	start := time.Now()

	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   contentType(opts.MimeType),
	})
	s.observe("put_stream", start, err)
	if err != nil {
		return fmt.Errorf("put object stream: %w", err)
	}

	s.recordBytes("single", size)
	return nil
}

// MultipartUpload uploads body through the SDK upload manager, which splits
// it into parts and aborts the upload when a part fails.
func (s *ObjectStorage) MultipartUpload(ctx context.Context, key string, body io.Reader, opts outbound.MultipartOptions) error {
	start := time.Now()

	uploader := manager.NewUploader(s.api, func(u *manager.Uploader) {
		if opts.Parallelism > 0 {
			u.Concurrency = opts.Parallelism
		}
		if opts.PartSize >= manager.MinUploadPartSize {
			u.PartSize = opts.PartSize
		}
		u.LeavePartsOnError = false
	})

	counter := &countingReader{r: body}
	_, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        counter,
		ContentType: contentType(opts.MimeType),
	})
	s.observe("multipart_upload", start, err)
	if err != nil {
		return fmt.Errorf("multipart upload: %w", err)
	}

	s.recordBytes("multipart", counter.n)
	return nil
}

// Get retrieves an object with the headers reported by the backend.
func (s *ObjectStorage) Get(ctx context.Context, key string) (*outbound.Object, error) {
	start := time.Now()

	result, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		var nf *types.NotFound
		if errors.As(err, &nsk) || errors.As(err, &nf) {
			s.record("get", "not_found", start)
			return nil, outbound.ErrObjectNotFound
		}
		s.observe("get", start, err)
		return nil, fmt.Errorf("get object: %w", err)
	}
	s.observe("get", start, nil)

	size := int64(0)
	if result.ContentLength != nil {
		size = *result.ContentLength
	}

	return &outbound.Object{
		Body:   result.Body,
		Header: objectHeader(result),
		Size:   size,
	}, nil
}

// Delete removes an object.
func (s *ObjectStorage) Delete(ctx context.Context, key string) error {
	start := time.Now()

	_, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	s.observe("delete", start, err)
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}

	return nil
}

// SignPut returns a SigV4 presigned PUT URL valid for ttl.
func (s *ObjectStorage) SignPut(ctx context.Context, key string, ttl time.Duration) (string, error) {
	start := time.Now()

	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(o *s3.PresignOptions) {
		o.Expires = ttl
	})
	s.observe("sign_put", start, err)
	if err != nil {
		return "", fmt.Errorf("presign put: %w", err)
	}

	return req.URL, nil
}

func (s *ObjectStorage) observe(op string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		s.logger.Warn("Storage operation failed",
			zap.String("operation", op),
			zap.String("bucket", s.bucket),
			zap.Error(err),
		)
	}
	s.record(op, status, start)
}

func (s *ObjectStorage) record(op, status string, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordStorageOperation(op, status, time.Since(start))
	}
}

func (s *ObjectStorage) recordBytes(mode string, n int64) {
	if s.metrics != nil {
		s.metrics.RecordUploadBytes(mode, n)
	}
}

func contentType(mime string) *string {
	if mime == "" {
		return nil
	}
	return aws.String(mime)
}

// objectHeader maps the typed GetObject output back to HTTP response headers.
func objectHeader(out *s3.GetObjectOutput) http.Header {
	h := http.Header{}
	set := func(name string, v *string) {
		if v != nil && *v != "" {
			h.Set(name, *v)
		}
	}

	set("Content-Type", out.ContentType)
	set("Cache-Control", out.CacheControl)
	set("Content-Disposition", out.ContentDisposition)
	set("Content-Encoding", out.ContentEncoding)
	set("Content-Language", out.ContentLanguage)
	set("Content-Range", out.ContentRange)
	set("ETag", out.ETag)
	set("Accept-Ranges", out.AcceptRanges)
	set("Expires", out.ExpiresString)

	if out.ContentLength != nil {
		h.Set("Content-Length", strconv.FormatInt(*out.ContentLength, 10))
	}
	if out.LastModified != nil {
		h.Set("Last-Modified", out.LastModified.UTC().Format(http.TimeFormat))
	}
	for k, v := range out.Metadata {
		h.Set("x-amz-meta-"+k, v)
	}

	return h
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// Compile-time check
var _ outbound.ObjectStoragePort = (*ObjectStorage)(nil)
