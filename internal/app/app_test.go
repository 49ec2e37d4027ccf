package app

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/uniedit/storage-oss/internal/domain/storage"
	"github.com/uniedit/storage-oss/internal/port/outbound"
	"github.com/uniedit/storage-oss/internal/shared/config"
)

// memoryStorage is an in-memory object store.
type memoryStorage struct {
	objects map[string][]byte
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}}
}

func (m *memoryStorage) Put(_ context.Context, key string, data []byte, _ outbound.PutOptions) error {
	m.objects[key] = append([]byte(nil), data...)
	return nil
}

func (m *memoryStorage) PutStream(_ context.Context, key string, body io.Reader, _ int64, _ outbound.PutOptions) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.objects[key] = data
	return nil
}

func (m *memoryStorage) MultipartUpload(ctx context.Context, key string, body io.Reader, _ outbound.MultipartOptions) error {
	return m.PutStream(ctx, key, body, -1, outbound.PutOptions{})
}

func (m *memoryStorage) Get(_ context.Context, key string) (*outbound.Object, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, outbound.ErrObjectNotFound
	}
	return &outbound.Object{
		Body:   io.NopCloser(strings.NewReader(string(data))),
		Header: http.Header{"Content-Type": {"text/plain"}},
		Size:   int64(len(data)),
	}, nil
}

func (m *memoryStorage) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memoryStorage) SignPut(_ context.Context, key string, ttl time.Duration) (string, error) {
	return "https://assets.example.com/" + key + "?expires=" + ttl.String(), nil
}

func testConfig() *config.Config {
	return &config.Config{
		Storage: config.StorageConfig{
			Enabled: true,
			Bucket:  "assets",
			Region:  "oss-cn-hangzhou",
			Secure:  true,
			ClientUploads: config.ClientUploadsConfig{
				Enabled: true,
			},
			Collections: map[string]config.CollectionConfig{
				"media": {Prefix: "uploads"},
			},
		},
		Auth: config.AuthConfig{JWTSecret: "secret"},
		Log:  config.LogConfig{Level: "error", Format: "json"},
	}
}

func newTestApp(t *testing.T, cfg *config.Config, store outbound.ObjectStoragePort) *App {
	t.Helper()
	app, err := New(cfg, WithObjectStorage(store), WithZapLogger(zap.NewNop()))
	require.NoError(t, err)
	t.Cleanup(app.Stop)
	return app
}

func bearer(t *testing.T) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": uuid.NewString(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	return "Bearer " + token
}

func signedURLRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/storage-oss-generate-signed-url", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestApp_SignedURL(t *testing.T) {
	app := newTestApp(t, testConfig(), newMemoryStorage())

	t.Run("anonymous caller is forbidden", func(t *testing.T) {
		w := httptest.NewRecorder()
		app.Router().ServeHTTP(w, signedURLRequest(`{"collectionSlug":"media","filename":"a.png"}`))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("authenticated caller gets a url", func(t *testing.T) {
		req := signedURLRequest(`{"collectionSlug":"media","filename":"a.png","mimeType":"image/png"}`)
		req.Header.Set("Authorization", bearer(t))
		w := httptest.NewRecorder()
		app.Router().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"url":"https://assets.example.com/uploads/a.png?expires=1h0m0s"}`, w.Body.String())
	})

	t.Run("unknown collection is a configuration error", func(t *testing.T) {
		req := signedURLRequest(`{"collectionSlug":"docs","filename":"a.png"}`)
		req.Header.Set("Authorization", bearer(t))
		w := httptest.NewRecorder()
		app.Router().ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "CONFIGURATION_ERROR")
	})
}

func TestApp_SignedURLRouteRequiresClientUploads(t *testing.T) {
	cfg := testConfig()
	cfg.Storage.ClientUploads.Enabled = false
	app := newTestApp(t, cfg, newMemoryStorage())

	req := signedURLRequest(`{"collectionSlug":"media","filename":"a.png"}`)
	req.Header.Set("Authorization", bearer(t))
	w := httptest.NewRecorder()
	app.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestApp_StaticRoutes(t *testing.T) {
	store := newMemoryStorage()
	store.objects["uploads/a.txt"] = []byte("hello")
	store.objects["backups/db.sql"] = []byte("SECRET")
	app := newTestApp(t, testConfig(), store)

	tests := []struct {
		path       string
		wantStatus int
		wantBody   string
	}{
		{"/api/media/file/a.txt", http.StatusOK, "hello"},
		{"/api/media/file/a.txt?prefix=backups", http.StatusOK, "hello"},
		{"/api/media/file/db.sql?prefix=backups", http.StatusNotFound, ""},
		{"/api/media/file/missing.txt", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			app.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestApp_StorageDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Storage.Enabled = false
	store := newMemoryStorage()
	store.objects["uploads/a.txt"] = []byte("hello")
	app := newTestApp(t, cfg, store)

	assert.Nil(t, app.StorageDomain())

	w := httptest.NewRecorder()
	app.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/media/file/a.txt", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestApp_UploadThroughAdapter(t *testing.T) {
	store := newMemoryStorage()
	app := newTestApp(t, testConfig(), store)

	adapter, err := app.StorageDomain().Adapter("media")
	require.NoError(t, err)

	require.NoError(t, adapter.HandleUpload(context.Background(), &storage.File{Filename: "a.txt", Buffer: []byte("hi")}, nil))
	assert.Equal(t, []byte("hi"), store.objects["uploads/a.txt"])
}

func TestApp_HealthAndMetrics(t *testing.T) {
	app := newTestApp(t, testConfig(), newMemoryStorage())

	w := httptest.NewRecorder()
	app.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	app.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "storage_oss_http_requests_total")
}
