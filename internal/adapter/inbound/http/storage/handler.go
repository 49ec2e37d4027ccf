package storagehttp

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/uniedit/storage-oss/internal/port/inbound"
	apperrors "github.com/uniedit/storage-oss/internal/shared/errors"
	"github.com/uniedit/storage-oss/internal/shared/response"
)

// SignedURLPath is the route that issues presigned upload URLs.
const SignedURLPath = "/storage-oss-generate-signed-url"

// Handler handles storage HTTP requests.
type Handler struct {
	domain inbound.StorageDomain
	logger *zap.Logger
}

// NewHandler creates a new storage handler.
func NewHandler(domain inbound.StorageDomain, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{domain: domain, logger: logger}
}

// RegisterSignedURLRoute registers the signed URL endpoint. extra runs
// before the handler, e.g. a rate limiter.
func (h *Handler) RegisterSignedURLRoute(r *gin.RouterGroup, extra ...gin.HandlerFunc) {
	handlers := make([]gin.HandlerFunc, 0, len(extra)+1)
	handlers = append(handlers, extra...)
	r.POST(SignedURLPath, append(handlers, h.GenerateSignedURL)...)
}

// RegisterStaticRoutes registers a file route for every configured collection.
func (h *Handler) RegisterStaticRoutes(r *gin.RouterGroup) {
	for _, collection := range h.domain.Collections() {
		r.GET("/"+collection+"/file/:filename", h.StaticHandler(collection))
	}
}

// signedURLError converts a domain error into its HTTP form. Returns nil for
// errors outside the application taxonomy.
func signedURLError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, apperrors.ErrBadRequest):
		return apperrors.BadRequest("filename is required")
	case errors.Is(err, apperrors.ErrConfiguration):
		return apperrors.Configuration("Collection is not configured for object storage")
	case errors.Is(err, apperrors.ErrForbidden):
		return apperrors.Forbidden("You are not allowed to perform this action")
	case errors.Is(err, apperrors.ErrStorageTransport):
		return apperrors.StorageTransport("Signing upload URL", err)
	default:
		return nil
	}
}

// GenerateSignedURL issues a presigned PUT URL for a client-side upload.
func (h *Handler) GenerateSignedURL(c *gin.Context) {
	if c.ContentType() != "application/json" {
		response.AppError(c, apperrors.ContentType(""))
		return
	}

	var input inbound.SignedURLInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.AppError(c, apperrors.ContentType(""))
		return
	}

	output, err := h.domain.IssueSignedURL(c.Request.Context(), &input)
	if err != nil {
		if appErr := signedURLError(err); appErr != nil {
			err = appErr
		}
		if apperrors.GetStatusCode(err) >= http.StatusInternalServerError {
			h.logger.Error("Signed URL request failed",
				zap.String("collection", input.CollectionSlug),
				zap.Error(err),
			)
		}
		if !response.HandleError(c, err) {
			response.InternalError(c)
		}
		return
	}

	c.JSON(http.StatusOK, output)
}

// StaticHandler returns the read proxy for a collection's files.
func (h *Handler) StaticHandler(collection string) gin.HandlerFunc {
	return func(c *gin.Context) {
		obj, err := h.domain.FetchObject(c.Request.Context(), &inbound.StaticFileInput{
			Collection: collection,
			Filename:   c.Param("filename"),
		})
		if err != nil {
			if apperrors.GetStatusCode(err) == http.StatusNotFound {
				c.Status(http.StatusNotFound)
				return
			}
			h.logger.Error("Static file read failed",
				zap.String("collection", collection),
				zap.String("filename", c.Param("filename")),
				zap.Error(err),
			)
			c.String(http.StatusInternalServerError, "Internal Server Error")
			return
		}
		defer obj.Body.Close()

		header := c.Writer.Header()
		for k, values := range obj.Header {
			header[k] = append([]string(nil), values...)
		}
		c.Status(http.StatusOK)

		if _, err := io.Copy(c.Writer, obj.Body); err != nil {
			h.logger.Warn("Static file stream interrupted",
				zap.String("collection", collection),
				zap.String("filename", c.Param("filename")),
				zap.Error(err),
			)
		}
	}
}
