package middleware

import (
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/uniedit/storage-oss/internal/shared/logger"
	"github.com/uniedit/storage-oss/internal/shared/response"
)

// Recovery returns a middleware that recovers from panics.
// If log is nil, it will use a default logger.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.New(nil)
	}

	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error("Panic recovered",
					"error", err,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"client_ip", c.ClientIP(),
					"stack", string(debug.Stack()),
				)
				response.InternalError(c)
				c.Abort()
			}
		}()
		c.Next()
	}
}
