package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/uniedit/storage-oss/internal/port/outbound"
	apperrors "github.com/uniedit/storage-oss/internal/shared/errors"
	"github.com/uniedit/storage-oss/internal/shared/logger"
	"github.com/uniedit/storage-oss/internal/shared/requestctx"
	"github.com/uniedit/storage-oss/internal/shared/response"
)

const (
	RateLimitRemaining = "X-RateLimit-Remaining"
	RateLimitLimit     = "X-RateLimit-Limit"
	RetryAfter         = "Retry-After"
)

// RateLimitConfig holds rate limit configuration.
type RateLimitConfig struct {
	Limit  int
	Window time.Duration
	// KeyFunc generates the rate limit key. Defaults to PrincipalOrIP.
	KeyFunc func(*gin.Context) string
	Logger  *logger.Logger
}

// RateLimit returns a middleware that limits requests using the given limiter.
// Limiter failures let the request through.
func RateLimit(limiter outbound.RateLimiterPort, cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = PrincipalOrIP
	}

	return func(c *gin.Context) {
		if limiter == nil || cfg.Limit <= 0 {
			c.Next()
			return
		}

		key := cfg.KeyFunc(c)
		ctx := c.Request.Context()

		allowed, err := limiter.Allow(ctx, key, cfg.Limit, cfg.Window)
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Warn("Rate limiter unavailable", "key", key, "error", err)
			}
			c.Next()
			return
		}

		remaining, _ := limiter.GetRemaining(ctx, key, cfg.Limit, cfg.Window)
		c.Header(RateLimitLimit, strconv.Itoa(cfg.Limit))
		c.Header(RateLimitRemaining, strconv.Itoa(remaining))

		if !allowed {
			c.Header(RetryAfter, strconv.Itoa(int(cfg.Window.Seconds())))
			response.AppError(c, apperrors.RateLimited(""))
			c.Abort()
			return
		}

		c.Next()
	}
}

// PrincipalOrIP keys by authenticated user, falling back to the client IP.
func PrincipalOrIP(c *gin.Context) string {
	if p := requestctx.PrincipalFrom(c.Request.Context()); p != nil {
		return "user:" + p.UserID.String()
	}
	return "ip:" + c.ClientIP()
}
