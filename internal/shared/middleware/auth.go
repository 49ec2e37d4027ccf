package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/uniedit/storage-oss/internal/port/outbound"
	"github.com/uniedit/storage-oss/internal/shared/requestctx"
)

const (
	// AuthorizationHeader is the header key for authorization.
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens.
	BearerPrefix = "Bearer "
)

// OptionalAuth attaches the principal of a valid bearer token to the request
// context. Missing or invalid tokens leave the request anonymous; access
// decisions belong to the storage access policy.
func OptionalAuth(validator outbound.TokenValidatorPort) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		principal, err := validator.ValidateToken(token)
		if err != nil {
			c.Next()
			return
		}

		c.Request = c.Request.WithContext(requestctx.WithPrincipal(c.Request.Context(), principal))
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader(AuthorizationHeader)
	if !strings.HasPrefix(authHeader, BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, BearerPrefix))
}
