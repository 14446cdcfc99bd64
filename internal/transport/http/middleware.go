package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Foysal-Munsy/careerostad-messaging/internal/auth"
	"github.com/Foysal-Munsy/careerostad-messaging/internal/core"
)

// ContextKeyIdentity is the context key for the authenticated identity.
const ContextKeyIdentity = "identity"

// AuthMiddleware creates a middleware that validates JWT tokens and
// establishes the caller's messaging identity.
func AuthMiddleware(authService *auth.Service, logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug().Msg("missing authorization header")
			c.JSON(http.StatusUnauthorized, ErrorResponse{Success: false, Error: "missing authorization header"})
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			logger.Debug().Msg("invalid authorization header format")
			c.JSON(http.StatusUnauthorized, ErrorResponse{Success: false, Error: "invalid authorization header format"})
			c.Abort()
			return
		}

		token := parts[1]
		claims, err := authService.ValidateToken(token)
		if err != nil {
			logger.Debug().Err(err).Msg("invalid token")
			c.JSON(http.StatusUnauthorized, ErrorResponse{Success: false, Error: "invalid token"})
			c.Abort()
			return
		}

		c.Set(ContextKeyIdentity, authService.Identity(claims))

		c.Next()
	}
}

// identityFromContext returns the authenticated identity set by
// AuthMiddleware, or the zero identity if none is established.
func identityFromContext(c *gin.Context) core.Identity {
	v, exists := c.Get(ContextKeyIdentity)
	if !exists {
		return ""
	}
	identity, ok := v.(core.Identity)
	if !ok {
		return ""
	}
	return identity
}

// LoggerMiddleware creates a middleware that logs HTTP requests.
func LoggerMiddleware(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Process request
		c.Next()

		// Log after request
		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Msg("http request")
	}
}
