package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/callgate/callgate-server/internal/auth"
)

// ContextKeyIdentity is the context key for the verified caller identity.
const ContextKeyIdentity = "identity"

// AuthMiddleware creates a middleware that validates bearer tokens and stores
// the resulting verified identity in the request context.
func AuthMiddleware(verifier *auth.Verifier, logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug().Msg("missing authorization header")
			c.JSON(http.StatusUnauthorized, errResp(CodeUnauthenticated, "missing authorization header"))
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			logger.Debug().Msg("invalid authorization header format")
			c.JSON(http.StatusUnauthorized, errResp(CodeUnauthenticated, "invalid authorization header format"))
			c.Abort()
			return
		}

		ident, err := verifier.Verify(parts[1])
		if err != nil {
			logger.Debug().Err(err).Msg("invalid token")
			c.JSON(http.StatusUnauthorized, errResp(CodeUnauthenticated, "invalid token"))
			c.Abort()
			return
		}

		c.Set(ContextKeyIdentity, ident)
		c.Next()
	}
}

// identityFromContext returns the verified identity stored by AuthMiddleware.
// The zero value means the request never passed authentication.
func identityFromContext(c *gin.Context) auth.Identity {
	v, exists := c.Get(ContextKeyIdentity)
	if !exists {
		return auth.Identity{}
	}
	ident, ok := v.(auth.Identity)
	if !ok {
		return auth.Identity{}
	}
	return ident
}

// LoggerMiddleware creates a middleware that logs HTTP requests.
func LoggerMiddleware(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Msg("http request")
	}
}
