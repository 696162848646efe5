package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/woundtrack/supply-api/internal/handler"
	"github.com/woundtrack/supply-api/internal/service/access"
	"github.com/woundtrack/supply-api/internal/service/auth"
)

const contextIdentity = "identity"

type AuthMiddleware struct {
	authService auth.Service
}

func NewAuthMiddleware(authService auth.Service) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Authenticate verifies the bearer token and places the Guard identity in
// the request context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authorization header"))
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid authorization format"))
			c.Abort()
			return
		}

		identity, err := m.authService.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid token"))
			c.Abort()
			return
		}

		c.Set(contextIdentity, identity)
		c.Next()
	}
}

// RequireAdmin rejects non-admin identities before the handler runs.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := IdentityFromContext(c)
		if identity == nil {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("no identity"))
			c.Abort()
			return
		}
		if !identity.IsAdmin() {
			c.JSON(http.StatusForbidden, handler.NewErrorResponse("admin role required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// IdentityFromContext returns the authenticated identity, or nil.
func IdentityFromContext(c *gin.Context) *access.Identity {
	if v, ok := c.Get(contextIdentity); ok {
		if identity, ok := v.(*access.Identity); ok {
			return identity
		}
	}
	return nil
}
