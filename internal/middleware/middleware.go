package middleware

import (
	"net/http"
	"strings"

	"authhub/internal/models"
	"authhub/internal/session"

	"github.com/gin-gonic/gin"
)

const ContextPrincipal = "principal"

type TokenParser interface {
	Parse(token string) (session.Principal, error)
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"message": message,
		"data":    nil,
	})
}

// AuthMiddleware verifies the bearer token and stores the caller in the request context.
func AuthMiddleware(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, http.StatusUnauthorized, "Authorization header is required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			abort(c, http.StatusUnauthorized, "Invalid authorization header format, use: Bearer {token}")
			return
		}

		principal, err := tokens.Parse(parts[1])
		if err != nil {
			abort(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(ContextPrincipal, principal)
		c.Request = c.Request.WithContext(session.WithPrincipal(c.Request.Context(), principal))
		c.Next()
	}
}

// RequireRole must run after AuthMiddleware.
func RequireRole(roles ...models.RoleName) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := session.FromContext(c.Request.Context())
		if !ok {
			abort(c, http.StatusUnauthorized, "You are not logged in, try to log in")
			return
		}
		for _, r := range roles {
			if principal.Role == string(r) {
				c.Next()
				return
			}
		}
		abort(c, http.StatusForbidden, "You do not have permission to perform this action")
	}
}
