package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/quocanhngo/kickoff/internal/apperr"
	"github.com/quocanhngo/kickoff/internal/model"
	"github.com/quocanhngo/kickoff/pkg/auth"
)

// Authenticator resolves a bearer token into an identity
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Identity, error)
}

// AuthMiddleware validates bearer tokens and injects the identity into context
func AuthMiddleware(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, http.StatusUnauthorized, apperr.KindUnauthenticated, "Authorization header required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
			abort(c, http.StatusUnauthorized, apperr.KindUnauthenticated, "Invalid authorization format. Use: Bearer <token>")
			return
		}
		tokenString := parts[1]

		identity, err := authenticator.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			kind := apperr.KindOf(err)
			abort(c, apperr.HTTPStatus(kind), kind, apperr.MessageOf(err))
			return
		}

		// Store user info in context for downstream handlers
		c.Set("user_id", identity.UserID)
		c.Set("identity", identity)
		c.Set("token", tokenString)

		c.Next()
	}
}

// RequireRole rejects identities without role. Must run after AuthMiddleware.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := c.Get("identity")
		if !ok {
			abort(c, http.StatusUnauthorized, apperr.KindUnauthenticated, "authentication required")
			return
		}
		if !identity.(*auth.Identity).HasRole(role) {
			abort(c, http.StatusForbidden, apperr.KindForbidden, "requires "+role+" role")
			return
		}
		c.Next()
	}
}

func abort(c *gin.Context, status int, kind apperr.Kind, message string) {
	c.AbortWithStatusJSON(status, model.ErrorResponse{Error: string(kind), Message: message})
}
