package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/quocanhngo/kickoff/internal/apperr"
	"github.com/quocanhngo/kickoff/internal/model"
	"github.com/quocanhngo/kickoff/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthenticator map[string]*auth.Identity

func (s stubAuthenticator) Authenticate(_ context.Context, token string) (*auth.Identity, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return nil, apperr.Unauthenticated("invalid or expired token")
}

func newRouter(a Authenticator, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{AuthMiddleware(a)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.MustGet("user_id")})
	})
	r.GET("/me", handlers...)
	return r
}

func do(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var body model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthMiddleware(t *testing.T) {
	a := stubAuthenticator{
		"good": {UserID: "player-1"},
	}
	r := newRouter(a)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"unknown token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer good", http.StatusOK},
		{"case insensitive scheme", "bearer good", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.header)
			assert.Equal(t, tt.status, w.Code)
			if tt.status != http.StatusOK {
				assert.Equal(t, string(apperr.KindUnauthenticated), decodeError(t, w).Error)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	a := stubAuthenticator{
		"admin":  {UserID: "a", Roles: []string{auth.RoleAdmin}},
		"player": {UserID: "p"},
	}
	r := newRouter(a, RequireRole(auth.RoleAdmin))

	assert.Equal(t, http.StatusOK, do(r, "Bearer admin").Code)

	w := do(r, "Bearer player")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, string(apperr.KindForbidden), decodeError(t, w).Error)
}
