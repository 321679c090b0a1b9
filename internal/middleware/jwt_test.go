package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", JWTAuth(secret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": c.GetString(ContextUserID), "role": c.GetString(ContextRole)})
	})
	r.GET("/admin", JWTAuth(secret), RequireRole(RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	token, err := NewAccessToken(secret, "user-1", "seller", time.Hour)
	require.NoError(t, err)

	w := do(newRouter(), "/me", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":"user-1","role":"seller"}`, w.Body.String())
}

func TestJWTAuthRejects(t *testing.T) {
	r := newRouter()

	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "garbage").Code)

	wrongKey, _ := NewAccessToken("other-secret", "user-1", "seller", time.Hour)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", wrongKey).Code)

	expired, _ := NewAccessToken(secret, "user-1", "seller", -time.Minute)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", expired).Code)

	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-1"}).SignedString([]byte(secret))
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", noExp).Code)
}

func TestRequireRole(t *testing.T) {
	r := newRouter()

	seller, _ := NewAccessToken(secret, "user-1", "seller", time.Hour)
	assert.Equal(t, http.StatusForbidden, do(r, "/admin", seller).Code)

	admin, _ := NewAccessToken(secret, "ops", RoleAdmin, time.Hour)
	assert.Equal(t, http.StatusNoContent, do(r, "/admin", admin).Code)
}
