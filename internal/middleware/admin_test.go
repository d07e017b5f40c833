package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/nanna-memorial/backend/internal/session"
)

func authRouter(tokens TokenVerifier, staticKey string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin/pending", AdminAuth(tokens, staticKey), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"principal": c.GetString(ContextPrincipal)})
	})
	return r
}

func get(r *gin.Engine, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/admin/pending", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAdminAuthBearerToken(t *testing.T) {
	tokens := session.NewTokenService("test-secret", 8)
	r := authRouter(tokens, "")

	token, err := tokens.Issue("admin")
	assert.NoError(t, err)

	w := get(r, map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "admin")
}

func TestAdminAuthStaticKeyFallback(t *testing.T) {
	tokens := session.NewTokenService("test-secret", 8)
	r := authRouter(tokens, "legacy-secret")

	w := get(r, map[string]string{"x-admin-key": "legacy-secret"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = get(r, map[string]string{"x-admin-key": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminAuthFailsClosed(t *testing.T) {
	tokens := session.NewTokenService("test-secret", 8)
	r := authRouter(tokens, "legacy-secret")

	cases := []map[string]string{
		nil,
		{"Authorization": "Bearer not-a-token"},
		{"Authorization": "Basic abc"},
		{"x-admin-key": ""},
	}
	for _, headers := range cases {
		w := get(r, headers)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Unauthorized")
	}
}

func TestAdminAuthStaticKeyDisabledWhenUnset(t *testing.T) {
	tokens := session.NewTokenService("test-secret", 8)
	r := authRouter(tokens, "")

	w := get(r, map[string]string{"x-admin-key": "anything"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminAuthInvalidBearerFallsThroughToStaticKey(t *testing.T) {
	tokens := session.NewTokenService("test-secret", 8)
	r := authRouter(tokens, "legacy-secret")

	// stale token plus valid static key still authorizes
	w := get(r, map[string]string{
		"Authorization": "Bearer stale",
		"x-admin-key":   "legacy-secret",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}
