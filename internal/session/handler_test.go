package session

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nanna-memorial/backend/config"
	"github.com/nanna-memorial/backend/pkg/response"
)

func loginRouter(admin config.AdminConfig, tokens *TokenService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/admin/login", NewHandler(admin, tokens, nil).Login)
	return r
}

func postLogin(t *testing.T, r *gin.Engine, username, password string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(gin.H{"username": username, "password": password})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/admin/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	tokens := NewTokenService("test-secret", 8)
	r := loginRouter(config.AdminConfig{Username: "admin", Password: "hunter2"}, tokens)

	w := postLogin(t, r, "admin", "hunter2")
	require.Equal(t, http.StatusOK, w.Code)

	var body response.Body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	data := body.Data.(map[string]interface{})
	token, _ := data["token"].(string)
	require.NotEmpty(t, token)

	principal, ok := tokens.Verify(token)
	require.True(t, ok)
	assert.Equal(t, "admin", principal)
}

func TestLoginRejectsWrongCredentials(t *testing.T) {
	tokens := NewTokenService("test-secret", 8)
	r := loginRouter(config.AdminConfig{Username: "admin", Password: "hunter2"}, tokens)

	for _, tc := range []struct{ user, pass string }{
		{"admin", "wrong"},
		{"someone", "hunter2"},
		{"", ""},
	} {
		w := postLogin(t, r, tc.user, tc.pass)
		if tc.user == "" {
			assert.Equal(t, http.StatusBadRequest, w.Code)
			continue
		}
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Unauthorized")
	}
}

func TestLoginBcryptHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	tokens := NewTokenService("test-secret", 8)
	r := loginRouter(config.AdminConfig{Username: "admin", PasswordHash: string(hash)}, tokens)

	assert.Equal(t, http.StatusOK, postLogin(t, r, "admin", "hunter2").Code)
	assert.Equal(t, http.StatusUnauthorized, postLogin(t, r, "admin", "wrong").Code)
}

func TestLoginNoIdentityConfigured(t *testing.T) {
	tokens := NewTokenService("test-secret", 8)
	r := loginRouter(config.AdminConfig{}, tokens)

	assert.Equal(t, http.StatusUnauthorized, postLogin(t, r, "admin", "anything").Code)
}
