package session

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/nanna-memorial/backend/config"
	"github.com/nanna-memorial/backend/pkg/response"
)

// LoginRequest is the body for POST /admin/login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Handler handles the admin login endpoint.
type Handler struct {
	admin  config.AdminConfig
	tokens *TokenService
	logger *zap.Logger
}

// NewHandler creates a session handler.
func NewHandler(admin config.AdminConfig, tokens *TokenService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{admin: admin, tokens: tokens, logger: logger}
}

// Login handles POST /admin/login: exchanges the configured admin
// credentials for a session token.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	if !h.credentialsMatch(req.Username, req.Password) {
		h.logger.Warn("admin login rejected", zap.String("username", req.Username))
		response.Unauthorized(c)
		return
	}

	token, err := h.tokens.Issue(req.Username)
	if err != nil {
		h.logger.Error("issue session token", zap.Error(err))
		response.Internal(c, "failed to issue token")
		return
	}
	response.OK(c, gin.H{"token": token})
}

func (h *Handler) credentialsMatch(username, password string) bool {
	if h.admin.Username == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(h.admin.Username)) == 1

	var passOK bool
	if h.admin.PasswordHash != "" {
		passOK = bcrypt.CompareHashAndPassword([]byte(h.admin.PasswordHash), []byte(password)) == nil
	} else if h.admin.Password != "" {
		passOK = subtle.ConstantTimeCompare([]byte(password), []byte(h.admin.Password)) == 1
	}
	return userOK && passOK
}
