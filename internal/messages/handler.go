// Package messages serves the public contact-form endpoint.
package messages

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nanna-memorial/backend/internal/models"
	"github.com/nanna-memorial/backend/pkg/response"
)

// Store is the persistence surface the message endpoint needs.
type Store interface {
	CreateMessage(ctx context.Context, m *models.Message) error
}

// SubmitRequest is the body for POST /messages.
type SubmitRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject"`
	Body    string `json:"body" binding:"required"`
}

// Handler handles the public message endpoint.
type Handler struct {
	store  Store
	logger *zap.Logger
}

// NewHandler creates a message handler.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, logger: logger}
}

// Submit handles POST /messages: records the message with status new.
func (h *Handler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	m := &models.Message{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Body:    req.Body,
	}
	if err := h.store.CreateMessage(c.Request.Context(), m); err != nil {
		h.logger.Error("create message", zap.Error(err))
		response.Internal(c, "failed to submit message")
		return
	}
	response.Created(c, gin.H{"id": m.ID})
}
