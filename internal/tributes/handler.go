// Package tributes serves the public tribute wall endpoints.
package tributes

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nanna-memorial/backend/internal/models"
	"github.com/nanna-memorial/backend/pkg/response"
)

// Store is the persistence surface the tribute endpoints need.
type Store interface {
	CreateTribute(ctx context.Context, t *models.Tribute) error
	ListTributes(ctx context.Context, status models.Status) ([]models.Tribute, error)
}

// SubmitRequest is the body for POST /tributes.
type SubmitRequest struct {
	Name         string `json:"name" binding:"required"`
	Relationship string `json:"relationship" binding:"required"`
	Message      string `json:"message" binding:"required"`
	Email        string `json:"email"`
}

// Handler handles public tribute endpoints.
type Handler struct {
	store  Store
	logger *zap.Logger
}

// NewHandler creates a tribute handler.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, logger: logger}
}

// List handles GET /tributes: approved tributes only.
func (h *Handler) List(c *gin.Context) {
	list, err := h.store.ListTributes(c.Request.Context(), models.StatusApproved)
	if err != nil {
		h.logger.Error("list tributes", zap.Error(err))
		response.Internal(c, "failed to list tributes")
		return
	}
	if list == nil {
		list = []models.Tribute{}
	}
	response.OK(c, list)
}

// Submit handles POST /tributes: records the submission as pending review.
func (h *Handler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	t := &models.Tribute{
		Name:         req.Name,
		Relationship: req.Relationship,
		Message:      req.Message,
		Email:        req.Email,
	}
	if err := h.store.CreateTribute(c.Request.Context(), t); err != nil {
		h.logger.Error("create tribute", zap.Error(err))
		response.Internal(c, "failed to submit tribute")
		return
	}
	response.Created(c, gin.H{"id": t.ID})
}
