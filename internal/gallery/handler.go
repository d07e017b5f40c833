// Package gallery serves the public gallery endpoints: listing approved
// items, issuing presigned upload URLs, and registering metadata after a
// direct upload.
package gallery

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nanna-memorial/backend/internal/models"
	"github.com/nanna-memorial/backend/pkg/queue"
	"github.com/nanna-memorial/backend/pkg/response"
	"github.com/nanna-memorial/backend/pkg/storage"
)

// Store is the persistence surface the gallery endpoints need.
type Store interface {
	CreateGalleryItem(ctx context.Context, g *models.GalleryItem) error
	ListGallery(ctx context.Context, status models.Status) ([]models.GalleryItem, error)
}

// Uploader issues presigned upload URLs.
type Uploader interface {
	PresignUpload(ctx context.Context, key, contentType string) (string, error)
}

// Publisher enqueues video publish jobs.
type Publisher interface {
	EnqueueVideoPublish(ctx context.Context, payload queue.VideoPublishPayload) error
}

// UploadURLRequest is the body for POST /upload-url.
type UploadURLRequest struct {
	FileName string `json:"fileName" binding:"required"`
	FileType string `json:"fileType" binding:"required"`
}

// CreateRequest is the body for POST /gallery, sent after the client has
// PUT the object to the presigned URL.
type CreateRequest struct {
	Title        string `json:"title" binding:"required"`
	Category     string `json:"category" binding:"required"`
	Year         string `json:"year"`
	Relationship string `json:"relationship"`
	Description  string `json:"description"`
	Key          string `json:"key" binding:"required"`
}

// Handler handles public gallery endpoints.
type Handler struct {
	store     Store
	uploader  Uploader
	publisher Publisher
	logger    *zap.Logger
}

// NewHandler creates a gallery handler. publisher may be nil when the video
// pipeline is disabled.
func NewHandler(store Store, uploader Uploader, publisher Publisher, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, uploader: uploader, publisher: publisher, logger: logger}
}

// List handles GET /gallery: approved items in display order, each with its
// display path injected.
func (h *Handler) List(c *gin.Context) {
	items, err := h.store.ListGallery(c.Request.Context(), models.StatusApproved)
	if err != nil {
		h.logger.Error("list gallery", zap.Error(err))
		response.Internal(c, "failed to list gallery")
		return
	}
	response.OK(c, withDisplaySrc(items))
}

// UploadURL handles POST /upload-url: issues a presigned PUT scoped to a
// fresh media key and the declared content type.
func (h *Handler) UploadURL(c *gin.Context) {
	var req UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	key := storage.UploadKey(req.FileName)
	url, err := h.uploader.PresignUpload(c.Request.Context(), key, req.FileType)
	if err != nil {
		h.logger.Error("presign upload", zap.Error(err), zap.String("key", key))
		response.Internal(c, "failed to create upload URL")
		return
	}
	response.OK(c, gin.H{"uploadUrl": url, "key": key})
}

// Create handles POST /gallery: persists metadata as pending. Videos start
// in processing state and get a publish job enqueued.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	g := &models.GalleryItem{
		Title:        req.Title,
		Category:     req.Category,
		Year:         req.Year,
		Relationship: req.Relationship,
		Description:  req.Description,
		StorageKey:   req.Key,
		ContentType:  storage.MediaTypeForKey(req.Key),
	}
	if g.ContentType == models.MediaVideo {
		g.VideoStatus = models.VideoProcessing
	}
	if err := h.store.CreateGalleryItem(c.Request.Context(), g); err != nil {
		h.logger.Error("create gallery item", zap.Error(err))
		response.Internal(c, "failed to save gallery item")
		return
	}

	if g.ContentType == models.MediaVideo && h.publisher != nil {
		if err := h.publisher.EnqueueVideoPublish(c.Request.Context(), queue.VideoPublishPayload{
			ContentID:  g.ID,
			StorageKey: g.StorageKey,
		}); err != nil {
			// the reconciler will pick the record up later
			h.logger.Warn("enqueue video publish", zap.Error(err), zap.String("id", g.ID))
		}
	}
	response.Created(c, gin.H{"id": g.ID, "contentType": g.ContentType, "videoStatus": g.VideoStatus})
}

func withDisplaySrc(items []models.GalleryItem) []models.GalleryItem {
	out := make([]models.GalleryItem, len(items))
	for i, g := range items {
		if g.Src == "" {
			g.Src = g.DisplaySrc()
		}
		out[i] = g
	}
	return out
}
