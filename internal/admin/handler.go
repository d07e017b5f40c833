// Package admin implements the moderation endpoints: pending/approved
// views, status transitions, reordering, partial edits, deletes with media
// cleanup, and the one-time legacy seed.
package admin

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nanna-memorial/backend/internal/content"
	"github.com/nanna-memorial/backend/internal/models"
	"github.com/nanna-memorial/backend/pkg/response"
)

// Store is the persistence surface the moderation endpoints need,
// implemented by *content.Repository.
type Store interface {
	ListTributes(ctx context.Context, status models.Status) ([]models.Tribute, error)
	ListGallery(ctx context.Context, status models.Status) ([]models.GalleryItem, error)
	ListMessages(ctx context.Context) ([]models.Message, error)
	SetStatus(ctx context.Context, id string, status models.Status) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	GetStorageKey(ctx context.Context, id string) (key string, found bool, err error)
	SetOrder(ctx context.Context, id string, order int) error
	PatchGalleryItem(ctx context.Context, id string, updates map[string]interface{}) error
	SeedLegacy(ctx context.Context, items []content.LegacySeedItem) (int, error)
}

// ObjectStore deletes stored media objects during content cleanup.
type ObjectStore interface {
	DeleteObject(ctx context.Context, key string) error
}

// ContentView partitions records by kind for the dashboard.
type ContentView struct {
	Tributes []models.Tribute     `json:"tributes"`
	Gallery  []models.GalleryItem `json:"gallery"`
}

// StatusRequest is the body for PATCH /admin/status. Either id or ids must
// be set; type is accepted for compatibility but unused since the id
// keyspace is global.
type StatusRequest struct {
	Type   string   `json:"type"`
	ID     string   `json:"id"`
	IDs    []string `json:"ids"`
	Status string   `json:"status" binding:"required"`
}

// ReorderRequest is the body for PATCH /admin/gallery/order.
type ReorderRequest struct {
	Items []OrderItem `json:"items" binding:"required"`
}

// OrderItem names one record's new display position.
type OrderItem struct {
	ID    string `json:"id" binding:"required"`
	Order int    `json:"order"`
}

// PatchItemRequest is the body for PATCH /admin/gallery/item.
type PatchItemRequest struct {
	ID      string                 `json:"id" binding:"required"`
	Updates map[string]interface{} `json:"updates" binding:"required"`
}

// SeedRequest is the body for POST /admin/seed.
type SeedRequest struct {
	Items []content.LegacySeedItem `json:"items" binding:"required"`
}

// Handler handles admin moderation endpoints.
type Handler struct {
	store   Store
	objects ObjectStore
	logger  *zap.Logger
}

// NewHandler creates an admin handler. objects may be nil when S3 is not
// configured; media cleanup is then skipped.
func NewHandler(store Store, objects ObjectStore, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, objects: objects, logger: logger}
}

// ListPending handles GET /admin/pending: all records awaiting review,
// partitioned by kind, gallery entries with display paths injected.
func (h *Handler) ListPending(c *gin.Context) {
	view, err := h.view(c.Request.Context(), models.StatusPending)
	if err != nil {
		h.logger.Error("list pending", zap.Error(err))
		response.Internal(c, "failed to list pending content")
		return
	}
	response.OK(c, view)
}

// ListApproved handles GET /admin/approved: the management view, gallery
// pre-sorted in display order.
func (h *Handler) ListApproved(c *gin.Context) {
	view, err := h.view(c.Request.Context(), models.StatusApproved)
	if err != nil {
		h.logger.Error("list approved", zap.Error(err))
		response.Internal(c, "failed to list approved content")
		return
	}
	response.OK(c, view)
}

// ListMessages handles GET /admin/messages.
func (h *Handler) ListMessages(c *gin.Context) {
	list, err := h.store.ListMessages(c.Request.Context())
	if err != nil {
		h.logger.Error("list messages", zap.Error(err))
		response.Internal(c, "failed to list messages")
		return
	}
	if list == nil {
		list = []models.Message{}
	}
	response.OK(c, list)
}

// UpdateStatus handles PATCH /admin/status, single or bulk. Target status
// approved (or read, for messages) updates in place; any other target hard
// deletes the record. Ids are processed sequentially with no atomicity; the
// returned count is the number of ids processed.
func (h *Handler) UpdateStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	ids := req.IDs
	if len(ids) == 0 && req.ID != "" {
		ids = []string{req.ID}
	}
	if len(ids) == 0 {
		response.BadRequest(c, "no ids provided")
		return
	}

	target := models.Status(req.Status)
	count := 0
	for _, id := range ids {
		var err error
		switch target {
		case models.StatusApproved, models.StatusRead:
			_, err = h.store.SetStatus(c.Request.Context(), id, target)
		default:
			_, err = h.store.Delete(c.Request.Context(), id)
		}
		if err != nil {
			h.logger.Error("update status", zap.Error(err), zap.String("id", id), zap.String("status", req.Status))
			response.Internal(c, "failed to update status")
			return
		}
		count++
	}
	response.OK(c, gin.H{"count": count})
}

// DeleteContent handles DELETE /admin/content?id= (body {id} as fallback).
// If the record owns a stored media object it is deleted best-effort first;
// an object-store failure is logged and the metadata delete still proceeds.
func (h *Handler) DeleteContent(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		var body struct {
			ID string `json:"id"`
		}
		if err := c.ShouldBindJSON(&body); err == nil {
			id = body.ID
		}
	}
	if id == "" {
		response.BadRequest(c, "missing id")
		return
	}

	key, found, err := h.store.GetStorageKey(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("lookup content", zap.Error(err), zap.String("id", id))
		response.Internal(c, "failed to delete content")
		return
	}
	if !found {
		response.NotFound(c, "content not found")
		return
	}

	if key != "" && h.objects != nil {
		if err := h.objects.DeleteObject(c.Request.Context(), key); err != nil {
			h.logger.Warn("media object delete failed", zap.Error(err), zap.String("id", id), zap.String("key", key))
		}
	}

	if _, err := h.store.Delete(c.Request.Context(), id); err != nil {
		h.logger.Error("delete content", zap.Error(err), zap.String("id", id))
		response.Internal(c, "failed to delete content")
		return
	}
	response.OK(c, gin.H{"id": id})
}

// ReorderGallery handles PATCH /admin/gallery/order: updates only the order
// field of each named record, sequentially. A failure mid-batch leaves
// earlier updates applied; reapplying the full set is the recovery path
// (the operation is idempotent).
func (h *Handler) ReorderGallery(c *gin.Context) {
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if len(req.Items) == 0 {
		response.BadRequest(c, "no items provided")
		return
	}

	for _, item := range req.Items {
		if err := h.store.SetOrder(c.Request.Context(), item.ID, item.Order); err != nil {
			h.logger.Error("set order", zap.Error(err), zap.String("id", item.ID))
			response.Internal(c, "failed to reorder gallery")
			return
		}
	}
	response.OK(c, gin.H{"count": len(req.Items)})
}

// UpdateGalleryItem handles PATCH /admin/gallery/item: arbitrary partial
// field patch for manual corrections.
func (h *Handler) UpdateGalleryItem(c *gin.Context) {
	var req PatchItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	err := h.store.PatchGalleryItem(c.Request.Context(), req.ID, req.Updates)
	if err == content.ErrNoFields {
		response.BadRequest(c, "no fields to update")
		return
	}
	if err != nil {
		h.logger.Error("patch gallery item", zap.Error(err), zap.String("id", req.ID))
		response.Internal(c, "failed to update gallery item")
		return
	}
	response.OK(c, gin.H{"id": req.ID})
}

// SeedLegacy handles POST /admin/seed: upserts legacy records by their
// stable ids, directly approved.
func (h *Handler) SeedLegacy(c *gin.Context) {
	var req SeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if len(req.Items) == 0 {
		response.BadRequest(c, "no items provided")
		return
	}

	count, err := h.store.SeedLegacy(c.Request.Context(), req.Items)
	if err != nil {
		h.logger.Error("seed legacy", zap.Error(err), zap.Int("written", count))
		response.Internal(c, "failed to seed legacy content")
		return
	}
	response.OK(c, gin.H{"count": count})
}

func (h *Handler) view(ctx context.Context, status models.Status) (*ContentView, error) {
	tributes, err := h.store.ListTributes(ctx, status)
	if err != nil {
		return nil, err
	}
	gallery, err := h.store.ListGallery(ctx, status)
	if err != nil {
		return nil, err
	}
	view := &ContentView{
		Tributes: tributes,
		Gallery:  make([]models.GalleryItem, 0, len(gallery)),
	}
	if view.Tributes == nil {
		view.Tributes = []models.Tribute{}
	}
	for _, g := range gallery {
		if g.Src == "" {
			g.Src = g.DisplaySrc()
		}
		view.Gallery = append(view.Gallery, g)
	}
	return view, nil
}
