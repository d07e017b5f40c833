// Package client is a Go façade over the memorial API. Every method
// normalizes failures to safe zero values so callers can render without
// error plumbing; failures are logged instead.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nanna-memorial/backend/internal/models"
)

// SessionStore persists the admin session token between calls. Implementations
// back it with whatever the host app has: memory, a keychain, a cookie jar.
type SessionStore interface {
	Load() string
	Save(token string)
	Clear()
}

// MemorySessionStore keeps the token in process memory.
type MemorySessionStore struct {
	mu    sync.Mutex
	token string
}

func (s *MemorySessionStore) Load() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *MemorySessionStore) Save(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *MemorySessionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
}

// PendingContent is the moderation view returned by the admin listing calls.
type PendingContent struct {
	Tributes []models.Tribute     `json:"tributes"`
	Gallery  []models.GalleryItem `json:"gallery"`
}

// UploadTarget is a presigned upload slot.
type UploadTarget struct {
	UploadURL string `json:"uploadUrl"`
	Key       string `json:"key"`
}

// TributeSubmission is the public tribute form payload.
type TributeSubmission struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Message      string `json:"message"`
	Email        string `json:"email,omitempty"`
}

// GalleryItemSubmission registers an uploaded media object.
type GalleryItemSubmission struct {
	Title        string `json:"title"`
	Category     string `json:"category"`
	Year         string `json:"year,omitempty"`
	Relationship string `json:"relationship,omitempty"`
	Description  string `json:"description,omitempty"`
	Key          string `json:"key"`
}

// MessageSubmission is the contact form payload.
type MessageSubmission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body"`
}

// OrderItem assigns a display position to a gallery item.
type OrderItem struct {
	ID    string `json:"id"`
	Order int    `json:"order"`
}

// SeedItem is a legacy record imported with its original id.
type SeedItem struct {
	ID          string `json:"id"`
	Kind        string `json:"type,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Year        string `json:"year,omitempty"`
	Src         string `json:"src,omitempty"`
}

// Client calls the memorial API. Admin calls carry the stored session token
// as a Bearer header when present, otherwise the static admin key.
type Client struct {
	baseURL  string
	adminKey string
	http     *http.Client
	sessions SessionStore
	logger   *zap.Logger
}

// New creates an API client. sessions may be nil, in which case an in-memory
// store is used; logger may be nil.
func New(baseURL, adminKey string, sessions SessionStore, logger *zap.Logger) *Client {
	if sessions == nil {
		sessions = &MemorySessionStore{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:  baseURL,
		adminKey: adminKey,
		http:     &http.Client{Timeout: 30 * time.Second},
		sessions: sessions,
		logger:   logger,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.sessions.Load(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	} else if c.adminKey != "" {
		req.Header.Set("x-admin-key", c.adminKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// Stale session token; the next call falls back to the admin key.
		c.sessions.Clear()
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		return fmt.Errorf("%s %s: %d %s", method, path, resp.StatusCode, env.Error)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}

// Login authenticates and stores the session token.
func (c *Client) Login(ctx context.Context, username, password string) bool {
	var data struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/admin/login", map[string]string{
		"username": username,
		"password": password,
	}, &data)
	if err != nil || data.Token == "" {
		c.logger.Warn("login failed", zap.Error(err))
		return false
	}
	c.sessions.Save(data.Token)
	return true
}

// Logout discards the stored session token.
func (c *Client) Logout() {
	c.sessions.Clear()
}

// IsLoggedIn reports whether a session token is stored.
func (c *Client) IsLoggedIn() bool {
	return c.sessions.Load() != ""
}

// GetTributes returns approved tributes, nil on failure.
func (c *Client) GetTributes(ctx context.Context) []models.Tribute {
	var list []models.Tribute
	if err := c.do(ctx, http.MethodGet, "/tributes", nil, &list); err != nil {
		c.logger.Warn("get tributes failed", zap.Error(err))
		return nil
	}
	return list
}

// SubmitTribute submits a tribute for moderation.
func (c *Client) SubmitTribute(ctx context.Context, sub TributeSubmission) bool {
	if err := c.do(ctx, http.MethodPost, "/tributes", sub, nil); err != nil {
		c.logger.Warn("submit tribute failed", zap.Error(err))
		return false
	}
	return true
}

// GetUploadURL requests a presigned upload slot, nil on failure.
func (c *Client) GetUploadURL(ctx context.Context, fileName, fileType string) *UploadTarget {
	var target UploadTarget
	err := c.do(ctx, http.MethodPost, "/upload-url", map[string]string{
		"fileName": fileName,
		"fileType": fileType,
	}, &target)
	if err != nil || target.UploadURL == "" {
		c.logger.Warn("get upload url failed", zap.Error(err))
		return nil
	}
	return &target
}

// UploadMedia PUTs the media body directly to a presigned URL.
func (c *Client) UploadMedia(ctx context.Context, uploadURL, contentType string, body io.Reader) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, body)
	if err != nil {
		c.logger.Warn("upload media failed", zap.Error(err))
		return false
	}
	req.Header.Set("Content-Type", contentType)
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("upload media failed", zap.Error(err))
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= http.StatusBadRequest {
		c.logger.Warn("upload media rejected", zap.Int("status", resp.StatusCode))
		return false
	}
	return true
}

// SaveGalleryItem registers uploaded media as a pending gallery item.
func (c *Client) SaveGalleryItem(ctx context.Context, sub GalleryItemSubmission) bool {
	if err := c.do(ctx, http.MethodPost, "/gallery", sub, nil); err != nil {
		c.logger.Warn("save gallery item failed", zap.Error(err))
		return false
	}
	return true
}

// GetGalleryItems returns approved gallery items in display order, nil on failure.
func (c *Client) GetGalleryItems(ctx context.Context) []models.GalleryItem {
	var list []models.GalleryItem
	if err := c.do(ctx, http.MethodGet, "/gallery", nil, &list); err != nil {
		c.logger.Warn("get gallery failed", zap.Error(err))
		return nil
	}
	return list
}

// SubmitMessage submits a contact message.
func (c *Client) SubmitMessage(ctx context.Context, sub MessageSubmission) bool {
	if err := c.do(ctx, http.MethodPost, "/messages", sub, nil); err != nil {
		c.logger.Warn("submit message failed", zap.Error(err))
		return false
	}
	return true
}

// GetPendingContent returns content awaiting moderation, empty on failure.
func (c *Client) GetPendingContent(ctx context.Context) PendingContent {
	var view PendingContent
	if err := c.do(ctx, http.MethodGet, "/admin/pending", nil, &view); err != nil {
		c.logger.Warn("get pending content failed", zap.Error(err))
		return PendingContent{}
	}
	return view
}

// GetApprovedContent returns approved content, empty on failure.
func (c *Client) GetApprovedContent(ctx context.Context) PendingContent {
	var view PendingContent
	if err := c.do(ctx, http.MethodGet, "/admin/approved", nil, &view); err != nil {
		c.logger.Warn("get approved content failed", zap.Error(err))
		return PendingContent{}
	}
	return view
}

// GetMessages returns all contact messages, nil on failure.
func (c *Client) GetMessages(ctx context.Context) []models.Message {
	var list []models.Message
	if err := c.do(ctx, http.MethodGet, "/admin/messages", nil, &list); err != nil {
		c.logger.Warn("get messages failed", zap.Error(err))
		return nil
	}
	return list
}

// UpdateContentStatus applies a moderation decision to the given ids.
// Status approved or read updates in place; anything else deletes.
func (c *Client) UpdateContentStatus(ctx context.Context, ids []string, status string) bool {
	err := c.do(ctx, http.MethodPatch, "/admin/status", map[string]interface{}{
		"ids":    ids,
		"status": status,
	}, nil)
	if err != nil {
		c.logger.Warn("update content status failed", zap.Error(err))
		return false
	}
	return true
}

// DeleteContent removes a record and its stored media.
func (c *Client) DeleteContent(ctx context.Context, id string) bool {
	if err := c.do(ctx, http.MethodDelete, "/admin/content?id="+id, nil, nil); err != nil {
		c.logger.Warn("delete content failed", zap.Error(err))
		return false
	}
	return true
}

// ReorderGallery assigns display positions to gallery items.
func (c *Client) ReorderGallery(ctx context.Context, items []OrderItem) bool {
	err := c.do(ctx, http.MethodPatch, "/admin/gallery/order", map[string]interface{}{
		"items": items,
	}, nil)
	if err != nil {
		c.logger.Warn("reorder gallery failed", zap.Error(err))
		return false
	}
	return true
}

// UpdateGalleryItem patches a subset of a gallery item's fields.
func (c *Client) UpdateGalleryItem(ctx context.Context, id string, updates map[string]interface{}) bool {
	err := c.do(ctx, http.MethodPatch, "/admin/gallery/item", map[string]interface{}{
		"id":      id,
		"updates": updates,
	}, nil)
	if err != nil {
		c.logger.Warn("update gallery item failed", zap.Error(err))
		return false
	}
	return true
}

// SeedLegacy upserts legacy records as approved content. Returns the number
// of records processed, 0 on failure.
func (c *Client) SeedLegacy(ctx context.Context, items []SeedItem) int {
	var data struct {
		Count int `json:"count"`
	}
	err := c.do(ctx, http.MethodPost, "/admin/seed", map[string]interface{}{
		"items": items,
	}, &data)
	if err != nil {
		c.logger.Warn("seed legacy failed", zap.Error(err))
		return 0
	}
	return data.Count
}
