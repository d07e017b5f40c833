// Package content persists the moderation store: one table, one id
// keyspace, three record kinds.
package content

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nanna-memorial/backend/internal/models"
)

// ErrNoFields is returned by PatchGalleryItem when the update set is empty.
var ErrNoFields = errors.New("no fields to update")

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// patchColumns maps the API field names accepted by the gallery item patch
// to their columns. Fields outside this set are ignored.
var patchColumns = map[string]string{
	"title":        "title",
	"category":     "category",
	"year":         "year",
	"relationship": "relationship",
	"description":  "description",
	"key":          "storage_key",
	"src":          "src",
	"contentType":  "content_type",
	"youtubeId":    "youtube_id",
	"videoStatus":  "video_status",
	"order":        "sort_order",
	"status":       "status",
}

const galleryColumns = `id, status, COALESCE(title,''), COALESCE(category,''), COALESCE(year,''),
	COALESCE(relationship,''), COALESCE(description,''), COALESCE(storage_key,''), COALESCE(src,''),
	COALESCE(content_type,'image'), COALESCE(youtube_id,''), COALESCE(video_status,''), sort_order, is_legacy, created_at`

// Repository handles content persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a content repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateTribute inserts a visitor-submitted tribute as pending.
func (r *Repository) CreateTribute(ctx context.Context, t *models.Tribute) error {
	t.ID = uuid.New().String()
	t.Status = models.StatusPending
	const q = `INSERT INTO content (id, kind, status, name, relationship, message, email)
		VALUES ($1, 'tribute', $2, $3, $4, $5, NULLIF($6,''))
		RETURNING created_at`
	return r.pool.QueryRow(ctx, q, t.ID, t.Status, t.Name, t.Relationship, t.Message, t.Email).
		Scan(&t.CreatedAt)
}

// CreateGalleryItem inserts gallery metadata as pending.
func (r *Repository) CreateGalleryItem(ctx context.Context, g *models.GalleryItem) error {
	g.ID = uuid.New().String()
	g.Status = models.StatusPending
	const q = `INSERT INTO content (id, kind, status, title, category, year, relationship, description,
			storage_key, content_type, video_status, sort_order)
		VALUES ($1, 'gallery', $2, $3, $4, NULLIF($5,''), NULLIF($6,''), NULLIF($7,''),
			NULLIF($8,''), $9, NULLIF($10,''), $11)
		RETURNING created_at`
	return r.pool.QueryRow(ctx, q, g.ID, g.Status, g.Title, g.Category, g.Year, g.Relationship,
		g.Description, g.StorageKey, g.ContentType, g.VideoStatus, g.Order).
		Scan(&g.CreatedAt)
}

// CreateMessage inserts a contact message as new.
func (r *Repository) CreateMessage(ctx context.Context, m *models.Message) error {
	m.ID = uuid.New().String()
	m.Status = models.StatusNew
	const q = `INSERT INTO content (id, kind, status, name, email, subject, body)
		VALUES ($1, 'message', $2, $3, $4, NULLIF($5,''), $6)
		RETURNING created_at`
	return r.pool.QueryRow(ctx, q, m.ID, m.Status, m.Name, m.Email, m.Subject, m.Body).
		Scan(&m.CreatedAt)
}

// ListTributes returns tributes with the given status, newest first.
func (r *Repository) ListTributes(ctx context.Context, status models.Status) ([]models.Tribute, error) {
	const q = `SELECT id, status, COALESCE(name,''), COALESCE(relationship,''), COALESCE(message,''), COALESCE(email,''), created_at
		FROM content WHERE kind = 'tribute' AND status = $1
		ORDER BY created_at DESC, id`
	rows, err := r.pool.Query(ctx, q, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Tribute
	for rows.Next() {
		var t models.Tribute
		if err := rows.Scan(&t.ID, &t.Status, &t.Name, &t.Relationship, &t.Message, &t.Email, &t.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// ListGallery returns gallery items with the given status. The order is the
// display order: explicitly ordered items first (sort_order ascending),
// unordered items after them newest first, id as the final tie-break.
func (r *Repository) ListGallery(ctx context.Context, status models.Status) ([]models.GalleryItem, error) {
	q := `SELECT ` + galleryColumns + `
		FROM content WHERE kind = 'gallery' AND status = $1
		ORDER BY sort_order ASC NULLS LAST, created_at DESC, id`
	rows, err := r.pool.Query(ctx, q, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGallery(rows)
}

// ListMessages returns all contact messages, newest first.
func (r *Repository) ListMessages(ctx context.Context) ([]models.Message, error) {
	const q = `SELECT id, status, COALESCE(name,''), COALESCE(email,''), COALESCE(subject,''), COALESCE(body,''), created_at
		FROM content WHERE kind = 'message'
		ORDER BY created_at DESC, id`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.Status, &m.Name, &m.Email, &m.Subject, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// SetStatus updates a record's status in place. Returns false when no record
// has the id.
func (r *Repository) SetStatus(ctx context.Context, id string, status models.Status) (bool, error) {
	const q = `UPDATE content SET status = $1 WHERE id = $2`
	tag, err := r.pool.Exec(ctx, q, status, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Delete hard-deletes a record. Returns false when no record has the id.
func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	const q = `DELETE FROM content WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// GetStorageKey returns the record's storage key, if any. found is false
// when no record has the id.
func (r *Repository) GetStorageKey(ctx context.Context, id string) (key string, found bool, err error) {
	const q = `SELECT COALESCE(storage_key,'') FROM content WHERE id = $1`
	err = r.pool.QueryRow(ctx, q, id).Scan(&key)
	if err == pgx.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return key, true, nil
}

// SetOrder updates only the display order of a gallery record.
func (r *Repository) SetOrder(ctx context.Context, id string, order int) error {
	const q = `UPDATE content SET sort_order = $1 WHERE id = $2 AND kind = 'gallery'`
	_, err := r.pool.Exec(ctx, q, order, id)
	return err
}

// PatchGalleryItem applies a partial field update to a gallery record. The
// update set is whitelisted via patchColumns; unknown fields are dropped.
// Returns ErrNoFields when nothing recognizable remains.
func (r *Repository) PatchGalleryItem(ctx context.Context, id string, updates map[string]interface{}) error {
	q, args, err := buildGalleryPatch(id, updates)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, q, args...)
	return err
}

// buildGalleryPatch builds the dynamic UPDATE for a partial gallery patch.
// Column order follows patchColumns iteration on the sorted field names so
// the generated SQL is deterministic.
func buildGalleryPatch(id string, updates map[string]interface{}) (string, []interface{}, error) {
	fields := make([]string, 0, len(updates))
	for field := range updates {
		if _, ok := patchColumns[field]; ok {
			fields = append(fields, field)
		}
	}
	if len(fields) == 0 {
		return "", nil, ErrNoFields
	}
	sort.Strings(fields)

	builder := psql.Update("content")
	for _, field := range fields {
		builder = builder.Set(patchColumns[field], updates[field])
	}
	q, args, err := builder.Where(sq.Eq{"id": id, "kind": "gallery"}).ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build patch query: %w", err)
	}
	return q, args, nil
}

// LegacySeedItem is one record of the one-time migration of hardcoded
// historical content. IDs are caller-supplied and stable, so reruns
// overwrite rather than duplicate.
type LegacySeedItem struct {
	ID          string `json:"id" binding:"required"`
	Kind        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Year        string `json:"year"`
	Src         string `json:"src"`
}

// SeedLegacy upserts legacy items by id, directly approved and tagged
// is_legacy. Returns the number of items written.
func (r *Repository) SeedLegacy(ctx context.Context, items []LegacySeedItem) (int, error) {
	const q = `INSERT INTO content (id, kind, status, title, description, category, year, src, is_legacy)
		VALUES ($1, $2, 'approved', NULLIF($3,''), NULLIF($4,''), NULLIF($5,''), NULLIF($6,''), NULLIF($7,''), TRUE)
		ON CONFLICT (id) DO UPDATE SET
			kind = EXCLUDED.kind, status = 'approved',
			title = EXCLUDED.title, description = EXCLUDED.description,
			category = EXCLUDED.category, year = EXCLUDED.year,
			src = EXCLUDED.src, is_legacy = TRUE`
	count := 0
	for _, item := range items {
		kind := item.Kind
		if kind == "" {
			kind = string(models.KindGallery)
		}
		if _, err := r.pool.Exec(ctx, q, item.ID, kind, item.Title, item.Description, item.Category, item.Year, item.Src); err != nil {
			return count, fmt.Errorf("seed item %s: %w", item.ID, err)
		}
		count++
	}
	return count, nil
}

// GetGalleryByStorageKey looks up the gallery record owning a stored object.
// Returns nil when no record matches.
func (r *Repository) GetGalleryByStorageKey(ctx context.Context, key string) (*models.GalleryItem, error) {
	q := `SELECT ` + galleryColumns + ` FROM content WHERE kind = 'gallery' AND storage_key = $1`
	rows, err := r.pool.Query(ctx, q, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items, err := scanGallery(rows)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// SetVideoResult stamps the external host id and flips the processing state.
func (r *Repository) SetVideoResult(ctx context.Context, id, youtubeID string, status models.VideoStatus) error {
	const q = `UPDATE content SET youtube_id = NULLIF($1,''), video_status = $2 WHERE id = $3`
	_, err := r.pool.Exec(ctx, q, youtubeID, status, id)
	return err
}

// ListProcessingBefore returns gallery records still in video processing
// that were created before the cutoff; used by the reconciler to re-enqueue
// stuck videos.
func (r *Repository) ListProcessingBefore(ctx context.Context, cutoff time.Time) ([]models.GalleryItem, error) {
	q := `SELECT ` + galleryColumns + `
		FROM content WHERE kind = 'gallery' AND video_status = 'processing' AND created_at < $1
		ORDER BY created_at`
	rows, err := r.pool.Query(ctx, q, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGallery(rows)
}

func scanGallery(rows pgx.Rows) ([]models.GalleryItem, error) {
	var list []models.GalleryItem
	for rows.Next() {
		var g models.GalleryItem
		if err := rows.Scan(&g.ID, &g.Status, &g.Title, &g.Category, &g.Year, &g.Relationship,
			&g.Description, &g.StorageKey, &g.Src, &g.ContentType, &g.YoutubeID, &g.VideoStatus,
			&g.Order, &g.IsLegacy, &g.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, g)
	}
	return list, rows.Err()
}
