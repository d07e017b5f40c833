// Package worker runs the asynchronous video publishing pipeline: stream
// uploaded videos from the media store to the external host and stamp the
// gallery record with the result.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/nanna-memorial/backend/internal/models"
	"github.com/nanna-memorial/backend/pkg/queue"
	"github.com/nanna-memorial/backend/pkg/storage"
)

// Store is the persistence surface the publisher needs.
type Store interface {
	GetGalleryByStorageKey(ctx context.Context, key string) (*models.GalleryItem, error)
	SetVideoResult(ctx context.Context, id, youtubeID string, status models.VideoStatus) error
	ListProcessingBefore(ctx context.Context, cutoff time.Time) ([]models.GalleryItem, error)
}

// ObjectStore streams stored media objects.
type ObjectStore interface {
	GetObjectStream(ctx context.Context, key string) (body io.ReadCloser, contentType string, err error)
}

// VideoHost publishes a video stream and returns the external id.
type VideoHost interface {
	Upload(ctx context.Context, body io.Reader) (string, error)
}

// JobQueue is the queue surface the publisher needs.
type JobQueue interface {
	Dequeue(ctx context.Context) (*queue.Job, error)
	Retry(ctx context.Context, job *queue.Job) (requeued bool, err error)
	EnqueueVideoPublish(ctx context.Context, payload queue.VideoPublishPayload) error
}

// VideoPublisher processes video publish jobs. A nil host means publishing
// is disabled (missing credentials): jobs are consumed with a warning and
// records stay in processing until resolved manually.
type VideoPublisher struct {
	store   Store
	objects ObjectStore
	host    VideoHost
	queue   JobQueue
	logger  *zap.Logger
}

// NewVideoPublisher creates a video publish processor.
func NewVideoPublisher(store Store, objects ObjectStore, host VideoHost, q JobQueue, logger *zap.Logger) *VideoPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VideoPublisher{store: store, objects: objects, host: host, queue: q, logger: logger}
}

// Process executes one video publish job.
func (p *VideoPublisher) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeVideoPublish {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.VideoPublishPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	if !storage.IsVideoKey(payload.StorageKey) {
		p.logger.Info("skipping non-video object", zap.String("key", payload.StorageKey))
		return nil
	}
	if p.host == nil {
		p.logger.Warn("video host credentials missing, skipping publish", zap.String("key", payload.StorageKey))
		return nil
	}

	record, err := p.store.GetGalleryByStorageKey(ctx, payload.StorageKey)
	if err != nil {
		return fmt.Errorf("lookup record: %w", err)
	}
	if record == nil {
		p.logger.Warn("no gallery record for stored object", zap.String("key", payload.StorageKey))
		return nil
	}
	if record.VideoStatus == models.VideoProcessed {
		p.logger.Info("video already published", zap.String("id", record.ID))
		return nil
	}

	body, _, err := p.objects.GetObjectStream(ctx, payload.StorageKey)
	if err != nil {
		return fmt.Errorf("get object: %w", err)
	}
	defer body.Close()

	videoID, err := p.host.Upload(ctx, body)
	if err != nil {
		return fmt.Errorf("publish video: %w", err)
	}

	if err := p.store.SetVideoResult(ctx, record.ID, videoID, models.VideoProcessed); err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	p.logger.Info("video published",
		zap.String("id", record.ID),
		zap.String("youtube_id", videoID),
		zap.String("key", payload.StorageKey),
	)
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error. When a job
// exhausts its retries the record is marked failed so the dashboard can
// surface it.
func (p *VideoPublisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("video worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			requeued, reErr := p.queue.Retry(ctx, job)
			if reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			if !requeued {
				p.markFailed(ctx, job)
			}
			time.Sleep(queue.RetryBackoff)
		}
	}
}

func (p *VideoPublisher) markFailed(ctx context.Context, job *queue.Job) {
	var payload queue.VideoPublishPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return
	}
	record, err := p.store.GetGalleryByStorageKey(ctx, payload.StorageKey)
	if err != nil || record == nil {
		return
	}
	if err := p.store.SetVideoResult(ctx, record.ID, "", models.VideoFailed); err != nil {
		p.logger.Error("mark video failed", zap.Error(err), zap.String("id", record.ID))
	}
}
