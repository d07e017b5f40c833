package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanna-memorial/backend/internal/models"
	"github.com/nanna-memorial/backend/pkg/queue"
)

type fakeStore struct {
	records map[string]*models.GalleryItem
	results map[string]string
	failed  map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		records: map[string]*models.GalleryItem{},
		results: map[string]string{},
		failed:  map[string]bool{},
	}
}

func (s *fakeStore) GetGalleryByStorageKey(_ context.Context, key string) (*models.GalleryItem, error) {
	return s.records[key], nil
}

func (s *fakeStore) SetVideoResult(_ context.Context, id, youtubeID string, status models.VideoStatus) error {
	for _, record := range s.records {
		if record.ID != id {
			continue
		}
		record.YoutubeID = youtubeID
		record.VideoStatus = status
	}
	switch status {
	case models.VideoProcessed:
		s.results[id] = youtubeID
	case models.VideoFailed:
		s.failed[id] = true
	}
	return nil
}

func (s *fakeStore) ListProcessingBefore(_ context.Context, cutoff time.Time) ([]models.GalleryItem, error) {
	var stuck []models.GalleryItem
	for _, record := range s.records {
		if record.VideoStatus == models.VideoProcessing && record.CreatedAt.Before(cutoff) {
			stuck = append(stuck, *record)
		}
	}
	return stuck, nil
}

type fakeObjects struct {
	body string
	err  error
}

func (o *fakeObjects) GetObjectStream(context.Context, string) (io.ReadCloser, string, error) {
	if o.err != nil {
		return nil, "", o.err
	}
	return io.NopCloser(strings.NewReader(o.body)), "video/mp4", nil
}

type fakeHost struct {
	videoID string
	err     error
	uploads int
}

func (h *fakeHost) Upload(_ context.Context, body io.Reader) (string, error) {
	io.Copy(io.Discard, body)
	h.uploads++
	if h.err != nil {
		return "", h.err
	}
	return h.videoID, nil
}

type fakeQueue struct {
	jobs []*queue.Job
	dlq  []*queue.Job
}

func (q *fakeQueue) Dequeue(context.Context) (*queue.Job, error) {
	if len(q.jobs) == 0 {
		return nil, nil
	}
	job := q.jobs[0]
	q.jobs = q.jobs[1:]
	return job, nil
}

func (q *fakeQueue) Retry(_ context.Context, job *queue.Job) (bool, error) {
	job.Attempt++
	if job.Attempt >= queue.MaxRetries {
		q.dlq = append(q.dlq, job)
		return false, nil
	}
	q.jobs = append(q.jobs, job)
	return true, nil
}

func (q *fakeQueue) EnqueueVideoPublish(_ context.Context, payload queue.VideoPublishPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	q.jobs = append(q.jobs, &queue.Job{
		ID:      "job-" + payload.ContentID,
		Type:    queue.JobTypeVideoPublish,
		Payload: body,
		Attempt: 0,
	})
	return nil
}

func videoJob(t *testing.T, contentID, key string) *queue.Job {
	t.Helper()
	body, err := json.Marshal(queue.VideoPublishPayload{ContentID: contentID, StorageKey: key})
	require.NoError(t, err)
	return &queue.Job{ID: "job-1", Type: queue.JobTypeVideoPublish, Payload: body}
}

func TestProcessPublishesVideo(t *testing.T) {
	store := newFakeStore()
	store.records["media/abc-clip.mp4"] = &models.GalleryItem{
		ID:          "g1",
		StorageKey:  "media/abc-clip.mp4",
		ContentType: models.MediaVideo,
		VideoStatus: models.VideoProcessing,
	}
	host := &fakeHost{videoID: "yt-123"}
	p := NewVideoPublisher(store, &fakeObjects{body: "frames"}, host, &fakeQueue{}, nil)

	err := p.Process(context.Background(), videoJob(t, "g1", "media/abc-clip.mp4"))
	require.NoError(t, err)

	record := store.records["media/abc-clip.mp4"]
	assert.Equal(t, models.VideoProcessed, record.VideoStatus)
	assert.Equal(t, "yt-123", record.YoutubeID)
	assert.Equal(t, 1, host.uploads)
}

func TestProcessSkipsNonVideo(t *testing.T) {
	store := newFakeStore()
	host := &fakeHost{videoID: "yt-123"}
	p := NewVideoPublisher(store, &fakeObjects{}, host, &fakeQueue{}, nil)

	err := p.Process(context.Background(), videoJob(t, "g1", "media/abc-photo.jpg"))
	require.NoError(t, err)
	assert.Zero(t, host.uploads)
}

func TestProcessNoHostConsumesJob(t *testing.T) {
	store := newFakeStore()
	store.records["media/abc-clip.mp4"] = &models.GalleryItem{
		ID:          "g1",
		StorageKey:  "media/abc-clip.mp4",
		VideoStatus: models.VideoProcessing,
	}
	p := NewVideoPublisher(store, &fakeObjects{}, nil, &fakeQueue{}, nil)

	err := p.Process(context.Background(), videoJob(t, "g1", "media/abc-clip.mp4"))
	require.NoError(t, err)
	assert.Equal(t, models.VideoProcessing, store.records["media/abc-clip.mp4"].VideoStatus)
}

func TestProcessMissingRecordConsumesJob(t *testing.T) {
	p := NewVideoPublisher(newFakeStore(), &fakeObjects{}, &fakeHost{videoID: "yt"}, &fakeQueue{}, nil)
	err := p.Process(context.Background(), videoJob(t, "gone", "media/abc-clip.mp4"))
	require.NoError(t, err)
}

func TestProcessSkipsAlreadyProcessed(t *testing.T) {
	store := newFakeStore()
	store.records["media/abc-clip.mp4"] = &models.GalleryItem{
		ID:          "g1",
		StorageKey:  "media/abc-clip.mp4",
		VideoStatus: models.VideoProcessed,
		YoutubeID:   "yt-old",
	}
	host := &fakeHost{videoID: "yt-new"}
	p := NewVideoPublisher(store, &fakeObjects{}, host, &fakeQueue{}, nil)

	err := p.Process(context.Background(), videoJob(t, "g1", "media/abc-clip.mp4"))
	require.NoError(t, err)
	assert.Zero(t, host.uploads)
	assert.Equal(t, "yt-old", store.records["media/abc-clip.mp4"].YoutubeID)
}

func TestProcessUploadFailure(t *testing.T) {
	store := newFakeStore()
	store.records["media/abc-clip.mp4"] = &models.GalleryItem{
		ID:          "g1",
		StorageKey:  "media/abc-clip.mp4",
		VideoStatus: models.VideoProcessing,
	}
	p := NewVideoPublisher(store, &fakeObjects{body: "frames"}, &fakeHost{err: errors.New("quota exceeded")}, &fakeQueue{}, nil)

	err := p.Process(context.Background(), videoJob(t, "g1", "media/abc-clip.mp4"))
	require.Error(t, err)
	assert.Equal(t, models.VideoProcessing, store.records["media/abc-clip.mp4"].VideoStatus)
}

func TestExhaustedRetriesMarkFailed(t *testing.T) {
	store := newFakeStore()
	store.records["media/abc-clip.mp4"] = &models.GalleryItem{
		ID:          "g1",
		StorageKey:  "media/abc-clip.mp4",
		VideoStatus: models.VideoProcessing,
	}
	q := &fakeQueue{}
	p := NewVideoPublisher(store, &fakeObjects{body: "frames"}, &fakeHost{err: errors.New("quota exceeded")}, q, nil)

	job := videoJob(t, "g1", "media/abc-clip.mp4")
	job.Attempt = queue.MaxRetries - 1
	err := p.Process(context.Background(), job)
	require.Error(t, err)

	requeued, reErr := q.Retry(context.Background(), job)
	require.NoError(t, reErr)
	assert.False(t, requeued)
	p.markFailed(context.Background(), job)

	assert.Equal(t, models.VideoFailed, store.records["media/abc-clip.mp4"].VideoStatus)
	assert.Len(t, q.dlq, 1)
}

func TestReconcilerRequeuesStuckVideos(t *testing.T) {
	store := newFakeStore()
	store.records["media/abc-old.mp4"] = &models.GalleryItem{
		ID:          "g1",
		StorageKey:  "media/abc-old.mp4",
		VideoStatus: models.VideoProcessing,
		CreatedAt:   time.Now().Add(-2 * time.Hour),
	}
	store.records["media/abc-fresh.mp4"] = &models.GalleryItem{
		ID:          "g2",
		StorageKey:  "media/abc-fresh.mp4",
		VideoStatus: models.VideoProcessing,
		CreatedAt:   time.Now(),
	}
	store.records["media/abc-done.mp4"] = &models.GalleryItem{
		ID:          "g3",
		StorageKey:  "media/abc-done.mp4",
		VideoStatus: models.VideoProcessed,
		CreatedAt:   time.Now().Add(-2 * time.Hour),
	}
	q := &fakeQueue{}
	r := NewReconciler(store, q, time.Minute, time.Hour, nil)

	require.NoError(t, r.Reconcile(context.Background()))
	require.Len(t, q.jobs, 1)

	var payload queue.VideoPublishPayload
	require.NoError(t, json.Unmarshal(q.jobs[0].Payload, &payload))
	assert.Equal(t, "g1", payload.ContentID)
	assert.Equal(t, "media/abc-old.mp4", payload.StorageKey)
}
