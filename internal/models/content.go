package models

import "time"

// Kind discriminates the three content record types sharing the content table.
type Kind string

const (
	KindTribute Kind = "tribute"
	KindGallery Kind = "gallery"
	KindMessage Kind = "message"
)

// Status is a content lifecycle state. Tributes and gallery items move
// pending -> approved; messages move new -> read. Deletion removes the row.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusNew      Status = "new"
	StatusRead     Status = "read"
)

// MediaType classifies a gallery item by its stored object.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
	MediaAudio MediaType = "audio"
)

// VideoStatus tracks the external publishing pipeline for video gallery items.
type VideoStatus string

const (
	VideoProcessing VideoStatus = "processing"
	VideoProcessed  VideoStatus = "processed"
	VideoFailed     VideoStatus = "failed"
)

// Tribute is a visitor-submitted tribute wall entry.
type Tribute struct {
	ID           string    `json:"id"`
	Status       Status    `json:"status"`
	Name         string    `json:"name"`
	Relationship string    `json:"relationship"`
	Message      string    `json:"message"`
	Email        string    `json:"email,omitempty"`
	CreatedAt    time.Time `json:"date"`
}

// GalleryItem is a gallery photo, video or audio record. StorageKey points at
// the uploaded S3 object; legacy-imported items may carry only Src (a local
// asset path). YoutubeID and VideoStatus are set by the publishing pipeline.
type GalleryItem struct {
	ID           string      `json:"id"`
	Status       Status      `json:"status"`
	Title        string      `json:"title"`
	Category     string      `json:"category"`
	Year         string      `json:"year,omitempty"`
	Relationship string      `json:"relationship,omitempty"`
	Description  string      `json:"description,omitempty"`
	StorageKey   string      `json:"key,omitempty"`
	Src          string      `json:"src,omitempty"`
	ContentType  MediaType   `json:"contentType"`
	YoutubeID    string      `json:"youtubeId,omitempty"`
	VideoStatus  VideoStatus `json:"videoStatus,omitempty"`
	Order        *int        `json:"order,omitempty"`
	IsLegacy     bool        `json:"isLegacy,omitempty"`
	CreatedAt    time.Time   `json:"date"`
}

// Message is a contact-form submission.
type Message struct {
	ID        string    `json:"id"`
	Status    Status    `json:"status"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject,omitempty"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"date"`
}

// DisplaySrc returns the path the site should render for a gallery item:
// the stored src when present (legacy local assets), otherwise the storage
// key rooted at /.
func (g *GalleryItem) DisplaySrc() string {
	if g.Src != "" {
		return g.Src
	}
	if g.StorageKey != "" {
		return "/" + g.StorageKey
	}
	return ""
}
