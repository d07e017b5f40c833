// Package youtube wraps the external video host. Uploaded tributes are
// published as unlisted videos; their ids are stamped back onto the
// gallery records by the worker.
package youtube

import (
	"context"
	"fmt"
	"io"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"github.com/nanna-memorial/backend/config"
)

// categoryPeopleAndBlogs is the YouTube category id used for all uploads.
const categoryPeopleAndBlogs = "22"

// Client uploads videos via the YouTube Data API using a long-lived refresh
// token.
type Client struct {
	service *yt.Service
}

// NewClient creates a YouTube client from OAuth credentials. Call only when
// cfg.Enabled(); missing credentials are the caller's signal to skip
// publishing entirely.
func NewClient(ctx context.Context, cfg config.YouTubeConfig) (*Client, error) {
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{yt.YoutubeUploadScope},
	}
	tokenSource := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})

	service, err := yt.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return &Client{service: service}, nil
}

// Upload streams a video to the host as an unlisted entry and returns the
// assigned video id.
func (c *Client) Upload(ctx context.Context, body io.Reader) (string, error) {
	video := &yt.Video{
		Snippet: &yt.VideoSnippet{
			Title:       fmt.Sprintf("Memorial Tribute - %s", time.Now().Format("2006-01-02")),
			Description: "Visitor-submitted tribute video for the memorial site",
			CategoryId:  categoryPeopleAndBlogs,
		},
		Status: &yt.VideoStatus{
			PrivacyStatus:           "unlisted",
			SelfDeclaredMadeForKids: false,
		},
	}

	call := c.service.Videos.Insert([]string{"snippet", "status"}, video).Media(body)
	resp, err := call.Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("youtube insert: %w", err)
	}
	return resp.Id, nil
}
