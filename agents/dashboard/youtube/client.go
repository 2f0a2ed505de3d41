package youtube

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"creator-dashboard/internal/models"
	"creator-dashboard/shared/config"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const (
	searchMaxResults  = 15
	commentMaxResults = 50
)

// ErrMissingCredential is returned when no API key was supplied.
var ErrMissingCredential = errors.New("YouTube API Key is required")

// UpstreamError is a non-success response from the YouTube Data API.
type UpstreamError struct {
	Op      string
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return e.Message
}

// Client wraps the YouTube Data API. The API key is supplied per call
// because each dashboard user brings their own.
type Client struct {
	service *youtube.Service
}

func NewClient(ctx context.Context, cfg *config.YouTubeConfig) (*Client, error) {
	opts := []option.ClientOption{
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	return &Client{service: service}, nil
}

// SearchVideos runs a video search capped at 15 results. Results are
// returned in upstream order without filtering.
func (c *Client) SearchVideos(ctx context.Context, query string, duration models.Duration, apiKey string) ([]models.Video, error) {
	if apiKey == "" {
		return nil, ErrMissingCredential
	}

	call := c.service.Search.List([]string{"snippet"}).
		Q(query).
		MaxResults(searchMaxResults).
		Type("video").
		Context(ctx)
	if duration != "" && duration != models.DurationAny {
		call = call.VideoDuration(string(duration))
	}

	resp, err := call.Do(googleapi.QueryParameter("key", apiKey))
	if err != nil {
		return nil, upstreamError("search", err, "Failed to fetch videos")
	}

	videos := make([]models.Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		videos = append(videos, videoFromSearchResult(item))
	}

	log.Printf("Search %q (%s) returned %d videos", query, duration, len(videos))
	return videos, nil
}

func videoFromSearchResult(item *youtube.SearchResult) models.Video {
	var v models.Video
	if item.Id != nil {
		v.ID = item.Id.VideoId
	}
	if s := item.Snippet; s != nil {
		v.Title = s.Title
		v.Description = s.Description
		v.ChannelTitle = s.ChannelTitle
		v.PublishedAt = s.PublishedAt
		if s.Thumbnails != nil && s.Thumbnails.High != nil {
			v.Thumbnail = s.Thumbnails.High.Url
		}
	}
	return v
}

// GetVideoDetails fetches engagement statistics. A video the platform does
// not return yields empty stats rather than an error.
func (c *Client) GetVideoDetails(ctx context.Context, videoID, apiKey string) (models.VideoStats, error) {
	if apiKey == "" {
		return models.VideoStats{}, ErrMissingCredential
	}

	resp, err := c.service.Videos.List([]string{"snippet", "statistics"}).
		Id(videoID).
		Context(ctx).
		Do(googleapi.QueryParameter("key", apiKey))
	if err != nil {
		return models.VideoStats{}, upstreamError("videos", err, "Failed to fetch video details")
	}

	if len(resp.Items) == 0 || resp.Items[0].Statistics == nil {
		log.Printf("No details returned for video %s", videoID)
		return models.VideoStats{}, nil
	}

	stats := resp.Items[0].Statistics
	return models.VideoStats{
		ViewCount:    strconv.FormatUint(stats.ViewCount, 10),
		LikeCount:    strconv.FormatUint(stats.LikeCount, 10),
		CommentCount: strconv.FormatUint(stats.CommentCount, 10),
	}, nil
}

// GetVideoComments fetches up to 50 top-level comments by relevance. Any
// error status from the platform (comments disabled, video private) yields
// an empty list.
func (c *Client) GetVideoComments(ctx context.Context, videoID, apiKey string) ([]models.Comment, error) {
	if apiKey == "" {
		return nil, ErrMissingCredential
	}

	resp, err := c.service.CommentThreads.List([]string{"snippet"}).
		VideoId(videoID).
		MaxResults(commentMaxResults).
		Order("relevance").
		Context(ctx).
		Do(googleapi.QueryParameter("key", apiKey))
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			log.Printf("Comments unavailable for video %s (status %d)", videoID, apiErr.Code)
			return []models.Comment{}, nil
		}
		return nil, fmt.Errorf("failed to fetch comments for %s: %w", videoID, err)
	}

	comments := make([]models.Comment, 0, len(resp.Items))
	for _, thread := range resp.Items {
		if thread.Snippet == nil || thread.Snippet.TopLevelComment == nil || thread.Snippet.TopLevelComment.Snippet == nil {
			continue
		}
		s := thread.Snippet.TopLevelComment.Snippet
		comments = append(comments, models.Comment{
			Author:    s.AuthorDisplayName,
			Text:      s.TextDisplay,
			LikeCount: s.LikeCount,
		})
	}

	return comments, nil
}

func upstreamError(op string, err error, fallback string) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%s request failed: %w", op, err)
	}

	msg := apiErr.Message
	if msg == "" {
		msg = fallback
	}
	return &UpstreamError{Op: op, Status: apiErr.Code, Message: msg}
}
