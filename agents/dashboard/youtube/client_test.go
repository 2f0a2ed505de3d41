package youtube

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"sync"
	"testing"

	"creator-dashboard/internal/models"
	"creator-dashboard/shared/config"
)

// fakeAPI records requests and serves canned responses per path suffix.
type fakeAPI struct {
	mu        sync.Mutex
	requests  []*url.URL
	responses map[string]fakeResponse
}

type fakeResponse struct {
	status int
	body   string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.URL)
	f.mu.Unlock()

	for suffix, resp := range f.responses {
		if strings.HasSuffix(r.URL.Path, suffix) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(resp.status)
			w.Write([]byte(resp.body))
			return
		}
	}
	http.NotFound(w, r)
}

func (f *fakeAPI) lastQuery(t *testing.T) url.Values {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		t.Fatal("No request reached the fake API")
	}
	return f.requests[len(f.requests)-1].Query()
}

func newTestClient(t *testing.T, responses map[string]fakeResponse) (*Client, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{responses: responses}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	client, err := NewClient(context.Background(), &config.YouTubeConfig{Endpoint: srv.URL + "/"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client, api
}

const searchBody = `{
  "items": [
    {
      "id": {"kind": "youtube#video", "videoId": "abc123"},
      "snippet": {
        "title": "Cats being cats",
        "description": "A compilation",
        "channelTitle": "Meow Channel",
        "publishedAt": "2024-03-01T10:00:00Z",
        "thumbnails": {"high": {"url": "https://i.ytimg.com/vi/abc123/hqdefault.jpg"}}
      }
    },
    {
      "id": {"kind": "youtube#video", "videoId": "def456"},
      "snippet": {
        "title": "Kitten school",
        "description": "",
        "channelTitle": "Paws",
        "publishedAt": "2024-02-01T10:00:00Z"
      }
    }
  ]
}`

func TestSearchVideos(t *testing.T) {
	client, api := newTestClient(t, map[string]fakeResponse{
		"/search": {status: http.StatusOK, body: searchBody},
	})

	videos, err := client.SearchVideos(context.Background(), "cats", models.DurationShort, "test-key")
	if err != nil {
		t.Fatalf("SearchVideos() error = %v", err)
	}

	q := api.lastQuery(t)
	checks := map[string]string{
		"q":             "cats",
		"maxResults":    "15",
		"type":          "video",
		"videoDuration": "short",
		"key":           "test-key",
	}
	for k, want := range checks {
		if got := q.Get(k); got != want {
			t.Errorf("query %s = %q, want %q", k, got, want)
		}
	}

	if got := q["part"]; !reflect.DeepEqual(got, []string{"snippet"}) {
		t.Errorf("part = %v, want [snippet]", got)
	}

	if len(videos) != 2 {
		t.Fatalf("got %d videos, want 2", len(videos))
	}
	first := videos[0]
	if first.ID != "abc123" || first.Title != "Cats being cats" || first.ChannelTitle != "Meow Channel" {
		t.Errorf("unexpected first video: %+v", first)
	}
	if first.Thumbnail != "https://i.ytimg.com/vi/abc123/hqdefault.jpg" {
		t.Errorf("Thumbnail = %q", first.Thumbnail)
	}
	if first.PublishedAt != "2024-03-01T10:00:00Z" {
		t.Errorf("PublishedAt = %q", first.PublishedAt)
	}
	if videos[1].Thumbnail != "" {
		t.Errorf("missing thumbnail should map to empty, got %q", videos[1].Thumbnail)
	}
	if first.ViewCount != "" {
		t.Error("search results should not carry statistics")
	}
}

func TestSearchVideosDurationAnyOmitsFilter(t *testing.T) {
	client, api := newTestClient(t, map[string]fakeResponse{
		"/search": {status: http.StatusOK, body: `{"items": []}`},
	})

	videos, err := client.SearchVideos(context.Background(), "cats", models.DurationAny, "test-key")
	if err != nil {
		t.Fatalf("SearchVideos() error = %v", err)
	}
	if len(videos) != 0 {
		t.Errorf("got %d videos, want 0", len(videos))
	}

	q := api.lastQuery(t)
	if _, ok := q["videoDuration"]; ok {
		t.Errorf("videoDuration should be omitted for any, got %q", q.Get("videoDuration"))
	}
	if q.Get("maxResults") != "15" {
		t.Errorf("maxResults = %q, want 15", q.Get("maxResults"))
	}
}

func TestSearchVideosMissingCredential(t *testing.T) {
	client, api := newTestClient(t, nil)

	_, err := client.SearchVideos(context.Background(), "cats", models.DurationAny, "")
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("error = %v, want ErrMissingCredential", err)
	}
	if len(api.requests) != 0 {
		t.Errorf("no request should be issued without a key, got %d", len(api.requests))
	}
}

func TestDetailsAndCommentsMissingCredential(t *testing.T) {
	client, api := newTestClient(t, nil)

	if _, err := client.GetVideoDetails(context.Background(), "abc123", ""); !errors.Is(err, ErrMissingCredential) {
		t.Errorf("GetVideoDetails() error = %v, want ErrMissingCredential", err)
	}
	if _, err := client.GetVideoComments(context.Background(), "abc123", ""); !errors.Is(err, ErrMissingCredential) {
		t.Errorf("GetVideoComments() error = %v, want ErrMissingCredential", err)
	}
	if len(api.requests) != 0 {
		t.Errorf("no request should be issued without a key, got %d", len(api.requests))
	}
}

func TestSearchVideosUpstreamError(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{
			name:    "Upstream message",
			body:    `{"error": {"code": 403, "message": "The request cannot be completed because you have exceeded your quota."}}`,
			wantMsg: "The request cannot be completed because you have exceeded your quota.",
		},
		{
			name:    "No message",
			body:    `{}`,
			wantMsg: "Failed to fetch videos",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, map[string]fakeResponse{
				"/search": {status: http.StatusForbidden, body: tt.body},
			})

			_, err := client.SearchVideos(context.Background(), "cats", models.DurationAny, "test-key")
			var upErr *UpstreamError
			if !errors.As(err, &upErr) {
				t.Fatalf("error = %v, want *UpstreamError", err)
			}
			if upErr.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", upErr.Message, tt.wantMsg)
			}
			if upErr.Status != http.StatusForbidden {
				t.Errorf("Status = %d, want 403", upErr.Status)
			}
		})
	}
}

func TestGetVideoDetails(t *testing.T) {
	client, api := newTestClient(t, map[string]fakeResponse{
		"/videos": {status: http.StatusOK, body: `{
  "items": [{
    "id": "abc123",
    "snippet": {"title": "Cats being cats"},
    "statistics": {"viewCount": "1500", "likeCount": "120", "commentCount": "33"}
  }]
}`},
	})

	stats, err := client.GetVideoDetails(context.Background(), "abc123", "test-key")
	if err != nil {
		t.Fatalf("GetVideoDetails() error = %v", err)
	}

	want := models.VideoStats{ViewCount: "1500", LikeCount: "120", CommentCount: "33"}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}

	q := api.lastQuery(t)
	if q.Get("id") != "abc123" {
		t.Errorf("id = %q, want abc123", q.Get("id"))
	}
	if got := q["part"]; !reflect.DeepEqual(got, []string{"snippet", "statistics"}) {
		t.Errorf("part = %v, want [snippet statistics]", got)
	}
}

func TestGetVideoDetailsNoItems(t *testing.T) {
	client, _ := newTestClient(t, map[string]fakeResponse{
		"/videos": {status: http.StatusOK, body: `{"items": []}`},
	})

	stats, err := client.GetVideoDetails(context.Background(), "gone", "test-key")
	if err != nil {
		t.Fatalf("zero items should not be an error, got %v", err)
	}
	if !stats.IsEmpty() {
		t.Errorf("stats = %+v, want empty", stats)
	}
}

func TestGetVideoDetailsUpstreamError(t *testing.T) {
	client, _ := newTestClient(t, map[string]fakeResponse{
		"/videos": {status: http.StatusInternalServerError, body: `{}`},
	})

	_, err := client.GetVideoDetails(context.Background(), "abc123", "test-key")
	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("error = %v, want *UpstreamError", err)
	}
	if upErr.Message != "Failed to fetch video details" {
		t.Errorf("Message = %q", upErr.Message)
	}
}

func TestGetVideoComments(t *testing.T) {
	client, api := newTestClient(t, map[string]fakeResponse{
		"/commentThreads": {status: http.StatusOK, body: `{
  "items": [
    {"snippet": {"topLevelComment": {"snippet": {"authorDisplayName": "@ana", "textDisplay": "So good", "likeCount": 12}}}},
    {"snippet": {"topLevelComment": {"snippet": {"authorDisplayName": "@bo", "textDisplay": "Meh", "likeCount": 0}}}},
    {"snippet": {}}
  ]
}`},
	})

	comments, err := client.GetVideoComments(context.Background(), "abc123", "test-key")
	if err != nil {
		t.Fatalf("GetVideoComments() error = %v", err)
	}

	q := api.lastQuery(t)
	if q.Get("videoId") != "abc123" || q.Get("maxResults") != "50" || q.Get("order") != "relevance" {
		t.Errorf("unexpected query: %v", q)
	}

	if len(comments) != 2 {
		t.Fatalf("got %d comments, want 2", len(comments))
	}
	if comments[0] != (models.Comment{Author: "@ana", Text: "So good", LikeCount: 12}) {
		t.Errorf("first comment = %+v", comments[0])
	}
}

func TestGetVideoCommentsDisabled(t *testing.T) {
	for _, status := range []int{http.StatusForbidden, http.StatusNotFound, http.StatusInternalServerError} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			client, _ := newTestClient(t, map[string]fakeResponse{
				"/commentThreads": {status: status, body: `{"error": {"code": 403, "message": "commentsDisabled"}}`},
			})

			comments, err := client.GetVideoComments(context.Background(), "abc123", "test-key")
			if err != nil {
				t.Fatalf("non-success status should not be an error, got %v", err)
			}
			if comments == nil || len(comments) != 0 {
				t.Errorf("comments = %v, want empty slice", comments)
			}
		})
	}
}
