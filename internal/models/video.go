package models

import (
	"fmt"
	"strings"
	"time"
)

// Video is a single search result, optionally enriched with engagement stats.
type Video struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Thumbnail    string `json:"thumbnail"`
	ChannelTitle string `json:"channel_title"`
	PublishedAt  string `json:"published_at"`
	ViewCount    string `json:"view_count,omitempty"`
	LikeCount    string `json:"like_count,omitempty"`
	CommentCount string `json:"comment_count,omitempty"`
}

// VideoStats holds engagement counts exactly as the platform reports them.
// The zero value means the platform returned no matching video.
type VideoStats struct {
	ViewCount    string `json:"view_count,omitempty"`
	LikeCount    string `json:"like_count,omitempty"`
	CommentCount string `json:"comment_count,omitempty"`
}

// IsEmpty reports whether no statistic was returned.
func (s VideoStats) IsEmpty() bool {
	return s.ViewCount == "" && s.LikeCount == "" && s.CommentCount == ""
}

// WithStats returns a copy of v carrying the given stats.
func (v Video) WithStats(s VideoStats) Video {
	v.ViewCount = s.ViewCount
	v.LikeCount = s.LikeCount
	v.CommentCount = s.CommentCount
	return v
}

// ChannelInitial is the first letter of the channel name, used as a badge.
func (v Video) ChannelInitial() string {
	for _, r := range v.ChannelTitle {
		return strings.ToUpper(string(r))
	}
	return ""
}

// PublishedDate formats PublishedAt as a calendar date, or returns it
// unchanged when it is not RFC 3339.
func (v Video) PublishedDate() string {
	t, err := time.Parse(time.RFC3339, v.PublishedAt)
	if err != nil {
		return v.PublishedAt
	}
	return t.Format("Jan 2, 2006")
}

// URL is the watch page for the video.
func (v Video) URL() string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s", v.ID)
}

type Comment struct {
	Author    string `json:"author"`
	Text      string `json:"text"`
	LikeCount int64  `json:"like_count"`
}

// Analysis is the structured comment insight for one video.
type Analysis struct {
	Summary             string   `json:"summary"`
	Sentiment           string   `json:"sentiment"`
	Keywords            []string `json:"keywords"`
	TopicRecommendation string   `json:"topicRecommendation"`
}

// Duration is the search length bucket understood by the platform.
type Duration string

const (
	DurationAny    Duration = "any"
	DurationShort  Duration = "short"
	DurationMedium Duration = "medium"
	DurationLong   Duration = "long"
)

// Durations lists the buckets in display order.
var Durations = []Duration{DurationAny, DurationShort, DurationMedium, DurationLong}

// ParseDuration maps user input to a Duration. Empty input means any.
func ParseDuration(s string) (Duration, error) {
	switch d := Duration(strings.ToLower(strings.TrimSpace(s))); d {
	case "":
		return DurationAny, nil
	case DurationAny, DurationShort, DurationMedium, DurationLong:
		return d, nil
	default:
		return "", fmt.Errorf("unknown video duration %q", s)
	}
}
