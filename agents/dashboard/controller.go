package dashboard

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"creator-dashboard/internal/models"
	"creator-dashboard/shared/monitoring"
)

// VideoSource is the YouTube side of the dashboard.
type VideoSource interface {
	SearchVideos(ctx context.Context, query string, duration models.Duration, apiKey string) ([]models.Video, error)
	GetVideoDetails(ctx context.Context, videoID, apiKey string) (models.VideoStats, error)
	GetVideoComments(ctx context.Context, videoID, apiKey string) ([]models.Comment, error)
}

// InsightSource is the generative side of the dashboard.
type InsightSource interface {
	AnalyzeComments(ctx context.Context, videoTitle string, comments []string) (*models.Analysis, error)
	GenerateOutline(ctx context.Context, keyword string) (string, error)
	Chat(ctx context.Context, history []models.ChatMessage, message string) (string, error)
}

// CredentialStore keeps each client's YouTube API key.
// *storage.KeyStore satisfies it.
type CredentialStore interface {
	Get(clientID string) (string, bool)
	Set(clientID, apiKey string) error
}

// Services are the collaborators a Controller drives.
type Services struct {
	Videos   VideoSource
	Insights InsightSource
	Keys     CredentialStore
	// DefaultAPIKey is used for clients that have not saved a key.
	DefaultAPIKey string
	Monitor       *monitoring.Monitor
}

// Controller runs user actions against the upstream services and feeds
// their outcomes into a Session as events. Each action's upstream calls
// are issued strictly one after another.
type Controller struct {
	videos     VideoSource
	insights   InsightSource
	keys       CredentialStore
	defaultKey string
	monitor    *monitoring.Monitor
	now        func() time.Time
}

func NewController(svc Services) *Controller {
	if svc.Monitor == nil {
		svc.Monitor = monitoring.NewMonitor()
	}
	return &Controller{
		videos:     svc.Videos,
		insights:   svc.Insights,
		keys:       svc.Keys,
		defaultKey: svc.DefaultAPIKey,
		monitor:    svc.Monitor,
		now:        time.Now,
	}
}

// APIKey returns the key saved by clientID, or the configured default.
func (c *Controller) APIKey(clientID string) string {
	if c.keys != nil {
		if key, ok := c.keys.Get(clientID); ok {
			return key
		}
	}
	return c.defaultKey
}

// HasSavedKey reports whether clientID stored a key of its own.
func (c *Controller) HasSavedKey(clientID string) bool {
	if c.keys == nil {
		return false
	}
	_, ok := c.keys.Get(clientID)
	return ok
}

// SaveKey stores the client's API key and returns to the search view.
// A blank submission keeps whatever key is already saved.
func (c *Controller) SaveKey(sess *Session, clientID, apiKey string) (State, error) {
	if c.keys == nil {
		return sess.Snapshot(), fmt.Errorf("no credential store configured")
	}
	if apiKey = strings.TrimSpace(apiKey); apiKey != "" {
		if err := c.keys.Set(clientID, apiKey); err != nil {
			return sess.Snapshot(), fmt.Errorf("failed to save API key: %w", err)
		}
	}
	sess.Dispatch(NoticeDismissed{})
	return sess.Dispatch(Navigated{View: ViewSearch}), nil
}

// ClearKey forgets the client's saved key. The settings view stays open.
func (c *Controller) ClearKey(sess *Session, clientID string) (State, error) {
	if c.keys == nil {
		return sess.Snapshot(), fmt.Errorf("no credential store configured")
	}
	if err := c.keys.Set(clientID, ""); err != nil {
		return sess.Snapshot(), fmt.Errorf("failed to remove API key: %w", err)
	}
	return sess.Dispatch(Navigated{View: ViewSettings}), nil
}

// Navigate switches views. It is always permitted.
func (c *Controller) Navigate(sess *Session, view View) State {
	return sess.Dispatch(Navigated{View: view})
}

// Search submits a query. Without an API key the user is sent to settings
// and nothing is requested.
func (c *Controller) Search(ctx context.Context, sess *Session, query string, duration models.Duration, ratio int, apiKey string) State {
	if apiKey == "" {
		return sess.Dispatch(CredentialMissing{})
	}

	st := sess.Dispatch(SearchStarted{Query: query, Duration: duration, EngagementRatio: ratio})
	seq := st.SearchSeq

	videos, err := c.videos.SearchVideos(ctx, query, duration, apiKey)
	if err != nil {
		c.monitor.RecordActionFailure("search", err)
		return sess.Dispatch(SearchFailed{Seq: seq, Err: err})
	}

	return sess.Dispatch(SearchSucceeded{Seq: seq, Videos: videos})
}

// SelectVideo loads details, then comments, then the comment analysis.
// The first failure stops the chain and becomes the session notice.
func (c *Controller) SelectVideo(ctx context.Context, sess *Session, videoID, apiKey string) State {
	if apiKey == "" {
		return sess.Dispatch(CredentialMissing{})
	}

	video, ok := sess.Snapshot().FindVideo(videoID)
	if !ok {
		return sess.Dispatch(NoticeRaised{Text: noticeVideoNotInList})
	}

	st := sess.Dispatch(AnalysisStarted{Video: video})
	gen := st.Generation
	start := c.now()

	stats, err := c.videos.GetVideoDetails(ctx, video.ID, apiKey)
	if err != nil {
		c.monitor.RecordActionFailure("details", err)
		return sess.Dispatch(AnalysisFailed{Generation: gen, Err: err})
	}

	comments, err := c.videos.GetVideoComments(ctx, video.ID, apiKey)
	if err != nil {
		c.monitor.RecordActionFailure("comments", err)
		return sess.Dispatch(AnalysisFailed{Generation: gen, Err: err})
	}

	full := video.WithStats(stats)
	sess.Dispatch(DetailsLoaded{Generation: gen, Video: full, CommentCount: len(comments)})

	texts := make([]string, len(comments))
	for i, cm := range comments {
		texts[i] = cm.Text
	}

	analysis, err := c.insights.AnalyzeComments(ctx, video.Title, texts)
	if err != nil {
		c.monitor.RecordActionFailure("analysis", err)
		return sess.Dispatch(AnalysisFailed{Generation: gen, Err: err})
	}

	log.Printf("Analyzed video %s (%d comments) in %v", video.ID, len(comments), c.now().Sub(start))

	msg := models.NewAssistantMessage(
		fmt.Sprintf("Analyzed %s. Based on %d comments, I've extracted the key sentiment and topics below.", full.Title, len(comments)),
		c.now(),
	)
	return sess.Dispatch(AnalysisSucceeded{Generation: gen, Analysis: *analysis, Message: msg})
}

// SelectKeyword generates a script outline. A failure only sets a notice;
// the analysis stays on screen.
func (c *Controller) SelectKeyword(ctx context.Context, sess *Session, keyword string) State {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return sess.Snapshot()
	}

	gen := sess.Dispatch(KeywordSelected{Keyword: keyword}).Generation

	outline, err := c.insights.GenerateOutline(ctx, keyword)
	if err != nil {
		c.monitor.RecordActionFailure("outline", err)
		return sess.Dispatch(OutlineFailed{Generation: gen, Keyword: keyword, Err: err})
	}

	return sess.Dispatch(OutlineSucceeded{Generation: gen, Keyword: keyword, Outline: outline})
}

// Chat sends a message to the strategy consultant with the transcript so
// far as context.
func (c *Controller) Chat(ctx context.Context, sess *Session, message string) State {
	message = strings.TrimSpace(message)
	if message == "" {
		return sess.Snapshot()
	}

	st := sess.Dispatch(ChatSent{Message: models.NewUserMessage(message, c.now())})
	gen := st.Generation
	history := st.Chat[:len(st.Chat)-1]

	reply, err := c.insights.Chat(ctx, history, message)
	if err != nil {
		c.monitor.RecordActionFailure("chat", err)
		return sess.Dispatch(ChatFailed{Generation: gen, Err: err})
	}

	return sess.Dispatch(ChatAnswered{Generation: gen, Message: models.NewAssistantMessage(reply, c.now())})
}
