package dashboard

import (
	"errors"
	"fmt"

	"creator-dashboard/agents/dashboard/youtube"
	"creator-dashboard/internal/models"
	"creator-dashboard/shared/ai"
)

// View is one of the three dashboard screens.
type View string

const (
	ViewSearch   View = "SEARCH"
	ViewAnalysis View = "ANALYSIS"
	ViewSettings View = "SETTINGS"
)

// ParseView maps a path or form value to a View.
func ParseView(s string) (View, error) {
	switch v := View(s); v {
	case ViewSearch, ViewAnalysis, ViewSettings:
		return v, nil
	}
	switch s {
	case "search", "":
		return ViewSearch, nil
	case "analysis":
		return ViewAnalysis, nil
	case "settings":
		return ViewSettings, nil
	}
	return "", fmt.Errorf("unknown view %q", s)
}

const (
	noticeMissingKey      = "Please provide a YouTube API Key in settings."
	noticeOutlineFailed   = "Failed to generate outline."
	noticeMalformed       = "Error: the AI returned an analysis that could not be read. Please try again."
	noticeChatFailed      = "The strategy consultant could not answer. Please try again."
	noticeVideoNotInList  = "That video is no longer in the search results."
	defaultEngagementRate = 50
)

// State is everything one browser session sees. Apply never mutates a
// State in place; slices are copied before they are extended.
type State struct {
	View            View
	Query           string
	Duration        models.Duration
	EngagementRatio int

	Videos    []models.Video
	Searching bool
	SearchSeq uint64

	Selected     *models.Video
	CommentCount int
	Analysis     *models.Analysis
	Analyzing    bool
	// Generation increments on every video selection. Events from an
	// older selection are dropped.
	Generation uint64

	Keyword   string
	Outline   string
	Outlining bool

	Chat     []models.ChatMessage
	Chatting bool

	Notice string
}

// NewState is the state of a fresh session.
func NewState() State {
	return State{
		View:            ViewSearch,
		Duration:        models.DurationAny,
		EngagementRatio: defaultEngagementRate,
	}
}

// Busy reports whether any upstream call is in flight.
func (s State) Busy() bool {
	return s.Searching || s.Analyzing || s.Outlining || s.Chatting
}

// FindVideo looks up a video in the current results.
func (s State) FindVideo(id string) (models.Video, bool) {
	for _, v := range s.Videos {
		if v.ID == id {
			return v, true
		}
	}
	return models.Video{}, false
}

// Event is a completed user action or upstream result.
type Event interface {
	isEvent()
}

type (
	Navigated struct{ View View }
	// CredentialMissing sends the user to settings instead of searching.
	CredentialMissing struct{}
	NoticeRaised      struct{ Text string }
	NoticeDismissed   struct{}
	FiltersChanged    struct {
		Duration        models.Duration
		EngagementRatio int
	}

	SearchStarted struct {
		Query           string
		Duration        models.Duration
		EngagementRatio int
	}
	SearchSucceeded struct {
		Seq    uint64
		Videos []models.Video
	}
	SearchFailed struct {
		Seq uint64
		Err error
	}

	AnalysisStarted struct{ Video models.Video }
	DetailsLoaded   struct {
		Generation   uint64
		Video        models.Video
		CommentCount int
	}
	AnalysisSucceeded struct {
		Generation uint64
		Analysis   models.Analysis
		Message    models.ChatMessage
	}
	AnalysisFailed struct {
		Generation uint64
		Err        error
	}

	KeywordSelected  struct{ Keyword string }
	OutlineSucceeded struct {
		Generation uint64
		Keyword    string
		Outline    string
	}
	OutlineFailed struct {
		Generation uint64
		Keyword    string
		Err        error
	}

	ChatSent     struct{ Message models.ChatMessage }
	ChatAnswered struct {
		Generation uint64
		Message    models.ChatMessage
	}
	ChatFailed struct {
		Generation uint64
		Err        error
	}
)

func (Navigated) isEvent()         {}
func (CredentialMissing) isEvent() {}
func (NoticeRaised) isEvent()      {}
func (NoticeDismissed) isEvent()   {}
func (FiltersChanged) isEvent()    {}
func (SearchStarted) isEvent()     {}
func (SearchSucceeded) isEvent()   {}
func (SearchFailed) isEvent()      {}
func (AnalysisStarted) isEvent()   {}
func (DetailsLoaded) isEvent()     {}
func (AnalysisSucceeded) isEvent() {}
func (AnalysisFailed) isEvent()    {}
func (KeywordSelected) isEvent()   {}
func (OutlineSucceeded) isEvent()  {}
func (OutlineFailed) isEvent()     {}
func (ChatSent) isEvent()          {}
func (ChatAnswered) isEvent()      {}
func (ChatFailed) isEvent()        {}

// Apply returns the state that results from ev.
func Apply(s State, ev Event) State {
	switch e := ev.(type) {
	case Navigated:
		s.View = e.View

	case CredentialMissing:
		s.View = ViewSettings
		s.Notice = noticeMissingKey

	case NoticeRaised:
		s.Notice = e.Text

	case NoticeDismissed:
		s.Notice = ""

	case FiltersChanged:
		s.Duration = e.Duration
		s.EngagementRatio = e.EngagementRatio

	case SearchStarted:
		s.Query = e.Query
		s.Duration = e.Duration
		s.EngagementRatio = e.EngagementRatio
		s.Searching = true
		s.SearchSeq++
		s.Notice = ""

	case SearchSucceeded:
		if e.Seq != s.SearchSeq {
			return s
		}
		s.Searching = false
		s.Videos = e.Videos
		s.View = ViewSearch

	case SearchFailed:
		if e.Seq != s.SearchSeq {
			return s
		}
		s.Searching = false
		s.Notice = errorNotice(e.Err, "")

	case AnalysisStarted:
		s.Generation++
		s.Analyzing = true
		s.Selected = nil
		s.Analysis = nil
		s.Keyword = ""
		s.Outline = ""
		s.Outlining = false
		s.Chat = nil
		s.Chatting = false
		s.CommentCount = 0
		s.Notice = ""

	case DetailsLoaded:
		if e.Generation != s.Generation {
			return s
		}
		v := e.Video
		s.Selected = &v
		s.CommentCount = e.CommentCount
		s.View = ViewAnalysis

	case AnalysisSucceeded:
		if e.Generation != s.Generation {
			return s
		}
		a := e.Analysis
		s.Analysis = &a
		s.Analyzing = false
		s.Chat = []models.ChatMessage{e.Message}

	case AnalysisFailed:
		if e.Generation != s.Generation {
			return s
		}
		s.Analyzing = false
		s.Notice = errorNotice(e.Err, "Error: ")

	case KeywordSelected:
		s.Keyword = e.Keyword
		s.Outline = ""
		s.Outlining = true

	case OutlineSucceeded:
		if e.Generation != s.Generation || e.Keyword != s.Keyword {
			return s
		}
		s.Outline = e.Outline
		s.Outlining = false

	case OutlineFailed:
		if e.Generation != s.Generation || e.Keyword != s.Keyword {
			return s
		}
		s.Outlining = false
		s.Notice = noticeOutlineFailed

	case ChatSent:
		s.Chat = appendMessage(s.Chat, e.Message)
		s.Chatting = true

	case ChatAnswered:
		if e.Generation != s.Generation {
			return s
		}
		s.Chat = appendMessage(s.Chat, e.Message)
		s.Chatting = false

	case ChatFailed:
		if e.Generation != s.Generation {
			return s
		}
		s.Chatting = false
		s.Notice = noticeChatFailed
	}

	return s
}

func appendMessage(chat []models.ChatMessage, m models.ChatMessage) []models.ChatMessage {
	out := make([]models.ChatMessage, len(chat), len(chat)+1)
	copy(out, chat)
	return append(out, m)
}

// errorNotice turns an action failure into the text shown to the user.
func errorNotice(err error, prefix string) string {
	var upErr *youtube.UpstreamError
	switch {
	case errors.Is(err, youtube.ErrMissingCredential):
		return noticeMissingKey
	case errors.Is(err, ai.ErrMalformedResponse):
		return noticeMalformed
	case errors.As(err, &upErr):
		return prefix + upErr.Message
	case err == nil:
		return ""
	default:
		return prefix + err.Error()
	}
}
