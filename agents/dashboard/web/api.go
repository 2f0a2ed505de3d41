package web

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"creator-dashboard/agents/dashboard/youtube"
	"creator-dashboard/internal/models"
	"creator-dashboard/shared/ai"

	"github.com/go-chi/chi/v5"
)

const apiKeyHeader = "X-YouTube-Key"

type apiError struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// analysisResponse omits stats when the platform returned none.
type analysisResponse struct {
	VideoID      string             `json:"videoId"`
	Stats        *models.VideoStats `json:"stats,omitempty"`
	CommentCount int                `json:"commentCount"`
	Analysis     *models.Analysis   `json:"analysis"`
}

type outlineRequest struct {
	Keyword string `json:"keyword"`
}

type outlineResponse struct {
	Keyword string `json:"keyword"`
	Outline string `json:"outline"`
}

func (s *Server) apiKey(r *http.Request) string {
	if key := strings.TrimSpace(r.Header.Get(apiKeyHeader)); key != "" {
		return key
	}
	return s.controller.APIKey(clientID(r))
}

func (s *Server) handleAPISearch(w http.ResponseWriter, r *http.Request) {
	duration, err := models.ParseDuration(r.URL.Query().Get("duration"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error(), Kind: "bad_request"})
		return
	}

	videos, err := s.videos.SearchVideos(r.Context(), r.URL.Query().Get("q"), duration, s.apiKey(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if videos == nil {
		videos = []models.Video{}
	}
	writeJSON(w, http.StatusOK, videos)
}

func (s *Server) handleAPIAnalysis(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "id")
	key := s.apiKey(r)

	stats, err := s.videos.GetVideoDetails(r.Context(), videoID, key)
	if err != nil {
		writeError(w, err)
		return
	}

	comments, err := s.videos.GetVideoComments(r.Context(), videoID, key)
	if err != nil {
		writeError(w, err)
		return
	}

	texts := make([]string, len(comments))
	for i, c := range comments {
		texts[i] = c.Text
	}

	analysis, err := s.insights.AnalyzeComments(r.Context(), r.URL.Query().Get("title"), texts)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := analysisResponse{
		VideoID:      videoID,
		CommentCount: len(comments),
		Analysis:     analysis,
	}
	if !stats.IsEmpty() {
		resp.Stats = &stats
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAPIOutline(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, DefaultBodyLimit)

	var req outlineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid JSON body", Kind: "bad_request"})
		return
	}
	req.Keyword = strings.TrimSpace(req.Keyword)
	if req.Keyword == "" {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "keyword is required", Kind: "bad_request"})
		return
	}

	outline, err := s.insights.GenerateOutline(r.Context(), req.Keyword)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outlineResponse{Keyword: req.Keyword, Outline: outline})
}

// writeError maps a service error onto a status code and error kind.
func writeError(w http.ResponseWriter, err error) {
	var upErr *youtube.UpstreamError
	switch {
	case errors.Is(err, youtube.ErrMissingCredential):
		writeJSON(w, http.StatusUnauthorized, apiError{Error: "missing YouTube API key", Kind: "missing_credential"})
	case errors.Is(err, ai.ErrMalformedResponse):
		writeJSON(w, http.StatusBadGateway, apiError{Error: err.Error(), Kind: "malformed_response"})
	case errors.As(err, &upErr):
		writeJSON(w, http.StatusBadGateway, apiError{Error: upErr.Message, Kind: "upstream"})
	case errors.Is(err, ai.ErrGeneration):
		writeJSON(w, http.StatusBadGateway, apiError{Error: "AI request failed", Kind: "upstream"})
	default:
		log.Printf("API request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, apiError{Error: "internal error", Kind: "internal"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
