package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"creator-dashboard/agents/dashboard"
	"creator-dashboard/internal/models"
	"creator-dashboard/shared/monitoring"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	clientCookie    = "dashboard_client"
	clientCookieAge = 365 * 24 * time.Hour
	// DefaultBodyLimit caps form and JSON request bodies.
	DefaultBodyLimit int64 = 1 << 20
)

type ctxKey int

const clientIDKey ctxKey = iota

// Options configures the HTTP surface.
type Options struct {
	AllowedOrigins []string
	SecureCookies  bool
}

// Server renders the dashboard and exposes a small JSON API.
type Server struct {
	controller *dashboard.Controller
	sessions   *dashboard.SessionStore
	videos     dashboard.VideoSource
	insights   dashboard.InsightSource
	health     *monitoring.HealthServer
	tmpl       *template.Template
	opts       Options
}

func NewServer(controller *dashboard.Controller, sessions *dashboard.SessionStore, videos dashboard.VideoSource, insights dashboard.InsightSource, monitor *monitoring.Monitor, opts Options) (*Server, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Server{
		controller: controller,
		sessions:   sessions,
		videos:     videos,
		insights:   insights,
		health:     monitoring.NewHealthServer(monitor),
		tmpl:       tmpl,
		opts:       opts,
	}, nil
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	s.health.Routes(r)

	r.Group(func(r chi.Router) {
		r.Use(s.clientMiddleware)

		r.Get("/", s.handleIndex)
		r.Get("/{view}", s.handleNavigate)

		r.Post("/search", s.handleSearch)
		r.Post("/filters", s.handleFilters)
		r.Post("/videos/{id}", s.handleSelectVideo)
		r.Post("/keywords", s.handleSelectKeyword)
		r.Post("/chat", s.handleChat)
		r.Post("/settings", s.handleSaveSettings)
		r.Post("/settings/clear", s.handleClearKey)
		r.Post("/notice/dismiss", s.handleDismissNotice)

		r.Route("/api", func(r chi.Router) {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: s.opts.AllowedOrigins,
				AllowedMethods: []string{"GET", "POST", "OPTIONS"},
				AllowedHeaders: []string{"Accept", "Content-Type", apiKeyHeader},
				MaxAge:         300,
			}))
			r.Get("/search", s.handleAPISearch)
			r.Get("/videos/{id}/analysis", s.handleAPIAnalysis)
			r.Post("/outline", s.handleAPIOutline)
		})
	})

	return r
}

// clientMiddleware assigns each browser a stable ID cookie.
func (s *Server) clientMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var clientID string
		if c, err := r.Cookie(clientCookie); err == nil {
			if _, perr := uuid.Parse(c.Value); perr == nil {
				clientID = c.Value
			}
		}
		if clientID == "" {
			clientID = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     clientCookie,
				Value:    clientID,
				Path:     "/",
				MaxAge:   int(clientCookieAge.Seconds()),
				HttpOnly: true,
				Secure:   s.opts.SecureCookies,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), clientIDKey, clientID)))
	})
}

func clientID(r *http.Request) string {
	id, _ := r.Context().Value(clientIDKey).(string)
	return id
}

func (s *Server) session(r *http.Request) *dashboard.Session {
	return s.sessions.Get(clientID(r))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, s.session(r).Snapshot())
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	view, err := dashboard.ParseView(chi.URLParam(r, "view"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	s.controller.Navigate(s.session(r), view)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}

	duration, err := models.ParseDuration(r.PostFormValue("duration"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ratio := parseRatio(r.PostFormValue("ratio"))
	query := strings.TrimSpace(r.PostFormValue("q"))

	s.controller.Search(r.Context(), s.session(r), query, duration, ratio, s.controller.APIKey(clientID(r)))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}

	duration, err := models.ParseDuration(r.PostFormValue("duration"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.session(r).Dispatch(dashboard.FiltersChanged{Duration: duration, EngagementRatio: parseRatio(r.PostFormValue("ratio"))})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleSelectVideo(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "id")
	s.controller.SelectVideo(r.Context(), s.session(r), videoID, s.controller.APIKey(clientID(r)))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleSelectKeyword(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	s.controller.SelectKeyword(r.Context(), s.session(r), r.PostFormValue("keyword"))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	s.controller.Chat(r.Context(), s.session(r), r.PostFormValue("message"))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	if _, err := s.controller.SaveKey(s.session(r), clientID(r), r.PostFormValue("api_key")); err != nil {
		log.Printf("Failed to save API key: %v", err)
		http.Error(w, "Failed to save API key", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleClearKey(w http.ResponseWriter, r *http.Request) {
	if _, err := s.controller.ClearKey(s.session(r), clientID(r)); err != nil {
		log.Printf("Failed to remove API key: %v", err)
		http.Error(w, "Failed to remove API key", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleDismissNotice(w http.ResponseWriter, r *http.Request) {
	s.session(r).Dispatch(dashboard.NoticeDismissed{})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, DefaultBodyLimit)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return false
	}
	return true
}

// parseRatio reads the engagement-ratio slider, clamped to 0..100.
func parseRatio(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 50
	}
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
