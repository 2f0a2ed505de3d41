package web

import (
	"bytes"
	"html/template"
	"log"
	"net/http"
	"strings"

	"creator-dashboard/agents/dashboard"
	"creator-dashboard/internal/models"
)

// page is the data handed to the layout template.
type page struct {
	dashboard.State
	Durations []models.Duration
	// KeyHint is the last four characters of the key in use, if any.
	KeyHint string
	// SavedKey is set when the client stored its own key.
	SavedKey bool
}

var templateFuncs = template.FuncMap{
	"isUser": func(m models.ChatMessage) bool { return m.Role == models.RoleUser },
	"lines":  func(s string) []string { return strings.Split(strings.TrimSpace(s), "\n") },
}

func parseTemplates() (*template.Template, error) {
	return template.New("layout.html").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, st dashboard.State) {
	data := page{
		State:     st,
		Durations: models.Durations,
		KeyHint:   keyHint(s.controller.APIKey(clientID(r))),
		SavedKey:  s.controller.HasSavedKey(clientID(r)),
	}

	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		log.Printf("Failed to render %s view: %v", st.View, err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

func keyHint(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("•", len(key))
	}
	return "…" + key[len(key)-4:]
}
