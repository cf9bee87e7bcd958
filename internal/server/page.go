package server

import (
	_ "embed"
	"html/template"
	"net/http"

	"github.com/desertthunder/songscan/internal/pipeline"
)

//go:embed index.html.tmpl
var indexTemplate string

// PageHandler serves the upload page.
type PageHandler struct {
	tmpl   *template.Template
	engine *pipeline.Engine
}

// NewPageHandler creates the upload page handler.
func NewPageHandler(engine *pipeline.Engine) (*PageHandler, error) {
	tmpl, err := template.New("index").Parse(indexTemplate)
	if err != nil {
		return nil, err
	}
	return &PageHandler{tmpl: tmpl, engine: engine}, nil
}

func (h *PageHandler) Routes() []string {
	return []string{"GET /{$}"}
}

func (h *PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tally, err := h.engine.Stats()
	if err != nil {
		http.Error(w, "failed to load stats", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	h.tmpl.Execute(w, map[string]any{
		"Stats":   tally,
		"Formats": "MP3, WAV, M4A, FLAC, OGG",
	})
}
