package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songscan/internal/pipeline"
	"github.com/desertthunder/songscan/internal/repositories"
	"github.com/desertthunder/songscan/internal/shared"
)

// maxUploadBytes caps the accepted sample size at 25 MB.
const maxUploadBytes = 25 << 20

// ScanHandler accepts an audio upload and runs it through the pipeline.
type ScanHandler struct {
	engine *pipeline.Engine
	logger *log.Logger
}

// NewScanHandler creates the scan endpoint handler.
func NewScanHandler(engine *pipeline.Engine, logger *log.Logger) *ScanHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &ScanHandler{engine: engine, logger: logger}
}

func (h *ScanHandler) Routes() []string {
	return []string{"POST /api/scan"}
}

func (h *ScanHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "expected a multipart upload")
		return
	}

	file, header, err := r.FormFile("upload_file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing upload_file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	upload, err := pipeline.AcceptUpload(header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.engine.Run(r.Context(), upload, nil)
	if err != nil {
		status := scanErrorStatus(err)
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// scanErrorStatus maps pipeline failures to HTTP statuses.
func scanErrorStatus(err error) int {
	switch {
	case errors.Is(err, shared.ErrInvalidFileType), errors.Is(err, shared.ErrEmptyUpload):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrScanInFlight):
		return http.StatusConflict
	case errors.Is(err, shared.ErrNoMatch):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrMissingCredentials), errors.Is(err, shared.ErrCatalogAuth):
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}

// StatsHandler reports the lifetime scan counters.
type StatsHandler struct {
	engine *pipeline.Engine
}

// NewStatsHandler creates the stats endpoint handler.
func NewStatsHandler(engine *pipeline.Engine) *StatsHandler {
	return &StatsHandler{engine: engine}
}

func (h *StatsHandler) Routes() []string {
	return []string{"GET /api/stats"}
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tally, err := h.engine.Stats()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	writeJSON(w, http.StatusOK, tally)
}

// HistoryHandler reports recent scan runs.
type HistoryHandler struct {
	history *repositories.ScanHistory
}

// NewHistoryHandler creates the history endpoint handler. The handler
// serves an empty list when history is not configured.
func NewHistoryHandler(history *repositories.ScanHistory) *HistoryHandler {
	return &HistoryHandler{history: history}
}

func (h *HistoryHandler) Routes() []string {
	return []string{"GET /api/history"}
}

type historyEntry struct {
	FileName    string `json:"file_name"`
	Outcome     string `json:"outcome"`
	ErrorKind   string `json:"error_kind,omitempty"`
	TrackID     string `json:"track_id,omitempty"`
	TrackName   string `json:"track_name,omitempty"`
	TrackArtist string `json:"track_artist,omitempty"`
	CreatedAt   string `json:"created_at"`
}

func (h *HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	entries := []historyEntry{}
	if h.history != nil {
		records, err := h.history.Recent(20)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load history")
			return
		}
		for _, rec := range records {
			entries = append(entries, historyEntry{
				FileName:    rec.FileName(),
				Outcome:     string(rec.Outcome()),
				ErrorKind:   rec.ErrorKind(),
				TrackID:     rec.TrackID(),
				TrackName:   rec.TrackName(),
				TrackArtist: rec.TrackArtist(),
				CreatedAt:   rec.CreatedAt().Format("2006-01-02 15:04:05"),
			})
		}
	}
	writeJSON(w, http.StatusOK, entries)
}

// HealthHandler answers liveness probes and reports whether a scan is
// in flight.
type HealthHandler struct {
	engine *pipeline.Engine
}

// NewHealthHandler creates the health endpoint handler.
func NewHealthHandler(engine *pipeline.Engine) *HealthHandler {
	return &HealthHandler{engine: engine}
}

func (h *HealthHandler) Routes() []string {
	return []string{"GET /health"}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	busy := h.engine != nil && h.engine.Busy()
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "scanning": busy})
}
