// package pipeline orchestrates a scan run: an accepted upload is sent to
// the recognition service, the identified song is resolved against the
// streaming catalog, and the terminal outcome is tallied and recorded.
package pipeline

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songscan/internal/models"
	"github.com/desertthunder/songscan/internal/services"
	"github.com/desertthunder/songscan/internal/shared"
	"github.com/desertthunder/songscan/internal/stats"
)

// History records terminal scan runs for later queries.
type History interface {
	Record(rec *models.ScanRecord) error
}

// ScanResult is the outcome of a successful run.
type ScanResult struct {
	Recognized *services.RecognizedTrack `json:"recognized"`
	Track      *services.CatalogTrack   `json:"track"`
	EmbedURL   string                   `json:"embed_url"`
	Stats      stats.Stats              `json:"stats"`
}

// Engine runs the scan pipeline. A single engine accepts one run at a
// time; a second Run while one is in flight returns [shared.ErrScanInFlight].
type Engine struct {
	recognizer services.Recognizer
	catalog    services.Catalog
	store      stats.Store
	history    History
	logger     *log.Logger
	inFlight   atomic.Bool
}

// NewEngine creates a pipeline engine. The history recorder may be nil
// when scan history is not configured.
func NewEngine(recognizer services.Recognizer, catalog services.Catalog, store stats.Store, history History, logger *log.Logger) *Engine {
	if store == nil {
		store = stats.NewMemStore()
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Engine{
		recognizer: recognizer,
		catalog:    catalog,
		store:      store,
		history:    history,
		logger:     logger,
	}
}

// Busy reports whether a run is currently in flight.
func (e *Engine) Busy() bool {
	return e.inFlight.Load()
}

// Stats returns the current lifetime counters.
func (e *Engine) Stats() (stats.Stats, error) {
	return e.store.Load()
}

// Run executes one scan. Progress updates are sent to the optional channel
// without blocking; a slow listener misses updates rather than stalling the
// run. Every run that reaches the recognition service ends in a tallied
// terminal outcome, success or failure.
func (e *Engine) Run(ctx context.Context, upload *UploadedAudio, progress chan<- ProgressUpdate) (*ScanResult, error) {
	if !e.inFlight.CompareAndSwap(false, true) {
		return nil, shared.ErrScanInFlight
	}
	defer e.inFlight.Store(false)

	state := StateIdle
	state, err := state.Transition(StateUploading)
	if err != nil {
		return nil, err
	}
	e.sendProgress(progress, uploadUpdate(upload.Name))

	state, err = state.Transition(StateRecognizing)
	if err != nil {
		return nil, err
	}
	e.sendProgress(progress, fingerprintUpdate())
	e.sendProgress(progress, frequencyUpdate())
	e.sendProgress(progress, matchingUpdate())

	recognized, err := e.recognizer.Recognize(ctx, upload.Name, upload.Reader())
	if err != nil {
		return nil, e.fail(ctx, state, upload, progress, err)
	}
	e.logger.Info("sample identified", "title", recognized.Title, "artist", recognized.Subtitle)

	state, err = state.Transition(StateResolving)
	if err != nil {
		return nil, err
	}
	e.sendProgress(progress, identifyUpdate(recognized.Title, recognized.Subtitle))

	track, err := e.catalog.ResolveTrack(ctx, recognized.Title, recognized.Subtitle)
	if err != nil {
		return nil, e.fail(ctx, state, upload, progress, err)
	}
	e.sendProgress(progress, finalizeUpdate())

	if _, err := state.Transition(StateSucceeded); err != nil {
		return nil, err
	}

	tally := e.finalize(upload, models.OutcomeSucceeded, "", track)
	result := &ScanResult{
		Recognized: recognized,
		Track:      track,
		EmbedURL:   track.EmbedURL(),
		Stats:      tally,
	}
	e.sendProgress(progress, doneUpdate(StateSucceeded, "Track identified", result))
	return result, nil
}

// fail tallies a terminal failure and passes the cause through.
func (e *Engine) fail(ctx context.Context, state State, upload *UploadedAudio, progress chan<- ProgressUpdate, cause error) error {
	if _, terr := state.Transition(StateFailed); terr != nil {
		e.logger.Error("state transition failed", "error", terr)
	}

	kind := errorKind(ctx, cause)
	e.finalize(upload, models.OutcomeFailed, kind, nil)
	e.logger.Warn("scan failed", "file", upload.Name, "kind", kind, "error", cause)
	e.sendProgress(progress, doneUpdate(StateFailed, cause.Error(), nil))
	return cause
}

// finalize updates the lifetime counters and scan history. Persistence
// problems are logged, not surfaced; the run's outcome stands either way.
func (e *Engine) finalize(upload *UploadedAudio, outcome models.Outcome, errorKind string, track *services.CatalogTrack) stats.Stats {
	tally, err := e.store.Load()
	if err != nil {
		e.logger.Error("failed to load scan stats", "error", err)
	}
	tally.Record(outcome == models.OutcomeSucceeded)
	if err := e.store.Save(tally); err != nil {
		e.logger.Error("failed to save scan stats", "error", err)
	}

	if e.history != nil {
		rec := models.NewScanRecord(upload.Name, upload.Size, upload.MediaType, outcome)
		if track != nil {
			rec.SetTrack(track.ID, track.Name, track.ArtistNames())
		}
		if errorKind != "" {
			rec.SetErrorKind(errorKind)
		}
		if err := e.history.Record(rec); err != nil {
			e.logger.Error("failed to record scan history", "error", err)
		}
	}

	return tally
}

func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// errorKind buckets a failure cause for history queries.
func errorKind(ctx context.Context, err error) string {
	switch {
	case ctx.Err() != nil:
		return "canceled"
	case errors.Is(err, shared.ErrNoMatch):
		return "no_match"
	case errors.Is(err, shared.ErrRecognitionFailed):
		return "recognition_failed"
	case errors.Is(err, shared.ErrCatalogAuth):
		return "catalog_auth"
	case errors.Is(err, shared.ErrCatalogRequest):
		return "catalog_request"
	case errors.Is(err, shared.ErrMissingCredentials):
		return "missing_credentials"
	case errors.Is(err, shared.ErrEmptyUpload):
		return "empty_upload"
	default:
		return "unknown"
	}
}
