package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/songscan/internal/models"
	"github.com/desertthunder/songscan/internal/services"
	"github.com/desertthunder/songscan/internal/shared"
	"github.com/desertthunder/songscan/internal/stats"
	tu "github.com/desertthunder/songscan/internal/testing"
)

type recordingHistory struct {
	records []*models.ScanRecord
	err     error
}

func (h *recordingHistory) Record(rec *models.ScanRecord) error {
	if h.err != nil {
		return h.err
	}
	h.records = append(h.records, rec)
	return nil
}

func sampleUpload() *UploadedAudio {
	upload, err := AcceptUpload("clip.mp3", "audio/mpeg", []byte("fake audio bytes"))
	if err != nil {
		panic(err)
	}
	return upload
}

func sampleCatalogTrack() *services.CatalogTrack {
	return &services.CatalogTrack{
		ID:      "4DuUwzP",
		Name:    "Flowers",
		Artists: []services.CatalogArtist{{Name: "Miley Cyrus"}},
	}
}

func TestEngine(t *testing.T) {
	ctx := context.Background()

	t.Run("Run resolves a recognized sample", func(t *testing.T) {
		recognizer := &tu.MockRecognizer{Track: &services.RecognizedTrack{Title: "Flowers", Subtitle: "Miley Cyrus"}}
		catalog := &tu.MockCatalog{Track: sampleCatalogTrack()}
		store := stats.NewMemStore()
		history := &recordingHistory{}
		engine := NewEngine(recognizer, catalog, store, history, nil)

		result, err := engine.Run(ctx, sampleUpload(), nil)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}

		if result.Track.ID != "4DuUwzP" {
			t.Errorf("expected resolved track, got %+v", result.Track)
		}
		if result.EmbedURL != result.Track.EmbedURL() {
			t.Errorf("expected embed url %s, got %s", result.Track.EmbedURL(), result.EmbedURL)
		}
		if catalog.LastQuery != [2]string{"Flowers", "Miley Cyrus"} {
			t.Errorf("catalog queried with %v", catalog.LastQuery)
		}

		tally, _ := store.Load()
		if tally.Total != 1 || tally.Successful != 1 {
			t.Errorf("expected success tallied, got %+v", tally)
		}
		if len(history.records) != 1 {
			t.Fatalf("expected one history record, got %d", len(history.records))
		}
		if history.records[0].Outcome() != models.OutcomeSucceeded {
			t.Errorf("expected succeeded outcome, got %s", history.records[0].Outcome())
		}
		if history.records[0].TrackID() != "4DuUwzP" {
			t.Errorf("expected track recorded, got %s", history.records[0].TrackID())
		}
	})

	t.Run("Run tallies a failure without calling the catalog", func(t *testing.T) {
		recognizer := &tu.MockRecognizer{Err: shared.ErrNoMatch}
		catalog := &tu.MockCatalog{Track: sampleCatalogTrack()}
		store := stats.NewMemStore()
		history := &recordingHistory{}
		engine := NewEngine(recognizer, catalog, store, history, nil)

		_, err := engine.Run(ctx, sampleUpload(), nil)
		if !errors.Is(err, shared.ErrNoMatch) {
			t.Fatalf("expected ErrNoMatch, got %v", err)
		}

		if catalog.Calls != 0 {
			t.Errorf("catalog should not be called on recognition failure, got %d calls", catalog.Calls)
		}
		tally, _ := store.Load()
		if tally.Total != 1 || tally.Failed != 1 {
			t.Errorf("expected failure tallied, got %+v", tally)
		}
		if len(history.records) != 1 || history.records[0].ErrorKind() != "no_match" {
			t.Errorf("expected no_match history record, got %+v", history.records)
		}
	})

	t.Run("Run tallies a catalog failure", func(t *testing.T) {
		recognizer := &tu.MockRecognizer{Track: &services.RecognizedTrack{Title: "Flowers", Subtitle: "Miley Cyrus"}}
		catalog := &tu.MockCatalog{Err: shared.ErrCatalogRequest}
		store := stats.NewMemStore()
		engine := NewEngine(recognizer, catalog, store, nil, nil)

		_, err := engine.Run(ctx, sampleUpload(), nil)
		if !errors.Is(err, shared.ErrCatalogRequest) {
			t.Fatalf("expected ErrCatalogRequest, got %v", err)
		}

		tally, _ := store.Load()
		if tally.Total != 1 || tally.Failed != 1 {
			t.Errorf("expected failure tallied, got %+v", tally)
		}
	})

	t.Run("Run rejects a second concurrent scan", func(t *testing.T) {
		recognizer := &tu.MockRecognizer{Track: &services.RecognizedTrack{Title: "Flowers", Subtitle: "Miley Cyrus"}}
		catalog := &tu.MockCatalog{Track: sampleCatalogTrack()}
		engine := NewEngine(recognizer, catalog, stats.NewMemStore(), nil, nil)

		engine.inFlight.Store(true)
		_, err := engine.Run(ctx, sampleUpload(), nil)
		if !errors.Is(err, shared.ErrScanInFlight) {
			t.Errorf("expected ErrScanInFlight, got %v", err)
		}

		engine.inFlight.Store(false)
		if _, err := engine.Run(ctx, sampleUpload(), nil); err != nil {
			t.Errorf("expected run to succeed once idle, got %v", err)
		}
	})

	t.Run("Run sends progress without blocking", func(t *testing.T) {
		recognizer := &tu.MockRecognizer{Track: &services.RecognizedTrack{Title: "Flowers", Subtitle: "Miley Cyrus"}}
		catalog := &tu.MockCatalog{Track: sampleCatalogTrack()}
		engine := NewEngine(recognizer, catalog, stats.NewMemStore(), nil, nil)

		progress := make(chan ProgressUpdate, 32)
		if _, err := engine.Run(ctx, sampleUpload(), progress); err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		close(progress)

		var updates []ProgressUpdate
		for u := range progress {
			updates = append(updates, u)
		}
		if len(updates) == 0 {
			t.Fatal("expected progress updates")
		}
		last := updates[len(updates)-1]
		if last.State != StateSucceeded || last.Percent != 100 {
			t.Errorf("expected terminal update, got %+v", last)
		}

		// An unbuffered channel nobody reads must not stall the run.
		blocked := make(chan ProgressUpdate)
		if _, err := engine.Run(ctx, sampleUpload(), blocked); err != nil {
			t.Errorf("Run should not block on a slow listener: %v", err)
		}
	})

	t.Run("Stats exposes the lifetime counters", func(t *testing.T) {
		store := stats.NewMemStore()
		store.Save(stats.Stats{Total: 4, Successful: 3, Failed: 1})
		engine := NewEngine(nil, nil, store, nil, nil)

		tally, err := engine.Stats()
		if err != nil {
			t.Fatalf("Stats failed: %v", err)
		}
		if tally.Total != 4 {
			t.Errorf("expected total 4, got %d", tally.Total)
		}
	})
}

func TestAcceptUpload(t *testing.T) {
	t.Run("accepts declared audio types", func(t *testing.T) {
		upload, err := AcceptUpload("clip.wav", "audio/wav", []byte("riff"))
		if err != nil {
			t.Fatalf("AcceptUpload failed: %v", err)
		}
		if upload.Size != 4 {
			t.Errorf("expected size 4, got %d", upload.Size)
		}
	})

	t.Run("infers the type from the extension", func(t *testing.T) {
		upload, err := AcceptUpload("clip.mp3", "", []byte("id3"))
		if err != nil {
			t.Fatalf("AcceptUpload failed: %v", err)
		}
		if upload.MediaType == "" {
			t.Error("expected inferred media type")
		}
	})

	t.Run("rejects non-audio files", func(t *testing.T) {
		_, err := AcceptUpload("notes.txt", "text/plain", []byte("hello"))
		if !errors.Is(err, shared.ErrInvalidFileType) {
			t.Errorf("expected ErrInvalidFileType, got %v", err)
		}
	})

	t.Run("rejects empty uploads", func(t *testing.T) {
		_, err := AcceptUpload("clip.mp3", "audio/mpeg", nil)
		if !errors.Is(err, shared.ErrEmptyUpload) {
			t.Errorf("expected ErrEmptyUpload, got %v", err)
		}
	})
}

func TestState(t *testing.T) {
	t.Run("allows the happy path", func(t *testing.T) {
		s := StateIdle
		for _, next := range []State{StateUploading, StateRecognizing, StateResolving, StateSucceeded, StateIdle} {
			var err error
			s, err = s.Transition(next)
			if err != nil {
				t.Fatalf("transition to %s failed: %v", next, err)
			}
		}
	})

	t.Run("rejects skipping stages", func(t *testing.T) {
		if _, err := StateIdle.Transition(StateSucceeded); !errors.Is(err, shared.ErrInvalidTransition) {
			t.Errorf("expected ErrInvalidTransition, got %v", err)
		}
		if _, err := StateSucceeded.Transition(StateRecognizing); !errors.Is(err, shared.ErrInvalidTransition) {
			t.Errorf("expected ErrInvalidTransition, got %v", err)
		}
	})

	t.Run("terminal states", func(t *testing.T) {
		if !StateSucceeded.Terminal() || !StateFailed.Terminal() {
			t.Error("succeeded and failed should be terminal")
		}
		if StateRecognizing.Terminal() {
			t.Error("recognizing should not be terminal")
		}
	})
}
