package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/songscan/internal/models"
	"github.com/desertthunder/songscan/internal/pipeline"
	"github.com/desertthunder/songscan/internal/services"
	"github.com/desertthunder/songscan/internal/shared"
	"github.com/desertthunder/songscan/internal/stats"
	tu "github.com/desertthunder/songscan/internal/testing"
)

func writeClip(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp3")
	if err := os.WriteFile(path, []byte("fake audio bytes"), 0644); err != nil {
		t.Fatalf("failed to write clip: %v", err)
	}
	return path
}

func testRunner(t *testing.T, recognizer services.Recognizer, catalog services.Catalog) (*Runner, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	config := shared.DefaultConfig()
	config.Stats.Path = filepath.Join(t.TempDir(), "scan_stats.json")
	config.Database.Path = ":memory:"

	r := NewRunner(RunnerOpts{
		Config:     config,
		Recognizer: recognizer,
		Catalog:    catalog,
		Store:      stats.NewMemStore(),
		Output:     &out,
	})
	t.Cleanup(func() { r.Close() })
	return r, &out
}

func flowersRecognizer() *tu.MockRecognizer {
	return &tu.MockRecognizer{Track: &services.RecognizedTrack{Title: "Flowers", Subtitle: "Miley Cyrus"}}
}

func flowersCatalog() *tu.MockCatalog {
	return &tu.MockCatalog{Track: &services.CatalogTrack{
		ID:      "4DuUwzP",
		Name:    "Flowers",
		Artists: []services.CatalogArtist{{Name: "Miley Cyrus"}},
	}}
}

func TestRunner(t *testing.T) {
	ctx := context.Background()

	t.Run("Scan renders a resolved track", func(t *testing.T) {
		r, out := testRunner(t, flowersRecognizer(), flowersCatalog())

		if err := r.Scan(ctx, writeClip(t), "text", "", ""); err != nil {
			t.Fatalf("Scan failed: %v", err)
		}

		if !strings.Contains(out.String(), "Flowers") || !strings.Contains(out.String(), "Miley Cyrus") {
			t.Errorf("expected track details, got %s", out.String())
		}
	})

	t.Run("Scan requires a path", func(t *testing.T) {
		r, _ := testRunner(t, flowersRecognizer(), flowersCatalog())

		err := r.Scan(ctx, "", "text", "", "")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("Scan rejects unknown formats", func(t *testing.T) {
		r, _ := testRunner(t, flowersRecognizer(), flowersCatalog())

		if err := r.Scan(ctx, writeClip(t), "yaml", "", ""); err == nil {
			t.Error("expected error for unknown format")
		}
	})

	t.Run("Recognize emits the identification", func(t *testing.T) {
		r, out := testRunner(t, flowersRecognizer(), flowersCatalog())

		if err := r.Recognize(ctx, writeClip(t), false); err != nil {
			t.Fatalf("Recognize failed: %v", err)
		}
		if !strings.Contains(out.String(), `"title":"Flowers"`) {
			t.Errorf("expected recognized track json, got %s", out.String())
		}
	})

	t.Run("Search queries the catalog", func(t *testing.T) {
		catalog := flowersCatalog()
		r, out := testRunner(t, flowersRecognizer(), catalog)

		if err := r.Search(ctx, "Flowers", "Miley Cyrus", false); err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if catalog.LastQuery != [2]string{"Flowers", "Miley Cyrus"} {
			t.Errorf("unexpected query %v", catalog.LastQuery)
		}
		if !strings.Contains(out.String(), "4DuUwzP") {
			t.Errorf("expected track json, got %s", out.String())
		}
	})

	t.Run("Stats prints the counters", func(t *testing.T) {
		r, out := testRunner(t, flowersRecognizer(), flowersCatalog())

		if err := r.Scan(ctx, writeClip(t), "text", "", ""); err != nil {
			t.Fatalf("Scan failed: %v", err)
		}
		out.Reset()

		if err := r.Stats(ctx, false); err != nil {
			t.Fatalf("Stats failed: %v", err)
		}
		if !strings.Contains(out.String(), "Total:      1") {
			t.Errorf("expected total counter, got %s", out.String())
		}
		if !strings.Contains(out.String(), "═") {
			t.Errorf("expected header rule, got %s", out.String())
		}
	})

	t.Run("History lists recorded runs", func(t *testing.T) {
		r, out := testRunner(t, flowersRecognizer(), flowersCatalog())

		if err := r.OpenDatabase(); err != nil {
			t.Fatalf("OpenDatabase failed: %v", err)
		}
		rec := models.NewScanRecord("clip.mp3", 16, "audio/mpeg", models.OutcomeSucceeded)
		rec.SetTrack("4DuUwzP", "Flowers", "Miley Cyrus")
		if err := r.history.Record(rec); err != nil {
			t.Fatalf("Record failed: %v", err)
		}

		if err := r.History(ctx, 10, false); err != nil {
			t.Fatalf("History failed: %v", err)
		}
		if !strings.Contains(out.String(), "Flowers by Miley Cyrus") {
			t.Errorf("expected history line, got %s", out.String())
		}
	})

	t.Run("OpenDatabase wires scan history into the engine", func(t *testing.T) {
		r, _ := testRunner(t, flowersRecognizer(), flowersCatalog())

		if err := r.OpenDatabase(); err != nil {
			t.Fatalf("OpenDatabase failed: %v", err)
		}
		if err := r.Scan(ctx, writeClip(t), "text", "", ""); err != nil {
			t.Fatalf("Scan failed: %v", err)
		}

		records, err := r.history.Recent(10)
		if err != nil {
			t.Fatalf("Recent failed: %v", err)
		}
		if len(records) != 1 || records[0].TrackID() != "4DuUwzP" {
			t.Errorf("expected scan recorded in history, got %+v", records)
		}
	})

	t.Run("Scan records history without an explicit OpenDatabase", func(t *testing.T) {
		r, _ := testRunner(t, flowersRecognizer(), flowersCatalog())

		if err := r.Scan(ctx, writeClip(t), "text", "", ""); err != nil {
			t.Fatalf("Scan failed: %v", err)
		}

		if r.history == nil {
			t.Fatal("expected scan to open the history database")
		}
		records, err := r.history.Recent(10)
		if err != nil {
			t.Fatalf("Recent failed: %v", err)
		}
		if len(records) != 1 || records[0].TrackID() != "4DuUwzP" {
			t.Errorf("expected the run in history, got %+v", records)
		}
	})

	t.Run("Scan saves the result to a file", func(t *testing.T) {
		r, _ := testRunner(t, flowersRecognizer(), flowersCatalog())
		savePath := filepath.Join(t.TempDir(), "result.json")

		if err := r.Scan(ctx, writeClip(t), "json", savePath, ""); err != nil {
			t.Fatalf("Scan failed: %v", err)
		}

		tu.AssertFileExists(t, savePath)
		saved := tu.MustReadFile(t, savePath)
		var result pipeline.ScanResult
		if err := json.Unmarshal(saved, &result); err != nil {
			t.Fatalf("saved result is not valid json: %v", err)
		}
		if result.Track.ID != "4DuUwzP" {
			t.Errorf("unexpected saved track %+v", result.Track)
		}
	})

	t.Run("Scan downloads album art", func(t *testing.T) {
		artServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("imagebytes"))
		}))
		defer artServer.Close()

		track := flowersCatalog().Track
		track.Album.Images = []services.CatalogImage{{URL: artServer.URL, Width: 640, Height: 640}}
		r, _ := testRunner(t, flowersRecognizer(), &tu.MockCatalog{Track: track})
		artPath := filepath.Join(t.TempDir(), "cover.jpg")

		if err := r.Scan(ctx, writeClip(t), "text", "", artPath); err != nil {
			t.Fatalf("Scan failed: %v", err)
		}

		if string(tu.MustReadFile(t, artPath)) != "imagebytes" {
			t.Error("unexpected album art contents")
		}
	})

	t.Run("Setup creates a config file", func(t *testing.T) {
		r, out := testRunner(t, flowersRecognizer(), flowersCatalog())
		path := filepath.Join(t.TempDir(), "config.toml")

		if err := r.Setup(ctx, path); err != nil {
			t.Fatalf("Setup failed: %v", err)
		}
		tu.AssertFileExists(t, path)
		if !strings.Contains(out.String(), "Created") {
			t.Errorf("expected confirmation output, got %s", out.String())
		}

		if err := r.Setup(ctx, path); err == nil {
			t.Error("expected error when config already exists")
		}
	})

	t.Run("writeJSON surfaces writer failures", func(t *testing.T) {
		r, _ := testRunner(t, flowersRecognizer(), flowersCatalog())
		r.output = tu.FWriter{}

		if err := r.writeJSON(map[string]string{"k": "v"}, false); err == nil {
			t.Error("expected write error")
		}
	})
}

func TestNewRunnerDefaults(t *testing.T) {
	config := shared.DefaultConfig()
	config.Stats.Path = filepath.Join(t.TempDir(), "scan_stats.json")
	r := NewRunner(RunnerOpts{Config: config})

	if r.recognizer == nil || r.catalog == nil || r.engine == nil {
		t.Error("expected default services to be constructed")
	}
	if r.output == nil || r.logger == nil {
		t.Error("expected default output and logger")
	}
	if _, ok := r.store.(*stats.FileStore); !ok {
		t.Errorf("expected file-backed stats store, got %T", r.store)
	}
}

func TestRegister(t *testing.T) {
	r, _ := testRunner(t, flowersRecognizer(), flowersCatalog())

	commands := register(r)
	names := map[string]bool{}
	for _, cmd := range commands {
		names[cmd.Name] = true
	}

	for _, want := range []string{"scan", "recognize", "search", "stats", "history", "serve", "setup", "tui"} {
		if !names[want] {
			t.Errorf("expected %s command to be registered", want)
		}
	}
}
