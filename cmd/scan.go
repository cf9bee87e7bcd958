package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/songscan/internal/formatter"
	"github.com/desertthunder/songscan/internal/pipeline"
	"github.com/desertthunder/songscan/internal/shared"
)

// Scan runs the full pipeline on an audio file and renders the result.
// savePath additionally writes the rendering to a file; artPath downloads
// the resolved track's album art.
func (r *Runner) Scan(ctx context.Context, path, format, savePath, artPath string) error {
	if path == "" {
		return fmt.Errorf("%w: audio file path", shared.ErrMissingArgument)
	}

	f, err := formatter.ParseFormat(format)
	if err != nil {
		return err
	}

	upload, err := pipeline.AcceptFile(path)
	if err != nil {
		return err
	}

	r.ensureHistory()
	result, err := r.engine.Run(ctx, upload, nil)
	if err != nil {
		return err
	}

	if savePath != "" {
		if err := saveResult(savePath, result, f); err != nil {
			return err
		}
		r.writePlainln("Saved result to %s", savePath)
	}
	if artPath != "" {
		if err := formatter.DownloadImage(ctx, nil, result.Track.AlbumArt(), artPath); err != nil {
			return err
		}
		r.writePlainln("Saved album art to %s", artPath)
	}

	return formatter.Write(r.output, result, f)
}

// saveResult writes a rendering of the result to a file.
func saveResult(path string, result *pipeline.ScanResult, f formatter.Format) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create result file: %w", err)
	}
	defer out.Close()

	if err := formatter.Write(out, result, f); err != nil {
		return fmt.Errorf("failed to write result file: %w", err)
	}
	return nil
}

// Recognize identifies an audio file without resolving it against the catalog.
func (r *Runner) Recognize(ctx context.Context, path string, pretty bool) error {
	if path == "" {
		return fmt.Errorf("%w: audio file path", shared.ErrMissingArgument)
	}

	upload, err := pipeline.AcceptFile(path)
	if err != nil {
		return err
	}

	track, err := r.recognizer.Recognize(ctx, upload.Name, upload.Reader())
	if err != nil {
		return err
	}

	return r.writeJSON(track, pretty)
}

// Search resolves a title and artist against the catalog directly.
func (r *Runner) Search(ctx context.Context, title, artist string, pretty bool) error {
	if title == "" {
		return fmt.Errorf("%w: track title", shared.ErrMissingArgument)
	}

	track, err := r.catalog.ResolveTrack(ctx, title, artist)
	if err != nil {
		return err
	}

	return r.writeJSON(track, pretty)
}
