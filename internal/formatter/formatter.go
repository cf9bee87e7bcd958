// package formatter renders scan results for files and stdout.
package formatter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/desertthunder/songscan/internal/pipeline"
	"github.com/desertthunder/songscan/internal/shared"
)

// Format selects an export rendering.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// ParseFormat resolves a format name, defaulting to text.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "text", "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidInput, name)
	}
}

// Write renders a scan result to w in the given format.
func Write(w io.Writer, result *pipeline.ScanResult, format Format) error {
	switch format {
	case FormatJSON:
		data, err := shared.MarshalJSON(result, true)
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case FormatMarkdown:
		return writeMarkdown(w, result)
	case FormatText:
		return writeText(w, result)
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidInput, format)
	}
}

func writeMarkdown(w io.Writer, result *pipeline.ScanResult) error {
	track := result.Track
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", track.Name)
	fmt.Fprintf(&b, "- **Artist**: %s\n", track.ArtistNames())
	if track.Album.Name != "" {
		fmt.Fprintf(&b, "- **Album**: %s\n", track.Album.Name)
	}
	if track.Album.ReleaseDate != "" {
		fmt.Fprintf(&b, "- **Released**: %s\n", track.Album.ReleaseDate)
	}
	if track.DurationMS > 0 {
		fmt.Fprintf(&b, "- **Duration**: %s\n", shared.FormatDuration(track.DurationMS))
	}
	if track.ExternalURL != "" {
		fmt.Fprintf(&b, "\n[Open in Spotify](%s)\n", track.ExternalURL)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeText(w io.Writer, result *pipeline.ScanResult) error {
	track := result.Track
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", track.Name)
	fmt.Fprintf(&b, "by %s\n", track.ArtistNames())
	if track.Album.Name != "" {
		fmt.Fprintf(&b, "from %s\n", track.Album.Name)
	}
	if track.DurationMS > 0 {
		fmt.Fprintf(&b, "%s\n", shared.FormatDuration(track.DurationMS))
	}
	if track.ExternalURL != "" {
		fmt.Fprintf(&b, "%s\n", track.ExternalURL)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// DownloadImage fetches album art to the given path.
func DownloadImage(ctx context.Context, client *http.Client, url, path string) error {
	if url == "" {
		return fmt.Errorf("%w: no image url", shared.ErrInvalidInput)
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build image request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch image: status %d", resp.StatusCode)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return fmt.Errorf("failed to write image file: %w", err)
	}
	return nil
}
