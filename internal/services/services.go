// package services contains clients for the external APIs the scan
// pipeline depends on: an audio recognition service and a music catalog.
package services

import (
	"context"
	"fmt"
	"io"
)

// Recognizer identifies a song from raw audio sample data.
type Recognizer interface {
	// Recognize submits an audio sample and returns the identified track,
	// or [shared.ErrNoMatch] when the service finds nothing.
	Recognize(ctx context.Context, fileName string, audio io.Reader) (*RecognizedTrack, error)
}

// Catalog resolves a recognized track against a streaming catalog.
type Catalog interface {
	// ResolveTrack searches the catalog for the recognized title and artist
	// and returns the best matching catalog entry.
	ResolveTrack(ctx context.Context, title, artist string) (*CatalogTrack, error)
}

// RecognizedTrack is the recognition service's identification of a sample.
type RecognizedTrack struct {
	Title    string         `json:"title"`
	Subtitle string         `json:"subtitle"`
	Meta     map[string]any `json:"meta,omitempty"`
}

// CatalogArtist is a performing artist on a catalog track.
type CatalogArtist struct {
	Name string `json:"name"`
}

// CatalogImage is album artwork at a particular resolution.
type CatalogImage struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// CatalogAlbum is the album a catalog track belongs to.
type CatalogAlbum struct {
	Name        string         `json:"name"`
	Images      []CatalogImage `json:"images"`
	ReleaseDate string         `json:"release_date"`
}

// CatalogTrack is a playable track entry from the streaming catalog.
type CatalogTrack struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Artists     []CatalogArtist `json:"artists"`
	Album       CatalogAlbum    `json:"album"`
	PreviewURL  string          `json:"preview_url"`
	ExternalURL string          `json:"external_url"`
	Popularity  int             `json:"popularity"`
	DurationMS  int             `json:"duration_ms"`
}

// EmbedURL returns the embeddable player URL for the track.
func (t *CatalogTrack) EmbedURL() string {
	return fmt.Sprintf("https://open.spotify.com/embed/track/%s?utm_source=generator&theme=0", t.ID)
}

// ArtistNames joins the track's artist names for display.
func (t *CatalogTrack) ArtistNames() string {
	names := ""
	for i, a := range t.Artists {
		if i > 0 {
			names += ", "
		}
		names += a.Name
	}
	return names
}

// AlbumArt returns the URL of the first album image, or an empty string.
func (t *CatalogTrack) AlbumArt() string {
	if len(t.Album.Images) == 0 {
		return ""
	}
	return t.Album.Images[0].URL
}
