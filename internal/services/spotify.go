package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songscan/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	spotifyAPIBase  = "https://api.spotify.com/v1"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"

	// searchLimit caps how many candidates a catalog search returns.
	searchLimit = 5
)

// SpotifyService resolves recognized tracks against the Spotify catalog
// using the client-credentials grant.
type SpotifyService struct {
	clientID     string
	clientSecret string
	baseURL      string
	tokenURL     string
	client       *http.Client
	logger       *log.Logger
}

// spotifySearchResponse is the /v1/search response envelope.
type spotifySearchResponse struct {
	Tracks struct {
		Items []spotifyTrack `json:"items"`
	} `json:"tracks"`
}

type spotifyTrack struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		Name   string `json:"name"`
		Images []struct {
			URL    string `json:"url"`
			Width  int    `json:"width"`
			Height int    `json:"height"`
		} `json:"images"`
		ReleaseDate string `json:"release_date"`
	} `json:"album"`
	PreviewURL   string `json:"preview_url"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
	Popularity int `json:"popularity"`
	DurationMS int `json:"duration_ms"`
}

// NewSpotifyService creates a catalog client from Spotify app credentials.
func NewSpotifyService(clientID, clientSecret string, logger *log.Logger) *SpotifyService {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &SpotifyService{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      spotifyAPIBase,
		tokenURL:     spotifyTokenURL,
		client:       &http.Client{Timeout: 30 * time.Second},
		logger:       logger,
	}
}

// SetClient overrides the underlying HTTP client (used in tests).
func (s *SpotifyService) SetClient(c *http.Client) { s.client = c }

// SetBaseURL overrides the API base URL (used in tests).
func (s *SpotifyService) SetBaseURL(u string) { s.baseURL = u }

// SetTokenURL overrides the token endpoint (used in tests).
func (s *SpotifyService) SetTokenURL(u string) { s.tokenURL = u }

// token acquires a fresh access token via the client-credentials grant.
// Tokens are not cached between runs.
func (s *SpotifyService) token(ctx context.Context) (*oauth2.Token, error) {
	if s.clientID == "" || s.clientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client id or secret not set", shared.ErrMissingCredentials)
	}

	conf := &clientcredentials.Config{
		ClientID:     s.clientID,
		ClientSecret: s.clientSecret,
		TokenURL:     s.tokenURL,
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.client)
	tok, err := conf.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrCatalogAuth, err)
	}
	return tok, nil
}

// ResolveTrack searches the catalog for "<title> <artist>" and picks the
// best match from the first page of results.
func (s *SpotifyService) ResolveTrack(ctx context.Context, title, artist string) (*CatalogTrack, error) {
	tok, err := s.token(ctx)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("q", fmt.Sprintf("%s %s", title, artist))
	query.Set("type", "track")
	query.Set("limit", fmt.Sprintf("%d", searchLimit))

	endpoint := fmt.Sprintf("%s/search?%s", s.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrCatalogRequest, err)
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)

	s.logger.Debug("searching catalog", "title", title, "artist", artist)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrCatalogRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", shared.ErrCatalogRequest, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", shared.ErrCatalogRequest, resp.StatusCode, string(body))
	}

	var parsed spotifySearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", shared.ErrCatalogRequest, err)
	}

	if len(parsed.Tracks.Items) == 0 {
		return nil, shared.ErrNoMatch
	}

	picked := pickTrack(parsed.Tracks.Items, title, artist)
	return convertTrack(picked), nil
}

func convertTrack(t *spotifyTrack) *CatalogTrack {
	out := &CatalogTrack{
		ID:          t.ID,
		Name:        t.Name,
		PreviewURL:  t.PreviewURL,
		ExternalURL: t.ExternalURLs.Spotify,
		Popularity:  t.Popularity,
		DurationMS:  t.DurationMS,
	}
	for _, a := range t.Artists {
		out.Artists = append(out.Artists, CatalogArtist{Name: a.Name})
	}
	out.Album.Name = t.Album.Name
	out.Album.ReleaseDate = t.Album.ReleaseDate
	for _, img := range t.Album.Images {
		out.Album.Images = append(out.Album.Images, CatalogImage{URL: img.URL, Width: img.Width, Height: img.Height})
	}
	return out
}
