package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songscan/internal/shared"
)

const defaultShazamHost = "shazam-api6.p.rapidapi.com"

// ShazamService identifies audio samples through the Shazam endpoint on RapidAPI.
type ShazamService struct {
	apiKey  string
	host    string
	baseURL string
	client  *http.Client
	logger  *log.Logger
}

// shazamResponse is the recognition endpoint's response envelope. An empty
// matches list means the sample was processed but nothing was identified.
type shazamResponse struct {
	Matches []json.RawMessage `json:"matches"`
	Track   *shazamTrack      `json:"track"`
	Message string            `json:"message"`
}

type shazamTrack struct {
	Title    string         `json:"title"`
	Subtitle string         `json:"subtitle"`
	Key      string         `json:"key"`
	Images   map[string]any `json:"images"`
	Hub      map[string]any `json:"hub"`
}

// NewShazamService creates a recognition client from RapidAPI credentials.
// An empty host falls back to the public Shazam host.
func NewShazamService(apiKey, host string, logger *log.Logger) *ShazamService {
	if host == "" {
		host = defaultShazamHost
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &ShazamService{
		apiKey:  apiKey,
		host:    host,
		baseURL: fmt.Sprintf("https://%s", host),
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

// SetClient overrides the underlying HTTP client (used in tests).
func (s *ShazamService) SetClient(c *http.Client) { s.client = c }

// SetBaseURL overrides the recognition endpoint base URL (used in tests).
func (s *ShazamService) SetBaseURL(u string) { s.baseURL = u }

// Recognize uploads the audio sample as multipart form data and parses the
// identification result. Returns [shared.ErrNoMatch] when the service reports
// an empty match list.
func (s *ShazamService) Recognize(ctx context.Context, fileName string, audio io.Reader) (*RecognizedTrack, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("%w: rapidapi key not set", shared.ErrMissingCredentials)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("upload_file", fileName)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build form: %v", shared.ErrRecognitionFailed, err)
	}
	n, err := io.Copy(part, audio)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read sample: %v", shared.ErrRecognitionFailed, err)
	}
	if n == 0 {
		return nil, shared.ErrEmptyUpload
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%w: failed to finalize form: %v", shared.ErrRecognitionFailed, err)
	}

	url := fmt.Sprintf("%s/shazam/recognize/", s.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRecognitionFailed, err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("x-rapidapi-host", s.host)
	req.Header.Set("x-rapidapi-key", s.apiKey)

	s.logger.Debug("submitting sample for recognition", "file", fileName, "bytes", n)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRecognitionFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", shared.ErrRecognitionFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		// Error bodies are not always JSON; pull the message out when they are.
		var failure shazamResponse
		if err := json.Unmarshal(body, &failure); err == nil && failure.Message != "" {
			return nil, fmt.Errorf("%w: %s (status %d)", shared.ErrRecognitionFailed, failure.Message, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: status %d", shared.ErrRecognitionFailed, resp.StatusCode)
	}

	var parsed shazamResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", shared.ErrRecognitionFailed, err)
	}

	if len(parsed.Matches) == 0 || parsed.Track == nil {
		return nil, shared.ErrNoMatch
	}

	s.logger.Debug("sample identified", "title", parsed.Track.Title, "subtitle", parsed.Track.Subtitle)

	meta := map[string]any{}
	if parsed.Track.Key != "" {
		meta["key"] = parsed.Track.Key
	}
	if len(parsed.Track.Images) > 0 {
		meta["images"] = parsed.Track.Images
	}
	if len(parsed.Track.Hub) > 0 {
		meta["hub"] = parsed.Track.Hub
	}

	return &RecognizedTrack{
		Title:    parsed.Track.Title,
		Subtitle: parsed.Track.Subtitle,
		Meta:     meta,
	}, nil
}
