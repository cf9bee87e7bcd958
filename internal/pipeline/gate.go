package pipeline

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/songscan/internal/shared"
)

// audioTypes maps the supported sample formats to their media types.
// Consulted before the host's mime table, which often lacks audio entries.
var audioTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".m4a":  "audio/mp4",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
}

// UploadedAudio is an accepted audio sample ready for recognition.
type UploadedAudio struct {
	Name      string
	MediaType string
	Size      int64
	Data      []byte
}

// AcceptUpload validates an incoming sample before any network work happens.
// The declared media type must have an audio/ prefix; when it is empty the
// type is inferred from the file extension.
func AcceptUpload(name, mediaType string, data []byte) (*UploadedAudio, error) {
	if len(data) == 0 {
		return nil, shared.ErrEmptyUpload
	}

	if mediaType == "" {
		ext := strings.ToLower(filepath.Ext(name))
		if t, ok := audioTypes[ext]; ok {
			mediaType = t
		} else {
			mediaType = mime.TypeByExtension(ext)
		}
	}
	if !strings.HasPrefix(mediaType, "audio/") {
		return nil, fmt.Errorf("%w: %s (%s)", shared.ErrInvalidFileType, name, mediaType)
	}

	return &UploadedAudio{
		Name:      name,
		MediaType: mediaType,
		Size:      int64(len(data)),
		Data:      data,
	}, nil
}

// Reader returns a fresh reader over the sample data.
func (u *UploadedAudio) Reader() io.Reader {
	return bytes.NewReader(u.Data)
}

// AcceptFile reads an audio file from disk and validates it like an upload.
func AcceptFile(path string) (*UploadedAudio, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio file: %w", err)
	}
	return AcceptUpload(filepath.Base(path), "", data)
}
