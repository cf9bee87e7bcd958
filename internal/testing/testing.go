// package testing provides shared test doubles and filesystem helpers.
package testing

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/desertthunder/songscan/internal/services"
)

// MockRecognizer is a configurable [services.Recognizer] double.
type MockRecognizer struct {
	Track *services.RecognizedTrack
	Err   error
	Calls int
	// LastFileName captures the file name of the most recent call.
	LastFileName string
}

func (m *MockRecognizer) Recognize(ctx context.Context, fileName string, audio io.Reader) (*services.RecognizedTrack, error) {
	m.Calls++
	m.LastFileName = fileName
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Track, nil
}

// MockCatalog is a configurable [services.Catalog] double.
type MockCatalog struct {
	Track *services.CatalogTrack
	Err   error
	Calls int
	// LastQuery captures the title and artist of the most recent call.
	LastQuery [2]string
}

func (m *MockCatalog) ResolveTrack(ctx context.Context, title, artist string) (*services.CatalogTrack, error) {
	m.Calls++
	m.LastQuery = [2]string{title, artist}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Track, nil
}

// MockRoundTripper lets tests intercept HTTP requests with a function.
type MockRoundTripper struct {
	Fn func(*http.Request) (*http.Response, error)
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.Fn(req)
}

// FWriter always fails writes. Used to exercise output error paths.
type FWriter struct{}

func (FWriter) Write(p []byte) (int, error) {
	return 0, fmt.Errorf("write failed")
}

// LimitedWriter fails after N bytes have been written.
type LimitedWriter struct {
	N       int
	written int
}

func (l *LimitedWriter) Write(p []byte) (int, error) {
	if l.written+len(p) > l.N {
		room := l.N - l.written
		if room < 0 {
			room = 0
		}
		l.written = l.N
		return room, fmt.Errorf("write limit reached")
	}
	l.written += len(p)
	return len(p), nil
}

// MustGetwd returns the working directory or fails the test.
func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	return wd
}

// MustChdir changes directory and registers a cleanup restoring the original.
func MustChdir(t *testing.T, dir string) {
	t.Helper()
	orig := MustGetwd(t)
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to chdir to %s: %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(orig); err != nil {
			t.Fatalf("failed to restore working directory: %v", err)
		}
	})
}

// AssertFileExists fails the test when the path does not exist.
func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file at %s: %v", path, err)
	}
}

// MustReadFile reads a file or fails the test.
func MustReadFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return data
}
