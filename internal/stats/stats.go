// package stats tracks lifetime scan counters across sessions.
package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Stats holds the lifetime scan counters. Total always equals
// Successful plus Failed.
type Stats struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// Record tallies one terminal scan run.
func (s *Stats) Record(success bool) {
	s.Total++
	if success {
		s.Successful++
	} else {
		s.Failed++
	}
}

// SuccessRate returns the fraction of runs that succeeded, or 0 when empty.
func (s *Stats) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Successful) / float64(s.Total)
}

// Store persists scan counters between sessions.
type Store interface {
	Load() (Stats, error)
	Save(Stats) error
}

// FileStore persists counters as a JSON document on disk. A missing or
// unreadable file loads as zeroed counters.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store writing to the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the counters from disk. Corrupt or absent data yields zeroes.
func (f *FileStore) Load() (Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Stats{}, nil
		}
		return Stats{}, fmt.Errorf("failed to read stats file: %w", err)
	}

	var s Stats
	if err := json.Unmarshal(data, &s); err != nil {
		return Stats{}, nil
	}
	return s, nil
}

// Save writes the counters to disk, creating parent directories as needed.
func (f *FileStore) Save(s Stats) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create stats directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	if err := os.WriteFile(f.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write stats file: %w", err)
	}
	return nil
}

// MemStore keeps counters in memory. Used in tests and as a fallback
// when no stats path is configured.
type MemStore struct {
	mu    sync.Mutex
	stats Stats
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

func (m *MemStore) Load() (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats, nil
}

func (m *MemStore) Save(s Stats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats = s
	return nil
}
