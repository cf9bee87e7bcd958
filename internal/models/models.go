// package models defines the persistence layer's domain objects and the
// generic repository contract they satisfy.
package models

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Model is the interface all persisted domain objects implement.
type Model interface {
	ID() string
	SetID(id string)
	Validate() error
}

// Repository defines generic CRUD operations over a [Model].
type Repository[T Model] interface {
	Create(db *sql.DB, m T) error
	Get(db *sql.DB, id string) (T, error)
	Update(db *sql.DB, m T) error
	Delete(db *sql.DB, id string) error
	List(db *sql.DB) ([]T, error)
}

// Outcome classifies how a scan run terminated.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)

// ScanRecord is a single recognition run persisted for history queries.
type ScanRecord struct {
	id          string
	sequence    int64
	fileName    string
	fileSize    int64
	mediaType   string
	outcome     Outcome
	errorKind   string
	trackID     string
	trackName   string
	trackArtist string
	createdAt   time.Time
	updatedAt   time.Time
	deletedAt   *time.Time
}

// NewScanRecord builds a record for a terminal scan run.
func NewScanRecord(fileName string, fileSize int64, mediaType string, outcome Outcome) *ScanRecord {
	now := time.Now()
	return &ScanRecord{
		fileName:  fileName,
		fileSize:  fileSize,
		mediaType: mediaType,
		outcome:   outcome,
		createdAt: now,
		updatedAt: now,
	}
}

func (s *ScanRecord) ID() string        { return s.id }
func (s *ScanRecord) SetID(id string)   { s.id = id }
func (s *ScanRecord) Sequence() int64   { return s.sequence }
func (s *ScanRecord) SetSequence(n int64) { s.sequence = n }

func (s *ScanRecord) FileName() string  { return s.fileName }
func (s *ScanRecord) FileSize() int64   { return s.fileSize }
func (s *ScanRecord) MediaType() string { return s.mediaType }
func (s *ScanRecord) Outcome() Outcome  { return s.outcome }

func (s *ScanRecord) ErrorKind() string { return s.errorKind }

// SetErrorKind labels a failed run with the category of error that ended it.
func (s *ScanRecord) SetErrorKind(kind string) { s.errorKind = kind }

func (s *ScanRecord) TrackID() string     { return s.trackID }
func (s *ScanRecord) TrackName() string   { return s.trackName }
func (s *ScanRecord) TrackArtist() string { return s.trackArtist }

// SetTrack records the resolved catalog track for a successful run.
func (s *ScanRecord) SetTrack(id, name, artist string) {
	s.trackID = id
	s.trackName = name
	s.trackArtist = artist
}

func (s *ScanRecord) CreatedAt() time.Time  { return s.createdAt }
func (s *ScanRecord) UpdatedAt() time.Time  { return s.updatedAt }
func (s *ScanRecord) DeletedAt() *time.Time { return s.deletedAt }

func (s *ScanRecord) SetCreatedAt(t time.Time)  { s.createdAt = t }
func (s *ScanRecord) SetUpdatedAt(t time.Time)  { s.updatedAt = t }
func (s *ScanRecord) SetDeletedAt(t *time.Time) { s.deletedAt = t }

// Touch updates the modification timestamp.
func (s *ScanRecord) Touch() { s.updatedAt = time.Now() }

// Validate checks that the record has a file name and a recognized outcome.
func (s *ScanRecord) Validate() error {
	if strings.TrimSpace(s.fileName) == "" {
		return fmt.Errorf("scan record requires a file name")
	}
	switch s.outcome {
	case OutcomeSucceeded, OutcomeFailed:
	default:
		return fmt.Errorf("unknown scan outcome: %q", s.outcome)
	}
	if s.outcome == OutcomeSucceeded && s.trackID == "" {
		return fmt.Errorf("successful scan requires a track id")
	}
	return nil
}
