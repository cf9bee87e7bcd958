package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/songscan/internal/models"
	"github.com/desertthunder/songscan/internal/shared"
)

// ScanRepository persists [models.ScanRecord] rows. Deletes are soft;
// reads exclude soft-deleted rows.
type ScanRepository struct{}

// NewScanRepository creates a scan record repository.
func NewScanRepository() *ScanRepository {
	return &ScanRepository{}
}

// Create inserts a scan record, assigning an id and sequence number.
func (r *ScanRepository) Create(db *sql.DB, m *models.ScanRecord) error {
	if err := m.Validate(); err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	seq, err := NextSequence(tx, "scans")
	if err != nil {
		return err
	}

	if m.ID() == "" {
		m.SetID(shared.GenerateID())
	}
	m.SetSequence(seq)

	_, err = tx.Exec(`INSERT INTO scans
		(id, sequence, file_name, file_size, media_type, outcome, error_kind,
		 track_id, track_name, track_artist, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID(), m.Sequence(), m.FileName(), m.FileSize(), m.MediaType(),
		string(m.Outcome()), m.ErrorKind(), m.TrackID(), m.TrackName(),
		m.TrackArtist(), m.CreatedAt(), m.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert scan record: %w", err)
	}

	return tx.Commit()
}

// Get fetches a scan record by id.
func (r *ScanRepository) Get(db *sql.DB, id string) (*models.ScanRecord, error) {
	row := db.QueryRow(`SELECT id, sequence, file_name, file_size, media_type,
		outcome, error_kind, track_id, track_name, track_artist,
		created_at, updated_at, deleted_at
		FROM scans WHERE id = ? AND deleted_at IS NULL`, id)
	return scanRow(row)
}

// Update rewrites a scan record's mutable fields.
func (r *ScanRepository) Update(db *sql.DB, m *models.ScanRecord) error {
	if err := m.Validate(); err != nil {
		return err
	}
	m.Touch()

	res, err := db.Exec(`UPDATE scans SET
		file_name = ?, file_size = ?, media_type = ?, outcome = ?,
		error_kind = ?, track_id = ?, track_name = ?, track_artist = ?,
		updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		m.FileName(), m.FileSize(), m.MediaType(), string(m.Outcome()),
		m.ErrorKind(), m.TrackID(), m.TrackName(), m.TrackArtist(),
		m.UpdatedAt(), m.ID())
	if err != nil {
		return fmt.Errorf("failed to update scan record: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("scan record not found: %s", m.ID())
	}
	return nil
}

// Delete soft-deletes a scan record.
func (r *ScanRepository) Delete(db *sql.DB, id string) error {
	res, err := db.Exec("UPDATE scans SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL",
		time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete scan record: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("scan record not found: %s", id)
	}
	return nil
}

// List returns all live scan records ordered by sequence.
func (r *ScanRepository) List(db *sql.DB) ([]*models.ScanRecord, error) {
	rows, err := db.Query(`SELECT id, sequence, file_name, file_size, media_type,
		outcome, error_kind, track_id, track_name, track_artist,
		created_at, updated_at, deleted_at
		FROM scans WHERE deleted_at IS NULL ORDER BY sequence`)
	if err != nil {
		return nil, fmt.Errorf("failed to list scan records: %w", err)
	}
	defer rows.Close()
	return collectRows(rows)
}

// Recent returns the newest live scan records, most recent first.
func (r *ScanRepository) Recent(db *sql.DB, limit int) ([]*models.ScanRecord, error) {
	rows, err := db.Query(`SELECT id, sequence, file_name, file_size, media_type,
		outcome, error_kind, track_id, track_name, track_artist,
		created_at, updated_at, deleted_at
		FROM scans WHERE deleted_at IS NULL ORDER BY sequence DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent scans: %w", err)
	}
	defer rows.Close()
	return collectRows(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRow(row rowScanner) (*models.ScanRecord, error) {
	var (
		id, fileName, mediaType, outcome    string
		errorKind, trackID, trackName      string
		trackArtist                        string
		sequence, fileSize                 int64
		createdAt, updatedAt               time.Time
		deletedAt                          sql.NullTime
	)

	err := row.Scan(&id, &sequence, &fileName, &fileSize, &mediaType,
		&outcome, &errorKind, &trackID, &trackName, &trackArtist,
		&createdAt, &updatedAt, &deletedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("scan record not found")
		}
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	m := models.NewScanRecord(fileName, fileSize, mediaType, models.Outcome(outcome))
	m.SetID(id)
	m.SetSequence(sequence)
	m.SetErrorKind(errorKind)
	m.SetTrack(trackID, trackName, trackArtist)
	m.SetCreatedAt(createdAt)
	m.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		t := deletedAt.Time
		m.SetDeletedAt(&t)
	}
	return m, nil
}

func collectRows(rows *sql.Rows) ([]*models.ScanRecord, error) {
	var records []*models.ScanRecord
	for rows.Next() {
		m, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scan records: %w", err)
	}
	return records, nil
}

// ScanHistory binds a repository to a database so the pipeline can record
// terminal runs without knowing about SQL.
type ScanHistory struct {
	db   *sql.DB
	repo *ScanRepository
}

// NewScanHistory creates a history recorder over the given database.
func NewScanHistory(db *sql.DB) *ScanHistory {
	return &ScanHistory{db: db, repo: NewScanRepository()}
}

// Record persists one terminal scan run.
func (h *ScanHistory) Record(rec *models.ScanRecord) error {
	return h.repo.Create(h.db, rec)
}

// Recent returns the newest runs, most recent first.
func (h *ScanHistory) Recent(limit int) ([]*models.ScanRecord, error) {
	return h.repo.Recent(h.db, limit)
}
