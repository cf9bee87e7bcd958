package repositories

import (
	"database/sql"
	"testing"

	"github.com/desertthunder/songscan/internal/models"
	"github.com/desertthunder/songscan/internal/shared"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func succeededRecord(fileName, trackID string) *models.ScanRecord {
	m := models.NewScanRecord(fileName, 1024, "audio/mpeg", models.OutcomeSucceeded)
	m.SetTrack(trackID, "Flowers", "Miley Cyrus")
	return m
}

func TestScanRepository(t *testing.T) {
	repo := NewScanRepository()

	t.Run("Create assigns id and sequence", func(t *testing.T) {
		db := testDB(t)

		first := succeededRecord("one.mp3", "t1")
		if err := repo.Create(db, first); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		second := succeededRecord("two.mp3", "t2")
		if err := repo.Create(db, second); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		if first.ID() == "" || second.ID() == "" {
			t.Error("expected generated ids")
		}
		if first.Sequence() != 1 || second.Sequence() != 2 {
			t.Errorf("expected sequences 1 and 2, got %d and %d", first.Sequence(), second.Sequence())
		}
	})

	t.Run("Create rejects invalid records", func(t *testing.T) {
		db := testDB(t)

		m := models.NewScanRecord("", 0, "", models.OutcomeFailed)
		if err := repo.Create(db, m); err == nil {
			t.Error("expected validation error for missing file name")
		}

		m = models.NewScanRecord("clip.mp3", 10, "audio/mpeg", models.OutcomeSucceeded)
		if err := repo.Create(db, m); err == nil {
			t.Error("expected validation error for success without track id")
		}
	})

	t.Run("Get round-trips a record", func(t *testing.T) {
		db := testDB(t)

		m := models.NewScanRecord("clip.mp3", 2048, "audio/wav", models.OutcomeFailed)
		m.SetErrorKind("no_match")
		if err := repo.Create(db, m); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		got, err := repo.Get(db, m.ID())
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.FileName() != "clip.mp3" || got.FileSize() != 2048 {
			t.Errorf("unexpected file fields: %s %d", got.FileName(), got.FileSize())
		}
		if got.Outcome() != models.OutcomeFailed || got.ErrorKind() != "no_match" {
			t.Errorf("unexpected outcome fields: %s %s", got.Outcome(), got.ErrorKind())
		}
	})

	t.Run("Update rewrites mutable fields", func(t *testing.T) {
		db := testDB(t)

		m := succeededRecord("clip.mp3", "t1")
		if err := repo.Create(db, m); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		m.SetTrack("t9", "Flowers (Deluxe)", "Miley Cyrus")
		if err := repo.Update(db, m); err != nil {
			t.Fatalf("Update failed: %v", err)
		}

		got, err := repo.Get(db, m.ID())
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.TrackID() != "t9" || got.TrackName() != "Flowers (Deluxe)" {
			t.Errorf("update not persisted: %s %s", got.TrackID(), got.TrackName())
		}
	})

	t.Run("Delete soft-deletes", func(t *testing.T) {
		db := testDB(t)

		m := succeededRecord("clip.mp3", "t1")
		if err := repo.Create(db, m); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if err := repo.Delete(db, m.ID()); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}

		if _, err := repo.Get(db, m.ID()); err == nil {
			t.Error("expected deleted record to be invisible")
		}
		if err := repo.Delete(db, m.ID()); err == nil {
			t.Error("expected second delete to fail")
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM scans WHERE id = ?", m.ID()).Scan(&count); err != nil {
			t.Fatalf("count query failed: %v", err)
		}
		if count != 1 {
			t.Errorf("expected row to remain in table, got %d", count)
		}
	})

	t.Run("Recent returns newest first", func(t *testing.T) {
		db := testDB(t)

		for _, name := range []string{"a.mp3", "b.mp3", "c.mp3"} {
			if err := repo.Create(db, succeededRecord(name, "t-"+name)); err != nil {
				t.Fatalf("Create failed: %v", err)
			}
		}

		recent, err := repo.Recent(db, 2)
		if err != nil {
			t.Fatalf("Recent failed: %v", err)
		}
		if len(recent) != 2 {
			t.Fatalf("expected 2 records, got %d", len(recent))
		}
		if recent[0].FileName() != "c.mp3" || recent[1].FileName() != "b.mp3" {
			t.Errorf("unexpected order: %s %s", recent[0].FileName(), recent[1].FileName())
		}
	})
}

func TestScanHistory(t *testing.T) {
	db := testDB(t)
	history := NewScanHistory(db)

	if err := history.Record(succeededRecord("clip.mp3", "t1")); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	recent, err := history.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 1 || recent[0].FileName() != "clip.mp3" {
		t.Errorf("unexpected history contents: %+v", recent)
	}
}

func TestNextSequence(t *testing.T) {
	db := testDB(t)

	n, err := NextSequence(db, "scans")
	if err != nil {
		t.Fatalf("NextSequence failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 for empty table, got %d", n)
	}

	repo := NewScanRepository()
	if err := repo.Create(db, succeededRecord("clip.mp3", "t1")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	n, err = NextSequence(db, "scans")
	if err != nil {
		t.Fatalf("NextSequence failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 after one insert, got %d", n)
	}
}
