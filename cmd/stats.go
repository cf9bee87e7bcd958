package main

import (
	"context"
	"fmt"
)

// Stats prints the lifetime scan counters.
func (r *Runner) Stats(ctx context.Context, asJSON bool) error {
	tally, err := r.engine.Stats()
	if err != nil {
		return err
	}

	if asJSON {
		return r.writeJSON(tally, true)
	}

	r.writePlainHeader("Scan Stats")
	r.writePlainln("Total:      %d", tally.Total)
	r.writePlainln("Identified: %d", tally.Successful)
	r.writePlainln("Missed:     %d", tally.Failed)
	if tally.Total > 0 {
		r.writePlainln("Hit rate:   %.0f%%", tally.SuccessRate()*100)
	}
	return nil
}

// History prints recent scan runs from the database.
func (r *Runner) History(ctx context.Context, limit int, asJSON bool) error {
	if err := r.OpenDatabase(); err != nil {
		return err
	}

	if limit <= 0 {
		limit = 20
	}
	records, err := r.history.Recent(limit)
	if err != nil {
		return err
	}

	if asJSON {
		entries := make([]map[string]any, 0, len(records))
		for _, rec := range records {
			entries = append(entries, map[string]any{
				"file_name":    rec.FileName(),
				"outcome":      string(rec.Outcome()),
				"error_kind":   rec.ErrorKind(),
				"track_id":     rec.TrackID(),
				"track_name":   rec.TrackName(),
				"track_artist": rec.TrackArtist(),
				"created_at":   rec.CreatedAt(),
			})
		}
		return r.writeJSON(entries, true)
	}

	r.writePlainHeader("Recent Scans")
	if len(records) == 0 {
		r.writePlainln("No scans recorded yet.")
		return nil
	}
	for _, rec := range records {
		line := fmt.Sprintf("%s  %-9s  %s", rec.CreatedAt().Format("2006-01-02 15:04"), rec.Outcome(), rec.FileName())
		if rec.TrackName() != "" {
			line += fmt.Sprintf("  %s by %s", rec.TrackName(), rec.TrackArtist())
		} else if rec.ErrorKind() != "" {
			line += fmt.Sprintf("  (%s)", rec.ErrorKind())
		}
		r.writePlainln("%s", line)
	}
	return nil
}
