// package repositories implements database access for persisted scan runs.
package repositories

import (
	"database/sql"
	"fmt"
)

// Querier is the subset of [sql.DB] and [sql.Tx] the sequence read needs.
type Querier interface {
	QueryRow(query string, args ...any) *sql.Row
}

// NextSequence returns the next sequence number for rows in the given table.
// Pass the insert's transaction when writers can race.
func NextSequence(q Querier, table string) (int64, error) {
	var next int64
	query := fmt.Sprintf("SELECT COALESCE(MAX(sequence), 0) + 1 FROM %s", table)
	if err := q.QueryRow(query).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to compute next sequence for %s: %w", table, err)
	}
	return next, nil
}
