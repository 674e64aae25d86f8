package state

import (
	"context"
	"database/sql"
	"fmt"

	dbutil "github.com/llehouerou/wavecore/internal/db"
)

// migrations are applied in order; user_version records how many ran.
var migrations = []string{
	`CREATE TABLE session_state (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		path TEXT NOT NULL,
		position_ms INTEGER NOT NULL DEFAULT 0,
		status TEXT,
		saved_at INTEGER NOT NULL
	)`,
	`CREATE TABLE play_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT NOT NULL UNIQUE,
		position_ms INTEGER NOT NULL DEFAULT 0,
		last_played_at INTEGER NOT NULL
	);
	CREATE INDEX idx_play_history_last_played ON play_history(last_played_at DESC)`,
	`ALTER TABLE play_history ADD COLUMN play_count INTEGER NOT NULL DEFAULT 1`,
}

func schemaVersion(db *sql.DB) (int, error) {
	var v int
	err := db.QueryRow(`PRAGMA user_version`).Scan(&v)
	return v, err
}

func migrate(ctx context.Context, db *sql.DB) error {
	from, err := schemaVersion(db)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for v := from; v < len(migrations); v++ {
		err := dbutil.WithTx(ctx, db, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, migrations[v]); err != nil {
				return err
			}
			// PRAGMA does not take bound parameters
			_, err := tx.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d`, v+1))
			return err
		})
		if err != nil {
			return fmt.Errorf("migration %d: %w", v+1, err)
		}
	}
	return nil
}
