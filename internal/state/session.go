package state

import (
	"context"
	"database/sql"
	"errors"
	"time"

	dbutil "github.com/llehouerou/wavecore/internal/db"
	"github.com/llehouerou/wavecore/internal/media"
)

// Session is the last opened media and where it was left.
type Session struct {
	Path     string
	Position time.Duration
	Status   media.Status
}

// HistoryEntry is one file of the play history.
type HistoryEntry struct {
	Path         string
	Position     time.Duration
	PlayCount    int64
	LastPlayedAt time.Time
}

func getSession(db *sql.DB) (*Session, error) {
	row := db.QueryRow(`
		SELECT path, position_ms, status
		FROM session_state WHERE id = 1
	`)

	var session Session
	var positionMs sql.NullInt64
	var status sql.NullString

	err := row.Scan(&session.Path, &positionMs, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // no saved session is valid on first run
	}
	if err != nil {
		return nil, err
	}

	session.Position = dbutil.FromMillis(positionMs)
	session.Status = parseStatus(dbutil.NullStringValue(status))

	return &session, nil
}

// saveSession stores the session and bumps the file in the play history.
func saveSession(ctx context.Context, db *sql.DB, session Session, now time.Time) error {
	positionMs := dbutil.Millis(session.Position)
	return dbutil.WithTx(ctx, db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO session_state (id, path, position_ms, status, saved_at)
			VALUES (1, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				path = excluded.path,
				position_ms = excluded.position_ms,
				status = excluded.status,
				saved_at = excluded.saved_at
		`, session.Path, positionMs, session.Status.String(), now.Unix())
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO play_history (path, position_ms, play_count, last_played_at)
			VALUES (?, ?, 1, ?)
			ON CONFLICT(path) DO UPDATE SET
				position_ms = excluded.position_ms,
				play_count = play_count + CASE WHEN play_history.last_played_at < ? THEN 1 ELSE 0 END,
				last_played_at = excluded.last_played_at
		`, session.Path, positionMs, now.Unix(), now.Add(-sessionGap).Unix())
		return err
	})
}

// sessionGap separates two plays of the same file in the history.
const sessionGap = time.Hour

func recentFiles(db *sql.DB, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(`
		SELECT path, position_ms, play_count, last_played_at
		FROM play_history
		ORDER BY last_played_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var positionMs, playCount sql.NullInt64
		var lastPlayed int64
		if err := rows.Scan(&e.Path, &positionMs, &playCount, &lastPlayed); err != nil {
			return nil, err
		}
		e.Position = dbutil.FromMillis(positionMs)
		e.PlayCount = dbutil.NullInt64Value(playCount)
		e.LastPlayedAt = time.Unix(lastPlayed, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func parseStatus(s string) media.Status {
	switch s {
	case media.StatusPlaying.String():
		return media.StatusPlaying
	case media.StatusPaused.String():
		return media.StatusPaused
	case media.StatusClosed.String():
		return media.StatusClosed
	default:
		return media.StatusStopped
	}
}
