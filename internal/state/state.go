// Package state persists the last playback session in a SQLite database
// under the XDG data directory.
package state

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite" // SQLite driver
)

const saveDelay = 500 * time.Millisecond

// DefaultPath is where Open keeps the database.
func DefaultPath() (string, error) {
	return xdg.DataFile(filepath.Join("wavecore", "wavecore.db"))
}

// Manager stores sessions, coalescing bursts of saves into one write.
type Manager struct {
	db  *sql.DB
	log *logrus.Entry

	mu      sync.Mutex
	timer   *time.Timer
	pending *Session
}

// Open opens the database at DefaultPath.
func Open() (*Manager, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return OpenPath(path)
}

// OpenPath opens the database at path. ":memory:" is accepted.
func OpenPath(path string) (*Manager, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One writer; also keeps ":memory:" a single database
	db.SetMaxOpenConns(1)
	if err := migrate(context.Background(), db); err != nil {
		db.Close()
		return nil, err
	}
	return newManager(db), nil
}

func newManager(db *sql.DB) *Manager {
	return &Manager{db: db, log: logrus.WithField("component", "state")}
}

// SetLogger replaces the entry write failures are reported to.
func (m *Manager) SetLogger(log *logrus.Entry) {
	if log != nil {
		m.log = log
	}
}

// SaveSession schedules session to be written once saves stop for
// saveDelay. Only the latest one is kept.
func (m *Manager) SaveSession(session Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = &session
	if m.timer == nil {
		m.timer = time.AfterFunc(saveDelay, m.Flush)
		return
	}
	m.timer.Reset(saveDelay)
}

// Flush writes the pending session now, if any.
func (m *Manager) Flush() {
	m.mu.Lock()
	session := m.pending
	m.pending = nil
	if m.timer != nil {
		m.timer.Stop()
	}
	m.mu.Unlock()

	if session == nil {
		return
	}
	if err := saveSession(context.Background(), m.db, *session, time.Now()); err != nil {
		m.log.WithError(err).WithField("path", session.Path).Warn("saving session failed")
	}
}

func (m *Manager) GetSession() (*Session, error) {
	return getSession(m.db)
}

// RecentFiles returns the most recently played files, newest first.
func (m *Manager) RecentFiles(limit int) ([]HistoryEntry, error) {
	return recentFiles(m.db, limit)
}

// Close writes any pending session and closes the database.
func (m *Manager) Close() error {
	m.Flush()
	return m.db.Close()
}
