package state

import "sync"

// Mock is a test double for Manager.
type Mock struct {
	mu      sync.Mutex
	session *Session
	saved   []Session
	history []HistoryEntry
	closed  bool
}

// NewMock creates a new mock state manager for testing.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) SaveSession(session Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, session)
	m.session = &session
}

func (m *Mock) GetSession() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session, nil
}

func (m *Mock) RecentFiles(_ int) ([]HistoryEntry, error) {
	return m.history, nil
}

func (m *Mock) Close() error {
	m.closed = true
	return nil
}

// Test helpers

func (m *Mock) SetSession(session *Session) {
	m.mu.Lock()
	m.session = session
	m.mu.Unlock()
}

func (m *Mock) SetHistory(entries []HistoryEntry) { m.history = entries }

// Saved returns every session passed to SaveSession, in order.
func (m *Mock) Saved() []Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Session(nil), m.saved...)
}

func (m *Mock) IsClosed() bool { return m.closed }
