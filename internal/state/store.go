package state

// Store is what the engine and the CLI need from session persistence.
type Store interface {
	SaveSession(session Session)
	GetSession() (*Session, error)
	RecentFiles(limit int) ([]HistoryEntry, error)
	Close() error
}

var (
	_ Store = (*Manager)(nil)
	_ Store = (*Mock)(nil)
)
