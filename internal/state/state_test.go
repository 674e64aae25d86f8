package state

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	_ "modernc.org/sqlite"

	"github.com/llehouerou/wavecore/internal/media"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestGetSession_Empty(t *testing.T) {
	db := setupTestDB(t)

	session, err := getSession(db)
	if err != nil {
		t.Fatalf("getSession failed: %v", err)
	}
	if session != nil {
		t.Errorf("expected nil session on empty db, got %+v", session)
	}
}

func TestSaveAndGetSession(t *testing.T) {
	db := setupTestDB(t)

	want := Session{
		Path:     "/music/album/01.flac",
		Position: 83*time.Second + 250*time.Millisecond,
		Status:   media.StatusPaused,
	}
	if err := saveSession(context.Background(), db, want, time.Now()); err != nil {
		t.Fatalf("saveSession failed: %v", err)
	}

	got, err := getSession(db)
	if err != nil {
		t.Fatalf("getSession failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected non-nil session")
	}
	if *got != want {
		t.Errorf("session = %+v, want %+v", *got, want)
	}
}

func TestSaveSession_Update(t *testing.T) {
	db := setupTestDB(t)

	now := time.Now()
	_ = saveSession(context.Background(), db, Session{Path: "/a.mp3", Position: time.Second, Status: media.StatusPlaying}, now)
	_ = saveSession(context.Background(), db, Session{Path: "/b.mp3", Position: 2 * time.Second, Status: media.StatusStopped}, now)

	got, err := getSession(db)
	if err != nil {
		t.Fatalf("getSession failed: %v", err)
	}
	if got.Path != "/b.mp3" || got.Position != 2*time.Second || got.Status != media.StatusStopped {
		t.Errorf("session = %+v, want /b.mp3 at 2s stopped", *got)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM session_state`).Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("session rows = %d, want 1", count)
	}
}

func TestSaveSession_TruncatesToMilliseconds(t *testing.T) {
	db := setupTestDB(t)

	_ = saveSession(context.Background(), db, Session{Path: "/a.wav", Position: 1500*time.Microsecond + 7}, time.Now())

	got, err := getSession(db)
	if err != nil {
		t.Fatalf("getSession failed: %v", err)
	}
	if got.Position != time.Millisecond {
		t.Errorf("Position = %v, want 1ms", got.Position)
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want media.Status
	}{
		{"Playing", media.StatusPlaying},
		{"Paused", media.StatusPaused},
		{"Closed", media.StatusClosed},
		{"Stopped", media.StatusStopped},
		{"", media.StatusStopped},
		{"garbage", media.StatusStopped},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseStatus(tt.in); got != tt.want {
				t.Errorf("parseStatus(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRecentFiles_Order(t *testing.T) {
	db := setupTestDB(t)

	base := time.Now()
	_ = saveSession(context.Background(), db, Session{Path: "/old.mp3"}, base.Add(-2*time.Hour))
	_ = saveSession(context.Background(), db, Session{Path: "/mid.mp3"}, base.Add(-time.Hour))
	_ = saveSession(context.Background(), db, Session{Path: "/new.mp3", Position: 5 * time.Second}, base)

	entries, err := recentFiles(db, 2)
	if err != nil {
		t.Fatalf("recentFiles failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].Path != "/new.mp3" || entries[1].Path != "/mid.mp3" {
		t.Errorf("order = %s, %s; want /new.mp3, /mid.mp3", entries[0].Path, entries[1].Path)
	}
	if entries[0].Position != 5*time.Second {
		t.Errorf("Position = %v, want 5s", entries[0].Position)
	}
}

func TestRecentFiles_PlayCount(t *testing.T) {
	db := setupTestDB(t)

	base := time.Now()
	// Two saves close together are the same play
	_ = saveSession(context.Background(), db, Session{Path: "/a.mp3"}, base.Add(-3*time.Hour))
	_ = saveSession(context.Background(), db, Session{Path: "/a.mp3"}, base.Add(-3*time.Hour+time.Minute))
	// A save after a long gap is a new play
	_ = saveSession(context.Background(), db, Session{Path: "/a.mp3"}, base)

	entries, err := recentFiles(db, 0)
	if err != nil {
		t.Fatalf("recentFiles failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].PlayCount != 2 {
		t.Errorf("PlayCount = %d, want 2", entries[0].PlayCount)
	}
}

func TestManager_SaveSession_Debounced(t *testing.T) {
	db := setupTestDB(t)

	m := newManager(db)
	m.SaveSession(Session{Path: "/a.mp3", Position: time.Second})
	m.SaveSession(Session{Path: "/a.mp3", Position: 2 * time.Second})

	// Nothing written before the debounce fires
	got, err := m.GetSession()
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no session before flush, got %+v", got)
	}

	m.Flush()

	got, err = m.GetSession()
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got == nil || got.Position != 2*time.Second {
		t.Errorf("expected last saved session at 2s, got %+v", got)
	}
}

func TestManager_SaveSession_FiresAfterDebounce(t *testing.T) {
	db := setupTestDB(t)

	m := newManager(db)
	m.SaveSession(Session{Path: "/a.mp3"})

	deadline := time.Now().Add(5 * saveDelay)
	for time.Now().Before(deadline) {
		if got, _ := m.GetSession(); got != nil {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("session was not written after the debounce delay")
}

func TestManager_CloseFlushes(t *testing.T) {
	path := t.TempDir() + "/wavecore.db"
	m, err := OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath failed: %v", err)
	}
	m.SaveSession(Session{Path: "/a.mp3", Position: 3 * time.Second, Status: media.StatusPaused})
	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	m, err = OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath failed: %v", err)
	}
	defer m.Close()

	got, err := m.GetSession()
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got == nil || got.Path != "/a.mp3" || got.Position != 3*time.Second {
		t.Errorf("session after reopen = %+v", got)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db := setupTestDB(t)

	if err := migrate(context.Background(), db); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	v, err := schemaVersion(db)
	if err != nil {
		t.Fatalf("schemaVersion: %v", err)
	}
	if v != len(migrations) {
		t.Errorf("user_version = %d, want %d", v, len(migrations))
	}
}

func TestMigrate_CanceledContextLeavesVersion(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := migrate(ctx, db); err == nil {
		t.Fatal("migrate with a canceled context returned nil")
	}
	if v, _ := schemaVersion(db); v != 0 {
		t.Errorf("user_version = %d, want 0", v)
	}
}

func TestSaveSession_CanceledContext(t *testing.T) {
	db := setupTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := saveSession(ctx, db, Session{Path: "/a.mp3"}, time.Now()); err == nil {
		t.Fatal("saveSession with a canceled context returned nil")
	}
	if got, _ := getSession(db); got != nil {
		t.Errorf("session = %+v, want none", got)
	}
}

func TestMigrate_ResumesFromOlderVersion(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	defer db.Close()

	// A database created before play counts existed
	for _, stmt := range migrations[:2] {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("exec: %v", err)
		}
	}
	if _, err := db.Exec(`PRAGMA user_version = 2`); err != nil {
		t.Fatalf("set version: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO play_history (path, last_played_at) VALUES ('/old.ogg', 1)`); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	entries, err := recentFiles(db, 5)
	if err != nil {
		t.Fatalf("recentFiles: %v", err)
	}
	if len(entries) != 1 || entries[0].PlayCount != 1 {
		t.Errorf("entries = %+v, want /old.ogg played once", entries)
	}
}

func TestManager_FlushFailureIsLogged(t *testing.T) {
	db := setupTestDB(t)
	logger, hook := test.NewNullLogger()
	m := newManager(db)
	m.SetLogger(logrus.NewEntry(logger))

	db.Close()
	m.SaveSession(Session{Path: "/a.mp3"})
	m.Flush()

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("expected a warning for the failed write")
	}
	if entry.Level != logrus.WarnLevel || entry.Data["path"] != "/a.mp3" {
		t.Errorf("entry = %v %v, want warn with path", entry.Level, entry.Data)
	}
}

func TestMock_RecordsSaves(t *testing.T) {
	m := NewMock()
	m.SaveSession(Session{Path: "/a.mp3"})
	m.SaveSession(Session{Path: "/b.mp3"})

	saved := m.Saved()
	if len(saved) != 2 || saved[1].Path != "/b.mp3" {
		t.Errorf("Saved() = %+v", saved)
	}
	got, _ := m.GetSession()
	if got == nil || got.Path != "/b.mp3" {
		t.Errorf("GetSession() = %+v", got)
	}
}
