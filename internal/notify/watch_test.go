package notify

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/wavecore/internal/media"
	"github.com/llehouerou/wavecore/internal/tags"
)

const waitFor = 2 * time.Second

type fakeNotifier struct {
	mu     sync.Mutex
	sent   []Notification
	closed []uint32
	nextID uint32
}

func (f *fakeNotifier) Notify(n Notification) (uint32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, n)
	if n.ReplacesID != 0 {
		return n.ReplacesID, nil
	}
	f.nextID++
	return f.nextID, nil
}

func (f *fakeNotifier) Close(id uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = append(f.closed, id)
	return nil
}

func (f *fakeNotifier) Sent() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Notification(nil), f.sent...)
}

func (f *fakeNotifier) Closed() []uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uint32(nil), f.closed...)
}

func startWatcher(t *testing.T, st *media.State, n Notifier) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	w := NewWatcher(st.Subscribe(), st.Snapshot, n, logrus.NewEntry(logger))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func song() media.Info {
	return media.Info{
		Path:            "/music/album/Song.flac",
		IsSeekable:      true,
		CanPause:        true,
		NaturalDuration: mo.Some(3*time.Minute + 5*time.Second),
	}
}

func TestWatcher_AnnouncesOncePerFile(t *testing.T) {
	st := media.NewState(0)
	n := &fakeNotifier{}
	startWatcher(t, st, n)

	st.Open(song())
	st.SetStatus(media.StatusPlaying)
	st.SetStatus(media.StatusPaused)
	st.SetStatus(media.StatusPlaying)

	require.Eventually(t, func() bool { return len(n.Sent()) == 1 }, waitFor, time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	sent := n.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Song", sent[0].Title)
	assert.Equal(t, "Now playing (3:05)", sent[0].Body)
	assert.Equal(t, UrgencyNormal, sent[0].Urgency)
	assert.Zero(t, sent[0].ReplacesID)
}

func TestWatcher_EndReplacesAnnouncement(t *testing.T) {
	st := media.NewState(0)
	n := &fakeNotifier{}
	startWatcher(t, st, n)

	st.Open(song())
	st.SetStatus(media.StatusPlaying)
	require.Eventually(t, func() bool { return len(n.Sent()) == 1 }, waitFor, time.Millisecond)

	st.SetStatus(media.StatusPaused)
	st.SetEnded(true)
	require.Eventually(t, func() bool { return len(n.Sent()) == 2 }, waitFor, time.Millisecond)

	finished := n.Sent()[1]
	assert.Equal(t, "Finished", finished.Body)
	assert.Equal(t, uint32(1), finished.ReplacesID)
	assert.Equal(t, UrgencyLow, finished.Urgency)
}

func TestWatcher_CloseDismissesNotification(t *testing.T) {
	st := media.NewState(0)
	n := &fakeNotifier{}
	startWatcher(t, st, n)

	st.Open(song())
	st.SetStatus(media.StatusPlaying)
	require.Eventually(t, func() bool { return len(n.Sent()) == 1 }, waitFor, time.Millisecond)

	st.Close()
	require.Eventually(t, func() bool { return len(n.Closed()) == 1 }, waitFor, time.Millisecond)
	assert.Equal(t, []uint32{1}, n.Closed())

	// Reopening the same file announces it again
	st.Open(song())
	st.SetStatus(media.StatusPlaying)
	require.Eventually(t, func() bool { return len(n.Sent()) == 2 }, waitFor, time.Millisecond)
	assert.Zero(t, n.Sent()[1].ReplacesID)
}

func TestWatcher_StopsWhenSubscriptionsClose(t *testing.T) {
	st := media.NewState(0)
	logger, _ := test.NewNullLogger()
	w := NewWatcher(st.Subscribe(), st.Snapshot, &fakeNotifier{}, logrus.NewEntry(logger))

	st.CloseSubscriptions()
	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("watcher did not stop")
	}
}

func TestBody(t *testing.T) {
	assert.Equal(t, "Now playing (live)", Body(media.Info{IsLiveStream: true}, ""))
	assert.Equal(t, "Now playing", Body(media.Info{}, ""))
	assert.Equal(t, "Now playing", Body(media.Info{NaturalDuration: mo.Some(media.Forever)}, ""))
	assert.Equal(t, "Now playing (1:00)", Body(media.Info{NaturalDuration: mo.Some(59600 * time.Millisecond)}, ""))
	assert.Equal(t, "Band - Album (2:00)", Body(media.Info{NaturalDuration: mo.Some(2 * time.Minute)}, "Band - Album"))
}

func TestWatcher_AnnouncesMediaAlreadyPlaying(t *testing.T) {
	st := media.NewState(0)
	st.Open(song())
	st.SetStatus(media.StatusPlaying)

	n := &fakeNotifier{}
	startWatcher(t, st, n)

	require.Eventually(t, func() bool { return len(n.Sent()) == 1 }, waitFor, time.Millisecond)
	assert.Equal(t, "Song", n.Sent()[0].Title)
}

func TestNowPlayingUsesFolderArt(t *testing.T) {
	dir := t.TempDir()
	art := filepath.Join(dir, "front.png")
	require.NoError(t, os.WriteFile(art, []byte{0x89, 'P', 'N', 'G'}, 0o600))

	info := song()
	info.Path = filepath.Join(dir, "Song.flac")
	n := nowPlaying(info, tags.Untagged(info.Path))

	assert.Equal(t, art, n.Icon)
	assert.Equal(t, "Song", n.Title)
}
