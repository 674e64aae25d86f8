package command

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/llehouerou/wavecore/internal/blocks"
	"github.com/llehouerou/wavecore/internal/media"
	"github.com/llehouerou/wavecore/internal/renderer"
)

type seekCall struct {
	position time.Duration
	mode     media.SeekMode
}

type fakePipeline struct {
	mu        sync.Mutex
	wallClock time.Duration
	running   bool
	resumes   int
	calls     []string
	seeks     []seekCall
	seekErr   error
	seekPanic bool
}

func (p *fakePipeline) Resume() {
	p.mu.Lock()
	p.resumes++
	p.mu.Unlock()
}

func (p *fakePipeline) PlayClock() { p.record("play", func() { p.running = true }) }

func (p *fakePipeline) PauseClock() { p.record("pause", func() { p.running = false }) }

func (p *fakePipeline) ResetClock() {
	p.record("reset", func() {
		p.running = false
		p.wallClock = 0
	})
}

func (p *fakePipeline) WallClock() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.wallClock
}

func (p *fakePipeline) Seek(_ context.Context, pos time.Duration, mode media.SeekMode) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.seekPanic {
		panic("decoder exploded")
	}
	p.calls = append(p.calls, "seek")
	p.seeks = append(p.seeks, seekCall{position: pos, mode: mode})
	if p.seekErr != nil {
		return p.seekErr
	}
	p.wallClock = pos
	return nil
}

func (p *fakePipeline) record(name string, fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, name)
	fn()
}

func (p *fakePipeline) setWallClock(d time.Duration) {
	p.mu.Lock()
	p.wallClock = d
	p.mu.Unlock()
}

func (p *fakePipeline) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

func (p *fakePipeline) Resumes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.resumes
}

func (p *fakePipeline) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

type fakeLifecycle struct {
	disposed  atomic.Bool
	disposing atomic.Bool
	open      atomic.Bool
}

func (l *fakeLifecycle) IsDisposed() bool  { return l.disposed.Load() }
func (l *fakeLifecycle) IsDisposing() bool { return l.disposing.Load() }
func (l *fakeLifecycle) IsOpen() bool      { return l.open.Load() }

type fixture struct {
	m        *Manager
	pipeline *fakePipeline
	life     *fakeLifecycle
	gate     *Gate
	state    *media.State
	audio    *renderer.Mock
	video    *renderer.Mock
	index    *blocks.Index
	hook     *test.Hook
}

func newFixture(t *testing.T, info media.Info) *fixture {
	t.Helper()

	f := &fixture{
		pipeline: &fakePipeline{},
		life:     &fakeLifecycle{},
		gate:     &Gate{},
		state:    media.NewState(0),
		audio:    renderer.NewMock(blocks.Audio),
		video:    renderer.NewMock(blocks.Video),
	}
	f.life.open.Store(true)
	f.state.Open(info)

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	f.hook = hook

	f.m = New(Deps{
		Lifecycle: f.life,
		Gate:      f.gate,
		Pipeline:  f.pipeline,
		Renderers: renderer.NewSet(f.audio, f.video),
		State:     f.state,
		Frames: func() FrameIndex {
			if f.index == nil {
				return nil
			}
			return f.index
		},
	}, logrus.NewEntry(logger))
	f.m.SetRunning(true)
	return f
}

func seekable(d time.Duration) media.Info {
	return media.Info{IsSeekable: true, CanPause: true, NaturalDuration: mo.Some(d)}
}

// resolvedWithin waits for r and returns its value, failing after timeout.
func resolvedWithin(t *testing.T, r *Result, timeout time.Duration) bool {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	ok, err := r.Wait(ctx)
	if err != nil {
		t.Fatalf("result not resolved within %v", timeout)
	}
	return ok
}

func isResolved(r *Result) bool {
	select {
	case <-r.Done():
		return true
	default:
		return false
	}
}
