package renderer

import (
	"sync"
	"sync/atomic"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"

	"github.com/llehouerou/wavecore/internal/blocks"
)

// Output is the audio device an Audio renderer mixes into.
type Output interface {
	Lock()
	Unlock()
	Play(s ...beep.Streamer)
	Clear()
}

type speakerOutput struct{}

func (speakerOutput) Lock()                   { speaker.Lock() }
func (speakerOutput) Unlock()                 { speaker.Unlock() }
func (speakerOutput) Play(s ...beep.Streamer) { speaker.Play(s...) }
func (speakerOutput) Clear()                  { speaker.Clear() }

// Speaker returns the process-wide beep speaker. speaker.Init must have
// been called before the first Play.
func Speaker() Output {
	return speakerOutput{}
}

// Audio renders a beep stream through an Output. The stream is attached to
// the output on Play and detached on Close. Pause and Stop only gate it;
// rewinding is the pipeline's job.
type Audio struct {
	mu      sync.Mutex
	out     Output
	ctrl    *beep.Ctrl
	volume  *effects.Volume
	att     *attachment
	stopped bool
}

// attachment is one registration of the stream with the output. A beep
// mixer drops a streamer for good once it comes up short, so the drained
// flag tells Play to register again after the source was rewound.
type attachment struct {
	s       beep.Streamer
	drained atomic.Bool
}

func (at *attachment) Stream(samples [][2]float64) (int, bool) {
	n, ok := at.s.Stream(samples)
	if n < len(samples) || !ok {
		at.drained.Store(true)
	}
	return n, ok
}

func (at *attachment) Err() error { return at.s.Err() }

// NewAudio creates a paused renderer for s.
func NewAudio(out Output, s beep.Streamer) *Audio {
	ctrl := &beep.Ctrl{Streamer: s, Paused: true}
	return &Audio{
		out:     out,
		ctrl:    ctrl,
		volume:  &effects.Volume{Streamer: ctrl, Base: 2},
		stopped: true,
	}
}

func (a *Audio) Kind() blocks.Kind { return blocks.Audio }

// Play attaches the stream if it is not attached or has drained, and
// unpauses it.
func (a *Audio) Play() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.att == nil || a.att.drained.Load() {
		a.att = &attachment{s: a.volume}
		a.out.Play(a.att)
	}
	a.out.Lock()
	a.ctrl.Paused = false
	a.out.Unlock()
	a.stopped = false
}

// Pause holds the stream at its current sample.
func (a *Audio) Pause() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.setPaused()
}

// Stop holds the stream and marks the renderer stopped.
func (a *Audio) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.setPaused()
	a.stopped = true
}

func (a *Audio) setPaused() {
	a.out.Lock()
	a.ctrl.Paused = true
	a.out.Unlock()
}

// SetMuted silences the output without pausing it.
func (a *Audio) SetMuted(muted bool) {
	a.out.Lock()
	a.volume.Silent = muted
	a.out.Unlock()
}

// IsPaused returns true if the stream is not advancing.
func (a *Audio) IsPaused() bool {
	a.out.Lock()
	defer a.out.Unlock()
	return a.ctrl.Paused
}

// IsStopped returns true after Stop until the next Play.
func (a *Audio) IsStopped() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stopped
}

// Close detaches every stream from the output.
func (a *Audio) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.att != nil {
		a.out.Clear()
		a.att = nil
	}
	return nil
}
