// Package pipeline is the control surface of the playback pipeline: it owns
// the media clock, repositions the decoder on seeks and runs the loop on
// which pending transport commands are executed.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/wavecore/internal/blocks"
	"github.com/llehouerou/wavecore/internal/clock"
	"github.com/llehouerou/wavecore/internal/media"
	"github.com/llehouerou/wavecore/internal/renderer"
)

const (
	DefaultTickInterval     = 20 * time.Millisecond
	DefaultPositionInterval = 250 * time.Millisecond
)

// ErrNotSeekable is returned by a user seek on media that cannot seek.
var ErrNotSeekable = errors.New("media is not seekable")

// Decoder repositions the media source.
type Decoder interface {
	Seek(position time.Duration) error
}

// Executor runs the pending transport command, if any.
type Executor interface {
	ExecutePending(ctx context.Context) bool
}

// Config tunes the pipeline loop.
type Config struct {
	// TickInterval is how often the loop wakes up on its own.
	TickInterval time.Duration
	// PositionInterval throttles position publication while playing.
	// Zero publishes on every tick.
	PositionInterval time.Duration
}

// Pipeline drives the clock of the open media. Its Run loop is the only
// goroutine executing transport commands and end-of-media handling, so
// those never overlap.
type Pipeline struct {
	log       *logrus.Entry
	cfg       Config
	clock     *clock.Clock
	state     *media.State
	renderers *renderer.Set
	resume    chan struct{}

	mu       sync.RWMutex
	executor Executor
	decoder  Decoder
	index    *blocks.Index

	lastPublish time.Time
}

// New creates a pipeline. A zero TickInterval uses DefaultTickInterval.
func New(cfg Config, clk *clock.Clock, st *media.State, rs *renderer.Set, log *logrus.Entry) *Pipeline {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	return &Pipeline{
		log:       log,
		cfg:       cfg,
		clock:     clk,
		state:     st,
		renderers: rs,
		resume:    make(chan struct{}, 1),
	}
}

// TickInterval returns the loop period.
func (p *Pipeline) TickInterval() time.Duration { return p.cfg.TickInterval }

// SetExecutor sets the command executor polled by the loop.
func (p *Pipeline) SetExecutor(e Executor) {
	p.mu.Lock()
	p.executor = e
	p.mu.Unlock()
}

// Attach binds the decoder and frame index of newly opened media.
// Either may be nil.
func (p *Pipeline) Attach(dec Decoder, idx *blocks.Index) {
	p.mu.Lock()
	p.decoder = dec
	p.index = idx
	p.mu.Unlock()
}

// Detach unbinds the media and rewinds the clock.
func (p *Pipeline) Detach() {
	p.mu.Lock()
	p.decoder = nil
	p.index = nil
	p.mu.Unlock()
	p.clock.Reset()
}

// Index returns the frame index of the open media, or nil.
func (p *Pipeline) Index() *blocks.Index {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.index
}

// Resume wakes the loop so it observes pending work immediately.
// Never blocks; wake-ups coalesce.
func (p *Pipeline) Resume() {
	select {
	case p.resume <- struct{}{}:
	default:
		// Already signaled
	}
}

// PlayClock starts the media clock.
func (p *Pipeline) PlayClock() { p.clock.Play() }

// PauseClock freezes the media clock.
func (p *Pipeline) PauseClock() { p.clock.Pause() }

// ResetClock pauses the media clock and rewinds it to zero.
func (p *Pipeline) ResetClock() { p.clock.Reset() }

// WallClock returns the current clock position.
func (p *Pipeline) WallClock() time.Duration { return p.clock.Position() }

// Seek moves the decoder and the clock to position and publishes it.
// A SeekStop rewind is allowed on unseekable media: the decoder is left
// alone and only the clock and published position move.
func (p *Pipeline) Seek(ctx context.Context, position time.Duration, mode media.SeekMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info := p.state.Info()
	if !info.IsSeekable && mode == media.SeekNormal {
		return ErrNotSeekable
	}

	position = media.Normalize(position)
	duration, finite := info.Duration()
	if finite && position > duration {
		position = duration
	}

	p.mu.RLock()
	dec, idx := p.decoder, p.index
	p.mu.RUnlock()

	if dec != nil && info.IsSeekable {
		if err := dec.Seek(position); err != nil {
			return fmt.Errorf("seek decoder to %v: %w", position, err)
		}
	}
	if idx != nil {
		idx.Clear()
	}

	p.clock.Update(position)
	if !finite || position < duration {
		p.state.SetEnded(false)
	}
	p.state.PublishSeek(position, mode)

	p.log.WithFields(logrus.Fields{
		"position": position,
		"mode":     mode,
	}).Debug("seek")
	return nil
}

// Run wakes up on every tick or Resume until ctx is done.
func (p *Pipeline) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.cfg.TickInterval)
	defer ticker.Stop()

	p.log.Debug("pipeline loop started")
	defer p.log.Debug("pipeline loop stopped")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-p.resume:
		case <-ticker.C:
		}
		p.Step(ctx)
	}
}

// Step runs one loop iteration: execute the pending command, then advance
// playback bookkeeping.
func (p *Pipeline) Step(ctx context.Context) {
	p.mu.RLock()
	ex := p.executor
	p.mu.RUnlock()

	if ex != nil {
		p.execute(ctx, ex)
	}
	p.update()
}

// execute runs the pending command. A panicking command is logged and the
// loop carries on; the executor has already released its slot.
func (p *Pipeline) execute(ctx context.Context, ex Executor) {
	defer func() {
		if r := recover(); r != nil {
			p.log.WithField("panic", r).Error("priority command panicked")
		}
	}()
	ex.ExecutePending(ctx)
}

func (p *Pipeline) update() {
	snap := p.state.Snapshot()
	if snap.Status != media.StatusPlaying || !p.clock.IsRunning() {
		return
	}

	pos := p.clock.Position()
	if d, ok := snap.Info.Duration(); ok && snap.Info.IsSeekable && !snap.Info.IsLiveStream && pos >= d {
		p.endReached(d)
		return
	}

	now := time.Now()
	if now.Sub(p.lastPublish) < p.cfg.PositionInterval {
		return
	}
	p.lastPublish = now
	p.state.SetPosition(pos)
}

// endReached parks finite media on its last position.
func (p *Pipeline) endReached(duration time.Duration) {
	p.clock.Pause()
	p.clock.Update(duration)
	p.renderers.Each(func(r renderer.Renderer) { r.Pause() })
	p.state.SetPosition(duration)
	p.state.SetEnded(true)
	p.state.SetStatus(media.StatusPaused)

	p.log.WithField("duration", duration).Info("media ended")
}
