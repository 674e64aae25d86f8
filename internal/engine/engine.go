// Package engine assembles the playback engine: it owns the lifecycle of
// the open media, runs the pipeline loop and exposes the transport
// operations.
//
// Play, Pause, Stop and Toggle are priority commands: they are admitted by
// the command manager and executed by the pipeline loop, one at a time.
// Open, Close and Seek are direct commands: they run on the caller's
// goroutine while holding the direct-command gate, and are refused while a
// priority command is pending.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/llehouerou/wavecore/internal/blocks"
	"github.com/llehouerou/wavecore/internal/clock"
	"github.com/llehouerou/wavecore/internal/command"
	"github.com/llehouerou/wavecore/internal/media"
	"github.com/llehouerou/wavecore/internal/pipeline"
	"github.com/llehouerou/wavecore/internal/renderer"
)

var (
	// ErrDisposed is returned by operations on a disposed or disposing engine.
	ErrDisposed = errors.New("engine disposed")
	// ErrNotOpen is returned by operations that need open media.
	ErrNotOpen = errors.New("no media open")
	// ErrBusy is returned when a direct command cannot take the gate
	// because another command is in flight.
	ErrBusy = errors.New("another command is in progress")
)

// Source is opened media as the engine sees it.
type Source interface {
	Info() media.Info
	// Index returns the frame index fed by the renderers, or nil.
	Index() *blocks.Index
	Seek(position time.Duration) error
	Close() error
}

// Config tunes the engine.
type Config struct {
	Pipeline pipeline.Config
	// EventBuffer sizes each subscription channel. Zero uses the default.
	EventBuffer int
	// Sessions, when set, receives the session on every pause, stop,
	// seek and close.
	Sessions SessionSaver
}

// Engine is the media engine.
type Engine struct {
	log       *logrus.Entry
	cfg       Config
	state     *media.State
	clock     *clock.Clock
	renderers *renderer.Set
	pipeline  *pipeline.Pipeline
	commands  *command.Manager
	gate      command.Gate

	open      atomic.Bool
	disposing atomic.Bool
	disposed  atomic.Bool

	mu     sync.Mutex // guards source
	source Source

	runMu  sync.Mutex
	cancel context.CancelFunc
	group  *errgroup.Group
}

// New creates an engine with no media. Call Start before issuing
// transport commands.
func New(cfg Config, log *logrus.Entry) *Engine {
	return newEngine(cfg, clock.New(), log)
}

func newEngine(cfg Config, clk *clock.Clock, log *logrus.Entry) *Engine {
	e := &Engine{
		log:       log,
		cfg:       cfg,
		state:     media.NewState(cfg.EventBuffer),
		clock:     clk,
		renderers: renderer.NewSet(),
	}
	e.pipeline = pipeline.New(cfg.Pipeline, e.clock, e.state, e.renderers,
		log.WithField("component", "pipeline"))
	e.commands = command.New(command.Deps{
		Lifecycle: e,
		Gate:      &e.gate,
		Pipeline:  e.pipeline,
		Renderers: e.renderers,
		State:     e.state,
		Frames:    e.frames,
	}, log.WithField("component", "command"))
	e.pipeline.SetExecutor(e.commands)
	return e
}

func (e *Engine) frames() command.FrameIndex {
	if idx := e.pipeline.Index(); idx != nil {
		return idx
	}
	return nil
}

// Start runs the pipeline loop, and the session persister when
// configured, until ctx is done or Dispose is called.
func (e *Engine) Start(ctx context.Context) error {
	if e.disposed.Load() || e.disposing.Load() {
		return ErrDisposed
	}

	e.runMu.Lock()
	defer e.runMu.Unlock()
	if e.group != nil {
		return errors.New("engine already started")
	}

	ctx, cancel := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)
	e.cancel = cancel
	e.group = g

	e.commands.SetRunning(true)
	g.Go(func() error {
		defer e.commands.SetRunning(false)
		return e.pipeline.Run(ctx)
	})
	if e.cfg.Sessions != nil {
		p := newPersister(e.state.Subscribe(), e.state.Snapshot, e.cfg.Sessions, e.log.WithField("component", "session"))
		g.Go(func() error {
			return p.run(ctx)
		})
	}

	e.log.Info("engine started")
	return nil
}

// Dispose closes the open media, stops the background work and releases
// every resource. A pending priority command is allowed to finish first;
// if ctx expires before it does, the media is left open and the error is
// returned. Subsequent operations fail with ErrDisposed.
func (e *Engine) Dispose(ctx context.Context) error {
	if !e.disposing.CompareAndSwap(false, true) {
		return ErrDisposed
	}

	var errs []error
	if err := e.drainAndClose(ctx); err != nil {
		errs = append(errs, err)
	}

	e.runMu.Lock()
	cancel, g := e.cancel, e.group
	e.runMu.Unlock()
	if g != nil {
		cancel()
		if err := g.Wait(); err != nil {
			errs = append(errs, err)
		}
	}

	e.state.CloseSubscriptions()
	e.disposed.Store(true)
	e.disposing.Store(false)
	e.log.Info("engine disposed")
	return errors.Join(errs...)
}

// drainAndClose waits for the gate, then closes the media if any.
func (e *Engine) drainAndClose(ctx context.Context) error {
	tick := e.pipeline.TickInterval()
	for !e.commands.BeginDirect(e.gate.TryEnter) {
		select {
		case <-ctx.Done():
			return fmt.Errorf("dispose: %w", ctx.Err())
		case <-time.After(tick):
		}
	}
	defer e.gate.Exit()

	if !e.open.Load() {
		return nil
	}
	return e.closeMedia()
}

// IsDisposed returns true once Dispose has completed.
func (e *Engine) IsDisposed() bool { return e.disposed.Load() }

// IsDisposing returns true while Dispose runs.
func (e *Engine) IsDisposing() bool { return e.disposing.Load() }

// IsOpen returns true while media is open.
func (e *Engine) IsOpen() bool { return e.open.Load() }

// direct runs fn as a direct command, holding the gate.
func (e *Engine) direct(fn func() error) error {
	if e.disposed.Load() || e.disposing.Load() {
		return ErrDisposed
	}
	if !e.commands.BeginDirect(e.gate.TryEnter) {
		return ErrBusy
	}
	defer e.gate.Exit()
	return fn()
}

// Open closes the current media, if any, and opens src with rs as its
// renderers. The media starts Stopped at position zero.
func (e *Engine) Open(ctx context.Context, src Source, rs ...renderer.Renderer) error {
	if src == nil {
		return errors.New("open: nil source")
	}
	return e.direct(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if e.open.Load() {
			if err := e.closeMedia(); err != nil {
				e.log.WithError(err).Warn("close previous media")
			}
		}

		info := src.Info()
		e.mu.Lock()
		e.source = src
		e.mu.Unlock()

		e.clock.Reset()
		e.pipeline.Attach(src, src.Index())
		e.renderers.Replace(rs...)
		e.state.Open(info)
		e.open.Store(true)

		e.log.WithFields(logrus.Fields{
			"path":     info.Path,
			"seekable": info.IsSeekable,
			"live":     info.IsLiveStream,
		}).Info("media opened")
		return nil
	})
}

// Close stops and releases the open media.
func (e *Engine) Close(ctx context.Context) error {
	return e.direct(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !e.open.Load() {
			return ErrNotOpen
		}
		return e.closeMedia()
	})
}

// closeMedia runs with the gate held.
func (e *Engine) closeMedia() error {
	e.open.Store(false)

	e.renderers.Each(func(r renderer.Renderer) { r.Stop() })
	var errs []error
	if err := e.renderers.Clear(); err != nil {
		errs = append(errs, fmt.Errorf("close renderers: %w", err))
	}
	e.pipeline.Detach()
	path := e.state.Info().Path
	e.state.Close()

	e.mu.Lock()
	src := e.source
	e.source = nil
	e.mu.Unlock()
	if src != nil {
		if err := src.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close source: %w", err))
		}
	}

	e.log.WithField("path", path).Info("media closed")
	return errors.Join(errs...)
}

// Seek moves playback to position. It fails with pipeline.ErrNotSeekable
// on media that cannot seek.
func (e *Engine) Seek(ctx context.Context, position time.Duration) error {
	return e.direct(func() error {
		if !e.open.Load() {
			return ErrNotOpen
		}
		return e.pipeline.Seek(ctx, position, media.SeekNormal)
	})
}

// Request submits a priority command without waiting for it.
func (e *Engine) Request(kind command.PriorityType) *command.Result {
	return e.commands.Request(kind)
}

// Play resumes playback. It returns false when the command was rejected.
func (e *Engine) Play(ctx context.Context) (bool, error) {
	return e.commands.Request(command.Play).Wait(ctx)
}

// Pause pauses playback. It returns false when the command was rejected.
func (e *Engine) Pause(ctx context.Context) (bool, error) {
	return e.commands.Request(command.Pause).Wait(ctx)
}

// Stop stops playback and rewinds. It returns false when the command was
// rejected.
func (e *Engine) Stop(ctx context.Context) (bool, error) {
	return e.commands.Request(command.Stop).Wait(ctx)
}

// Toggle pauses while playing and plays otherwise.
func (e *Engine) Toggle(ctx context.Context) (bool, error) {
	if e.state.Status() == media.StatusPlaying {
		return e.Pause(ctx)
	}
	return e.Play(ctx)
}

// Snapshot returns the current playback state.
func (e *Engine) Snapshot() media.Snapshot {
	return e.state.Snapshot()
}

// Status returns the transport status.
func (e *Engine) Status() media.Status {
	return e.state.Status()
}

// Position returns the live clock position while playing and the last
// published position otherwise.
func (e *Engine) Position() time.Duration {
	if e.state.Status() == media.StatusPlaying {
		return media.Normalize(e.pipeline.WallClock())
	}
	return e.state.Position()
}

// Subscribe returns a subscription to state changes.
func (e *Engine) Subscribe() *media.Subscription {
	return e.state.Subscribe()
}

// LastEffect reports the last executed priority command and whether it
// changed anything.
func (e *Engine) LastEffect() (command.PriorityType, bool) {
	return e.commands.LastEffect()
}

// PendingCommand returns the outstanding priority command, or None.
func (e *Engine) PendingCommand() command.PriorityType {
	return e.commands.Pending()
}
