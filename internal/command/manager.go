// Package command arbitrates the priority transport commands (play, pause,
// stop) against the running pipeline.
//
// A request is admitted only when the engine is alive, a pipeline loop is
// running to execute it, media is open, no direct command holds the gate
// and no other priority command is outstanding. An admitted command occupies the single priority slot until
// the pipeline loop executes it and calls Release; requests made meanwhile
// are rejected, never queued.
package command

import (
	"context"
	"sync"
	"time"

	"github.com/samber/mo"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/wavecore/internal/media"
	"github.com/llehouerou/wavecore/internal/renderer"
)

// Pipeline is the pipeline control surface the commands drive.
type Pipeline interface {
	// Resume wakes the pipeline loop. Idempotent and non-blocking.
	Resume()
	PlayClock()
	PauseClock()
	ResetClock()
	WallClock() time.Duration
	Seek(ctx context.Context, position time.Duration, mode media.SeekMode) error
}

// Renderers iterates the output sinks of the open media.
type Renderers interface {
	Each(fn func(renderer.Renderer))
}

// FrameIndex finds decoded frame boundaries.
type FrameIndex interface {
	NearestAtOrBefore(position time.Duration) mo.Option[time.Duration]
}

// State is the playback state the commands publish to.
type State interface {
	Snapshot() media.Snapshot
	SetStatus(status media.Status)
	SetPosition(position time.Duration)
}

// DirectGate reports whether a direct command is executing.
type DirectGate interface {
	IsExecuting() bool
}

// Lifecycle exposes the engine flags checked on admission.
type Lifecycle interface {
	IsDisposed() bool
	IsDisposing() bool
	IsOpen() bool
}

// Deps are the collaborators of a Manager. Frames returns the frame index
// of the open media, or nil when there is none.
type Deps struct {
	Lifecycle Lifecycle
	Gate      DirectGate
	Pipeline  Pipeline
	Renderers Renderers
	State     State
	Frames    func() FrameIndex
}

// Manager owns the priority slot and its completion signal.
type Manager struct {
	log  *logrus.Entry
	deps Deps

	mu      sync.Mutex
	running bool
	pending PriorityType
	// completed is closed while no command is outstanding and replaced by
	// an open channel when one is admitted.
	completed chan struct{}
	// abandoned is the completion channel of the last command dropped
	// because its loop stopped.
	abandoned chan struct{}

	effectMu   sync.Mutex
	lastKind   PriorityType
	lastEffect bool
}

// New creates a manager with an empty slot.
func New(deps Deps, log *logrus.Entry) *Manager {
	completed := make(chan struct{})
	close(completed)
	return &Manager{
		log:       log,
		deps:      deps,
		completed: completed,
	}
}

// Request asks for kind to be executed. The returned Result resolves to
// false immediately if the request is rejected; otherwise the slot is
// reserved, the pipeline is woken and the Result resolves to true once
// the command has run.
func (m *Manager) Request(kind PriorityType) *Result {
	if kind == None {
		return rejected()
	}

	m.mu.Lock()
	if reason := m.admissionLocked(); reason != "" {
		m.mu.Unlock()
		m.log.WithFields(logrus.Fields{
			"command": kind,
			"reason":  reason,
		}).Debug("priority command rejected")
		return rejected()
	}
	m.pending = kind
	completed := make(chan struct{})
	m.completed = completed
	m.mu.Unlock()

	m.log.WithField("command", kind).Debug("priority command admitted")

	r := newResult()
	go func() {
		m.deps.Pipeline.Resume()
		<-completed
		m.mu.Lock()
		executed := m.abandoned != completed
		m.mu.Unlock()
		r.resolve(executed)
	}()
	return r
}

// SetRunning records whether a pipeline loop is executing commands. When
// the loop stops, an outstanding command is dropped: the slot is freed and
// its Result resolves to false.
func (m *Manager) SetRunning(running bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = running
	if running || signaled(m.completed) {
		return
	}
	m.log.WithField("command", m.pending).Warn("pipeline stopped, dropping priority command")
	m.abandoned = m.completed
	m.pending = None
	close(m.completed)
}

// admissionLocked returns why a request cannot be admitted, or "".
func (m *Manager) admissionLocked() string {
	switch {
	case m.deps.Lifecycle.IsDisposed():
		return "disposed"
	case m.deps.Lifecycle.IsDisposing():
		return "disposing"
	case !m.running:
		return "pipeline not running"
	case !m.deps.Lifecycle.IsOpen():
		return "media not open"
	case m.deps.Gate.IsExecuting():
		return "direct command executing"
	case !signaled(m.completed):
		return "priority command pending"
	default:
		return ""
	}
}

// Release frees the slot and signals completion. It runs after every
// executed command, including no-ops and failures.
func (m *Manager) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = None
	if !signaled(m.completed) {
		close(m.completed)
	}
}

// Pending returns the outstanding command, or None.
func (m *Manager) Pending() PriorityType {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending
}

// IsPending returns true while a priority command is outstanding.
func (m *Manager) IsPending() bool {
	return m.Pending() != None
}

// BeginDirect calls enter under the admission lock, unless a priority
// command is outstanding. Direct commands use it to take their gate so
// that gate and slot are never held at the same time.
func (m *Manager) BeginDirect(enter func() bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending != None || !signaled(m.completed) {
		return false
	}
	return enter()
}

// ExecutePending runs the outstanding command, if any, and releases the
// slot. It is called from the pipeline loop and returns false when there
// was nothing to run.
func (m *Manager) ExecutePending(ctx context.Context) bool {
	kind := m.Pending()
	if kind == None {
		return false
	}
	defer m.Release()

	var effect bool
	switch kind {
	case Play:
		effect = m.play()
	case Pause:
		effect = m.pause()
	case Stop:
		effect = m.stop(ctx)
	case None:
	}

	m.effectMu.Lock()
	m.lastKind, m.lastEffect = kind, effect
	m.effectMu.Unlock()

	m.log.WithFields(logrus.Fields{
		"command": kind,
		"effect":  effect,
	}).Debug("priority command executed")
	return true
}

// LastEffect reports the last executed command and whether it changed
// anything. A command that was processed but had no effect (Play at the
// end of media, Pause on unpausable media) reports false.
func (m *Manager) LastEffect() (PriorityType, bool) {
	m.effectMu.Lock()
	defer m.effectMu.Unlock()
	return m.lastKind, m.lastEffect
}

// CanResume evaluates whether Play may resume the open media now.
func (m *Manager) CanResume() bool {
	return m.deps.State.Snapshot().CanResume(m.deps.Pipeline.WallClock())
}

func signaled(ch chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}
