package command

import (
	"context"

	"github.com/llehouerou/wavecore/internal/media"
	"github.com/llehouerou/wavecore/internal/renderer"
)

// play starts the renderers and the clock. No-op once the media cannot
// resume (ended, or finite media at its end).
func (m *Manager) play() bool {
	if !m.CanResume() {
		return false
	}
	m.deps.Renderers.Each(func(r renderer.Renderer) { r.Play() })
	m.deps.Pipeline.PlayClock()
	m.deps.State.SetStatus(media.StatusPlaying)
	return true
}

// pause freezes the clock and renderers and lands the published position
// on a decoded frame boundary.
func (m *Manager) pause() bool {
	if !m.deps.State.Snapshot().Info.CanPause {
		return false
	}
	m.deps.Pipeline.PauseClock()
	m.deps.Renderers.Each(func(r renderer.Renderer) { r.Pause() })
	m.deps.State.SetPosition(m.SnapPosition(m.deps.Pipeline.WallClock()))
	m.deps.State.SetStatus(media.StatusPaused)
	return true
}

// stop rewinds to zero and stops the renderers. Always has an effect; a
// failed rewind is logged and does not abort the stop.
func (m *Manager) stop(ctx context.Context) bool {
	m.deps.Pipeline.ResetClock()
	if err := m.deps.Pipeline.Seek(ctx, 0, media.SeekStop); err != nil {
		m.log.WithError(err).Warn("stop: rewind failed")
	}
	m.deps.Renderers.Each(func(r renderer.Renderer) { r.Stop() })
	m.deps.State.SetStatus(media.StatusStopped)
	return true
}
