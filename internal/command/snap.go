package command

import (
	"time"

	"github.com/llehouerou/wavecore/internal/media"
)

// SnapPosition snaps position to the open media's frame index.
func (m *Manager) SnapPosition(position time.Duration) time.Duration {
	var idx FrameIndex
	if m.deps.Frames != nil {
		idx = m.deps.Frames()
	}
	return SnapPosition(idx, position)
}

// SnapPosition returns the start of the latest decoded frame at or before
// position, so that a paused picture is one that was actually rendered.
// Without an index, or without a frame before position, the normalized
// position is returned.
func SnapPosition(idx FrameIndex, position time.Duration) time.Duration {
	if idx == nil {
		return media.Normalize(position)
	}
	if start, ok := idx.NearestAtOrBefore(position).Get(); ok {
		return start
	}
	return media.Normalize(position)
}
