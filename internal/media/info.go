package media

import (
	"math"
	"time"

	"github.com/samber/mo"
)

// Forever is the natural duration reported by media whose length is
// unspecified (e.g. an endless generator or a growing recording).
const Forever = time.Duration(math.MaxInt64)

// Tick is the resolution positions are kept at.
const Tick = 100 * time.Nanosecond

// Info holds the capability flags of the open media.
type Info struct {
	Path         string
	IsLiveStream bool
	IsSeekable   bool
	CanPause     bool
	// NaturalDuration is None when the length is unknown, Forever when it is
	// unspecified, and the media length otherwise.
	NaturalDuration mo.Option[time.Duration]
}

// Duration returns the natural duration if it is known and finite.
func (i Info) Duration() (time.Duration, bool) {
	d, ok := i.NaturalDuration.Get()
	if !ok || d == Forever {
		return 0, false
	}
	return d, true
}

// Normalize clamps a position to be non-negative and truncates it to Tick.
func Normalize(position time.Duration) time.Duration {
	if position < 0 {
		return 0
	}
	return position.Truncate(Tick)
}

// Snapshot is a consistent copy of State.
type Snapshot struct {
	Info          Info
	Status        Status
	Position      time.Duration
	HasMediaEnded bool
}

// IsOpen returns true if media is loaded.
func (s Snapshot) IsOpen() bool {
	return s.Status.IsOpen()
}

// CanResume reports whether playback may resume from wallClock.
// Live, unseekable and unknown-length media can never be "at the end",
// so only finite seekable media is bounded by its duration.
func (s Snapshot) CanResume(wallClock time.Duration) bool {
	if s.HasMediaEnded {
		return false
	}
	if s.Info.IsLiveStream {
		return true
	}
	if !s.Info.IsSeekable {
		return true
	}
	d, ok := s.Info.NaturalDuration.Get()
	if !ok {
		return true
	}
	if d == Forever {
		return true
	}
	return wallClock < d
}
