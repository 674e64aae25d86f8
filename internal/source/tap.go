package source

import (
	"github.com/gopxl/beep/v2"

	"github.com/llehouerou/wavecore/internal/blocks"
)

var _ beep.Streamer = (*tap)(nil)

// tap records the start time of every chunk it streams. Those chunks are
// exactly what the output renders, so their starts are the positions a
// pause can land on.
type tap struct {
	s      beep.StreamSeeker
	rate   beep.SampleRate
	frames *blocks.Buffer
}

func newTap(s beep.StreamSeeker, rate beep.SampleRate, frames *blocks.Buffer) *tap {
	return &tap{s: s, rate: rate, frames: frames}
}

// Stream implements beep.Streamer.
func (t *tap) Stream(samples [][2]float64) (n int, ok bool) {
	start := t.s.Position()
	n, ok = t.s.Stream(samples)
	if n > 0 {
		t.frames.Add(t.rate.D(start))
	}
	return n, ok
}

// Err implements beep.Streamer.
func (t *tap) Err() error {
	return t.s.Err()
}
