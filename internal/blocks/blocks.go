// Package blocks indexes the start times of decoded frames so that
// arbitrary positions can be snapped to a renderable frame boundary.
package blocks

import (
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/samber/mo"
)

// DefaultCapacity is the number of frame starts a buffer keeps.
const DefaultCapacity = 256

// Kind identifies a media component.
type Kind int

const (
	Audio Kind = iota
	Video
	Subtitle
)

func (k Kind) String() string {
	switch k {
	case Audio:
		return "Audio"
	case Video:
		return "Video"
	case Subtitle:
		return "Subtitle"
	default:
		return "Unknown"
	}
}

// Buffer holds the start times of the most recently decoded frames of one
// component, sorted ascending. When full, the earliest start is dropped.
type Buffer struct {
	mu       sync.RWMutex
	capacity int
	starts   []time.Duration
}

// NewBuffer creates an empty buffer. A non-positive capacity uses
// DefaultCapacity.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		capacity: capacity,
		starts:   make([]time.Duration, 0, capacity),
	}
}

// Add records a decoded frame starting at start. Duplicates are ignored.
func (b *Buffer) Add(start time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i, found := slices.BinarySearch(b.starts, start)
	if found {
		return
	}
	b.starts = slices.Insert(b.starts, i, start)
	if len(b.starts) > b.capacity {
		b.starts = slices.Delete(b.starts, 0, len(b.starts)-b.capacity)
	}
}

// NearestAtOrBefore returns the latest frame start that is <= position.
func (b *Buffer) NearestAtOrBefore(position time.Duration) mo.Option[time.Duration] {
	b.mu.RLock()
	defer b.mu.RUnlock()

	i, found := slices.BinarySearch(b.starts, position)
	if found {
		return mo.Some(b.starts[i])
	}
	if i == 0 {
		return mo.None[time.Duration]()
	}
	return mo.Some(b.starts[i-1])
}

// Range returns the first and last buffered frame starts.
func (b *Buffer) Range() (first, last time.Duration, ok bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.starts) == 0 {
		return 0, 0, false
	}
	return b.starts[0], b.starts[len(b.starts)-1], true
}

// Len returns the number of buffered frames.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.starts)
}

// Clear drops every buffered frame.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.starts = b.starts[:0]
}

// Index groups the buffers of every component of the open media.
type Index struct {
	buffers map[Kind]*Buffer
}

// NewIndex creates an index with one buffer per kind.
func NewIndex(capacity int, kinds ...Kind) *Index {
	idx := &Index{buffers: make(map[Kind]*Buffer, len(kinds))}
	for _, k := range kinds {
		idx.buffers[k] = NewBuffer(capacity)
	}
	return idx
}

// Buffer returns the buffer for kind, or nil if the media has no such
// component.
func (i *Index) Buffer(kind Kind) *Buffer {
	return i.buffers[kind]
}

// Kinds returns the components present, in Kind order.
func (i *Index) Kinds() []Kind {
	kinds := lo.Keys(i.buffers)
	slices.Sort(kinds)
	return kinds
}

// Main returns the component positions are snapped against: video when
// present, then audio, then subtitles.
func (i *Index) Main() (Kind, bool) {
	for _, k := range []Kind{Video, Audio, Subtitle} {
		if _, ok := i.buffers[k]; ok {
			return k, true
		}
	}
	return 0, false
}

// NearestAtOrBefore looks position up in the main component's buffer.
func (i *Index) NearestAtOrBefore(position time.Duration) mo.Option[time.Duration] {
	k, ok := i.Main()
	if !ok {
		return mo.None[time.Duration]()
	}
	return i.buffers[k].NearestAtOrBefore(position)
}

// Clear empties every buffer.
func (i *Index) Clear() {
	for _, b := range i.buffers {
		b.Clear()
	}
}
