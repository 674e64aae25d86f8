// Package renderer defines the output sinks driven by transport commands.
package renderer

import (
	"sync"

	"github.com/samber/lo"

	"github.com/llehouerou/wavecore/internal/blocks"
)

// Renderer is an output sink for one media component.
// All methods must be idempotent and must not block indefinitely.
type Renderer interface {
	Kind() blocks.Kind
	Play()
	Pause()
	Stop()
}

// Closer is implemented by renderers holding output resources.
type Closer interface {
	Close() error
}

// Set is the ordered collection of renderers of the open media.
type Set struct {
	mu    sync.RWMutex
	items []Renderer
}

// NewSet creates a set holding rs.
func NewSet(rs ...Renderer) *Set {
	return &Set{items: append([]Renderer(nil), rs...)}
}

// Replace swaps the whole collection.
func (s *Set) Replace(rs ...Renderer) {
	s.mu.Lock()
	s.items = append([]Renderer(nil), rs...)
	s.mu.Unlock()
}

// Clear removes every renderer, closing those implementing Closer.
// The first close error is returned.
func (s *Set) Clear() error {
	s.mu.Lock()
	items := s.items
	s.items = nil
	s.mu.Unlock()

	var firstErr error
	for _, r := range items {
		if c, ok := r.(Closer); ok {
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Len returns the number of renderers.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Each calls fn for every renderer in order. fn runs without the set lock
// held, so it may take as long as the renderer needs.
func (s *Set) Each(fn func(Renderer)) {
	s.mu.RLock()
	items := append([]Renderer(nil), s.items...)
	s.mu.RUnlock()

	lo.ForEach(items, func(r Renderer, _ int) { fn(r) })
}

// Kinds returns the component kind of every renderer, in order.
func (s *Set) Kinds() []blocks.Kind {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Map(s.items, func(r Renderer, _ int) blocks.Kind { return r.Kind() })
}
