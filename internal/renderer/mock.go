package renderer

import (
	"sync"

	"github.com/llehouerou/wavecore/internal/blocks"
)

// Call is a transport call recorded by Mock.
type Call string

const (
	CallPlay  Call = "play"
	CallPause Call = "pause"
	CallStop  Call = "stop"
)

// Mock is a test double recording the calls it receives.
type Mock struct {
	mu     sync.Mutex
	kind   blocks.Kind
	calls  []Call
	closed bool
}

// NewMock creates a mock renderer for kind.
func NewMock(kind blocks.Kind) *Mock {
	return &Mock{kind: kind}
}

func (m *Mock) Kind() blocks.Kind { return m.kind }

func (m *Mock) Play() { m.record(CallPlay) }

func (m *Mock) Pause() { m.record(CallPause) }

func (m *Mock) Stop() { m.record(CallStop) }

func (m *Mock) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

func (m *Mock) record(c Call) {
	m.mu.Lock()
	m.calls = append(m.calls, c)
	m.mu.Unlock()
}

// Test helpers

func (m *Mock) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// Last returns the most recent call, or "" if none.
func (m *Mock) Last() Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return ""
	}
	return m.calls[len(m.calls)-1]
}

func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *Mock) Reset() {
	m.mu.Lock()
	m.calls = nil
	m.mu.Unlock()
}

// Verify Mock implements Renderer at compile time.
var (
	_ Renderer = (*Mock)(nil)
	_ Renderer = (*Audio)(nil)
	_ Closer   = (*Audio)(nil)
)
