package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeTime struct {
	t time.Time
}

func (f *fakeTime) now() time.Time { return f.t }

func (f *fakeTime) advance(d time.Duration) { f.t = f.t.Add(d) }

func newFake() (*Clock, *fakeTime) {
	ft := &fakeTime{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	return NewWithSource(ft.now), ft
}

func TestClock_StartsPausedAtZero(t *testing.T) {
	c, ft := newFake()
	ft.advance(time.Second)

	assert.False(t, c.IsRunning())
	assert.Equal(t, time.Duration(0), c.Position())
}

func TestClock_PlayAdvances(t *testing.T) {
	c, ft := newFake()
	c.Play()
	ft.advance(2 * time.Second)

	assert.True(t, c.IsRunning())
	assert.Equal(t, 2*time.Second, c.Position())
}

func TestClock_PauseHolds(t *testing.T) {
	c, ft := newFake()
	c.Play()
	ft.advance(time.Second)
	c.Pause()
	ft.advance(time.Hour)

	assert.Equal(t, time.Second, c.Position())

	c.Play()
	ft.advance(500 * time.Millisecond)
	assert.Equal(t, 1500*time.Millisecond, c.Position())
}

func TestClock_RedundantCallsAreNoOps(t *testing.T) {
	c, ft := newFake()
	c.Play()
	ft.advance(time.Second)
	c.Play()
	ft.advance(time.Second)
	assert.Equal(t, 2*time.Second, c.Position())

	c.Pause()
	c.Pause()
	assert.Equal(t, 2*time.Second, c.Position())
}

func TestClock_Reset(t *testing.T) {
	c, ft := newFake()
	c.Play()
	ft.advance(3 * time.Second)
	c.Reset()

	assert.False(t, c.IsRunning())
	assert.Equal(t, time.Duration(0), c.Position())
}

func TestClock_UpdateKeepsRunningState(t *testing.T) {
	c, ft := newFake()
	c.Update(5 * time.Second)
	assert.Equal(t, 5*time.Second, c.Position())

	c.Play()
	ft.advance(time.Second)
	c.Update(time.Minute)
	ft.advance(time.Second)
	assert.Equal(t, time.Minute+time.Second, c.Position())
}
