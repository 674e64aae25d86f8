package media

import (
	"sync"
	"time"
)

// State is the observable playback state of the engine.
// Readers may poll it at any time; transport mutations come from the
// goroutine executing an admitted command.
type State struct {
	mu       sync.RWMutex
	info     Info
	status   Status
	position time.Duration
	ended    bool

	subsMu     sync.RWMutex
	subs       []*Subscription
	bufferSize int
	closed     bool
}

// NewState creates a closed state. bufferSize sizes each subscription
// channel; zero uses the default.
func NewState(bufferSize int) *State {
	return &State{
		status:     StatusClosed,
		bufferSize: bufferSize,
	}
}

// Snapshot returns a consistent copy of the state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Info:          s.info,
		Status:        s.status,
		Position:      s.position,
		HasMediaEnded: s.ended,
	}
}

// Status returns the current transport status.
func (s *State) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Position returns the last published position.
func (s *State) Position() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.position
}

// Info returns the capability flags of the open media.
func (s *State) Info() Info {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.info
}

// Open loads new media: status becomes Stopped at position zero.
func (s *State) Open(info Info) {
	s.mu.Lock()
	prev := s.status
	s.info = info
	s.status = StatusStopped
	s.position = 0
	s.ended = false
	s.mu.Unlock()

	s.broadcast(func(sub *Subscription) {
		sub.sendMedia(MediaChange{Info: info, Opened: true})
		if prev != StatusStopped {
			sub.sendStatus(StatusChange{Previous: prev, Current: StatusStopped})
		}
	})
}

// Close discards the media capabilities and returns to Closed.
func (s *State) Close() {
	s.mu.Lock()
	prev := s.status
	info := s.info
	s.info = Info{}
	s.status = StatusClosed
	s.position = 0
	s.ended = false
	s.mu.Unlock()

	if prev == StatusClosed {
		return
	}
	s.broadcast(func(sub *Subscription) {
		sub.sendStatus(StatusChange{Previous: prev, Current: StatusClosed})
		sub.sendMedia(MediaChange{Info: info, Opened: false})
	})
}

// SetStatus transitions the transport status. Setting the current status
// again emits nothing.
func (s *State) SetStatus(status Status) {
	s.mu.Lock()
	prev := s.status
	s.status = status
	s.mu.Unlock()

	if prev == status {
		return
	}
	s.broadcast(func(sub *Subscription) {
		sub.sendStatus(StatusChange{Previous: prev, Current: status})
	})
}

// SetPosition publishes a new authoritative playback position.
func (s *State) SetPosition(position time.Duration) {
	position = Normalize(position)
	s.mu.Lock()
	changed := s.position != position
	s.position = position
	s.mu.Unlock()

	if !changed {
		return
	}
	s.broadcast(func(sub *Subscription) {
		sub.sendPosition(PositionChange{Position: position})
	})
}

// PublishSeek publishes the landing position of a seek. It always emits,
// even when the position did not move, so consumers see every seek.
func (s *State) PublishSeek(position time.Duration, mode SeekMode) {
	position = Normalize(position)
	s.mu.Lock()
	s.position = position
	s.mu.Unlock()

	s.broadcast(func(sub *Subscription) {
		sub.sendPosition(PositionChange{Position: position, Seek: true, Mode: mode})
	})
}

// SetEnded records whether the media reached its end.
func (s *State) SetEnded(ended bool) {
	s.mu.Lock()
	changed := s.ended != ended
	s.ended = ended
	pos := s.position
	s.mu.Unlock()

	if !changed {
		return
	}
	s.broadcast(func(sub *Subscription) {
		sub.sendEnded(EndedChange{Ended: ended, Position: pos})
	})
}

// Subscribe creates a new event subscription. Subscribing after
// CloseSubscriptions returns an already-done subscription.
func (s *State) Subscribe() *Subscription {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	sub := newSubscription(s.bufferSize)
	if s.closed {
		sub.close()
		return sub
	}
	s.subs = append(s.subs, sub)
	return sub
}

// CloseSubscriptions signals every subscriber to stop. Idempotent.
func (s *State) CloseSubscriptions() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for _, sub := range s.subs {
		sub.close()
	}
	s.subs = nil
}

func (s *State) broadcast(fn func(*Subscription)) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		fn(sub)
	}
}
