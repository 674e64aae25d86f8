package media

const eventBufferSize = 16

// Subscription provides event channels for a subscriber.
type Subscription struct {
	StatusChanged   <-chan StatusChange
	PositionChanged <-chan PositionChange
	MediaChanged    <-chan MediaChange
	EndedChanged    <-chan EndedChange
	Done            <-chan struct{}

	// Internal write channels
	statusCh   chan StatusChange
	positionCh chan PositionChange
	mediaCh    chan MediaChange
	endedCh    chan EndedChange
	doneCh     chan struct{}
}

// newSubscription creates a new subscription with buffered channels.
func newSubscription(size int) *Subscription {
	if size <= 0 {
		size = eventBufferSize
	}
	s := &Subscription{
		statusCh:   make(chan StatusChange, size),
		positionCh: make(chan PositionChange, size),
		mediaCh:    make(chan MediaChange, size),
		endedCh:    make(chan EndedChange, size),
		doneCh:     make(chan struct{}),
	}
	s.StatusChanged = s.statusCh
	s.PositionChanged = s.positionCh
	s.MediaChanged = s.mediaCh
	s.EndedChanged = s.endedCh
	s.Done = s.doneCh
	return s
}

// close signals subscribers to stop by closing doneCh.
func (s *Subscription) close() {
	close(s.doneCh)
}

// sendStatus sends a status change event (non-blocking).
func (s *Subscription) sendStatus(e StatusChange) {
	select {
	case s.statusCh <- e:
	default:
		// Drop if buffer full
	}
}

func (s *Subscription) sendPosition(e PositionChange) {
	select {
	case s.positionCh <- e:
	default:
	}
}

func (s *Subscription) sendMedia(e MediaChange) {
	select {
	case s.mediaCh <- e:
	default:
	}
}

func (s *Subscription) sendEnded(e EndedChange) {
	select {
	case s.endedCh <- e:
	default:
	}
}
