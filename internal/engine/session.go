package engine

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/wavecore/internal/media"
	"github.com/llehouerou/wavecore/internal/state"
)

// SessionSaver stores the last session. Implementations are expected to
// debounce; every relevant event triggers a save.
type SessionSaver interface {
	SaveSession(session state.Session)
}

// persister saves where the media was left. Events only wake it up: the
// channels are independent so their relative order is lost, and the
// snapshot taken on each wake-up is what gets saved.
type persister struct {
	sub      *media.Subscription
	snapshot func() media.Snapshot
	store    SessionSaver
	log      *logrus.Entry

	// last open state seen, saved again when the media closes
	last media.Snapshot
}

func newPersister(sub *media.Subscription, snapshot func() media.Snapshot, store SessionSaver, log *logrus.Entry) *persister {
	p := &persister{sub: sub, snapshot: snapshot, store: store, log: log}
	p.observe()
	return p
}

func (p *persister) run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			p.drain()
			return nil
		case <-p.sub.Done:
			p.drain()
			return nil
		case e := <-p.sub.MediaChanged:
			p.onMedia(e)
		case <-p.sub.StatusChanged:
			p.onStatus()
		case e := <-p.sub.PositionChanged:
			p.onPosition(e)
		case <-p.sub.EndedChanged:
		}
	}
}

// drain handles the events already buffered, so that the close of the
// media during shutdown is still saved.
func (p *persister) drain() {
	for {
		select {
		case e := <-p.sub.MediaChanged:
			p.onMedia(e)
		case <-p.sub.StatusChanged:
			p.onStatus()
		case e := <-p.sub.PositionChanged:
			p.onPosition(e)
		case <-p.sub.EndedChanged:
		default:
			return
		}
	}
}

func (p *persister) onMedia(e media.MediaChange) {
	if e.Opened {
		p.observe()
		return
	}
	if p.last.Info.Path == e.Info.Path {
		p.save(p.last)
	}
	p.last = media.Snapshot{}
}

func (p *persister) onStatus() {
	if snap, ok := p.observe(); ok && isResting(snap.Status) {
		p.save(snap)
	}
}

func (p *persister) onPosition(e media.PositionChange) {
	if snap, ok := p.observe(); ok && (e.Seek || isResting(snap.Status)) {
		p.save(snap)
	}
}

// observe records the current state if media is open.
func (p *persister) observe() (media.Snapshot, bool) {
	snap := p.snapshot()
	if !snap.IsOpen() {
		return snap, false
	}
	p.last = snap
	return snap, true
}

func isResting(s media.Status) bool {
	return s == media.StatusPaused || s == media.StatusStopped
}

func (p *persister) save(snap media.Snapshot) {
	if snap.Info.Path == "" {
		return
	}
	session := state.Session{
		Path:     snap.Info.Path,
		Position: snap.Position,
		Status:   snap.Status,
	}
	p.store.SaveSession(session)
	p.log.WithFields(logrus.Fields{
		"path":     session.Path,
		"position": session.Position,
		"status":   session.Status,
	}).Debug("session saved")
}
