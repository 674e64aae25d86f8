package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/wavecore/internal/media"
	"github.com/llehouerou/wavecore/internal/tags"
)

const displayTimeout = 5000 // ms

// Watcher announces playback on the desktop: once when a file starts
// playing and once when it reaches its end. Each file reuses a single
// notification.
type Watcher struct {
	sub      *media.Subscription
	snapshot func() media.Snapshot
	notifier Notifier
	log      *logrus.Entry

	tags      tags.Cache
	announced string // path of the file last announced
	id        uint32
}

// NewWatcher creates a watcher reading events from sub. snapshot supplies
// the current media when an event arrives.
func NewWatcher(sub *media.Subscription, snapshot func() media.Snapshot, n Notifier, log *logrus.Entry) *Watcher {
	return &Watcher{sub: sub, snapshot: snapshot, notifier: n, log: log}
}

// Run handles events until ctx is done or the subscription ends. Media
// already playing when Run starts is announced right away.
func (w *Watcher) Run(ctx context.Context) error {
	if w.snapshot().Status == media.StatusPlaying {
		w.onPlaying()
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.sub.Done:
			return nil
		case e := <-w.sub.StatusChanged:
			if e.Current == media.StatusPlaying {
				w.onPlaying()
			}
		case e := <-w.sub.EndedChanged:
			if e.Ended {
				w.onEnded()
			}
		case e := <-w.sub.MediaChanged:
			if !e.Opened {
				w.onClosed()
			}
		case <-w.sub.PositionChanged:
		}
	}
}

func (w *Watcher) onPlaying() {
	snap := w.snapshot()
	if !snap.IsOpen() || snap.Info.Path == w.announced {
		return
	}
	w.announced = snap.Info.Path
	w.send(nowPlaying(snap.Info, w.tags.Get(snap.Info.Path)))
}

func (w *Watcher) onEnded() {
	snap := w.snapshot()
	if !snap.IsOpen() {
		return
	}
	w.send(Notification{
		Title:   w.tags.Get(snap.Info.Path).Title,
		Body:    "Finished",
		Timeout: displayTimeout,
		Urgency: UrgencyLow,
	})
}

func (w *Watcher) onClosed() {
	if w.snapshot().IsOpen() {
		// Replaced by newer media
		return
	}
	w.announced = ""
	if w.id == 0 {
		return
	}
	if err := w.notifier.Close(w.id); err != nil {
		w.log.WithError(err).Debug("close notification")
	}
	w.id = 0
}

func (w *Watcher) send(n Notification) {
	n.ReplacesID = w.id
	id, err := w.notifier.Notify(n)
	if err != nil {
		w.log.WithError(err).Debug("send notification")
		return
	}
	w.id = id
}

func nowPlaying(info media.Info, tag *tags.Tag) Notification {
	return Notification{
		Title:   tag.Title,
		Body:    Body(info, tag.Subtitle()),
		Icon:    tags.FolderArt(info.Path),
		Timeout: displayTimeout,
		Urgency: UrgencyNormal,
	}
}

// Body describes the media below its title: the subtitle, or a generic
// label when there is none, followed by the length.
func Body(info media.Info, subtitle string) string {
	if subtitle == "" {
		subtitle = "Now playing"
	}
	if info.IsLiveStream {
		return subtitle + " (live)"
	}
	d, ok := info.Duration()
	if !ok {
		return subtitle
	}
	d = d.Round(time.Second)
	return fmt.Sprintf("%s (%d:%02d)", subtitle, int(d.Minutes()), int(d.Seconds())%60)
}
