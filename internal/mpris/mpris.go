//go:build linux

// Package mpris exports the engine on the D-Bus session bus so desktop
// media keys and applets can drive it.
package mpris

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/wavecore/internal/media"
	"github.com/llehouerou/wavecore/internal/tags"
)

// Adapter connects the engine to MPRIS over D-Bus.
type Adapter struct {
	server *server.Server
}

// New creates and starts a new MPRIS adapter.
func New(ctrl Controller, log *logrus.Entry) (*Adapter, error) {
	a := &Adapter{
		server: server.NewServer("wavecore", &rootAdapter{}, newPlayerAdapter(ctrl, log)),
	}

	// Start the server in background
	go func() {
		if err := a.server.Listen(); err != nil {
			log.WithError(err).Warn("mpris server stopped")
		}
	}()

	return a, nil
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error {
	return nil // Not supported
}

func (r *rootAdapter) Quit() error {
	return nil // Not supported - the CLI manages its own lifecycle
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil
}

func (r *rootAdapter) Identity() (string, error) {
	return "wavecore", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"file"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/flac", "audio/wav", "audio/ogg"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter.
type playerAdapter struct {
	ctrl Controller
	log  *logrus.Entry
	tags tags.Cache
}

func newPlayerAdapter(ctrl Controller, log *logrus.Entry) *playerAdapter {
	return &playerAdapter{ctrl: ctrl, log: log}
}

// transport runs a priority command. A rejected command is not a D-Bus
// error: the caller may simply retry.
func (p *playerAdapter) transport(name string, fn func(context.Context) (bool, error)) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	ok, err := fn(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if !ok {
		p.log.WithField("command", name).Debug("mpris command rejected")
	}
	return nil
}

func (p *playerAdapter) Next() error {
	return nil // Single media, nothing to skip to
}

func (p *playerAdapter) Previous() error {
	return nil
}

func (p *playerAdapter) Pause() error {
	return p.transport("pause", p.ctrl.Pause)
}

func (p *playerAdapter) PlayPause() error {
	return p.transport("playpause", p.ctrl.Toggle)
}

func (p *playerAdapter) Stop() error {
	return p.transport("stop", p.ctrl.Stop)
}

func (p *playerAdapter) Play() error {
	return p.transport("play", p.ctrl.Play)
}

// Seek moves relative to the current position, stopping at zero.
func (p *playerAdapter) Seek(offset types.Microseconds) error {
	target := p.ctrl.Position() + time.Duration(offset)*time.Microsecond
	return p.seek(max(target, 0))
}

// SetPosition ignores requests for other media or out of range positions.
func (p *playerAdapter) SetPosition(trackID string, position types.Microseconds) error {
	snap := p.ctrl.Snapshot()
	if !snap.IsOpen() || trackID != formatTrackID(snap.Info.Path) {
		return nil
	}
	target := time.Duration(position) * time.Microsecond
	if target < 0 {
		return nil
	}
	if d, ok := snap.Info.Duration(); ok && target > d {
		return nil
	}
	return p.seek(target)
}

func (p *playerAdapter) seek(position time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	if err := p.ctrl.Seek(ctx, position); err != nil {
		return fmt.Errorf("seek: %w", err)
	}
	return nil
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil // Not supported
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	switch p.ctrl.Snapshot().Status {
	case media.StatusPlaying:
		return types.PlaybackStatusPlaying, nil
	case media.StatusPaused:
		return types.PlaybackStatusPaused, nil
	case media.StatusStopped, media.StatusClosed:
		return types.PlaybackStatusStopped, nil
	}
	return types.PlaybackStatusStopped, nil
}

func (p *playerAdapter) Rate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetRate(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	snap := p.ctrl.Snapshot()
	if !snap.IsOpen() {
		return types.Metadata{}, nil
	}

	path := snap.Info.Path
	tag := p.tags.Get(path)
	meta := types.Metadata{
		TrackId:     dbus.ObjectPath(formatTrackID(path)),
		Title:       tag.Title,
		Album:       tag.Album,
		TrackNumber: tag.TrackNumber,
	}
	if tag.Artist != "" {
		meta.Artist = []string{tag.Artist}
	}
	if d, ok := snap.Info.Duration(); ok {
		meta.Length = types.Microseconds(d.Microseconds())
	}
	if artPath := tags.FolderArt(path); artPath != "" {
		meta.ArtUrl = "file://" + artPath
	}

	return meta, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return 1.0, nil // Volume control not exposed
}

func (p *playerAdapter) SetVolume(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Position() (int64, error) {
	return p.ctrl.Position().Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	return false, nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return false, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return p.ctrl.Snapshot().IsOpen(), nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	snap := p.ctrl.Snapshot()
	return snap.IsOpen() && snap.Info.CanPause, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	snap := p.ctrl.Snapshot()
	return snap.IsOpen() && snap.Info.IsSeekable, nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

func formatTrackID(path string) string {
	h := fnv.New64a()
	h.Write([]byte(path))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
