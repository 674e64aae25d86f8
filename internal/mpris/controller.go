package mpris

import (
	"context"
	"errors"
	"time"

	"github.com/llehouerou/wavecore/internal/media"
)

// ErrUnsupported is returned by New where there is no D-Bus session bus
// to register on.
var ErrUnsupported = errors.New("mpris: not supported on this platform")

// commandTimeout bounds how long a D-Bus call waits for a transport
// command to run.
const commandTimeout = 2 * time.Second

// Controller is the engine surface driven over MPRIS.
type Controller interface {
	Play(ctx context.Context) (bool, error)
	Pause(ctx context.Context) (bool, error)
	Stop(ctx context.Context) (bool, error)
	Toggle(ctx context.Context) (bool, error)
	Seek(ctx context.Context, position time.Duration) error
	Position() time.Duration
	Snapshot() media.Snapshot
}
