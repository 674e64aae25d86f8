package media

// Status is the transport status of the open media.
//
//	┌──────────┐  open   ┌──────────┐  play   ┌──────────┐
//	│  Closed  │────────▶│ Stopped  │────────▶│ Playing  │
//	└──────────┘         └──────────┘         └──────────┘
//	     ▲                  ▲    ▲  stop         │    ▲
//	     │ close            │    └───────────────┤    │ play
//	     │                  │ stop         pause ▼    │
//	     └──── any ─────    └──────────────┌──────────┐
//	                                       │  Paused  │
//	                                       └──────────┘
//
// Closed is the only status in which no media is loaded.
type Status int

const (
	StatusClosed Status = iota
	StatusStopped
	StatusPlaying
	StatusPaused
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusClosed:
		return "Closed"
	case StatusStopped:
		return "Stopped"
	case StatusPlaying:
		return "Playing"
	case StatusPaused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// IsOpen returns true if media is loaded.
func (s Status) IsOpen() bool {
	return s != StatusClosed
}

// IsActive returns true if playback is active (playing or paused).
func (s Status) IsActive() bool {
	return s == StatusPlaying || s == StatusPaused
}

// SeekMode tells downstream consumers why the position jumped.
type SeekMode int

const (
	// SeekNormal is a user seek (scrubbing).
	SeekNormal SeekMode = iota
	// SeekStop is the rewind issued by the stop command.
	SeekStop
)

func (m SeekMode) String() string {
	switch m {
	case SeekNormal:
		return "Normal"
	case SeekStop:
		return "Stop"
	default:
		return "Unknown"
	}
}
