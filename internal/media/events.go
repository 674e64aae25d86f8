package media

import "time"

// StatusChange is emitted when the transport status changes.
type StatusChange struct {
	Previous Status
	Current  Status
}

// PositionChange is emitted when the published position changes.
//
// Emitted by:
//   - SetPosition: periodic updates while playing and the pause snap
//   - PublishSeek: seeks, with Seek set and Mode telling why
type PositionChange struct {
	Position time.Duration
	Seek     bool
	Mode     SeekMode
}

// MediaChange is emitted when media is opened or closed.
type MediaChange struct {
	Info   Info
	Opened bool
}

// EndedChange is emitted when the media reaches or leaves its end.
type EndedChange struct {
	Ended    bool
	Position time.Duration
}
