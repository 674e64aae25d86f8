// Package icons provides the glyphs shown next to transport events.
package icons

import "github.com/llehouerou/wavecore/internal/media"

// Style represents the icon style to use.
type Style string

const (
	StyleNerd    Style = "nerd"
	StyleUnicode Style = "unicode"
	StyleNone    Style = "none"
)

// Icons holds the icon characters for the current style.
type Icons struct {
	Playing string
	Paused  string
	Stopped string
	Closed  string
	Ended   string
	Seek    string
}

var (
	nerdIcons = Icons{
		Playing: "\uf04b ", // nf-fa-play
		Paused:  "\uf04c ", // nf-fa-pause
		Stopped: "\uf04d ", // nf-fa-stop
		Closed:  "\uf052 ", // nf-fa-eject
		Ended:   "\uf11e ", // nf-fa-flag_checkered
		Seek:    "\uf04e ", // nf-fa-forward
	}

	unicodeIcons = Icons{
		Playing: "▶ ",
		Paused:  "⏸ ",
		Stopped: "■ ",
		Closed:  "⏏ ",
		Ended:   "⏹ ",
		Seek:    "» ",
	}

	noneIcons = Icons{
		Seek: "-> ",
	}

	// current holds the active icon set
	current = noneIcons
)

// Init selects the icon set. Unknown styles fall back to none.
func Init(style string) {
	switch Style(style) {
	case StyleNerd:
		current = nerdIcons
	case StyleUnicode:
		current = unicodeIcons
	case StyleNone:
		current = noneIcons
	default:
		current = noneIcons
	}
}

// Status returns the icon of a transport status.
func Status(s media.Status) string {
	switch s {
	case media.StatusPlaying:
		return current.Playing
	case media.StatusPaused:
		return current.Paused
	case media.StatusStopped:
		return current.Stopped
	case media.StatusClosed:
		return current.Closed
	default:
		return ""
	}
}

// FormatStatus prefixes the status name with its icon.
func FormatStatus(s media.Status) string {
	return Status(s) + s.String()
}

// Ended returns the end-of-media icon.
func Ended() string {
	return current.Ended
}

// Seek returns the seek prefix.
func Seek() string {
	return current.Seek
}
