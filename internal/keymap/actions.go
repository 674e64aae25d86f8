// Package keymap defines the interactive command bindings of the player.
package keymap

// Action represents a user-triggerable action.
type Action string

const (
	// Transport actions
	ActionPlayPause Action = "play_pause"
	ActionPlay      Action = "play"
	ActionPause     Action = "pause"
	ActionStop      Action = "stop"

	// Seek actions
	ActionSeekForward Action = "seek_forward"
	ActionSeekBack    Action = "seek_back"
	ActionGoTo        Action = "go_to" // takes a position argument

	// Session actions
	ActionInfo Action = "info"
	ActionHelp Action = "help"
	ActionQuit Action = "quit"
)
