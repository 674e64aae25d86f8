// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Media operations
	OpMediaOpen  Op = "open media"
	OpMediaClose Op = "close media"
	OpMediaProbe Op = "read media"

	// Transport operations
	OpPlay   Op = "play"
	OpPause  Op = "pause"
	OpStop   Op = "stop"
	OpToggle Op = "toggle playback"
	OpSeek   Op = "seek"

	// Output
	OpAudioInit Op = "initialize audio output"

	// Session
	OpSessionLoad Op = "load last session"
	OpStateOpen   Op = "open state database"

	// Integration
	OpMPRISStart Op = "start MPRIS"

	// Initialization
	OpConfigLoad Op = "load configuration"
	OpInitialize Op = "initialize engine"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}

// Wrap returns err prefixed with op, keeping it matchable with errors.Is.
func Wrap(op Op, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Rejected is the message for a transport command that was not admitted.
func Rejected(op Op) string {
	return fmt.Sprintf("Cannot %s right now", op)
}
