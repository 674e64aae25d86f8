package keymap

import (
	"fmt"
	"strings"
)

// Binding describes a single command binding.
type Binding struct {
	Action      Action
	Keys        []string
	Description string
	Context     string // "transport", "seek", "session"
}

// All contains every command binding, in help order.
var All = []Binding{
	// Transport
	{ActionPlayPause, []string{"enter", "p"}, "play/pause", "transport"},
	{ActionPlay, []string{"play"}, "play", "transport"},
	{ActionPause, []string{"pause"}, "pause", "transport"},
	{ActionStop, []string{"s", "stop"}, "stop", "transport"},

	// Seek
	{ActionSeekForward, []string{"+"}, "seek +10s", "seek"},
	{ActionSeekBack, []string{"-"}, "seek -10s", "seek"},
	{ActionGoTo, []string{"g <time>"}, "go to", "seek"},

	// Session
	{ActionInfo, []string{"i"}, "info", "session"},
	{ActionHelp, []string{"?", "h"}, "help", "session"},
	{ActionQuit, []string{"q", "quit"}, "quit", "session"},
}

// ByContext returns bindings filtered by context.
func ByContext(context string) []Binding {
	var result []Binding
	for _, b := range All {
		if b.Context == context {
			result = append(result, b)
		}
	}
	return result
}

// Help renders bindings as a single line, showing only the first key
// of word commands when a shorter one exists.
func Help(bindings []Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		parts = append(parts, fmt.Sprintf("[%s] %s", strings.Join(shortKeys(b.Keys), "/"), b.Description))
	}
	return strings.Join(parts, "  ")
}

func shortKeys(keys []string) []string {
	if len(keys) < 2 {
		return keys
	}
	short := make([]string, 0, len(keys))
	for _, k := range keys {
		if len(k) <= 1 || k == "enter" {
			short = append(short, k)
		}
	}
	if len(short) == 0 {
		return keys[:1]
	}
	return short
}
