package command

// PriorityType is a transport command that preempts through the single
// priority slot.
type PriorityType int

const (
	None PriorityType = iota
	Play
	Pause
	Stop
)

// String returns the command name.
func (t PriorityType) String() string {
	switch t {
	case None:
		return "None"
	case Play:
		return "Play"
	case Pause:
		return "Pause"
	case Stop:
		return "Stop"
	default:
		return "Unknown"
	}
}
