package crawl

import "fmt"

// Command is a control-plane message for crawl workers.
type Command int

const (
	// Stop terminates the worker after cleanup.
	Stop Command = iota
	// Pause parks the worker on the command channel until the next command.
	Pause
	// Unpause resumes a paused worker.
	Unpause
)

// String returns the string representation of a command
func (c Command) String() string {
	switch c {
	case Stop:
		return "stop"
	case Pause:
		return "pause"
	case Unpause:
		return "unpause"
	default:
		return fmt.Sprintf("unknown(%d)", int(c))
	}
}
