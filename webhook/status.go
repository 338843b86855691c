package webhook

import "fmt"

/* State represents where a message currently lives
 * Follows the lifecycle: Visible -> InFlight -> (acked | Visible again | DeadLettered)
 */
type State int

const (
	Visible State = iota + 1
	InFlight
	DeadLettered
)

// States lists every valid state, in lifecycle order
var States = []State{Visible, InFlight, DeadLettered}

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case Visible:
		return "visible"
	case InFlight:
		return "in_flight"
	case DeadLettered:
		return "dead_lettered"
	default:
		return "unknown"
	}
}

// NewState creates a State from a string
func NewState(str string) State {
	switch str {
	case "visible":
		return Visible
	case "in_flight":
		return InFlight
	case "dead_lettered":
		return DeadLettered
	default:
		return Visible
	}
}

// Validate checks if the state is valid
func (s State) Validate() error {
	if s < Visible || s > DeadLettered {
		return fmt.Errorf("invalid state: %d", s)
	}
	return nil
}

// IsFinal returns true if the state needs operator action to leave
func (s State) IsFinal() bool {
	return s == DeadLettered
}
