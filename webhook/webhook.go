package webhook

import "time"

/* Message represents a webhook call accepted by the ingress and buffered in the queue
 * Uses value semantics as it represents data, not behavior
 * Body is immutable once published, ReceiveCount is the only field the queue mutates
 */
type Message struct {
	ID           string
	Body         []byte
	ReceivedAt   time.Time
	ReceiveCount int
}

/* DeadLetter is a Message frozen at the moment its receive count exceeded the
 * redrive threshold. It is never redelivered automatically
 */
type DeadLetter struct {
	Message
	SourceQueue    string
	DeadLetteredAt time.Time
}

// Stats is a point-in-time view of how many messages are in each State
type Stats struct {
	Visible      int64
	InFlight     int64
	DeadLettered int64
}

// Count returns the number of messages in the given state
func (s Stats) Count(state State) int64 {
	switch state {
	case Visible:
		return s.Visible
	case InFlight:
		return s.InFlight
	case DeadLettered:
		return s.DeadLettered
	default:
		return 0
	}
}
