package webhook

import (
	"context"
	"time"
)

/* Small, focused interfaces following "The Go Way"
 * Interfaces abstract behavior, not things
 * Written for users of the API, not just for testing
 */

// Publisher stores new messages in the queue
type Publisher interface {
	/* Publish stores the message with a receive count of zero and returns immediately
	 * It never waits for a consumer to be present
	 */
	Publish(ctx context.Context, msg Message) error
}

// Receiver leases visible messages to a consumer
type Receiver interface {
	/* Receive returns up to max currently visible messages and hides each of them for
	 * the visibility timeout. A message whose receive count would exceed the policy
	 * threshold is moved to the dead letter store instead of being returned
	 */
	Receive(ctx context.Context, max int) ([]Message, error)
}

// Acknowledger removes processed messages
type Acknowledger interface {
	/* Ack permanently removes the message
	 * Acking an unknown or already removed id is a no-op
	 */
	Ack(ctx context.Context, id string) error
	/* ChangeVisibility moves the lease deadline of an in-flight message to now+timeout
	 * Messages that are not in flight are left untouched
	 */
	ChangeVisibility(ctx context.Context, id string, timeout time.Duration) error
}

// StatsReader reports queue depth
type StatsReader interface {
	Stats(ctx context.Context) (Stats, error)
}

/* Interface composition - combining small interfaces into larger ones
 * This is preferred over large monolithic interfaces
 */
type Queue interface {
	Publisher
	Receiver
	Acknowledger
	StatsReader
	Policy() Policy
	Close(ctx context.Context) error
}

// DeadLetterStore is the operator-facing view of exhausted messages
type DeadLetterStore interface {
	List(ctx context.Context) ([]DeadLetter, error)
	Get(ctx context.Context, id string) (DeadLetter, error)
	/* Redeliver moves the message back to its source queue with a receive count of zero
	 * Returns ErrNotFound when the id is not dead-lettered
	 */
	Redeliver(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}
