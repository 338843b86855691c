package webhook

import (
	"fmt"
	"time"
)

const (
	// DefaultMaxReceiveCount is the redrive threshold used when none is configured
	DefaultMaxReceiveCount = 5

	// DefaultVisibilityTimeout is the lease applied to received messages when none is configured
	DefaultVisibilityTimeout = 300 * time.Second

	// MinVisibilityTimeout is the shortest lease a queue can represent
	MinVisibilityTimeout = time.Millisecond
)

/* Policy is the queue configuration, built once before any traffic is served
 * A message received more than MaxReceiveCount times is moved to DeadLetterTarget
 */
type Policy struct {
	VisibilityTimeout time.Duration
	MaxReceiveCount   int
	DeadLetterTarget  string
}

// DefaultPolicy returns the operational defaults for the given dead letter target
func DefaultPolicy(deadLetterTarget string) Policy {
	return Policy{
		VisibilityTimeout: DefaultVisibilityTimeout,
		MaxReceiveCount:   DefaultMaxReceiveCount,
		DeadLetterTarget:  deadLetterTarget,
	}
}

// Validate checks the policy invariants
func (p Policy) Validate() error {
	if p.MaxReceiveCount < 1 {
		return fmt.Errorf("max_receive_count must be at least 1 (got %d)", p.MaxReceiveCount)
	}
	// lease deadlines are kept in whole milliseconds
	if p.VisibilityTimeout < MinVisibilityTimeout {
		return fmt.Errorf("visibility_timeout must be at least %s (got %s)", MinVisibilityTimeout, p.VisibilityTimeout)
	}
	if p.DeadLetterTarget == "" {
		return fmt.Errorf("dead_letter_target cannot be empty")
	}
	return nil
}

// Exhausted reports whether a message with the given receive count must be dead-lettered
func (p Policy) Exhausted(receiveCount int) bool {
	return receiveCount > p.MaxReceiveCount
}
