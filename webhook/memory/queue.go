package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/marcelsud/scalable-webhook/webhook"
)

/* In-process implementation of webhook.Queue and webhook.DeadLetterStore
 * Queue and dead letter store share one mutex so that redrive is atomic
 * Used for local runs (QUEUE_BACKEND=memory) and as a substitutable fake in tests
 */

type entry struct {
	msg       webhook.Message
	visibleAt time.Time
}

type Queue struct {
	name   string
	policy webhook.Policy
	now    func() time.Time

	mu          sync.Mutex
	entries     []*entry
	deadLetters []webhook.DeadLetter
	closed      bool
}

// Option customizes a Queue
type Option func(*Queue)

// WithClock replaces time.Now, used by tests to control lease expiry
func WithClock(now func() time.Time) Option {
	return func(q *Queue) {
		q.now = now
	}
}

// NewQueue creates an empty in-memory queue
func NewQueue(name string, policy webhook.Policy, opts ...Option) (*Queue, error) {
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("validating policy: %w", err)
	}
	q := &Queue{
		name:   name,
		policy: policy,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q, nil
}

// Publish stores the message as immediately visible
func (q *Queue) Publish(ctx context.Context, msg webhook.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return fmt.Errorf("queue %s is closed", q.name)
	}
	if q.indexOf(msg.ID) >= 0 {
		return fmt.Errorf("message %s already queued", msg.ID)
	}

	msg.ReceiveCount = 0
	msg.Body = append([]byte(nil), msg.Body...)
	q.entries = append(q.entries, &entry{msg: msg, visibleAt: q.now()})
	return nil
}

// Receive leases up to max visible messages, dead-lettering the exhausted ones
func (q *Queue) Receive(ctx context.Context, max int) ([]webhook.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if max < 1 {
		max = 1
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil, fmt.Errorf("queue %s is closed", q.name)
	}

	now := q.now()
	var received []webhook.Message
	kept := q.entries[:0]
	for _, e := range q.entries {
		if len(received) >= max || e.visibleAt.After(now) {
			kept = append(kept, e)
			continue
		}

		e.msg.ReceiveCount++
		if q.policy.Exhausted(e.msg.ReceiveCount) {
			q.deadLetters = append(q.deadLetters, webhook.DeadLetter{
				Message:        e.msg,
				SourceQueue:    q.name,
				DeadLetteredAt: now,
			})
			continue
		}

		e.visibleAt = now.Add(q.policy.VisibilityTimeout)
		received = append(received, copyMessage(e.msg))
		kept = append(kept, e)
	}
	clear(q.entries[len(kept):])
	q.entries = kept

	return received, nil
}

// Ack removes the message, unknown ids are ignored
func (q *Queue) Ack(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	if i := q.indexOf(id); i >= 0 {
		q.entries = append(q.entries[:i], q.entries[i+1:]...)
	}
	return nil
}

// ChangeVisibility moves the lease deadline of an in-flight message
func (q *Queue) ChangeVisibility(ctx context.Context, id string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	i := q.indexOf(id)
	if i < 0 {
		return nil
	}
	now := q.now()
	if e := q.entries[i]; e.visibleAt.After(now) {
		e.visibleAt = now.Add(timeout)
	}
	return nil
}

// Stats counts visible, in-flight and dead-lettered messages
func (q *Queue) Stats(ctx context.Context) (webhook.Stats, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	stats := webhook.Stats{DeadLettered: int64(len(q.deadLetters))}
	for _, e := range q.entries {
		if e.visibleAt.After(now) {
			stats.InFlight++
		} else {
			stats.Visible++
		}
	}
	return stats, nil
}

// Policy returns the policy the queue was created with
func (q *Queue) Policy() webhook.Policy {
	return q.policy
}

// Name returns the queue name
func (q *Queue) Name() string {
	return q.name
}

// Close rejects further publish and receive calls
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	return nil
}

// DeadLetters returns the dead letter store bound to this queue
func (q *Queue) DeadLetters() *DeadLetterStore {
	return &DeadLetterStore{queue: q}
}

func (q *Queue) indexOf(id string) int {
	for i, e := range q.entries {
		if e.msg.ID == id {
			return i
		}
	}
	return -1
}

func copyMessage(msg webhook.Message) webhook.Message {
	msg.Body = append([]byte(nil), msg.Body...)
	return msg
}
