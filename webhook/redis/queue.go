package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/marcelsud/scalable-webhook/webhook"
	"github.com/redis/go-redis/v9"
)

/* Redis implementation of webhook.Queue
 * Uses a sorted set as the visibility/lease index
 * Uses Redis Hashes for message storage
 */

const (
	queuePrefix = "queue" // queue:{name}:visible and queue:{name}:msg:{id}
	dlqPrefix   = "dlq"   // dlq:{name}:index and dlq:{name}:msg:{id}
)

type Queue struct {
	client *redis.Client
	name   string
	policy webhook.Policy
	now    func() time.Time
}

// Option customizes a Queue
type Option func(*Queue)

// WithClock replaces time.Now, used by tests to control lease expiry
func WithClock(now func() time.Time) Option {
	return func(q *Queue) {
		q.now = now
	}
}

// NewClient creates a Redis client and checks the connection
func NewClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to Redis: %w", err)
	}

	return client, nil
}

// NewQueue creates a queue named name whose exhausted messages go to policy.DeadLetterTarget
func NewQueue(client *redis.Client, name string, policy webhook.Policy, opts ...Option) (*Queue, error) {
	if name == "" {
		return nil, fmt.Errorf("queue name cannot be empty")
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("validating policy: %w", err)
	}
	q := &Queue{
		client: client,
		name:   name,
		policy: policy,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q, nil
}

// Publish stores the message hash and makes it visible
func (q *Queue) Publish(ctx context.Context, msg webhook.Message) error {
	now := q.now()
	receivedAt := msg.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = now
	}

	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, q.messageKey(msg.ID), map[string]interface{}{
			"id":            msg.ID,
			"body":          msg.Body,
			"received_at":   receivedAt.UnixMilli(),
			"receive_count": 0,
		})
		pipe.ZAdd(ctx, q.visibleKey(), redis.Z{
			Score:  float64(now.UnixMilli()),
			Member: msg.ID,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("publishing message %s: %w", msg.ID, err)
	}
	return nil
}

// Receive leases up to max visible messages, dead-lettering the exhausted ones
func (q *Queue) Receive(ctx context.Context, max int) ([]webhook.Message, error) {
	if max < 1 {
		max = 1
	}

	res, err := receiveScript.Run(ctx, q.client,
		[]string{q.visibleKey(), q.deadLetterIndexKey()},
		q.now().UnixMilli(),
		q.policy.VisibilityTimeout.Milliseconds(),
		q.policy.MaxReceiveCount,
		max,
		q.messageKey(""),
		q.deadLetterKey(""),
		q.name,
	).Slice()
	if err == redis.Nil {
		return []webhook.Message{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("receiving messages: %w", err)
	}

	messages := make([]webhook.Message, 0, len(res))
	for _, item := range res {
		fields, ok := item.([]interface{})
		if !ok || len(fields) != 4 {
			return nil, fmt.Errorf("unexpected receive reply: %v", item)
		}
		messages = append(messages, webhook.Message{
			ID:           toString(fields[0]),
			Body:         []byte(toString(fields[1])),
			ReceivedAt:   time.UnixMilli(parseInt64(toString(fields[2]))),
			ReceiveCount: int(toInt64(fields[3])),
		})
	}

	return messages, nil
}

// Ack removes the message, unknown ids are ignored
func (q *Queue) Ack(ctx context.Context, id string) error {
	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, q.messageKey(id))
		pipe.ZRem(ctx, q.visibleKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("acknowledging message %s: %w", id, err)
	}
	return nil
}

// ChangeVisibility moves the lease deadline of an in-flight message
func (q *Queue) ChangeVisibility(ctx context.Context, id string, timeout time.Duration) error {
	err := changeVisibilityScript.Run(ctx, q.client,
		[]string{q.visibleKey()},
		id,
		q.now().UnixMilli(),
		timeout.Milliseconds(),
	).Err()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("changing visibility of %s: %w", id, err)
	}
	return nil
}

// Stats counts visible, in-flight and dead-lettered messages
func (q *Queue) Stats(ctx context.Context) (webhook.Stats, error) {
	now := strconv.FormatInt(q.now().UnixMilli(), 10)

	pipe := q.client.Pipeline()
	visible := pipe.ZCount(ctx, q.visibleKey(), "-inf", now)
	inFlight := pipe.ZCount(ctx, q.visibleKey(), "("+now, "+inf")
	dead := pipe.ZCard(ctx, q.deadLetterIndexKey())
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return webhook.Stats{}, fmt.Errorf("reading queue stats: %w", err)
	}

	return webhook.Stats{
		Visible:      visible.Val(),
		InFlight:     inFlight.Val(),
		DeadLettered: dead.Val(),
	}, nil
}

// Policy returns the policy the queue was created with
func (q *Queue) Policy() webhook.Policy {
	return q.policy
}

// Name returns the queue name
func (q *Queue) Name() string {
	return q.name
}

// DeadLetters returns the dead letter store bound to this queue
func (q *Queue) DeadLetters() *DeadLetterStore {
	return &DeadLetterStore{queue: q}
}

// Close closes the Redis connection
func (q *Queue) Close(ctx context.Context) error {
	return q.client.Close()
}

// Helper functions

func (q *Queue) visibleKey() string {
	return fmt.Sprintf("%s:%s:visible", queuePrefix, q.name)
}

func (q *Queue) messageKey(id string) string {
	return fmt.Sprintf("%s:%s:msg:%s", queuePrefix, q.name, id)
}

func (q *Queue) deadLetterIndexKey() string {
	return fmt.Sprintf("%s:%s:index", dlqPrefix, q.policy.DeadLetterTarget)
}

func (q *Queue) deadLetterKey(id string) string {
	return fmt.Sprintf("%s:%s:msg:%s", dlqPrefix, q.policy.DeadLetterTarget, id)
}

func parseInt64(s string) int64 {
	result, _ := strconv.ParseInt(s, 10, 64)
	return result
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return ""
	}
}

func toInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case string:
		return parseInt64(t)
	default:
		return 0
	}
}
