package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/marcelsud/scalable-webhook/webhook"
	"github.com/redis/go-redis/v9"
)

// DeadLetterStore implements webhook.DeadLetterStore on top of the queue's DLQ keys
type DeadLetterStore struct {
	queue *Queue
}

// List returns every dead letter in the target, oldest first, whatever queue it came from
func (s *DeadLetterStore) List(ctx context.Context) ([]webhook.DeadLetter, error) {
	q := s.queue
	ids, err := q.client.ZRange(ctx, q.deadLetterIndexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("listing dead letters: %w", err)
	}

	pipe := q.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, q.deadLetterKey(id))
	}
	if len(ids) > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, fmt.Errorf("reading dead letters: %w", err)
		}
	}

	letters := make([]webhook.DeadLetter, 0, len(ids))
	for _, cmd := range cmds {
		data := cmd.Val()
		if len(data) == 0 {
			// Removed between ZRANGE and HGETALL
			continue
		}
		letters = append(letters, hashToDeadLetter(data))
	}
	return letters, nil
}

// Get returns a single dead letter
func (s *DeadLetterStore) Get(ctx context.Context, id string) (webhook.DeadLetter, error) {
	q := s.queue
	data, err := q.client.HGetAll(ctx, q.deadLetterKey(id)).Result()
	if err != nil {
		return webhook.DeadLetter{}, fmt.Errorf("getting dead letter %s: %w", id, err)
	}
	if len(data) == 0 {
		return webhook.DeadLetter{}, fmt.Errorf("dead letter %s: %w", id, webhook.ErrNotFound)
	}
	return hashToDeadLetter(data), nil
}

/* Redeliver moves the message back to the queue it was dead-lettered from, with the
 * receive count reset to zero. That is not necessarily this store's queue when several
 * queues share the dead letter target
 */
func (s *DeadLetterStore) Redeliver(ctx context.Context, id string) error {
	q := s.queue
	err := redeliverScript.Run(ctx, q.client,
		[]string{q.deadLetterIndexKey(), q.deadLetterKey(id)},
		q.now().UnixMilli(),
		id,
		queuePrefix,
		q.name,
	).Err()
	if err == redis.Nil {
		return fmt.Errorf("dead letter %s: %w", id, webhook.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("redelivering dead letter %s: %w", id, err)
	}
	return nil
}

// Delete destroys a dead letter
func (s *DeadLetterStore) Delete(ctx context.Context, id string) error {
	q := s.queue
	var removed *redis.IntCmd
	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.ZRem(ctx, q.deadLetterIndexKey(), id)
		pipe.Del(ctx, q.deadLetterKey(id))
		return nil
	})
	if err != nil {
		return fmt.Errorf("deleting dead letter %s: %w", id, err)
	}
	if removed.Val() == 0 {
		return fmt.Errorf("dead letter %s: %w", id, webhook.ErrNotFound)
	}
	return nil
}

func hashToDeadLetter(data map[string]string) webhook.DeadLetter {
	return webhook.DeadLetter{
		Message: webhook.Message{
			ID:           data["id"],
			Body:         []byte(data["body"]),
			ReceivedAt:   time.UnixMilli(parseInt64(data["received_at"])),
			ReceiveCount: int(parseInt64(data["receive_count"])),
		},
		SourceQueue:    data["source_queue"],
		DeadLetteredAt: time.UnixMilli(parseInt64(data["dead_lettered_at"])),
	}
}
