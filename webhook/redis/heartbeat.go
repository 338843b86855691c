package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// HeartbeatTTL is how long a worker stays listed without a new heartbeat
const HeartbeatTTL = 60 * time.Second

// WorkerHeartbeat is the last liveness report of a consumer worker on a queue
type WorkerHeartbeat struct {
	WorkerID      string
	Queue         string
	Status        string // idle or processing
	LastHeartbeat time.Time
}

/* SetWorkerHeartbeat writes worker:heartbeat:<queue>:<worker> as a hash with a TTL
 * Workers beat at half the TTL, so one missed beat does not drop them from the listing
 */
func (q *Queue) SetWorkerHeartbeat(ctx context.Context, workerID, status string) error {
	key := q.heartbeatKey(workerID)
	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			"worker_id", workerID,
			"status", status,
			"last_heartbeat", q.now().UnixMilli(),
		)
		pipe.Expire(ctx, key, HeartbeatTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("setting heartbeat for %s: %w", workerID, err)
	}
	return nil
}

// GetActiveWorkers lists the workers whose heartbeat key has not expired
func (q *Queue) GetActiveWorkers(ctx context.Context) ([]WorkerHeartbeat, error) {
	var keys []string
	iter := q.client.Scan(ctx, 0, q.heartbeatKey("*"), 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scanning heartbeat keys: %w", err)
	}
	if len(keys) == 0 {
		return []WorkerHeartbeat{}, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(keys))
	_, err := q.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, key := range keys {
			cmds[i] = pipe.HGetAll(ctx, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading heartbeats: %w", err)
	}

	workers := make([]WorkerHeartbeat, 0, len(keys))
	for _, cmd := range cmds {
		fields := cmd.Val()
		// expired between SCAN and HGETALL
		if len(fields) == 0 {
			continue
		}
		workers = append(workers, WorkerHeartbeat{
			WorkerID:      fields["worker_id"],
			Queue:         q.name,
			Status:        fields["status"],
			LastHeartbeat: time.UnixMilli(parseInt64(fields["last_heartbeat"])).UTC(),
		})
	}
	return workers, nil
}

func (q *Queue) heartbeatKey(workerID string) string {
	return fmt.Sprintf("worker:heartbeat:%s:%s", q.name, workerID)
}
