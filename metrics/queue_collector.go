package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/marcelsud/scalable-webhook/webhook"
	"github.com/marcelsud/scalable-webhook/webhook/redis"
)

// HeartbeatReader lists workers that reported recently
type HeartbeatReader interface {
	GetActiveWorkers(ctx context.Context) ([]redis.WorkerHeartbeat, error)
}

// QueueCollector implements Collector on top of any queue backend
type QueueCollector struct {
	name       string
	stats      webhook.StatsReader
	heartbeats HeartbeatReader
}

// NewQueueCollector creates a collector; heartbeats may be nil when the backend has none
func NewQueueCollector(name string, stats webhook.StatsReader, heartbeats HeartbeatReader) *QueueCollector {
	return &QueueCollector{
		name:       name,
		stats:      stats,
		heartbeats: heartbeats,
	}
}

// Collect gathers all metrics
func (c *QueueCollector) Collect(ctx context.Context) (Metrics, error) {
	counts, err := c.GetStateCounts(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting state counts: %w", err)
	}

	workers, err := c.GetActiveWorkers(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting active workers: %w", err)
	}

	return Metrics{
		Queue:       c.name,
		StateCounts: counts,
		Workers:     workers,
		Timestamp:   time.Now(),
	}, nil
}

// GetStateCounts returns the number of messages in every state, zero included
func (c *QueueCollector) GetStateCounts(ctx context.Context) (map[string]int64, error) {
	stats, err := c.stats.Stats(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(webhook.States))
	for _, state := range webhook.States {
		counts[state.String()] = stats.Count(state)
	}
	return counts, nil
}

// GetActiveWorkers returns information about active workers
func (c *QueueCollector) GetActiveWorkers(ctx context.Context) ([]WorkerInfo, error) {
	workers := []WorkerInfo{}
	if c.heartbeats == nil {
		return workers, nil
	}

	heartbeats, err := c.heartbeats.GetActiveWorkers(ctx)
	if err != nil {
		return nil, err
	}
	for _, hb := range heartbeats {
		workers = append(workers, WorkerInfo{
			WorkerID:      hb.WorkerID,
			Status:        hb.Status,
			LastHeartbeat: hb.LastHeartbeat,
		})
	}
	return workers, nil
}
