package metrics

import (
	"context"
	"time"
)

// Metrics represents the current state of a webhook queue.
type Metrics struct {
	// Queue is the name of the observed queue
	Queue string `json:"queue"`

	// StateCounts maps a message state (visible, in_flight, dead_lettered) to its count
	StateCounts map[string]int64 `json:"state_counts"`

	// Workers lists consumers with a live heartbeat
	Workers []WorkerInfo `json:"workers"`

	// Timestamp when metrics were collected
	Timestamp time.Time `json:"timestamp"`
}

// WorkerInfo represents information about an active worker.
type WorkerInfo struct {
	WorkerID string `json:"worker_id"`

	// Status is the current status of the worker ("idle", "processing")
	Status string `json:"status"`

	LastHeartbeat time.Time `json:"last_heartbeat"`
}

// Collector defines the interface for collecting metrics from the queue.
type Collector interface {
	// Collect gathers current metrics from the system
	Collect(ctx context.Context) (Metrics, error)

	// GetStateCounts returns the number of messages per state
	GetStateCounts(ctx context.Context) (map[string]int64, error)

	// GetActiveWorkers returns the workers with a live heartbeat
	GetActiveWorkers(ctx context.Context) ([]WorkerInfo, error)
}
