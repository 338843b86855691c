package bootstrap

import (
	"context"
	"fmt"

	"github.com/marcelsud/scalable-webhook/config"
	"github.com/marcelsud/scalable-webhook/consumer"
	"github.com/marcelsud/scalable-webhook/metrics"
	"github.com/marcelsud/scalable-webhook/record"
	"github.com/marcelsud/scalable-webhook/record/postgres"
	"github.com/marcelsud/scalable-webhook/record/sqlite"
	"github.com/marcelsud/scalable-webhook/webhook"
	"github.com/marcelsud/scalable-webhook/webhook/memory"
	"github.com/marcelsud/scalable-webhook/webhook/redis"
)

/* Wiring shared by the api, worker and webhookctl binaries
 * Imports flow one way: cmd -> bootstrap -> storage packages
 */

// Queue bundles a queue backend with its dead letter store
type Queue struct {
	webhook.Queue
	DeadLetters webhook.DeadLetterStore
	// Heartbeats is nil for the memory backend
	Heartbeats interface {
		consumer.Heartbeater
		metrics.HeartbeatReader
	}
	Name string
}

// OpenQueue builds the backend selected by QUEUE_BACKEND with the resolved policy
func OpenQueue(cfg *config.Config, policy webhook.Policy) (*Queue, error) {
	switch cfg.QueueBackend {
	case "memory":
		q, err := memory.NewQueue(cfg.QueueName, policy)
		if err != nil {
			return nil, err
		}
		return &Queue{Queue: q, DeadLetters: q.DeadLetters(), Name: cfg.QueueName}, nil
	case "redis":
		client, err := redis.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		q, err := redis.NewQueue(client, cfg.QueueName, policy)
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		return &Queue{Queue: q, DeadLetters: q.DeadLetters(), Heartbeats: q, Name: cfg.QueueName}, nil
	default:
		return nil, fmt.Errorf("unknown queue backend %q", cfg.QueueBackend)
	}
}

// Sink is a record store the worker writes to and operators read from
type Sink interface {
	record.Connector
	record.Reader
	Close(ctx context.Context) error
}

// OpenSink opens the SINK_DRIVER database and applies its migrations
func OpenSink(ctx context.Context, cfg *config.Config) (Sink, error) {
	switch cfg.SinkDriver {
	case "sqlite":
		sink, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return sink, nil
	case "postgres":
		sink, err := postgres.OpenWithPoolConfig(
			cfg.PostgresParams().ConnectionString(),
			cfg.PostgresMaxOpenConns,
			cfg.PostgresMaxIdleConns,
			cfg.PostgresConnMaxLifeMinutes,
		)
		if err != nil {
			return nil, err
		}
		if err := sink.Migrate(ctx); err != nil {
			_ = sink.Close(ctx)
			return nil, err
		}
		return sink, nil
	default:
		return nil, fmt.Errorf("unknown sink driver %q", cfg.SinkDriver)
	}
}

// WorkerConfig maps the CONSUMER_* keys onto consumer.Config
func WorkerConfig(cfg *config.Config, q *Queue) consumer.Config {
	wc := consumer.Config{
		Parallelism:          cfg.ConsumerParallelism,
		BatchSize:            cfg.ConsumerBatchSize,
		PollInterval:         cfg.ConsumerPollInterval,
		ConnectionRetryDelay: cfg.ConnectionRetryDelay,
	}
	if q.Heartbeats != nil {
		wc.Heartbeat = q.Heartbeats
	}
	return wc
}
