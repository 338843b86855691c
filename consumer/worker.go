package consumer

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/marcelsud/scalable-webhook/metrics"
	"github.com/marcelsud/scalable-webhook/record"
	"github.com/marcelsud/scalable-webhook/webhook"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	defaultParallelism  = 1
	defaultBatchSize    = 10
	defaultPollInterval = time.Second
	heartbeatInterval   = 30 * time.Second
)

// Heartbeater publishes worker liveness
type Heartbeater interface {
	SetWorkerHeartbeat(ctx context.Context, workerID, status string) error
}

// Config holds the optional settings of a Worker
type Config struct {
	ID          string
	Parallelism int
	BatchSize   int
	// PollInterval is the pause after an empty receive
	PollInterval time.Duration
	// ConnectionRetryDelay shortens the lease after a sink connection failure, zero keeps the visibility timeout
	ConnectionRetryDelay time.Duration
	Logger               zerolog.Logger
	Metrics              metrics.Recorder
	Heartbeat            Heartbeater
}

/* Worker drains the queue into the sink
 * A message is acknowledged only after its record is written;
 * every failure leaves it in flight so the lease expiry retries it
 */
type Worker struct {
	queue      webhook.Queue
	sink       record.Connector
	id         string
	workers    int
	batchSize  int
	pollEvery  time.Duration
	retryDelay time.Duration
	logger     zerolog.Logger
	metrics    metrics.Recorder
	heartbeat  Heartbeater
	busy       atomic.Int64
}

func NewWorker(queue webhook.Queue, sink record.Connector, cfg Config) *Worker {
	if cfg.ID == "" {
		cfg.ID = "worker"
	}
	if cfg.Parallelism < 1 {
		cfg.Parallelism = defaultParallelism
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NopRecorder{}
	}
	return &Worker{
		queue:      queue,
		sink:       sink,
		id:         cfg.ID,
		workers:    cfg.Parallelism,
		batchSize:  cfg.BatchSize,
		pollEvery:  cfg.PollInterval,
		retryDelay: cfg.ConnectionRetryDelay,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
		heartbeat:  cfg.Heartbeat,
	}
}

// Handle processes exactly one message
func (w *Worker) Handle(ctx context.Context, msg webhook.Message) error {
	w.busy.Add(1)
	defer w.busy.Add(-1)

	rec, err := record.FromMessage(msg)
	if err != nil {
		w.fail(msg, "parse", err)
		return err
	}

	result, err := w.persist(ctx, rec)
	if errors.Is(err, record.ErrConnection) {
		w.fail(msg, "connection", err)
		w.retrySooner(ctx, msg)
		return err
	}
	if err != nil {
		w.fail(msg, "write", err)
		return err
	}

	if err := w.queue.Ack(ctx, msg.ID); err != nil {
		// the record exists, the redelivery will be a no-op write
		w.fail(msg, "ack", err)
		return fmt.Errorf("acknowledging message %s: %w", msg.ID, err)
	}

	w.metrics.IncProcessed(!result.Inserted)
	w.logger.Debug().
		Str("message_id", msg.ID).
		Int("receive_count", msg.ReceiveCount).
		Bool("duplicate", !result.Inserted).
		Msg("message persisted")
	return nil
}

// persist holds one connection for the duration of the write
func (w *Worker) persist(ctx context.Context, rec record.Record) (record.Result, error) {
	conn, err := w.sink.Connect(ctx)
	if err != nil {
		return record.Result{}, err
	}
	defer func() {
		if err := conn.Close(); err != nil {
			w.logger.Warn().Err(err).Str("message_id", rec.MessageID).Msg("releasing sink connection")
		}
	}()

	return conn.Execute(ctx, rec)
}

func (w *Worker) retrySooner(ctx context.Context, msg webhook.Message) {
	if w.retryDelay <= 0 {
		return
	}
	if err := w.queue.ChangeVisibility(ctx, msg.ID, w.retryDelay); err != nil {
		w.logger.Warn().Err(err).Str("message_id", msg.ID).Msg("changing visibility")
	}
}

func (w *Worker) fail(msg webhook.Message, reason string, err error) {
	w.metrics.IncFailed(reason)
	w.logger.Error().
		Err(err).
		Str("message_id", msg.ID).
		Int("receive_count", msg.ReceiveCount).
		Str("worker_id", w.id).
		Str("reason", reason).
		Msg("message not processed")
}

// Run polls the queue with the configured parallelism until ctx is cancelled
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info().
		Str("worker_id", w.id).
		Int("parallelism", w.workers).
		Int("batch_size", w.batchSize).
		Msg("starting consumer")

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < w.workers; i++ {
		g.Go(func() error {
			return w.poll(ctx)
		})
	}
	if w.heartbeat != nil {
		g.Go(func() error {
			return w.beat(ctx)
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (w *Worker) poll(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		msgs, err := w.queue.Receive(ctx, w.batchSize)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.logger.Error().Err(err).Str("worker_id", w.id).Msg("receiving messages")
			sleep(ctx, w.pollEvery)
			continue
		}
		if len(msgs) == 0 {
			sleep(ctx, w.pollEvery)
			continue
		}

		for _, msg := range msgs {
			if ctx.Err() != nil {
				// unhandled messages come back when their lease expires
				return nil
			}
			_ = w.Handle(ctx, msg)
		}
	}
}

func (w *Worker) beat(ctx context.Context) error {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		status := "idle"
		if w.busy.Load() > 0 {
			status = "processing"
		}
		if err := w.heartbeat.SetWorkerHeartbeat(ctx, w.id, status); err != nil && ctx.Err() == nil {
			w.logger.Warn().Err(err).Str("worker_id", w.id).Msg("sending heartbeat")
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
