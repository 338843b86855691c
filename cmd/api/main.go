package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/httplog"
	"github.com/marcelsud/scalable-webhook/config"
	"github.com/marcelsud/scalable-webhook/consumer"
	"github.com/marcelsud/scalable-webhook/internal/bootstrap"
	"github.com/marcelsud/scalable-webhook/internal/http/chi"
	"github.com/marcelsud/scalable-webhook/metrics"
	"github.com/marcelsud/scalable-webhook/webhook"
)

const TIMEOUT = 30 * time.Second

/* api is the ingress process: POST /message, dead letter administration and /metrics
 * With QUEUE_BACKEND=memory the queue only exists inside this process, so the
 * consumer runs here too
 */

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Println(err)
		return
	}
	policy, err := cfg.ResolvePolicy()
	if err != nil {
		fmt.Println(err)
		return
	}
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT,
	)
	defer stop()

	queue, err := bootstrap.OpenQueue(cfg, policy)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer queue.Close(context.Background())

	exporter, err := metrics.NewOTelExporter(metrics.NewQueueCollector(queue.Name, queue, queue.Heartbeats), nil)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer exporter.Shutdown(context.Background())

	if cfg.QueueBackend == "memory" {
		sink, err := bootstrap.OpenSink(ctx, cfg)
		if err != nil {
			fmt.Println(err)
			return
		}
		defer sink.Close(context.Background())

		wc := bootstrap.WorkerConfig(cfg, queue)
		wc.ID = "api-embedded"
		wc.Metrics = exporter
		wc.Logger = httplog.NewLogger("scalable-webhook-consumer", httplog.Options{JSON: true, LogLevel: cfg.LogLevel})
		// deferred after the sink and queue, so it runs before they are closed
		defer runInBackground(ctx, consumer.NewWorker(queue, sink, wc).Run)()
	}

	s := webhook.NewService(queue, queue.DeadLetters)
	r := chi.Handlers(ctx, s, chi.Options{
		MaxBodyBytes:   cfg.MaxBodyBytes,
		LogLevel:       cfg.LogLevel,
		Metrics:        exporter,
		MetricsHandler: exporter.ServeHTTP(),
	})
	http.Handle("/", r)
	srv := &http.Server{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Addr:         ":" + cfg.Port,
		Handler:      http.DefaultServeMux,
	}

	errShutdown := make(chan error, 1)
	go shutdown(srv, ctx, errShutdown)
	fmt.Printf("Listening on port %s (queue %s, dlq %s, max receive count %d, visibility timeout %s)\n",
		cfg.Port, queue.Name, policy.DeadLetterTarget, policy.MaxReceiveCount, policy.VisibilityTimeout)
	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		fmt.Println(err)
		return
	}
	err = <-errShutdown
	if err != nil {
		fmt.Println(err)
		return
	}
}

func shutdown(server *http.Server, ctxShutdown context.Context, errShutdown chan error) {
	<-ctxShutdown.Done()

	ctxTimeout, stop := context.WithTimeout(context.Background(), TIMEOUT)
	defer stop()

	err := server.Shutdown(ctxTimeout)
	switch err {
	case nil:
		fmt.Printf("\nShutting down server...\n")
		errShutdown <- nil
	case context.DeadlineExceeded:
		errShutdown <- fmt.Errorf("Forcing closing the server")
	default:
		errShutdown <- fmt.Errorf("Forcing closing the server")
	}
}

// runInBackground starts run and returns a func that cancels it and waits for it to return
func runInBackground(ctx context.Context, run func(context.Context) error) func() {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := run(ctx); err != nil {
			fmt.Println(err)
		}
	}()
	return func() {
		cancel()
		<-done
	}
}
