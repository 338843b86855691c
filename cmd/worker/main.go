package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/httplog"
	"github.com/google/uuid"
	"github.com/marcelsud/scalable-webhook/config"
	"github.com/marcelsud/scalable-webhook/consumer"
	"github.com/marcelsud/scalable-webhook/internal/bootstrap"
	"github.com/marcelsud/scalable-webhook/metrics"
)

/* worker drains the queue into the relational sink
 * Migrations run at startup. On SIGTERM polling stops and unacknowledged messages
 * return to the queue when their lease expires
 */

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Println(err)
		return
	}
	if cfg.QueueBackend == "memory" {
		fmt.Println("the memory queue lives inside the api process, run cmd/api instead")
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

	sink, err := bootstrap.OpenSink(ctx, cfg)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer sink.Close(context.Background())

	exporter, err := metrics.NewOTelExporter(metrics.NewQueueCollector(queue.Name, queue, queue.Heartbeats), nil)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer exporter.Shutdown(context.Background())

	// metrics only; the worker has no other HTTP surface
	if cfg.MetricsPort != "" {
		srv := &http.Server{Addr: ":" + cfg.MetricsPort, Handler: exporter.ServeHTTP()}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				fmt.Println(err)
			}
		}()
		defer srv.Close()
	}

	hostname, _ := os.Hostname()
	wc := bootstrap.WorkerConfig(cfg, queue)
	wc.ID = fmt.Sprintf("%s-%s", hostname, uuid.NewString()[:8])
	wc.Metrics = exporter
	wc.Logger = httplog.NewLogger("scalable-webhook-worker", httplog.Options{JSON: true, LogLevel: cfg.LogLevel})

	if err := consumer.NewWorker(queue, sink, wc).Run(ctx); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println("worker stopped")
}
