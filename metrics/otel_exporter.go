package metrics

import (
	"context"
	"fmt"
	"net/http"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// OTelExporter provides OpenTelemetry metrics export following OTel standards.
// It also implements Recorder.
type OTelExporter struct {
	meterProvider *sdkmetric.MeterProvider
	collector     Collector
	gatherer      promclient.Gatherer

	// OTel meters and instruments
	meter              metric.Meter
	stateCountGauge    metric.Int64ObservableGauge
	activeWorkersGauge metric.Int64ObservableGauge
	published          metric.Int64Counter
	rejected           metric.Int64Counter
	publishFailed      metric.Int64Counter
	processed          metric.Int64Counter
	failed             metric.Int64Counter
}

// NewOTelExporter creates a new OpenTelemetry metrics exporter with Prometheus format.
// A nil registry uses the Prometheus default registry.
func NewOTelExporter(collector Collector, registry *promclient.Registry) (*OTelExporter, error) {
	var (
		opts     []prometheus.Option
		gatherer promclient.Gatherer = promclient.DefaultGatherer
	)
	if registry != nil {
		opts = append(opts, prometheus.WithRegisterer(registry))
		gatherer = registry
	}

	exporter, err := prometheus.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(meterProvider)

	meter := meterProvider.Meter(
		"scalable-webhook",
		metric.WithInstrumentationVersion("1.0.0"),
	)

	oe := &OTelExporter{
		meterProvider: meterProvider,
		collector:     collector,
		gatherer:      gatherer,
		meter:         meter,
	}

	if err := oe.registerInstruments(); err != nil {
		return nil, fmt.Errorf("registering instruments: %w", err)
	}

	return oe, nil
}

// registerInstruments creates and registers all OpenTelemetry metric instruments
func (oe *OTelExporter) registerInstruments() error {
	var err error

	oe.stateCountGauge, err = oe.meter.Int64ObservableGauge(
		"webhook.queue.messages",
		metric.WithDescription("Number of messages by queue state"),
		metric.WithUnit("{messages}"),
		metric.WithInt64Callback(oe.observeStateCounts),
	)
	if err != nil {
		return fmt.Errorf("creating state count gauge: %w", err)
	}

	oe.activeWorkersGauge, err = oe.meter.Int64ObservableGauge(
		"webhook.workers.active",
		metric.WithDescription("Number of consumer workers with a live heartbeat"),
		metric.WithUnit("{workers}"),
		metric.WithInt64Callback(oe.observeActiveWorkers),
	)
	if err != nil {
		return fmt.Errorf("creating active workers gauge: %w", err)
	}

	counters := []struct {
		target      *metric.Int64Counter
		name        string
		description string
	}{
		{&oe.published, "webhook.ingress.published", "Messages accepted and enqueued"},
		{&oe.rejected, "webhook.ingress.rejected", "Requests rejected as caller faults"},
		{&oe.publishFailed, "webhook.ingress.publish_failed", "Requests that could not be enqueued"},
		{&oe.processed, "webhook.consumer.processed", "Messages persisted and acknowledged"},
		{&oe.failed, "webhook.consumer.failed", "Messages left unacknowledged after a failure"},
	}
	for _, c := range counters {
		*c.target, err = oe.meter.Int64Counter(c.name,
			metric.WithDescription(c.description),
			metric.WithUnit("{messages}"),
		)
		if err != nil {
			return fmt.Errorf("creating %s counter: %w", c.name, err)
		}
	}

	return nil
}

// observeStateCounts is a callback that reports message counts by state
func (oe *OTelExporter) observeStateCounts(ctx context.Context, observer metric.Int64Observer) error {
	counts, err := oe.collector.GetStateCounts(ctx)
	if err != nil {
		return err
	}

	for state, count := range counts {
		observer.Observe(count, metric.WithAttributes(
			attribute.String("queue.state", state),
		))
	}

	return nil
}

// observeActiveWorkers is a callback that reports active worker counts
func (oe *OTelExporter) observeActiveWorkers(ctx context.Context, observer metric.Int64Observer) error {
	workers, err := oe.collector.GetActiveWorkers(ctx)
	if err != nil {
		return err
	}

	observer.Observe(int64(len(workers)))
	return nil
}

func (oe *OTelExporter) IncPublished() {
	oe.published.Add(context.Background(), 1)
}

func (oe *OTelExporter) IncRejected(reason string) {
	oe.rejected.Add(context.Background(), 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (oe *OTelExporter) IncPublishFailed() {
	oe.publishFailed.Add(context.Background(), 1)
}

func (oe *OTelExporter) IncProcessed(duplicate bool) {
	oe.processed.Add(context.Background(), 1, metric.WithAttributes(attribute.Bool("duplicate", duplicate)))
}

func (oe *OTelExporter) IncFailed(reason string) {
	oe.failed.Add(context.Background(), 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// ServeHTTP serves Prometheus-formatted metrics on the given HTTP handler
func (oe *OTelExporter) ServeHTTP() http.Handler {
	if oe.gatherer == promclient.DefaultGatherer {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(oe.gatherer, promhttp.HandlerOpts{})
}

// Shutdown gracefully shuts down the meter provider
func (oe *OTelExporter) Shutdown(ctx context.Context) error {
	if oe.meterProvider != nil {
		return oe.meterProvider.Shutdown(ctx)
	}
	return nil
}
