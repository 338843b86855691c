package chi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	"github.com/marcelsud/scalable-webhook/metrics"
	"github.com/marcelsud/scalable-webhook/webhook"
)

// DefaultMaxBodyBytes matches the managed-queue message size limit
const DefaultMaxBodyBytes = 256 * 1024

// Options configures the HTTP layer
type Options struct {
	// MaxBodyBytes caps POST /message bodies, larger bodies get 413
	MaxBodyBytes int64
	LogLevel     string
	Metrics      metrics.Recorder
	// MetricsHandler is mounted on /metrics when set
	MetricsHandler http.Handler
}

// Handlers sets up the ingress, dead letter and operational routes
func Handlers(ctx context.Context, webhookService webhook.UseCase, opts Options) *chi.Mux {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NopRecorder{}
	}

	logger := httplog.NewLogger("scalable-webhook", httplog.Options{
		JSON:     true,
		LogLevel: opts.LogLevel,
	})

	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	r.Method(http.MethodPost, "/message", postMessage(webhookService, opts.MaxBodyBytes, opts.Metrics))

	r.Route("/v1", func(r chi.Router) {
		r.Method(http.MethodGet, "/stats", getStats(webhookService))
		r.Method(http.MethodGet, "/dlq", getDeadLetters(webhookService))
		r.Method(http.MethodGet, "/dlq/{id}", getDeadLetter(webhookService))
		r.Method(http.MethodPost, "/dlq/{id}/redeliver", postRedeliver(webhookService))
		r.Method(http.MethodDelete, "/dlq/{id}", deleteDeadLetter(webhookService))
	})

	if opts.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", opts.MetricsHandler)
	}

	return r
}
