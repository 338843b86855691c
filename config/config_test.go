package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/marcelsud/scalable-webhook/config"
	"github.com/marcelsud/scalable-webhook/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := config.GetConfig()

		require.NoError(t, err)
		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, "redis", cfg.QueueBackend)
		assert.Equal(t, "webhook", cfg.QueueName)
		assert.Equal(t, int64(256*1024), cfg.MaxBodyBytes)
		assert.Equal(t, time.Second, cfg.ConsumerPollInterval)
		assert.Equal(t, 5432, cfg.PGPort)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("QUEUE_BACKEND", "memory")
		t.Setenv("SINK_DRIVER", "sqlite")
		t.Setenv("CONSUMER_POLL_INTERVAL", "250ms")
		t.Setenv("PGPORT", "6543")

		cfg, err := config.GetConfig()

		require.NoError(t, err)
		assert.Equal(t, "9090", cfg.Port)
		assert.Equal(t, "memory", cfg.QueueBackend)
		assert.Equal(t, "sqlite", cfg.SinkDriver)
		assert.Equal(t, 250*time.Millisecond, cfg.ConsumerPollInterval)
		assert.Equal(t, 6543, cfg.PostgresParams().Port)
	})

	t.Run("unknown backend", func(t *testing.T) {
		t.Setenv("QUEUE_BACKEND", "sqs")

		_, err := config.GetConfig()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "QUEUE_BACKEND")
	})
}

func TestResolvePolicy(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := &config.Config{DLQName: "webhook-dlq"}

		p, err := cfg.ResolvePolicy()

		require.NoError(t, err)
		assert.Equal(t, webhook.DefaultPolicy("webhook-dlq"), p)
	})

	t.Run("precedence file, redrive json, explicit keys", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "policy.yaml")
		require.NoError(t, os.WriteFile(path, []byte("visibility_timeout: 1m\nredrive_policy:\n  dead_letter_target: file-dlq\n  max_receive_count: 9\n"), 0o600))

		cfg := &config.Config{
			DLQName:         "webhook-dlq",
			PolicyFile:      path,
			RedrivePolicy:   `{"deadLetterTargetArn":"arn:aws:sqs:eu-west-1:1:json-dlq","maxReceiveCount":4}`,
			MaxReceiveCount: "2",
		}

		p, err := cfg.ResolvePolicy()

		require.NoError(t, err)
		assert.Equal(t, time.Minute, p.VisibilityTimeout)
		assert.Equal(t, "json-dlq", p.DeadLetterTarget)
		assert.Equal(t, 2, p.MaxReceiveCount)
	})

	t.Run("visibility timeout in seconds", func(t *testing.T) {
		cfg := &config.Config{DLQName: "dlq", VisibilityTimeout: "30"}

		p, err := cfg.ResolvePolicy()

		require.NoError(t, err)
		assert.Equal(t, 30*time.Second, p.VisibilityTimeout)
	})

	t.Run("explicit zero max receive count is rejected", func(t *testing.T) {
		cfg := &config.Config{DLQName: "dlq", MaxReceiveCount: "0"}

		_, err := cfg.ResolvePolicy()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_receive_count must be at least 1")
	})

	t.Run("sub-millisecond visibility timeout is rejected", func(t *testing.T) {
		cfg := &config.Config{DLQName: "dlq", VisibilityTimeout: "500us"}

		_, err := cfg.ResolvePolicy()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "visibility_timeout must be at least 1ms")
	})
}
