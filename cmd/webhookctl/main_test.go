package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/marcelsud/scalable-webhook/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyValidate(t *testing.T) {
	t.Setenv("DLQ_NAME", "orders-dlq")

	t.Run("valid file prints the effective policy", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "policy.yaml")
		require.NoError(t, os.WriteFile(path, []byte("visibility_timeout: 45s\nredrive_policy:\n  max_receive_count: 3\n"), 0o600))

		var out bytes.Buffer
		root := newRootCmd()
		root.SetOut(&out)
		root.SetArgs([]string{"policy", "validate", path})

		require.NoError(t, root.Execute())
		assert.Contains(t, out.String(), "VALIDATION PASSED")
		assert.Contains(t, out.String(), "45s")
		assert.Contains(t, out.String(), "orders-dlq")
	})

	t.Run("invalid file fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "policy.yaml")
		require.NoError(t, os.WriteFile(path, []byte("redrive_policy:\n  max_receive_count: 0\n"), 0o600))

		root := newRootCmd()
		root.SetOut(&bytes.Buffer{})
		root.SetArgs([]string{"policy", "validate", path})

		err := root.Execute()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_receive_count")
	})
}

func TestPrintDeadLetters(t *testing.T) {
	t.Run("empty store", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, printDeadLetters(&out, nil))
		assert.Equal(t, "dead letter store is empty\n", out.String())
	})

	t.Run("one row per message", func(t *testing.T) {
		at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		letters := []webhook.DeadLetter{
			{Message: webhook.Message{ID: "a", Body: []byte(`{"x":1}`), ReceiveCount: 6}, SourceQueue: "webhook", DeadLetteredAt: at},
			{Message: webhook.Message{ID: "b", Body: []byte(`{}`), ReceiveCount: 6}, SourceQueue: "webhook", DeadLetteredAt: at},
		}
		var out bytes.Buffer
		require.NoError(t, printDeadLetters(&out, letters))

		lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
		require.Len(t, lines, 3)
		assert.Contains(t, string(lines[1]), "2026-01-02T03:04:05Z")
		assert.Contains(t, string(lines[2]), "b")
	})
}
