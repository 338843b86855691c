package main

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunInBackground(t *testing.T) {
	t.Run("wait returns only after run has finished", func(t *testing.T) {
		var finished atomic.Bool
		wait := runInBackground(context.Background(), func(ctx context.Context) error {
			<-ctx.Done()
			// a write still in progress when shutdown starts
			time.Sleep(50 * time.Millisecond)
			finished.Store(true)
			return nil
		})

		wait()

		assert.True(t, finished.Load())
	})

	t.Run("parent cancellation stops run", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		stopped := make(chan struct{})
		wait := runInBackground(ctx, func(ctx context.Context) error {
			<-ctx.Done()
			close(stopped)
			return ctx.Err()
		})

		cancel()
		select {
		case <-stopped:
		case <-time.After(time.Second):
			t.Fatal("run did not observe cancellation")
		}
		wait()
	})
}
