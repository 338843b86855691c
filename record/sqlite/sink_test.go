package sqlite_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/marcelsud/scalable-webhook/record"
	"github.com/marcelsud/scalable-webhook/record/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSink(t *testing.T) *sqlite.Sink {
	t.Helper()

	ctx := context.Background()
	sink, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "records.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sink.Close(ctx) })
	return sink
}

func execute(t *testing.T, sink *sqlite.Sink, rec record.Record) record.Result {
	t.Helper()

	ctx := context.Background()
	conn, err := sink.Connect(ctx)
	require.NoError(t, err)
	defer conn.Close()

	result, err := conn.Execute(ctx, rec)
	require.NoError(t, err)
	return result
}

func TestSink(t *testing.T) {
	ctx := context.Background()

	t.Run("execute and get", func(t *testing.T) {
		sink := openTestSink(t)
		rec := record.Record{
			MessageID:  "m-1",
			EventType:  "ping",
			Payload:    []byte(`{"event":"ping"}`),
			Checksum:   "abc",
			ReceivedAt: time.Date(2024, 5, 1, 12, 0, 0, 123456789, time.UTC),
		}

		result := execute(t, sink, rec)
		assert.True(t, result.Inserted)

		got, err := sink.Get(ctx, "m-1")
		require.NoError(t, err)
		assert.Equal(t, rec.MessageID, got.MessageID)
		assert.Equal(t, rec.EventType, got.EventType)
		assert.Equal(t, string(rec.Payload), string(got.Payload))
		assert.Equal(t, rec.Checksum, got.Checksum)
		assert.True(t, rec.ReceivedAt.Equal(got.ReceivedAt))
	})

	t.Run("duplicate message keeps one row", func(t *testing.T) {
		sink := openTestSink(t)
		rec := record.Record{MessageID: "dup", Payload: []byte(`{}`), Checksum: "c", ReceivedAt: time.Now()}

		assert.True(t, execute(t, sink, rec).Inserted)
		assert.False(t, execute(t, sink, rec).Inserted)

		n, err := sink.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("concurrent writers", func(t *testing.T) {
		sink := openTestSink(t)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				conn, err := sink.Connect(ctx)
				if !assert.NoError(t, err) {
					return
				}
				defer conn.Close()
				_, err = conn.Execute(ctx, record.Record{
					MessageID:  fmt.Sprintf("c-%d", i),
					Payload:    []byte(`{}`),
					Checksum:   "c",
					ReceivedAt: time.Now(),
				})
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		n, err := sink.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 10, n)
	})

	t.Run("sinks opened in parallel each get their schema", func(t *testing.T) {
		dir := t.TempDir()
		sinks := make([]*sqlite.Sink, 8)

		var wg sync.WaitGroup
		for i := range sinks {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				sink, err := sqlite.Open(ctx, filepath.Join(dir, fmt.Sprintf("parallel-%d.sqlite", i)))
				if assert.NoError(t, err) {
					sinks[i] = sink
				}
			}(i)
		}
		wg.Wait()

		for i, sink := range sinks {
			require.NotNil(t, sink)
			defer sink.Close(ctx)
			result := execute(t, sink, record.Record{MessageID: fmt.Sprintf("p-%d", i), Payload: []byte(`{}`), Checksum: "c", ReceivedAt: time.Now()})
			assert.True(t, result.Inserted)
		}
	})

	t.Run("unknown record", func(t *testing.T) {
		sink := openTestSink(t)

		_, err := sink.Get(ctx, "missing")
		assert.ErrorIs(t, err, record.ErrNotFound)
	})

	t.Run("reopening an existing file keeps data", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "reopen.sqlite")
		sink, err := sqlite.Open(ctx, path)
		require.NoError(t, err)
		execute(t, sink, record.Record{MessageID: "keep", Payload: []byte(`{}`), Checksum: "c", ReceivedAt: time.Now()})
		require.NoError(t, sink.Close(ctx))

		sink, err = sqlite.Open(ctx, path)
		require.NoError(t, err)
		defer sink.Close(ctx)

		_, err = sink.Get(ctx, "keep")
		assert.NoError(t, err)
	})
}
