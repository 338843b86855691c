package webhook_test

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/marcelsud/scalable-webhook/webhook"
	"github.com/marcelsud/scalable-webhook/webhook/mocks"
	"github.com/marcelsud/scalable-webhook/webhook/payload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestIngest(t *testing.T) {
	ctx := context.Background()

	t.Run("success - raw JSON", func(t *testing.T) {
		queue := mocks.NewQueue(t)
		service := webhook.NewService(queue, mocks.NewDeadLetterStore(t))

		queue.On("Publish", ctx, webhook.MatchMessage(func(m webhook.Message) bool {
			return m.ID != "" &&
				string(m.Body) == `{"event":"ping"}` &&
				m.ReceiveCount == 0 &&
				!m.ReceivedAt.IsZero()
		})).Return(nil)

		msg, err := service.Ingest(ctx, []byte(`{ "event": "ping" }`), payload.Auto)

		require.NoError(t, err)
		assert.Equal(t, `{"event":"ping"}`, string(msg.Body))
		assert.NotEmpty(t, msg.ID)
	})

	t.Run("success - base64 body", func(t *testing.T) {
		queue := mocks.NewQueue(t)
		service := webhook.NewService(queue, mocks.NewDeadLetterStore(t))

		body := base64.StdEncoding.EncodeToString([]byte(`{"b":2,"a":1}`))
		queue.On("Publish", ctx, webhook.MatchMessage(func(m webhook.Message) bool {
			return string(m.Body) == `{"a":1,"b":2}`
		})).Return(nil)

		msg, err := service.Ingest(ctx, []byte(body), payload.Base64)

		require.NoError(t, err)
		assert.Equal(t, `{"a":1,"b":2}`, string(msg.Body))
	})

	t.Run("each ingest gets a new id", func(t *testing.T) {
		queue := mocks.NewQueue(t)
		service := webhook.NewService(queue, mocks.NewDeadLetterStore(t))
		queue.On("Publish", ctx, mock.Anything).Return(nil).Twice()

		first, err := service.Ingest(ctx, []byte(`{}`), payload.Auto)
		require.NoError(t, err)
		second, err := service.Ingest(ctx, []byte(`{}`), payload.Auto)
		require.NoError(t, err)

		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("invalid encoding is rejected without publishing", func(t *testing.T) {
		queue := mocks.NewQueue(t)
		service := webhook.NewService(queue, mocks.NewDeadLetterStore(t))

		_, err := service.Ingest(ctx, []byte("not base64 !!"), payload.Base64)

		require.Error(t, err)
		assert.ErrorIs(t, err, webhook.ErrDecode)
		queue.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("malformed JSON is rejected without publishing", func(t *testing.T) {
		queue := mocks.NewQueue(t)
		service := webhook.NewService(queue, mocks.NewDeadLetterStore(t))

		_, err := service.Ingest(ctx, []byte(base64.StdEncoding.EncodeToString([]byte(`{"a":`))), payload.Auto)

		require.Error(t, err)
		assert.ErrorIs(t, err, webhook.ErrMalformedPayload)
		queue.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("queue failure", func(t *testing.T) {
		queue := mocks.NewQueue(t)
		service := webhook.NewService(queue, mocks.NewDeadLetterStore(t))
		queue.On("Publish", ctx, mock.Anything).Return(errors.New("connection refused"))

		_, err := service.Ingest(ctx, []byte(`{"event":"ping"}`), payload.Auto)

		require.Error(t, err)
		assert.ErrorIs(t, err, webhook.ErrPublish)
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestDeadLetterOperations(t *testing.T) {
	ctx := context.Background()

	t.Run("list", func(t *testing.T) {
		dlq := mocks.NewDeadLetterStore(t)
		service := webhook.NewService(mocks.NewQueue(t), dlq)
		letters := []webhook.DeadLetter{{Message: webhook.Message{ID: "m-1", ReceiveCount: 6}, SourceQueue: "webhook"}}
		dlq.On("List", ctx).Return(letters, nil)

		got, err := service.ListDeadLetters(ctx)

		require.NoError(t, err)
		assert.Equal(t, letters, got)
	})

	t.Run("redeliver", func(t *testing.T) {
		dlq := mocks.NewDeadLetterStore(t)
		service := webhook.NewService(mocks.NewQueue(t), dlq)
		dlq.On("Redeliver", ctx, "m-1").Return(nil)

		require.NoError(t, service.RedeliverDeadLetter(ctx, "m-1"))
	})

	t.Run("redeliver unknown id", func(t *testing.T) {
		dlq := mocks.NewDeadLetterStore(t)
		service := webhook.NewService(mocks.NewQueue(t), dlq)
		dlq.On("Redeliver", ctx, "nope").Return(webhook.ErrNotFound)

		err := service.RedeliverDeadLetter(ctx, "nope")

		assert.ErrorIs(t, err, webhook.ErrNotFound)
	})

	t.Run("get and delete", func(t *testing.T) {
		dlq := mocks.NewDeadLetterStore(t)
		service := webhook.NewService(mocks.NewQueue(t), dlq)
		letter := webhook.DeadLetter{Message: webhook.Message{ID: "m-2"}}
		dlq.On("Get", ctx, "m-2").Return(letter, nil)
		dlq.On("Delete", ctx, "m-2").Return(nil)

		got, err := service.GetDeadLetter(ctx, "m-2")
		require.NoError(t, err)
		assert.Equal(t, "m-2", got.ID)
		require.NoError(t, service.DeleteDeadLetter(ctx, "m-2"))
	})
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	queue := mocks.NewQueue(t)
	service := webhook.NewService(queue, mocks.NewDeadLetterStore(t))
	queue.On("Stats", ctx).Return(webhook.Stats{Visible: 3, InFlight: 1, DeadLettered: 2}, nil)

	stats, err := service.Stats(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Count(webhook.Visible))
	assert.Equal(t, int64(2), stats.Count(webhook.DeadLettered))
}

func TestIngest_RawJSONSyntaxError(t *testing.T) {
	queue := mocks.NewQueue(t)
	service := webhook.NewService(queue, mocks.NewDeadLetterStore(t))

	_, err := service.Ingest(context.Background(), []byte(`{"event":`), payload.Auto)

	assert.ErrorIs(t, err, webhook.ErrMalformedPayload)
	assert.NotErrorIs(t, err, webhook.ErrDecode)
}
