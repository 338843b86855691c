package webhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/marcelsud/scalable-webhook/webhook/payload"
)

/* Service represents the business logic layer
 * Uses pointer semantics as it's an API, not data
 */

// UseCase defines the ingress and dead letter operations
type UseCase interface {
	Ingest(ctx context.Context, body []byte, enc payload.Encoding) (Message, error)
	Stats(ctx context.Context) (Stats, error)
	ListDeadLetters(ctx context.Context) ([]DeadLetter, error)
	GetDeadLetter(ctx context.Context, id string) (DeadLetter, error)
	RedeliverDeadLetter(ctx context.Context, id string) error
	DeleteDeadLetter(ctx context.Context, id string) error
}

type Service struct {
	Queue       Queue
	DeadLetters DeadLetterStore
	now         func() time.Time
}

// NewService creates a new webhook service with dependency injection
func NewService(queue Queue, deadLetters DeadLetterStore) *Service {
	return &Service{
		Queue:       queue,
		DeadLetters: deadLetters,
		now:         time.Now,
	}
}

// Ingest decodes the request body, canonicalizes the JSON and publishes it.
// The returned message carries the canonical body that was enqueued.
func (s *Service) Ingest(ctx context.Context, body []byte, enc payload.Encoding) (Message, error) {
	decoded, err := payload.Decode(body, enc)
	if errors.Is(err, payload.ErrSyntax) {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	canonical, err := payload.Canonicalize(decoded)
	if err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	msg := Message{
		ID:         uuid.New().String(),
		Body:       canonical,
		ReceivedAt: s.now().UTC(),
	}

	if err := s.Queue.Publish(ctx, msg); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrPublish, err)
	}

	return msg, nil
}

// Stats returns the queue counters
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	stats, err := s.Queue.Stats(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("reading stats: %w", err)
	}
	return stats, nil
}

func (s *Service) ListDeadLetters(ctx context.Context) ([]DeadLetter, error) {
	letters, err := s.DeadLetters.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing dead letters: %w", err)
	}
	return letters, nil
}

func (s *Service) GetDeadLetter(ctx context.Context, id string) (DeadLetter, error) {
	return s.DeadLetters.Get(ctx, id)
}

// RedeliverDeadLetter puts a dead letter back on the queue with a fresh receive count
func (s *Service) RedeliverDeadLetter(ctx context.Context, id string) error {
	if err := s.DeadLetters.Redeliver(ctx, id); err != nil {
		return fmt.Errorf("redelivering: %w", err)
	}
	return nil
}

func (s *Service) DeleteDeadLetter(ctx context.Context, id string) error {
	if err := s.DeadLetters.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting: %w", err)
	}
	return nil
}
