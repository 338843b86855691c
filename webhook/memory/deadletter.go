package memory

import (
	"context"
	"fmt"

	"github.com/marcelsud/scalable-webhook/webhook"
)

// DeadLetterStore exposes the dead letters of a memory Queue
type DeadLetterStore struct {
	queue *Queue
}

// List returns dead letters in the order they were dead-lettered
func (s *DeadLetterStore) List(ctx context.Context) ([]webhook.DeadLetter, error) {
	s.queue.mu.Lock()
	defer s.queue.mu.Unlock()

	out := make([]webhook.DeadLetter, 0, len(s.queue.deadLetters))
	for _, dl := range s.queue.deadLetters {
		dl.Message = copyMessage(dl.Message)
		out = append(out, dl)
	}
	return out, nil
}

// Get returns a single dead letter
func (s *DeadLetterStore) Get(ctx context.Context, id string) (webhook.DeadLetter, error) {
	s.queue.mu.Lock()
	defer s.queue.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return webhook.DeadLetter{}, fmt.Errorf("dead letter %s: %w", id, webhook.ErrNotFound)
	}
	dl := s.queue.deadLetters[i]
	dl.Message = copyMessage(dl.Message)
	return dl, nil
}

// Redeliver moves the dead letter back to the queue with a receive count of zero
func (s *DeadLetterStore) Redeliver(ctx context.Context, id string) error {
	q := s.queue
	q.mu.Lock()
	defer q.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("dead letter %s: %w", id, webhook.ErrNotFound)
	}
	msg := q.deadLetters[i].Message
	msg.ReceiveCount = 0
	q.deadLetters = append(q.deadLetters[:i], q.deadLetters[i+1:]...)
	q.entries = append(q.entries, &entry{msg: msg, visibleAt: q.now()})
	return nil
}

// Delete discards the dead letter permanently
func (s *DeadLetterStore) Delete(ctx context.Context, id string) error {
	s.queue.mu.Lock()
	defer s.queue.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("dead letter %s: %w", id, webhook.ErrNotFound)
	}
	s.queue.deadLetters = append(s.queue.deadLetters[:i], s.queue.deadLetters[i+1:]...)
	return nil
}

func (s *DeadLetterStore) indexOf(id string) int {
	for i, dl := range s.queue.deadLetters {
		if dl.ID == id {
			return i
		}
	}
	return -1
}
