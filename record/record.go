package record

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/marcelsud/scalable-webhook/webhook"
	"github.com/marcelsud/scalable-webhook/webhook/payload"
)

// Record is the row written for every processed message.
// MessageID is unique, so replaying a message never creates a second row.
type Record struct {
	MessageID  string    `json:"message_id"`
	EventType  string    `json:"event_type,omitempty"`
	Payload    []byte    `json:"payload"`
	Checksum   string    `json:"checksum"`
	ReceivedAt time.Time `json:"received_at"`
}

// FromMessage parses the message body and builds the record to persist
func FromMessage(msg webhook.Message) (Record, error) {
	if msg.ID == "" {
		return Record{}, fmt.Errorf("message id cannot be empty")
	}

	canonical, err := payload.Canonicalize(msg.Body)
	if err != nil {
		return Record{}, fmt.Errorf("parsing message %s: %w", msg.ID, err)
	}

	sum := sha256.Sum256(canonical)
	return Record{
		MessageID:  msg.ID,
		EventType:  payload.EventType(canonical),
		Payload:    canonical,
		Checksum:   hex.EncodeToString(sum[:]),
		ReceivedAt: msg.ReceivedAt.UTC(),
	}, nil
}
