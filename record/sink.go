package record

import (
	"context"
	"errors"
)

var (
	// ErrConnection means the sink could not be reached; the message is retried after its lease expires
	ErrConnection = errors.New("connecting to sink")
	// ErrWrite means the statement failed after a connection was established
	ErrWrite    = errors.New("writing record")
	ErrNotFound = errors.New("record not found")
)

// Result reports what a write did
type Result struct {
	// Inserted is false when a row for the message already existed
	Inserted bool
}

// Connector opens scoped connections to the sink
type Connector interface {
	Connect(ctx context.Context) (Connection, error)
}

/* Connection is held for a single message
 * Close must be called on every path, including failed writes
 */
type Connection interface {
	Execute(ctx context.Context, rec Record) (Result, error)
	Close() error
}

// Reader looks up persisted records
type Reader interface {
	Get(ctx context.Context, messageID string) (Record, error)
}
