package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/marcelsud/scalable-webhook/record"
)

/*
PostgreSQL sink

- One pooled *sql.DB per process, one *sql.Conn per message
- Inserts are idempotent: ON CONFLICT (message_id) DO NOTHING
- Placeholders use $1, $2 instead of ?
*/

// Params are the connection parameters of the relational sink
type Params struct {
	User     string
	Host     string
	Password string
	Database string
	Port     int
	SSLMode  string
}

// ConnectionString renders the params as a lib/pq URL
func (p Params) ConnectionString() string {
	port := p.Port
	if port == 0 {
		port = 5432
	}
	sslMode := p.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     net.JoinHostPort(p.Host, strconv.Itoa(port)),
		Path:     "/" + p.Database,
		RawQuery: url.Values{"sslmode": []string{sslMode}}.Encode(),
	}
	return u.String()
}

type Sink struct {
	DB *sql.DB
}

// Open creates the sink with the default pool (25, 5, 5 min)
func Open(connectionString string) (*Sink, error) {
	return OpenWithPoolConfig(connectionString, 25, 5, 5)
}

// OpenWithPoolConfig creates the sink with a custom pool
// maxOpenConns: maximum simultaneous connections (0 = unlimited)
// maxIdleConns: idle connections kept in the pool
// maxLifeMinutes: how long a connection may be reused
func OpenWithPoolConfig(connectionString string, maxOpenConns, maxIdleConns, maxLifeMinutes int) (*Sink, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: pinging postgres: %v", record.ErrConnection, err)
	}

	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}
	if maxIdleConns > 0 {
		db.SetMaxIdleConns(maxIdleConns)
	}
	if maxLifeMinutes > 0 {
		db.SetConnMaxLifetime(time.Duration(maxLifeMinutes) * time.Minute)
	}

	return &Sink{
		DB: db,
	}, nil
}

// Connect takes a dedicated connection from the pool
func (s *Sink) Connect(ctx context.Context) (record.Connection, error) {
	conn, err := s.DB.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", record.ErrConnection, err)
	}
	return &Connection{conn: conn}, nil
}

// Get returns the record persisted for a message
func (s *Sink) Get(ctx context.Context, messageID string) (record.Record, error) {
	query := `SELECT message_id, event_type, payload, checksum, received_at FROM webhook_records WHERE message_id = $1`

	var rec record.Record
	err := s.DB.QueryRowContext(ctx, query, messageID).Scan(
		&rec.MessageID,
		&rec.EventType,
		&rec.Payload,
		&rec.Checksum,
		&rec.ReceivedAt,
	)
	if err == sql.ErrNoRows {
		return record.Record{}, record.ErrNotFound
	}
	if err != nil {
		return record.Record{}, fmt.Errorf("selecting record: %w", err)
	}
	rec.ReceivedAt = rec.ReceivedAt.UTC()
	return rec, nil
}

// Close closes the pool
func (s *Sink) Close(ctx context.Context) error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// Connection is a single pooled connection scoped to one message
type Connection struct {
	conn *sql.Conn
}

const insertRecord = `
		INSERT INTO webhook_records (message_id, event_type, payload, checksum, received_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (message_id) DO NOTHING
	`

// Execute writes the record, a second write of the same message is a no-op
func (c *Connection) Execute(ctx context.Context, rec record.Record) (record.Result, error) {
	result, err := c.conn.ExecContext(ctx, insertRecord,
		rec.MessageID,
		rec.EventType,
		string(rec.Payload),
		rec.Checksum,
		rec.ReceivedAt,
	)
	if err != nil {
		return record.Result{}, fmt.Errorf("%w %s: %v", record.ErrWrite, rec.MessageID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return record.Result{}, fmt.Errorf("%w: getting rows affected: %v", record.ErrWrite, err)
	}

	return record.Result{Inserted: rows > 0}, nil
}

// Close returns the connection to the pool
func (c *Connection) Close() error {
	return c.conn.Close()
}
