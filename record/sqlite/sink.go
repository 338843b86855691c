package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/marcelsud/scalable-webhook/record"
	"github.com/pressly/goose/v3"
	// SQLite driver.
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var driver = "sqlite"

// Sink persists records to an embedded SQLite file, used for local runs
type Sink struct {
	db *sql.DB
}

// Open opens the database at path and applies the migrations
func Open(ctx context.Context, path string) (*Sink, error) {
	if path == "" {
		path = "data/webhooks.sqlite"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating data directory: %v", record.ErrConnection, err)
	}
	db, err := sql.Open(driver, dsn(path))
	if err != nil {
		return nil, fmt.Errorf("%w: opening sqlite: %v", record.ErrConnection, err)
	}
	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Sink{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	migrations, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations)
	if err != nil {
		return fmt.Errorf("creating migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	return nil
}

func dsn(path string) string {
	values := url.Values{}
	values.Add("_pragma", "journal_mode(WAL)")
	values.Add("_pragma", "synchronous(NORMAL)")
	values.Add("_pragma", "busy_timeout(5000)")
	return fmt.Sprintf("file:%s?%s", path, values.Encode())
}

// Connect takes the connection from the pool for one message
func (s *Sink) Connect(ctx context.Context) (record.Connection, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", record.ErrConnection, err)
	}
	return &Connection{conn: conn}, nil
}

// Get returns the record persisted for a message
func (s *Sink) Get(ctx context.Context, messageID string) (record.Record, error) {
	var (
		rec        record.Record
		receivedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT message_id, event_type, payload, checksum, received_at FROM webhook_records WHERE message_id = ?`,
		messageID,
	).Scan(&rec.MessageID, &rec.EventType, &rec.Payload, &rec.Checksum, &receivedAt)
	if err == sql.ErrNoRows {
		return record.Record{}, record.ErrNotFound
	}
	if err != nil {
		return record.Record{}, fmt.Errorf("selecting record: %w", err)
	}

	rec.ReceivedAt, err = time.Parse(time.RFC3339Nano, receivedAt)
	if err != nil {
		return record.Record{}, fmt.Errorf("parsing received_at: %w", err)
	}
	return rec, nil
}

// Count returns the number of persisted records
func (s *Sink) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM webhook_records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return n, nil
}

// Close closes the underlying database connection.
func (s *Sink) Close(ctx context.Context) error {
	return s.db.Close()
}

type Connection struct {
	conn *sql.Conn
}

// Execute writes the record, a second write of the same message is a no-op
func (c *Connection) Execute(ctx context.Context, rec record.Record) (record.Result, error) {
	result, err := c.conn.ExecContext(ctx,
		`INSERT INTO webhook_records (message_id, event_type, payload, checksum, received_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (message_id) DO NOTHING`,
		rec.MessageID,
		rec.EventType,
		string(rec.Payload),
		rec.Checksum,
		rec.ReceivedAt.UTC().Format(time.RFC3339Nano),
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

func (c *Connection) Close() error {
	return c.conn.Close()
}
