package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA synchronous=NORMAL",
}

// SQLiteStore keeps charts in one SQLite table. Times are stored as Unix
// nanoseconds; an expires_at of 0 means no expiry.
type SQLiteStore struct {
	conn *sql.DB
	ttl  time.Duration
	now  func() time.Time
}

// NewSQLiteStore opens or creates the database at path.
func NewSQLiteStore(path string, ttl time.Duration) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	conn.SetMaxOpenConns(1)

	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			conn.Close()
			return nil, fmt.Errorf("applying pragma %q: %w", p, err)
		}
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &SQLiteStore{conn: conn, ttl: ttl, now: time.Now}, nil
}

func unixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Chart, error) {
	var (
		c                         Chart
		doc                       []byte
		created, updated, expires int64
	)
	err := s.conn.QueryRowContext(ctx,
		`SELECT id, name, document, created_at, updated_at, expires_at FROM charts WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &doc, &created, &updated, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("query chart: %w", err)
	}
	c.CreatedAt, c.UpdatedAt, c.ExpiresAt = fromUnixNano(created), fromUnixNano(updated), fromUnixNano(expires)
	if c.Expired(s.now()) {
		_, _ = s.conn.ExecContext(ctx, `DELETE FROM charts WHERE id = ?`, id)
		return nil, notFound(id)
	}
	if err := json.Unmarshal(doc, &c.Document); err != nil {
		return nil, fmt.Errorf("decode chart: %w", err)
	}
	return &c, nil
}

func (s *SQLiteStore) Put(ctx context.Context, c *Chart) error {
	prepare(c, s.ttl, s.now())
	doc, err := json.Marshal(c.Document)
	if err != nil {
		return fmt.Errorf("encode chart: %w", err)
	}
	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO charts (id, name, document, blocks, created_at, updated_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			document = excluded.document,
			blocks = excluded.blocks,
			updated_at = excluded.updated_at,
			expires_at = excluded.expires_at`,
		c.ID, c.Name, doc, len(c.Document.Blocks),
		unixNano(c.CreatedAt), unixNano(c.UpdatedAt), unixNano(c.ExpiresAt))
	if err != nil {
		return fmt.Errorf("upsert chart: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM charts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete chart: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound(id)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, name, blocks, updated_at FROM charts
		WHERE expires_at = 0 OR expires_at > ?`, s.now().UnixNano())
	if err != nil {
		return nil, fmt.Errorf("list charts: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum     Summary
			updated int64
		)
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.Blocks, &updated); err != nil {
			return nil, fmt.Errorf("scan chart: %w", err)
		}
		sum.UpdatedAt = fromUnixNano(updated)
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sortSummaries(out)
	return out, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error { return s.conn.Close() }

var _ Store = (*SQLiteStore)(nil)
