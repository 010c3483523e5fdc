package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"assistflow/pkg/platform/sentinel"
)

const defaultTable = "kv_entries"

// Postgres keeps every entry as a row (key, value, version). CAS is a
// conditional UPDATE on version, create-only is INSERT ... ON CONFLICT DO NOTHING.
type Postgres struct {
	db    *sql.DB
	table string
}

// PostgresOption configures a Postgres store.
type PostgresOption func(*Postgres)

// WithTable overrides the backing table name.
func WithTable(name string) PostgresOption {
	return func(p *Postgres) {
		if name != "" {
			p.table = name
		}
	}
}

func NewPostgres(db *sql.DB, opts ...PostgresOption) *Postgres {
	p := &Postgres{db: db, table: defaultTable}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// EnsureSchema creates the backing table when missing.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			key     TEXT PRIMARY KEY,
			value   BYTEA NOT NULL,
			version BIGINT NOT NULL
		)`, pq.QuoteIdentifier(s.table))
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ensure kv schema: %w", err)
	}
	return nil
}

func (s *Postgres) Get(ctx context.Context, key string) (Entry, error) {
	query := fmt.Sprintf(`SELECT value, version FROM %s WHERE key = $1`, pq.QuoteIdentifier(s.table))
	e := Entry{Key: key}
	err := s.db.QueryRowContext(ctx, query, key).Scan(&e.Value, &e.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("postgres get %s: %w", key, err)
	}
	return e, nil
}

func (s *Postgres) Put(ctx context.Context, key string, value []byte) error {
	table := pq.QuoteIdentifier(s.table)
	query := fmt.Sprintf(`
		INSERT INTO %s (key, value, version)
		VALUES ($1, $2, 1)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			version = %s.version + 1
	`, table, table)
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("postgres put %s: %w", key, err)
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, key string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE key = $1`, pq.QuoteIdentifier(s.table))
	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("postgres delete %s: %w", key, err)
	}
	return nil
}

func (s *Postgres) ScanPrefix(ctx context.Context, prefix string) ([]Entry, error) {
	query := fmt.Sprintf(`SELECT key, value, version FROM %s WHERE key LIKE $1 ESCAPE '\' ORDER BY key`,
		pq.QuoteIdentifier(s.table))
	rows, err := s.db.QueryContext(ctx, query, escapeLike(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("postgres scan %s: %w", prefix, err)
	}
	defer rows.Close()

	out := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Key, &e.Value, &e.Version); err != nil {
			return nil, fmt.Errorf("postgres scan row: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres scan rows: %w", err)
	}
	return out, nil
}

func (s *Postgres) CompareAndSwap(ctx context.Context, key string, expectedVersion int64, value []byte) (int64, error) {
	table := pq.QuoteIdentifier(s.table)
	if expectedVersion == 0 {
		query := fmt.Sprintf(`INSERT INTO %s (key, value, version) VALUES ($1, $2, 1) ON CONFLICT (key) DO NOTHING`, table)
		res, err := s.db.ExecContext(ctx, query, key, value)
		if err != nil {
			return 0, translatePQ(key, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("postgres cas %s: %w", key, err)
		}
		if n == 0 {
			return 0, sentinel.ErrConflict
		}
		return 1, nil
	}

	query := fmt.Sprintf(`UPDATE %s SET value = $2, version = version + 1 WHERE key = $1 AND version = $3 RETURNING version`, table)
	var next int64
	err := s.db.QueryRowContext(ctx, query, key, value, expectedVersion).Scan(&next)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, sentinel.ErrConflict
	}
	if err != nil {
		return 0, translatePQ(key, err)
	}
	return next, nil
}

// translatePQ maps serialization and unique violations to ErrConflict.
func translatePQ(key string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505", "40001":
			return sentinel.ErrConflict
		}
	}
	return fmt.Errorf("postgres cas %s: %w", key, err)
}

var likeReplacer = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeReplacer.Replace(s)
}
