// Package store persists wallets, categories, transactions and Telegram
// links. One implementation serves PostgreSQL (through pgx) and SQLite
// (through modernc.org/sqlite); queries are written with "?" placeholders
// and rebound for PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a row does not exist or belongs to another user.
var ErrNotFound = errors.New("not found")

// ErrInsufficientFunds is returned by WithdrawWalletBalance when the
// balance is lower than the amount.
var ErrInsufficientFunds = errors.New("insufficient funds in source wallet")

// Dialect identifies the SQL flavor behind a Store.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite"
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries runs statements against a database or an open transaction.
type Queries struct {
	q       queryer
	dialect Dialect
}

// Store owns the connection pool.
type Store struct {
	*Queries
	db   *sql.DB
	pool *pgxpool.Pool
}

// Open connects to the database named by dsn. "postgres://" and
// "postgresql://" URLs use pgx; "sqlite:<path>" (or "sqlite::memory:")
// uses the embedded SQLite driver.
func Open(ctx context.Context, dsn string) (*Store, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("create pgx pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		s := New(stdlib.OpenDBFromPool(pool), Postgres)
		s.pool = pool
		return s, nil

	case strings.HasPrefix(dsn, "sqlite:"):
		path := strings.TrimPrefix(dsn, "sqlite:")
		if path == "" {
			path = ":memory:"
		}
		db, err := sql.Open("sqlite", path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// A single connection serializes writers and keeps an in-memory
		// database alive for the life of the pool.
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
		if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
			db.Close()
			return nil, fmt.Errorf("set busy timeout: %w", err)
		}
		return New(db, SQLite), nil
	}

	return nil, fmt.Errorf("unsupported database url %q", redact(dsn))
}

// New wraps an existing database handle.
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{
		Queries: &Queries{q: db, dialect: dialect},
		db:      db,
	}
}

// Dialect reports which SQL flavor the store speaks.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the database handle and, for PostgreSQL, the pgx pool.
func (s *Store) Close() error {
	err := s.db.Close()
	if s.pool != nil {
		s.pool.Close()
	}
	return err
}

// WithTx runs fn inside a database transaction. The transaction commits
// when fn returns nil and rolls back otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(Querier) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(&Queries{q: tx, dialect: s.dialect}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Printf("store: rollback failed: %v", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// rebind rewrites "?" placeholders to "$n" for PostgreSQL.
func (q *Queries) rebind(query string) string {
	if q.dialect != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func (q *Queries) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return q.q.ExecContext(ctx, q.rebind(query), args...)
}

func (q *Queries) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return q.q.QueryContext(ctx, q.rebind(query), args...)
}

func (q *Queries) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return q.q.QueryRowContext(ctx, q.rebind(query), args...)
}

// stampLayout is fixed width so stored timestamps sort as text.
const stampLayout = "2006-01-02T15:04:05.000000Z07:00"

func stamp(t time.Time) string {
	return t.UTC().Format(stampLayout)
}

// timeValue scans a timestamp stored natively (PostgreSQL) or as text (SQLite).
type timeValue struct {
	dst *time.Time
}

func (v timeValue) Scan(src any) error {
	switch t := src.(type) {
	case time.Time:
		*v.dst = t.UTC()
		return nil
	case string:
		return v.parse(t)
	case []byte:
		return v.parse(string(t))
	case nil:
		*v.dst = time.Time{}
		return nil
	}
	return fmt.Errorf("cannot scan %T into time", src)
}

func (v timeValue) parse(s string) error {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			*v.dst = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("cannot parse time %q", s)
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func redact(dsn string) string {
	if i := strings.Index(dsn, "@"); i > 0 {
		if j := strings.Index(dsn, "://"); j > 0 && j < i {
			return dsn[:j+3] + "***" + dsn[i:]
		}
	}
	return dsn
}
