// Package store is the persistence layer for the OAI-PMH data model:
// Format, Item, Record, Set, ItemSetLink and the singleton Datestamp
// (spec §3, §4.1). It talks to PostgreSQL directly through pgx, in the
// same hand-written-SQL style as the teacher's repository layer, with
// no ORM in between.
package store

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/turahe/kuha-go/internal/storeerr"
)

// prefixPattern matches the OAI-PMH metadata-prefix charset: letters,
// digits, and "-_.!~*'()" -- anything else is InvalidPrefix.
var prefixPattern = regexp.MustCompile(`^[a-zA-Z0-9\-_.!~*'()]+$`)

// specPattern matches the OAI-PMH set-spec grammar: colon-separated
// segments, each drawn from the same charset as a metadata prefix.
var specPattern = regexp.MustCompile(`^[A-Za-z0-9\-_.!~*'()]+(:[A-Za-z0-9\-_.!~*'()]+)*$`)

func validatePrefix(prefix string) error {
	if !prefixPattern.MatchString(prefix) {
		return storeerr.New(storeerr.InvalidPrefix, fmt.Sprintf("invalid metadata prefix: %q", prefix))
	}
	return nil
}

func validateSpec(spec string) error {
	if !specPattern.MatchString(spec) {
		return storeerr.New(storeerr.InvalidSpec, fmt.Sprintf("invalid set spec: %q", spec))
	}
	return nil
}

// querier is the subset of pgxpool.Pool and pgx.Tx that Store needs,
// letting the same query code run against either a pooled connection
// or an open transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is a handle onto one unit of work against the persistence
// layer. The HTTP-facing engine opens a read-only Store per request
// (spec §4.5: "each request inside a read transaction"); the importer
// opens one read-write Store per Reconciler.run call.
type Store struct {
	db    querier
	tx    pgx.Tx
	pool  *pgxpool.Pool
	cache *Cache
}

// New wraps pool directly, with no open transaction. Used by read-only
// callers that do not need commit/rollback boundaries.
func New(pool *pgxpool.Pool, redisClient redis.Cmdable) *Store {
	return &Store{db: pool, pool: pool, cache: NewCache(redisClient)}
}

// BeginTx opens a read-write transaction. The caller MUST call Commit
// or Rollback exactly once.
func BeginTx(ctx context.Context, pool *pgxpool.Pool, redisClient redis.Cmdable) (*Store, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: begin transaction: %w", err)
	}
	return &Store{db: tx, tx: tx, pool: pool, cache: NewCache(redisClient)}, nil
}

// BeginReadOnlyTx opens a read-only, repeatable-read transaction so a
// single OAI-PMH request observes one consistent Store snapshot (spec
// §4.5 ordering rule).
func BeginReadOnlyTx(ctx context.Context, pool *pgxpool.Pool, redisClient redis.Cmdable) (*Store, error) {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("store: begin read-only transaction: %w", err)
	}
	return &Store{db: tx, tx: tx, pool: pool, cache: NewCache(redisClient)}, nil
}

// Commit commits the open transaction, if any.
func (s *Store) Commit(ctx context.Context) error {
	if s.tx == nil {
		return nil
	}
	return s.tx.Commit(ctx)
}

// Rollback rolls back the open transaction, if any. Safe to call after
// a successful Commit (it becomes a no-op).
func (s *Store) Rollback(ctx context.Context) error {
	if s.tx == nil {
		return nil
	}
	err := s.tx.Rollback(ctx)
	if err == pgx.ErrTxClosed {
		return nil
	}
	return err
}
