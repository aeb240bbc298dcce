// Package tx carries a SQL transaction through context so PostgreSQL stores
// can join a unit of work started by a service.
package tx

import (
	"context"
	"database/sql"
	"sync"
	"time"

	dErrors "accredis/pkg/domain-errors"
)

type ctxKey struct{}

var txKey = ctxKey{}

// Execer is the subset of *sql.DB and *sql.Tx used by stores.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx stores a SQL transaction in context for downstream store usage.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From extracts a SQL transaction from context if present.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}

// Or returns the transaction in ctx, falling back to db.
func Or(ctx context.Context, db *sql.DB) Execer {
	if tx, ok := From(ctx); ok {
		return tx
	}
	return db
}

const defaultTxTimeout = 5 * time.Second

// Runner executes fn as one unit of work. Stores reached through txCtx
// participate in the same transaction.
type Runner interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

// MemoryRunner serializes units of work with a single lock. It backs the
// in-memory stores where there is no database transaction to join.
type MemoryRunner struct {
	mu sync.Mutex
}

// NewMemoryRunner returns a Runner for in-memory stores.
func NewMemoryRunner() *MemoryRunner {
	return &MemoryRunner{}
}

func (r *MemoryRunner) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(ctx)
}

// SQLRunner opens a database transaction per unit of work and commits it
// when fn returns nil.
type SQLRunner struct {
	db      *sql.DB
	timeout time.Duration
}

// NewSQLRunner returns a Runner for PostgreSQL stores.
func NewSQLRunner(db *sql.DB) *SQLRunner {
	return &SQLRunner{db: db, timeout: defaultTxTimeout}
}

func (r *SQLRunner) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	// Nested units join the outer transaction.
	if _, ok := From(ctx); ok {
		return fn(ctx)
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to begin transaction")
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	if err := fn(WithTx(ctx, sqlTx)); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to commit transaction")
	}
	return nil
}
