// internal/database/db.go
package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgx operations the query layer needs. Both
// *pgxpool.Pool and pgx.Tx satisfy it, so the same queries run inside or
// outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// New returns a Queries bound to the given connection or transaction.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Queries is the concrete Querier implementation.
type Queries struct {
	db DBTX
}

// WithTx returns a Queries bound to the given transaction.
func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}

// Ping verifies store connectivity with a trivial query.
func (q *Queries) Ping(ctx context.Context) error {
	_, err := q.db.Exec(ctx, "SELECT 1")
	return err
}
