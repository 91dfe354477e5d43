package repository

import (
	"context"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// DB is the subset of pgxpool.Pool used by the repositories.
type DB interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

var _ DB = (*pgxpool.Pool)(nil)

// fromPool avoids storing a typed nil pointer in the interface.
func fromPool(pool *pgxpool.Pool) DB {
	if pool == nil {
		return nil
	}
	return pool
}
