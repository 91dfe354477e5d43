package infrastructure

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4/pgxpool"
)

// ErrNoDSN is returned when no database URL is configured.
var ErrNoDSN = errors.New("database url not configured")

// NewExportsPool connects to the exports database. An empty dsn returns
// ErrNoDSN so callers can run without persistence.
func NewExportsPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, ErrNoDSN
	}
	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
