package db

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"
)

// NewDb opens a pool for dsn and checks that the server answers.
func NewDb(ctx context.Context, dsn string) (*Database, error) {
	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return NewDatabase(pool), nil
}
