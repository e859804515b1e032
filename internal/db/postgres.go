package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

// Postgres is the ERP database handle. Store code uses DB; Pool owns the
// connections and is closed last.
type Postgres struct {
	Pool *pgxpool.Pool
	DB   *sql.DB
}

// OpenPostgres connects to the ERP database and verifies the connection.
// maxConns <= 0 keeps the pgxpool default.
func OpenPostgres(ctx context.Context, url string, maxConns int32) (*Postgres, error) {
	if url == "" {
		return nil, fmt.Errorf("database url not set")
	}

	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parsing database url: %w", err)
	}
	if maxConns > 0 {
		config.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &Postgres{Pool: pool, DB: stdlib.OpenDBFromPool(pool)}, nil
}

// Close closes the database/sql wrapper, then waits for every acquired
// connection to be released and closes the pool.
func (p *Postgres) Close() error {
	err := p.DB.Close()
	p.Pool.Close()
	if err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}
