package db

import (
	"context"
	"fmt"
	"time"

	"brgygo/pkg/types"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	schema      = "brgygo"
	pingTimeout = 5 * time.Second
)

// Connect opens the pool every repository shares. Unqualified table names resolve to
// the brgygo schema unless the URL already sets a search_path.
func Connect(ctx context.Context, config *types.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(config.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	params := poolConfig.ConnConfig.RuntimeParams
	if _, ok := params["search_path"]; !ok {
		params["search_path"] = schema
	}
	if _, ok := params["application_name"]; !ok {
		params["application_name"] = "brgygo"
	}

	if config.DatabaseMaxConn > 0 {
		poolConfig.MaxConns = config.DatabaseMaxConn
	}
	poolConfig.MaxConnIdleTime = 15 * time.Minute
	poolConfig.MaxConnLifetime = 45 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}
