package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/phrazzld/confengine/internal/config"
	"github.com/phrazzld/confengine/internal/redact"
)

// ErrUnavailable is returned when the database cannot be reached.
var ErrUnavailable = errors.New("database unavailable")

// Open creates a pool for cfg and verifies it with a ping bounded by the
// configured pool timeout. Non-postgres URLs yield config.ErrNotPostgres.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*pgxpool.Pool, error) {
	if cfg.IsPlaceholder() {
		return nil, fmt.Errorf("%w: database url is not configured", ErrUnavailable)
	}

	poolCfg, err := cfg.PoolConfig()
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %s", redact.Error(err))
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PoolTimeout())
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, describe(err))
	}

	log.Info("database connection pool established",
		"url", redact.URL(*cfg.URL()),
		"max_conns", poolCfg.MaxConns,
		"max_conn_lifetime", poolCfg.MaxConnLifetime)
	return pool, nil
}

// describe renders a connection error without credentials. Server-side errors
// keep their SQLSTATE code.
func describe(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Sprintf("%s (SQLSTATE %s)", redact.String(pgErr.Message), pgErr.Code)
	}
	return redact.Error(err)
}
