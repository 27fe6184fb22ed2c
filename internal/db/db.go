// Package db provides a pgxpool-based connection pool with prepared statement
// registration and health checking.
//
// Both stores keep items as JSON documents:
//
//	<SUBSCRIBERS_TABLE> (customer_id text primary key, item jsonb not null)
//	<SYSTEM_TABLE>      (config_key text primary key, value jsonb not null)
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/config"
)

// Prepared statement names.
const (
	StmtHealthCheck     = "health_check"
	StmtScanSubscribers = "scan_subscribers"
	StmtSystemConfig    = "system_config_value"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	stmts := Statements(cfg.SubscribersTable, cfg.SystemTable)

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn, stmts)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, StmtHealthCheck).Scan(&n)
}

// Statements returns the SQL for every prepared statement. Table names come
// from configuration and are quoted as identifiers.
func Statements(subscribersTable, systemTable string) map[string]string {
	subs := pgx.Identifier{subscribersTable}.Sanitize()
	sys := pgx.Identifier{systemTable}.Sanitize()
	return map[string]string{
		StmtHealthCheck: "SELECT 1",

		// Keyset pagination: $1 = last customer_id seen ('' for the first page), $2 = page size.
		StmtScanSubscribers: "SELECT customer_id, item FROM " + subs +
			" WHERE customer_id > $1 ORDER BY customer_id LIMIT $2",

		StmtSystemConfig: "SELECT value FROM " + sys + " WHERE config_key = $1",
	}
}

func registerPreparedStatements(ctx context.Context, conn *pgx.Conn, stmts map[string]string) error {
	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
