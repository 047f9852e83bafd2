// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"underwriting-workers/internal/common/config"
)

const connectTimeout = 5 * time.Second

// PostgresClient owns the lead database pool.
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres opens the pool and verifies the server is reachable, so callers
// can retry on a failed start.
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach postgres at %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	return &PostgresClient{DB: db}, nil
}

func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

func (c *PostgresClient) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return c.DB.ExecContext(ctx, query, args...)
}

// EnsureLeadSchema creates the lead table and its application index when they
// do not exist yet.
func (c *PostgresClient) EnsureLeadSchema(ctx context.Context, table string) error {
	if table == "" {
		table = defaultLeadTable
	}
	name := pq.QuoteIdentifier(table)
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id              UUID PRIMARY KEY,
			application_id  TEXT NOT NULL,
			applicant_name  TEXT NOT NULL DEFAULT '',
			legal_name      TEXT NOT NULL DEFAULT '',
			gst_registered  BOOLEAN NOT NULL DEFAULT FALSE,
			loan_type       TEXT NOT NULL DEFAULT '',
			approved_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
			interest_rate   NUMERIC(5,2) NOT NULL DEFAULT 0,
			tenure_months   INTEGER NOT NULL DEFAULT 0,
			status          TEXT NOT NULL,
			closure_reason  TEXT NOT NULL DEFAULT '',
			summary         JSONB NOT NULL,
			created_at      TIMESTAMPTZ NOT NULL
		)`, name),
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s (application_id)`,
			pq.QuoteIdentifier(table+"_application_id_key"), name),
	}
	for _, stmt := range stmts {
		if _, err := c.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure lead schema: %w", err)
		}
	}
	return nil
}

// GetDB returns the underlying *sql.DB
func (c *PostgresClient) GetDB() *sql.DB {
	return c.DB
}
