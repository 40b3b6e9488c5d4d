// Package sqlstore implements store.Store on top of database/sql.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/freightdesk/backoffice/pkg/observability/logger"
)

// ConnConfig holds connection pool settings shared by the SQL drivers.
type ConnConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	QueryTimeout    time.Duration
}

// Conn wraps a pooled *sql.DB. Statements run inside the transaction carried
// by the context when there is one and are bounded by QueryTimeout otherwise.
type Conn struct {
	db      *sql.DB
	dialect Dialect
	logger  logger.Logger
	config  ConnConfig
}

// Open opens and pings a database with the given driver name.
func Open(driver string, dialect Dialect, cfg ConnConfig, log logger.Logger) (*Conn, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	db, err := sql.Open(driver, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect.Name(), err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", dialect.Name(), err)
	}

	log.Info("database connection established",
		"dialect", dialect.Name(),
		"max_open_conns", cfg.MaxOpenConns,
		"max_idle_conns", cfg.MaxIdleConns,
		"conn_max_lifetime", cfg.ConnMaxLifetime,
	)
	return NewConn(db, dialect, cfg, log), nil
}

// NewConn wraps an already opened database.
func NewConn(db *sql.DB, dialect Dialect, cfg ConnConfig, log logger.Logger) *Conn {
	return &Conn{db: db, dialect: dialect, logger: log, config: cfg}
}

// DB returns the underlying pool.
func (c *Conn) DB() *sql.DB { return c.db }

// Dialect returns the SQL dialect of the connection.
func (c *Conn) Dialect() Dialect { return c.dialect }

// HealthCheck pings the database with a short timeout.
func (c *Conn) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := c.db.PingContext(ctx); err != nil {
		c.logger.Error("database health check failed", "dialect", c.dialect.Name(), "error", err)
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// Close closes the pool.
func (c *Conn) Close() error {
	c.logger.Info("closing database connection", "dialect", c.dialect.Name())
	if err := c.db.Close(); err != nil {
		c.logger.Error("failed to close database connection", "error", err)
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	return nil
}

type txKey struct{}

func txFrom(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sql.Tx)
	return tx, ok
}

// WithTransaction runs fn in a transaction that statements issued through
// the Conn with the derived context take part in. The transaction is rolled
// back when fn returns an error or panics.
func (c *Conn) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txFrom(ctx); ok {
		return fn(ctx)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				c.logger.Error("failed to rollback transaction after panic", "panic", p, "rollback_error", rbErr)
			}
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("failed to rollback transaction: %w (original error: %v)", rbErr, err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ExecContext executes a statement.
func (c *Conn) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx, cancel := c.withQueryTimeout(ctx)
	defer cancel()
	if tx, ok := txFrom(ctx); ok {
		return tx.ExecContext(ctx, query, args...)
	}
	return c.db.ExecContext(ctx, query, args...)
}

// QueryContext runs a query. The caller must consume the rows before the
// context passed in is canceled.
func (c *Conn) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if tx, ok := txFrom(ctx); ok {
		return tx.QueryContext(ctx, query, args...)
	}
	return c.db.QueryContext(ctx, query, args...)
}

func (c *Conn) withQueryTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.config.QueryTimeout <= 0 {
		return ctx, func() {}
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.config.QueryTimeout)
}
