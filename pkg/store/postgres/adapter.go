// Package postgres opens PostgreSQL-backed record stores.
package postgres

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/freightdesk/backoffice/pkg/observability/logger"
	"github.com/freightdesk/backoffice/pkg/store/sqlstore"
)

// DriverName is the database/sql driver registered by lib/pq.
const DriverName = "postgres"

const uniqueViolation = pq.ErrorCode("23505")

// Dialect is the PostgreSQL SQL dialect.
type Dialect struct{}

// Name implements sqlstore.Dialect.
func (Dialect) Name() string { return "postgres" }

// Placeholder implements sqlstore.Dialect.
func (Dialect) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }

// JSONType implements sqlstore.Dialect.
func (Dialect) JSONType() string { return "JSONB" }

// IsConflict implements sqlstore.Dialect.
func (Dialect) IsConflict(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// Config holds PostgreSQL connection configuration
type Config struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	QueryTimeout    time.Duration
}

// Open connects to PostgreSQL. URL may be a postgres:// URL or a key=value
// connection string.
func Open(cfg Config, log logger.Logger) (*sqlstore.Conn, error) {
	dsn := cfg.URL
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		parsed, err := pq.ParseURL(dsn)
		if err != nil {
			return nil, fmt.Errorf("invalid postgres URL: %w", err)
		}
		dsn = parsed
	}
	return sqlstore.Open(DriverName, Dialect{}, sqlstore.ConnConfig{
		URL:             dsn,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
		QueryTimeout:    cfg.QueryTimeout,
	}, log)
}
