// Package mysql opens MySQL-backed record stores.
package mysql

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/freightdesk/backoffice/pkg/observability/logger"
	"github.com/freightdesk/backoffice/pkg/store/sqlstore"
)

// DriverName is the database/sql driver registered by go-sql-driver/mysql.
const DriverName = "mysql"

const errDupEntry = 1062

// Dialect is the MySQL SQL dialect.
type Dialect struct{}

// Name implements sqlstore.Dialect.
func (Dialect) Name() string { return "mysql" }

// Placeholder implements sqlstore.Dialect.
func (Dialect) Placeholder(int) string { return "?" }

// JSONType implements sqlstore.Dialect.
func (Dialect) JSONType() string { return "JSON" }

// IsConflict implements sqlstore.Dialect.
func (Dialect) IsConflict(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == errDupEntry
}

// Config holds MySQL configuration.
type Config struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	QueryTimeout    time.Duration
}

// DSN normalizes a MySQL DSN. Affected row counts report matched rows so an
// update that leaves a row unchanged is not mistaken for a missing record.
func DSN(url string) (string, error) {
	cfg, err := mysql.ParseDSN(url)
	if err != nil {
		return "", fmt.Errorf("invalid mysql DSN: %w", err)
	}
	cfg.ClientFoundRows = true
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

// Open connects to MySQL.
func Open(cfg Config, log logger.Logger) (*sqlstore.Conn, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL is required")
	}
	dsn, err := DSN(cfg.URL)
	if err != nil {
		return nil, err
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
