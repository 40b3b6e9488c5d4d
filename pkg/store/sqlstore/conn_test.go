package sqlstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/freightdesk/backoffice/pkg/observability/logger"
)

func TestOpen_RequiresURL(t *testing.T) {
	if _, err := Open("postgres", dollarDialect{}, ConnConfig{}, logger.NewNop()); err == nil {
		t.Fatal("expected error for empty URL")
	}
}

func TestWithQueryTimeout_UsesConfigWhenNoDeadline(t *testing.T) {
	c := &Conn{config: ConnConfig{QueryTimeout: 2 * time.Second}}

	ctx, cancel := c.withQueryTimeout(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	if !ok {
		t.Fatal("expected deadline from query timeout")
	}
	if remaining := time.Until(deadline); remaining <= 0 || remaining > 2*time.Second {
		t.Fatalf("unexpected remaining timeout: %v", remaining)
	}
}

func TestWithQueryTimeout_PreservesCallerDeadline(t *testing.T) {
	c := &Conn{config: ConnConfig{QueryTimeout: 2 * time.Second}}
	parentCtx, parentCancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer parentCancel()

	ctx, cancel := c.withQueryTimeout(parentCtx)
	defer cancel()

	parentDeadline, _ := parentCtx.Deadline()
	gotDeadline, _ := ctx.Deadline()
	if !gotDeadline.Equal(parentDeadline) {
		t.Fatalf("expected caller deadline to be preserved, got %v want %v", gotDeadline, parentDeadline)
	}
}

func TestWithQueryTimeout_ZeroTimeout(t *testing.T) {
	c := &Conn{}
	ctx, cancel := c.withQueryTimeout(context.Background())
	defer cancel()

	if _, ok := ctx.Deadline(); ok {
		t.Fatal("expected no deadline when query timeout is zero")
	}
}

func TestConn_HealthCheckAndClose(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	c := NewConn(db, dollarDialect{}, ConnConfig{}, logger.NewNop())

	mock.ExpectPing()
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	mock.ExpectClose()

	if err := c.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
	if err := c.HealthCheck(context.Background()); err == nil {
		t.Error("expected health check failure")
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if _, err := c.ExecContext(context.Background(), "SELECT 1"); err == nil {
		t.Error("expected error after close")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("sqlmock expectations: %v", err)
	}
}

func TestWithTransaction_RollbackOnPanic(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	defer db.Close()
	c := NewConn(db, dollarDialect{}, ConnConfig{}, logger.NewNop())

	mock.ExpectBegin()
	mock.ExpectRollback()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic to propagate")
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("sqlmock expectations: %v", err)
		}
	}()
	_ = c.WithTransaction(context.Background(), func(context.Context) error {
		panic("boom")
	})
}

func TestWithTransaction_NestedJoinsOuter(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	defer db.Close()
	c := NewConn(db, dollarDialect{}, ConnConfig{}, logger.NewNop())

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM t").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = c.WithTransaction(context.Background(), func(ctx context.Context) error {
		return c.WithTransaction(ctx, func(ctx context.Context) error {
			_, err := c.ExecContext(ctx, "DELETE FROM t")
			return err
		})
	})
	if err != nil {
		t.Fatalf("WithTransaction() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("sqlmock expectations: %v", err)
	}
}
