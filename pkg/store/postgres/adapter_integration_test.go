package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/freightdesk/backoffice/pkg/logistics"
	"github.com/freightdesk/backoffice/pkg/observability/logger"
	"github.com/freightdesk/backoffice/pkg/store"
	"github.com/freightdesk/backoffice/pkg/store/sqlstore"
	"github.com/freightdesk/backoffice/pkg/testutil"
)

// postgresURL returns BACKOFFICE_TEST_POSTGRES_URL when set and starts a
// throwaway container otherwise.
func postgresURL(t *testing.T) string {
	t.Helper()
	if url := os.Getenv(testutil.PostgresURLEnv); url != "" {
		return url
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:17-alpine",
		tcpostgres.WithDatabase("backoffice"),
		tcpostgres.WithUsername("backoffice"),
		tcpostgres.WithPassword("backoffice"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Skipf("PostgreSQL container unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}
	return url
}

func TestInvoiceStore_Integration(t *testing.T) {
	testutil.RequireIntegration(t)

	conn, err := Open(Config{
		URL:          postgresURL(t),
		MaxOpenConns: 5,
		MaxIdleConns: 2,
		QueryTimeout: 5 * time.Second,
	}, logger.NewNop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	if _, err := conn.ExecContext(ctx, "DROP TABLE IF EXISTS invoices_it"); err != nil {
		t.Fatalf("drop table: %v", err)
	}
	s := sqlstore.New[logistics.Invoice](conn, "invoices_it", sqlstore.JSONMapper[logistics.Invoice]{})
	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}

	seed := logistics.SeedInvoices()
	if seeded, err := s.SeedIfEmpty(ctx, seed); err != nil || !seeded {
		t.Fatalf("SeedIfEmpty() = %v, %v", seeded, err)
	}
	if seeded, err := s.SeedIfEmpty(ctx, seed); err != nil || seeded {
		t.Fatalf("second SeedIfEmpty() = %v, %v", seeded, err)
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if len(snap) != len(seed) {
		t.Fatalf("Snapshot() returned %d rows, want %d", len(snap), len(seed))
	}

	if _, err := s.Create(ctx, seed[0]); !errors.Is(err, store.ErrConflict) {
		t.Errorf("Create(dup) error = %v, want ErrConflict", err)
	}

	updated := seed[1]
	updated.Status = logistics.InvoicePaid
	if _, err := s.Update(ctx, updated); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, err := s.Get(ctx, updated.ID)
	if err != nil || got.Status != logistics.InvoicePaid {
		t.Errorf("Get() = %+v, %v", got, err)
	}

	if err := s.Delete(ctx, updated.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(ctx, updated.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get(deleted) error = %v, want ErrNotFound", err)
	}
	if err := conn.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}
