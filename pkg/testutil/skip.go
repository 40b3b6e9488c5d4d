// Package testutil holds helpers shared by integration tests.
package testutil

import (
	"os"
	"testing"
)

// PostgresURLEnv names the variable pointing integration tests at an
// existing PostgreSQL instance instead of a throwaway container.
const PostgresURLEnv = "BACKOFFICE_TEST_POSTGRES_URL"

// SkipIfShort skips the test if running in short mode
func SkipIfShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
}

// RequireIntegration skips the test in short mode, and in CI unless
// INTEGRATION_TESTS is set.
func RequireIntegration(t *testing.T) {
	t.Helper()
	SkipIfShort(t)
	if os.Getenv("INTEGRATION_TESTS") == "" && os.Getenv("CI") != "" {
		t.Skip("skipping integration test (set INTEGRATION_TESTS=1 to run)")
	}
}
