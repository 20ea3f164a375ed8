// Package testutil provides helpers shared by the lending service test suites:
// event recording, polling waits and throwaway PostgreSQL databases.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

// IntegrationEnv is the environment variable that enables container-backed tests.
const IntegrationEnv = "INTEGRATION"

// RequireIntegration skips the test unless INTEGRATION=1.
func RequireIntegration(t testing.TB) {
	t.Helper()
	if os.Getenv(IntegrationEnv) != "1" {
		t.Skipf("set %s=1 to run integration tests", IntegrationEnv)
	}
}

// NewTestUUID generates a deterministic UUID for testing.
func NewTestUUID(seed string) uuid.UUID {
	namespace := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	return uuid.NewSHA1(namespace, []byte(seed))
}

// ContextWithTimeout creates a context that is cancelled when the test ends.
func ContextWithTimeout(t testing.TB, timeout time.Duration) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// WaitForCondition polls condition until it holds or timeout elapses.
// Returns true if the condition was met.
func WaitForCondition(t testing.TB, condition func() bool, timeout, interval time.Duration) bool {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(interval)
	}
	return condition()
}

// RequireEventually fails the test if condition does not hold within timeout.
func RequireEventually(t testing.TB, condition func() bool, timeout time.Duration, msgAndArgs ...any) {
	t.Helper()
	if !WaitForCondition(t, condition, timeout, 10*time.Millisecond) {
		t.Fatalf("condition not met within %v: %v", timeout, msgAndArgs)
	}
}
