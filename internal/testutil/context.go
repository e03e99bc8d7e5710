package testutil

import (
	"context"
	"testing"
	"time"
)

// ContextWithTimeout bounds a repository test against the shared
// PostgreSQL container; the context ends with the test at the latest.
func ContextWithTimeout(t testing.TB, duration time.Duration) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), duration)
	t.Cleanup(cancel)

	return ctx
}

// ContextWithCancel is for tests that stop a spawn runner or autosave loop
// themselves. The context is canceled with the test if they do not.
func ContextWithCancel(t testing.TB) (context.Context, context.CancelFunc) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return ctx, cancel
}

// CanceledContext drives the early-exit paths of loops, saves and entity
// creation.
func CanceledContext(t testing.TB) context.Context {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	return ctx
}
