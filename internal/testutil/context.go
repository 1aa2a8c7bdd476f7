package testutil

import (
	"context"
	"testing"
	"time"
)

// ContextWithTimeout returns a context that is cancelled after d or when the test ends.
func ContextWithTimeout(t testing.TB, d time.Duration) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), d)
	t.Cleanup(cancel)

	return ctx
}
