package util

import (
	"context"
	"time"
)

// Retry runs fn up to attempts times with exponential backoff between
// attempts, starting at base. It is a generic helper for callers that want a
// retry policy; mailbox operations never apply it automatically.
func Retry(ctx context.Context, attempts int, base time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	delay := base
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}
