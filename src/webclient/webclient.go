package webclient

import (
	"context"
	"net/http"
	"time"
)

// New returns an HTTP client with a bounded timeout for outbound gateway
// calls (SMS, webhooks).
func New(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

type AttemptFunc func() (status int, body []byte, err error)

// DoWithRetry retries fn on transport errors and transient HTTP statuses
// (429/5xx) with exponential backoff, honoring ctx cancellation.
func DoWithRetry(ctx context.Context, attempts int, initialDelay time.Duration, fn AttemptFunc) (int, []byte, error) {
	if attempts <= 0 {
		attempts = 1
	}
	if initialDelay <= 0 {
		initialDelay = 2 * time.Second
	}
	delay := initialDelay
	var (
		status int
		body   []byte
		err    error
	)
	for i := 0; i < attempts; i++ {
		status, body, err = fn()
		if err == nil && status != http.StatusTooManyRequests && status < 500 {
			return status, body, nil
		}
		if i == attempts-1 {
			break
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return status, body, ctx.Err()
		case <-t.C:
		}
		if delay < 30*time.Second {
			delay *= 2
		}
	}
	return status, body, err
}
