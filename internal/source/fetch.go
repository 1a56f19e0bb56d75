package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"
)

const fetchMaxRetries = 3

// fetchSleepFunc waits between retries (injectable for tests)
var fetchSleepFunc = sleepContext

// StatusError is a non-2xx response from the store
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.Code, e.Status)
}

// fetcher performs GET requests against the store with a size cap
type fetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
	onRetry   func()
}

// fetch performs a single request
func (f *fetcher) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("response exceeds %d bytes", f.maxBytes)
	}

	return body, nil
}

// FetchWithRetry retries transient failures with exponential backoff
func (f *fetcher) FetchWithRetry(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < fetchMaxRetries; attempt++ {
		body, err := f.fetch(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if !isRetryableFetchError(err) || ctx.Err() != nil {
			return nil, err
		}
		if attempt < fetchMaxRetries-1 {
			if f.onRetry != nil {
				f.onRetry()
			}
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			if err := fetchSleepFunc(ctx, backoff); err != nil {
				return nil, err
			}
		}
	}
	return nil, lastErr
}

// isRetryableFetchError returns true for 5xx, 429 and transient network
// failures
func isRetryableFetchError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code >= 500 || statusErr.Code == http.StatusTooManyRequests
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	s := strings.ToLower(err.Error())
	return strings.Contains(s, "timeout") ||
		strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset")
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
