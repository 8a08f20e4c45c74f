// Package httpx holds the retry rules shared by the outbound HTTP clients.
package httpx

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// StatusError is a non-2xx answer from an upstream API.
type StatusError struct {
	Op   string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 512 {
		body = body[:512] + "..."
	}
	if body == "" {
		return fmt.Sprintf("%s: status %d", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.Code, body)
}

func RetryableStatus(code int) bool {
	return code == http.StatusRequestTimeout || code == http.StatusTooManyRequests || (code >= 500 && code <= 599)
}

// Retryable reports whether another attempt may succeed. A cancelled caller
// is never retried.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return RetryableStatus(se.Code)
	}
	return false
}

// RetryAfter honours a Retry-After header given in seconds, capped at max.
func RetryAfter(h http.Header, fallback, max time.Duration) time.Duration {
	wait := fallback
	if h != nil {
		if secs, err := strconv.Atoi(strings.TrimSpace(h.Get("Retry-After"))); err == nil && secs > 0 {
			wait = time.Duration(secs) * time.Second
		}
	}
	if max > 0 && wait > max {
		wait = max
	}
	return wait
}

// Jitter spreads d by ±20%.
func Jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	delta := float64(d) * 0.2
	return time.Duration(float64(d) - delta + rand.Float64()*2*delta)
}

type Policy struct {
	// Retries is the number of extra attempts after the first.
	Retries int
	Backoff time.Duration
	MaxWait time.Duration
}

// Attempt performs one call. The header, when non-nil, is read for
// Retry-After.
type Attempt func(ctx context.Context) (http.Header, error)

// Do runs fn until it succeeds, fails with a permanent error, or the retries
// are spent. onRetry, when set, is told about each wait.
func Do(ctx context.Context, p Policy, fn Attempt, onRetry func(attempt int, wait time.Duration, err error)) error {
	backoff := p.Backoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	maxWait := p.MaxWait
	if maxWait <= 0 {
		maxWait = 10 * time.Second
	}
	for attempt := 0; ; attempt++ {
		h, err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= p.Retries || !Retryable(err) {
			return err
		}
		wait := Jitter(RetryAfter(h, backoff, maxWait))
		if onRetry != nil {
			onRetry(attempt+1, wait, err)
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return err
		case <-t.C:
		}
		backoff *= 2
	}
}
