package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cuesync/internal/logging"
)

const maxResponseBytes = 16 << 20

// transport posts JSON to a provider endpoint with retries.
type transport struct {
	provider   string
	httpClient *http.Client
	attempts   int
	baseDelay  time.Duration
	maxDelay   time.Duration
	sleeper    func(time.Duration)
	logger     *slog.Logger
}

type statusError struct {
	status     int
	body       []byte
	retryAfter time.Duration
}

func (e *statusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.status, summarizeSnippet(string(e.body)))
}

// postJSON sends payload and returns the 2xx response body. Failures are
// converted to *ProviderError.
func (t *transport) postJSON(ctx context.Context, endpoint string, header http.Header, payload any) ([]byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, &ProviderError{Provider: t.provider, Message: "encode request", Err: err}
	}

	var lastErr error
	for attempt := 1; attempt <= t.attempts; attempt++ {
		body, err := t.sendOnce(ctx, endpoint, header, encoded)
		if err == nil {
			return body, nil
		}
		lastErr = err
		delay, retry := t.retryDelay(ctx, err, attempt)
		if !retry {
			break
		}
		t.logger.DebugContext(ctx, "retrying translation request",
			logging.String("provider", t.provider),
			logging.Int("attempt", attempt),
			logging.Duration("delay", delay),
			logging.Error(err),
		)
		if err := t.sleep(ctx, delay); err != nil {
			lastErr = err
			break
		}
	}
	return nil, t.asProviderError(lastErr)
}

func (t *transport) sendOnce(ctx context.Context, endpoint string, header http.Header, encoded []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		return nil, &statusError{status: resp.StatusCode, body: body, retryAfter: retryAfter}
	}
	return body, nil
}

func (t *transport) asProviderError(err error) error {
	if err == nil {
		err = errors.New("unknown retry failure")
	}
	var statusErr *statusError
	if errors.As(err, &statusErr) {
		return &ProviderError{
			Provider: t.provider,
			Status:   statusErr.status,
			Message:  apiErrorMessage(statusErr.body),
		}
	}
	return &ProviderError{Provider: t.provider, Message: "request failed", Err: err}
}

func (t *transport) retryDelay(ctx context.Context, err error, attempt int) (time.Duration, bool) {
	if attempt >= t.attempts || err == nil {
		return 0, false
	}
	if ctx.Err() != nil {
		return 0, false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}

	var statusErr *statusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.status == http.StatusRequestTimeout,
			statusErr.status == http.StatusTooManyRequests,
			statusErr.status >= http.StatusInternalServerError:
			if statusErr.retryAfter > 0 {
				return t.capDelay(statusErr.retryAfter), true
			}
			return t.backoffDelay(attempt), true
		default:
			return 0, false
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return t.backoffDelay(attempt), true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return t.backoffDelay(attempt), true
	}
	return 0, false
}

// backoffDelay doubles from the base delay: attempt 1 -> base, 2 -> base*2, ...
func (t *transport) backoffDelay(attempt int) time.Duration {
	base := t.baseDelay
	if base <= 0 {
		return 0
	}
	maxDelay := t.maxDelay
	if maxDelay <= 0 {
		maxDelay = defaultRetryMaxDelay
	}
	delay := base
	for i := 1; i < attempt; i++ {
		if delay > maxDelay/2 {
			delay = maxDelay
			break
		}
		delay *= 2
	}
	return t.capDelay(delay)
}

func (t *transport) capDelay(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	maxDelay := t.maxDelay
	if maxDelay <= 0 {
		maxDelay = defaultRetryMaxDelay
	}
	if delay > maxDelay {
		return maxDelay
	}
	return delay
}

func (t *transport) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if t.sleeper != nil {
		t.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		delay := time.Until(when)
		if delay < 0 {
			return 0, false
		}
		return delay, true
	}
	return 0, false
}
