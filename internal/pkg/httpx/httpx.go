package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// HTTPError carries status and body of a non-2xx response.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http error: %s %s status=%d body=%s", e.Method, e.URL, e.StatusCode, snippet(e.Body, 300))
}

func snippet(b []byte, max int) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// RetryConfig controls retry behavior.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryConfig suits a kiosk waiting on a payroll system: few attempts, short waits.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   300 * time.Millisecond,
		MaxDelay:    3 * time.Second,
	}
}

// DoWithRetry executes a request built by buildReq, retrying transport errors,
// 408, 429 and 5xx with exponential backoff. The body is always drained.
func DoWithRetry(
	ctx context.Context,
	client *http.Client,
	buildReq func(context.Context) (*http.Request, error),
	cfg RetryConfig,
) (*http.Response, []byte, error) {
	def := DefaultRetryConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = def.BaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = def.MaxDelay
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		req, err := buildReq(ctx)
		if err != nil {
			return nil, nil, err
		}

		resp, err := client.Do(req)
		if err != nil {
			if !isRetryableNetErr(err) {
				return nil, nil, err
			}
			lastErr = err
		} else {
			body, readErr := readAndClose(resp.Body)
			switch {
			case readErr != nil:
				lastErr = readErr
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return resp, body, nil
			default:
				herr := &HTTPError{Method: req.Method, URL: req.URL.String(), StatusCode: resp.StatusCode, Body: body}
				if !isRetryableStatus(resp.StatusCode) {
					return resp, body, herr
				}
				lastErr = herr
			}
		}

		if attempt < cfg.MaxAttempts {
			if err := sleepBackoff(ctx, attempt, cfg.BaseDelay, cfg.MaxDelay); err != nil {
				return nil, nil, errors.Join(lastErr, err)
			}
		}
	}

	return nil, nil, lastErr
}

// PostJSON marshals payload and POSTs it with retries.
func PostJSON(ctx context.Context, client *http.Client, url string, payload any, cfg RetryConfig) ([]byte, error) {
	return PostJSONWithHeaders(ctx, client, url, payload, nil, cfg)
}

// PostJSONWithHeaders is PostJSON with extra request headers, sent unchanged
// on every attempt.
func PostJSONWithHeaders(ctx context.Context, client *http.Client, url string, payload any, header http.Header, cfg RetryConfig) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	_, body, err := DoWithRetry(ctx, client, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
		for k, vs := range header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		return req, nil
	}, cfg)
	return body, err
}

func readAndClose(rc io.ReadCloser) ([]byte, error) {
	defer rc.Close()
	return io.ReadAll(rc)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusRequestTimeout || code == http.StatusTooManyRequests || code >= 500
}

func sleepBackoff(ctx context.Context, attempt int, base, max time.Duration) error {
	sleep := base * time.Duration(1<<(attempt-1))
	if sleep > max {
		sleep = max
	}
	// jitter up to a quarter of the delay
	sleep += time.Duration(rand.Int63n(int64(sleep)/4 + 1))

	t := time.NewTimer(sleep)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func isRetryableNetErr(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var nerr net.Error
	if errors.As(err, &nerr) {
		return nerr.Timeout()
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "eof")
}

// StatusCode extracts the HTTP status from an error returned by this package, 0 if none.
func StatusCode(err error) int {
	var herr *HTTPError
	if errors.As(err, &herr) {
		return herr.StatusCode
	}
	return 0
}

// FormatStatus is a short label for metrics and logs.
func FormatStatus(err error) string {
	if code := StatusCode(err); code != 0 {
		return strconv.Itoa(code)
	}
	return "transport"
}
