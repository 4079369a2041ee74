// Package httpx is the JSON-fetching layer every outbound API call goes
// through. It owns retry wiring and failure classification; callers only see
// parsed bodies or typed errors.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"context"

	"go.uber.org/zap"

	"github.com/selivandex/newspulse/pkg/logger"
	"github.com/selivandex/newspulse/pkg/retry"
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error %d: %s", e.Code, e.Body)
}

// IsRetryable classifies failures for the retry policy: server errors and
// rate limits retry, other client errors do not, and recognized transient
// network failures retry.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code >= 500 || statusErr.Code == http.StatusTooManyRequests
	}

	errStr := err.Error()

	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded") {
		return true
	}
	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "connection reset") {
		return true
	}
	if strings.Contains(errStr, "no such host") || strings.Contains(errStr, "EOF") {
		return true
	}

	return false
}

// Client fetches JSON documents with retry.
type Client struct {
	http   *http.Client
	policy retry.Policy
}

// NewClient creates a fetch client with the given retry policy.
// A zero-value policy falls back to the default HTTP policy.
func NewClient(policy retry.Policy) *Client {
	if policy.MaxRetries == 0 && policy.InitialDelay == 0 {
		policy = retry.DefaultPolicy()
	}
	if policy.Retryable == nil {
		policy.Retryable = IsRetryable
	}

	return &Client{
		http:   &http.Client{Timeout: 30 * time.Second},
		policy: policy,
	}
}

// GetJSON fetches url and decodes the body into out.
func (c *Client) GetJSON(ctx context.Context, url string, headers map[string]string, out interface{}) error {
	_, err := c.GetJSONWithHeaders(ctx, url, headers, out)
	return err
}

// GetJSONWithHeaders fetches url, decodes the body into out, and additionally
// returns the response headers so callers can inspect rate-limit and tier
// metadata without a second request.
func (c *Client) GetJSONWithHeaders(ctx context.Context, url string, headers map[string]string, out interface{}) (http.Header, error) {
	return retry.Do(ctx, c.policy, label(url), func(ctx context.Context) (http.Header, error) {
		return c.getOnce(ctx, url, headers, out)
	})
}

func (c *Client) getOnce(ctx context.Context, url string, headers map[string]string, out interface{}) (http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	startTime := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	logger.Debug("fetched JSON",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(startTime)),
	)

	return resp.Header, nil
}

// label trims query params so retry logs don't leak API keys.
func label(url string) string {
	if i := strings.IndexByte(url, '?'); i >= 0 {
		return url[:i]
	}
	return url
}
