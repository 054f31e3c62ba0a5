package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

const (
	defaultWebhookTimeout = 10 * time.Second
	maxWebhookRetries     = 3
)

// WebhookOption configures a WebhookSink.
type WebhookOption func(*WebhookSink)

// WithHeaders sets custom HTTP headers sent with every POST.
func WithHeaders(h map[string]string) WebhookOption {
	return func(s *WebhookSink) { s.headers = h }
}

// WithTimeout sets the HTTP client timeout. Default: 10s.
func WithTimeout(d time.Duration) WebhookOption {
	return func(s *WebhookSink) { s.client.Timeout = d }
}

// WebhookSink POSTs each notice as a JSON document to a configured URL.
// Delivery retries on 429 (honoring Retry-After) and 5xx with exponential
// backoff (1s, 2s, 4s). A 4xx other than 429 fails immediately.
type WebhookSink struct {
	url     string
	headers map[string]string
	client  *http.Client
}

// NewWebhookSink creates a webhook sink targeting the given URL.
func NewWebhookSink(url string, opts ...WebhookOption) *WebhookSink {
	s := &WebhookSink{
		url:    url,
		client: &http.Client{Timeout: defaultWebhookTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Publish delivers the notice, retrying transient failures.
func (s *WebhookSink) Publish(ctx context.Context, n Notice) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("webhook sink: marshal: %w", err)
	}

	var lastErr error
	retryAfter := ""
	for attempt := 0; attempt <= maxWebhookRetries; attempt++ {
		if attempt > 0 {
			wait := backoffDelay(attempt, retryAfter)
			t := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("webhook sink: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range s.headers {
			req.Header.Set(k, v)
		}

		resp, err := s.client.Do(req)
		if err != nil {
			lastErr = err
			retryAfter = ""
			continue
		}
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}

		lastErr = fmt.Errorf("webhook sink: HTTP %d: %s", resp.StatusCode, snippet)
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			retryAfter = resp.Header.Get("Retry-After")
		case resp.StatusCode >= 500:
			retryAfter = ""
		default:
			return lastErr
		}
	}
	return lastErr
}

func (s *WebhookSink) Close() error {
	return nil
}

// backoffDelay returns the wait duration before a retry attempt,
// honoring a Retry-After header when one was given.
func backoffDelay(attempt int, retryAfter string) time.Duration {
	if retryAfter != "" {
		if secs, err := strconv.Atoi(retryAfter); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return time.Duration(1<<(attempt-1)) * time.Second
}
