package adapters

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"uvbump/internal/shared"
)

const defaultHTTPTimeout = 20 * time.Second
const defaultHTTPRetries = 3
const defaultHTTPRetryDelay = 200 * time.Millisecond
const maxHTTPRetryDelay = 2 * time.Second
const maxIndexResponseBytes = 64 << 20

// HTTPConfig carries the transport settings shared by the index clients.
type HTTPConfig struct {
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
	User       string
	Token      string
}

type httpRetryConfig struct {
	timeout   time.Duration
	retries   int
	baseDelay time.Duration
	user      string
	token     string
}

func normalizeHTTPConfig(cfg HTTPConfig) httpRetryConfig {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	retryCount := cfg.Retries
	if retryCount <= 0 {
		retryCount = defaultHTTPRetries
	}
	baseDelay := cfg.RetryDelay
	if baseDelay <= 0 {
		baseDelay = defaultHTTPRetryDelay
	}
	return httpRetryConfig{
		timeout:   timeout,
		retries:   retryCount,
		baseDelay: baseDelay,
		user:      strings.TrimSpace(cfg.User),
		token:     strings.TrimSpace(cfg.Token),
	}
}

// fetchIndexDocument performs a GET and returns the body of a 2xx
// response. A 404 maps to CodeNotFound so callers can tell an unknown
// package from a broken index.
func fetchIndexDocument(ctx context.Context, url string, accept string, cfg httpRetryConfig) ([]byte, error) {
	resp, err := doRequest(ctx, url, accept, cfg)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("package not found in index").
			WithCause(shared.HTTPStatusError(resp.StatusCode, url))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("index request failed").
			WithCause(shared.HTTPStatusError(resp.StatusCode, url))
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxIndexResponseBytes))
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read index response").
			WithCause(err)
	}
	return body, nil
}

// doRequest issues a GET, retrying transport errors, 5xx and 429 with
// backoff. The final response is returned whatever its status.
func doRequest(ctx context.Context, url string, accept string, cfg httpRetryConfig) (*http.Response, error) {
	client := &http.Client{Timeout: cfg.timeout}
	var lastErr error
	for attempt := range cfg.retries {
		if attempt > 0 {
			if err := waitRetry(ctx, httpRetryDelay(attempt-1, cfg)); err != nil {
				return nil, err
			}
		}
		req, err := newIndexRequest(ctx, url, accept, cfg)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		switch {
		case err != nil && ctx.Err() != nil:
			return nil, requestCanceled(ctx)
		case err != nil:
			lastErr = err
		case retryableStatus(resp.StatusCode) && attempt < cfg.retries-1:
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			lastErr = shared.HTTPStatusError(resp.StatusCode, url)
		default:
			return resp, nil
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("request failed")
	}
	return nil, errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("request failed").
		WithCause(lastErr)
}

func newIndexRequest(ctx context.Context, url string, accept string, cfg httpRetryConfig) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create request").
			WithCause(err)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	if cfg.token != "" {
		user := cfg.user
		if user == "" {
			user = "__token__"
		}
		req.SetBasicAuth(user, cfg.token)
	}
	return req, nil
}

func retryableStatus(status int) bool {
	return status >= http.StatusInternalServerError || status == http.StatusTooManyRequests
}

func requestCanceled(ctx context.Context) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("request canceled").
		WithCause(ctx.Err())
}

// waitRetry sleeps for delay unless ctx ends first.
func waitRetry(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return requestCanceled(ctx)
	}
}

func httpRetryDelay(attempt int, cfg httpRetryConfig) time.Duration {
	delay := cfg.baseDelay * time.Duration(1<<attempt)
	if delay > maxHTTPRetryDelay {
		delay = maxHTTPRetryDelay
	}
	jitter := time.Duration(time.Now().UnixNano() % int64(delay/2+1))
	return delay + jitter
}
