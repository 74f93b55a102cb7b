// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers for talking to the resolution engine.
package httputil

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/pdiddy/scripture-links/internal/logging"
	"github.com/pdiddy/scripture-links/pkg/types"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// HTTP 429 responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 500 * time.Millisecond

// MaxRetryAfter caps the delay taken from a Retry-After header.
var MaxRetryAfter = 30 * time.Second

const (
	defaultMaxRetries = 5
	defaultTimeout    = 10 * time.Second
	defaultUserAgent  = "scripture-links/0.1"
)

// NewClient builds an http.Client from cfg, falling back to a 10 s timeout.
func NewClient(cfg types.HTTPConfig) *http.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// SetHeaders applies the User-Agent and, when apiKey is set, a bearer token.
func SetHeaders(req *http.Request, userAgent, apiKey string) {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
}

// DoWithRetry executes an HTTP request and retries on HTTP 429 (Too Many
// Requests). The delay is taken from a Retry-After header when present,
// otherwise it starts at RetryBaseDelay and doubles each attempt.
//
// When maxRetries is 0 the default (5) is used. Requests with a body are
// replayed through req.GetBody, so callers must build them with
// http.NewRequestWithContext over a bytes or strings reader. If the context
// is cancelled during a backoff wait the function returns ctx.Err(). After
// exhausting retries the last 429 response is returned so the caller can
// inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		next := req.Clone(ctx)
		if attempt > 0 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("rewinding request body: %w", err)
			}
			next.Body = body
		}

		resp, err := client.Do(next)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		if attempt >= maxRetries {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := retryDelay(resp.Header.Get("Retry-After"), attempt)
		logging.Warn("engine rate limited",
			"url", req.URL.String(),
			"retry_in", backoff.String(),
			"attempt", attempt+1,
			"max_retries", maxRetries,
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// retryDelay honours an integer Retry-After value, capped at MaxRetryAfter,
// and otherwise backs off exponentially from RetryBaseDelay.
func retryDelay(retryAfter string, attempt int) time.Duration {
	if secs, err := strconv.Atoi(retryAfter); err == nil && secs >= 0 {
		if secs >= int(MaxRetryAfter/time.Second) {
			return MaxRetryAfter
		}
		return time.Duration(secs) * time.Second
	}
	return time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
}
