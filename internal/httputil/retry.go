// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across components.
package httputil

import (
	"context"
	"io"
	"net/http"
	"time"
)

// RetryDelay is the fixed pause between retry attempts. Tests override this
// to avoid real sleeps.
var RetryDelay = 5 * time.Second

const defaultMaxRetries = 3

// retryable reports whether an HTTP status is worth another attempt.
// 429 and all 5xx are transient; other statuses are returned to the caller.
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// DoWithRetry executes an HTTP request and retries transient failures:
// transport errors, HTTP 429, and HTTP 5xx. Attempts are separated by the
// fixed RetryDelay. When maxRetries is 0 the default (3) is used.
//
// The response body is drained and closed before each retry. If the context
// is cancelled during a wait the function returns ctx.Err(). After
// exhausting retries the last response (or transport error) is returned so
// the caller can report it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err == nil && !retryable(resp.StatusCode) {
			return resp, nil
		}

		if err != nil {
			lastErr = err
		} else {
			lastErr = nil
		}

		// Exhausted retries: surface the last outcome as-is.
		if attempt >= maxRetries {
			if lastErr != nil {
				return nil, lastErr
			}
			return resp, nil
		}

		if resp != nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(RetryDelay):
		}
	}
}
