// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// # Shared Provider Plumbing

// Per-call discipline shared by every provider client.
const (
	// requestTimeout bounds one upstream HTTP call.
	requestTimeout = 10 * time.Second

	// maxAttempts caps retries on transient failures.
	maxAttempts = 3

	// baseBackoff is the first retry delay; it doubles per attempt.
	baseBackoff = 500 * time.Millisecond
)

// HTTPJSON performs a rate-limited GET with bounded retry and decodes the
// JSON body into target.
//
// Retries fire only on transport errors, 429, and 5xx — responses where a
// second attempt can plausibly succeed. 4xx answers are terminal.
func HTTPJSON(ctx context.Context, client *http.Client, limiter *rate.Limiter, url string, target any) error {
	var lastErr error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := baseBackoff << (attempt - 1)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		// The limiter gates every attempt, retries included.
		if err := limiter.Wait(ctx); err != nil {
			return err
		}

		callCtx, cancel := context.WithTimeout(ctx, requestTimeout)
		err := doJSON(callCtx, client, url, target)
		cancel()

		if err == nil {
			return nil
		}
		lastErr = err

		var retryable *retryableError
		if !errors.As(err, &retryable) {
			return err
		}
	}

	return fmt.Errorf("metadata: giving up after %d attempts: %w", maxAttempts, lastErr)
}

// doJSON is a single GET + decode.
func doJSON(ctx context.Context, client *http.Client, url string, target any) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	request.Header.Set("Accept", "application/json")

	response, err := client.Do(request)
	if err != nil {
		// Transport-level failures are worth retrying.
		return &retryableError{cause: err}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, response.Body)
		_ = response.Body.Close()
	}()

	switch {
	case response.StatusCode == http.StatusOK:
		return json.NewDecoder(response.Body).Decode(target)
	case response.StatusCode == http.StatusTooManyRequests || response.StatusCode >= 500:
		return &retryableError{cause: fmt.Errorf("metadata: upstream status %d", response.StatusCode)}
	default:
		return fmt.Errorf("metadata: upstream status %d", response.StatusCode)
	}
}

// retryableError marks failures the caller may retry.
type retryableError struct {
	cause error
}

func (e *retryableError) Error() string { return e.cause.Error() }
func (e *retryableError) Unwrap() error { return e.cause }
