package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"riotapi-schema/logfields"
	"riotapi-schema/retry"
)

// Fetcher interface defines the contract for fetching implementations
type Fetcher interface {
	// Fetch retrieves the body at url
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FetchError reports a failed retrieval: network failure, timeout or non-2xx status
type FetchError struct {
	URL        string
	StatusCode int // zero when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// checkStatus rejects a document response outside 2xx
func checkStatus(url string, status int) error {
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return &FetchError{URL: url, StatusCode: status, Err: errors.New("unexpected status")}
	}
	return nil
}

// RetryingFetcher wraps a Fetcher with a retry policy
type RetryingFetcher struct {
	next   Fetcher
	policy retry.Policy
	sleep  retry.Sleeper
}

// NewRetryingFetcher creates a RetryingFetcher applying policy to next
func NewRetryingFetcher(next Fetcher, policy retry.Policy) *RetryingFetcher {
	return &RetryingFetcher{
		next:   next,
		policy: policy,
		sleep:  retry.SleepContext,
	}
}

// WithSleeper replaces the backoff sleeper, for deterministic tests
func (rf *RetryingFetcher) WithSleeper(sleep retry.Sleeper) *RetryingFetcher {
	rf.sleep = sleep
	return rf
}

// Fetch implements the Fetcher interface
func (rf *RetryingFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := rf.policy.DoWithSleeper(ctx, rf.sleep, func(attempt int) error {
		var err error
		body, err = rf.next.Fetch(ctx, url)
		if err != nil && attempt <= rf.policy.MaxRetries {
			slog.Warn("Fetch failed, retrying", logfields.URL(url), logfields.Attempt(attempt), logfields.Error(err))
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}
