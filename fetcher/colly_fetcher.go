package fetcher

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"riotapi-schema/logfields"

	"github.com/gocolly/colly/v2"
)

const defaultUserAgent = "riotapi-schema/1.0 (+https://github.com/MingweiSamuel/riotapi-schema)"

// CollyFetcher implements the Fetcher interface using colly
type CollyFetcher struct {
	collector *colly.Collector
}

// NewCollyFetcher creates a new CollyFetcher instance.
// parallelism bounds concurrent requests per domain; zero means unbounded.
func NewCollyFetcher(userAgent string, parallelism int, timeout time.Duration) *CollyFetcher {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.AllowURLRevisit(),
		colly.MaxBodySize(0),
	)
	if timeout > 0 {
		c.SetRequestTimeout(timeout)
	}
	if parallelism > 0 {
		if err := c.Limit(&colly.LimitRule{
			DomainGlob:  "*",
			Parallelism: parallelism,
		}); err != nil {
			slog.Warn("Failed to set colly limit rule", logfields.Error(err))
		}
	}

	return &CollyFetcher{
		collector: c,
	}
}

// Fetch implements the Fetcher interface
func (cf *CollyFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	// Callbacks are per request, so each fetch runs on its own clone
	c := cf.collector.Clone()
	c.Context = ctx

	var body []byte
	var status int
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
		status = r.StatusCode
	})
	c.OnError(func(r *colly.Response, err error) {
		status = r.StatusCode
	})

	if err := c.Visit(url); err != nil {
		return nil, &FetchError{URL: url, StatusCode: status, Err: err}
	}
	if body == nil {
		return nil, &FetchError{URL: url, StatusCode: status, Err: errors.New("empty response")}
	}

	slog.Debug("Fetched page", logfields.URL(url), logfields.Status(status))
	return body, nil
}
