// Package collector discovers and parses the endpoint and region pages of the
// developer portal.
package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"riotapi-schema/fetcher"
	"riotapi-schema/logfields"
	"riotapi-schema/models"
	"riotapi-schema/parser"
)

// EndpointCollector discovers endpoints from the API methods index and
// parses each endpoint's detail page
type EndpointCollector struct {
	fetcher fetcher.Fetcher
	baseURL string
	index   *parser.IndexParser
	details *parser.EndpointParser
}

// NewEndpointCollector creates a new EndpointCollector for the portal at baseURL
func NewEndpointCollector(f fetcher.Fetcher, baseURL string) *EndpointCollector {
	return &EndpointCollector{
		fetcher: f,
		baseURL: normalizeBaseURL(baseURL),
		index:   parser.NewIndexParser(),
		details: parser.NewEndpointParser(),
	}
}

// Collect fetches the index and every endpoint detail page concurrently.
// Any single failure fails the whole collection; the returned order is
// completion order.
func (c *EndpointCollector) Collect(ctx context.Context) ([]*models.Endpoint, error) {
	indexURL := c.baseURL + "api-methods/"
	body, err := c.fetcher.Fetch(ctx, indexURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch endpoint index: %w", err)
	}
	markers, err := c.index.ParseIndex(string(body))
	if err != nil {
		return nil, err
	}
	slog.Info("Discovered endpoints", logfields.Count(len(markers)))

	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		endpoints = make([]*models.Endpoint, 0, len(markers))
		errs      []error
	)
	for _, marker := range markers {
		wg.Add(1)
		go func(marker parser.EndpointMarker) {
			defer wg.Done()
			endpoint, err := c.collectOne(ctx, marker)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.Error("Failed to collect endpoint", logfields.Endpoint(marker.Name), logfields.Error(err))
				errs = append(errs, err)
				return
			}
			endpoints = append(endpoints, endpoint)
		}(marker)
	}
	wg.Wait()

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return endpoints, nil
}

// collectOne fetches and parses a single endpoint detail page
func (c *EndpointCollector) collectOne(ctx context.Context, marker parser.EndpointMarker) (*models.Endpoint, error) {
	page := "api-details/" + marker.Name
	body, err := c.fetcher.Fetch(ctx, c.baseURL+page)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", page, err)
	}
	html, err := parser.ParseDetailEnvelope(page, body)
	if err != nil {
		return nil, err
	}
	endpoint, err := c.details.ParseEndpoint(marker, html)
	if err != nil {
		return nil, err
	}
	slog.Debug("Parsed endpoint",
		logfields.Endpoint(endpoint.Name),
		slog.Int("operations", len(endpoint.Operations)),
		slog.Int("dtos", len(endpoint.Dtos)))
	return endpoint, nil
}

func normalizeBaseURL(baseURL string) string {
	return strings.TrimSuffix(baseURL, "/") + "/"
}
