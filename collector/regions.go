package collector

import (
	"context"
	"fmt"
	"log/slog"

	"riotapi-schema/fetcher"
	"riotapi-schema/logfields"
	"riotapi-schema/models"
	"riotapi-schema/parser"
)

// RegionCollector fetches the regional endpoints table
type RegionCollector struct {
	fetcher fetcher.Fetcher
	baseURL string
	parser  *parser.RegionParser
}

// NewRegionCollector creates a new RegionCollector for the portal at baseURL
func NewRegionCollector(f fetcher.Fetcher, baseURL string) *RegionCollector {
	return &RegionCollector{
		fetcher: f,
		baseURL: normalizeBaseURL(baseURL),
		parser:  parser.NewRegionParser(),
	}
}

// Collect fetches and parses the regional endpoints page
func (c *RegionCollector) Collect(ctx context.Context) ([]models.Region, error) {
	body, err := c.fetcher.Fetch(ctx, c.baseURL+"regional-endpoints.html")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch regional endpoints: %w", err)
	}
	regions, err := c.parser.ParseRegions(string(body))
	if err != nil {
		return nil, err
	}
	slog.Info("Collected regions", logfields.Count(len(regions)))
	return regions, nil
}
