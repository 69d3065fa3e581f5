package snapshot

import (
	"context"
	"fmt"

	"riotapi-schema/fetcher"
)

// HTTPStore reads the prior build from its published URL
type HTTPStore struct {
	fetcher fetcher.Fetcher
	url     string
}

// NewHTTPStore creates an HTTPStore fetching url through f
func NewHTTPStore(f fetcher.Fetcher, url string) *HTTPStore {
	return &HTTPStore{fetcher: f, url: url}
}

// PriorBuild implements reconcile.SnapshotStore
func (s *HTTPStore) PriorBuild(ctx context.Context) (*Snapshot, error) {
	body, err := s.fetcher.Fetch(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prior build: %w", err)
	}
	return Parse(body)
}
