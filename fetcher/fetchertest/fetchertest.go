// Package fetchertest provides an in-memory Fetcher for tests.
package fetchertest

import (
	"context"
	"errors"
	"sync"

	"riotapi-schema/fetcher"
)

// Site serves fixed bodies by URL and counts requests
type Site struct {
	mu     sync.Mutex
	pages  map[string][]byte
	fail   map[string]int // remaining failures per URL, -1 fails forever
	counts map[string]int
}

// NewSite creates an empty Site
func NewSite() *Site {
	return &Site{
		pages:  make(map[string][]byte),
		fail:   make(map[string]int),
		counts: make(map[string]int),
	}
}

// Page registers body at url
func (s *Site) Page(url, body string) *Site {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[url] = []byte(body)
	return s
}

// FailTimes makes the next n requests to url fail; n < 0 fails forever
func (s *Site) FailTimes(url string, n int) *Site {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[url] = n
	return s
}

// Count returns how many times url was requested
func (s *Site) Count(url string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[url]
}

// Fetch implements fetcher.Fetcher
func (s *Site) Fetch(_ context.Context, url string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[url]++
	if n := s.fail[url]; n != 0 {
		if n > 0 {
			s.fail[url] = n - 1
		}
		return nil, &fetcher.FetchError{URL: url, StatusCode: 503, Err: errors.New("service unavailable")}
	}
	body, ok := s.pages[url]
	if !ok {
		return nil, &fetcher.FetchError{URL: url, StatusCode: 404, Err: errors.New("not found")}
	}
	return body, nil
}
