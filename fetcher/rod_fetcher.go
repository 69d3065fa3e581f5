package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"riotapi-schema/logfields"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// RodFetcher implements the Fetcher interface using rod (headless browser)
type RodFetcher struct {
	browser *rod.Browser
	settle  time.Duration
}

// NewRodFetcher launches a headless browser. userDataDir may be empty.
func NewRodFetcher(userDataDir string) (*RodFetcher, error) {
	if userDataDir != "" {
		if err := os.MkdirAll(userDataDir, 0o755); err != nil {
			slog.Warn("Failed to create browser data directory", logfields.Path(userDataDir), logfields.Error(err))
			userDataDir = ""
		}
	}

	l := launcher.New().
		Headless(true).
		NoSandbox(true).
		Leakless(false).
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("no-first-run").
		Set("no-default-browser-check").
		Set("disable-extensions").
		Set("mute-audio")
	if userDataDir != "" {
		l = l.UserDataDir(userDataDir)
	}

	// Prefer an installed Chrome/Chromium over downloading one
	if bin, found := launcher.LookPath(); found {
		l = l.Bin(bin)
	}

	browserURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(browserURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	return &RodFetcher{
		browser: browser,
		settle:  500 * time.Millisecond,
	}, nil
}

// Close closes the browser
func (rf *RodFetcher) Close() error {
	if rf.browser != nil {
		return rf.browser.Close()
	}
	return nil
}

// Fetch implements the Fetcher interface. JSON and plain-text documents are
// returned as their text content, everything else as rendered HTML.
func (rf *RodFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	page, err := rf.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("failed to create page: %w", err)}
	}
	defer page.Close()
	page = page.Context(ctx)

	var status int
	waitResponse := page.EachEvent(func(e *proto.NetworkResponseReceived) bool {
		if e.Type != proto.NetworkResourceTypeDocument {
			return false
		}
		status = e.Response.Status
		return true
	})

	if err := page.Navigate(url); err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("failed to navigate: %w", err)}
	}
	waitResponse()
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	if err := checkStatus(url, status); err != nil {
		return nil, err
	}
	slog.Debug("Fetched page", logfields.URL(url), logfields.Status(status))

	if err := page.WaitLoad(); err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("failed to load: %w", err)}
	}

	contentType, err := page.Eval(`() => document.contentType`)
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("failed to read content type: %w", err)}
	}
	ct := contentType.Value.Str()
	if strings.Contains(ct, "json") || strings.HasPrefix(ct, "text/plain") {
		text, err := page.Eval(`() => document.body.innerText`)
		if err != nil {
			return nil, &FetchError{URL: url, Err: fmt.Errorf("failed to read body: %w", err)}
		}
		return []byte(text.Value.Str()), nil
	}

	if err := page.WaitStable(rf.settle); err != nil {
		slog.Warn("Page did not stabilize, continuing anyway", logfields.URL(url), logfields.Error(err))
	}

	html, err := page.HTML()
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("failed to get HTML: %w", err)}
	}
	return []byte(html), nil
}
