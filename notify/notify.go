// Package notify reports finished generation runs.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"riotapi-schema/reconcile"
)

// maxListedGaps bounds the gap lines included in one message
const maxListedGaps = 20

// Summary describes one generation run
type Summary struct {
	Endpoints int
	Regions   int
	Artifacts int
	Gaps      []reconcile.Gap
	Duration  time.Duration
	Err       error // set when the run failed
}

// Notifier delivers a run summary
type Notifier interface {
	Notify(ctx context.Context, s Summary) error
}

// Nop implements the Notifier interface and discards summaries
type Nop struct{}

func (Nop) Notify(context.Context, Summary) error { return nil }

// Multi implements the Notifier interface by delivering to every notifier;
// one failure does not prevent the others
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, s Summary) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FormatSummary renders a summary as a plain-text message
func FormatSummary(s Summary) string {
	var b strings.Builder
	if s.Err != nil {
		fmt.Fprintf(&b, "❌ Riot API schema build failed after %s\n%v", s.Duration.Round(time.Second), s.Err)
		return b.String()
	}

	fmt.Fprintf(&b, "✅ Riot API schema built in %s\n", s.Duration.Round(time.Second))
	fmt.Fprintf(&b, "Endpoints: %d\nRegions: %d\nArtifacts: %d\n", s.Endpoints, s.Regions, s.Artifacts)
	if len(s.Gaps) == 0 {
		return b.String()
	}

	fmt.Fprintf(&b, "\n⚠️ %d unresolved DTOs:\n", len(s.Gaps))
	for i, gap := range s.Gaps {
		if i == maxListedGaps {
			fmt.Fprintf(&b, "... and %d more\n", len(s.Gaps)-maxListedGaps)
			break
		}
		fmt.Fprintf(&b, "- %s (%s)\n", gap.FullName(), gap.Reason)
	}
	return b.String()
}
