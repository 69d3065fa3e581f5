package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"Endpoint", KeyEndpoint, "match-v5", Endpoint("match-v5")},
		{"Dto", KeyDto, "MatchDto", Dto("MatchDto")},
		{"Region", KeyRegion, "NA1", Region("NA1")},
		{"URL", KeyURL, "https://example", URL("https://example")},
		{"Path", KeyPath, "/tmp/out", Path("/tmp/out")},
		{"Dialect", KeyDialect, "openapi-3.0.0", Dialect("openapi-3.0.0")},
		{"Stage", KeyStage, "emit", Stage("emit")},
		{"Ref", KeyRef, "origin/gh-pages", Ref("origin/gh-pages")},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if got := tc.attr.Value.String(); got != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %s", tc.name, tc.attrVal, got)
		}
	}
}

func TestErrorHelper(t *testing.T) {
	if attr := Error(nil); attr.Value.String() != "" {
		t.Fatalf("expected empty error string, got %s", attr.Value.String())
	}
	if attr := Error(errors.New("boom")); attr.Value.String() != "boom" {
		t.Fatalf("expected 'boom', got %s", attr.Value.String())
	}
}
