package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"riotapi-schema/reconcile"

	"github.com/stretchr/testify/require"
)

func TestFormatSummary(t *testing.T) {
	text := FormatSummary(Summary{
		Endpoints: 3,
		Regions:   2,
		Artifacts: 8,
		Duration:  1500 * time.Millisecond,
		Gaps:      []reconcile.Gap{{Endpoint: "match", Dto: "InfoDto", Reason: reconcile.GapNotInSnapshot}},
	})

	require.Contains(t, text, "Endpoints: 3\nRegions: 2\nArtifacts: 8\n")
	require.Contains(t, text, "1 unresolved DTOs")
	require.Contains(t, text, "- match.InfoDto (not in snapshot)")
}

func TestFormatSummary_TruncatesGaps(t *testing.T) {
	var gaps []reconcile.Gap
	for i := 0; i < maxListedGaps+5; i++ {
		gaps = append(gaps, reconcile.Gap{Endpoint: "match", Dto: fmt.Sprintf("Dto%d", i)})
	}

	text := FormatSummary(Summary{Gaps: gaps})
	require.Equal(t, maxListedGaps, strings.Count(text, "- match.Dto"))
	require.Contains(t, text, "... and 5 more")
}

func TestFormatSummary_Failure(t *testing.T) {
	text := FormatSummary(Summary{Err: errors.New("failed to collect endpoints")})
	require.Contains(t, text, "build failed")
	require.Contains(t, text, "failed to collect endpoints")
}

// fakeBotAPI answers getMe and records sendMessage calls
type fakeBotAPI struct {
	mu       sync.Mutex
	messages []map[string]string
}

func (f *fakeBotAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		fmt.Fprint(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"schema","username":"schema_bot"}}`)
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		_ = r.ParseForm()
		f.mu.Lock()
		f.messages = append(f.messages, map[string]string{
			"chat_id": r.PostForm.Get("chat_id"),
			"text":    r.PostForm.Get("text"),
		})
		f.mu.Unlock()
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"},"text":"ok"}}`)
	default:
		fmt.Fprint(w, `{"ok":false,"error_code":404,"description":"Not Found"}`)
	}
}

func TestTelegramNotifier_Notify(t *testing.T) {
	fake := &fakeBotAPI{}
	server := httptest.NewServer(fake)
	defer server.Close()

	n, err := NewTelegramNotifierWithEndpoint("token", server.URL+"/bot%s/%s", 42)
	require.NoError(t, err)

	require.NoError(t, n.Notify(context.Background(), Summary{Endpoints: 1, Artifacts: 8}))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	require.Len(t, fake.messages, 1)
	require.Equal(t, "42", fake.messages[0]["chat_id"])
	require.Contains(t, fake.messages[0]["text"], "Endpoints: 1")
}

func TestTelegramNotifier_Validation(t *testing.T) {
	_, err := NewTelegramNotifier("", 42)
	require.Error(t, err)
	_, err = NewTelegramNotifier("token", 0)
	require.Error(t, err)
}

func TestTelegramNotifier_CancelledContext(t *testing.T) {
	server := httptest.NewServer(&fakeBotAPI{})
	defer server.Close()
	n, err := NewTelegramNotifierWithEndpoint("token", server.URL+"/bot%s/%s", 42)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, n.Notify(ctx, Summary{}), context.Canceled)
}

type recordingNotifier struct {
	calls int
	err   error
}

func (r *recordingNotifier) Notify(context.Context, Summary) error {
	r.calls++
	return r.err
}

func TestMulti_DeliversToAll(t *testing.T) {
	failing := &recordingNotifier{err: errors.New("chat not found")}
	ok := &recordingNotifier{}

	err := Multi{failing, ok, Nop{}}.Notify(context.Background(), Summary{})

	require.ErrorContains(t, err, "chat not found")
	require.Equal(t, 1, failing.calls)
	require.Equal(t, 1, ok.calls)
	require.NoError(t, Multi{}.Notify(context.Background(), Summary{}))
}
