package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// DefaultRunLogRange is where run rows are appended
const DefaultRunLogRange = "Runs!A1"

// SheetsNotifier appends one row per run to a Google Sheets run log
type SheetsNotifier struct {
	service       *sheets.Service
	spreadsheetID string
	writeRange    string
	now           func() time.Time
}

// NewSheetsNotifier creates a run log writer authenticated with a service
// account. Credentials come from credentialsPath or, when empty, from
// GOOGLE_SHEETS_CREDENTIALS.
func NewSheetsNotifier(ctx context.Context, spreadsheetID, credentialsPath string) (*SheetsNotifier, error) {
	var credsJSON []byte
	var err error

	if credentialsPath != "" {
		credsJSON, err = os.ReadFile(credentialsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		}
	} else {
		credsEnv := strings.TrimSpace(os.Getenv("GOOGLE_SHEETS_CREDENTIALS"))
		if credsEnv == "" {
			return nil, fmt.Errorf("credentials not found: GOOGLE_SHEETS_CREDENTIALS environment variable is empty or not set")
		}
		credsJSON = []byte(credsEnv)
	}

	var creds map[string]any
	if err := json.Unmarshal(credsJSON, &creds); err != nil {
		return nil, fmt.Errorf("invalid credentials JSON: %w", err)
	}
	if creds["type"] != "service_account" {
		return nil, fmt.Errorf("credentials must be a service account JSON file (type: service_account), got type: %v", creds["type"])
	}

	return NewSheetsNotifierWithOptions(ctx, spreadsheetID, option.WithCredentialsJSON(credsJSON))
}

// NewSheetsNotifierWithOptions creates a run log writer with explicit client options
func NewSheetsNotifierWithOptions(ctx context.Context, spreadsheetID string, opts ...option.ClientOption) (*SheetsNotifier, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is empty")
	}
	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &SheetsNotifier{
		service:       service,
		spreadsheetID: spreadsheetID,
		writeRange:    DefaultRunLogRange,
		now:           time.Now,
	}, nil
}

// Notify appends the run as a row: time, status, counts, gaps and error
func (n *SheetsNotifier) Notify(ctx context.Context, s Summary) error {
	valueRange := &sheets.ValueRange{Values: [][]any{runRow(n.now(), s)}}

	_, err := n.service.Spreadsheets.Values.Append(n.spreadsheetID, n.writeRange, valueRange).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append run to sheets: %w", err)
	}
	return nil
}

func runRow(at time.Time, s Summary) []any {
	status := "ok"
	errText := ""
	if s.Err != nil {
		status = "failed"
		errText = s.Err.Error()
	}

	gaps := make([]string, 0, len(s.Gaps))
	for _, g := range s.Gaps {
		gaps = append(gaps, g.FullName())
	}

	return []any{
		at.UTC().Format(time.RFC3339),
		status,
		s.Endpoints,
		s.Regions,
		s.Artifacts,
		len(s.Gaps),
		strings.Join(gaps, ", "),
		s.Duration.Round(time.Millisecond).Seconds(),
		errText,
	}
}
