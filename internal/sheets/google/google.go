package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"spendlens/internal/budget"
	"spendlens/internal/core"
	ports "spendlens/internal/sheets"
)

// Client appends alert rows to one tab of a spreadsheet and rewrites the
// budget report on another.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	alertsSheet   string
	reportSheet   string
	now           func() time.Time
}

// Ensure interface conformance
var (
	_ ports.AlertNotifier  = (*Client)(nil)
	_ ports.ReportExporter = (*Client)(nil)
)

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID and service account credentials (see newSheetsService).
// Optional sheet names: GOOGLE_ALERTS_SHEET (default "Alerts"),
// GOOGLE_REPORT_SHEET (default "Budget Report").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	return New(ctx, spreadsheetID,
		envOr("GOOGLE_ALERTS_SHEET", "Alerts"),
		envOr("GOOGLE_REPORT_SHEET", "Budget Report"))
}

// New creates a client for spreadsheetID. Without opts the service
// authenticates with a service account; opts replace that entirely.
func New(ctx context.Context, spreadsheetID, alertsSheet, reportSheet string, opts ...goption.ClientOption) (*Client, error) {
	var (
		svc *gsheet.Service
		err error
	)
	if len(opts) == 0 {
		svc, err = newSheetsService(ctx)
	} else {
		svc, err = gsheet.NewService(ctx, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		alertsSheet:   alertsSheet,
		reportSheet:   reportSheet,
		now:           time.Now,
	}, nil
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Uses GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	credentialsJSON, err := serviceAccountCredentials()
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func serviceAccountCredentials() ([]byte, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case serviceAccountJSON != "":
		return []byte(serviceAccountJSON), nil
	case serviceAccountFile != "":
		b, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// NotifyAlert appends one row describing a to the alerts sheet.
func (c *Client) NotifyAlert(ctx context.Context, a budget.Alert) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	rng := a1(c.alertsSheet, "A:L")
	vr := &gsheet.ValueRange{Values: [][]any{alertRow(a)}}

	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append alert %s to %s: %w", a.ID, c.alertsSheet, err)
	}
	return nil
}

// ExportBudgetReport clears the report sheet and writes the overview
// followed by one line per budget.
func (c *Client) ExportBudgetReport(ctx context.Context, overview budget.Overview, budgets []core.Budget) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, a1(c.reportSheet, "A:Z"), &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear report sheet %s: %w", c.reportSheet, err)
	}

	vr := &gsheet.ValueRange{Values: reportRows(overview, budgets, c.now())}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, a1(c.reportSheet, "A1"), vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write report sheet %s: %w", c.reportSheet, err)
	}
	return nil
}
