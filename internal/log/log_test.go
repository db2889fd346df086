package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"

	"spendlens/internal/budget"
)

func newBufferLogger(buf *bytes.Buffer) *Logger {
	return New(Config{Level: slog.LevelDebug, Component: ComponentApp, Format: "json", Output: buf})
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("decode log line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestLoggerStampsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf).WithComponent(ComponentLedger)
	l.Info("hello", "k", "v")

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d", len(lines))
	}
	if lines[0][FieldComponent] != ComponentLedger || lines[0]["k"] != "v" {
		t.Fatalf("unexpected record %v", lines[0])
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRequestLoggerLevels(t *testing.T) {
	cases := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "INFO"},
		{http.StatusBadRequest, "WARN"},
		{http.StatusInternalServerError, "ERROR"},
	}
	for _, tc := range cases {
		var buf bytes.Buffer
		h := middleware.RequestID(RequestLogger(newBufferLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if FromContext(r.Context()).Component() != ComponentApp {
				t.Errorf("handler did not receive request logger")
			}
			w.WriteHeader(tc.status)
		})))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/transactions?sort=date-desc", nil))

		lines := decodeLines(t, &buf)
		if len(lines) != 1 {
			t.Fatalf("status %d: expected one log line, got %d", tc.status, len(lines))
		}
		got := lines[0]
		if got["level"] != tc.level {
			t.Errorf("status %d: level = %v, want %s", tc.status, got["level"], tc.level)
		}
		if got[FieldPath] != "/api/transactions" || got[FieldQuery] != "sort=date-desc" {
			t.Errorf("unexpected request fields %v", got)
		}
		if got[FieldRequestID] == "" || got[FieldRequestID] == nil {
			t.Errorf("missing request id in %v", got)
		}
	}
}

func TestLogAlertRaised(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(newBufferLogger(&buf).WithComponent(ComponentWorker))
	sl.LogAlertRaised(context.Background(), budget.Alert{
		ID:          "exceeded-5",
		Tier:        budget.TierExceeded,
		BudgetID:    "5",
		Category:    "Shopping",
		Utilization: decimal.NewFromInt(128),
		Title:       "Shopping Budget Exceeded",
	})
	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d", len(lines))
	}
	got := lines[0]
	if got["level"] != "WARN" || got[FieldAlertID] != "exceeded-5" || got[FieldUtilization] != "128.0" {
		t.Fatalf("unexpected record %v", got)
	}
}

func TestFromContextFallsBack(t *testing.T) {
	if l := FromContext(context.Background()); l == nil || l.Component() != "unknown" {
		t.Fatalf("expected default logger")
	}
}
