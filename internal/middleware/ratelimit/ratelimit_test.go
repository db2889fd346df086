package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestLimiter(t *testing.T, perMinute int, now *time.Time) *Limiter {
	t.Helper()
	rl := NewLimiter(Config{RequestsPerMinute: perMinute, CleanupInterval: time.Hour})
	rl.now = func() time.Time { return *now }
	t.Cleanup(rl.Stop)
	return rl
}

func TestAllowWindow(t *testing.T) {
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	rl := newTestLimiter(t, 2, &now)

	for i, want := range []bool{true, true, false} {
		if got := rl.Allow("10.0.0.1"); got != want {
			t.Errorf("request %d: Allow = %v, want %v", i+1, got, want)
		}
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("other clients must have their own budget")
	}

	now = now.Add(time.Minute)
	if !rl.Allow("10.0.0.1") {
		t.Error("a new window should reset the count")
	}
}

func TestCleanupStaleEntries(t *testing.T) {
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	rl := newTestLimiter(t, 5, &now)

	rl.Allow("a")
	now = now.Add(8 * time.Minute)
	rl.Allow("b")
	now = now.Add(3 * time.Minute)

	if removed := rl.cleanupStaleEntries(); removed != 1 {
		t.Errorf("removed %d entries, want 1", removed)
	}
	if rl.ActiveClients() != 1 {
		t.Errorf("ActiveClients = %d, want 1", rl.ActiveClients())
	}
}

func TestMiddlewareOnlyLimitsWrites(t *testing.T) {
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	rl := newTestLimiter(t, 1, &now)
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	do := func(method string) int {
		req := httptest.NewRequest(method, "/api/transactions", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	if code := do(http.MethodPost); code != http.StatusNoContent {
		t.Fatalf("first POST = %d", code)
	}
	if code := do(http.MethodPost); code != http.StatusTooManyRequests {
		t.Errorf("second POST = %d, want 429", code)
	}
	for i := 0; i < 3; i++ {
		if code := do(http.MethodGet); code != http.StatusNoContent {
			t.Errorf("GET = %d, reads must not be limited", code)
		}
	}
}

func TestClientKeyStripsPort(t *testing.T) {
	if got := clientKey("192.0.2.1:1234"); got != "192.0.2.1" {
		t.Errorf("clientKey = %q", got)
	}
	if got := clientKey("192.0.2.1"); got != "192.0.2.1" {
		t.Errorf("clientKey = %q", got)
	}
}
