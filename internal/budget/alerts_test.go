package budget

import (
	"slices"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"spendlens/internal/core"
)

var now = time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)

func bud(id, category, allocated, spent string) core.Budget {
	return core.Budget{
		ID:        id,
		Category:  category,
		Allocated: decimal.RequireFromString(allocated),
		Spent:     decimal.RequireFromString(spent),
		Period:    core.Monthly,
	}
}

func sampleBudgets() []core.Budget {
	return []core.Budget{
		bud("1", "Housing", "2000", "1850"),
		bud("2", "Food & Dining", "600", "425"),
		bud("3", "Transportation", "400", "380"),
		bud("4", "Entertainment", "300", "150"),
		bud("5", "Shopping", "250", "320"),
		bud("6", "Healthcare", "200", "75"),
	}
}

func alertIDs(alerts []Alert) []string {
	out := make([]string, len(alerts))
	for i, a := range alerts {
		out[i] = a.ID
	}
	return out
}

func TestTierThresholds(t *testing.T) {
	cases := []struct {
		spent string
		tier  Tier
		ok    bool
	}{
		{"74.9", "", false},
		{"75", TierCaution, true},
		{"89.99", TierCaution, true},
		{"90", TierWarning, true},
		{"99", TierWarning, true},
		{"100", TierExceeded, true},
		{"250", TierExceeded, true},
	}
	for _, tc := range cases {
		t.Run(tc.spent, func(t *testing.T) {
			alerts := ComputeAlerts([]core.Budget{bud("x", "Test", "100", tc.spent)}, now)
			if !tc.ok {
				if len(alerts) != 0 {
					t.Fatalf("expected no alert, got %v", alertIDs(alerts))
				}
				return
			}
			if len(alerts) != 1 || alerts[0].Tier != tc.tier {
				t.Fatalf("expected one %s alert, got %+v", tc.tier, alerts)
			}
		})
	}
}

func TestZeroAllocationNeverAlerts(t *testing.T) {
	for _, spent := range []string{"0", "1", "100000"} {
		if alerts := ComputeAlerts([]core.Budget{bud("z", "Misc", "0", spent)}, now); len(alerts) != 0 {
			t.Errorf("spent %s: expected no alert, got %v", spent, alertIDs(alerts))
		}
	}
}

func TestComputeAlertsOrdersBySeverity(t *testing.T) {
	alerts := ComputeAlerts(sampleBudgets(), now)
	want := []string{"exceeded-5", "warning-1", "warning-3"}
	if got := alertIDs(alerts); !slices.Equal(got, want) {
		t.Fatalf("alert ids = %v, want %v", got, want)
	}
	for _, a := range alerts {
		if !a.ComputedAt.Equal(now) {
			t.Errorf("%s computed at %v, want %v", a.ID, a.ComputedAt, now)
		}
	}
}

func TestComputeAlertsStableWithinSeverity(t *testing.T) {
	budgets := []core.Budget{
		bud("a", "A", "100", "80"),
		bud("b", "B", "100", "120"),
		bud("c", "C", "100", "76"),
		bud("d", "D", "100", "100"),
	}
	want := []string{"exceeded-b", "exceeded-d", "caution-a", "caution-c"}
	if got := alertIDs(ComputeAlerts(budgets, now)); !slices.Equal(got, want) {
		t.Fatalf("alert ids = %v, want %v", got, want)
	}
}

func TestAlertIdentifierIsStable(t *testing.T) {
	budgets := []core.Budget{bud("42", "Groceries", "200", "200")}
	first := ComputeAlerts(budgets, now)
	second := ComputeAlerts(budgets, now.Add(time.Hour))
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected exactly one alert per call, got %d and %d", len(first), len(second))
	}
	if first[0].Tier != TierExceeded || first[0].ID != "exceeded-42" || second[0].ID != first[0].ID {
		t.Fatalf("unstable alert: %+v vs %+v", first[0], second[0])
	}
}

func TestAlertText(t *testing.T) {
	cases := []struct {
		b          core.Budget
		title      string
		message    string
		suggestion string
		severity   Severity
	}{
		{
			bud("5", "Shopping", "250", "320"),
			"Shopping Budget Exceeded",
			"You've spent 320.00 of your 250.00 budget",
			"Consider reducing spending in this category or increasing the budget limit",
			SeverityHigh,
		},
		{
			bud("1", "Housing", "2000", "1850"),
			"Housing Budget Almost Reached",
			"You've used 92.5% of your budget with 150.00 remaining",
			"Monitor spending closely to avoid exceeding your budget",
			SeverityMedium,
		},
		{
			bud("7", "Travel", "100", "80"),
			"Travel Budget 75% Used",
			"You have 20.00 remaining in this category",
			"Good progress! Keep tracking to stay within budget",
			SeverityLow,
		},
	}
	for _, tc := range cases {
		t.Run(tc.title, func(t *testing.T) {
			alerts := ComputeAlerts([]core.Budget{tc.b}, now)
			if len(alerts) != 1 {
				t.Fatalf("expected one alert, got %d", len(alerts))
			}
			a := alerts[0]
			if a.Title != tc.title {
				t.Errorf("title = %q, want %q", a.Title, tc.title)
			}
			if a.Message != tc.message {
				t.Errorf("message = %q, want %q", a.Message, tc.message)
			}
			if a.Suggestion != tc.suggestion {
				t.Errorf("suggestion = %q, want %q", a.Suggestion, tc.suggestion)
			}
			if a.Severity != tc.severity {
				t.Errorf("severity = %q, want %q", a.Severity, tc.severity)
			}
			if a.BudgetID != tc.b.ID || a.Category != tc.b.Category {
				t.Errorf("alert not linked to budget: %+v", a)
			}
		})
	}
}

func TestComputeAlertsEmpty(t *testing.T) {
	if alerts := ComputeAlerts(nil, now); len(alerts) != 0 {
		t.Fatalf("expected no alerts, got %d", len(alerts))
	}
}
