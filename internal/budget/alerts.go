// Package budget derives alerts, overviews and adjustments from budgets.
//
// Like the query package it holds no state: dismissal is a set owned by the
// caller and passed in explicitly.
package budget

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"spendlens/internal/core"
)

// Tier is the alert level reached by a budget.
type Tier string

const (
	TierExceeded Tier = "exceeded"
	TierWarning  Tier = "warning"
	TierCaution  Tier = "caution"
)

type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

var (
	exceededAt = decimal.NewFromInt(100)
	warningAt  = decimal.NewFromInt(90)
	cautionAt  = decimal.NewFromInt(75)
)

// Alert is derived from a budget's current numbers. ID depends only on the
// tier and the budget identifier.
type Alert struct {
	ID          string          `json:"id"`
	Tier        Tier            `json:"type"`
	Severity    Severity        `json:"severity"`
	BudgetID    string          `json:"budgetId"`
	Category    string          `json:"category"`
	Utilization decimal.Decimal `json:"utilization"`
	Spent       decimal.Decimal `json:"spent"`
	Allocated   decimal.Decimal `json:"allocated"`
	Remaining   decimal.Decimal `json:"remaining"`
	Title       string          `json:"title"`
	Message     string          `json:"message"`
	Suggestion  string          `json:"suggestion"`
	ComputedAt  time.Time       `json:"computedAt"`
}

// TierFor maps a utilization percentage to its tier, highest first.
// ok is false below the caution threshold.
func TierFor(utilization decimal.Decimal) (tier Tier, ok bool) {
	switch {
	case utilization.GreaterThanOrEqual(exceededAt):
		return TierExceeded, true
	case utilization.GreaterThanOrEqual(warningAt):
		return TierWarning, true
	case utilization.GreaterThanOrEqual(cautionAt):
		return TierCaution, true
	default:
		return "", false
	}
}

func (t Tier) Severity() Severity {
	switch t {
	case TierExceeded:
		return SeverityHigh
	case TierWarning:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Rank orders severities; higher is more severe.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// AlertID composes the stable identifier for a tier on a budget.
func AlertID(tier Tier, budgetID string) string {
	return string(tier) + "-" + budgetID
}

// CurrentAlertID returns the identifier of the alert b raises right now, or
// "" when it raises none.
func CurrentAlertID(b core.Budget) string {
	tier, ok := TierFor(b.Utilization())
	if !ok {
		return ""
	}
	return AlertID(tier, b.ID)
}

// ComputeAlerts derives at most one alert per budget and orders them by
// severity, keeping input order among equals. A budget with nothing
// allocated never alerts.
func ComputeAlerts(budgets []core.Budget, now time.Time) []Alert {
	alerts := make([]Alert, 0, len(budgets))
	for _, b := range budgets {
		if a, ok := alertFor(b, now); ok {
			alerts = append(alerts, a)
		}
	}
	slices.SortStableFunc(alerts, func(a, b Alert) int {
		return b.Severity.Rank() - a.Severity.Rank()
	})
	return alerts
}

func alertFor(b core.Budget, now time.Time) (Alert, bool) {
	util := b.Utilization()
	tier, ok := TierFor(util)
	if !ok {
		return Alert{}, false
	}
	remaining := b.Remaining()

	a := Alert{
		ID:          AlertID(tier, b.ID),
		Tier:        tier,
		Severity:    tier.Severity(),
		BudgetID:    b.ID,
		Category:    b.Category,
		Utilization: util,
		Spent:       b.Spent,
		Allocated:   b.Allocated,
		Remaining:   remaining,
		ComputedAt:  now,
	}
	switch tier {
	case TierExceeded:
		a.Title = fmt.Sprintf("%s Budget Exceeded", b.Category)
		a.Message = fmt.Sprintf("You've spent %s of your %s budget", money(b.Spent), money(b.Allocated))
		a.Suggestion = "Consider reducing spending in this category or increasing the budget limit"
	case TierWarning:
		a.Title = fmt.Sprintf("%s Budget Almost Reached", b.Category)
		a.Message = fmt.Sprintf("You've used %s%% of your budget with %s remaining", util.StringFixed(1), money(remaining))
		a.Suggestion = "Monitor spending closely to avoid exceeding your budget"
	case TierCaution:
		a.Title = fmt.Sprintf("%s Budget 75%% Used", b.Category)
		a.Message = fmt.Sprintf("You have %s remaining in this category", money(remaining))
		a.Suggestion = "Good progress! Keep tracking to stay within budget"
	}
	return a, true
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
