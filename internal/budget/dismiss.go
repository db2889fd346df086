package budget

import "spendlens/internal/core"

// DismissedSet holds suppressed alert identifiers. The zero value and nil
// are both empty sets.
//
// Suppression is per identifier, not per condition. Dismissing
// "warning-7" hides that alert for as long as budget 7 stays in the warning
// tier; once it crosses into another tier the new identifier ("exceeded-7")
// is shown, and if it later drops back to warning the old dismissal applies
// again.
type DismissedSet map[string]struct{}

func NewDismissedSet(ids ...string) DismissedSet {
	s := make(DismissedSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s DismissedSet) Add(id string) {
	s[id] = struct{}{}
}

func (s DismissedSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s DismissedSet) Len() int { return len(s) }

// IsDismissed reports whether id is in set.
func IsDismissed(id string, set DismissedSet) bool {
	return set.Has(id)
}

// Active drops the dismissed alerts, preserving order.
func Active(alerts []Alert, set DismissedSet) []Alert {
	out := make([]Alert, 0, len(alerts))
	for _, a := range alerts {
		if !IsDismissed(a.ID, set) {
			out = append(out, a)
		}
	}
	return out
}

// VisibleBudgets returns the budgets whose current alert has not been
// dismissed. Budgets that raise no alert are always visible.
func VisibleBudgets(budgets []core.Budget, set DismissedSet) []core.Budget {
	out := make([]core.Budget, 0, len(budgets))
	for _, b := range budgets {
		id := CurrentAlertID(b)
		if id == "" || !IsDismissed(id, set) {
			out = append(out, b)
		}
	}
	return out
}

// NewlyRaised returns the alerts in after whose identifier is absent from before.
func NewlyRaised(before, after []Alert) []Alert {
	seen := make(map[string]struct{}, len(before))
	for _, a := range before {
		seen[a.ID] = struct{}{}
	}
	var out []Alert
	for _, a := range after {
		if _, ok := seen[a.ID]; !ok {
			out = append(out, a)
		}
	}
	return out
}
