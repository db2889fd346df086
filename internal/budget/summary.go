package budget

import (
	"github.com/shopspring/decimal"

	"spendlens/internal/core"
)

// Overview aggregates a set of budgets.
type Overview struct {
	TotalAllocated     decimal.Decimal   `json:"totalAllocated"`
	TotalSpent         decimal.Decimal   `json:"totalSpent"`
	TotalRemaining     decimal.Decimal   `json:"totalRemaining"`
	Utilization        decimal.Decimal   `json:"utilization"`
	AverageUtilization decimal.Decimal   `json:"averageUtilization"`
	BudgetCount        int               `json:"budgetCount"`
	OverBudgetCount    int               `json:"overBudgetCount"`
	Status             core.BudgetStatus `json:"status"`
}

// Summarize totals budgets. Utilization is total spent over total allocated;
// AverageUtilization is the mean of the per-budget percentages.
func Summarize(budgets []core.Budget) Overview {
	o := Overview{
		TotalAllocated:     decimal.Zero,
		TotalSpent:         decimal.Zero,
		AverageUtilization: decimal.Zero,
		BudgetCount:        len(budgets),
	}
	sumUtil := decimal.Zero
	for _, b := range budgets {
		o.TotalAllocated = o.TotalAllocated.Add(b.Allocated)
		o.TotalSpent = o.TotalSpent.Add(b.Spent)
		sumUtil = sumUtil.Add(b.Utilization())
		if b.Spent.GreaterThan(b.Allocated) {
			o.OverBudgetCount++
		}
	}
	o.TotalRemaining = o.TotalAllocated.Sub(o.TotalSpent)

	total := core.Budget{Allocated: o.TotalAllocated, Spent: o.TotalSpent}
	o.Utilization = total.Utilization()
	o.Status = total.Status()
	if len(budgets) > 0 {
		o.AverageUtilization = sumUtil.Div(decimal.NewFromInt(int64(len(budgets))))
	}
	return o
}
