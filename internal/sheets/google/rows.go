package google

import (
	"strconv"
	"strings"
	"time"

	"spendlens/internal/budget"
	"spendlens/internal/core"
)

// sheetTime is a layout USER_ENTERED parses as a date-time.
const sheetTime = "2006-01-02 15:04:05"

var budgetHeader = []any{"Category", "Period", "Allocated", "Spent", "Remaining", "Utilization %", "Status"}

// a1 builds an A1 range, quoting the sheet name.
func a1(sheet, cells string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'!" + cells
}

func alertRow(a budget.Alert) []any {
	return []any{
		a.ComputedAt.Format(sheetTime),
		a.ID,
		string(a.Tier),
		string(a.Severity),
		a.Category,
		a.Utilization.StringFixed(1),
		a.Spent.StringFixed(2),
		a.Allocated.StringFixed(2),
		a.Remaining.StringFixed(2),
		a.Title,
		a.Message,
		a.Suggestion,
	}
}

func reportRows(o budget.Overview, budgets []core.Budget, generatedAt time.Time) [][]any {
	rows := [][]any{
		{"Budget Report", generatedAt.Format(sheetTime)},
		{},
		{"Total Allocated", o.TotalAllocated.StringFixed(2)},
		{"Total Spent", o.TotalSpent.StringFixed(2)},
		{"Total Remaining", o.TotalRemaining.StringFixed(2)},
		{"Utilization %", o.Utilization.StringFixed(1)},
		{"Budgets", strconv.Itoa(o.BudgetCount)},
		{"Over Budget", strconv.Itoa(o.OverBudgetCount)},
		{"Status", string(o.Status)},
		{},
		budgetHeader,
	}
	for _, b := range budgets {
		rows = append(rows, []any{
			b.Category,
			string(b.Period),
			b.Allocated.StringFixed(2),
			b.Spent.StringFixed(2),
			b.Remaining().StringFixed(2),
			b.Utilization().StringFixed(1),
			string(b.Status()),
		})
	}
	return rows
}
