package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"spendlens/internal/core"
	"spendlens/internal/query"
)

func init() {
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(categoriesCmd)

	f := queryCmd.Flags()
	f.StringP("search", "q", "", "Case-insensitive text to find in description, category or notes")
	f.StringP("category", "c", "", `Exact category, or "all"`)
	f.StringP("type", "t", "", `expense, income or "all"`)
	f.StringP("range", "r", "", "all, today, week, month, quarter, year or custom")
	f.String("start", "", "Custom range start (YYYY-MM-DD)")
	f.String("end", "", "Custom range end, inclusive (YYYY-MM-DD)")
	f.String("min", "", "Minimum amount")
	f.String("max", "", "Maximum amount")
	f.StringP("sort", "s", "", "date-desc, date-asc, amount-desc, amount-asc, category or category-asc")
	f.StringP("group", "g", "", "date, category or none")
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Filter, sort and group transactions",
	Args:  cobra.NoArgs,
	RunE:  runQuery,
}

func runQuery(cmd *cobra.Command, _ []string) error {
	f := cmd.Flags()
	str := func(name string) string {
		v, _ := f.GetString(name)
		return v
	}

	spec := query.FilterSpec{
		Search:      str("search"),
		Category:    str("category"),
		Kind:        str("type"),
		TimeRange:   query.TimeRange(str("range")),
		CustomStart: str("start"),
		CustomEnd:   str("end"),
		Min:         bound(str("min")),
		Max:         bound(str("max")),
		SortBy:      query.SortKey(str("sort")),
	}
	view, err := ledger.Query(cmd.Context(), spec, str("group"))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, view)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, b := range view.Buckets {
		fmt.Fprintf(tw, "%s\n", b.Label)
		for _, t := range b.Records {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n", t.Date, t.Kind, signed(t), t.Category, t.Description)
		}
	}
	fmt.Fprintf(tw, "\n%d transactions\texpense %s\tincome %s\tnet %s\n",
		view.Totals.Count,
		view.Totals.Expense.StringFixed(2),
		view.Totals.Income.StringFixed(2),
		view.Totals.Net.StringFixed(2))
	return tw.Flush()
}

// bound ignores values that are not non-negative decimals.
func bound(s string) decimal.NullDecimal {
	d, err := core.ParseBound(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

func signed(t core.Transaction) string {
	if t.Kind == core.Expense {
		return "-" + t.Amount.StringFixed(2)
	}
	return "+" + t.Amount.StringFixed(2)
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the suggested transaction and budget categories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cat := ledger.Categories()
		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, cat)
		}
		fmt.Fprintln(out, "Transaction categories:")
		for _, c := range cat.Transactions {
			fmt.Fprintf(out, "  %s\n", c)
		}
		fmt.Fprintln(out, "Budget categories:")
		for _, c := range cat.Budgets {
			fmt.Fprintf(out, "  %s\n", c)
		}
		return nil
	},
}
