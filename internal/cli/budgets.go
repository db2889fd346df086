package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"spendlens/internal/budget"
	"spendlens/internal/core"
)

func init() {
	rootCmd.AddCommand(budgetsCmd)
	rootCmd.AddCommand(alertsCmd)
	rootCmd.AddCommand(dismissCmd)
	rootCmd.AddCommand(adjustCmd)
	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(applyTemplateCmd)
	rootCmd.AddCommand(exportCmd)

	budgetsCmd.Flags().BoolP("all", "a", false, "Include budgets whose alert was dismissed")

	adjustCmd.Flags().StringP("mode", "m", "percentage", "percentage or fixedAmount")
	adjustCmd.Flags().StringP("value", "v", "", "Signed change, e.g. 10 or -5.50")
	_ = adjustCmd.MarkFlagRequired("value")

	applyTemplateCmd.Flags().StringP("period", "p", "monthly", "weekly, monthly or yearly")
}

var budgetsCmd = &cobra.Command{
	Use:   "budgets",
	Short: "List budgets with an overview",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		all, _ := cmd.Flags().GetBool("all")
		view, err := ledger.Budgets(cmd.Context(), all)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, view)
		}
		if err := writeBudgets(out, view.Budgets); err != nil {
			return err
		}
		o := view.Overview
		fmt.Fprintf(out, "\nallocated %s  spent %s  remaining %s  utilization %s%%  status %s\n",
			o.TotalAllocated.StringFixed(2),
			o.TotalSpent.StringFixed(2),
			o.TotalRemaining.StringFixed(2),
			o.Utilization.StringFixed(1),
			o.Status)
		return nil
	},
}

func writeBudgets(w io.Writer, budgets []core.Budget) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCATEGORY\tPERIOD\tALLOCATED\tSPENT\tUSED\tSTATUS")
	for _, b := range budgets {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s%%\t%s\n",
			b.ID, b.Category, b.Period,
			b.Allocated.StringFixed(2), b.Spent.StringFixed(2),
			b.Utilization().StringFixed(1), b.Status())
	}
	return tw.Flush()
}

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Show active budget alerts, most severe first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		alerts, err := ledger.Alerts(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, alerts)
		}
		if len(alerts) == 0 {
			fmt.Fprintln(out, "No active alerts.")
			return nil
		}
		for _, a := range alerts {
			fmt.Fprintf(out, "[%s] %s (%s)\n  %s\n  %s\n", a.Severity, a.Title, a.ID, a.Message, a.Suggestion)
		}
		return nil
	},
}

var dismissCmd = &cobra.Command{
	Use:   "dismiss ALERT_ID",
	Short: "Hide an alert until its budget changes tier",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ledger.Dismiss(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Dismissed %s\n", args[0])
		return nil
	},
}

var adjustCmd = &cobra.Command{
	Use:   "adjust",
	Short: "Shift every budget allocation by a percentage or fixed amount",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		mode, _ := cmd.Flags().GetString("mode")
		raw, _ := cmd.Flags().GetString("value")
		value, err := core.ParseSigned(raw)
		if err != nil {
			return fmt.Errorf("adjustment value %q: %w", raw, err)
		}
		adjusted, err := ledger.Adjust(cmd.Context(), budget.AdjustmentSpec{
			Mode:  budget.AdjustmentMode(mode),
			Value: value,
		})
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), adjusted)
		}
		return writeBudgets(cmd.OutOrStdout(), adjusted)
	},
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List budget templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		templates, err := ledger.Templates()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, templates)
		}
		for _, t := range templates {
			fmt.Fprintf(out, "%s\t%s (%s total, %d categories)\n  %s\n",
				t.ID, t.Name, t.Total.StringFixed(2), len(t.Categories), t.Description)
		}
		return nil
	},
}

var applyTemplateCmd = &cobra.Command{
	Use:   "apply-template TEMPLATE_ID",
	Short: "Add the budgets of a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		period, _ := cmd.Flags().GetString("period")
		created, err := ledger.ApplyTemplate(cmd.Context(), args[0], period)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), created)
		}
		return writeBudgets(cmd.OutOrStdout(), created)
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the budget report to Google Sheets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := ledger.ExportReport(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Budget report exported.")
		return nil
	},
}
