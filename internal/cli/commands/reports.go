package commands

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"housebudget/internal/core"
	"housebudget/internal/services"
)

func (a *App) monthsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "months",
		Short: "List months with data, most recent first",
		Long:  `List the months present in the ledger. The default month is marked with *.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			months, def, err := a.svc.Months(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(months) == 0 {
				fmt.Fprintln(out, "No months.")
				return nil
			}
			for _, m := range months {
				marker := " "
				if m == def {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %s\n", marker, m)
			}
			return nil
		},
	}
}

// resolveMonth returns month, or the ledger's default month when empty.
func (a *App) resolveMonth(cmd *cobra.Command, month string) (string, error) {
	if month != "" {
		return month, nil
	}
	_, def, err := a.svc.Months(cmd.Context())
	if err != nil {
		return "", err
	}
	if def == "" {
		return "", fmt.Errorf("the ledger has no months yet")
	}
	return def, nil
}

func (a *App) summaryCmd() *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show income, expenses and net per month",
		Long: `Show the monthly summary table. Transfers are excluded. Net is green when
the month saved money and red when it overspent.

Example:
  hbctl summary
  hbctl summary --month 2025-05`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var sums []core.MonthlySummary
			if month != "" {
				s, err := a.svc.Summary(cmd.Context(), month)
				if err != nil {
					return err
				}
				sums = []core.MonthlySummary{s}
			} else {
				var err error
				if sums, err = a.svc.Summaries(cmd.Context()); err != nil {
					return err
				}
			}
			if len(sums) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No months.")
				return nil
			}

			w := newTable(cmd.OutOrStdout())
			row(w, heading("MONTH"), heading("INCOME"), heading("EXPENSES"), heading("NET"))
			for _, s := range sums {
				row(w, s.Month, core.FormatEuros(s.IncomeTotal), core.FormatEuros(s.ExpenseTotal), colorNet(s.Net))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "single month (YYYY-MM); all months when empty")
	return cmd
}

func (a *App) breakdownCmd() *cobra.Command {
	var (
		month     string
		kind      string
		threshold float64
	)
	cmd := &cobra.Command{
		Use:   "breakdown",
		Short: "Show a month's totals per category",
		Long: `Show the category breakdown of one month.

The expense side includes a synthetic Savings row for the month's result and
folds categories below --threshold of the total into Other. The income side
lists every category.

Example:
  hbctl breakdown --month 2025-05
  hbctl breakdown --kind income`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			k, err := services.ParseBreakdownKind(kind)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("threshold") {
				threshold = a.svc.Threshold()
			}
			if threshold < 0 || threshold >= 1 {
				return fmt.Errorf("threshold must be in [0, 1), got %v", threshold)
			}
			m, err := a.resolveMonth(cmd, month)
			if err != nil {
				return err
			}
			buckets, err := a.svc.Breakdown(cmd.Context(), m, k, threshold)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s breakdown for %s\n", k, m)
			if len(buckets) == 0 {
				fmt.Fprintln(out, "No rows.")
				return nil
			}
			total := decimal.Zero
			for _, b := range buckets {
				total = total.Add(b.Total)
			}
			w := newTable(out)
			row(w, heading("CATEGORY"), heading("TOTAL"), heading("SHARE"))
			for _, b := range buckets {
				row(w, b.Category, core.FormatEuros(b.Total), share(b.Total, total))
			}
			return w.Flush()
		},
	}
	f := cmd.Flags()
	f.StringVar(&month, "month", "", "month (YYYY-MM); defaults to the ledger's default month")
	f.StringVar(&kind, "kind", "expense", "expense or income")
	f.Float64Var(&threshold, "threshold", 0, "fold categories below this share of the total into Other (default from BUCKET_THRESHOLD)")
	return cmd
}
