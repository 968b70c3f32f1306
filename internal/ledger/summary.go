package ledger

import (
	"context"

	"golang.org/x/sync/errgroup"

	"housebudget/internal/core"
)

// MonthlySummary totals the non-transfer rows of month. Income covers
// non-negative amounts, Expense negative ones; Net is their sum.
//
// A month with no rows yields a zeroed summary rather than an error. The
// month is expected to come from AvailableMonths.
func MonthlySummary(classified []core.Classified, month string) core.MonthlySummary {
	s := core.ZeroSummary(month)
	for _, c := range classified {
		if c.Month != month {
			continue
		}
		switch c.Type {
		case core.Income:
			s.IncomeTotal = s.IncomeTotal.Add(c.Amount)
		case core.Expense:
			s.ExpenseTotal = s.ExpenseTotal.Add(c.Amount)
		}
	}
	s.Net = s.IncomeTotal.Add(s.ExpenseTotal)
	return s
}

// SummarizeMonths computes the summary of every available month, most
// recent first. Months are summarized concurrently; each task only reads
// the shared slice.
func SummarizeMonths(ctx context.Context, classified []core.Classified) ([]core.MonthlySummary, error) {
	raw := make([]string, len(classified))
	for i, c := range classified {
		raw[i] = c.Month
	}
	months := sortMonthsDesc(raw)

	out := make([]core.MonthlySummary, len(months))
	g, ctx := errgroup.WithContext(ctx)
	for i, m := range months {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = MonthlySummary(classified, m)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
