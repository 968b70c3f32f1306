package ledger

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"housebudget/internal/core"
)

// DefaultThreshold is the share of the grand total below which a category
// is folded into "Other".
const DefaultThreshold = 0.01

// CategoryBuckets sums absolute amounts per category and folds every
// category whose total is below threshold × grand total into a single
// "Other" bucket. The result is sorted by total, largest first; ties keep
// first-appearance order.
//
// An empty input or a zero grand total yields an empty result. "Other" is
// omitted when nothing was folded into it. NaN or infinite thresholds fall
// back to DefaultThreshold.
func CategoryBuckets(entries []core.Entry, threshold float64) []core.Bucket {
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		threshold = DefaultThreshold
	}

	totals := make(map[string]decimal.Decimal)
	var order []string
	grand := decimal.Zero
	for _, e := range entries {
		abs := e.Amount.Abs()
		if _, ok := totals[e.Category]; !ok {
			order = append(order, e.Category)
		}
		totals[e.Category] = totals[e.Category].Add(abs)
		grand = grand.Add(abs)
	}
	if grand.IsZero() {
		return []core.Bucket{}
	}

	cut := grand.Mul(decimal.NewFromFloat(threshold))
	buckets := make([]core.Bucket, 0, len(order)+1)
	other := decimal.Zero
	for _, cat := range order {
		total := totals[cat]
		if total.LessThan(cut) {
			other = other.Add(total)
			continue
		}
		buckets = append(buckets, core.Bucket{Category: cat, Total: total})
	}
	if other.IsPositive() {
		buckets = addOther(buckets, other)
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Total.GreaterThan(buckets[j].Total)
	})
	return buckets
}

// addOther merges the folded remainder into a real "Other" category when
// one survived the cut, so the label stays unique.
func addOther(buckets []core.Bucket, amount decimal.Decimal) []core.Bucket {
	for i := range buckets {
		if buckets[i].Category == core.OtherCategory {
			buckets[i].Total = buckets[i].Total.Add(amount)
			return buckets
		}
	}
	return append(buckets, core.Bucket{Category: core.OtherCategory, Total: amount})
}

// SavingsEntry builds the synthetic row that shows the month's result as a
// category: its amount is the negated net, so overspending appears as a
// positive amount and saving as a negative one. Bucketing takes absolute
// values, so both show as a positive "Savings" bucket.
func SavingsEntry(month string, summary core.MonthlySummary) core.Entry {
	return core.Entry{
		BankName: core.SavingsBank,
		Month:    month,
		Receiver: core.SavingsReceiver,
		Category: core.SavingsCategory,
		Amount:   summary.Net.Neg(),
	}
}

// ExpenseEntries returns the month's non-transfer rows with a negative amount.
func ExpenseEntries(classified []core.Classified, month string) []core.Entry {
	var out []core.Entry
	for _, c := range classified {
		if c.Month == month && c.Type != core.Transfer && c.Amount.IsNegative() {
			out = append(out, c.Entry)
		}
	}
	return out
}

// IncomeEntries returns the month's non-transfer rows with a positive amount.
func IncomeEntries(classified []core.Classified, month string) []core.Entry {
	var out []core.Entry
	for _, c := range classified {
		if c.Month == month && c.Type != core.Transfer && c.Amount.IsPositive() {
			out = append(out, c.Entry)
		}
	}
	return out
}

// ExpenseBreakdown buckets the month's expenses together with the
// synthesized Savings entry. A month without expenses has no breakdown.
func ExpenseBreakdown(classified []core.Classified, month string, threshold float64) []core.Bucket {
	expenses := ExpenseEntries(classified, month)
	if len(expenses) == 0 {
		return []core.Bucket{}
	}
	savings := SavingsEntry(month, MonthlySummary(classified, month))
	return CategoryBuckets(append(expenses, savings), threshold)
}

// IncomeBreakdown buckets the month's income without consolidation.
func IncomeBreakdown(classified []core.Classified, month string) []core.Bucket {
	return CategoryBuckets(IncomeEntries(classified, month), 0)
}
