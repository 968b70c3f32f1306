package ledger

import (
	"sort"
	"time"

	"housebudget/internal/core"
)

// AvailableMonths returns the distinct months present in txs, most recent
// first. Months are compared as calendar year-month values; rows whose
// month does not parse as YYYY-MM are left out since they cannot be
// selected.
func AvailableMonths(txs []core.Transaction) []string {
	months := make([]string, len(txs))
	for i, tx := range txs {
		months[i] = tx.Month
	}
	return sortMonthsDesc(months)
}

func sortMonthsDesc(months []string) []string {
	seen := make(map[string]time.Time, len(months))
	for _, m := range months {
		if _, ok := seen[m]; ok {
			continue
		}
		t, err := core.ParseMonth(m)
		if err != nil {
			continue
		}
		seen[m] = t
	}

	out := make([]string, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := seen[out[i]], seen[out[j]]
		if ti.Equal(tj) {
			return out[i] > out[j]
		}
		return ti.After(tj)
	})
	return out
}

// DefaultMonth picks the month preselected for display: the calendar month
// before today when data exists for it, otherwise the most recent month.
// It returns "" when months is empty.
func DefaultMonth(months []string, today time.Time) string {
	if len(months) == 0 {
		return ""
	}
	prev := core.PreviousMonth(today)
	for _, m := range months {
		if m == prev {
			return m
		}
	}
	return months[0]
}
