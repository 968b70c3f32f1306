package ledger

import "housebudget/internal/core"

// ClassifyType returns Transfer when tx is in the transfer set, otherwise
// Income for non-negative amounts and Expense for negative ones.
func ClassifyType(tx core.Transaction, transfers TransferSet) core.Type {
	if transfers.Contains(tx.ID) {
		return core.Transfer
	}
	if tx.IsIncomeSide() {
		return core.Income
	}
	return core.Expense
}

// Classify detects transfers over the whole set and assigns every
// transaction its type. Output order follows input order.
func Classify(txs []core.Transaction) []core.Classified {
	transfers := DetectTransfers(txs)
	out := make([]core.Classified, len(txs))
	for i, tx := range txs {
		out[i] = core.Classified{Transaction: tx, Type: ClassifyType(tx, transfers)}
	}
	return out
}

// WithoutTransfers drops Transfer rows.
func WithoutTransfers(classified []core.Classified) []core.Classified {
	out := make([]core.Classified, 0, len(classified))
	for _, c := range classified {
		if c.Type != core.Transfer {
			out = append(out, c)
		}
	}
	return out
}

// InMonth keeps the rows whose month equals month.
func InMonth(classified []core.Classified, month string) []core.Classified {
	out := make([]core.Classified, 0, len(classified))
	for _, c := range classified {
		if c.Month == month {
			out = append(out, c)
		}
	}
	return out
}
