package ledger

import (
	"github.com/shopspring/decimal"

	"housebudget/internal/core"
)

// TransferSet holds the ids of transactions that belong to a confirmed
// transfer group.
type TransferSet map[int64]struct{}

// Contains reports whether id was marked as a transfer.
func (s TransferSet) Contains(id int64) bool {
	_, ok := s[id]
	return ok
}

// groupKey identifies a candidate transfer group: the unordered pair of
// parties plus the absolute amount.
type groupKey struct {
	partyA, partyB string
	magnitude      string
}

func keyOf(e core.Entry) groupKey {
	a, b := e.BankName, e.Receiver
	if b < a {
		a, b = b, a
	}
	return groupKey{partyA: a, partyB: b, magnitude: e.Amount.Abs().String()}
}

// DetectTransfers groups transactions by {bank_name, receiver} (order
// ignored) and absolute amount. A group is a confirmed transfer when its
// signed amounts sum to exactly zero and it holds more than one distinct
// signed value; every member of such a group is marked.
//
// Grouping is global rather than per month. Several independent transfers
// of the same magnitude between the same two parties fall into one group
// and are marked together.
func DetectTransfers(txs []core.Transaction) TransferSet {
	groups := make(map[groupKey][]int)
	for i, tx := range txs {
		k := keyOf(tx.Entry)
		groups[k] = append(groups[k], i)
	}

	set := make(TransferSet)
	for _, members := range groups {
		if len(members) < 2 {
			continue
		}
		sum := decimal.Zero
		distinct := make(map[string]struct{}, 2)
		for _, i := range members {
			sum = sum.Add(txs[i].Amount)
			distinct[txs[i].Amount.String()] = struct{}{}
		}
		if !sum.IsZero() || len(distinct) < 2 {
			continue
		}
		for _, i := range members {
			set[txs[i].ID] = struct{}{}
		}
	}
	return set
}
