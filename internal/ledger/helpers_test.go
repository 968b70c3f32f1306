package ledger

import (
	"testing"

	"github.com/shopspring/decimal"

	"housebudget/internal/core"
)

func tx(id int64, bank, receiver, month, category, amount string) core.Transaction {
	return core.Transaction{
		ID: id,
		Entry: core.Entry{
			BankName: bank,
			Month:    month,
			Receiver: receiver,
			Category: category,
			Amount:   decimal.RequireFromString(amount),
		},
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, what string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Fatalf("%s = %s, want %s", what, got, want)
	}
}
