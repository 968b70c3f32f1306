package core

import "github.com/shopspring/decimal"

// Labels used for synthesized rows and buckets.
const (
	OtherCategory   = "Other"
	SavingsCategory = "Savings"
	SavingsReceiver = "Myself"
	SavingsBank     = "Generated"
)

// MonthlySummary holds the non-transfer totals for one month.
// ExpenseTotal stays negative.
type MonthlySummary struct {
	Month        string          `json:"month"`
	IncomeTotal  decimal.Decimal `json:"income_total"`
	ExpenseTotal decimal.Decimal `json:"expense_total"`
	Net          decimal.Decimal `json:"net"`
}

// Bucket is the absolute-amount total attributed to one category label.
type Bucket struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// ZeroSummary returns an all-zero summary for month.
func ZeroSummary(month string) MonthlySummary {
	return MonthlySummary{
		Month:        month,
		IncomeTotal:  decimal.Zero,
		ExpenseTotal: decimal.Zero,
		Net:          decimal.Zero,
	}
}
