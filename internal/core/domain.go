package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income   Type = "Income"
	Expense  Type = "Expense"
	Transfer Type = "Transfer"
)

// MonthLayout is the YYYY-MM form used for ledger months.
const MonthLayout = "2006-01"

type (
	// Type is the derived classification of a ledger row.
	Type string

	// Entry holds the five data fields of a ledger row without any
	// persistence identity. Drafts, import candidates and synthetic rows
	// (such as the Savings entry) are Entries.
	Entry struct {
		BankName string          `json:"bank_name" yaml:"bank_name"`
		Month    string          `json:"month" yaml:"month"`
		Receiver string          `json:"receiver" yaml:"receiver"`
		Category string          `json:"category" yaml:"category"`
		Amount   decimal.Decimal `json:"amount" yaml:"amount"`
	}

	// Transaction is an Entry that has been persisted by a store.
	Transaction struct {
		ID int64 `json:"id"`
		Entry
	}

	// Classified is a Transaction together with its derived Type.
	Classified struct {
		Transaction
		Type Type `json:"type"`
	}
)

var (
	ErrInvalidMonth  = errors.New("invalid month (expected YYYY-MM)")
	ErrEmptyBankName = errors.New("empty bank name")
	ErrEmptyReceiver = errors.New("empty receiver")
	ErrEmptyCategory = errors.New("empty category")
	ErrFieldTooLong  = errors.New("field too long (max 200 characters)")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrUnknownType   = errors.New("unknown transaction type")
)

const maxFieldLen = 200

// ParseMonth parses a YYYY-MM string into the first instant of that month (UTC).
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse(MonthLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidMonth
	}
	return t, nil
}

// FormatMonth renders t as YYYY-MM.
func FormatMonth(t time.Time) string {
	return t.Format(MonthLayout)
}

// PreviousMonth returns the calendar month preceding the one containing t.
func PreviousMonth(t time.Time) string {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return FormatMonth(first.AddDate(0, -1, 0))
}

// IsIncomeSide reports whether the amount counts as money received.
// Zero is income side.
func (e Entry) IsIncomeSide() bool {
	return !e.Amount.IsNegative()
}

// Normalize trims surrounding whitespace from the text fields.
func (e Entry) Normalize() Entry {
	e.BankName = strings.TrimSpace(e.BankName)
	e.Month = strings.TrimSpace(e.Month)
	e.Receiver = strings.TrimSpace(e.Receiver)
	e.Category = strings.TrimSpace(e.Category)
	return e
}

func (e Entry) Validate() error {
	if _, err := ParseMonth(e.Month); err != nil {
		return err
	}
	if strings.TrimSpace(e.BankName) == "" {
		return ErrEmptyBankName
	}
	if strings.TrimSpace(e.Receiver) == "" {
		return ErrEmptyReceiver
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	for _, f := range []string{e.BankName, e.Receiver, e.Category} {
		if len(f) > maxFieldLen {
			return ErrFieldTooLong
		}
	}
	return nil
}

// ParseType parses a case-insensitive type name.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return Income, nil
	case "expense":
		return Expense, nil
	case "transfer":
		return Transfer, nil
	default:
		return "", ErrUnknownType
	}
}

func (t Type) String() string {
	return string(t)
}
