package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Candidate field names, shared by every loader and by the extraction assistant.
const (
	FieldBankName = "bank_name"
	FieldMonth    = "month"
	FieldReceiver = "receiver"
	FieldCategory = "category"
	FieldAmount   = "amount"
)

// RequiredFields lists the keys every candidate record must carry.
var RequiredFields = []string{FieldBankName, FieldMonth, FieldReceiver, FieldCategory, FieldAmount}

var (
	ErrMissingField = errors.New("missing required field")
	ErrFieldType    = errors.New("field has unexpected type")
)

// Candidate is an unvalidated record as produced by a loader or by the
// extraction assistant.
type Candidate map[string]any

// Rejection describes why a candidate was not accepted.
type Rejection struct {
	Index  int       `json:"index"`
	Record Candidate `json:"record"`
	Reason string    `json:"reason"`
}

// Entry converts the candidate into a validated Entry.
func (c Candidate) Entry() (Entry, error) {
	for _, k := range RequiredFields {
		v, ok := c[k]
		if !ok || v == nil {
			return Entry{}, fmt.Errorf("%w: %s", ErrMissingField, k)
		}
	}

	var e Entry
	var err error
	if e.BankName, err = c.text(FieldBankName); err != nil {
		return Entry{}, err
	}
	if e.Month, err = c.text(FieldMonth); err != nil {
		return Entry{}, err
	}
	if e.Receiver, err = c.text(FieldReceiver); err != nil {
		return Entry{}, err
	}
	if e.Category, err = c.text(FieldCategory); err != nil {
		return Entry{}, err
	}
	if e.Amount, err = toDecimal(c[FieldAmount]); err != nil {
		return Entry{}, fmt.Errorf("%s: %w", FieldAmount, err)
	}

	e = e.Normalize()
	if err := e.Validate(); err != nil {
		return Entry{}, err
	}
	return e, nil
}

func (c Candidate) text(key string) (string, error) {
	switch v := c[key].(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrFieldType, key)
	}
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n.Round(2), nil
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Zero, ErrInvalidAmount
		}
		return decimal.NewFromFloat(n).Round(2), nil
	case float32:
		return toDecimal(float64(n))
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case int64:
		return decimal.NewFromInt(n), nil
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.Zero, err
		}
		return d.Round(2), nil
	case string:
		return ParseAmount(n)
	default:
		return decimal.Zero, ErrFieldType
	}
}

// ValidateCandidates splits a batch into accepted entries and rejections.
// A bad candidate never aborts the rest of the batch.
func ValidateCandidates(batch []Candidate) ([]Entry, []Rejection) {
	accepted := make([]Entry, 0, len(batch))
	var rejected []Rejection
	for i, c := range batch {
		e, err := c.Entry()
		if err != nil {
			rejected = append(rejected, Rejection{Index: i, Record: c, Reason: err.Error()})
			continue
		}
		accepted = append(accepted, e)
	}
	return accepted, rejected
}

func (r Rejection) String() string {
	return fmt.Sprintf("record %d: %s", r.Index, strings.TrimSpace(r.Reason))
}
