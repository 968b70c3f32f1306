package bolt

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"housebudget/internal/core"
	"housebudget/internal/store"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "ledger.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return s, path
}

func entry(month, amount string) core.Entry {
	return core.Entry{
		BankName: "ING",
		Month:    month,
		Receiver: "Shop",
		Category: "Food",
		Amount:   decimal.RequireFromString(amount),
	}
}

func TestCreateListDelete(t *testing.T) {
	s, _ := openTemp(t)
	defer s.Close()
	ctx := context.Background()

	id1, err := s.Create(ctx, entry("2025-01", "-10.50"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id2, err := s.Create(ctx, entry("2025-02", "20"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id2 <= id1 {
		t.Fatalf("ids not increasing: %d, %d", id1, id2)
	}

	txs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txs) != 2 || txs[0].ID != id1 || txs[1].ID != id2 {
		t.Fatalf("unexpected list: %+v", txs)
	}
	if !txs[0].Amount.Equal(decimal.RequireFromString("-10.5")) {
		t.Fatalf("amount = %s", txs[0].Amount)
	}

	if err := s.Delete(ctx, id1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, id1); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	txs, _ = s.List(ctx)
	if len(txs) != 1 || txs[0].ID != id2 {
		t.Fatalf("unexpected list after delete: %+v", txs)
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	s, path := openTemp(t)
	ctx := context.Background()
	id, err := s.Create(ctx, entry("2025-03", "-1"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	txs, err := s.List(ctx)
	if err != nil || len(txs) != 1 || txs[0].ID != id {
		t.Fatalf("unexpected after reopen: %+v %v", txs, err)
	}

	next, err := s.Create(ctx, entry("2025-03", "-2"))
	if err != nil || next <= id {
		t.Fatalf("sequence not continued: %d %v", next, err)
	}
}

func TestCreateRejectsInvalid(t *testing.T) {
	s, _ := openTemp(t)
	defer s.Close()
	if _, err := s.Create(context.Background(), entry("2025-13", "1")); !errors.Is(err, core.ErrInvalidMonth) {
		t.Fatalf("expected ErrInvalidMonth, got %v", err)
	}
}
