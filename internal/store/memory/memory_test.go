package memory

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"housebudget/internal/core"
	"housebudget/internal/store"
)

func TestMemoryStoreCreateListDelete(t *testing.T) {
	ctx := context.Background()
	s := New()

	id1, err := s.Create(ctx, core.Entry{BankName: " ING ", Month: "2025-01", Receiver: "Shop", Category: "Food", Amount: decimal.NewFromInt(-12)})
	if err != nil || id1 != 1 {
		t.Fatalf("unexpected create: id=%d err=%v", id1, err)
	}
	id2, err := s.Create(ctx, core.Entry{BankName: "ING", Month: "2025-01", Receiver: "Job", Category: "Salary", Amount: decimal.NewFromInt(100)})
	if err != nil || id2 != 2 {
		t.Fatalf("unexpected create: id=%d err=%v", id2, err)
	}

	items, _ := s.List(ctx)
	if len(items) != 2 || items[0].BankName != "ING" {
		t.Fatalf("unexpected list: %+v", items)
	}

	if err := s.Delete(ctx, id1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, id1); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	items, _ = s.List(ctx)
	if len(items) != 1 || items[0].ID != id2 {
		t.Fatalf("unexpected list after delete: %+v", items)
	}

	// ids are never reused
	id3, _ := s.Create(ctx, core.Entry{BankName: "ING", Month: "2025-02", Receiver: "Shop", Category: "Food", Amount: decimal.NewFromInt(-1)})
	if id3 != 3 {
		t.Fatalf("expected id 3, got %d", id3)
	}
}

func TestMemoryStoreRejectsInvalid(t *testing.T) {
	s := New()
	if _, err := s.Create(context.Background(), core.Entry{BankName: "b", Month: "bad", Receiver: "r", Category: "c"}); !errors.Is(err, core.ErrInvalidMonth) {
		t.Fatalf("expected ErrInvalidMonth, got %v", err)
	}
}

func TestNewFromFilesSeeds(t *testing.T) {
	dir := t.TempDir()
	// No file -> empty store
	s := NewFromFiles(dir)
	items, _ := s.List(context.Background())
	if len(items) != 0 {
		t.Fatalf("expected empty store when seed file missing")
	}

	seed := `
- {bank_name: ING, month: "2025-01", receiver: Shop, category: Food, amount: -20.5}
- {bank_name: ING, month: "2025-01", receiver: Employer, category: Salary, amount: 1000}
- {bank_name: ING, month: "2025-01", receiver: Shop}
`
	if err := os.WriteFile(filepath.Join(dir, "seed_transactions.yaml"), []byte(seed), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	s = NewFromFiles(dir)
	items, _ = s.List(context.Background())
	if len(items) != 2 {
		t.Fatalf("expected 2 seeded rows, got %d", len(items))
	}
	if !items[0].Amount.Equal(decimal.RequireFromString("-20.5")) {
		t.Fatalf("unexpected amount %s", items[0].Amount)
	}
}

func TestNewFromFilesSeedErrors(t *testing.T) {
	tests := []struct {
		name     string
		seed     string
		wantWarn bool
	}{
		{name: "missing file"},
		{name: "malformed yaml", seed: "- {bank_name: ING, month: [unterminated\n", wantWarn: true},
		{name: "scalar document", seed: "just some text\n", wantWarn: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			prev := slog.Default()
			slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
			t.Cleanup(func() { slog.SetDefault(prev) })

			dir := t.TempDir()
			if tt.seed != "" {
				if err := os.WriteFile(filepath.Join(dir, "seed_transactions.yaml"), []byte(tt.seed), 0o644); err != nil {
					t.Fatalf("write seed: %v", err)
				}
			}

			s := NewFromFiles(dir)
			items, _ := s.List(context.Background())
			if len(items) != 0 {
				t.Fatalf("expected empty store, got %d rows", len(items))
			}
			warned := strings.Contains(buf.String(), "Failed to load seed transactions")
			if warned != tt.wantWarn {
				t.Errorf("warned = %v, want %v; log: %s", warned, tt.wantWarn, buf.String())
			}
		})
	}
}
