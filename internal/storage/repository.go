package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"housebudget/internal/core"
	"housebudget/internal/store"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Create implements store.TransactionCreator
func (r *SQLiteRepository) Create(ctx context.Context, e core.Entry) (int64, error) {
	e = e.Normalize()
	if err := e.Validate(); err != nil {
		return 0, err
	}

	row, err := r.queries.CreateTransaction(ctx, CreateTransactionParams{
		BankName: e.BankName,
		Month:    e.Month,
		Receiver: e.Receiver,
		Category: e.Category,
		Amount:   e.Amount.String(),
	})
	if err != nil {
		return 0, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", row.ID,
		"bank_name", row.BankName,
		"month", row.Month,
		"category", row.Category,
		"amount", row.Amount)

	return row.ID, nil
}

// List implements store.TransactionLister
func (r *SQLiteRepository) List(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		amount, err := decimal.NewFromString(row.Amount)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: parse amount %q: %w", row.ID, row.Amount, err)
		}
		out = append(out, core.Transaction{
			ID: row.ID,
			Entry: core.Entry{
				BankName: row.BankName,
				Month:    row.Month,
				Receiver: row.Receiver,
				Category: row.Category,
				Amount:   amount,
			},
		})
	}
	return out, nil
}

// Delete implements store.TransactionDeleter
func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete %d: %w", id, store.ErrNotFound)
	}

	slog.InfoContext(ctx, "Transaction deleted from SQLite", "id", id)
	return nil
}

var _ store.Store = (*SQLiteRepository)(nil)
