package storage

import (
	"context"
	"database/sql"
)

type Transaction struct {
	ID        int64        `json:"id"`
	BankName  string       `json:"bank_name"`
	Month     string       `json:"month"`
	Receiver  string       `json:"receiver"`
	Category  string       `json:"category"`
	Amount    string       `json:"amount"`
	CreatedAt sql.NullTime `json:"created_at"`
}

const createTransaction = `-- name: CreateTransaction :one
INSERT INTO transactions (bank_name, month, receiver, category, amount)
VALUES (?, ?, ?, ?, ?)
RETURNING id, bank_name, month, receiver, category, amount, created_at
`

type CreateTransactionParams struct {
	BankName string `json:"bank_name"`
	Month    string `json:"month"`
	Receiver string `json:"receiver"`
	Category string `json:"category"`
	Amount   string `json:"amount"`
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, createTransaction,
		arg.BankName,
		arg.Month,
		arg.Receiver,
		arg.Category,
		arg.Amount,
	)
	var i Transaction
	err := row.Scan(
		&i.ID,
		&i.BankName,
		&i.Month,
		&i.Receiver,
		&i.Category,
		&i.Amount,
		&i.CreatedAt,
	)
	return i, err
}

const listTransactions = `-- name: ListTransactions :many
SELECT id, bank_name, month, receiver, category, amount, created_at
FROM transactions
ORDER BY id
`

func (q *Queries) ListTransactions(ctx context.Context) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		var i Transaction
		if err := rows.Scan(
			&i.ID,
			&i.BankName,
			&i.Month,
			&i.Receiver,
			&i.Category,
			&i.Amount,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteTransaction = `-- name: DeleteTransaction :execrows
DELETE FROM transactions WHERE id = ?
`

func (q *Queries) DeleteTransaction(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTransaction, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
