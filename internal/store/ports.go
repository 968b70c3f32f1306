package store

import (
	"context"
	"errors"

	"housebudget/internal/core"
)

// ErrNotFound is returned by Delete when no row has the given id.
var ErrNotFound = errors.New("transaction not found")

// Ports for transaction storage backends.
type (
	TransactionCreator interface {
		// Create persists e and returns the id assigned by the store.
		Create(ctx context.Context, e core.Entry) (id int64, err error)
	}

	// TransactionLister returns the full raw ledger.
	TransactionLister interface {
		List(ctx context.Context) ([]core.Transaction, error)
	}

	TransactionDeleter interface {
		// Delete removes the row with id, or returns ErrNotFound.
		Delete(ctx context.Context, id int64) error
	}

	// Store is what every backend provides.
	Store interface {
		TransactionCreator
		TransactionLister
		TransactionDeleter
	}
)
