package memory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"housebudget/internal/core"
	"housebudget/internal/loader"
	"housebudget/internal/store"
)

var _ store.Store = (*Store)(nil)

type Store struct {
	mu     sync.Mutex
	nextID int64
	items  []core.Transaction
}

func New() *Store {
	return &Store{nextID: 1}
}

// NewFromFiles seeds the store from base/seed_transactions.yaml when that
// file exists. Invalid seed rows are skipped and logged, and an unreadable
// or malformed seed file leaves the store empty with a warning.
func NewFromFiles(base string) *Store {
	s := New()
	path := filepath.Join(base, "seed_transactions.yaml")
	res, err := loader.LoadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("Failed to load seed transactions", "path", path, "error", err)
		}
		return s
	}
	for _, r := range res.Rejected {
		slog.Warn("Skipping invalid seed transaction", "path", path, "record", r.Index, "reason", r.Reason)
	}
	for _, e := range res.Accepted {
		_, _ = s.Create(context.Background(), e)
	}
	return s
}

// Create stores the entry and returns its id.
func (s *Store) Create(_ context.Context, e core.Entry) (int64, error) {
	e = e.Normalize()
	if err := e.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.items = append(s.items, core.Transaction{ID: id, Entry: e})
	return id, nil
}

// List returns a copy of every stored transaction in insertion order.
func (s *Store) List(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.items...), nil
}

func (s *Store) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.items {
		if t.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("delete %d: %w", id, store.ErrNotFound)
}
