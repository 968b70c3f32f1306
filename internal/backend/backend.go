// Package backend opens the transaction store selected by DATA_BACKEND.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"housebudget/internal/storage"
	"housebudget/internal/store"
	boltstore "housebudget/internal/store/bolt"
	"housebudget/internal/store/memory"
)

// Kind names a store implementation.
type Kind string

const (
	Memory Kind = "memory"
	SQLite Kind = "sqlite"
	Bolt   Kind = "bolt"
)

func (k Kind) String() string { return string(k) }

func (k Kind) IsValid() bool {
	_, ok := openers[k]
	return ok
}

// Persistent reports whether rows survive a restart and are shared
// between processes opening the same path.
func (k Kind) Persistent() bool { return k == SQLite || k == Bolt }

// Kinds lists every supported backend in documentation order.
func Kinds() []Kind { return []Kind{Memory, SQLite, Bolt} }

// Handle is an open store plus whatever must be released with it.
type Handle struct {
	Store store.Store
	Kind  Kind

	closer func() error
}

// Close releases the store. Safe on a nil handle and for stores without
// resources.
func (h *Handle) Close() error {
	if h == nil || h.closer == nil {
		return nil
	}
	return h.closer()
}

type opener func(ctx context.Context, cfg Config, logger *slog.Logger) (*Handle, error)

var openers = map[Kind]opener{
	Memory: openMemory,
	SQLite: openSQLite,
	Bolt:   openBolt,
}

// Open validates cfg and opens the matching store.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Handle, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	h, err := openers[cfg.Kind](ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	h.Kind = cfg.Kind
	return h, nil
}

func openSQLite(_ context.Context, cfg Config, logger *slog.Logger) (*Handle, error) {
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite ledger: %w", err)
	}
	version, _, err := storage.MigrationVersion(cfg.SQLiteDBPath)
	if err != nil {
		repo.Close()
		return nil, err
	}
	logger.Info("Opened SQLite ledger", "db_path", cfg.SQLiteDBPath, "schema_version", version)
	return &Handle{Store: repo, closer: repo.Close}, nil
}

func openBolt(_ context.Context, cfg Config, logger *slog.Logger) (*Handle, error) {
	st, err := boltstore.Open(cfg.BoltDBPath)
	if err != nil {
		return nil, fmt.Errorf("open bolt ledger: %w", err)
	}
	logger.Info("Opened bolt ledger", "db_path", cfg.BoltDBPath)
	return &Handle{Store: st, closer: st.Close}, nil
}

func openMemory(ctx context.Context, cfg Config, logger *slog.Logger) (*Handle, error) {
	st := memory.NewFromFiles(cfg.SeedDir)
	txs, err := st.List(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("Opened in-memory ledger", "seed_dir", cfg.SeedDir, "seeded", len(txs))
	return &Handle{Store: st}, nil
}
