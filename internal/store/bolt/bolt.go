// Package bolt is a single-file transaction store backed by bbolt.
package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"housebudget/internal/core"
	"housebudget/internal/store"
)

const bucketTransactions = "transactions"

// Store keeps one JSON-encoded entry per key. Keys are big-endian
// sequence numbers, so iteration order is insertion order.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the database at path and its bucket.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(bucketTransactions)); err != nil {
			return fmt.Errorf("create bucket %s: %w", bucketTransactions, err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Create(ctx context.Context, e core.Entry) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	e = e.Normalize()
	if err := e.Validate(); err != nil {
		return 0, err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return 0, fmt.Errorf("marshal entry: %w", err)
	}

	var id int64
	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketTransactions))
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		id = int64(seq)
		return b.Put(itob(id), data)
	})
	if err != nil {
		return 0, fmt.Errorf("put transaction: %w", err)
	}
	return id, nil
}

func (s *Store) List(ctx context.Context) ([]core.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []core.Transaction
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketTransactions)).ForEach(func(k, v []byte) error {
			var e core.Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("unmarshal transaction %d: %w", btoi(k), err)
			}
			out = append(out, core.Transaction{ID: btoi(k), Entry: e})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketTransactions))
		if b.Get(itob(id)) == nil {
			return fmt.Errorf("delete %d: %w", id, store.ErrNotFound)
		}
		return b.Delete(itob(id))
	})
}

func itob(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

func btoi(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b))
}
