package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/samirrijal/markermap/internal/pkg/metrics"
)

// Store implements ports.SnapshotStore on an embedded Badger database.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the database in dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create badger dir: %w", err)
	}

	opts := badger.DefaultOptions(dir)
	opts.NumVersionsToKeep = 1
	opts.CompactL0OnClose = true
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenInMemory opens a Badger instance that never touches disk.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Store{db: db}, nil
}

// Load returns the blob under key.
func (s *Store) Load(ctx context.Context, key string) (blob []byte, ok bool, err error) {
	defer metrics.ObserveStore("badger", "load", time.Now())

	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		blob, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("badger get %s: %w", key, err)
	}
	return blob, true, nil
}

// Save replaces the blob under key in a single transaction.
func (s *Store) Save(ctx context.Context, key string, blob []byte) error {
	defer metrics.ObserveStore("badger", "save", time.Now())

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), blob)
	})
	if err != nil {
		return fmt.Errorf("badger set %s: %w", key, err)
	}
	return nil
}

// Ping reports whether the database is still open.
func (s *Store) Ping(ctx context.Context) error {
	if s.db.IsClosed() {
		return errors.New("badger: database closed")
	}
	return nil
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
