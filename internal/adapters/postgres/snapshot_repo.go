package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/markermap/internal/pkg/metrics"
)

// SnapshotRepo implements ports.SnapshotStore on the snapshots table.
type SnapshotRepo struct {
	db *DB
}

// NewSnapshotRepo creates a new SnapshotRepo.
func NewSnapshotRepo(db *DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// Load returns the blob stored under key.
func (r *SnapshotRepo) Load(ctx context.Context, key string) ([]byte, bool, error) {
	defer metrics.ObserveStore("postgres", "load", time.Now())

	var blob []byte
	err := r.db.Pool.QueryRow(ctx, `
		SELECT blob FROM snapshots WHERE key = $1
	`, key).Scan(&blob)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select snapshot %s: %w", key, err)
	}
	return blob, true, nil
}

// Save inserts or replaces the blob under key.
func (r *SnapshotRepo) Save(ctx context.Context, key string, blob []byte) error {
	defer metrics.ObserveStore("postgres", "save", time.Now())

	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO snapshots (key, blob, saved_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE
		SET blob = EXCLUDED.blob, saved_at = EXCLUDED.saved_at
	`, key, blob)
	if err != nil {
		return fmt.Errorf("upsert snapshot %s: %w", key, err)
	}
	return nil
}

// Ping checks database connectivity.
func (r *SnapshotRepo) Ping(ctx context.Context) error {
	return r.db.Pool.Ping(ctx)
}

// Close releases the pool.
func (r *SnapshotRepo) Close() error {
	r.db.Close()
	return nil
}
